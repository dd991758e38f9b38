// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Interpreter is the canonical strategy shape consumed by the generic
// traversal. It handles exactly one target capability M of a stack R with
// remainder U, turning a Comp[R, A] into a Comp[U, B].
//
// Every method returns an Either: Left carries a computation over R to keep
// traversing (the continuation was consumed), Right carries the terminal
// result over U. A strategy returning Right must not have applied the
// continuation it was given; the traversal then runs the continuation's
// onNone fallback before the terminal result, so deferred actions reachable
// only through the discarded branch still execute.
//
// Strategies are total over M: the traversal performs all capability
// dispatch, so a method is only ever offered instances that projected to M.
// The simpler shapes [Recurse], [StateRecurse] and [Loop] are adapter
// constructors over this interface; implement Interpreter directly only when
// none of them fits.
type Interpreter[M any, R, U, A, B any] interface {
	// OnPure handles the terminal pure value of the main branch. Left
	// re-enters the traversal (algorithms that loop until an explicit
	// terminal signal), Right finishes.
	OnPure(a A) Either[Comp[R, A], Comp[U, B]]

	// OnEffect handles one target instance on the normal path, together
	// with the continuation awaiting its result.
	OnEffect(op M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]]

	// OnLastEffect handles a target instance occurring inside a deferred
	// action, where only effects matter and no value is produced.
	OnLastEffect(op M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]]

	// OnBatchEffect handles the target subset of a batch. The continuation
	// expects the instances' results as a []Erased in submission order.
	OnBatchEffect(ops []M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]]

	// OnLastBatchEffect is the batched form on the deferred-action path.
	OnLastBatchEffect(ops []M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]]
}

// RunInterpreter removes capability M from a computation's stack by handing
// every M-instance to the interpreter. Instances of other capabilities pass
// through unchanged; deferred actions are carried through the rewrite and
// run by whichever traversal finally consumes their node.
func RunInterpreter[M any, R, U, A, B any](e Comp[R, A], m Member[M, R, U], itp Interpreter[M, R, U, A, B]) Comp[U, B] {
	return runLoop(e, m.Project, itp)
}

// runLoop is the generic traversal: an explicit trampoline whose host-stack
// depth is constant in the computation's length. The main spine spins in
// place; pass-through nodes re-enter lazily through a rebuilt continuation,
// and deferred actions go through runLoopLast, the Unit-specialized twin.
func runLoop[M any, R, U, A, B any](e Comp[R, A], project func(Union) (M, bool), itp Interpreter[M, R, U, A, B]) Comp[U, B] {
	for {
		switch n := e.(type) {
		case *pureComp[R, A]:
			out := itp.OnPure(n.value)
			if next, ok := out.GetLeft(); ok {
				e = next.withLast(n.l)
				continue
			}
			final, _ := out.GetRight()
			return final.withLast(liftLast(n.l, project, itp))

		case *impureComp[R, A]:
			if n.union.IsNoOp() {
				// Structural placeholder: unwrap before any dispatch.
				e = n.k.Apply(n.union.op).withLast(n.l)
				continue
			}
			if op, ok := project(n.union); ok {
				out := itp.OnEffect(op, n.k)
				if next, ok := out.GetLeft(); ok {
					e = next.withLast(n.l)
					continue
				}
				final, _ := out.GetRight()
				final = afterOnNone(n.k.onNone, final, project, itp)
				return final.withLast(liftLast(n.l, project, itp))
			}
			k := n.k
			lifted := contOf[U, B](func(x Erased) Comp[U, Erased] {
				return Erase(runLoop(k.Apply(x), project, itp))
			}, liftLast(k.onNone, project, itp))
			return &impureComp[U, B]{union: n.union, k: lifted, l: liftLast(n.l, project, itp)}

		case *batchComp[R, A]:
			if len(n.unions) == 0 {
				e = n.k.Apply([]Erased{}).withLast(n.l)
				continue
			}
			ops, opIdx, others, otherIdx := partitionUnions(n.unions, project)
			if len(ops) == 0 {
				k := n.k
				lifted := contOf[U, B](func(x Erased) Comp[U, Erased] {
					return Erase(runLoop(k.Apply(x), project, itp))
				}, liftLast(k.onNone, project, itp))
				return &batchComp[U, B]{unions: others, k: lifted, l: liftLast(n.l, project, itp)}
			}
			k2 := batchContinuation(n.k, len(n.unions), opIdx, others, otherIdx)
			out := itp.OnBatchEffect(ops, k2)
			if next, ok := out.GetLeft(); ok {
				e = next.withLast(n.l)
				continue
			}
			final, _ := out.GetRight()
			final = afterOnNone(k2.onNone, final, project, itp)
			return final.withLast(liftLast(n.l, project, itp))

		default:
			panic("eff: unknown computation node")
		}
	}
}

// runLoopLast traverses a deferred action: the same case analysis as runLoop
// specialized to Unit, since a deferred action's pure result carries no
// information.
func runLoopLast[M any, R, U, A, B any](e Comp[R, Unit], project func(Union) (M, bool), itp Interpreter[M, R, U, A, B]) Comp[U, Unit] {
	for {
		switch n := e.(type) {
		case *pureComp[R, Unit]:
			return Pure[U](Unit{}).withLast(liftLast(n.l, project, itp))

		case *impureComp[R, Unit]:
			if n.union.IsNoOp() {
				e = n.k.Apply(n.union.op).withLast(n.l)
				continue
			}
			if op, ok := project(n.union); ok {
				out := itp.OnLastEffect(op, n.k)
				if next, ok := out.GetLeft(); ok {
					e = next.withLast(n.l)
					continue
				}
				final, _ := out.GetRight()
				final = afterOnNone(n.k.onNone, final, project, itp)
				return final.withLast(liftLast(n.l, project, itp))
			}
			k := n.k
			lifted := contOf[U, Unit](func(x Erased) Comp[U, Erased] {
				return Erase(runLoopLast(k.Apply(x), project, itp))
			}, liftLast(k.onNone, project, itp))
			return &impureComp[U, Unit]{union: n.union, k: lifted, l: liftLast(n.l, project, itp)}

		case *batchComp[R, Unit]:
			if len(n.unions) == 0 {
				e = n.k.Apply([]Erased{}).withLast(n.l)
				continue
			}
			ops, opIdx, others, otherIdx := partitionUnions(n.unions, project)
			if len(ops) == 0 {
				k := n.k
				lifted := contOf[U, Unit](func(x Erased) Comp[U, Erased] {
					return Erase(runLoopLast(k.Apply(x), project, itp))
				}, liftLast(k.onNone, project, itp))
				return &batchComp[U, Unit]{unions: others, k: lifted, l: liftLast(n.l, project, itp)}
			}
			k2 := batchContinuation(n.k, len(n.unions), opIdx, others, otherIdx)
			out := itp.OnLastBatchEffect(ops, k2)
			if next, ok := out.GetLeft(); ok {
				e = next.withLast(n.l)
				continue
			}
			final, _ := out.GetRight()
			final = afterOnNone(k2.onNone, final, project, itp)
			return final.withLast(liftLast(n.l, project, itp))

		default:
			panic("eff: unknown computation node")
		}
	}
}

// liftLast carries a deferred action across the stack rewrite.
func liftLast[M any, R, U, A, B any](l Last[R], project func(Union) (M, bool), itp Interpreter[M, R, U, A, B]) Last[U] {
	if !l.IsDefined() {
		return Last[U]{}
	}
	return LastOf(runLoopLast(l.action, project, itp))
}

// afterOnNone sequences a discarded continuation's fallback before the
// terminal result.
func afterOnNone[M any, R, U, A, B, C any](onNone Last[R], final Comp[U, C], project func(Union) (M, bool), itp Interpreter[M, R, U, A, B]) Comp[U, C] {
	if !onNone.IsDefined() {
		return final
	}
	return Then(runLoopLast(onNone.action, project, itp), final)
}

// partitionUnions splits a batch by projection, remembering each instance's
// original position. Placeholders count as non-target.
func partitionUnions[M any](unions []Union, project func(Union) (M, bool)) (ops []M, opIdx []int, others []Union, otherIdx []int) {
	for i, u := range unions {
		if !u.IsNoOp() {
			if op, ok := project(u); ok {
				ops = append(ops, op)
				opIdx = append(opIdx, i)
				continue
			}
		}
		others = append(others, u)
		otherIdx = append(otherIdx, i)
	}
	return ops, opIdx, others, otherIdx
}

// batchContinuation builds the continuation handed to a batched handler.
// With no non-target instances it is the original continuation. Otherwise,
// applying it with the target results re-batches the non-target instances
// and merges both result sets back into submission order before resuming.
func batchContinuation[R, A any](k Continuation[R, A], total int, opIdx []int, others []Union, otherIdx []int) Continuation[R, A] {
	if len(others) == 0 {
		return k
	}
	return contOf[R, A](func(x Erased) Comp[R, Erased] {
		ms := x.([]Erased)
		merge := contOf[R, Erased](func(y Erased) Comp[R, Erased] {
			os := y.([]Erased)
			merged := make([]Erased, total)
			for i, idx := range opIdx {
				merged[idx] = ms[i]
			}
			for j, idx := range otherIdx {
				merged[idx] = os[j]
			}
			return Erase(k.Apply(merged))
		}, Last[R]{})
		return &batchComp[R, Erased]{unions: others, k: merge}
	}, k.onNone)
}
