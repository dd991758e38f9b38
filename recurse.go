// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Recurse is the stateless strategy shape: resolve each instance to a result
// and carry on, or short-circuit with a terminal computation.
//
// OnInstance returns Left with the instance's result, which resumes the
// continuation, or Right with a terminal computation over the remainder
// stack, which discards it.
//
// OnBatch returns Left with one result per instance in submission order, or
// Right with a single combined instance that replaces the whole batch. The
// combined instance is re-submitted through the same strategy, so
// OnInstance must resolve it with Left carrying a []Erased of the
// per-instance results.
type Recurse[M any, U, A any] interface {
	OnInstance(op M) Either[Erased, Comp[U, A]]
	OnBatch(ops []M) Either[[]Erased, M]
}

// Interpret removes capability M by resolving every instance through r.
func Interpret[M any, R, U, A any](e Comp[R, A], m Member[M, R, U], r Recurse[M, U, A]) Comp[U, A] {
	return runLoop[M, R, U, A, A](e, m.Project, recurseInterpreter[M, R, U, A]{r: r, inject: m.Inject})
}

type recurseInterpreter[M any, R, U, A any] struct {
	r      Recurse[M, U, A]
	inject func(M) Union
}

func (ri recurseInterpreter[M, R, U, A]) OnPure(a A) Either[Comp[R, A], Comp[U, A]] {
	return Right[Comp[R, A]](Pure[U](a))
}

func (ri recurseInterpreter[M, R, U, A]) OnEffect(op M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, A]] {
	out := ri.r.OnInstance(op)
	if x, ok := out.GetLeft(); ok {
		return Left[Comp[R, A], Comp[U, A]](k.Apply(x))
	}
	final, _ := out.GetRight()
	return Right[Comp[R, A]](final)
}

func (ri recurseInterpreter[M, R, U, A]) OnLastEffect(op M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	out := ri.r.OnInstance(op)
	if x, ok := out.GetLeft(); ok {
		return Left[Comp[R, Unit], Comp[U, Unit]](k.Apply(x))
	}
	final, _ := out.GetRight()
	return Right[Comp[R, Unit]](discardResult(final))
}

func (ri recurseInterpreter[M, R, U, A]) OnBatchEffect(ops []M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, A]] {
	out := ri.r.OnBatch(ops)
	if xs, ok := out.GetLeft(); ok {
		return Left[Comp[R, A], Comp[U, A]](k.Apply(xs))
	}
	combined, _ := out.GetRight()
	return Left[Comp[R, A], Comp[U, A]](&impureComp[R, A]{union: ri.inject(combined), k: k})
}

func (ri recurseInterpreter[M, R, U, A]) OnLastBatchEffect(ops []M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	out := ri.r.OnBatch(ops)
	if xs, ok := out.GetLeft(); ok {
		return Left[Comp[R, Unit], Comp[U, Unit]](k.Apply(xs))
	}
	combined, _ := out.GetRight()
	return Left[Comp[R, Unit], Comp[U, Unit]](&impureComp[R, Unit]{union: ri.inject(combined), k: k})
}

func discardResult[U, A any](e Comp[U, A]) Comp[U, Unit] {
	return Map(e, func(A) Unit { return Unit{} })
}

// StateRecurse resolves instances while threading a private state S through
// the traversal, and maps the terminal value through that state.
//
// OnBatch reports false when it cannot resolve the instances as a group; the
// traversal then falls back to OnInstance per instance, in submission order.
type StateRecurse[M any, U, S, A, B any] interface {
	Init() S
	OnInstance(op M, s S) (Erased, S)
	OnBatch(ops []M, s S) ([]Erased, S, bool)
	Finalize(a A, s S) B
}

// InterpretState removes capability M by resolving every instance through
// sr, starting from sr.Init().
func InterpretState[M any, R, U, S, A, B any](e Comp[R, A], m Member[M, R, U], sr StateRecurse[M, U, S, A, B]) Comp[U, B] {
	si := &stateRecurseInterpreter[M, R, U, S, A, B]{sr: sr, s: sr.Init()}
	return runLoop[M, R, U, A, B](e, m.Project, si)
}

type stateRecurseInterpreter[M any, R, U, S, A, B any] struct {
	sr StateRecurse[M, U, S, A, B]
	s  S
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) OnPure(a A) Either[Comp[R, A], Comp[U, B]] {
	return Right[Comp[R, A]](Pure[U](si.sr.Finalize(a, si.s)))
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) OnEffect(op M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]] {
	x, s := si.sr.OnInstance(op, si.s)
	si.s = s
	return Left[Comp[R, A], Comp[U, B]](k.Apply(x))
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) OnLastEffect(op M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	x, s := si.sr.OnInstance(op, si.s)
	si.s = s
	return Left[Comp[R, Unit], Comp[U, Unit]](k.Apply(x))
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) OnBatchEffect(ops []M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]] {
	return Left[Comp[R, A], Comp[U, B]](k.Apply(si.resolveBatch(ops)))
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) OnLastBatchEffect(ops []M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	return Left[Comp[R, Unit], Comp[U, Unit]](k.Apply(si.resolveBatch(ops)))
}

func (si *stateRecurseInterpreter[M, R, U, S, A, B]) resolveBatch(ops []M) []Erased {
	if xs, s, ok := si.sr.OnBatch(ops, si.s); ok {
		si.s = s
		return xs
	}
	xs := make([]Erased, len(ops))
	for i, op := range ops {
		x, s := si.sr.OnInstance(op, si.s)
		si.s = s
		xs[i] = x
	}
	return xs
}

// Loop is the fully general stateful strategy shape: the state-threading
// analogue of [Interpreter], with every decision point exposed. OnPure may
// return Left to re-enter the traversal with a new computation, which is how
// iterative algorithms loop until a terminal condition holds.
type Loop[M any, R, U, S, A, B any] interface {
	Init() S
	OnPure(a A, s S) (Either[Comp[R, A], Comp[U, B]], S)
	OnEffect(op M, k Continuation[R, A], s S) (Either[Comp[R, A], Comp[U, B]], S)
	OnLastEffect(op M, k Continuation[R, Unit], s S) (Either[Comp[R, Unit], Comp[U, Unit]], S)
	OnBatchEffect(ops []M, k Continuation[R, A], s S) (Either[Comp[R, A], Comp[U, B]], S)
	OnLastBatchEffect(ops []M, k Continuation[R, Unit], s S) (Either[Comp[R, Unit], Comp[U, Unit]], S)
}

// InterpretLoop removes capability M through the fully general stateful
// strategy, starting from loop.Init().
func InterpretLoop[M any, R, U, S, A, B any](e Comp[R, A], m Member[M, R, U], loop Loop[M, R, U, S, A, B]) Comp[U, B] {
	li := &loopInterpreter[M, R, U, S, A, B]{loop: loop, s: loop.Init()}
	return runLoop[M, R, U, A, B](e, m.Project, li)
}

type loopInterpreter[M any, R, U, S, A, B any] struct {
	loop Loop[M, R, U, S, A, B]
	s    S
}

func (li *loopInterpreter[M, R, U, S, A, B]) OnPure(a A) Either[Comp[R, A], Comp[U, B]] {
	out, s := li.loop.OnPure(a, li.s)
	li.s = s
	return out
}

func (li *loopInterpreter[M, R, U, S, A, B]) OnEffect(op M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]] {
	out, s := li.loop.OnEffect(op, k, li.s)
	li.s = s
	return out
}

func (li *loopInterpreter[M, R, U, S, A, B]) OnLastEffect(op M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	out, s := li.loop.OnLastEffect(op, k, li.s)
	li.s = s
	return out
}

func (li *loopInterpreter[M, R, U, S, A, B]) OnBatchEffect(ops []M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, B]] {
	out, s := li.loop.OnBatchEffect(ops, k, li.s)
	li.s = s
	return out
}

func (li *loopInterpreter[M, R, U, S, A, B]) OnLastBatchEffect(ops []M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	out, s := li.loop.OnLastBatchEffect(ops, k, li.s)
	li.s = s
	return out
}

// SideEffect resolves instances by running them immediately against the
// outside world. RunBatch returns one result per instance in submission
// order.
type SideEffect[M any] interface {
	RunOp(op M) Erased
	RunBatch(ops []M) []Erased
}

// InterpretUnsafe removes capability M by executing every instance eagerly
// through se. Unsafe because execution happens during interpretation rather
// than at the edge of the program.
func InterpretUnsafe[M any, R, U, A any](e Comp[R, A], m Member[M, R, U], se SideEffect[M]) Comp[U, A] {
	return Interpret(e, m, sideEffectRecurse[M, U, A]{se: se})
}

type sideEffectRecurse[M any, U, A any] struct {
	se SideEffect[M]
}

func (sr sideEffectRecurse[M, U, A]) OnInstance(op M) Either[Erased, Comp[U, A]] {
	return Left[Erased, Comp[U, A]](sr.se.RunOp(op))
}

func (sr sideEffectRecurse[M, U, A]) OnBatch(ops []M) Either[[]Erased, M] {
	return Left[[]Erased, M](sr.se.RunBatch(ops))
}
