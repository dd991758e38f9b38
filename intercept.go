// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Interceptor is the strategy shape for observing or rewriting a
// capability's instances without removing the capability from the stack.
//
// The continuations handed to an interceptor are already spliced: whatever
// computation a method returns replaces the node in the output, and its own
// instances are not offered to the interceptor again. Downstream nodes
// reached through the continuation still are. A method that discards its
// continuation must sequence k.RunOnNone() itself if it wants the fallback
// to execute.
type Interceptor[M any, R, A, B any] interface {
	OnPure(a A) Comp[R, B]
	OnInstance(op M, k Continuation[R, B]) Comp[R, B]
	OnLastInstance(op M, k Continuation[R, Unit]) Comp[R, Unit]
	OnBatch(ops []M, k Continuation[R, B]) Comp[R, B]
	OnLastBatch(ops []M, k Continuation[R, Unit]) Comp[R, Unit]
}

// Intercept offers every instance of capability M to i, leaving the stack
// unchanged. Instances of other capabilities pass through untouched.
func Intercept[M any, R, A, B any](e Comp[R, A], m MemberInOut[M, R], i Interceptor[M, R, A, B]) Comp[R, B] {
	return runInterceptor(e, m.Extract, i)
}

// runInterceptor mirrors runLoop within a single stack. Continuations are
// lifted before being offered so that interception extends over everything
// the strategy resumes.
func runInterceptor[M any, R, A, B any](e Comp[R, A], extract func(Union) (M, bool), i Interceptor[M, R, A, B]) Comp[R, B] {
	for {
		switch n := e.(type) {
		case *pureComp[R, A]:
			return i.OnPure(n.value).withLast(interceptLast(n.l, extract, i))

		case *impureComp[R, A]:
			if n.union.IsNoOp() {
				e = n.k.Apply(n.union.op).withLast(n.l)
				continue
			}
			k := n.k
			lifted := contOf[R, B](func(x Erased) Comp[R, Erased] {
				return Erase(runInterceptor(k.Apply(x), extract, i))
			}, interceptLast(k.onNone, extract, i))
			if op, ok := extract(n.union); ok {
				return i.OnInstance(op, lifted).withLast(interceptLast(n.l, extract, i))
			}
			return &impureComp[R, B]{union: n.union, k: lifted, l: interceptLast(n.l, extract, i)}

		case *batchComp[R, A]:
			if len(n.unions) == 0 {
				e = n.k.Apply([]Erased{}).withLast(n.l)
				continue
			}
			ops, opIdx, others, otherIdx := partitionUnions(n.unions, extract)
			if len(ops) == 0 {
				k := n.k
				lifted := contOf[R, B](func(x Erased) Comp[R, Erased] {
					return Erase(runInterceptor(k.Apply(x), extract, i))
				}, interceptLast(k.onNone, extract, i))
				return &batchComp[R, B]{unions: n.unions, k: lifted, l: interceptLast(n.l, extract, i)}
			}
			k2 := batchContinuation(n.k, len(n.unions), opIdx, others, otherIdx)
			lifted := contOf[R, B](func(x Erased) Comp[R, Erased] {
				return Erase(runInterceptor(k2.Apply(x), extract, i))
			}, interceptLast(k2.onNone, extract, i))
			return i.OnBatch(ops, lifted).withLast(interceptLast(n.l, extract, i))

		default:
			panic("eff: unknown computation node")
		}
	}
}

func runInterceptorLast[M any, R, A, B any](e Comp[R, Unit], extract func(Union) (M, bool), i Interceptor[M, R, A, B]) Comp[R, Unit] {
	for {
		switch n := e.(type) {
		case *pureComp[R, Unit]:
			return Pure[R](Unit{}).withLast(interceptLast(n.l, extract, i))

		case *impureComp[R, Unit]:
			if n.union.IsNoOp() {
				e = n.k.Apply(n.union.op).withLast(n.l)
				continue
			}
			k := n.k
			lifted := contOf[R, Unit](func(x Erased) Comp[R, Erased] {
				return Erase(runInterceptorLast(k.Apply(x), extract, i))
			}, interceptLast(k.onNone, extract, i))
			if op, ok := extract(n.union); ok {
				return i.OnLastInstance(op, lifted).withLast(interceptLast(n.l, extract, i))
			}
			return &impureComp[R, Unit]{union: n.union, k: lifted, l: interceptLast(n.l, extract, i)}

		case *batchComp[R, Unit]:
			if len(n.unions) == 0 {
				e = n.k.Apply([]Erased{}).withLast(n.l)
				continue
			}
			ops, opIdx, others, otherIdx := partitionUnions(n.unions, extract)
			if len(ops) == 0 {
				k := n.k
				lifted := contOf[R, Unit](func(x Erased) Comp[R, Erased] {
					return Erase(runInterceptorLast(k.Apply(x), extract, i))
				}, interceptLast(k.onNone, extract, i))
				return &batchComp[R, Unit]{unions: n.unions, k: lifted, l: interceptLast(n.l, extract, i)}
			}
			k2 := batchContinuation(n.k, len(n.unions), opIdx, others, otherIdx)
			lifted := contOf[R, Unit](func(x Erased) Comp[R, Erased] {
				return Erase(runInterceptorLast(k2.Apply(x), extract, i))
			}, interceptLast(k2.onNone, extract, i))
			return i.OnLastBatch(ops, lifted).withLast(interceptLast(n.l, extract, i))

		default:
			panic("eff: unknown computation node")
		}
	}
}

func interceptLast[M any, R, A, B any](l Last[R], extract func(Union) (M, bool), i Interceptor[M, R, A, B]) Last[R] {
	if !l.IsDefined() {
		return Last[R]{}
	}
	return LastOf(runInterceptorLast(l.action, extract, i))
}

// InterceptTranslate replaces every instance of capability M in place with
// the computation t produces for it, over the same stack. The produced
// computation is spliced into the output directly, so it may itself perform
// M without being rewritten again.
func InterceptTranslate[M any, R, A any](e Comp[R, A], m MemberInOut[M, R], t Translator[M, R]) Comp[R, A] {
	return Intercept[M, R, A, A](e, m, natInterceptor[M, R, A]{t: t})
}

type natInterceptor[M any, R, A any] struct {
	t Translator[M, R]
}

func (ni natInterceptor[M, R, A]) OnPure(a A) Comp[R, A] {
	return Pure[R](a)
}

func (ni natInterceptor[M, R, A]) OnInstance(op M, k Continuation[R, A]) Comp[R, A] {
	return Bind(ni.t.TranslateOp(op), k.Apply)
}

func (ni natInterceptor[M, R, A]) OnLastInstance(op M, k Continuation[R, Unit]) Comp[R, Unit] {
	return Bind(ni.t.TranslateOp(op), k.Apply)
}

func (ni natInterceptor[M, R, A]) OnBatch(ops []M, k Continuation[R, A]) Comp[R, A] {
	return translateBatch(ops, ni.t.TranslateOp, k.Apply)
}

func (ni natInterceptor[M, R, A]) OnLastBatch(ops []M, k Continuation[R, Unit]) Comp[R, Unit] {
	return translateBatch(ops, ni.t.TranslateOp, k.Apply)
}

// translateBatch resolves a batch one instance at a time, in submission
// order, then resumes with the collected results. Result slices are copied
// per step so a re-applied continuation cannot observe later writes.
func translateBatch[M any, R, C any](ops []M, translate func(M) Comp[R, Erased], apply func(Erased) Comp[R, C]) Comp[R, C] {
	var build func(i int, acc []Erased) Comp[R, C]
	build = func(i int, acc []Erased) Comp[R, C] {
		if i == len(ops) {
			return apply(acc)
		}
		return Bind(translate(ops[i]), func(x Erased) Comp[R, C] {
			next := make([]Erased, len(acc)+1)
			copy(next, acc)
			next[len(acc)] = x
			return build(i+1, next)
		})
	}
	return build(0, make([]Erased, 0, len(ops)))
}
