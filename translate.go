// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Translator maps one instance of a source capability to a computation over
// a different stack that produces its result.
type Translator[M any, U any] interface {
	TranslateOp(op M) Comp[U, Erased]
}

// TranslatorFunc adapts an ordinary function to the Translator interface.
type TranslatorFunc[M any, U any] func(op M) Comp[U, Erased]

func (f TranslatorFunc[M, U]) TranslateOp(op M) Comp[U, Erased] {
	return f(op)
}

// Translate removes capability M by expanding every instance into the
// computation t produces for it, expressed over the remainder stack. The
// produced computation must not perform M itself; such instances would be
// offered to t again.
func Translate[M any, R, U, A any](e Comp[R, A], m Member[M, R, U], t Translator[M, U]) Comp[U, A] {
	return runLoop[M, R, U, A, A](e, m.Project, translateInterpreter[M, R, U, A]{t: t})
}

type translateInterpreter[M any, R, U, A any] struct {
	t Translator[M, U]
}

func (ti translateInterpreter[M, R, U, A]) expand(op M) Comp[R, Erased] {
	return Into[R](ti.t.TranslateOp(op))
}

func (ti translateInterpreter[M, R, U, A]) OnPure(a A) Either[Comp[R, A], Comp[U, A]] {
	return Right[Comp[R, A]](Pure[U](a))
}

func (ti translateInterpreter[M, R, U, A]) OnEffect(op M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, A]] {
	return Left[Comp[R, A], Comp[U, A]](Bind(ti.expand(op), k.Apply))
}

func (ti translateInterpreter[M, R, U, A]) OnLastEffect(op M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	return Left[Comp[R, Unit], Comp[U, Unit]](Bind(ti.expand(op), k.Apply))
}

func (ti translateInterpreter[M, R, U, A]) OnBatchEffect(ops []M, k Continuation[R, A]) Either[Comp[R, A], Comp[U, A]] {
	return Left[Comp[R, A], Comp[U, A]](translateBatch(ops, ti.expand, k.Apply))
}

func (ti translateInterpreter[M, R, U, A]) OnLastBatchEffect(ops []M, k Continuation[R, Unit]) Either[Comp[R, Unit], Comp[U, Unit]] {
	return Left[Comp[R, Unit], Comp[U, Unit]](translateBatch(ops, ti.expand, k.Apply))
}

// Transform renames capability M to capability N across a computation,
// rewriting each instance through nat while preserving the computation's
// structure: batches stay batches, continuations and deferred actions are
// untouched apart from the rename.
func Transform[M any, N any, R, S, U, A any](e Comp[R, A], from Member[M, R, U], to Member[N, S, U], nat func(M) N) Comp[S, A] {
	return transformComp[M, R, S, A](e, from.Project, func(op M) Union {
		return to.Inject(nat(op))
	})
}

func transformComp[M any, R, S, A any](e Comp[R, A], project func(Union) (M, bool), rewrite func(M) Union) Comp[S, A] {
	for {
		switch n := e.(type) {
		case *pureComp[R, A]:
			return &pureComp[S, A]{value: n.value, l: transformLast[M, R, S](n.l, project, rewrite)}

		case *impureComp[R, A]:
			if n.union.IsNoOp() {
				e = n.k.Apply(n.union.op).withLast(n.l)
				continue
			}
			u := n.union
			if op, ok := project(u); ok {
				u = rewrite(op)
			}
			k := n.k
			lifted := contOf[S, A](func(x Erased) Comp[S, Erased] {
				return Erase(transformComp[M, R, S, A](k.Apply(x), project, rewrite))
			}, transformLast[M, R, S](k.onNone, project, rewrite))
			return &impureComp[S, A]{union: u, k: lifted, l: transformLast[M, R, S](n.l, project, rewrite)}

		case *batchComp[R, A]:
			unions := make([]Union, len(n.unions))
			for idx, u := range n.unions {
				if !u.IsNoOp() {
					if op, ok := project(u); ok {
						u = rewrite(op)
					}
				}
				unions[idx] = u
			}
			k := n.k
			lifted := contOf[S, A](func(x Erased) Comp[S, Erased] {
				return Erase(transformComp[M, R, S, A](k.Apply(x), project, rewrite))
			}, transformLast[M, R, S](k.onNone, project, rewrite))
			return &batchComp[S, A]{unions: unions, k: lifted, l: transformLast[M, R, S](n.l, project, rewrite)}

		default:
			panic("eff: unknown computation node")
		}
	}
}

func transformLast[M any, R, S any](l Last[R], project func(Union) (M, bool), rewrite func(M) Union) Last[S] {
	if !l.IsDefined() {
		return Last[S]{}
	}
	return LastOf(transformComp[M, R, S, Unit](l.action, project, rewrite))
}
