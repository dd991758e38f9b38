// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Continuation is the rest of a computation, parameterized by the
// not-yet-known result of the current effect instance. It is a persistent
// queue of type-erased bind steps plus an onNone fallback: a deferred action
// that any consumer deciding not to apply the continuation must still run,
// so cleanup reachable only through the unexplored branch is not lost.
//
// Composition appends one queued step in O(1); applying the continuation
// walks the queue iteratively, so repeated composition adds no host-stack
// depth during interpretation.
type Continuation[R, A any] struct {
	steps  stepChain[R]
	onNone Last[R]
}

// Apply resumes the continuation with the resolved instance value.
// The step queue is consumed iteratively: pure intermediate nodes feed the
// next step directly (accumulating their deferred actions), and a suspended
// intermediate node absorbs the remaining queue into its own continuation.
func (k Continuation[R, A]) Apply(x Erased) Comp[R, A] {
	steps := k.steps
	var acc Last[R]
	for {
		f, rest, ok := stepUncons[R](steps)
		if !ok {
			return &pureComp[R, A]{value: resumeAs[A](x), l: acc}
		}
		switch n := f(x).(type) {
		case *pureComp[R, Erased]:
			x = n.value
			acc = acc.And(n.l)
			steps = rest
		case *impureComp[R, Erased]:
			merged := Continuation[R, A]{
				steps:  chainConcat[R](n.k.steps, rest),
				onNone: n.k.onNone.And(k.onNone),
			}
			return (&impureComp[R, A]{union: n.union, k: merged, l: n.l}).withLast(acc)
		case *batchComp[R, Erased]:
			merged := Continuation[R, A]{
				steps:  chainConcat[R](n.k.steps, rest),
				onNone: n.k.onNone.And(k.onNone),
			}
			return (&batchComp[R, A]{unions: n.unions, k: merged, l: n.l}).withLast(acc)
		default:
			panic("eff: unknown computation node")
		}
	}
}

// OnNone returns the continuation's fallback action.
func (k Continuation[R, A]) OnNone() Last[R] {
	return k.onNone
}

// RunOnNone reifies the fallback as a computation. A strategy that discards
// a continuation sequences this before its terminal result; with no fallback
// attached the computation is a no-op.
func (k Continuation[R, A]) RunOnNone() Comp[R, Unit] {
	if !k.onNone.IsDefined() {
		return Pure[R](Unit{})
	}
	return k.onNone.action
}

// WithFallback attaches an additional onNone action, kept alongside any
// existing fallback.
func (k Continuation[R, A]) WithFallback(action Comp[R, Unit]) Continuation[R, A] {
	return Continuation[R, A]{steps: k.steps, onNone: k.onNone.And(LastOf(action))}
}

// contOf builds a single-step continuation.
func contOf[R, A any](f func(Erased) Comp[R, Erased], onNone Last[R]) Continuation[R, A] {
	return Continuation[R, A]{steps: singleStep[R](f), onNone: onNone}
}

// appendStep queues a typed bind step after the existing steps.
func appendStep[R, A, B any](k Continuation[R, A], f func(A) Comp[R, B]) Continuation[R, B] {
	step := func(x Erased) Comp[R, Erased] {
		return Erase(f(resumeAs[A](x)))
	}
	return Continuation[R, B]{steps: chainConcat[R](k.steps, singleStep[R](step)), onNone: k.onNone}
}

// appendMapStep queues a pure transformation without an intermediate
// computation node.
func appendMapStep[R, A, B any](k Continuation[R, A], f func(A) B) Continuation[R, B] {
	step := func(x Erased) Comp[R, Erased] {
		return &pureComp[R, Erased]{value: f(resumeAs[A](x))}
	}
	return Continuation[R, B]{steps: chainConcat[R](k.steps, singleStep[R](step)), onNone: k.onNone}
}

// eraseCont forgets a continuation's result type; the queue is shared.
func eraseCont[R, A any](k Continuation[R, A]) Continuation[R, Erased] {
	return Continuation[R, Erased]{steps: k.steps, onNone: k.onNone}
}

// stepChain is a persistent sequence of bind steps with O(1) concatenation.
// nil is the empty chain. Dispatch uses type switches; the interface is a
// pure marker.
type stepChain[R any] interface {
	chain()
}

// stepLeaf holds one type-erased bind step.
type stepLeaf[R any] struct {
	f func(Erased) Comp[R, Erased]
}

func (*stepLeaf[R]) chain() {}

// stepPair composes two chains without mutation.
type stepPair[R any] struct {
	first, rest stepChain[R]
}

func (*stepPair[R]) chain() {}

func singleStep[R any](f func(Erased) Comp[R, Erased]) stepChain[R] {
	return &stepLeaf[R]{f: f}
}

// chainConcat links two chains. Either side being empty returns the other,
// avoiding an unnecessary pair node.
func chainConcat[R any](a, b stepChain[R]) stepChain[R] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &stepPair[R]{first: a, rest: b}
}

// stepUncons removes the first step of a chain. Nested pairs are rotated
// left iteratively, so chains built by repeated concatenation flatten with
// constant host-stack depth.
func stepUncons[R any](c stepChain[R]) (func(Erased) Comp[R, Erased], stepChain[R], bool) {
	for {
		if c == nil {
			return nil, nil, false
		}
		switch n := c.(type) {
		case *stepLeaf[R]:
			return n.f, nil, true
		case *stepPair[R]:
			if n.first == nil {
				c = n.rest
				continue
			}
			if leaf, ok := n.first.(*stepLeaf[R]); ok {
				return leaf.f, n.rest, true
			}
			pair := n.first.(*stepPair[R])
			c = &stepPair[R]{first: pair.first, rest: chainConcat[R](pair.rest, n.rest)}
		default:
			return nil, nil, false
		}
	}
}
