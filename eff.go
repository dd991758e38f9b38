// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Erased represents a type-erased value flowing through continuation steps.
// Concrete types are recovered via type assertions at step boundaries.
type Erased = any

// Unit is the result type of computations run only for their effects.
type Unit = struct{}

// NoFx is the empty capability stack. A Comp[NoFx, A] references no effect
// capabilities and can be evaluated directly with [Run].
type NoFx struct{}

// Comp is a suspended computation over the capability stack R, eventually
// producing a value of type A. It is a persistent data structure with three
// node kinds: a resolved value, one pending effect instance plus the rest of
// the computation, and a batch of independent instances whose results are
// needed together. Every node additionally carries an optional deferred
// action (see [Last]) that runs exactly once when a traversal consumes the
// node, regardless of how the main branch ends.
//
// The stack parameter R is a phantom marker: declare an empty struct type per
// stack and wire capabilities to it through membership evidence (see
// [Member]). No value of R is ever constructed.
//
// Comp is a sealed interface; its node types live in this package and are
// produced by [Pure], [Perform], [PerformBatch], [BatchOf], [NoOp] and the
// combinators.
type Comp[R, A any] interface {
	// withLast combines an additional deferred action into the node.
	withLast(l Last[R]) Comp[R, A]
}

// pureComp is a computation already resolved to a value.
type pureComp[R, A any] struct {
	value A
	l     Last[R]
}

// impureComp is one pending effect instance plus the continuation that
// resumes the computation once the instance is resolved.
type impureComp[R, A any] struct {
	union Union
	k     Continuation[R, A]
	l     Last[R]
}

// batchComp is the applicative case: independent instances, submitted
// together in order, whose results resume the continuation as one sequence.
// The continuation is applied with a []Erased holding one result per
// instance in submission order.
type batchComp[R, A any] struct {
	unions []Union
	k      Continuation[R, A]
	l      Last[R]
}

func (c *pureComp[R, A]) withLast(l Last[R]) Comp[R, A] {
	if !l.IsDefined() {
		return c
	}
	return &pureComp[R, A]{value: c.value, l: c.l.And(l)}
}

func (c *impureComp[R, A]) withLast(l Last[R]) Comp[R, A] {
	if !l.IsDefined() {
		return c
	}
	return &impureComp[R, A]{union: c.union, k: c.k, l: c.l.And(l)}
}

func (c *batchComp[R, A]) withLast(l Last[R]) Comp[R, A] {
	if !l.IsDefined() {
		return c
	}
	return &batchComp[R, A]{unions: c.unions, k: c.k, l: c.l.And(l)}
}

// Pure lifts a value into a computation with no effect instances.
func Pure[R, A any](a A) Comp[R, A] {
	return &pureComp[R, A]{value: a}
}

// Perform submits one effect instance of capability M and suspends until a
// strategy resolves it with a value of type X. The result type cannot be
// inferred from the instance, so it is given explicitly:
//
//	n := eff.Perform[int](member.In(), Get{})
func Perform[X any, M any, R any](m MemberIn[M, R], op M) Comp[R, X] {
	return &impureComp[R, X]{union: m.Inject(op)}
}

// PerformBatch submits several independent instances of one capability as a
// single batch. The continuation observes their results in submission order.
// An empty batch resolves to an empty slice without reaching any strategy.
func PerformBatch[X any, M any, R any](m MemberIn[M, R], ops []M) Comp[R, []X] {
	unions := make([]Union, len(ops))
	for i, op := range ops {
		unions[i] = m.Inject(op)
	}
	k := Continuation[R, []X]{steps: singleStep[R](func(x Erased) Comp[R, Erased] {
		rs := x.([]Erased)
		out := make([]X, len(rs))
		for i, r := range rs {
			out[i] = resumeAs[X](r)
		}
		return &pureComp[R, Erased]{value: out}
	})}
	return &batchComp[R, []X]{unions: unions, k: k}
}

// BatchOf submits a heterogeneous batch of already-injected instances. The
// computation resolves to the instances' results in submission order, erased.
func BatchOf[R any](unions ...Union) Comp[R, []Erased] {
	us := make([]Union, len(unions))
	copy(us, unions)
	return &batchComp[R, []Erased]{unions: us}
}

// NoOp wraps a value as a structural placeholder instance. The node is
// syntactically an effect occurrence but carries no capability; every
// traversal unwraps it before projection, so it never reaches a strategy and
// never alters a result.
func NoOp[R, A any](a A) Comp[R, A] {
	return &impureComp[R, A]{union: Union{op: a}}
}

// Bind sequences two computations: run m, then pass its result to f.
// Effect instances keep their relative order; on suspended nodes the step is
// appended to the continuation queue in O(1) without nesting closures.
func Bind[R, A, B any](m Comp[R, A], f func(A) Comp[R, B]) Comp[R, B] {
	switch n := m.(type) {
	case *pureComp[R, A]:
		return f(n.value).withLast(n.l)
	case *impureComp[R, A]:
		return &impureComp[R, B]{union: n.union, k: appendStep(n.k, f), l: n.l}
	case *batchComp[R, A]:
		return &batchComp[R, B]{unions: n.unions, k: appendStep(n.k, f), l: n.l}
	}
	panic("eff: unknown computation node")
}

// Map applies a pure function to the eventual result of a computation.
// Equivalent to Bind with a pure tail, without the intermediate node when the
// computation is suspended.
func Map[R, A, B any](m Comp[R, A], f func(A) B) Comp[R, B] {
	switch n := m.(type) {
	case *pureComp[R, A]:
		return &pureComp[R, B]{value: f(n.value), l: n.l}
	case *impureComp[R, A]:
		return &impureComp[R, B]{union: n.union, k: appendMapStep(n.k, f), l: n.l}
	case *batchComp[R, A]:
		return &batchComp[R, B]{unions: n.unions, k: appendMapStep(n.k, f), l: n.l}
	}
	panic("eff: unknown computation node")
}

// Then sequences two computations, discarding the first result.
func Then[R, A, B any](m Comp[R, A], n Comp[R, B]) Comp[R, B] {
	return Bind(m, func(A) Comp[R, B] { return n })
}

// AddLast attaches a deferred action to a computation. The action runs
// exactly once per traversal that consumes the node, whether the main branch
// completes, short-circuits, or is rewritten first; rewrites carry it along.
func AddLast[R, A any](m Comp[R, A], action Comp[R, Unit]) Comp[R, A] {
	return m.withLast(LastOf(action))
}

// Erase forgets a computation's result type. The conversion rebuilds only
// the head node; steps and instances are shared.
func Erase[R, A any](m Comp[R, A]) Comp[R, Erased] {
	switch n := m.(type) {
	case *pureComp[R, A]:
		return &pureComp[R, Erased]{value: n.value, l: n.l}
	case *impureComp[R, A]:
		return &impureComp[R, Erased]{union: n.union, k: eraseCont(n.k), l: n.l}
	case *batchComp[R, A]:
		return &batchComp[R, Erased]{unions: n.unions, k: eraseCont(n.k), l: n.l}
	}
	panic("eff: unknown computation node")
}

// Run evaluates a computation whose capability stack has been fully
// interpreted away. Pending deferred actions run before the value is
// returned. Encountering a real effect instance is a defect: the stack was
// declared empty but an instance survived, so Run panics.
func Run[A any](e Comp[NoFx, A]) A {
	for {
		switch n := e.(type) {
		case *pureComp[NoFx, A]:
			if n.l.IsDefined() {
				Run[Unit](n.l.action)
			}
			return n.value
		case *impureComp[NoFx, A]:
			if !n.union.IsNoOp() {
				uninterpretedInstance(n.union.cap.name)
			}
			e = n.k.Apply(n.union.op).withLast(n.l)
		case *batchComp[NoFx, A]:
			results := make([]Erased, len(n.unions))
			for i, u := range n.unions {
				if !u.IsNoOp() {
					uninterpretedInstance(u.cap.name)
				}
				results[i] = u.op
			}
			e = n.k.Apply(results).withLast(n.l)
		default:
			panic("eff: unknown computation node")
		}
	}
}

// uninterpretedInstance panics on an instance surviving full interpretation.
// Extracted as a noinline function so Run's loop body stays inlineable.
//
//go:noinline
func uninterpretedInstance(capability string) {
	panic("eff: uninterpreted instance of capability " + capability)
}

// resumeAs recovers a typed resumption value. A nil resumption yields the
// zero value, so capabilities whose results are pointers or interfaces
// cannot use nil as a meaningful result value.
func resumeAs[A any](x Erased) A {
	if v, ok := x.(A); ok {
		return v
	}
	if x == nil {
		var zero A
		return zero
	}
	panic("eff: continuation resumed with mismatched result type")
}
