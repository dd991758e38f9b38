// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Capability identifies one effect capability. Identity is pointer identity
// of the token, so two capabilities with structurally identical instance
// types remain distinct. The name appears only in diagnostics.
type Capability struct {
	name string
}

// NewCapability allocates a fresh capability identity token.
func NewCapability(name string) *Capability {
	return &Capability{name: name}
}

// String returns the capability's diagnostic name.
func (c *Capability) String() string {
	return c.name
}

// Union is a type-erased effect instance: the operation value tagged with
// the capability it belongs to. A Union with no capability token is the
// structural no-op placeholder produced by [NoOp]; it is unwrapped by every
// traversal before projection and never offered to a strategy.
type Union struct {
	cap *Capability
	op  Erased
}

// Capability returns the instance's identity token, nil for the placeholder.
func (u Union) Capability() *Capability {
	return u.cap
}

// Op returns the erased operation value.
func (u Union) Op() Erased {
	return u.op
}

// IsNoOp reports whether the instance is the structural placeholder.
func (u Union) IsNoOp() bool {
	return u.cap == nil
}

// wrongInstanceType panics on an instance whose capability token matches but
// whose operation value does not implement the declared instance type. This
// is mis-declared membership evidence, a defect, not a runtime condition.
//
//go:noinline
func wrongInstanceType(capability string) {
	panic("eff: instance tagged " + capability + " does not implement the declared instance type")
}

// MemberIn witnesses that capability M occurs somewhere in stack R; it
// supports injection only. The weakest evidence, sufficient for sending
// instances.
type MemberIn[M any, R any] struct {
	cap *Capability
}

// InOf constructs injection-only evidence for capability c in stack R.
func InOf[M any, R any](c *Capability) MemberIn[M, R] {
	return MemberIn[M, R]{cap: c}
}

// Inject tags an instance of M as an instance of the stack R. Total.
func (m MemberIn[M, R]) Inject(op M) Union {
	return Union{cap: m.cap, op: op}
}

// MemberInOut witnesses that M occurs in R with the stack shape kept fixed:
// it can additionally recognize M-instances among R-instances. This is the
// evidence used by operations that rewrite without removing (interception,
// transformation, augmentation).
type MemberInOut[M any, R any] struct {
	cap *Capability
}

// InOutOf constructs stack-preserving evidence for capability c in stack R.
func InOutOf[M any, R any](c *Capability) MemberInOut[M, R] {
	return MemberInOut[M, R]{cap: c}
}

// Inject tags an instance of M as an instance of R. Total.
func (m MemberInOut[M, R]) Inject(op M) Union {
	return Union{cap: m.cap, op: op}
}

// Extract recovers the M-instance when the union belongs to this capability.
// Dispatch is by capability identity, never by structural shape.
func (m MemberInOut[M, R]) Extract(u Union) (M, bool) {
	if u.cap != m.cap {
		var zero M
		return zero, false
	}
	op, ok := u.op.(M)
	if !ok {
		wrongInstanceType(m.cap.name)
	}
	return op, true
}

// In weakens the evidence to injection only.
func (m MemberInOut[M, R]) In() MemberIn[M, R] {
	return MemberIn[M, R]{cap: m.cap}
}

// Member is the full membership evidence: M occurs in stack R and U is the
// stack remaining after removing M. It powers the operations that shrink the
// stack (interpretation, translation). Projection is total: a union either
// yields the M-instance or passes through unchanged as a U-instance (the
// runtime representation is stack-agnostic, so no re-tagging is needed).
type Member[M any, R, U any] struct {
	cap *Capability
}

// MemberOf constructs full evidence: capability c occurs in R, remainder U.
func MemberOf[M any, R, U any](c *Capability) Member[M, R, U] {
	return Member[M, R, U]{cap: c}
}

// Inject tags an instance of M as an instance of R. Total.
func (m Member[M, R, U]) Inject(op M) Union {
	return Union{cap: m.cap, op: op}
}

// Project recovers the M-instance, or reports that the union belongs to the
// remainder stack U. Dispatch is by capability identity.
func (m Member[M, R, U]) Project(u Union) (M, bool) {
	if u.cap != m.cap {
		var zero M
		return zero, false
	}
	op, ok := u.op.(M)
	if !ok {
		wrongInstanceType(m.cap.name)
	}
	return op, true
}

// InOut weakens the evidence to the stack-preserving form.
func (m Member[M, R, U]) InOut() MemberInOut[M, R] {
	return MemberInOut[M, R]{cap: m.cap}
}

// In weakens the evidence to injection only.
func (m Member[M, R, U]) In() MemberIn[M, R] {
	return MemberIn[M, R]{cap: m.cap}
}

// Into embeds a computation into a wider stack S. The caller asserts that
// every capability of R is present in S; the conversion is lazy and
// re-types nodes one at a time as the computation is consumed.
func Into[S any, R, A any](e Comp[R, A]) Comp[S, A] {
	switch n := e.(type) {
	case *pureComp[R, A]:
		return &pureComp[S, A]{value: n.value, l: intoLast[S](n.l)}
	case *impureComp[R, A]:
		return &impureComp[S, A]{union: n.union, k: intoCont[S](n.k), l: intoLast[S](n.l)}
	case *batchComp[R, A]:
		return &batchComp[S, A]{unions: n.unions, k: intoCont[S](n.k), l: intoLast[S](n.l)}
	}
	panic("eff: unknown computation node")
}

func intoCont[S any, R, A any](k Continuation[R, A]) Continuation[S, A] {
	return contOf[S, A](func(x Erased) Comp[S, Erased] {
		return Erase(Into[S](k.Apply(x)))
	}, intoLast[S](k.onNone))
}

func intoLast[S any, R any](l Last[R]) Last[S] {
	if !l.IsDefined() {
		return Last[S]{}
	}
	return LastOf(Into[S](l.action))
}
