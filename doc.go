// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package eff provides suspended computations over capability stacks and a
// stack-safe engine for interpreting them.
//
// A [Comp] describes a program without running it. It is either a pure
// value, a single capability instance paired with the continuation awaiting
// its result, or a batch of instances resumed together. Capability identity
// is an allocated [Capability] token; an instance is the token paired with
// an operation value, and the stack position of a capability is tracked by
// phantom type parameters through the membership evidence [MemberIn],
// [MemberInOut] and [Member].
//
// Computations compose with [Bind], [Map] and [Then]. Composition over a
// suspended node appends to a queue with O(1) concatenation, so left-nested
// and right-nested chains cost the same and applying a [Continuation]
// consumes the queue iteratively. All engine traversals run as loops whose
// host-stack depth does not grow with the computation's length.
//
// Interpretation removes one capability at a time. [RunInterpreter] drives
// the generic traversal with an [Interpreter]; the adapter shapes [Recurse],
// [StateRecurse] and [Loop] cover the common cases through [Interpret],
// [InterpretState] and [InterpretLoop]. [Intercept] observes or rewrites
// instances without removing the capability, [Translate] expands instances
// into computations over the remainder stack, [Transform] renames one
// capability to another, and [Augment] and [Write] precede instances with
// derived observations. Once every capability is removed the stack is
// [NoFx] and [Run] extracts the final value.
//
// A computation may carry a deferred action, attached with [AddLast]: a
// computation run after the main branch finishes, whether it completed or
// was cut short by a strategy. Deferred actions compose by sequencing and
// survive every rewrite. Continuations may carry a fallback, attached with
// [Continuation.WithFallback], that the engine runs when the continuation
// is discarded.
//
// Resuming a continuation with nil produces the zero value of the expected
// type. Resuming with any other mismatched type is a defect and panics, as
// does running a computation whose stack still holds uninterpreted
// instances.
//
// A minimal program:
//
//	type stack struct{}
//	cap := eff.NewCapability("rng")
//	m := eff.MemberOf[int, stack, eff.NoFx](cap)
//	e := eff.Bind(eff.Perform[int](m.In(), 6), func(n int) eff.Comp[stack, int] {
//		return eff.Pure[stack](n * 7)
//	})
//	v := eff.Run(eff.Interpret(e, m, roll{})) // roll resolves each request to an int
package eff
