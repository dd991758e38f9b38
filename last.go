// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Last is an optional deferred action: a Unit-producing side computation
// attached to a node and guaranteed to run exactly once, on every
// terminating path of the traversal that consumes the node. Rewrites of the
// computation (interpretation, interception, translation, transformation)
// carry the action through rather than duplicating it.
type Last[R any] struct {
	action Comp[R, Unit]
}

// LastOf wraps a computation as a deferred action.
func LastOf[R any](action Comp[R, Unit]) Last[R] {
	return Last[R]{action: action}
}

// IsDefined reports whether an action is attached.
func (l Last[R]) IsDefined() bool {
	return l.action != nil
}

// Action returns the attached computation, or a no-op when none is attached.
func (l Last[R]) Action() Comp[R, Unit] {
	if l.action == nil {
		return Pure[R](Unit{})
	}
	return l.action
}

// And sequences two deferred actions into one; both still run exactly once.
func (l Last[R]) And(other Last[R]) Last[R] {
	switch {
	case l.action == nil:
		return other
	case other.action == nil:
		return l
	}
	return Last[R]{action: Then(l.action, other.action)}
}
