// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff_test

import (
	"testing"

	"code.hybscloud.com/eff"
)

// fiveStep interleaves three roll instances with two note instances and
// collects all five resolved values in program order.
func fiveStep() eff.Comp[appFx, []int] {
	return eff.Bind(rollP(0), func(a int) eff.Comp[appFx, []int] {
		return eff.Bind(noteP("x"), func(b int) eff.Comp[appFx, []int] {
			return eff.Bind(rollP(0), func(c int) eff.Comp[appFx, []int] {
				return eff.Bind(noteP("y"), func(d int) eff.Comp[appFx, []int] {
					return eff.Map(rollP(0), func(e int) []int {
						return []int{a, b, c, d, e}
					})
				})
			})
		})
	})
}

func TestInterleavedTwoCapabilityPipeline(t *testing.T) {
	afterRolls := eff.InterpretState[roll, appFx, appFx, int, []int, []int](
		fiveStep(), rollM, countRolls[appFx, []int]{base: 1})
	got := eff.Run(eff.Interpret(afterRolls, noteEnd, &decNotes[eff.NoFx, []int]{}))
	want := []int{1, 10, 2, 20, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInterpretationOrderIndependent(t *testing.T) {
	// Interpreting notes before rolls yields the same values.
	afterNotes := eff.Interpret(fiveStep(), noteM, &decNotes[appFx, []int]{})
	got := eff.Run(eff.InterpretState[roll, appFx, eff.NoFx, int, []int, []int](
		afterNotes, rollEnd, countRolls[eff.NoFx, []int]{base: 1}))
	want := []int{1, 10, 2, 20, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// haltNotes discards the continuation at the first note and finishes with a
// fixed terminal value.
type haltNotes[U any] struct{}

func (haltNotes[U]) OnInstance(note) eff.Either[eff.Erased, eff.Comp[U, []int]] {
	return eff.Right[eff.Erased](eff.Pure[U]([]int{-1}))
}

func (haltNotes[U]) OnBatch(ops []note) eff.Either[[]eff.Erased, note] {
	return eff.Left[[]eff.Erased, note](make([]eff.Erased, len(ops)))
}

func TestShortCircuitDiscardsContinuation(t *testing.T) {
	// Rolls after the first note must never be offered.
	afterNotes := eff.Interpret(fiveStep(), noteM, haltNotes[appFx]{})
	got := eff.Run(eff.InterpretState[roll, appFx, eff.NoFx, int, []int, []int](
		afterNotes, rollEnd, countRolls[eff.NoFx, []int]{base: 1}))
	if len(got) != 1 || got[0] != -1 {
		t.Fatalf("got %v, want [-1]", got)
	}
}

func TestShortCircuitStillRunsDeferred(t *testing.T) {
	comp := eff.AddLast(fiveStep(), tickP())
	afterNotes := eff.Interpret(comp, noteM, haltNotes[appFx]{})
	afterRolls := eff.InterpretState[roll, appFx, appFx, int, []int, []int](
		afterNotes, rollM, countRolls[appFx, []int]{base: 1})
	ticks := &tickCounter{}
	got := eff.Run(eff.InterpretUnsafe(afterRolls, tickEnd, ticks))
	if len(got) != 1 || got[0] != -1 {
		t.Fatalf("got %v, want [-1]", got)
	}
	if ticks.n != 1 {
		t.Fatalf("deferred action ran %d times, want 1", ticks.n)
	}
}

// fallbackRolls resolves every roll to seven after attaching act as the
// continuation's fallback, so a later discarding pass must run it.
type fallbackRolls struct {
	act eff.Comp[appFx, eff.Unit]
}

func (f fallbackRolls) OnPure(a []int) eff.Either[eff.Comp[appFx, []int], eff.Comp[appFx, []int]] {
	return eff.Right[eff.Comp[appFx, []int]](eff.Pure[appFx](a))
}

func (f fallbackRolls) OnEffect(_ roll, k eff.Continuation[appFx, []int]) eff.Either[eff.Comp[appFx, []int], eff.Comp[appFx, []int]] {
	return eff.Left[eff.Comp[appFx, []int], eff.Comp[appFx, []int]](k.WithFallback(f.act).Apply(7))
}

func (f fallbackRolls) OnLastEffect(_ roll, k eff.Continuation[appFx, eff.Unit]) eff.Either[eff.Comp[appFx, eff.Unit], eff.Comp[appFx, eff.Unit]] {
	return eff.Left[eff.Comp[appFx, eff.Unit], eff.Comp[appFx, eff.Unit]](k.Apply(nil))
}

func (f fallbackRolls) OnBatchEffect(ops []roll, k eff.Continuation[appFx, []int]) eff.Either[eff.Comp[appFx, []int], eff.Comp[appFx, []int]] {
	xs := make([]eff.Erased, len(ops))
	for i := range xs {
		xs[i] = 7
	}
	return eff.Left[eff.Comp[appFx, []int], eff.Comp[appFx, []int]](k.WithFallback(f.act).Apply(xs))
}

func (f fallbackRolls) OnLastBatchEffect(ops []roll, k eff.Continuation[appFx, eff.Unit]) eff.Either[eff.Comp[appFx, eff.Unit], eff.Comp[appFx, eff.Unit]] {
	return eff.Left[eff.Comp[appFx, eff.Unit], eff.Comp[appFx, eff.Unit]](k.Apply(make([]eff.Erased, len(ops))))
}

func TestFallbackRunsWhenContinuationDiscarded(t *testing.T) {
	comp := eff.Bind(rollP(0), func(a int) eff.Comp[appFx, []int] {
		return eff.Bind(noteP("cut"), func(b int) eff.Comp[appFx, []int] {
			return eff.Pure[appFx]([]int{a, b})
		})
	})
	tickAct := tickP()
	afterRolls := eff.RunInterpreter[roll, appFx, appFx, []int, []int](
		comp, rollM, fallbackRolls{act: tickAct})
	afterNotes := eff.Interpret(afterRolls, noteM, haltNotes[appFx]{})
	ticks := &tickCounter{}
	got := eff.Run(eff.InterpretUnsafe(afterNotes, tickEnd, ticks))
	if len(got) != 1 || got[0] != -1 {
		t.Fatalf("got %v, want [-1]", got)
	}
	if ticks.n != 1 {
		t.Fatalf("fallback ran %d times, want 1", ticks.n)
	}
}

func TestFallbackNotRunOnNormalCompletion(t *testing.T) {
	comp := eff.Map(rollP(0), func(a int) []int { return []int{a} })
	tickAct := tickP()
	afterRolls := eff.RunInterpreter[roll, appFx, appFx, []int, []int](
		comp, rollM, fallbackRolls{act: tickAct})
	ticks := &tickCounter{}
	got := eff.Run(eff.InterpretUnsafe(afterRolls, tickEnd, ticks))
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("got %v, want [7]", got)
	}
	if ticks.n != 0 {
		t.Fatalf("fallback ran %d times, want 0", ticks.n)
	}
}

func TestBatchResolvedInSubmissionOrder(t *testing.T) {
	comp := eff.PerformBatch[int](rollM.In(), []roll{{5}, {1}, {9}, {3}})
	got := eff.Run(eff.Interpret(comp, rollEnd, rollTens[eff.NoFx, []int]{}))
	want := []int{50, 10, 90, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEmptyBatchSkipsStrategy(t *testing.T) {
	comp := eff.PerformBatch[int](rollM.In(), nil)
	got := eff.Run(eff.Interpret(comp, rollEnd, stringRolls[eff.NoFx, []int]{}))
	if len(got) != 0 {
		t.Fatalf("got %d results, want 0", len(got))
	}
}

func TestBatchFallsBackPerInstance(t *testing.T) {
	// OnBatch declines, so instances resolve one at a time in order.
	comp := eff.PerformBatch[int](rollM.In(), []roll{{0}, {0}, {0}})
	got := eff.Run(eff.InterpretState[roll, appFx, eff.NoFx, int, []int, []int](
		comp, rollEnd, soloRolls[eff.NoFx, []int]{}))
	want := []int{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// soloRolls numbers instances from zero and refuses the batched path.
type soloRolls[U, A any] struct{}

func (soloRolls[U, A]) Init() int { return 0 }

func (soloRolls[U, A]) OnInstance(_ roll, n int) (eff.Erased, int) {
	return n, n + 1
}

func (soloRolls[U, A]) OnBatch([]roll, int) ([]eff.Erased, int, bool) {
	return nil, 0, false
}

func (soloRolls[U, A]) Finalize(a A, _ int) A { return a }

// combineRolls replaces a batch with one combined instance whose bound is
// the batch size; the combined instance resolves to the whole result slice.
type combineRolls[U any] struct{}

func (combineRolls[U]) OnInstance(op roll) eff.Either[eff.Erased, eff.Comp[U, []int]] {
	xs := make([]eff.Erased, op.bound)
	for i := range xs {
		xs[i] = i + 100
	}
	return eff.Left[eff.Erased, eff.Comp[U, []int]](xs)
}

func (combineRolls[U]) OnBatch(ops []roll) eff.Either[[]eff.Erased, roll] {
	return eff.Right[[]eff.Erased](roll{bound: len(ops)})
}

func TestCombinedBatchResubmission(t *testing.T) {
	comp := eff.PerformBatch[int](rollM.In(), []roll{{0}, {0}, {0}})
	got := eff.Run(eff.Interpret(comp, rollEnd, combineRolls[eff.NoFx]{}))
	want := []int{100, 101, 102}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// sumLoop re-enters the computation after each pure result until five roll
// instances have been resolved, accumulating their values.
type sumLoop struct {
	in eff.MemberIn[roll, appFx]
}

func (sumLoop) Init() int { return 0 }

func (l sumLoop) OnPure(a int, s int) (eff.Either[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]], int) {
	if s < 5 {
		next := eff.Bind(eff.Perform[int](l.in, roll{}), func(x int) eff.Comp[appFx, int] {
			return eff.Pure[appFx](a + x)
		})
		return eff.Left[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]](next), s
	}
	return eff.Right[eff.Comp[appFx, int]](eff.Pure[eff.NoFx](a)), s
}

func (sumLoop) OnEffect(_ roll, k eff.Continuation[appFx, int], s int) (eff.Either[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]], int) {
	return eff.Left[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]](k.Apply(s)), s + 1
}

func (sumLoop) OnLastEffect(_ roll, k eff.Continuation[appFx, eff.Unit], s int) (eff.Either[eff.Comp[appFx, eff.Unit], eff.Comp[eff.NoFx, eff.Unit]], int) {
	return eff.Left[eff.Comp[appFx, eff.Unit], eff.Comp[eff.NoFx, eff.Unit]](k.Apply(s)), s + 1
}

func (sumLoop) OnBatchEffect(ops []roll, k eff.Continuation[appFx, int], s int) (eff.Either[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]], int) {
	xs := make([]eff.Erased, len(ops))
	for i := range xs {
		xs[i] = s
		s++
	}
	return eff.Left[eff.Comp[appFx, int], eff.Comp[eff.NoFx, int]](k.Apply(xs)), s
}

func (sumLoop) OnLastBatchEffect(ops []roll, k eff.Continuation[appFx, eff.Unit], s int) (eff.Either[eff.Comp[appFx, eff.Unit], eff.Comp[eff.NoFx, eff.Unit]], int) {
	xs := make([]eff.Erased, len(ops))
	for i := range xs {
		xs[i] = s
		s++
	}
	return eff.Left[eff.Comp[appFx, eff.Unit], eff.Comp[eff.NoFx, eff.Unit]](k.Apply(xs)), s
}

func TestLoopReentersAfterPure(t *testing.T) {
	comp := eff.Perform[int](rollM.In(), roll{})
	got := eff.Run(eff.InterpretLoop[roll, appFx, eff.NoFx, int, int, int](
		comp, rollEnd, sumLoop{in: rollM.In()}))
	if got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestInterpretUnsafeExecutesInOrder(t *testing.T) {
	comp := eff.Then(noteP("a"), eff.Then(noteP("b"), noteP("c")))
	log := &noteLog{}
	eff.Run(eff.InterpretUnsafe(comp, noteEnd, log))
	want := []string{"a", "b", "c"}
	if len(log.msgs) != len(want) {
		t.Fatalf("got %v, want %v", log.msgs, want)
	}
	for i := range want {
		if log.msgs[i] != want[i] {
			t.Fatalf("got %v, want %v", log.msgs, want)
		}
	}
}

func TestDeferredInstanceInterpreted(t *testing.T) {
	// A roll inside the deferred action goes through the strategy's
	// deferred path and its value feeds the action's own chain.
	seen := 0
	action := eff.Map(rollP(4), func(x int) eff.Unit {
		seen = x
		return eff.Unit{}
	})
	comp := eff.AddLast(eff.Pure[appFx](1), action)
	got := eff.Run(eff.Interpret(comp, rollEnd, rollTens[eff.NoFx, int]{}))
	if got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if seen != 40 {
		t.Fatalf("deferred instance resolved to %d, want 40", seen)
	}
}
