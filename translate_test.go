// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff_test

import (
	"strconv"
	"testing"

	"code.hybscloud.com/eff"
)

func TestTranslateExpandsInstances(t *testing.T) {
	// Every roll becomes a note plus a pure value over the remainder.
	toNotes := eff.TranslatorFunc[roll, appFx](func(op roll) eff.Comp[appFx, eff.Erased] {
		return eff.Map(noteP("r"+strconv.Itoa(op.bound)), func(int) eff.Erased {
			return op.bound * 2
		})
	})
	prog := eff.Bind(rollP(3), func(a int) eff.Comp[appFx, int] {
		return eff.Map(rollP(4), func(b int) int { return a + b })
	})
	expanded := eff.Translate(prog, rollM, toNotes)
	log := &noteLog{}
	got := eff.Run(eff.InterpretUnsafe(expanded, noteEnd, log))
	if got != 14 {
		t.Fatalf("got %d, want 14", got)
	}
	want := []string{"r3", "r4"}
	if len(log.msgs) != len(want) {
		t.Fatalf("got notes %v, want %v", log.msgs, want)
	}
	for i := range want {
		if log.msgs[i] != want[i] {
			t.Fatalf("got notes %v, want %v", log.msgs, want)
		}
	}
}

func TestTranslateBatchSequentialInOrder(t *testing.T) {
	toNotes := eff.TranslatorFunc[roll, appFx](func(op roll) eff.Comp[appFx, eff.Erased] {
		return eff.Map(noteP("r"+strconv.Itoa(op.bound)), func(int) eff.Erased {
			return op.bound
		})
	})
	prog := eff.PerformBatch[int](rollM.In(), []roll{{7}, {8}, {9}})
	expanded := eff.Translate(prog, rollM, toNotes)
	log := &noteLog{}
	got := eff.Run(eff.InterpretUnsafe(expanded, noteEnd, log))
	wantVals := []int{7, 8, 9}
	for i := range wantVals {
		if got[i] != wantVals[i] {
			t.Fatalf("got %v, want %v", got, wantVals)
		}
	}
	wantMsgs := []string{"r7", "r8", "r9"}
	for i := range wantMsgs {
		if log.msgs[i] != wantMsgs[i] {
			t.Fatalf("got notes %v, want %v", log.msgs, wantMsgs)
		}
	}
}

func TestTranslateDeferredInstances(t *testing.T) {
	toPure := eff.TranslatorFunc[roll, appFx](func(op roll) eff.Comp[appFx, eff.Erased] {
		return eff.Pure[appFx, eff.Erased](op.bound)
	})
	seen := 0
	action := eff.Map(rollP(6), func(x int) eff.Unit {
		seen = x
		return eff.Unit{}
	})
	comp := eff.AddLast(eff.Pure[appFx](1), action)
	got := eff.Run(eff.Into[eff.NoFx](eff.Translate(comp, rollM, toPure)))
	if got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if seen != 6 {
		t.Fatalf("deferred instance resolved to %d, want 6", seen)
	}
}

type roll2 struct{ bound int }

var (
	roll2Cap = eff.NewCapability("roll2")
	roll2M   = eff.MemberOf[roll2, appFx, appFx](roll2Cap)
	roll2End = eff.MemberOf[roll2, appFx, eff.NoFx](roll2Cap)
)

// batchSpy resolves roll2 instances to their bounds, recording how batches
// arrive.
type batchSpy struct {
	batches [][]roll2
}

func (s *batchSpy) OnInstance(op roll2) eff.Either[eff.Erased, eff.Comp[eff.NoFx, []int]] {
	return eff.Left[eff.Erased, eff.Comp[eff.NoFx, []int]](op.bound)
}

func (s *batchSpy) OnBatch(ops []roll2) eff.Either[[]eff.Erased, roll2] {
	s.batches = append(s.batches, ops)
	xs := make([]eff.Erased, len(ops))
	for i, op := range ops {
		xs[i] = op.bound
	}
	return eff.Left[[]eff.Erased, roll2](xs)
}

func TestTransformRenamesCapability(t *testing.T) {
	prog := eff.Bind(rollP(3), func(a int) eff.Comp[appFx, int] {
		return eff.Map(rollP(4), func(b int) int { return a * b })
	})
	renamed := eff.Transform(prog, rollM, roll2M, func(op roll) roll2 {
		return roll2{bound: op.bound}
	})
	got := eff.Run(eff.Interpret(renamed, roll2End, rollTwoVals[eff.NoFx]{}))
	if got != 12 {
		t.Fatalf("got %d, want 12", got)
	}
}

// rollTwoVals resolves roll2 instances to their bounds.
type rollTwoVals[U any] struct{}

func (rollTwoVals[U]) OnInstance(op roll2) eff.Either[eff.Erased, eff.Comp[U, int]] {
	return eff.Left[eff.Erased, eff.Comp[U, int]](op.bound)
}

func (rollTwoVals[U]) OnBatch(ops []roll2) eff.Either[[]eff.Erased, roll2] {
	xs := make([]eff.Erased, len(ops))
	for i, op := range ops {
		xs[i] = op.bound
	}
	return eff.Left[[]eff.Erased, roll2](xs)
}

func TestTransformPreservesBatchShape(t *testing.T) {
	prog := eff.PerformBatch[int](rollM.In(), []roll{{1}, {2}, {3}})
	renamed := eff.Transform(prog, rollM, roll2M, func(op roll) roll2 {
		return roll2{bound: op.bound}
	})
	spy := &batchSpy{}
	got := eff.Run(eff.Interpret(renamed, roll2End, spy))
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(spy.batches) != 1 || len(spy.batches[0]) != 3 {
		t.Fatalf("batch shape not preserved: %v", spy.batches)
	}
}

func TestTransformLeavesOtherCapabilities(t *testing.T) {
	prog := eff.Bind(rollP(5), func(a int) eff.Comp[appFx, int] {
		return eff.Map(noteP("kept"), func(b int) int { return a + b })
	})
	renamed := eff.Transform(prog, rollM, roll2M, func(op roll) roll2 {
		return roll2{bound: op.bound}
	})
	afterRolls := eff.Interpret(renamed, roll2M, rollTwoVals[appFx]{})
	got := eff.Run(eff.Interpret(afterRolls, noteEnd, &decNotes[eff.NoFx, int]{}))
	if got != 15 {
		t.Fatalf("got %d, want 15", got)
	}
}

func TestTransformCarriesDeferred(t *testing.T) {
	seen := 0
	action := eff.Map(rollP(9), func(x int) eff.Unit {
		seen = x
		return eff.Unit{}
	})
	comp := eff.AddLast(eff.Map(rollP(2), func(x int) int { return x }), action)
	renamed := eff.Transform(comp, rollM, roll2M, func(op roll) roll2 {
		return roll2{bound: op.bound}
	})
	got := eff.Run(eff.Interpret(renamed, roll2End, rollTwoVals[eff.NoFx]{}))
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if seen != 9 {
		t.Fatalf("deferred instance resolved to %d, want 9", seen)
	}
}
