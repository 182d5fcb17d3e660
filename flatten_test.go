package prism

import (
	"fmt"
	"testing"
)

func TestFlattenStrategy_String(t *testing.T) {
	cases := map[FlattenStrategy]string{
		FlattenLatest:      "latest",
		FlattenConcat:      "concat",
		FlattenMerge:       "merge",
		FlattenStrategy(0): "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("strategy %d: expected %q, got %q", s, want, got)
		}
	}
}

func TestFlatten_InvalidStrategyPanics(t *testing.T) {
	m := NewMutable[Observable[int]](NewMutable(1))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for the zero strategy")
		}
		if r != panicBadStrategy {
			t.Errorf("unexpected panic message: %v", r)
		}
	}()
	Flatten(m, FlattenStrategy(0))
}

func TestFlattenLatest_SwitchesToNewestInner(t *testing.T) {
	inner1 := NewMutable(1)
	outer := NewMutable[Observable[int]](inner1)
	flat := Flatten[int](outer, FlattenLatest)

	var got []int
	flat.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	inner1.Set(2)

	inner2 := NewMutable(10)
	outer.Set(inner2)

	// inner1 is superseded; its further output is discarded.
	inner1.Set(3)
	inner2.Set(11)

	want := []int{1, 2, 10, 11}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if flat.Value() != 11 {
		t.Errorf("expected cached 11, got %d", flat.Value())
	}
}

func TestFlattenConcat_QueuesUntilActiveCompletes(t *testing.T) {
	inner1 := NewMutable(1)
	outer := NewMutable[Observable[int]](inner1)
	flat := Flatten[int](outer, FlattenConcat)

	var got []int
	flat.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	inner2 := NewMutable(10)
	outer.Set(inner2)

	// inner2 is queued while inner1 is active; its output is invisible.
	inner2.Set(11)
	inner1.Set(2)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2] while first inner is active, got %v", got)
	}

	// Completing the active inner promotes the queued one, which replays
	// its current value.
	inner1.Close()
	if len(got) != 3 || got[2] != 11 {
		t.Fatalf("expected queued inner's value 11 after promotion, got %v", got)
	}

	inner2.Set(12)
	if len(got) != 4 || got[3] != 12 {
		t.Errorf("expected 12 from the promoted inner, got %v", got)
	}
}

func TestFlattenMerge_InterleavesAllInners(t *testing.T) {
	inner1 := NewMutable(1)
	outer := NewMutable[Observable[int]](inner1)
	flat := Flatten[int](outer, FlattenMerge)

	var got []int
	flat.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	inner2 := NewMutable(10)
	outer.Set(inner2)

	inner1.Set(2)
	inner2.Set(11)
	inner1.Set(3)

	want := []int{1, 10, 2, 11, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestFlatten_CompletesWhenOuterAndInnersDone(t *testing.T) {
	inner1 := NewMutable(1)
	outer := NewMutable[Observable[int]](inner1)
	flat := Flatten[int](outer, FlattenMerge)

	completed := false
	flat.Signal().Observe(func(e Event[int]) {
		if e.Kind == EventCompleted {
			completed = true
		}
	})

	outer.Close()
	if completed {
		t.Fatal("must not complete while an inner is alive")
	}

	inner1.Close()
	if !completed {
		t.Error("expected completion once outer and every inner finished")
	}
}

func TestFlatten_InnerInterruptionCountsAsCompletion(t *testing.T) {
	s, in := Pipe[int]()
	inner := FromSignal(1, s)
	outer := NewMutable[Observable[int]](inner)
	flat := Flatten[int](outer, FlattenMerge)

	var kinds []EventKind
	flat.Signal().Observe(func(e Event[int]) {
		kinds = append(kinds, e.Kind)
	})

	outer.Close()
	in.SendInterrupted()

	if len(kinds) != 1 || kinds[0] != EventCompleted {
		t.Errorf("expected a single completion, got %v", kinds)
	}
	// The interruption never surfaces downstream.
	for _, k := range kinds {
		if k == EventInterrupted {
			t.Error("inner interruption must not propagate as interruption")
		}
	}
}

func TestFlatMap(t *testing.T) {
	port := NewMutable(8080)
	url := FlatMap(port, FlattenLatest, func(p int) Observable[string] {
		return Constant(fmt.Sprintf("http://localhost:%d", p))
	})

	if got := url.Value(); got != "http://localhost:8080" {
		t.Errorf("expected http://localhost:8080, got %s", got)
	}

	port.Set(9090)
	if got := url.Value(); got != "http://localhost:9090" {
		t.Errorf("expected http://localhost:9090, got %s", got)
	}
}
