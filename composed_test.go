package prism

import "testing"

func TestConstant_HoldsFixedValue(t *testing.T) {
	c := Constant("fixed")

	if got := c.Value(); got != "fixed" {
		t.Errorf("expected fixed, got %s", got)
	}

	var events []Event[string]
	c.Producer().Start(func(e Event[string]) {
		events = append(events, e)
	})

	if len(events) != 2 {
		t.Fatalf("expected value then completed, got %v", events)
	}
	if events[0].Value != "fixed" || events[1].Kind != EventCompleted {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestCapture_PassesThrough(t *testing.T) {
	m := NewMutable(1)
	c := Capture[int](m)

	if got := c.Value(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	var got []int
	c.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	m.Set(2)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestFromProducer_SeedsThenForwards(t *testing.T) {
	s, in := Pipe[int]()
	p := NewProducer(func(emit Observer[int], lifetime *Lifetime) {
		d := s.Observe(emit)
		lifetime.OnEnded(d.Dispose)
	})

	o := FromProducer(0, p)
	if got := o.Value(); got != 0 {
		t.Errorf("expected seed 0, got %d", got)
	}

	in.Send(1)
	if got := o.Value(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestFromSignal_SeedsThenForwards(t *testing.T) {
	s, in := Pipe[string]()
	o := FromSignal("seed", s)

	if got := o.Value(); got != "seed" {
		t.Errorf("expected seed, got %s", got)
	}

	in.Send("next")
	if got := o.Value(); got != "next" {
		t.Errorf("expected next, got %s", got)
	}

	completed := false
	o.Signal().Observe(func(e Event[string]) {
		if e.Kind == EventCompleted {
			completed = true
		}
	})
	in.SendCompleted()
	if !completed {
		t.Error("expected composed stream completed with its source")
	}
}

func TestFromChannel_TracksChannelValues(t *testing.T) {
	ch := make(chan int)
	o := FromChannel(0, ch)

	if got := o.Value(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	done := make(chan struct{})
	o.Signal().Observe(func(e Event[int]) {
		if e.Kind == EventCompleted {
			close(done)
		}
	})

	ch <- 1
	ch <- 2
	close(ch)
	<-done

	if got := o.Value(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestNewComposed_PanicsWithoutSynchronousValue(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected missing-initial-value panic")
		}
		if r != panicNoInitialValue {
			t.Errorf("unexpected panic message: %v", r)
		}
	}()
	newComposed(EmptyProducer[int]())
}

func TestComposed_CompletesWhenSourceCloses(t *testing.T) {
	m := NewMutable(1)
	doubled := Map(m, func(v int) int { return v * 2 })

	completed := false
	doubled.Signal().Observe(func(e Event[int]) {
		if e.Kind == EventCompleted {
			completed = true
		}
	})

	m.Close()

	if !completed {
		t.Error("expected derived stream completed once source closed")
	}
	// Cached value outlives the source.
	if got := doubled.Value(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestComposed_ProducerReplaysCacheThenRelays(t *testing.T) {
	m := NewMutable(1)
	doubled := Map(m, func(v int) int { return v * 2 })
	m.Set(3)

	var got []int
	doubled.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	if len(got) != 1 || got[0] != 6 {
		t.Fatalf("expected synchronous replay of [6], got %v", got)
	}

	m.Set(4)
	if len(got) != 2 || got[1] != 8 {
		t.Errorf("expected [6 8], got %v", got)
	}
}

func TestComposed_DisposedSubscriptionStopsReceiving(t *testing.T) {
	m := NewMutable(1)
	doubled := Map(m, func(v int) int { return v * 2 })

	var got []int
	d := doubled.Producer().StartWithValues(func(v int) {
		got = append(got, v)
	})

	m.Set(2)
	d.Dispose()
	m.Set(3)

	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("expected [2 4], got %v", got)
	}
	// The composed observable itself keeps tracking.
	if doubled.Value() != 6 {
		t.Errorf("expected cached 6, got %d", doubled.Value())
	}
}
