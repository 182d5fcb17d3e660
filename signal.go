package prism

import "sync"

// Observer is the receiving end of a stream: a function invoked with each
// event. The helper methods construct events so emitting code reads
// naturally.
type Observer[T any] func(Event[T])

// Send delivers a value event.
func (o Observer[T]) Send(v T) {
	o(Event[T]{Kind: EventValue, Value: v})
}

// SendCompleted delivers normal termination.
func (o Observer[T]) SendCompleted() {
	o(Event[T]{Kind: EventCompleted})
}

// SendInterrupted delivers cancellation.
func (o Observer[T]) SendInterrupted() {
	o(Event[T]{Kind: EventInterrupted})
}

// Signal is a push-based multicast stream. Many observers may be attached;
// each event is delivered to every observer registered at the time of the
// send, synchronously on the emitting goroutine.
//
// A terminal event is latched: it is delivered once to current observers,
// after which the registry is cleared and any later Observe immediately
// receives the latched terminal.
//
// The Signal guards only its own registry. Emitters are expected to
// serialize their sends; Mutable does so by holding its cell lock across
// the broadcast.
type Signal[T any] struct {
	mu        sync.Mutex
	observers map[uint64]Observer[T]
	nextID    uint64
	terminal  *Event[T]
	metrics   MetricsProvider
}

// Pipe creates a Signal together with the Observer that feeds it.
func Pipe[T any]() (*Signal[T], Observer[T]) {
	s := &Signal[T]{observers: make(map[uint64]Observer[T])}
	return s, s.input
}

func (s *Signal[T]) input(e Event[T]) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	targets := make([]Observer[T], 0, len(s.observers))
	for _, o := range s.observers {
		targets = append(targets, o)
	}
	if e.IsTerminal() {
		s.terminal = &e
		s.observers = nil
	}
	metrics := s.metrics
	s.mu.Unlock()

	if metrics != nil {
		if e.IsTerminal() {
			metrics.OnCompleted()
		} else {
			metrics.OnSend()
		}
	}
	for _, o := range targets {
		o(e)
	}
}

// Observe registers o to receive every subsequent event. The returned
// handle detaches o when disposed. If the signal has already terminated,
// o immediately receives the latched terminal event and the returned handle
// is already disposed.
func (s *Signal[T]) Observe(o Observer[T]) *Disposable {
	s.mu.Lock()
	if t := s.terminal; t != nil {
		s.mu.Unlock()
		o(*t)
		return disposedHandle()
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	metrics := s.metrics
	s.mu.Unlock()

	if metrics != nil {
		metrics.OnObserverAdded()
	}
	return NewDisposable(func() {
		s.mu.Lock()
		if s.observers != nil {
			delete(s.observers, id)
		}
		m := s.metrics
		s.mu.Unlock()
		if m != nil {
			m.OnObserverRemoved()
		}
	})
}

// terminated reports whether a terminal event has been latched.
func (s *Signal[T]) terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal != nil
}

func (s *Signal[T]) setMetrics(p MetricsProvider) {
	s.mu.Lock()
	s.metrics = p
	s.mu.Unlock()
}
