package prism

import "sync/atomic"

// Producer is a cold stream factory. Each Start invokes the wrapped start
// function with a fresh observer, synchronously until it returns; whatever
// the start function emits before returning is delivered synchronously to
// the caller's observer.
//
// Producers used to construct observables must send at least one value
// before Start returns. The observable constructors enforce this.
type Producer[T any] struct {
	run func(Observer[T], *Lifetime)
}

// NewProducer creates a producer from a start function. The lifetime passed
// to start ends when the subscription is disposed or the stream terminates;
// start functions register upstream teardown with Lifetime.OnEnded.
func NewProducer[T any](start func(emit Observer[T], lifetime *Lifetime)) *Producer[T] {
	return &Producer[T]{run: start}
}

// ProducerOf returns a producer that emits v and completes.
func ProducerOf[T any](v T) *Producer[T] {
	return NewProducer(func(emit Observer[T], _ *Lifetime) {
		emit.Send(v)
		emit.SendCompleted()
	})
}

// EmptyProducer returns a producer that completes without emitting a value.
// It cannot seed an observable: observables require a synchronous first
// value.
func EmptyProducer[T any]() *Producer[T] {
	return NewProducer(func(emit Observer[T], _ *Lifetime) {
		emit.SendCompleted()
	})
}

// Start runs the producer against o and returns a disposal handle.
// Disposing delivers an interrupted event downstream, unless the stream has
// already terminated, and ends the lifetime given to the start function so
// upstream work can stop. Events arriving after termination are dropped.
func (p *Producer[T]) Start(o Observer[T]) *Disposable {
	lifetime, token := NewLifetime()
	var done atomic.Bool

	guarded := Observer[T](func(e Event[T]) {
		if e.IsTerminal() {
			if done.CompareAndSwap(false, true) {
				o(e)
				token.End()
			}
			return
		}
		if done.Load() {
			return
		}
		o(e)
	})

	d := NewDisposable(func() {
		if done.CompareAndSwap(false, true) {
			o(Event[T]{Kind: EventInterrupted})
		}
		token.End()
	})

	p.run(guarded, lifetime)
	return d
}

// StartWithValues runs the producer, delivering only value events to fn.
func (p *Producer[T]) StartWithValues(fn func(T)) *Disposable {
	return p.Start(func(e Event[T]) {
		if e.Kind == EventValue {
			fn(e.Value)
		}
	})
}
