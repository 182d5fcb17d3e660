package prism

import (
	"context"

	"github.com/zoobzio/capitan"
)

// panicNoInitialValue reports a producer that broke the synchronous
// first-value contract during observable construction.
const panicNoInitialValue = "prism: observable producer failed to send a value synchronously"

// composed is an observable derived from an upstream producer. It owns a
// cache of the latest upstream value and a relay signal for downstream
// consumers; it does not own the upstream sources themselves. When the
// transitive sources terminate, the relay terminates with them.
type composed[T any] struct {
	cell     *cell[T]
	seeded   bool // guarded by cell lock
	relay    *Signal[T]
	relayIn  Observer[T]
	upstream *Disposable
}

var _ Observable[int] = (*composed[int])(nil)

// newComposed starts p and caches its synchronous first value. Every
// upstream value is stored and relayed under the cache's lock, so replaying
// the cache and observing the relay can never produce a torn ordering.
//
// Panics if p sends no value before Start returns: a value-less observable
// would break the Value contract, and an upstream that cannot seed it is a
// broken invariant, not an empty stream.
func newComposed[T any](p *Producer[T]) *composed[T] {
	var zero T
	c := &composed[T]{cell: newCell(zero)}
	c.relay, c.relayIn = Pipe[T]()

	c.upstream = p.Start(func(e Event[T]) {
		if e.IsTerminal() {
			c.relayIn(e)
			return
		}
		c.cell.begin(func(tx *txn[T]) {
			tx.modify(func(v *T) { *v = e.Value })
			c.seeded = true
			c.relayIn.Send(tx.current())
		})
	})

	seeded := false
	c.cell.begin(func(*txn[T]) { seeded = c.seeded })
	if !seeded {
		capitan.Emit(context.Background(), InitialValueMissing)
		panic(panicNoInitialValue)
	}
	capitan.Emit(context.Background(), ComposedCreated)
	return c
}

// Value returns the latest value received from upstream. It remains
// readable after the upstream terminates.
func (c *composed[T]) Value() T {
	return c.cell.read()
}

// Signal returns the relay of future upstream values.
func (c *composed[T]) Signal() *Signal[T] {
	return c.relay
}

// Producer returns a cold producer that replays the cached value and then
// forwards the relay.
func (c *composed[T]) Producer() *Producer[T] {
	return NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		var d *Disposable
		c.cell.begin(func(tx *txn[T]) {
			emit.Send(tx.current())
			d = c.relay.Observe(emit)
		})
		lifetime.OnEnded(d.Dispose)
	})
}

// Constant returns an observable fixed at v. Its producer emits v and
// completes immediately; its change signal is already complete.
func Constant[T any](v T) Observable[T] {
	return newComposed(ProducerOf(v))
}

// captured is a pass-through wrapper that retains its source strongly.
type captured[T any] struct {
	src Observable[T]
}

// Capture wraps an existing observable, retaining it strongly and passing
// Value, Producer, and Signal straight through. Use it to pin a source's
// lifetime to the wrapper where plain interface erasure would not.
func Capture[T any](src Observable[T]) Observable[T] {
	return captured[T]{src: src}
}

func (c captured[T]) Value() T {
	return c.src.Value()
}

func (c captured[T]) Producer() *Producer[T] {
	return c.src.Producer()
}

func (c captured[T]) Signal() *Signal[T] {
	return c.src.Signal()
}

// FromProducer builds an observable seeded with initial and tracking the
// values of p thereafter.
func FromProducer[T any](initial T, p *Producer[T]) Observable[T] {
	return newComposed(NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		emit.Send(initial)
		d := p.Start(emit)
		lifetime.OnEnded(d.Dispose)
	}))
}

// FromSignal builds an observable seeded with initial and tracking the
// values of s thereafter. Values sent on s concurrently with construction
// may precede the subscription and be missed.
func FromSignal[T any](initial T, s *Signal[T]) Observable[T] {
	return newComposed(NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		emit.Send(initial)
		d := s.Observe(emit)
		lifetime.OnEnded(d.Dispose)
	}))
}
