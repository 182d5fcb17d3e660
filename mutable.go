package prism

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Observable is the read-only contract every observable value satisfies:
// a current value, a producer that replays the current value before
// forwarding changes, and a signal of changes only.
type Observable[T any] interface {
	// Value returns the current value.
	Value() T

	// Producer returns a cold producer that, when started, synchronously
	// sends the value current at that moment and then every subsequent
	// change, completing when the observable terminates.
	Producer() *Producer[T]

	// Signal returns the stream of future changes only. No synchronous
	// current value is delivered on Observe.
	Signal() *Signal[T]
}

// Mutable is a thread-safe observable value, and the only primitive in the
// package that originates changes. Every committed mutation is broadcast
// exactly once, after the mutation closure returns, carrying the
// post-mutation value, in commit order.
type Mutable[T any] struct {
	cell     *cell[T]
	signal   *Signal[T]
	observer Observer[T]
	lifetime *Lifetime
	token    *LifetimeToken
}

var _ Observable[int] = (*Mutable[int])(nil)

// NewMutable creates a mutable observable holding initial.
func NewMutable[T any](initial T) *Mutable[T] {
	s, in := Pipe[T]()
	l, token := NewLifetime()
	m := &Mutable[T]{
		cell:     newCell(initial),
		signal:   s,
		observer: in,
		lifetime: l,
		token:    token,
	}
	capitan.Emit(context.Background(), MutableCreated)
	return m
}

// Metrics attaches a metrics provider to the change stream. The provider
// receives callbacks on sends, observer churn, and completion. Must be
// called before the observable is shared.
func (m *Mutable[T]) Metrics(p MetricsProvider) *Mutable[T] {
	m.signal.setMetrics(p)
	return m
}

// Value returns the current value.
func (m *Mutable[T]) Value() T {
	return m.cell.read()
}

// Set replaces the value atomically and broadcasts the replacement.
func (m *Mutable[T]) Set(v T) {
	m.Modify(func(p *T) { *p = v })
}

// Swap replaces the value atomically and returns the previous value.
func (m *Mutable[T]) Swap(v T) T {
	var old T
	m.Modify(func(p *T) {
		old = *p
		*p = v
	})
	return old
}

// Modify applies action to the value under exclusive mutation, then
// broadcasts the post-mutation value exactly once, still inside the
// mutation window so commit order and delivery order agree. Results flow
// out of the closure by capture.
//
// If action panics, the panic propagates to the caller, no broadcast is
// issued, and the value retains whatever the action had already applied:
// mutation is not rolled back on failure.
//
// Calling Modify again on the same instance from inside action, or from an
// observer notified by the broadcast, panics with an exclusivity-violation
// diagnostic rather than deadlocking. Reads of the same instance from those
// places are permitted.
func (m *Mutable[T]) Modify(action func(*T)) {
	m.cell.begin(func(tx *txn[T]) {
		tx.modify(action)
		m.observer.Send(tx.current())
	})
}

// WithValue runs action with the current value while holding the lock, so
// no mutation can interleave with the read.
func (m *Mutable[T]) WithValue(action func(T)) {
	m.cell.begin(func(tx *txn[T]) {
		action(tx.current())
	})
}

// Signal returns the stream of future values. It completes when the
// observable is closed.
func (m *Mutable[T]) Signal() *Signal[T] {
	return m.signal
}

// Producer returns a cold producer of the current value followed by every
// subsequent broadcast. Subscription happens under the cell lock, so no
// broadcast can fall between the replayed value and the change stream.
func (m *Mutable[T]) Producer() *Producer[T] {
	return NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		var d *Disposable
		m.cell.begin(func(tx *txn[T]) {
			emit.Send(tx.current())
			d = m.signal.Observe(emit)
		})
		lifetime.OnEnded(d.Dispose)
	})
}

// Lifetime returns the scope tied to this observable's liveness. It ends
// when the observable is closed.
func (m *Mutable[T]) Lifetime() *Lifetime {
	return m.lifetime
}

// Close terminates the observable: the change stream completes, the
// lifetime ends, and producers started afterwards deliver the final value
// followed by completion. The value itself remains readable. Idempotent.
func (m *Mutable[T]) Close() {
	if m.signal.terminated() {
		return
	}
	m.observer.SendCompleted()
	m.token.End()
	capitan.Emit(context.Background(), MutableClosed)
}
