package prism

import "sync"

// The operators in this file derive new observables from existing ones.
// They are free functions because Go methods cannot introduce type
// parameters. All of them work through the producer contract: every source
// replays its current value synchronously on Start, so every derived
// observable can satisfy the same contract.
//
// Derived observables never retain their sources. Sources hold the derived
// observables' subscriptions, so termination flows downstream: when the
// transitive sources complete or close, the derived stream completes too.

// Map derives an observable whose value is f applied to src's value, for
// the current value and every subsequent one. Event count and order are
// preserved. Field projection is an accessor function:
//
//	port := prism.Map(cfg, func(c Config) int { return c.Port })
func Map[T, U any](src Observable[T], f func(T) U) Observable[U] {
	return newComposed(mapProducer(src.Producer(), f))
}

func mapProducer[T, U any](p *Producer[T], f func(T) U) *Producer[U] {
	return NewProducer(func(emit Observer[U], lifetime *Lifetime) {
		d := p.Start(func(e Event[T]) {
			if e.IsTerminal() {
				emit(terminal[U](e.Kind))
				return
			}
			emit.Send(f(e.Value))
		})
		lifetime.OnEnded(d.Dispose)
	})
}

// CombineLatest derives an observable from the latest values of a and b.
// It emits for the first time only once both sources have emitted at least
// once; thereafter it re-emits whenever either source emits, substituting
// the other source's latest value. It completes when both sources have
// completed.
func CombineLatest[A, B, R any](a Observable[A], b Observable[B], f func(A, B) R) Observable[R] {
	return newComposed(combineLatestProducer(a.Producer(), b.Producer(), f))
}

func combineLatestProducer[A, B, R any](pa *Producer[A], pb *Producer[B], f func(A, B) R) *Producer[R] {
	return NewProducer(func(emit Observer[R], lifetime *Lifetime) {
		var (
			mu           sync.Mutex
			va           A
			vb           B
			gotA, gotB   bool
			doneA, doneB bool
		)

		onTerminal := func(k EventKind, done *bool) {
			if k == EventInterrupted {
				emit.SendInterrupted()
				return
			}
			mu.Lock()
			*done = true
			both := doneA && doneB
			mu.Unlock()
			if both {
				emit.SendCompleted()
			}
		}

		da := pa.Start(func(e Event[A]) {
			if e.IsTerminal() {
				onTerminal(e.Kind, &doneA)
				return
			}
			mu.Lock()
			va, gotA = e.Value, true
			ready := gotA && gotB
			var out R
			if ready {
				out = f(va, vb)
			}
			mu.Unlock()
			if ready {
				emit.Send(out)
			}
		})
		db := pb.Start(func(e Event[B]) {
			if e.IsTerminal() {
				onTerminal(e.Kind, &doneB)
				return
			}
			mu.Lock()
			vb, gotB = e.Value, true
			ready := gotA && gotB
			var out R
			if ready {
				out = f(va, vb)
			}
			mu.Unlock()
			if ready {
				emit.Send(out)
			}
		})
		lifetime.OnEnded(func() {
			da.Dispose()
			db.Dispose()
		})
	})
}

// pair carries two heterogeneous values through intermediate compositions.
type pair[A, B any] struct {
	first  A
	second B
}

// CombineLatest3 is CombineLatest over three sources, built by pairing.
func CombineLatest3[A, B, C, R any](a Observable[A], b Observable[B], c Observable[C], f func(A, B, C) R) Observable[R] {
	ab := CombineLatest(a, b, func(x A, y B) pair[A, B] { return pair[A, B]{x, y} })
	return CombineLatest(ab, c, func(p pair[A, B], z C) R { return f(p.first, p.second, z) })
}

// CombineLatest4 is CombineLatest over four sources, built by pairing.
func CombineLatest4[A, B, C, D, R any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], f func(A, B, C, D) R) Observable[R] {
	abc := CombineLatest3(a, b, c, func(x A, y B, z C) pair[pair[A, B], C] {
		return pair[pair[A, B], C]{pair[A, B]{x, y}, z}
	})
	return CombineLatest(abc, d, func(p pair[pair[A, B], C], w D) R {
		return f(p.first.first, p.first.second, p.second, w)
	})
}

// CombineLatestAll is CombineLatest over a homogeneous slice of sources,
// emitting a snapshot slice of every source's latest value. Combination is
// undefined over zero sources: CombineLatestAll returns nil for an empty
// slice.
func CombineLatestAll[T any](sources []Observable[T]) Observable[[]T] {
	n := len(sources)
	if n == 0 {
		return nil
	}
	producers := make([]*Producer[T], n)
	for i, src := range sources {
		producers[i] = src.Producer()
	}
	return newComposed(NewProducer(func(emit Observer[[]T], lifetime *Lifetime) {
		var (
			mu        sync.Mutex
			latest    = make([]T, n)
			got       = make([]bool, n)
			ready     int
			completed int
		)
		ds := make([]*Disposable, 0, n)
		for i, p := range producers {
			d := p.Start(func(e Event[T]) {
				if e.IsTerminal() {
					if e.Kind == EventInterrupted {
						emit.SendInterrupted()
						return
					}
					mu.Lock()
					completed++
					all := completed == n
					mu.Unlock()
					if all {
						emit.SendCompleted()
					}
					return
				}
				mu.Lock()
				if !got[i] {
					got[i] = true
					ready++
				}
				latest[i] = e.Value
				var out []T
				emitNow := ready == n
				if emitNow {
					out = append([]T(nil), latest...)
				}
				mu.Unlock()
				if emitNow {
					emit.Send(out)
				}
			})
			ds = append(ds, d)
		}
		lifetime.OnEnded(func() {
			for _, d := range ds {
				d.Dispose()
			}
		})
	}))
}

// Zip derives an observable that pairs the i-th value of a with the i-th
// value of b in strict arrival order. It emits only when both sources have
// an unconsumed value, consuming one from each queue per emission, and
// completes once any completed source's queue is exhausted.
func Zip[A, B, R any](a Observable[A], b Observable[B], f func(A, B) R) Observable[R] {
	return newComposed(zipProducer(a.Producer(), b.Producer(), f))
}

func zipProducer[A, B, R any](pa *Producer[A], pb *Producer[B], f func(A, B) R) *Producer[R] {
	return NewProducer(func(emit Observer[R], lifetime *Lifetime) {
		var (
			mu           sync.Mutex
			qa           []A
			qb           []B
			doneA, doneB bool
			finished     bool
		)

		// drain pops at most one pair per upstream event; exhaustion of a
		// completed source's queue ends the stream.
		drain := func() {
			mu.Lock()
			var out R
			emitNow := len(qa) > 0 && len(qb) > 0
			if emitNow {
				out = f(qa[0], qb[0])
				qa = qa[1:]
				qb = qb[1:]
			}
			completeNow := !finished &&
				((doneA && len(qa) == 0) || (doneB && len(qb) == 0))
			if completeNow {
				finished = true
			}
			mu.Unlock()
			if emitNow {
				emit.Send(out)
			}
			if completeNow {
				emit.SendCompleted()
			}
		}

		da := pa.Start(func(e Event[A]) {
			if e.IsTerminal() {
				if e.Kind == EventInterrupted {
					emit.SendInterrupted()
					return
				}
				mu.Lock()
				doneA = true
				mu.Unlock()
				drain()
				return
			}
			mu.Lock()
			qa = append(qa, e.Value)
			mu.Unlock()
			drain()
		})
		db := pb.Start(func(e Event[B]) {
			if e.IsTerminal() {
				if e.Kind == EventInterrupted {
					emit.SendInterrupted()
					return
				}
				mu.Lock()
				doneB = true
				mu.Unlock()
				drain()
				return
			}
			mu.Lock()
			qb = append(qb, e.Value)
			mu.Unlock()
			drain()
		})
		lifetime.OnEnded(func() {
			da.Dispose()
			db.Dispose()
		})
	})
}

// Zip3 is Zip over three sources, built by pairing.
func Zip3[A, B, C, R any](a Observable[A], b Observable[B], c Observable[C], f func(A, B, C) R) Observable[R] {
	ab := Zip(a, b, func(x A, y B) pair[A, B] { return pair[A, B]{x, y} })
	return Zip(ab, c, func(p pair[A, B], z C) R { return f(p.first, p.second, z) })
}

// Zip4 is Zip over four sources, built by pairing.
func Zip4[A, B, C, D, R any](a Observable[A], b Observable[B], c Observable[C], d Observable[D], f func(A, B, C, D) R) Observable[R] {
	abc := Zip3(a, b, c, func(x A, y B, z C) pair[pair[A, B], C] {
		return pair[pair[A, B], C]{pair[A, B]{x, y}, z}
	})
	return Zip(abc, d, func(p pair[pair[A, B], C], w D) R {
		return f(p.first.first, p.first.second, p.second, w)
	})
}

// ZipAll is Zip over a homogeneous slice of sources, emitting the i-th
// value of every source as a slice. Returns nil for an empty slice:
// zipping is undefined over zero sources.
func ZipAll[T any](sources []Observable[T]) Observable[[]T] {
	n := len(sources)
	if n == 0 {
		return nil
	}
	producers := make([]*Producer[T], n)
	for i, src := range sources {
		producers[i] = src.Producer()
	}
	return newComposed(NewProducer(func(emit Observer[[]T], lifetime *Lifetime) {
		var (
			mu       sync.Mutex
			queues   = make([][]T, n)
			done     = make([]bool, n)
			finished bool
		)

		drain := func() {
			mu.Lock()
			emitNow := true
			for _, q := range queues {
				if len(q) == 0 {
					emitNow = false
					break
				}
			}
			var out []T
			if emitNow {
				out = make([]T, n)
				for i := range queues {
					out[i] = queues[i][0]
					queues[i] = queues[i][1:]
				}
			}
			completeNow := false
			if !finished {
				for i := range queues {
					if done[i] && len(queues[i]) == 0 {
						completeNow = true
						finished = true
						break
					}
				}
			}
			mu.Unlock()
			if emitNow {
				emit.Send(out)
			}
			if completeNow {
				emit.SendCompleted()
			}
		}

		ds := make([]*Disposable, 0, n)
		for i, p := range producers {
			d := p.Start(func(e Event[T]) {
				if e.IsTerminal() {
					if e.Kind == EventInterrupted {
						emit.SendInterrupted()
						return
					}
					mu.Lock()
					done[i] = true
					mu.Unlock()
					drain()
					return
				}
				mu.Lock()
				queues[i] = append(queues[i], e.Value)
				mu.Unlock()
				drain()
			})
			ds = append(ds, d)
		}
		lifetime.OnEnded(func() {
			for _, d := range ds {
				d.Dispose()
			}
		})
	}))
}

// SkipRepeats suppresses consecutive duplicate values.
func SkipRepeats[T comparable](src Observable[T]) Observable[T] {
	return SkipRepeatsFunc(src, func(a, b T) bool { return a == b })
}

// SkipRepeatsFunc forwards a value only when isEquivalent reports false
// against the previously forwarded value. The first value is always
// forwarded: it has no predecessor.
func SkipRepeatsFunc[T any](src Observable[T], isEquivalent func(previous, current T) bool) Observable[T] {
	return newComposed(NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		var (
			mu   sync.Mutex
			prev T
			got  bool
		)
		d := src.Producer().Start(func(e Event[T]) {
			if e.IsTerminal() {
				emit(terminal[T](e.Kind))
				return
			}
			mu.Lock()
			forward := !got || !isEquivalent(prev, e.Value)
			if forward {
				prev, got = e.Value, true
			}
			mu.Unlock()
			if forward {
				emit.Send(e.Value)
			}
		})
		lifetime.OnEnded(d.Dispose)
	}))
}

// UniqueValues forwards each value only the first time it appears.
func UniqueValues[T comparable](src Observable[T]) Observable[T] {
	return UniqueValuesBy(src, func(v T) T { return v })
}

// UniqueValuesBy forwards a value only the first time its identity has been
// seen over the observable's whole lifetime. The seen set grows without
// bound; when memory matters, supply an identity that collapses the domain.
func UniqueValuesBy[T any, K comparable](src Observable[T], identity func(T) K) Observable[T] {
	return newComposed(NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		var mu sync.Mutex
		seen := make(map[K]struct{})
		d := src.Producer().Start(func(e Event[T]) {
			if e.IsTerminal() {
				emit(terminal[T](e.Kind))
				return
			}
			k := identity(e.Value)
			mu.Lock()
			_, dup := seen[k]
			if !dup {
				seen[k] = struct{}{}
			}
			mu.Unlock()
			if !dup {
				emit.Send(e.Value)
			}
		})
		lifetime.OnEnded(d.Dispose)
	}))
}

// Change carries a value transition: the value before and after an update.
type Change[T any] struct {
	Previous T
	Current  T
}

// CombinePrevious derives an observable of transitions. The first upstream
// value pairs with initial as its predecessor.
func CombinePrevious[T any](src Observable[T], initial T) Observable[Change[T]] {
	return newComposed(NewProducer(func(emit Observer[Change[T]], lifetime *Lifetime) {
		var mu sync.Mutex
		prev := initial
		d := src.Producer().Start(func(e Event[T]) {
			if e.IsTerminal() {
				emit(terminal[Change[T]](e.Kind))
				return
			}
			mu.Lock()
			out := Change[T]{Previous: prev, Current: e.Value}
			prev = e.Value
			mu.Unlock()
			emit.Send(out)
		})
		lifetime.OnEnded(d.Dispose)
	}))
}

// Negate derives the element-wise logical NOT of a boolean observable.
func Negate(src Observable[bool]) Observable[bool] {
	return Map(src, func(b bool) bool { return !b })
}

// And is true when both sources' latest values are true, with
// combine-latest semantics.
func And(a, b Observable[bool]) Observable[bool] {
	return CombineLatest(a, b, func(x, y bool) bool { return x && y })
}

// Or is true when either source's latest value is true, with combine-latest
// semantics.
func Or(a, b Observable[bool]) Observable[bool] {
	return CombineLatest(a, b, func(x, y bool) bool { return x || y })
}
