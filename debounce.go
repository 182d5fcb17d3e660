package prism

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Debounce derives an observable whose first value passes through
// synchronously (the observable contract requires one) and whose subsequent
// values are coalesced: after each upstream update the debounced observable
// waits d of quiet before emitting the latest pending value. Coalesced
// emissions are delivered from a background goroutine, not from the
// mutating goroutine.
//
// Use clockz.RealClock in production and clockz.NewFakeClock in tests for
// deterministic timing.
func Debounce[T any](src Observable[T], d time.Duration, clock clockz.Clock) Observable[T] {
	return newComposed(debounceProducer(src.Producer(), d, clock))
}

func debounceProducer[T any](p *Producer[T], dur time.Duration, clock clockz.Clock) *Producer[T] {
	return NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		var (
			mu      sync.Mutex
			pending T
			has     bool
			first   = true
			stopped bool
		)
		kick := make(chan struct{}, 1)
		done := make(chan struct{})
		var stopOnce sync.Once
		stop := func() {
			stopOnce.Do(func() { close(done) })
		}

		go func() {
			var (
				timer  clockz.Timer
				timerC <-chan time.Time
			)
			for {
				select {
				case <-done:
					if timer != nil {
						timer.Stop()
					}
					return

				case <-kick:
					if timer == nil {
						timer = clock.NewTimer(dur)
						timerC = timer.C()
					} else {
						if !timer.Stop() {
							select {
							case <-timerC:
							default:
							}
						}
						timer.Reset(dur)
					}

				case <-timerC:
					mu.Lock()
					v, ok := pending, has
					has = false
					fin := stopped
					mu.Unlock()
					if ok && !fin {
						emit.Send(v)
					}
				}
			}
		}()

		up := p.Start(func(e Event[T]) {
			if e.IsTerminal() {
				mu.Lock()
				stopped = true
				mu.Unlock()
				stop()
				emit(e)
				return
			}
			mu.Lock()
			if first {
				first = false
				mu.Unlock()
				emit.Send(e.Value)
				return
			}
			pending, has = e.Value, true
			mu.Unlock()
			select {
			case kick <- struct{}{}:
			default:
			}
		})
		lifetime.OnEnded(func() {
			up.Dispose()
			stop()
		})
	})
}
