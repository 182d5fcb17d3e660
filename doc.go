// Package prism provides thread-safe observable values with algebraic
// composition.
//
// The core type is Mutable, a value holder that broadcasts every committed
// mutation to a multicast change stream. Derived observables are built from
// one or more sources with the composition operators and always hold a
// current value of their own.
//
// # Mutable values
//
//	port := prism.NewMutable(8080)
//
//	port.Signal().Observe(func(e prism.Event[int]) {
//	    if e.Kind == prism.EventValue {
//	        log.Printf("port changed: %d", e.Value)
//	    }
//	})
//
//	port.Set(9090)
//	port.Modify(func(p *int) { *p++ })
//
// Mutations are applied and broadcast under a single lock, so every
// observer sees the exact committed sequence in commit order. Reading the
// same observable from an observer callback is allowed; mutating it from
// there panics with an exclusivity-violation diagnostic, surfacing the
// reentrancy bug instead of deadlocking.
//
// # Composition
//
// Operators derive new observables without retaining their sources:
//
//	addr := prism.CombineLatest(host, port, func(h string, p int) string {
//	    return fmt.Sprintf("%s:%d", h, p)
//	})
//	distinct := prism.SkipRepeats(addr)
//
// Every observable replays its current value synchronously when its
// producer is started, so a derived observable is never without a value; a
// producer that breaks this contract is rejected with a panic at
// construction.
//
// # Termination
//
// Closing a Mutable completes its change stream, and completion cascades
// through everything derived from it. Subscriptions return a Disposable;
// disposing delivers an interrupted event, which downstream machinery
// treats exactly like completion.
//
// # External sources
//
// FromChannel bridges a Go channel into an observable, and WatchFile /
// WatchFileAs turn a file's contents into one using fsnotify and a Codec.
//
// # Observability
//
// Lifecycle and contract-violation events are emitted as capitan signals
// (see signals.go); hook them for logging or diagnostics:
//
//	capitan.Hook(prism.ExclusivityViolated, func(_ context.Context, e *capitan.Event) {
//	    log.Println("nested mutation detected")
//	})
package prism
