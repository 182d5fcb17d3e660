package prism

// Lifetime represents the scope during which its owner remains interested in
// receiving events. Composition machinery observes it to tear down
// subscriptions deterministically instead of relying on collector timing.
type Lifetime struct {
	signal   *Signal[struct{}]
	observer Observer[struct{}]
}

// LifetimeToken ends its Lifetime when disposed. Exactly one token exists
// per lifetime; whoever holds the token controls the scope.
type LifetimeToken struct {
	lifetime *Lifetime
}

// NewLifetime creates a lifetime and the token that ends it.
func NewLifetime() (*Lifetime, *LifetimeToken) {
	s, in := Pipe[struct{}]()
	l := &Lifetime{signal: s, observer: in}
	return l, &LifetimeToken{lifetime: l}
}

// OnEnded registers fn to run when the lifetime ends. If the lifetime has
// already ended, fn runs immediately.
func (l *Lifetime) OnEnded(fn func()) *Disposable {
	return l.signal.Observe(func(e Event[struct{}]) {
		if e.IsTerminal() {
			fn()
		}
	})
}

// HasEnded reports whether the lifetime is over.
func (l *Lifetime) HasEnded() bool {
	return l.signal.terminated()
}

// End ends the lifetime. Idempotent.
func (t *LifetimeToken) End() {
	t.lifetime.observer.SendCompleted()
}

// Dispose is an alias for End so a token can stand in wherever a
// cancellation handle is expected.
func (t *LifetimeToken) Dispose() {
	t.End()
}
