package prism

import "sync"

// panicBadStrategy reports a FlattenStrategy outside the declared set,
// including the zero value: there is no default merge policy.
const panicBadStrategy = "prism: unknown flatten strategy"

// FlattenStrategy selects how a stream of inner observables merges into one
// flattened stream. Callers state the policy explicitly; the zero value is
// invalid.
type FlattenStrategy int

const (
	// FlattenLatest switches to each newest inner observable, discarding
	// further output from any previously active one.
	FlattenLatest FlattenStrategy = iota + 1

	// FlattenConcat runs inner observables strictly one after another in
	// arrival order, queuing later arrivals until the active one
	// completes.
	FlattenConcat

	// FlattenMerge runs all inner observables concurrently, interleaving
	// their output in arrival order.
	FlattenMerge
)

// String returns the string representation of the strategy.
func (s FlattenStrategy) String() string {
	switch s {
	case FlattenLatest:
		return "latest"
	case FlattenConcat:
		return "concat"
	case FlattenMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Flatten resolves an observable of observables into a single observable of
// inner values according to strategy. The flattened stream completes once
// the outer observable has completed and no inner observable remains
// active or queued. An inner observable's interruption counts as its
// completion; it is never surfaced downstream as interruption.
func Flatten[T any](src Observable[Observable[T]], strategy FlattenStrategy) Observable[T] {
	switch strategy {
	case FlattenLatest, FlattenConcat, FlattenMerge:
	default:
		panic(panicBadStrategy)
	}
	return newComposed(flattenProducer(src.Producer(), strategy))
}

// FlatMap maps each value of src to an observable and flattens the results
// according to strategy.
func FlatMap[T, U any](src Observable[T], strategy FlattenStrategy, f func(T) Observable[U]) Observable[U] {
	return Flatten(Map(src, func(v T) Observable[U] { return f(v) }), strategy)
}

func flattenProducer[T any](outer *Producer[Observable[T]], strategy FlattenStrategy) *Producer[T] {
	return NewProducer(func(emit Observer[T], lifetime *Lifetime) {
		f := &flattener[T]{emit: emit, strategy: strategy}
		d := outer.Start(func(e Event[Observable[T]]) {
			switch e.Kind {
			case EventValue:
				f.add(e.Value)
			case EventInterrupted:
				emit.SendInterrupted()
			case EventCompleted:
				f.outerFinished()
			}
		})
		lifetime.OnEnded(func() {
			d.Dispose()
			f.disposeAll()
		})
	})
}

// flattener tracks the inner observables behind a Flatten subscription.
type flattener[T any] struct {
	mu        sync.Mutex
	emit      Observer[T]
	strategy  FlattenStrategy
	outerDone bool
	finished  bool
	gen       int // latest: identifies the active inner; 0 elsewhere
	running   int // inners started and not yet terminated
	backlog   []Observable[T]
	active    *Disposable   // latest: the current inner subscription
	subs      []*Disposable // concat/merge: all inner subscriptions
}

func (f *flattener[T]) add(inner Observable[T]) {
	f.mu.Lock()
	if f.finished {
		f.mu.Unlock()
		return
	}
	switch f.strategy {
	case FlattenLatest:
		f.gen++
		gen := f.gen
		prev := f.active
		f.running = 1
		f.mu.Unlock()
		if prev != nil {
			prev.Dispose()
		}
		d := f.start(inner, gen)
		f.mu.Lock()
		if f.gen == gen {
			f.active = d
			f.mu.Unlock()
		} else {
			f.mu.Unlock()
			d.Dispose()
		}

	case FlattenMerge:
		f.running++
		f.mu.Unlock()
		d := f.start(inner, 0)
		f.mu.Lock()
		f.subs = append(f.subs, d)
		f.mu.Unlock()

	case FlattenConcat:
		if f.running > 0 {
			f.backlog = append(f.backlog, inner)
			f.mu.Unlock()
			return
		}
		f.running = 1
		f.mu.Unlock()
		d := f.start(inner, 0)
		f.mu.Lock()
		f.subs = append(f.subs, d)
		f.mu.Unlock()
	}
}

// start subscribes to an inner observable. gen is nonzero only for the
// latest strategy, where values from a superseded inner are dropped.
func (f *flattener[T]) start(inner Observable[T], gen int) *Disposable {
	return inner.Producer().Start(func(e Event[T]) {
		if e.Kind == EventValue {
			f.mu.Lock()
			drop := f.finished || (gen != 0 && gen != f.gen)
			f.mu.Unlock()
			if !drop {
				f.emit.Send(e.Value)
			}
			return
		}
		f.innerFinished(gen)
	})
}

func (f *flattener[T]) innerFinished(gen int) {
	var next Observable[T]
	f.mu.Lock()
	switch f.strategy {
	case FlattenLatest:
		if gen == f.gen {
			f.running = 0
		}
	case FlattenMerge:
		f.running--
	case FlattenConcat:
		if len(f.backlog) > 0 {
			next = f.backlog[0]
			f.backlog = f.backlog[1:]
		} else {
			f.running = 0
		}
	}
	f.mu.Unlock()

	if next != nil {
		d := f.start(next, 0)
		f.mu.Lock()
		f.subs = append(f.subs, d)
		f.mu.Unlock()
	}
	f.maybeComplete()
}

func (f *flattener[T]) outerFinished() {
	f.mu.Lock()
	f.outerDone = true
	f.mu.Unlock()
	f.maybeComplete()
}

func (f *flattener[T]) maybeComplete() {
	f.mu.Lock()
	done := f.outerDone && f.running == 0 && len(f.backlog) == 0 && !f.finished
	if done {
		f.finished = true
	}
	f.mu.Unlock()
	if done {
		f.emit.SendCompleted()
	}
}

func (f *flattener[T]) disposeAll() {
	f.mu.Lock()
	active := f.active
	subs := f.subs
	f.active = nil
	f.subs = nil
	f.mu.Unlock()
	if active != nil {
		active.Dispose()
	}
	for _, d := range subs {
		d.Dispose()
	}
}
