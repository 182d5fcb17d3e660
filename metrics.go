package prism

// MetricsProvider allows integration with metrics systems like Prometheus,
// StatsD, etc. Implement this interface to receive callbacks on stream
// activity; attach it with Mutable.Metrics.
type MetricsProvider interface {
	// OnSend is called for each value broadcast to the stream.
	OnSend()

	// OnObserverAdded is called when an observer attaches.
	OnObserverAdded()

	// OnObserverRemoved is called when an observer detaches.
	OnObserverRemoved()

	// OnCompleted is called once when the stream terminates.
	OnCompleted()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnSend()            {}
func (NoOpMetricsProvider) OnObserverAdded()   {}
func (NoOpMetricsProvider) OnObserverRemoved() {}
func (NoOpMetricsProvider) OnCompleted()       {}
