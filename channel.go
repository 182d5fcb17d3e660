package prism

// FromChannel builds an observable seeded with initial that tracks values
// received on ch. Values are applied from an internal goroutine, so
// broadcasts are delivered on that goroutine. The observable completes when
// ch is closed; the channel must eventually close or the goroutine persists
// for the life of the process.
//
// Useful for testing and for bridging sources that already produce values
// on a channel.
func FromChannel[T any](initial T, ch <-chan T) Observable[T] {
	m := NewMutable(initial)
	go func() {
		for v := range ch {
			m.Set(v)
		}
		m.Close()
	}()
	return Capture[T](m)
}
