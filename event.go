package prism

// EventKind identifies the kind of an Event.
type EventKind int32

const (
	// EventValue carries a value from the stream.
	EventValue EventKind = iota

	// EventCompleted signals normal termination. No further events follow.
	EventCompleted

	// EventInterrupted signals cancellation. Downstream consumers that do
	// not care why a stream ended treat it exactly like EventCompleted.
	EventInterrupted
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventValue:
		return "value"
	case EventCompleted:
		return "completed"
	case EventInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Event is a single occurrence delivered by a Signal: a value or a terminal.
type Event[T any] struct {
	Kind EventKind

	// Value is meaningful only when Kind is EventValue.
	Value T
}

// IsTerminal reports whether the event ends the stream.
func (e Event[T]) IsTerminal() bool {
	return e.Kind != EventValue
}

// terminal builds a terminal event of kind k for a stream of U. It is used
// when forwarding a terminal across streams of different element types.
func terminal[U any](k EventKind) Event[U] {
	return Event[U]{Kind: k}
}
