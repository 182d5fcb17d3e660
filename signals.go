package prism

import "github.com/zoobzio/capitan"

// Lifecycle signals.
var (
	// MutableCreated is emitted when a mutable observable is created.
	MutableCreated = capitan.NewSignal(
		"prism.mutable.created",
		"Mutable observable created",
	)

	// MutableClosed is emitted when a mutable observable is closed.
	MutableClosed = capitan.NewSignal(
		"prism.mutable.closed",
		"Mutable observable closed",
	)

	// ComposedCreated is emitted when a composed observable is constructed.
	ComposedCreated = capitan.NewSignal(
		"prism.composed.created",
		"Composed observable constructed",
	)
)

// Contract violation signals, emitted immediately before the corresponding
// panic.
var (
	// ExclusivityViolated is emitted when a mutation is attempted while
	// another mutation on the same cell is open.
	ExclusivityViolated = capitan.NewSignal(
		"prism.cell.exclusivity.violated",
		"Nested mutation attempted while one was open",
	)

	// InitialValueMissing is emitted when a producer sends no synchronous
	// value during observable construction.
	InitialValueMissing = capitan.NewSignal(
		"prism.composed.initial.missing",
		"Producer sent no synchronous value at construction",
	)
)

// File watching signals.
var (
	// FileWatchStarted is emitted when a file watch begins.
	FileWatchStarted = capitan.NewSignal(
		"prism.filewatch.started",
		"File watch started",
	)

	// FileWatchStopped is emitted when a file watch ends.
	FileWatchStopped = capitan.NewSignal(
		"prism.filewatch.stopped",
		"File watch stopped",
	)

	// FileDecodeFailed is emitted when watched file contents fail to
	// decode; the previous value is retained.
	FileDecodeFailed = capitan.NewSignal(
		"prism.filewatch.decode.failed",
		"Watched file failed to decode",
	)
)
