package prism

import "github.com/zoobzio/capitan"

// Field keys for prism events.
var (
	// KeyPath is the path of a watched file.
	KeyPath = capitan.NewStringKey("path")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")
)
