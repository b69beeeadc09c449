package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnbound is returned when the form's elements cannot be bound to the
	// synchronizer.
	ErrUnbound = errors.New("tui: form cannot be bound")
	// ErrNoLookup is returned when no product lookup is configured.
	ErrNoLookup = errors.New("tui: product lookup is required")
)
