package common

import "errors"

// Configuration errors are surfaced at construction time; well-formed
// sketches never return an error from a read operation afterwards (see
// package sketch).
var (
	// ErrInvalidSize is returned when a size or depth configuration
	// field is <= 0.
	ErrInvalidSize = errors.New("size must be positive")
	// ErrInvertedBounds is returned when a configured start bound is
	// not strictly less than the configured end bound.
	ErrInvertedBounds = errors.New("start must be strictly less than end")
	// ErrEmptyStructure guards the structures-stack invariant that the
	// stack is never empty. Surfacing this means the invariant was
	// violated by a bug, not by any caller-supplied input.
	ErrEmptyStructure = errors.New("structures stack is unexpectedly empty")
)
