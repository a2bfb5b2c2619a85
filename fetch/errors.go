package fetch

import "errors"

// Sentinel errors for fetch wrappers.
var (
	// ErrTimeout is returned when a fetch exceeds its deadline.
	ErrTimeout = errors.New("fetch: operation timed out")
)
