package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrNilTask            = errors.New("task must not be nil")
	ErrTaskPanic          = errors.New("task panicked")
)
