package session

import "errors"

var (
	// ErrNotFound is returned when an operation references an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidInput marks malformed dates and months.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence wraps a failed save. The in-memory change has already
	// been applied when it is returned.
	ErrPersistence = errors.New("persist sessions")
)
