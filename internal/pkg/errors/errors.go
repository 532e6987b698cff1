package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidTransition signals an attempt to move a mastered concept's
	// criteria backward. Logged by the caller, never applied.
	ErrInvalidTransition = errors.New("invalid concept phase transition")
	// ErrNoQuestionAvailable signals a concept with no authored questions
	// in any format.
	ErrNoQuestionAvailable = errors.New("no question available")
	// ErrConcurrentSessionConflict signals the user's advisory lock is
	// already held by another session.
	ErrConcurrentSessionConflict = errors.New("concurrent session conflict")
	// ErrStaleStateWrite signals an optimistic-concurrency check failed on
	// a concept state update.
	ErrStaleStateWrite = errors.New("stale concept state write")
	// ErrSessionClosed signals an operation against a completed or
	// abandoned session.
	ErrSessionClosed = errors.New("session closed")
)
