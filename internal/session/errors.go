package session

import "errors"

// Domain errors for the session package.
var (
	// ErrWrongChannel is returned when a command addresses a channel it
	// cannot write (SetValue needs hardware, CollectionOp shared,
	// WriteLocal local).
	ErrWrongChannel = errors.New("session: wrong channel")

	// ErrStopped is returned when the session loop is no longer running.
	ErrStopped = errors.New("session: stopped")

	// ErrNoCapture is returned by CaptureLast when nothing has been latched.
	ErrNoCapture = errors.New("session: nothing captured")
)
