package state

import "errors"

// Domain errors for the state package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, state.ErrPathNotFound) {
//	    // nothing to remove
//	}
var (
	// ErrPathNotFound is returned when a delete targets a missing node.
	ErrPathNotFound = errors.New("state: path not found")

	// ErrIncompatibleNode is returned when a write or delete traverses a
	// scalar, or addresses a list with a non-index segment.
	ErrIncompatibleNode = errors.New("state: incompatible node")

	// ErrIndexOutOfRange is returned when a list index is past the end.
	ErrIndexOutOfRange = errors.New("state: index out of range")

	// ErrUnknownChannel is returned when a path does not start with one of
	// the three channel names.
	ErrUnknownChannel = errors.New("state: unknown channel")

	// ErrInvalidPointer is returned for a malformed JSON pointer.
	ErrInvalidPointer = errors.New("state: invalid pointer")
)
