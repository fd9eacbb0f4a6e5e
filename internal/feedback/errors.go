package feedback

import "errors"

var (
	// ErrUnknownCommand is returned for a command topic with an unknown kind.
	ErrUnknownCommand = errors.New("feedback: unknown command")

	// ErrInvalidCommand is returned when a command payload cannot be decoded
	// or lacks a required field.
	ErrInvalidCommand = errors.New("feedback: invalid command")
)
