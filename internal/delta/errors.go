package delta

import "errors"

// Domain errors for the delta package.
var (
	// ErrMalformedEnvelope is returned when a payload lacks a channel or data,
	// names an unknown channel, or is not JSON. Such payloads are dropped.
	ErrMalformedEnvelope = errors.New("delta: malformed envelope")

	// ErrUnsupportedOp is returned for patch operations other than add,
	// replace and remove.
	ErrUnsupportedOp = errors.New("delta: unsupported patch op")

	// ErrUnknownVerb is returned when encoding a collection command with a
	// verb other than add, remove, replace or toggle.
	ErrUnknownVerb = errors.New("delta: unknown collection verb")
)
