package mapping

import "errors"

// Domain errors for the mapping package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, mapping.ErrUnknownFamily) {
//	    // fall back to the configured family
//	}
var (
	// ErrUnknownFamily is returned when a family name or model is not recognised.
	ErrUnknownFamily = errors.New("mapping: unknown family")

	// ErrInvalidRule is returned when a rule is missing a pattern or its
	// pattern does not compile.
	ErrInvalidRule = errors.New("mapping: invalid rule")

	// ErrUnmappableValue is returned by value rewrites that cannot convert
	// the value they were given.
	ErrUnmappableValue = errors.New("mapping: unmappable value")
)
