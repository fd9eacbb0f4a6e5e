package subscription

import "errors"

// Domain errors for the subscription package.
var (
	// ErrInvalidSubscription is returned when a subscription has no name or
	// its pattern does not compile.
	ErrInvalidSubscription = errors.New("subscription: invalid subscription")

	// ErrDuplicateSubscription is returned when two subscriptions share a name.
	ErrDuplicateSubscription = errors.New("subscription: duplicate name")
)
