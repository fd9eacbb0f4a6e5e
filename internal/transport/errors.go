package transport

import "errors"

// Domain errors for the transport package.
var (
	// ErrNotConnected is returned when sending on a closed connection.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrDialFailed is returned when the websocket handshake fails.
	ErrDialFailed = errors.New("transport: dial failed")
)
