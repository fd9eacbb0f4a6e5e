// Package transport connects the core to a unit over a websocket.
//
// The Client delivers each inbound message to a single handler from one read
// goroutine and sends outbound envelopes with a write deadline. Reconnect and
// backoff belong to the caller.
package transport
