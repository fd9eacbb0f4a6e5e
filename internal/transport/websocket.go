package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Defaults for Options.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultMaxMessageSize   = 16 << 20
)

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Handler receives every inbound text or binary message.
type Handler func(payload []byte)

// Options configures a Client.
type Options struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
	Header           http.Header
}

// Client is a websocket connection to the unit. It delivers inbound messages
// to one Handler and sends outbound envelopes. It does not reconnect: when
// the connection drops, Done is closed and the caller decides what to do.
//
// Thread Safety: Send may be called from any goroutine.
type Client struct {
	conn    *websocket.Conn
	opts    Options
	logger  Logger
	handler Handler

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	startOnce sync.Once
}

// Dial opens a websocket connection to opts.URL.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, opts.URL, opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDialFailed, opts.URL, err)
	}
	conn.SetReadLimit(opts.MaxMessageSize)

	return &Client{
		conn:    conn,
		opts:    opts,
		logger:  noopLogger{},
		handler: func([]byte) {},
		done:    make(chan struct{}),
	}, nil
}

// SetLogger sets the logger. Call before Start.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// SetHandler sets the inbound handler. Call before Start.
func (c *Client) SetHandler(h Handler) {
	if h == nil {
		h = func([]byte) {}
	}
	c.handler = h
}

// Start launches the read pump. Messages are handed to the handler in
// arrival order from a single goroutine.
func (c *Client) Start() {
	c.startOnce.Do(func() {
		go c.readPump()
	})
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) readPump() {
	defer c.shutdown()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("device websocket read error", "error", err)
			} else {
				c.logger.Debug("device websocket closed", "error", err)
			}
			return
		}
		c.handler(message)
	}
}

// Send writes one text message. The write deadline is the earlier of the
// context deadline and the configured write timeout.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}

	deadline := time.Now().Add(c.opts.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	//nolint:errcheck // Best-effort deadline; write error caught below
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("writing to device: %w", err)
	}
	return nil
}

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	//nolint:errcheck // Best-effort close message
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	c.shutdown()
	return nil
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		close(c.done)
	})
}
