package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-switcher/internal/feedback"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/logging"
)

// Frame types on the feedback feed. Clients send subscribe, unsubscribe
// and ping; the server sends event, ack, pong and error.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
	FrameEvent       = "event"
	FrameAck         = "ack"
	FramePong        = "pong"
	FrameError       = "error"
)

// feedQueueSize is the per-client outbound frame buffer.
const feedQueueSize = 256

// Frame is every message exchanged on the feedback feed.
//
// Events names the feedback events a subscribe/unsubscribe applies to. An
// entry may be an exact name ("switcher.outputs"), a prefix wildcard
// ("switcher.*") or "*". Seq orders events hub-wide.
type Frame struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Event  string          `json:"event,omitempty"`
	Seq    uint64          `json:"seq,omitempty"`
	Events []string        `json:"events,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Hub fans feedback events out to websocket clients. It satisfies
// feedback.Broadcaster.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*feedClient]struct{}

	seq     atomic.Uint64
	dropped atomic.Int64
}

var _ feedback.Broadcaster = (*Hub)(nil)

// NewHub creates a hub. Connection limits and keepalive timing come from
// the server's websocket config when a client attaches.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*feedClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*feedClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// Broadcast sends ev to every client subscribed to its name. Clients whose
// queue is full miss the frame; Dropped counts those.
func (h *Hub) Broadcast(ev feedback.Event) {
	frame, err := json.Marshal(Frame{
		Type:  FrameEvent,
		Event: ev.Name,
		Seq:   h.seq.Add(1),
		Data:  ev.Data,
	})
	if err != nil {
		h.logger.Error("encoding feedback frame", "event", ev.Name, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.wants(ev.Name) {
			continue
		}
		if !c.enqueue(frame) {
			h.dropped.Add(1)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many event frames were skipped for slow clients.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) add(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("feed client connected", "remote", c.conn.RemoteAddr().String(), "clients", n)
}

func (h *Hub) remove(c *feedClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	c.close()
	h.logger.Debug("feed client disconnected", "clients", n)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket upgrades the request and attaches the client to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "request_id", requestID(r.Context()))
		return
	}

	c := &feedClient{
		hub:    s.hub,
		conn:   conn,
		out:    make(chan []byte, feedQueueSize),
		done:   make(chan struct{}),
		topics: make(map[string]struct{}),
	}
	s.hub.add(c)

	go c.writeLoop(s.wsCfg)
	go c.readLoop(s.wsCfg)
}

// feedClient is one websocket connection on the feed. out is never closed;
// done signals shutdown to both loops.
type feedClient struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte

	done      chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	topics map[string]struct{}
}

func (c *feedClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// enqueue queues a frame without blocking. It reports false when the
// frame was not queued.
func (c *feedClient) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- frame:
		return true
	default:
		return false
	}
}

func (c *feedClient) reply(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// wants reports whether the client subscribed to event, directly or
// through a wildcard.
func (c *feedClient) wants(event string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.topics[event]; ok {
		return true
	}
	if _, ok := c.topics["*"]; ok {
		return true
	}
	for t := range c.topics {
		if prefix, ok := strings.CutSuffix(t, "*"); ok && strings.HasPrefix(event, prefix) {
			return true
		}
	}
	return false
}

func (c *feedClient) readLoop(cfg config.WebSocketConfig) {
	defer c.hub.remove(c)

	wait := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(wait)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("feed read error", "error", err)
			}
			return
		}
		_ = extend("")

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.reply(Frame{Type: FrameError, Error: "invalid frame"})
			continue
		}
		c.handle(f)
	}
}

func (c *feedClient) handle(f Frame) {
	switch f.Type {
	case FrameSubscribe, FrameUnsubscribe:
		if len(f.Events) == 0 {
			c.reply(Frame{Type: FrameError, ID: f.ID, Error: f.Type + " needs at least one event"})
			return
		}
		c.mu.Lock()
		for _, ev := range f.Events {
			if f.Type == FrameSubscribe {
				c.topics[ev] = struct{}{}
			} else {
				delete(c.topics, ev)
			}
		}
		c.mu.Unlock()
		c.reply(Frame{Type: FrameAck, ID: f.ID, Events: f.Events})
	case FramePing:
		c.reply(Frame{Type: FramePong, ID: f.ID})
	default:
		c.reply(Frame{Type: FrameError, ID: f.ID, Error: "unknown frame type: " + f.Type})
	}
}

func (c *feedClient) writeLoop(cfg config.WebSocketConfig) {
	ping := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer ping.Stop()
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	write := func(kind int, data []byte) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data) == nil
	}

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.out:
			if !write(websocket.TextMessage, frame) {
				c.close()
				return
			}
		case <-ping.C:
			if !write(websocket.PingMessage, nil) {
				c.close()
				return
			}
		}
	}
}
