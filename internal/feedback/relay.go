package feedback

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-switcher/internal/session"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

// Websocket event channels the relay broadcasts on.
const (
	EventIndicators = "switcher.indicators"
	EventRecompute  = "switcher.recompute"
	EventOutputs    = "switcher.outputs"
	EventChange     = "switcher.change"
)

// DefaultQueueSize bounds the relay's outbound queue.
const DefaultQueueSize = 1024

// Logger is the logging surface the relay needs.
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

// Publisher is the MQTT surface the relay publishes through.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
}

// Event is one feedback message for websocket clients. Data is the same
// JSON document published on MQTT.
type Event struct {
	Name string
	Data json.RawMessage
}

// Broadcaster fans events out to websocket clients.
type Broadcaster interface {
	Broadcast(ev Event)
}

// IndicatorsEvent asks control surfaces to recheck indicators.
type IndicatorsEvent struct {
	All        bool     `json:"all"`
	Indicators []string `json:"indicators,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// RecomputeEvent asks control surfaces to recompute derived outputs.
type RecomputeEvent struct {
	Timestamp string `json:"timestamp"`
}

// OutputsEvent carries the derived outputs changed by one batch.
type OutputsEvent struct {
	Outputs map[string]state.Value `json:"outputs"`
}

// ChangeEvent describes one applied canonical change.
type ChangeEvent struct {
	Kind     string       `json:"kind"`
	Channel  string       `json:"channel"`
	Path     string       `json:"path"`
	Value    *state.Value `json:"value,omitempty"`
	HasValue bool         `json:"has_value"`
}

type message struct {
	topic    string
	payload  []byte
	retained bool

	event string
}

// Relay is the session's owner when the layer above lives on the other
// side of MQTT. Every callback is turned into a message and queued; Run
// publishes the queue and broadcasts each message to the websocket hub.
//
// Callbacks never block the session loop. When the queue is full the
// message is dropped and counted.
type Relay struct {
	topics mqtt.Topics
	pub    Publisher
	hub    Broadcaster
	queue  chan message
	logger Logger
	now    func() time.Time

	dropped atomic.Int64
}

var (
	_ session.Owner          = (*Relay)(nil)
	_ session.OutputObserver = (*Relay)(nil)
	_ session.Journal        = (*Relay)(nil)
)

// NewRelay creates a relay. pub and hub may each be nil.
func NewRelay(topics mqtt.Topics, pub Publisher, hub Broadcaster, queueSize int) *Relay {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Relay{
		topics: topics,
		pub:    pub,
		hub:    hub,
		queue:  make(chan message, queueSize),
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger.
func (r *Relay) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	r.logger = l
}

// Dropped returns how many messages were dropped on a full queue.
func (r *Relay) Dropped() int64 {
	return r.dropped.Load()
}

// Run publishes queued messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-r.queue:
			r.deliver(m)
		}
	}
}

func (r *Relay) deliver(m message) {
	if r.hub != nil && m.event != "" {
		r.hub.Broadcast(Event{Name: m.event, Data: m.payload})
	}
	if r.pub == nil || m.topic == "" {
		return
	}

	var err error
	if m.retained {
		err = r.pub.PublishRetained(m.topic, m.payload)
	} else {
		err = r.pub.PublishEvent(m.topic, m.payload)
	}
	if err != nil {
		r.logger.Warn("feedback publish failed", "topic", m.topic, "error", err)
	}
}

func (r *Relay) enqueue(m message) {
	select {
	case r.queue <- m:
	default:
		r.dropped.Add(1)
		r.logger.Warn("feedback queue full, message dropped", "topic", m.topic)
	}
}

func (r *Relay) enqueueJSON(topic string, retained bool, event string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		r.logger.Error("feedback encode failed", "topic", topic, "error", err)
		return
	}
	r.enqueue(message{topic: topic, payload: payload, retained: retained, event: event})
}

func (r *Relay) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

// RecheckIndicators publishes an indicator recheck request. nil means all.
func (r *Relay) RecheckIndicators(ids []string) {
	r.enqueueJSON(r.topics.Indicators(), false, EventIndicators, IndicatorsEvent{
		All:        ids == nil,
		Indicators: ids,
		Timestamp:  r.timestamp(),
	})
}

// RefreshDerivedOutputs publishes a recompute signal.
func (r *Relay) RefreshDerivedOutputs() {
	r.enqueueJSON(r.topics.Recompute(), false, EventRecompute, RecomputeEvent{Timestamp: r.timestamp()})
}

// OutputsChanged publishes each changed output retained on its own topic
// and broadcasts the whole set as one websocket event.
func (r *Relay) OutputsChanged(changed map[string]state.Value) {
	if len(changed) == 0 {
		return
	}
	for name, v := range changed {
		payload, err := json.Marshal(v)
		if err != nil {
			r.logger.Error("feedback encode failed", "output", name, "error", err)
			continue
		}
		r.enqueue(message{topic: r.topics.Output(name), payload: payload, retained: true})
	}
	r.enqueueJSON("", false, EventOutputs, OutputsEvent{Outputs: changed})
}

// RecordChange publishes an applied canonical change.
func (r *Relay) RecordChange(c delta.Change) {
	ev := ChangeEvent{
		Kind:     c.Kind.String(),
		Channel:  string(c.Channel),
		Path:     c.CanonicalPath,
		HasValue: c.HasValue,
	}
	if c.HasValue {
		v := c.Value
		ev.Value = &v
	}
	r.enqueueJSON(r.topics.Change(ev.Channel), false, EventChange, ev)
}
