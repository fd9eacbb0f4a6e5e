package delta

import (
	"errors"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/nerrad567/gray-logic-switcher/internal/state"
	"github.com/nerrad567/gray-logic-switcher/internal/subscription"
)

// RefreshTriggerPath is the raw hardware path of the global refresh trigger.
// Writes to it are never latched.
const RefreshTriggerPath = "hardware/device/system/refresh"

// Logger defines the logging interface used by the Pipeline.
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

// Dispatcher is the subset of *subscription.Dispatcher the pipeline drives.
type Dispatcher interface {
	Dispatch(path string, v state.Value, hasValue bool) subscription.Result
	Sweep() subscription.Result
}

// Metrics receives pipeline counters. It is satisfied by *metrics.Metrics.
type Metrics interface {
	ObserveNotification(kind, channel string)
	ObservePatchFailure(channel, op string)
	ObserveDropped()
}

type noopMetrics struct{}

func (noopMetrics) ObserveNotification(string, string) {}
func (noopMetrics) ObservePatchFailure(string, string) {}
func (noopMetrics) ObserveDropped()                   {}

// Change describes one applied replace or patch, in both raw and canonical
// form. It is handed to the change hook.
type Change struct {
	Kind          Kind
	Channel       state.Channel
	RawPath       []string
	CanonicalPath string
	Value         state.Value
	HasValue      bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock sets the clock driving the latch. Use clockz.NewFakeClock in
// tests.
func WithClock(c clockz.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithLatchWindow overrides DefaultLatchWindow.
func WithLatchWindow(d time.Duration) Option {
	return func(p *Pipeline) { p.window = d }
}

// WithSnapshotHook registers fn to run after a snapshot replaced a channel
// and before the sweep. It is where the hardware family is identified.
func WithSnapshotHook(fn func(ch state.Channel, snapshot state.Value)) Option {
	return func(p *Pipeline) { p.onSnapshot = fn }
}

// WithChangeHook registers fn to run for every applied replace or patch,
// before dispatch.
func WithChangeHook(fn func(Change)) Option {
	return func(p *Pipeline) { p.onChange = fn }
}

// Pipeline applies inbound notifications to the Store and turns them into
// dispatcher calls.
//
// Thread Safety: owned by the session loop. Exactly one notification is
// applied at a time and no locking is performed.
type Pipeline struct {
	store      *state.Store
	dispatcher Dispatcher
	latch      *Latch
	sessions   map[state.Channel]string

	logger     Logger
	metrics    Metrics
	clock      clockz.Clock
	window     time.Duration
	onSnapshot func(state.Channel, state.Value)
	onChange   func(Change)
}

// NewPipeline creates a Pipeline writing to store and dispatching to d.
func NewPipeline(store *state.Store, d Dispatcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		dispatcher: d,
		sessions:   make(map[state.Channel]string),
		logger:     noopLogger{},
		metrics:    noopMetrics{},
		clock:      clockz.RealClock,
		window:     DefaultLatchWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.latch = NewLatch(p.clock, p.window)
	return p
}

// Latch returns the hardware replace latch.
func (p *Pipeline) Latch() *Latch {
	return p.latch
}

// SessionID returns the socket ID recorded by the last snapshot on ch.
func (p *Pipeline) SessionID(ch state.Channel) string {
	return p.sessions[ch]
}

// ApplyPayload decodes and applies one inbound payload. Malformed payloads
// are dropped and yield an empty Result.
func (p *Pipeline) ApplyPayload(payload []byte) subscription.Result {
	n, err := Decode(payload)
	if err != nil {
		p.metrics.ObserveDropped()
		p.logger.Debug("dropping inbound payload", "error", err, "bytes", len(payload))
		return subscription.Result{}
	}
	return p.Apply(n)
}

// Apply applies a decoded notification.
func (p *Pipeline) Apply(n Notification) subscription.Result {
	p.metrics.ObserveNotification(n.Kind.String(), string(n.Channel))

	switch n.Kind {
	case KindReplace:
		return p.applyReplace(n)
	case KindPatch:
		return p.applyPatch(n)
	case KindSnapshot:
		return p.applySnapshot(n)
	default:
		return subscription.Result{}
	}
}

func (p *Pipeline) applyReplace(n Notification) subscription.Result {
	rawPath := append([]string{string(n.Channel)}, n.Path...)

	if err := p.store.WriteRaw(rawPath, n.Value); err != nil {
		p.logger.Warn("full replace failed",
			"channel", string(n.Channel),
			"path", state.Join(rawPath),
			"error", err,
		)
	}

	if n.Channel == state.ChannelHardware && state.Join(rawPath) != RefreshTriggerPath {
		p.latch.Observe(rawPath, n.Value)
	}

	return p.dispatch(KindReplace, n.Channel, rawPath, n.Value, true)
}

func (p *Pipeline) applyPatch(n Notification) subscription.Result {
	op := n.Patch
	segs, err := state.ParsePointer(op.Path)
	if err != nil {
		p.patchFailed(n.Channel, op, err)
		return subscription.Result{}
	}
	rawPath := append([]string{string(n.Channel)}, segs...)

	value, hasValue := op.Value, op.HasValue
	switch op.Op {
	case OpAdd:
		err = p.store.AddRaw(rawPath, value)
	case OpReplace:
		err = p.store.ReplaceRaw(rawPath, value)
	case OpRemove:
		err = p.store.DeleteRaw(rawPath)
		value, hasValue = state.Absent(), true
	default:
		err = ErrUnsupportedOp
		hasValue = false
	}
	if err != nil {
		p.patchFailed(n.Channel, op, err)
	}

	return p.dispatch(KindPatch, n.Channel, rawPath, value, hasValue)
}

func (p *Pipeline) patchFailed(ch state.Channel, op PatchOp, err error) {
	p.metrics.ObservePatchFailure(string(ch), op.Op)
	level := p.logger.Warn
	if errors.Is(err, state.ErrPathNotFound) {
		level = p.logger.Debug
	}
	level("patch operation failed",
		"channel", string(ch),
		"op", op.Op,
		"path", op.Path,
		"error", err,
	)
}

func (p *Pipeline) applySnapshot(n Notification) subscription.Result {
	if err := p.store.ReplaceChannel(n.Channel, n.Snapshot); err != nil {
		p.logger.Warn("snapshot rejected", "channel", string(n.Channel), "error", err)
	}
	p.sessions[n.Channel] = n.SessionID
	p.logger.Info("snapshot applied", "channel", string(n.Channel), "session_id", n.SessionID)

	if p.onSnapshot != nil {
		p.onSnapshot(n.Channel, n.Snapshot)
	}
	return p.dispatcher.Sweep()
}

// dispatch derives the canonical (path, value) from the raw pair and hands
// it to the dispatcher.
func (p *Pipeline) dispatch(kind Kind, ch state.Channel, rawPath []string, v state.Value, hasValue bool) subscription.Result {
	canonicalPath, canonicalValue := p.store.Canonical(rawPath, v)

	if p.onChange != nil {
		p.onChange(Change{
			Kind:          kind,
			Channel:       ch,
			RawPath:       rawPath,
			CanonicalPath: canonicalPath,
			Value:         canonicalValue,
			HasValue:      hasValue,
		})
	}
	return p.dispatcher.Dispatch(canonicalPath, canonicalValue, hasValue)
}
