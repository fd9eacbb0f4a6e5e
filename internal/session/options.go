package session

import (
	"time"

	"github.com/zoobzio/clockz"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/subscription"
)

// Logger defines the logging interface used by the Session.
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

// Metrics is everything the session and its components count. It is
// satisfied by *metrics.Metrics.
type Metrics interface {
	delta.Metrics
	subscription.Metrics
	ObserveBatch(size int)
	SetFamily(family string)
}

// Default sizes.
const (
	DefaultBatchSize = 64
	DefaultInboxSize = 256
)

type options struct {
	logger      Logger
	metrics     Metrics
	journal     Journal
	clock       clockz.Clock
	latchWindow time.Duration
	family      mapping.Family
	batchSize   int
	inboxSize   int
}

func defaultOptions() options {
	return options{
		logger:      noopLogger{},
		clock:       clockz.RealClock,
		latchWindow: delta.DefaultLatchWindow,
		batchSize:   DefaultBatchSize,
		inboxSize:   DefaultInboxSize,
	}
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger for the session and every component it owns.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithJournal records every applied change.
func WithJournal(j Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithClock sets the clock driving the debounce latch.
func WithClock(c clockz.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLatchWindow overrides delta.DefaultLatchWindow.
func WithLatchWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.latchWindow = d
		}
	}
}

// WithFamily forces the hardware family instead of identifying it from the
// snapshot.
func WithFamily(f mapping.Family) Option {
	return func(o *options) { o.family = f }
}

// WithBatchSize caps how many queued payloads are coalesced into one
// owner notification.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithInboxSize sets the inbound queue capacity.
func WithInboxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.inboxSize = n
		}
	}
}
