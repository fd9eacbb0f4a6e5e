package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "graylogic_switcher"

// Metrics holds every counter the switcher core exports. It satisfies the
// Metrics interfaces of the delta, subscription and session packages.
type Metrics struct {
	registry *prometheus.Registry

	Notifications *prometheus.CounterVec
	PatchFailures *prometheus.CounterVec
	Dropped       prometheus.Counter
	Dispatches    prometheus.Counter
	Matches       prometheus.Counter
	Sweeps        prometheus.Counter
	SweepCalls    prometheus.Counter
	EffectPanics  *prometheus.CounterVec
	BatchSize     prometheus.Histogram
	Family        *prometheus.GaugeVec
}

// New creates the metrics on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delta",
			Name:      "notifications_total",
			Help:      "Inbound notifications applied, by kind and channel",
		}, []string{"kind", "channel"}),

		PatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delta",
			Name:      "patch_failures_total",
			Help:      "Patch operations that failed to apply",
		}, []string{"channel", "op"}),

		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delta",
			Name:      "dropped_total",
			Help:      "Malformed inbound payloads dropped",
		}),

		Dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "dispatches_total",
			Help:      "Canonical paths dispatched",
		}),

		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "matches_total",
			Help:      "Subscriptions matched by dispatched paths",
		}),

		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "sweeps_total",
			Help:      "Full sweeps run",
		}),

		SweepCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "sweep_effect_calls_total",
			Help:      "Side effect invocations made by sweeps",
		}),

		EffectPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "effect_panics_total",
			Help:      "Side effects that panicked",
		}, []string{"subscription"}),

		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "batch_size",
			Help:      "Inbound payloads coalesced per owner notification",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),

		Family: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "family",
			Help:      "Selected hardware family (1 for the active one)",
		}, []string{"family"}),
	}

	m.registry.MustRegister(
		m.Notifications,
		m.PatchFailures,
		m.Dropped,
		m.Dispatches,
		m.Matches,
		m.Sweeps,
		m.SweepCalls,
		m.EffectPanics,
		m.BatchSize,
		m.Family,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveNotification counts an applied notification.
func (m *Metrics) ObserveNotification(kind, channel string) {
	m.Notifications.WithLabelValues(kind, channel).Inc()
}

// ObservePatchFailure counts a failed patch operation.
func (m *Metrics) ObservePatchFailure(channel, op string) {
	m.PatchFailures.WithLabelValues(channel, op).Inc()
}

// ObserveDropped counts a dropped payload.
func (m *Metrics) ObserveDropped() {
	m.Dropped.Inc()
}

// ObserveDispatch counts a dispatch and the subscriptions it matched.
func (m *Metrics) ObserveDispatch(matched int) {
	m.Dispatches.Inc()
	m.Matches.Add(float64(matched))
}

// ObserveSweep counts a sweep and its effect calls.
func (m *Metrics) ObserveSweep(calls int) {
	m.Sweeps.Inc()
	m.SweepCalls.Add(float64(calls))
}

// ObserveEffectPanic counts a panicking side effect.
func (m *Metrics) ObserveEffectPanic(subscription string) {
	m.EffectPanics.WithLabelValues(subscription).Inc()
}

// ObserveBatch records the size of a processed batch.
func (m *Metrics) ObserveBatch(size int) {
	m.BatchSize.Observe(float64(size))
}

// SetFamily marks family as the active one.
func (m *Metrics) SetFamily(family string) {
	m.Family.Reset()
	m.Family.WithLabelValues(family).Set(1)
}
