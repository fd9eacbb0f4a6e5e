// Package metrics exports the switcher core's counters to Prometheus.
package metrics
