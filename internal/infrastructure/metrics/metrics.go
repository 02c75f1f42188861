// Package metrics exposes snapshot computation diagnostics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements ports.Metrics. A nil *Metrics discards everything.
type Metrics struct {
	registry *prometheus.Registry

	SnapshotsComputed prometheus.Counter
	SnapshotsSkipped  prometheus.Counter
	SnapshotsFailed   prometheus.Counter
	SnapshotDuration  prometheus.Histogram
	MatchOverflows    *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SnapshotsComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "edrdr_snapshots_computed_total",
			Help: "Total number of snapshot flag records computed",
		}),
		SnapshotsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "edrdr_snapshots_skipped_total",
			Help: "Total number of existing snapshot records reused",
		}),
		SnapshotsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "edrdr_snapshots_failed_total",
			Help: "Total number of snapshot computations that failed",
		}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "edrdr_snapshot_duration_seconds",
			Help:    "Duration of a single snapshot computation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		MatchOverflows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "edrdr_match_overflows_total",
			Help: "Person list comparisons skipped for exceeding the pairing limit",
		}, []string{"comparison"}),
	}
}

// SnapshotComputed records a computed snapshot and its duration.
func (m *Metrics) SnapshotComputed(d time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotsComputed.Inc()
	m.SnapshotDuration.Observe(d.Seconds())
}

// SnapshotSkipped records a reused snapshot.
func (m *Metrics) SnapshotSkipped() {
	if m == nil {
		return
	}
	m.SnapshotsSkipped.Inc()
}

// SnapshotFailed records a failed snapshot.
func (m *Metrics) SnapshotFailed() {
	if m == nil {
		return
	}
	m.SnapshotsFailed.Inc()
}

// MatchOverflow records a comparison skipped for size.
func (m *Metrics) MatchOverflow(comparison string) {
	if m == nil {
		return
	}
	m.MatchOverflows.WithLabelValues(comparison).Inc()
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
