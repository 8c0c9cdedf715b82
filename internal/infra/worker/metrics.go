package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsharvest/internal/pkg/config"
)

// Metrics exposes the worker's Prometheus metrics. The embedded
// ConfigMetrics tracks configuration health under the "worker" component
// prefix; the rest track collection cycle execution:
//
//	worker_collect_cycles_total            counter, by status
//	worker_collect_cycle_duration_seconds  histogram
//	worker_collect_sites_processed_total   counter
//	worker_collect_last_success_timestamp  gauge
//	worker_snapshots_pruned_total          counter
type Metrics struct {
	*config.ConfigMetrics

	// CyclesTotal counts collection cycles by status
	// (started, success, failure, skipped).
	CyclesTotal *prometheus.CounterVec

	// CycleDurationSeconds observes the wall time of each cycle. Buckets
	// cover one second to thirty minutes.
	CycleDurationSeconds prometheus.Histogram

	// SitesProcessedTotal accumulates the sites handled across cycles.
	SitesProcessedTotal prometheus.Counter

	// LastSuccessTimestamp is the Unix time of the last successful cycle.
	LastSuccessTimestamp prometheus.Gauge

	// SnapshotsPrunedTotal accumulates snapshot rows removed by retention.
	SnapshotsPrunedTotal prometheus.Counter
}

// NewMetrics registers the worker metric set on the default registry.
// Call it once per process; promauto panics on duplicate registration.
func NewMetrics() *Metrics {
	return &Metrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_collect_cycles_total",
			Help: "Total collection cycles by status (started/success/failure/skipped)",
		}, []string{"status"}),

		CycleDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_collect_cycle_duration_seconds",
			Help:    "Wall time of one full collection cycle in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		SitesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_collect_sites_processed_total",
			Help: "Total sites processed across all collection cycles",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_collect_last_success_timestamp",
			Help: "Unix timestamp of the last successful collection cycle",
		}),

		SnapshotsPrunedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_snapshots_pruned_total",
			Help: "Total snapshot rows deleted by retention pruning",
		}),
	}
}

// RecordCycle counts one cycle event for the given status.
func (m *Metrics) RecordCycle(status string) {
	m.CyclesTotal.WithLabelValues(status).Inc()
}

// RecordCycleDuration observes the wall time of a finished cycle.
func (m *Metrics) RecordCycleDuration(seconds float64) {
	m.CycleDurationSeconds.Observe(seconds)
}

// RecordSitesProcessed adds the site count of a finished cycle.
func (m *Metrics) RecordSitesProcessed(count int) {
	m.SitesProcessedTotal.Add(float64(count))
}

// RecordLastSuccess marks now as the last successful cycle.
func (m *Metrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

// RecordSnapshotsPruned adds the rows removed by one pruning pass.
func (m *Metrics) RecordSnapshotsPruned(count int64) {
	m.SnapshotsPrunedTotal.Add(float64(count))
}
