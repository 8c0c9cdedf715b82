// Package slo tracks the collector's service level objectives.
//
// The worker recomputes these gauges after every collection cycle from the
// cycle's run metrics; alerting compares them against the targets below.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Objectives for the ingestion pipeline.
const (
	// CollectionSuccessSLO is the target ratio of successful site runs per
	// cycle (0.99 = at most one failed run in a hundred).
	CollectionSuccessSLO = 0.99

	// DataQualitySLO is the target ratio of valid records among all records
	// found upstream.
	DataQualitySLO = 0.95

	// CycleDurationSLO is the target upper bound for one full collection
	// cycle, in seconds.
	CycleDurationSLO = 300.0
)

var (
	// SLOCollectionSuccess is the success ratio of the last cycle,
	// successful runs / total runs.
	SLOCollectionSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_collection_success_ratio",
			Help: "Ratio of successful site runs in the last cycle (0-1), target: 0.99",
		},
	)

	// SLODataQuality is the validity ratio of the last cycle,
	// valid records / found records.
	SLODataQuality = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_data_quality_ratio",
			Help: "Ratio of valid records among found in the last cycle (0-1), target: 0.95",
		},
	)

	// SLOCycleDuration is the wall time of the last cycle.
	SLOCycleDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_cycle_duration_seconds",
			Help: "Wall time of the last collection cycle in seconds, target: <= 300",
		},
	)
)

// UpdateCollectionSuccess records the success ratio of a finished cycle.
func UpdateCollectionSuccess(ratio float64) {
	SLOCollectionSuccess.Set(ratio)
}

// UpdateDataQuality records the validity ratio of a finished cycle.
func UpdateDataQuality(ratio float64) {
	SLODataQuality.Set(ratio)
}

// UpdateCycleDuration records how long a finished cycle took.
func UpdateCycleDuration(seconds float64) {
	SLOCycleDuration.Set(seconds)
}
