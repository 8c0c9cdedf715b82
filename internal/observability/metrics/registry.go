// Package metrics provides centralized Prometheus metrics for the collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Collection metrics track the ingest pipeline
var (
	// ArticlesTotal tracks total number of articles in database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)

	// SitesTotal tracks total number of sites in database
	SitesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sites_total",
			Help: "Total number of sites in the database",
		},
	)

	// CollectionRunsTotal counts collection runs by site and result
	CollectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_runs_total",
			Help: "Total number of collection runs",
		},
		[]string{"site", "result"}, // result: success, failure
	)

	// CollectionRunDuration measures time to collect one site endpoint
	CollectionRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collection_run_duration_seconds",
			Help:    "Time taken to collect one site endpoint",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"site"},
	)

	// ArticlesFoundTotal counts raw records located in fetched payloads
	ArticlesFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_found_total",
			Help: "Total number of raw article records located in payloads",
		},
		[]string{"site"},
	)

	// ArticlesProcessedTotal counts per-record upsert outcomes
	ArticlesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_processed_total",
			Help: "Total number of records processed by upsert outcome",
		},
		[]string{"site", "outcome"}, // outcome: new, updated, unchanged, skipped
	)

	// FieldChangesTotal counts recorded article field changes
	FieldChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_field_changes_total",
			Help: "Total number of article field changes recorded",
		},
		[]string{"change_type", "significant"},
	)

	// BatchQualityScore observes the per-payload data quality score
	BatchQualityScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collection_batch_quality_score",
			Help:    "Data quality score of fetched payloads (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"site"},
	)

	// EndpointFetchDuration measures upstream endpoint response time
	EndpointFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "endpoint_fetch_duration_seconds",
			Help:    "Upstream endpoint response time in seconds",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
		[]string{"site"},
	)

	// CollectionErrorsTotal counts errors during collection runs
	CollectionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_errors_total",
			Help: "Total number of collection errors",
		},
		[]string{"site", "error_type"},
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
