// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Collection pipeline metrics (runs, outcomes, quality, field changes)
//   - HTTP request metrics (duration, count, size)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "newsharvest/internal/observability/metrics"
//
//	func collectSite(site string) {
//	    start := time.Now()
//	    // ... run collection ...
//
//	    metrics.RecordCollectionRun(site, true, time.Since(start))
//	    metrics.RecordCollectionOutcomes(site, created, updated, unchanged, skipped)
//	}
package metrics
