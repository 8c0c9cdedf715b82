// Package observability groups the operational concerns shared by the
// worker and the API.
//
// Subpackages:
//   - logging: log/slog setup and request-scoped loggers
//   - metrics: Prometheus counters and gauges for collection and HTTP
//   - tracing: OpenTelemetry tracer and HTTP middleware
//   - slo: gauges tracking the collector's service level objectives
package observability
