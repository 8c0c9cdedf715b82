// Package tracing wires OpenTelemetry into both binaries.
//
// The API wraps its router in Middleware, which opens a server span per
// request and echoes the trace id in X-Trace-Id. The worker opens a span
// per site collection run through GetTracer. The binaries install the SDK
// provider and the W3C propagator at startup; without one the global
// no-op provider applies and traced paths cost nothing.
package tracing
