package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the shared tracer for both binaries. Tests that install their
// own provider re-assign it.
var tracer = otel.Tracer("newsharvest")

// GetTracer returns the tracer used for API request and collection spans.
func GetTracer() trace.Tracer {
	return tracer
}
