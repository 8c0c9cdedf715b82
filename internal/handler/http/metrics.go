package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsharvest/internal/handler/http/responsewriter"
	"newsharvest/internal/observability/metrics"
)

// knownPaths are the routes the API serves. Anything else collapses into
// "other" so probes for random URLs cannot grow the path label set.
var knownPaths = map[string]struct{}{
	"/health":     {},
	"/ready":      {},
	"/live":       {},
	"/metrics":    {},
	"/stats":      {},
	"/duplicates": {},
}

func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return "other"
}

// MetricsMiddleware records request count, latency and response size for
// every request.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := responsewriter.Wrap(w)

		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(
			r.Method,
			normalizePath(r.URL.Path),
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			int(wrapped.BytesWritten()),
		)
	})
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
