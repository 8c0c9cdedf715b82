// Package logging configures log/slog for both binaries.
//
// The worker and the API log structured JSON to stdout; NewTextLogger exists
// for local runs. LOG_LEVEL controls verbosity. WithRequestID and the
// context helpers let HTTP handlers log with a request-scoped logger.
//
//	logger := logging.NewLogger()
//	logger.Info("collector started", "sites", len(sites))
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.WithRequestID(r.Context(), logging.FromContext(r.Context()))
//	    logger.Info("listing duplicates")
//	}
package logging
