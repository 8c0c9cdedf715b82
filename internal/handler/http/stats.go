package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsharvest/internal/handler/http/respond"
	"newsharvest/internal/observability/logging"
	"newsharvest/internal/usecase/stats"
)

// Accepted bounds for the stats reporting window. Below the minimum the
// snapshot aggregates are mostly empty; above the maximum the count queries
// scan too much history to serve synchronously.
const (
	statsWindowMin = 15 * time.Minute
	statsWindowMax = 90 * 24 * time.Hour
)

// StatsHandler serves GET /stats: the collection health report.
type StatsHandler struct {
	Svc    *stats.Service
	Logger *slog.Logger
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	window, err := parseWindow(r.URL.Query().Get("window"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.Svc.Overview(ctx, window)
	if err != nil {
		logger.Error("failed to build stats report", slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	logger.Info("stats report served",
		slog.String("window", report.Window.String()),
		slog.Int("sites", len(report.Sites)),
	)
	respond.JSON(w, http.StatusOK, newStatsResponse(report))
}

// parseWindow reads the window query parameter. Empty means "use the
// service default".
func parseWindow(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid window: must be a duration such as 24h or 30m")
	}
	if window < statsWindowMin || window > statsWindowMax {
		return 0, fmt.Errorf("window must be between %s and %s", statsWindowMin, statsWindowMax)
	}
	return window, nil
}
