package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"newsharvest/internal/handler/http/respond"
	"newsharvest/internal/observability/metrics"
	"newsharvest/internal/repository"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus reports one health check. "degraded" is a warning, not a
// failure; only "unhealthy" checks turn the response into a 503.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler serves the detailed health check: database connectivity,
// connection pool pressure and table counts. The count queries make it
// heavier than a probe should be; point Kubernetes at /ready and /live.
type HealthHandler struct {
	DB       *sql.DB
	Sites    repository.SiteRepository
	Articles repository.ArticleRepository
	Version  string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	if h.DB != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status == "unhealthy" {
			allHealthy = false
		}
	} else {
		checks["database"] = CheckStatus{Status: "unhealthy", Message: "not configured"}
		allHealthy = false
	}

	storageCheck := h.checkStorage(ctx)
	checks["storage"] = storageCheck
	if storageCheck.Status == "unhealthy" {
		allHealthy = false
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the database and inspects the connection pool. Error
// messages are sanitized before they land in the response: a failed dial
// tends to quote the DSN.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{
			Status:  "unhealthy",
			Message: respond.SanitizeError(err),
		}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)

	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections of 0 means unlimited, which also means no
	// utilization signal.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool max connections not configured",
			Details: details,
		}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  "degraded",
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}

	return CheckStatus{Status: "healthy", Details: details}
}

// checkStorage counts sites and articles so an operator sees at a glance
// whether collection has been writing anything.
func (h *HealthHandler) checkStorage(ctx context.Context) CheckStatus {
	if h.Sites == nil || h.Articles == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}

	sites, err := h.Sites.List(ctx)
	if err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}
	active := 0
	for _, site := range sites {
		if site.IsActive {
			active++
		}
	}

	articles, err := h.Articles.Stats(ctx)
	if err != nil {
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}

	return CheckStatus{
		Status: "healthy",
		Details: map[string]any{
			"sites_total":        len(sites),
			"sites_active":       active,
			"articles_total":     articles.Total,
			"articles_active":    articles.Active,
			"articles_duplicate": articles.Duplicates,
		},
	}
}

// ReadyHandler answers readiness probes with a database ping.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes. Responding at all is the check.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
