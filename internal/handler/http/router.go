// Package http serves the collector's read-only operations API: health and
// readiness probes, Prometheus metrics, the collection stats report and the
// advisory duplicate listing. Collection itself runs in the worker; nothing
// here mutates state.
package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"newsharvest/internal/common/pagination"
	"newsharvest/internal/handler/http/requestid"
	"newsharvest/internal/observability/tracing"
	"newsharvest/internal/repository"
	"newsharvest/internal/usecase/dedup"
	"newsharvest/internal/usecase/stats"
)

// DefaultRequestTimeout bounds request handling when RouterConfig does not
// set one. The duplicate scan is the slowest endpoint and stays well under
// this on production-sized catalogs.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig carries the dependencies of the API router.
type RouterConfig struct {
	DB       *sql.DB
	Sites    repository.SiteRepository
	Articles repository.ArticleRepository
	Stats    *stats.Service
	Dedup    *dedup.Service

	Pagination     pagination.Config
	Version        string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter assembles the API: routes plus the middleware chain. Request ID
// and tracing run outermost so the logging middleware can read both from the
// request context; recovery runs inside the timeout so handler panics are
// caught in the goroutine that raised them.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	paginationCfg := cfg.Pagination
	if paginationCfg.DefaultLimit == 0 {
		paginationCfg = pagination.DefaultConfig()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", &HealthHandler{
		DB:       cfg.DB,
		Sites:    cfg.Sites,
		Articles: cfg.Articles,
		Version:  cfg.Version,
	})
	mux.Handle("GET /ready", &ReadyHandler{DB: cfg.DB})
	mux.Handle("GET /live", &LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())
	mux.Handle("GET /stats", &StatsHandler{Svc: cfg.Stats, Logger: logger})
	mux.Handle("GET /duplicates", &DuplicatesHandler{
		Svc:           cfg.Dedup,
		Sites:         cfg.Sites,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	})

	var handler http.Handler = mux
	handler = MetricsMiddleware(handler)
	handler = Recover(logger)(handler)
	handler = Timeout(timeout)(handler)
	handler = Logging(logger)(handler)
	handler = tracing.Middleware(handler)
	handler = requestid.Middleware(handler)
	return handler
}
