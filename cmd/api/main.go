package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	apihttp "newsharvest/internal/handler/http"
	pgRepo "newsharvest/internal/infra/adapter/persistence/postgres"
	"newsharvest/internal/infra/db"
	"newsharvest/internal/observability/logging"
	"newsharvest/internal/usecase/dedup"
	"newsharvest/internal/usecase/stats"
)

const serverAddr = ":8080"

func main() {
	logger := initLogger()
	initTracing()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler := setupRouter(logger, database)
	runServer(logger, handler)
}

// initLogger builds the process logger and installs it as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initTracing installs the tracer provider and W3C trace-context propagation
// for the request spans.
func initTracing() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// initDatabase opens the connection pool and waits for the worker to finish
// migrating. The API never migrates; it only reads.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// waitForMigrations probes the schema until the worker's migrations have
// landed, so a fresh deployment can start both binaries in any order.
func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM sites LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// setupRouter wires the read-only API: postgres repositories behind the
// stats and duplicate services, assembled by the handler package.
func setupRouter(logger *slog.Logger, database *sql.DB) http.Handler {
	siteRepo := pgRepo.NewSiteRepo(database)
	articleRepo := pgRepo.NewArticleRepo(database)

	statsSvc := &stats.Service{
		SiteRepo:     siteRepo,
		ArticleRepo:  articleRepo,
		HistoryRepo:  pgRepo.NewHistoryRepo(database),
		SnapshotRepo: pgRepo.NewSnapshotRepo(database),
	}
	dedupSvc := &dedup.Service{ArticleRepo: articleRepo}

	return apihttp.NewRouter(apihttp.RouterConfig{
		DB:       database,
		Sites:    siteRepo,
		Articles: articleRepo,
		Stats:    statsSvc,
		Dedup:    dedupSvc,
		Version:  getVersion(),
		Logger:   logger,
	})
}

// getVersion returns the application version from the environment.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// runServer serves the API until SIGINT/SIGTERM, then drains in-flight
// requests for up to five seconds.
func runServer(logger *slog.Logger, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", serverAddr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
		return
	}
	logger.Info("server stopped")
}
