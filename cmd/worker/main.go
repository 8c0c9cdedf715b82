package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"newsharvest/internal/domain/entity"
	pgRepo "newsharvest/internal/infra/adapter/persistence/postgres"
	"newsharvest/internal/infra/catalog"
	"newsharvest/internal/infra/db"
	"newsharvest/internal/infra/fetcher"
	workerPkg "newsharvest/internal/infra/worker"
	"newsharvest/internal/observability/logging"
	"newsharvest/internal/repository"
	"newsharvest/internal/usecase/collect"
)

func main() {
	logger := initLogger()
	initTracing()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewMetrics()
	workerConfig := workerPkg.LoadFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Bool("run_at_start", workerConfig.RunAtStart),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	siteRepo := pgRepo.NewSiteRepo(database)
	syncCatalog(ctx, logger, siteRepo, workerConfig.CatalogPath)

	svc := setupCollectService(logger, database, workerConfig)

	workerPkg.StartMetricsServer(ctx, fmt.Sprintf(":%d", workerConfig.MetricsPort), logger)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runner := workerPkg.NewRunner(
		workerConfig,
		&svc,
		pgRepo.NewSnapshotRepo(database),
		healthServer,
		workerMetrics,
		logger,
	)
	if err := runner.Start(ctx); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger builds the process logger and installs it as the slog default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initTracing installs the tracer provider and W3C trace-context propagation
// for the collection spans.
func initTracing() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// initDatabase opens the connection pool and applies pending migrations.
// The worker owns the schema; the API only waits for it.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// syncCatalog loads the YAML site catalog and reconciles it into the sites
// table. A missing or invalid catalog is fatal: a worker without sites has
// nothing to collect.
func syncCatalog(ctx context.Context, logger *slog.Logger, sites repository.SiteRepository, path string) {
	seeds, err := catalog.Load(path)
	if err != nil {
		logger.Error("failed to load site catalog",
			slog.String("path", path),
			slog.Any("error", err))
		os.Exit(1)
	}

	result, err := catalog.Sync(ctx, sites, seeds)
	if err != nil {
		logger.Error("failed to sync site catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("site catalog synced",
		slog.Int("sites", len(seeds)),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged))
}

// setupCollectService wires the collection service: postgres repositories,
// one fetcher per endpoint kind and the optional excerpt enhancement pass.
func setupCollectService(logger *slog.Logger, database *sql.DB, workerConfig *workerPkg.Config) collect.Service {
	clientConfig, err := fetcher.LoadClientConfigFromEnv()
	if err != nil {
		logger.Warn("invalid fetcher configuration, using defaults", slog.Any("error", err))
		clientConfig = fetcher.DefaultClientConfig()
	}

	fetchers := map[string]collect.EndpointFetcher{
		entity.EndpointKindJSON: fetcher.NewJSONFetcher(clientConfig),
		entity.EndpointKindRSS:  fetcher.NewRSSFetcher(clientConfig),
	}

	contentConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid content fetch configuration, enhancement disabled", slog.Any("error", err))
		contentConfig = fetcher.DefaultConfig()
		contentConfig.Enabled = false
	}

	var contentFetcher collect.ContentFetcher
	if workerConfig.ContentFetchEnabled && contentConfig.Enabled {
		contentFetcher = fetcher.NewReadabilityFetcher(contentConfig)
		logger.Info("content enhancement enabled",
			slog.Int("threshold", contentConfig.Threshold),
			slog.Int("parallelism", workerConfig.ContentFetchParallelism),
			slog.Duration("timeout", contentConfig.Timeout))
	} else {
		logger.Info("content enhancement disabled")
	}

	return collect.NewService(
		pgRepo.NewSiteRepo(database),
		pgRepo.NewArticleRepo(database),
		pgRepo.NewHistoryRepo(database),
		pgRepo.NewSnapshotRepo(database),
		pgRepo.NewTaxonomyRepo(database),
		fetchers,
		contentFetcher,
		collect.ContentFetchConfig{
			Parallelism: workerConfig.ContentFetchParallelism,
			Threshold:   contentConfig.Threshold,
		},
	)
}
