package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newsharvest/internal/pkg/config"
)

// Config holds the operational settings of the collection worker: the cron
// schedule driving cycles, the per-cycle timeout, the listen ports, the site
// catalog location and the snapshot retention window.
//
// Values come from the environment via LoadFromEnv with fail-open fallback,
// so a worker with a broken environment still boots on defaults.
type Config struct {
	// CronSchedule is the five-field cron expression that triggers
	// collection cycles. Default: "0 */6 * * *" (every six hours).
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// RunAtStart runs one collection cycle immediately at boot, before the
	// cron schedule takes over.
	RunAtStart bool

	// RunTimeout bounds one full collection cycle. Range: 1m-4h.
	RunTimeout time.Duration

	// HealthPort serves /health and /health/ready. Range: 1024-65535.
	HealthPort int

	// MetricsPort serves the Prometheus /metrics endpoint.
	MetricsPort int

	// CatalogPath is the YAML site catalog synced into the database at boot.
	CatalogPath string

	// SnapshotRetention is how long raw collection snapshots are kept before
	// pruning. Zero disables pruning. Range when set: 24h-8760h.
	SnapshotRetention time.Duration

	// ContentFetchEnabled toggles the article page fetch that fills short
	// excerpts with readable text.
	ContentFetchEnabled bool

	// ContentFetchParallelism caps concurrent article page fetches per run.
	// Range: 1-16.
	ContentFetchParallelism int
}

// DefaultConfig returns the production defaults: collection every six hours
// in UTC, 30 minute cycle timeout, 90 days of snapshot retention.
func DefaultConfig() Config {
	return Config{
		CronSchedule:            "0 */6 * * *",
		Timezone:                "UTC",
		RunAtStart:              false,
		RunTimeout:              30 * time.Minute,
		HealthPort:              8081,
		MetricsPort:             9090,
		CatalogPath:             "config/sites.yaml",
		SnapshotRetention:       90 * 24 * time.Hour,
		ContentFetchEnabled:     true,
		ContentFetchParallelism: 4,
	}
}

// Validate checks every field and reports all violations together.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.CatalogPath == "" {
		errs = append(errs, fmt.Errorf("catalog path: cannot be empty"))
	}
	if c.SnapshotRetention != 0 {
		if err := config.ValidateDuration(c.SnapshotRetention, 24*time.Hour, 365*24*time.Hour); err != nil {
			errs = append(errs, fmt.Errorf("snapshot retention: %w", err))
		}
	}
	if err := config.ValidateIntRange(c.ContentFetchParallelism, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("content fetch parallelism: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadFromEnv loads the worker configuration from the environment. Every
// rejected value falls back to its default with a warning and a metrics
// bump; the returned configuration is always valid.
//
// Environment variables:
//
//	COLLECT_CRON               cron expression (default "0 */6 * * *")
//	WORKER_TIMEZONE            IANA timezone (default "UTC")
//	RUN_AT_START               bool, collect once at boot (default false)
//	RUN_TIMEOUT                duration, 1m-4h (default 30m)
//	WORKER_HEALTH_PORT         int, 1024-65535 (default 8081)
//	METRICS_PORT               int, 1024-65535 (default 9090)
//	SITE_CATALOG               path to the site catalog YAML
//	SNAPSHOT_RETENTION         duration, 24h-8760h (default 2160h)
//	CONTENT_FETCH_ENABLED      bool (default true)
//	CONTENT_FETCH_PARALLELISM  int, 1-16 (default 4)
func LoadFromEnv(logger *slog.Logger, metrics *Metrics) *Config {
	cfg := DefaultConfig()
	anyFallback := false

	observe := func(field string, result config.ConfigLoadResult) config.ConfigLoadResult {
		if result.FallbackApplied {
			anyFallback = true
			metrics.Observe(field, result)
			for _, warning := range result.Warnings {
				logger.Warn("configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	result := observe("cron_schedule",
		config.LoadEnvWithFallback("COLLECT_CRON", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.CronSchedule = result.Value.(string)

	result = observe("timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.Timezone = result.Value.(string)

	result = observe("run_at_start",
		config.LoadEnvBool("RUN_AT_START", cfg.RunAtStart))
	cfg.RunAtStart = result.Value.(bool)

	result = observe("run_timeout",
		config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Minute, 4*time.Hour)
		}))
	cfg.RunTimeout = result.Value.(time.Duration)

	result = observe("health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.HealthPort = result.Value.(int)

	result = observe("metrics_port",
		config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.MetricsPort = result.Value.(int)

	cfg.CatalogPath = config.LoadEnvString("SITE_CATALOG", cfg.CatalogPath)

	result = observe("snapshot_retention",
		config.LoadEnvDuration("SNAPSHOT_RETENTION", cfg.SnapshotRetention, func(d time.Duration) error {
			return config.ValidateDuration(d, 24*time.Hour, 365*24*time.Hour)
		}))
	cfg.SnapshotRetention = result.Value.(time.Duration)

	result = observe("content_fetch_enabled",
		config.LoadEnvBool("CONTENT_FETCH_ENABLED", cfg.ContentFetchEnabled))
	cfg.ContentFetchEnabled = result.Value.(bool)

	result = observe("content_fetch_parallelism",
		config.LoadEnvInt("CONTENT_FETCH_PARALLELISM", cfg.ContentFetchParallelism, func(v int) error {
			return config.ValidateIntRange(v, 1, 16)
		}))
	cfg.ContentFetchParallelism = result.Value.(int)

	metrics.SetFallbackActive(anyFallback)
	metrics.RecordLoadTimestamp()

	return &cfg
}
