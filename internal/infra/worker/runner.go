// Package worker schedules and supervises collection cycles: cron-driven
// runs with a per-cycle timeout, snapshot retention pruning, health and
// metrics endpoints, and graceful shutdown between cycles.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"

	"newsharvest/internal/observability/slo"
	"newsharvest/internal/observability/tracing"
	"newsharvest/internal/repository"
	"newsharvest/internal/usecase/collect"
)

// Collector runs one full collection cycle across all active sites.
type Collector interface {
	CollectAll(ctx context.Context) (*collect.RunStats, error)
}

// Runner drives the collection schedule. It triggers cycles on the
// configured cron expression, bounds each with the run timeout, recomputes
// the SLO gauges from the cycle stats and prunes expired snapshots after
// successful cycles.
type Runner struct {
	cfg       *Config
	collector Collector
	snapshots repository.SnapshotRepository
	health    *HealthServer
	metrics   *Metrics
	logger    *slog.Logger

	// runMu serializes cycles: a tick that fires while the previous cycle
	// is still in flight is skipped, not queued.
	runMu sync.Mutex
}

// NewRunner creates a Runner. health may be nil when no readiness probe is
// wanted.
func NewRunner(
	cfg *Config,
	collector Collector,
	snapshots repository.SnapshotRepository,
	health *HealthServer,
	metrics *Metrics,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		collector: collector,
		snapshots: snapshots,
		health:    health,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules collection cycles and blocks until ctx is canceled.
// Shutdown is honored between cycles: the cron stops scheduling, a cycle in
// flight gets up to the run timeout to finish, readiness drops immediately.
func (r *Runner) Start(ctx context.Context) error {
	loc, err := time.LoadLocation(r.cfg.Timezone)
	if err != nil {
		r.logger.Warn("invalid timezone, falling back to UTC",
			slog.String("timezone", r.cfg.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(r.cfg.CronSchedule, func() {
		if ctx.Err() != nil {
			return
		}
		r.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule collection: %w", err)
	}

	if r.cfg.RunAtStart {
		r.RunOnce(ctx)
	}

	c.Start()
	if r.health != nil {
		r.health.SetReady(true)
	}
	r.logger.Info("collection worker started",
		slog.String("schedule", r.cfg.CronSchedule),
		slog.String("timezone", loc.String()))

	<-ctx.Done()

	if r.health != nil {
		r.health.SetReady(false)
	}
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(r.cfg.RunTimeout):
		r.logger.Warn("shutdown timed out waiting for running cycle")
	}
	r.logger.Info("collection worker stopped")
	return nil
}

// RunOnce executes a single collection cycle under the run timeout. A cycle
// already in flight makes this a no-op recorded as a skipped cycle.
func (r *Runner) RunOnce(ctx context.Context) {
	if !r.runMu.TryLock() {
		r.logger.Warn("previous collection cycle still running, skipping")
		r.metrics.RecordCycle("skipped")
		return
	}
	defer r.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	runCtx, span := tracing.GetTracer().Start(runCtx, "collect.cycle")
	defer span.End()

	r.logger.Info("collection cycle starting")
	r.metrics.RecordCycle("started")
	start := time.Now()

	stats, err := r.collector.CollectAll(runCtx)
	duration := time.Since(start)
	r.metrics.RecordCycleDuration(duration.Seconds())

	if err != nil {
		r.metrics.RecordCycle("failure")
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
		r.logger.Error("collection cycle failed",
			slog.Any("error", err),
			slog.Duration("duration", duration))
		return
	}

	r.metrics.RecordCycle("success")
	r.metrics.RecordSitesProcessed(stats.Sites)
	r.metrics.RecordLastSuccess()
	r.updateObjectives(stats)
	span.SetAttributes(
		attribute.Int("sites", stats.Sites),
		attribute.Int64("runs", stats.Runs),
		attribute.Int64("failed_runs", stats.FailedRuns),
	)

	r.pruneSnapshots(runCtx)
}

// updateObjectives recomputes the SLO gauges from a finished cycle. Empty
// cycles count as fully meeting the objectives.
func (r *Runner) updateObjectives(stats *collect.RunStats) {
	success := 1.0
	if stats.Runs > 0 {
		success = float64(stats.Runs-stats.FailedRuns) / float64(stats.Runs)
	}
	quality := 1.0
	if stats.Found > 0 {
		quality = float64(stats.Found-stats.Skipped) / float64(stats.Found)
	}

	slo.UpdateCollectionSuccess(success)
	slo.UpdateDataQuality(quality)
	slo.UpdateCycleDuration(stats.Duration.Seconds())
}

// pruneSnapshots deletes snapshots older than the retention window. Pruning
// runs on its own timeout so a cycle that exhausted the run budget still
// enforces retention, and failures never fail the cycle.
func (r *Runner) pruneSnapshots(ctx context.Context) {
	if r.cfg.SnapshotRetention <= 0 {
		return
	}

	pruneCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-r.cfg.SnapshotRetention)
	pruned, err := r.snapshots.Prune(pruneCtx, cutoff)
	if err != nil {
		r.logger.Error("snapshot pruning failed", slog.Any("error", err))
		return
	}
	if pruned > 0 {
		r.metrics.RecordSnapshotsPruned(pruned)
		r.logger.Info("snapshots pruned",
			slog.Int64("removed", pruned),
			slog.Time("cutoff", cutoff))
	}
}
