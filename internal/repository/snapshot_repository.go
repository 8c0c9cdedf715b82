package repository

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
)

// CollectionAggregate summarizes snapshots over a period.
type CollectionAggregate struct {
	Requests      int64
	Failures      int64
	ArticlesFound int64
	ArticlesValid int64
	AvgQuality    float64
	AvgResponseMs float64
}

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.Snapshot) error
	ListBySite(ctx context.Context, siteID int64, limit int) ([]*entity.Snapshot, error)
	// AggregateSince reports collection totals for one site since a point
	// in time. A zero siteID aggregates across all sites.
	AggregateSince(ctx context.Context, siteID int64, since time.Time) (CollectionAggregate, error)
	// Prune deletes snapshots older than the cutoff and returns the number
	// of rows removed. Raw payloads make this table heavy; retention is
	// enforced by the worker.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
