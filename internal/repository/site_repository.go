package repository

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
)

type SiteRepository interface {
	Get(ctx context.Context, id int64) (*entity.Site, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Site, error)
	List(ctx context.Context) ([]*entity.Site, error)
	ListActive(ctx context.Context) ([]*entity.Site, error)
	Create(ctx context.Context, site *entity.Site) error
	Update(ctx context.Context, site *entity.Site) error
	// TouchCollectedAt marks a successful run: bumps last_collected_at and
	// resets the consecutive error count.
	TouchCollectedAt(ctx context.Context, id int64, t time.Time) error
	// IncrementErrorCount marks a failed run and returns the new count.
	IncrementErrorCount(ctx context.Context, id int64) (int, error)
}
