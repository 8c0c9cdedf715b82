package repository

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
)

// ArticleStats aggregates article counts for reporting.
type ArticleStats struct {
	Total      int64
	Active     int64
	Duplicates int64
	AvgQuality float64
}

type ArticleRepository interface {
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// FindByExternalID looks an article up by its upstream identity
	// (external_id, site_id). Returns (nil, nil) when no row matches:
	// absence is a normal branch of the upsert flow, not an error.
	FindByExternalID(ctx context.Context, externalID string, siteID int64) (*entity.Article, error)
	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	// TouchLastSeen bumps last_seen without touching any content column.
	TouchLastSeen(ctx context.Context, id int64, t time.Time) error
	// ListActiveExcludingSite returns active, non-duplicate articles from
	// every site except the given one, for cross-site duplicate detection.
	ListActiveExcludingSite(ctx context.Context, siteID int64) ([]*entity.Article, error)
	ListBySite(ctx context.Context, siteID int64, offset, limit int) ([]*entity.Article, error)
	CountBySite(ctx context.Context, siteID int64) (int64, error)
	Stats(ctx context.Context) (ArticleStats, error)
}
