// Package stats assembles collection health reports for the HTTP API.
package stats

import (
	"context"
	"fmt"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

// DefaultWindow is the reporting period used when the caller does not
// supply one.
const DefaultWindow = 24 * time.Hour

// SiteReport summarizes one site's state over the reporting window.
type SiteReport struct {
	Site         *entity.Site
	Articles     int64
	Collection   repository.CollectionAggregate
	LastSnapshot *entity.Snapshot
}

// Report covers the whole catalog: global article counts, recent field
// churn, and a per-site breakdown.
type Report struct {
	GeneratedAt  time.Time
	Window       time.Duration
	Articles     repository.ArticleStats
	FieldChanges int64
	Sites        []SiteReport
}

// Service aggregates per-site and global collection statistics.
type Service struct {
	SiteRepo     repository.SiteRepository
	ArticleRepo  repository.ArticleRepository
	HistoryRepo  repository.HistoryRepository
	SnapshotRepo repository.SnapshotRepository
}

// Overview builds a report for the given window. A window of zero or below
// selects DefaultWindow. Sites appear in repository order, inactive ones
// included, so a deactivated site stays visible in reports.
func (s *Service) Overview(ctx context.Context, window time.Duration) (*Report, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	now := time.Now().UTC()
	since := now.Add(-window)

	articles, err := s.ArticleRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("article stats: %w", err)
	}
	changes, err := s.HistoryRepo.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count field changes: %w", err)
	}
	sites, err := s.SiteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	report := &Report{
		GeneratedAt:  now,
		Window:       window,
		Articles:     articles,
		FieldChanges: changes,
		Sites:        make([]SiteReport, 0, len(sites)),
	}
	for _, site := range sites {
		count, err := s.ArticleRepo.CountBySite(ctx, site.ID)
		if err != nil {
			return nil, fmt.Errorf("count articles for %s: %w", site.Slug, err)
		}
		aggregate, err := s.SnapshotRepo.AggregateSince(ctx, site.ID, since)
		if err != nil {
			return nil, fmt.Errorf("aggregate snapshots for %s: %w", site.Slug, err)
		}
		recent, err := s.SnapshotRepo.ListBySite(ctx, site.ID, 1)
		if err != nil {
			return nil, fmt.Errorf("last snapshot for %s: %w", site.Slug, err)
		}

		entry := SiteReport{Site: site, Articles: count, Collection: aggregate}
		if len(recent) > 0 {
			entry.LastSnapshot = recent[0]
		}
		report.Sites = append(report.Sites, entry)
	}
	return report, nil
}
