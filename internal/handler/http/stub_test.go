package http

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

// Stub repositories shared by the handler tests. Only the methods the
// read-only API reaches carry behavior; the rest just satisfy the
// interfaces.

type stubSiteRepo struct {
	sites     []*entity.Site
	listErr   error
	bySlugErr error
}

func (s *stubSiteRepo) List(context.Context) ([]*entity.Site, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.sites, nil
}

func (s *stubSiteRepo) GetBySlug(_ context.Context, slug string) (*entity.Site, error) {
	if s.bySlugErr != nil {
		return nil, s.bySlugErr
	}
	for _, site := range s.sites {
		if site.Slug == slug {
			return site, nil
		}
	}
	return nil, nil
}

func (s *stubSiteRepo) Get(context.Context, int64) (*entity.Site, error)         { return nil, nil }
func (s *stubSiteRepo) ListActive(context.Context) ([]*entity.Site, error)       { return nil, nil }
func (s *stubSiteRepo) Create(context.Context, *entity.Site) error               { return nil }
func (s *stubSiteRepo) Update(context.Context, *entity.Site) error               { return nil }
func (s *stubSiteRepo) TouchCollectedAt(context.Context, int64, time.Time) error { return nil }
func (s *stubSiteRepo) IncrementErrorCount(context.Context, int64) (int, error)  { return 0, nil }

type stubArticleRepo struct {
	stats    repository.ArticleStats
	statsErr error
	bySite   map[int64][]*entity.Article
	listErr  error
}

func (s *stubArticleRepo) Stats(context.Context) (repository.ArticleStats, error) {
	if s.statsErr != nil {
		return repository.ArticleStats{}, s.statsErr
	}
	return s.stats, nil
}

func (s *stubArticleRepo) CountBySite(_ context.Context, siteID int64) (int64, error) {
	return int64(len(s.bySite[siteID])), nil
}

func (s *stubArticleRepo) ListBySite(_ context.Context, siteID int64, offset, limit int) ([]*entity.Article, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	articles := s.bySite[siteID]
	if offset >= len(articles) {
		return nil, nil
	}
	end := offset + limit
	if end > len(articles) {
		end = len(articles)
	}
	return articles[offset:end], nil
}

func (s *stubArticleRepo) ListActiveExcludingSite(_ context.Context, siteID int64) ([]*entity.Article, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entity.Article
	for id, articles := range s.bySite {
		if id == siteID {
			continue
		}
		for _, article := range articles {
			if article.IsActive && !article.IsDuplicate {
				out = append(out, article)
			}
		}
	}
	return out, nil
}

func (s *stubArticleRepo) Get(context.Context, int64) (*entity.Article, error) { return nil, nil }
func (s *stubArticleRepo) FindByExternalID(context.Context, string, int64) (*entity.Article, error) {
	return nil, nil
}
func (s *stubArticleRepo) Create(context.Context, *entity.Article) error         { return nil }
func (s *stubArticleRepo) Update(context.Context, *entity.Article) error         { return nil }
func (s *stubArticleRepo) TouchLastSeen(context.Context, int64, time.Time) error { return nil }

type stubHistoryRepo struct {
	count int64
	err   error
}

func (s *stubHistoryRepo) CountSince(context.Context, time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}

func (s *stubHistoryRepo) CreateBatch(context.Context, []*entity.ArticleHistory) error { return nil }
func (s *stubHistoryRepo) ListByArticle(context.Context, int64, int) ([]*entity.ArticleHistory, error) {
	return nil, nil
}

type stubSnapshotRepo struct {
	aggregates map[int64]repository.CollectionAggregate
	recent     map[int64][]*entity.Snapshot
}

func (s *stubSnapshotRepo) AggregateSince(_ context.Context, siteID int64, _ time.Time) (repository.CollectionAggregate, error) {
	if s.aggregates == nil {
		return repository.CollectionAggregate{}, nil
	}
	return s.aggregates[siteID], nil
}

func (s *stubSnapshotRepo) ListBySite(_ context.Context, siteID int64, limit int) ([]*entity.Snapshot, error) {
	snapshots := s.recent[siteID]
	if len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (s *stubSnapshotRepo) Create(context.Context, *entity.Snapshot) error  { return nil }
func (s *stubSnapshotRepo) Prune(context.Context, time.Time) (int64, error) { return 0, nil }
