package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

const siteColumns = `
id, name, slug, base_url, endpoints, fallback_category, language,
rate_limit_per_hour, request_timeout_seconds, is_active, error_count,
last_collected_at, created_at, updated_at`

type SiteRepo struct{ db *sql.DB }

func NewSiteRepo(db *sql.DB) repository.SiteRepository {
	return &SiteRepo{db: db}
}

// scanSite scans one row in siteColumns order, decoding the endpoints JSONB
// column and the timeout stored as whole seconds.
func scanSite(scan func(dest ...any) error) (*entity.Site, error) {
	var site entity.Site
	var endpointsJSON []byte
	var timeoutSeconds int64
	if err := scan(
		&site.ID, &site.Name, &site.Slug, &site.BaseURL, &endpointsJSON,
		&site.FallbackCategory, &site.Language,
		&site.RateLimitPerHour, &timeoutSeconds, &site.IsActive, &site.ErrorCount,
		&site.LastCollectedAt, &site.CreatedAt, &site.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(endpointsJSON) > 0 {
		if err := json.Unmarshal(endpointsJSON, &site.Endpoints); err != nil {
			return nil, fmt.Errorf("unmarshal endpoints: %w", err)
		}
	}
	site.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	return &site, nil
}

func (repo *SiteRepo) Get(ctx context.Context, id int64) (*entity.Site, error) {
	query := `
SELECT ` + siteColumns + `
FROM sites
WHERE id = $1
LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, id)
	site, err := scanSite(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return site, nil
}

func (repo *SiteRepo) GetBySlug(ctx context.Context, slug string) (*entity.Site, error) {
	query := `
SELECT ` + siteColumns + `
FROM sites
WHERE slug = $1
LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, slug)
	site, err := scanSite(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return site, nil
}

func (repo *SiteRepo) List(ctx context.Context) ([]*entity.Site, error) {
	query := `
SELECT ` + siteColumns + `
FROM sites
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := make([]*entity.Site, 0, 20)
	for rows.Next() {
		site, err := scanSite(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (repo *SiteRepo) ListActive(ctx context.Context) ([]*entity.Site, error) {
	query := `
SELECT ` + siteColumns + `
FROM sites
WHERE is_active = TRUE
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sites := make([]*entity.Site, 0, 20)
	for rows.Next() {
		site, err := scanSite(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ListActive: Scan: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (repo *SiteRepo) Create(ctx context.Context, site *entity.Site) error {
	endpointsJSON, err := json.Marshal(site.Endpoints)
	if err != nil {
		return fmt.Errorf("Create: marshal endpoints: %w", err)
	}

	const query = `
INSERT INTO sites
       (name, slug, base_url, endpoints, fallback_category, language,
        rate_limit_per_hour, request_timeout_seconds, is_active, error_count,
        last_collected_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		site.Name, site.Slug, site.BaseURL, endpointsJSON,
		site.FallbackCategory, site.Language,
		site.RateLimitPerHour, int64(site.RequestTimeout/time.Second),
		site.IsActive, site.ErrorCount,
		site.LastCollectedAt, site.CreatedAt, site.UpdatedAt,
	).Scan(&site.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SiteRepo) Update(ctx context.Context, site *entity.Site) error {
	endpointsJSON, err := json.Marshal(site.Endpoints)
	if err != nil {
		return fmt.Errorf("Update: marshal endpoints: %w", err)
	}

	const query = `
UPDATE sites SET
       name                    = $1,
       slug                    = $2,
       base_url                = $3,
       endpoints               = $4,
       fallback_category       = $5,
       language                = $6,
       rate_limit_per_hour     = $7,
       request_timeout_seconds = $8,
       is_active               = $9,
       error_count             = $10,
       last_collected_at       = $11,
       updated_at              = $12
WHERE id = $13`
	res, err := repo.db.ExecContext(ctx, query,
		site.Name, site.Slug, site.BaseURL, endpointsJSON,
		site.FallbackCategory, site.Language,
		site.RateLimitPerHour, int64(site.RequestTimeout/time.Second),
		site.IsActive, site.ErrorCount,
		site.LastCollectedAt, site.UpdatedAt, site.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *SiteRepo) TouchCollectedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `
UPDATE sites SET
       last_collected_at = $1,
       error_count       = 0,
       updated_at        = $1
WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchCollectedAt: %w", err)
	}
	return nil
}

func (repo *SiteRepo) IncrementErrorCount(ctx context.Context, id int64) (int, error) {
	const query = `
UPDATE sites SET
       error_count = error_count + 1,
       updated_at  = NOW()
WHERE id = $1
RETURNING error_count`
	var count int
	if err := repo.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("IncrementErrorCount: %w", err)
	}
	return count, nil
}
