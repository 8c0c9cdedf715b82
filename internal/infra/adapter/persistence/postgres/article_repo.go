package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/observability/metrics"
	"newsharvest/internal/repository"
)

// articleColumns is the canonical select list; scanArticle matches it.
const articleColumns = `
id, site_id, external_id, title, slug, author_id, category_id,
url, canonical_url, summary, content_excerpt, image_url,
published_at, word_count, reading_time, tags, quality_score,
is_active, is_duplicate, duplicate_of_id,
first_seen, last_seen, created_at, updated_at`

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

// scanArticle scans one row in articleColumns order, decoding the tags
// JSONB column.
func scanArticle(scan func(dest ...any) error) (*entity.Article, error) {
	var article entity.Article
	var tagsJSON []byte
	if err := scan(
		&article.ID, &article.SiteID, &article.ExternalID, &article.Title, &article.Slug,
		&article.AuthorID, &article.CategoryID,
		&article.URL, &article.CanonicalURL, &article.Summary, &article.ContentExcerpt, &article.ImageURL,
		&article.PublishedAt, &article.WordCount, &article.ReadingTime, &tagsJSON, &article.QualityScore,
		&article.IsActive, &article.IsDuplicate, &article.DuplicateOfID,
		&article.FirstSeen, &article.LastSeen, &article.CreatedAt, &article.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &article.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	return &article, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return json.Marshal(tags)
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, id)
	article, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) FindByExternalID(ctx context.Context, externalID string, siteID int64) (*entity.Article, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("find_article", time.Since(start)) }()
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE external_id = $1 AND site_id = $2
LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, externalID, siteID)
	article, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByExternalID: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_article", time.Since(start)) }()
	tagsJSON, err := marshalTags(article.Tags)
	if err != nil {
		return fmt.Errorf("Create: marshal tags: %w", err)
	}

	const query = `
INSERT INTO articles
       (site_id, external_id, title, slug, author_id, category_id,
        url, canonical_url, summary, content_excerpt, image_url,
        published_at, word_count, reading_time, tags, quality_score,
        is_active, is_duplicate, duplicate_of_id,
        first_seen, last_seen, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		article.SiteID, article.ExternalID, article.Title, article.Slug,
		article.AuthorID, article.CategoryID,
		article.URL, article.CanonicalURL, article.Summary, article.ContentExcerpt, article.ImageURL,
		article.PublishedAt, article.WordCount, article.ReadingTime, tagsJSON, article.QualityScore,
		article.IsActive, article.IsDuplicate, article.DuplicateOfID,
		article.FirstSeen, article.LastSeen, article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update_article", time.Since(start)) }()
	tagsJSON, err := marshalTags(article.Tags)
	if err != nil {
		return fmt.Errorf("Update: marshal tags: %w", err)
	}

	const query = `
UPDATE articles SET
       title           = $1,
       slug            = $2,
       author_id       = $3,
       category_id     = $4,
       url             = $5,
       canonical_url   = $6,
       summary         = $7,
       content_excerpt = $8,
       image_url       = $9,
       published_at    = $10,
       word_count      = $11,
       reading_time    = $12,
       tags            = $13,
       quality_score   = $14,
       is_active       = $15,
       is_duplicate    = $16,
       duplicate_of_id = $17,
       last_seen       = $18,
       updated_at      = $19
WHERE id = $20`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Slug, article.AuthorID, article.CategoryID,
		article.URL, article.CanonicalURL, article.Summary, article.ContentExcerpt, article.ImageURL,
		article.PublishedAt, article.WordCount, article.ReadingTime, tagsJSON, article.QualityScore,
		article.IsActive, article.IsDuplicate, article.DuplicateOfID,
		article.LastSeen, article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *ArticleRepo) TouchLastSeen(ctx context.Context, id int64, t time.Time) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("touch_last_seen", time.Since(start)) }()
	const query = `UPDATE articles SET last_seen = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchLastSeen: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) ListActiveExcludingSite(ctx context.Context, siteID int64) ([]*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE site_id <> $1
  AND is_active = TRUE
  AND is_duplicate = FALSE
ORDER BY published_at DESC`
	rows, err := repo.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("ListActiveExcludingSite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		article, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ListActiveExcludingSite: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) ListBySite(ctx context.Context, siteID int64, offset, limit int) ([]*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE site_id = $1
ORDER BY published_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, siteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListBySite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ListBySite: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) CountBySite(ctx context.Context, siteID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE site_id = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, siteID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountBySite: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) Stats(ctx context.Context) (repository.ArticleStats, error) {
	const query = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE is_active),
       COUNT(*) FILTER (WHERE is_duplicate),
       COALESCE(AVG(quality_score), 0)
FROM articles`
	var stats repository.ArticleStats
	err := repo.db.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.Active, &stats.Duplicates, &stats.AvgQuality,
	)
	if err != nil {
		return repository.ArticleStats{}, fmt.Errorf("Stats: %w", err)
	}
	return stats, nil
}
