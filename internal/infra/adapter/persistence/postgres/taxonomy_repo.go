package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

type TaxonomyRepo struct{ db *sql.DB }

func NewTaxonomyRepo(db *sql.DB) repository.TaxonomyRepository {
	return &TaxonomyRepo{db: db}
}

// GetOrCreateAuthor resolves an author name to its row, inserting on first
// sight. The upsert updates name to itself on conflict so RETURNING always
// yields the row in a single round trip.
func (repo *TaxonomyRepo) GetOrCreateAuthor(ctx context.Context, siteID int64, name string) (*entity.Author, error) {
	const query = `
INSERT INTO authors (site_id, name)
VALUES ($1, $2)
ON CONFLICT (site_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, site_id, name, created_at`
	var author entity.Author
	err := repo.db.QueryRowContext(ctx, query, siteID, name).Scan(
		&author.ID, &author.SiteID, &author.Name, &author.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateAuthor: %w", err)
	}
	return &author, nil
}

// GetOrCreateCategory resolves a category name to its row, inserting on
// first sight.
func (repo *TaxonomyRepo) GetOrCreateCategory(ctx context.Context, siteID int64, name string) (*entity.Category, error) {
	const query = `
INSERT INTO categories (site_id, name)
VALUES ($1, $2)
ON CONFLICT (site_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, site_id, name, created_at`
	var category entity.Category
	err := repo.db.QueryRowContext(ctx, query, siteID, name).Scan(
		&category.ID, &category.SiteID, &category.Name, &category.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateCategory: %w", err)
	}
	return &category, nil
}
