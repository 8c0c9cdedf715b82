package repository

import (
	"context"

	"newsharvest/internal/domain/entity"
)

// TaxonomyRepository resolves author and category names to rows, creating
// them on first sight. Both lookups are scoped to a site.
type TaxonomyRepository interface {
	GetOrCreateAuthor(ctx context.Context, siteID int64, name string) (*entity.Author, error)
	GetOrCreateCategory(ctx context.Context, siteID int64, name string) (*entity.Category, error)
}
