package repository

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
)

type HistoryRepository interface {
	// CreateBatch persists all field changes of one article update in a
	// single statement. A change row is written for every changed field,
	// significant or not.
	CreateBatch(ctx context.Context, changes []*entity.ArticleHistory) error
	ListByArticle(ctx context.Context, articleID int64, limit int) ([]*entity.ArticleHistory, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
