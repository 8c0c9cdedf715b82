package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

type HistoryRepo struct{ db *sql.DB }

func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: db}
}

// CreateBatch inserts all field changes of one update in a single statement.
// The placeholder list is built per row; created_at comes from the table
// default so every row of the batch shares one timestamp source.
func (repo *HistoryRepo) CreateBatch(ctx context.Context, changes []*entity.ArticleHistory) error {
	if len(changes) == 0 {
		return nil
	}

	const fieldsPerRow = 7
	valueClauses := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)*fieldsPerRow)
	for i, change := range changes {
		base := i * fieldsPerRow
		valueClauses = append(valueClauses, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args,
			change.ArticleID, change.FieldName, change.OldValue, change.NewValue,
			change.ChangeType, change.ChangeSource, change.IsSignificant,
		)
	}

	query := `
INSERT INTO article_history
       (article_id, field_name, old_value, new_value, change_type, change_source, is_significant)
VALUES ` + strings.Join(valueClauses, ", ")

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("CreateBatch: %w", err)
	}
	return nil
}

func (repo *HistoryRepo) ListByArticle(ctx context.Context, articleID int64, limit int) ([]*entity.ArticleHistory, error) {
	const query = `
SELECT id, article_id, field_name, old_value, new_value,
       change_type, change_source, is_significant, created_at
FROM article_history
WHERE article_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, articleID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	changes := make([]*entity.ArticleHistory, 0, limit)
	for rows.Next() {
		var change entity.ArticleHistory
		if err := rows.Scan(
			&change.ID, &change.ArticleID, &change.FieldName, &change.OldValue, &change.NewValue,
			&change.ChangeType, &change.ChangeSource, &change.IsSignificant, &change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		changes = append(changes, &change)
	}
	return changes, rows.Err()
}

func (repo *HistoryRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM article_history WHERE created_at >= $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountSince: %w", err)
	}
	return count, nil
}
