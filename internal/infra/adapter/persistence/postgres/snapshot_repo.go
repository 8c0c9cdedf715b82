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

type SnapshotRepo struct{ db *sql.DB }

func NewSnapshotRepo(db *sql.DB) repository.SnapshotRepository {
	return &SnapshotRepo{db: db}
}

func (repo *SnapshotRepo) Create(ctx context.Context, snapshot *entity.Snapshot) error {
	const query = `
INSERT INTO collection_snapshots
       (site_id, batch_id, endpoint, response_status, response_time_ms,
        raw_data, articles_found, articles_valid, data_quality_score,
        error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		snapshot.SiteID, snapshot.BatchID, snapshot.Endpoint,
		snapshot.ResponseStatus, snapshot.ResponseTimeMs,
		[]byte(snapshot.RawData), snapshot.ArticlesFound, snapshot.ArticlesValid,
		snapshot.DataQualityScore, snapshot.ErrorMessage, snapshot.CreatedAt,
	).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SnapshotRepo) ListBySite(ctx context.Context, siteID int64, limit int) ([]*entity.Snapshot, error) {
	const query = `
SELECT id, site_id, batch_id, endpoint, response_status, response_time_ms,
       raw_data, articles_found, articles_valid, data_quality_score,
       error_message, created_at
FROM collection_snapshots
WHERE site_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListBySite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshots := make([]*entity.Snapshot, 0, limit)
	for rows.Next() {
		var snapshot entity.Snapshot
		var rawData []byte
		if err := rows.Scan(
			&snapshot.ID, &snapshot.SiteID, &snapshot.BatchID, &snapshot.Endpoint,
			&snapshot.ResponseStatus, &snapshot.ResponseTimeMs,
			&rawData, &snapshot.ArticlesFound, &snapshot.ArticlesValid,
			&snapshot.DataQualityScore, &snapshot.ErrorMessage, &snapshot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListBySite: Scan: %w", err)
		}
		snapshot.RawData = json.RawMessage(rawData)
		snapshots = append(snapshots, &snapshot)
	}
	return snapshots, rows.Err()
}

func (repo *SnapshotRepo) AggregateSince(ctx context.Context, siteID int64, since time.Time) (repository.CollectionAggregate, error) {
	query := `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE response_status < 200 OR response_status >= 300),
       COALESCE(SUM(articles_found), 0),
       COALESCE(SUM(articles_valid), 0),
       COALESCE(AVG(data_quality_score), 0),
       COALESCE(AVG(response_time_ms), 0)
FROM collection_snapshots
WHERE created_at >= $1`
	args := []any{since}
	if siteID != 0 {
		query += ` AND site_id = $2`
		args = append(args, siteID)
	}

	var agg repository.CollectionAggregate
	err := repo.db.QueryRowContext(ctx, query, args...).Scan(
		&agg.Requests, &agg.Failures, &agg.ArticlesFound, &agg.ArticlesValid,
		&agg.AvgQuality, &agg.AvgResponseMs,
	)
	if err != nil {
		return repository.CollectionAggregate{}, fmt.Errorf("AggregateSince: %w", err)
	}
	return agg, nil
}

func (repo *SnapshotRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM collection_snapshots WHERE created_at < $1`
	res, err := repo.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("Prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Prune: RowsAffected: %w", err)
	}
	return n, nil
}
