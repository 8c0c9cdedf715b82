package postgres_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"newsharvest/internal/domain/entity"
	pg "newsharvest/internal/infra/adapter/persistence/postgres"
)

/* ─────────────────────────── 1. Create ─────────────────────────── */

func TestSnapshotRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := &entity.Snapshot{
		SiteID:           1,
		BatchID:          "0c9a4d62-4b6e-4c88-9f6e-1f2d3a4b5c6d",
		Endpoint:         "/api/v1/posts",
		ResponseStatus:   200,
		ResponseTimeMs:   350,
		RawData:          json.RawMessage(`{"posts":[]}`),
		ArticlesFound:    12,
		ArticlesValid:    11,
		DataQualityScore: 91.67,
		CreatedAt:        ts,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO collection_snapshots`)).
		WithArgs(
			int64(1), snap.BatchID, snap.Endpoint, 200, int64(350),
			[]byte(`{"posts":[]}`), 12, 11, 91.67, "", ts,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	repo := pg.NewSnapshotRepo(db)
	if err := repo.Create(context.Background(), snap); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if snap.ID != 5 {
		t.Fatalf("Create did not set ID: got %d", snap.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotRepo_Create_FailedFetch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := &entity.Snapshot{
		SiteID:         1,
		BatchID:        "0c9a4d62-4b6e-4c88-9f6e-1f2d3a4b5c6d",
		Endpoint:       "/api/v1/posts",
		ResponseStatus: 0,
		ResponseTimeMs: 120,
		ErrorMessage:   "fetch: connection refused",
		CreatedAt:      ts,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO collection_snapshots`)).
		WithArgs(
			int64(1), snap.BatchID, snap.Endpoint, 0, int64(120),
			[]byte(nil), 0, 0, 0.0, "fetch: connection refused", ts,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(6)))

	repo := pg.NewSnapshotRepo(db)
	if err := repo.Create(context.Background(), snap); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 2. AggregateSince ─────────────────────────── */

func TestSnapshotRepo_AggregateSince(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM collection_snapshots`).
		WithArgs(since, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"requests", "failures", "found", "valid", "avg_quality", "avg_ms",
		}).AddRow(int64(24), int64(2), int64(288), int64(270), 93.75, 410.5))

	repo := pg.NewSnapshotRepo(db)
	got, err := repo.AggregateSince(context.Background(), 1, since)
	if err != nil {
		t.Fatalf("AggregateSince err=%v", err)
	}
	if got.Requests != 24 || got.Failures != 2 || got.ArticlesFound != 288 {
		t.Fatalf("AggregateSince = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotRepo_AggregateSince_AllSites(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM collection_snapshots`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{
			"requests", "failures", "found", "valid", "avg_quality", "avg_ms",
		}).AddRow(int64(0), int64(0), int64(0), int64(0), 0.0, 0.0))

	repo := pg.NewSnapshotRepo(db)
	got, err := repo.AggregateSince(context.Background(), 0, since)
	if err != nil {
		t.Fatalf("AggregateSince err=%v", err)
	}
	if got.Requests != 0 {
		t.Fatalf("AggregateSince = %+v, want zero aggregate", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 3. Prune ─────────────────────────── */

func TestSnapshotRepo_Prune(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cutoff := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM collection_snapshots WHERE created_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 31))

	repo := pg.NewSnapshotRepo(db)
	got, err := repo.Prune(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Prune err=%v", err)
	}
	if got != 31 {
		t.Fatalf("Prune = %d rows, want 31", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
