package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"newsharvest/internal/domain/entity"
	pg "newsharvest/internal/infra/adapter/persistence/postgres"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var siteTestColumns = []string{
	"id", "name", "slug", "base_url", "endpoints", "fallback_category", "language",
	"rate_limit_per_hour", "request_timeout_seconds", "is_active", "error_count",
	"last_collected_at", "created_at", "updated_at",
}

func siteFixture() *entity.Site {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	collected := ts.Add(-time.Hour)
	return &entity.Site{
		ID:      1,
		Name:    "TecMundo",
		Slug:    "tecmundo",
		BaseURL: "https://www.tecmundo.com.br",
		Endpoints: []entity.Endpoint{
			{Name: "latest", Path: "/api/v1/posts", Kind: "json"},
		},
		FallbackCategory: "Tecnologia",
		Language:         "pt-BR",
		RateLimitPerHour: 60,
		RequestTimeout:   30 * time.Second,
		IsActive:         true,
		ErrorCount:       0,
		LastCollectedAt:  &collected,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
}

func siteRows(s *entity.Site) *sqlmock.Rows {
	return sqlmock.NewRows(siteTestColumns).AddRow(
		s.ID, s.Name, s.Slug, s.BaseURL,
		[]byte(`[{"name":"latest","path":"/api/v1/posts","kind":"json"}]`),
		s.FallbackCategory, s.Language,
		s.RateLimitPerHour, int64(30), s.IsActive, s.ErrorCount,
		s.LastCollectedAt, s.CreatedAt, s.UpdatedAt,
	)
}

/* ─────────────────────────── 1. Get / GetBySlug ─────────────────────────── */

func TestSiteRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := siteFixture()
	mock.ExpectQuery(`FROM sites`).
		WithArgs(int64(1)).
		WillReturnRows(siteRows(want))

	repo := pg.NewSiteRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSiteRepo_GetBySlug_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM sites`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(siteTestColumns))

	repo := pg.NewSiteRepo(db)
	got, err := repo.GetBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetBySlug err=%v", err)
	}
	if got != nil {
		t.Fatalf("GetBySlug = %+v, want nil", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 2. ListActive ─────────────────────────── */

func TestSiteRepo_ListActive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`WHERE is_active = TRUE`).
		WillReturnRows(siteRows(siteFixture()))

	repo := pg.NewSiteRepo(db)
	got, err := repo.ListActive(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("ListActive err=%v len=%d", err, len(got))
	}
	if got[0].Endpoints[0].Path != "/api/v1/posts" {
		t.Fatalf("endpoints not decoded: %+v", got[0].Endpoints)
	}
	if got[0].RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v, want 30s", got[0].RequestTimeout)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 3. Create ─────────────────────────── */

func TestSiteRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	s := siteFixture()
	s.ID = 0

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sites`)).
		WithArgs(
			s.Name, s.Slug, s.BaseURL,
			[]byte(`[{"name":"latest","path":"/api/v1/posts","kind":"json"}]`),
			s.FallbackCategory, s.Language,
			s.RateLimitPerHour, int64(30), s.IsActive, s.ErrorCount,
			s.LastCollectedAt, s.CreatedAt, s.UpdatedAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	repo := pg.NewSiteRepo(db)
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if s.ID != 1 {
		t.Fatalf("Create did not set ID: got %d", s.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 4. TouchCollectedAt ─────────────────────────── */

func TestSiteRepo_TouchCollectedAt(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE sites`).
		WithArgs(at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewSiteRepo(db)
	if err := repo.TouchCollectedAt(context.Background(), 1, at); err != nil {
		t.Fatalf("TouchCollectedAt err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 5. IncrementErrorCount ─────────────────────────── */

func TestSiteRepo_IncrementErrorCount(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`UPDATE sites`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"error_count"}).AddRow(3))

	repo := pg.NewSiteRepo(db)
	got, err := repo.IncrementErrorCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("IncrementErrorCount err=%v", err)
	}
	if got != 3 {
		t.Fatalf("IncrementErrorCount = %d, want 3", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
