package db

import (
	"database/sql"
)

// MigrateUp creates the collector schema. Statements are idempotent so the
// worker can run them on every start while waiting for no one.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sites (
    id                      BIGSERIAL PRIMARY KEY,
    name                    TEXT NOT NULL,
    slug                    TEXT NOT NULL UNIQUE,
    base_url                TEXT NOT NULL,
    endpoints               JSONB NOT NULL DEFAULT '[]',
    fallback_category       TEXT NOT NULL DEFAULT '',
    language                TEXT NOT NULL DEFAULT 'pt-BR',
    rate_limit_per_hour     INTEGER NOT NULL DEFAULT 60,
    request_timeout_seconds BIGINT NOT NULL DEFAULT 30,
    is_active               BOOLEAN NOT NULL DEFAULT TRUE,
    error_count             INTEGER NOT NULL DEFAULT 0,
    last_collected_at       TIMESTAMPTZ,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS authors (
    id         BIGSERIAL PRIMARY KEY,
    site_id    BIGINT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (site_id, name)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS categories (
    id         BIGSERIAL PRIMARY KEY,
    site_id    BIGINT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (site_id, name)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id              BIGSERIAL PRIMARY KEY,
    site_id         BIGINT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    external_id     TEXT NOT NULL,
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL DEFAULT '',
    author_id       BIGINT REFERENCES authors(id),
    category_id     BIGINT REFERENCES categories(id),
    url             TEXT NOT NULL DEFAULT '',
    canonical_url   TEXT NOT NULL DEFAULT '',
    summary         TEXT NOT NULL DEFAULT '',
    content_excerpt TEXT NOT NULL DEFAULT '',
    image_url       TEXT NOT NULL DEFAULT '',
    published_at    TIMESTAMPTZ NOT NULL,
    word_count      INTEGER NOT NULL DEFAULT 0,
    reading_time    INTEGER NOT NULL DEFAULT 0,
    tags            JSONB,
    quality_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    is_duplicate    BOOLEAN NOT NULL DEFAULT FALSE,
    duplicate_of_id BIGINT REFERENCES articles(id),
    first_seen      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (external_id, site_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_history (
    id             BIGSERIAL PRIMARY KEY,
    article_id     BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    field_name     TEXT NOT NULL,
    old_value      TEXT NOT NULL DEFAULT '',
    new_value      TEXT NOT NULL DEFAULT '',
    change_type    TEXT NOT NULL DEFAULT 'other',
    change_source  TEXT NOT NULL DEFAULT 'collection',
    is_significant BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS collection_snapshots (
    id                 BIGSERIAL PRIMARY KEY,
    site_id            BIGINT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
    batch_id           TEXT NOT NULL,
    endpoint           TEXT NOT NULL,
    response_status    INTEGER NOT NULL DEFAULT 0,
    response_time_ms   BIGINT NOT NULL DEFAULT 0,
    raw_data           JSONB,
    articles_found     INTEGER NOT NULL DEFAULT 0,
    articles_valid     INTEGER NOT NULL DEFAULT 0,
    data_quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    error_message      TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_site_id ON articles(site_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_last_seen ON articles(last_seen)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_active ON articles(is_active) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_history_article_id ON article_history(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON article_history(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_site_id ON collection_snapshots(site_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON collection_snapshots(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_batch_id ON collection_snapshots(batch_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the collector schema in dependency order.
// Use with caution: this deletes all collected data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS collection_snapshots`,
		`DROP TABLE IF EXISTS article_history`,
		`DROP TABLE IF EXISTS articles CASCADE`,
		`DROP TABLE IF EXISTS categories`,
		`DROP TABLE IF EXISTS authors`,
		`DROP TABLE IF EXISTS sites CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
