package entity

import "time"

// Author is a per-site author record, resolved by get-or-create during
// ingestion. Authors are never defaulted: a draft without an author keeps a
// null author reference.
type Author struct {
	ID        int64
	SiteID    int64
	Name      string
	CreatedAt time.Time
}

// Category is a per-site category record, resolved by get-or-create during
// ingestion. Unlike authors, drafts without a category fall back to the
// site's configured fallback category.
type Category struct {
	ID        int64
	SiteID    int64
	Name      string
	CreatedAt time.Time
}
