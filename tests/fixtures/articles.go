// Package fixtures provides reusable test data generators. It builds
// canonical articles and raw listing records so test suites agree on what a
// realistic upstream payload and a realistic stored article look like.
package fixtures

import (
	"encoding/json"
	"fmt"
	"time"

	"newsharvest/internal/domain/entity"
)

// baseTime anchors all generated timestamps so fixtures compare stably.
var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// ArticleOption mutates a generated article.
type ArticleOption func(*entity.Article)

// WithSite sets the owning site id.
func WithSite(siteID int64) ArticleOption {
	return func(a *entity.Article) { a.SiteID = siteID }
}

// WithTitle sets the title.
func WithTitle(title string) ArticleOption {
	return func(a *entity.Article) { a.Title = title }
}

// WithExternalID sets the upstream identifier.
func WithExternalID(id string) ArticleOption {
	return func(a *entity.Article) { a.ExternalID = id }
}

// WithQuality sets the completeness score.
func WithQuality(score float64) ArticleOption {
	return func(a *entity.Article) { a.QualityScore = score }
}

// AsDuplicate marks the article as a duplicate of originalID.
func AsDuplicate(originalID int64) ArticleOption {
	return func(a *entity.Article) { a.MarkAsDuplicate(originalID) }
}

// Inactive deactivates the article without marking it duplicate.
func Inactive() ArticleOption {
	return func(a *entity.Article) { a.IsActive = false }
}

// Article generates a fully populated active article. Fields derive from the
// sequence number n so distinct n yield distinct identities on one site.
//
// Example:
//
//	a := fixtures.Article(1, fixtures.WithSite(2), fixtures.WithQuality(85))
func Article(n int64, opts ...ArticleOption) *entity.Article {
	authorID := n
	categoryID := n
	a := &entity.Article{
		ID:           n,
		SiteID:       1,
		ExternalID:   fmt.Sprintf("ext-%d", n),
		Title:        fmt.Sprintf("Generated Article %d", n),
		Slug:         fmt.Sprintf("generated-article-%d", n),
		AuthorID:     &authorID,
		CategoryID:   &categoryID,
		URL:          fmt.Sprintf("https://example.com/articles/%d", n),
		Summary:      fmt.Sprintf("Summary for generated article %d with enough length to survive cleaning.", n),
		ImageURL:     fmt.Sprintf("https://example.com/images/%d.jpg", n),
		PublishedAt:  baseTime.Add(-time.Duration(n) * time.Hour),
		WordCount:    500,
		ReadingTime:  entity.EstimateReadingTime(500),
		Tags:         []string{"tecnologia"},
		QualityScore: 90,
		IsActive:     true,
		FirstSeen:    baseTime.Add(-time.Duration(n) * 24 * time.Hour),
		LastSeen:     baseTime,
		CreatedAt:    baseTime.Add(-time.Duration(n) * 24 * time.Hour),
		UpdatedAt:    baseTime,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RawOption mutates a generated raw listing record.
type RawOption func(map[string]any)

// RawField sets one key of the raw record. A nil value deletes the key.
func RawField(key string, value any) RawOption {
	return func(item map[string]any) {
		if value == nil {
			delete(item, key)
			return
		}
		item[key] = value
	}
}

// Rendered wraps a value the way WordPress renders rich fields.
func Rendered(value string) map[string]any {
	return map[string]any{"rendered": value}
}

// RawItem generates one upstream listing record in the flat shape most
// endpoints use. Options override or remove individual keys to model the
// inconsistent payloads the normalizer has to tolerate.
//
// Example:
//
//	item := fixtures.RawItem(1, fixtures.RawField("title", fixtures.Rendered("Hello")))
func RawItem(n int, opts ...RawOption) map[string]any {
	item := map[string]any{
		"id":           fmt.Sprintf("%d", 1000+n),
		"title":        fmt.Sprintf("Raw Item %d", n),
		"author":       map[string]any{"name": fmt.Sprintf("Author %d", n)},
		"category":     map[string]any{"name": "Tecnologia"},
		"url":          fmt.Sprintf("https://example.com/raw/%d", n),
		"summary":      fmt.Sprintf("Raw summary number %d, long enough to be kept after cleaning.", n),
		"image":        fmt.Sprintf("https://example.com/raw/%d/cover.jpg", n),
		"published_at": baseTime.Add(-time.Duration(n) * time.Hour).Format(time.RFC3339),
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// ListingPayload encodes items as the `{"posts": [...]}` document the
// response locator resolves first. It panics on unencodable items; fixtures
// only carry JSON-safe values.
func ListingPayload(items ...map[string]any) []byte {
	body, err := json.Marshal(map[string]any{"posts": items})
	if err != nil {
		panic(err)
	}
	return body
}
