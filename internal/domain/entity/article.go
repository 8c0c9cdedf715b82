// Package entity defines the core domain entities and validation logic for the
// collector. It contains the fundamental business objects such as Article, Site
// and Snapshot, along with their validation rules and domain-specific errors.
package entity

import (
	"math"
	"time"
)

// Normalization limits. Values beyond these are truncated, never rejected.
const (
	// MaxTitleLength is the maximum stored title length.
	MaxTitleLength = 500

	// MaxSummaryLength is the maximum stored summary length.
	MaxSummaryLength = 1000

	// MinSummaryLength is the minimum useful summary length. Cleaned summaries
	// at or below this length carry no information and are discarded.
	MinSummaryLength = 10
)

// wordsPerMinute is the average reading speed used for reading time estimates.
const wordsPerMinute = 250

// Article represents a collected news article in canonical form.
// Articles are unique per (ExternalID, SiteID) and live across collection runs:
// FirstSeen is set once at creation, LastSeen on every subsequent sighting.
type Article struct {
	ID             int64
	SiteID         int64
	ExternalID     string
	Title          string
	Slug           string
	AuthorID       *int64
	CategoryID     *int64
	URL            string
	CanonicalURL   string
	Summary        string
	ContentExcerpt string
	ImageURL       string
	PublishedAt    time.Time
	WordCount      int
	ReadingTime    int
	Tags           []string
	QualityScore   float64
	IsActive       bool
	IsDuplicate    bool
	DuplicateOfID  *int64
	FirstSeen      time.Time
	LastSeen       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MarkAsDuplicate flags the article as a duplicate of another article and
// deactivates it. The transition is one-way: collection runs never reactivate
// a duplicate automatically.
func (a *Article) MarkAsDuplicate(originalID int64) {
	a.IsDuplicate = true
	a.IsActive = false
	a.DuplicateOfID = &originalID
}

// EstimateReadingTime returns the estimated reading time in minutes for the
// given word count, with a floor of one minute. Zero words means unknown and
// yields zero.
func EstimateReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}

	minutes := int(math.Round(float64(wordCount) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
