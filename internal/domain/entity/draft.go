package entity

import "time"

// ArticleDraft is the ephemeral, normalized form of one upstream record before
// persistence. Drafts are produced per collection run and never stored as-is:
// the upsert path either materializes them into Articles or discards them.
type ArticleDraft struct {
	ExternalID  string
	Title       string
	Author      string
	Category    string
	URL         string
	Summary     string
	ImageURL    string
	PublishedAt time.Time
	Tags        []string
	WordCount   int

	// RawPayload retains the upstream record for debugging and audit.
	RawPayload map[string]any
}

// Validate reports whether the draft may proceed to persistence.
// ExternalID and Title are the minimal required fields; a draft missing either
// is invalid and must be skipped, never stored.
func (d *ArticleDraft) Validate() error {
	if d.ExternalID == "" {
		return &ValidationError{Field: "external_id", Message: "external id is required"}
	}
	if d.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}
