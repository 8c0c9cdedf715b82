package entity

import (
	"time"
	"unicode/utf8"
)

// ChangeType classifies which aspect of an article a field change touches.
type ChangeType string

const (
	ChangeTypeContent   ChangeType = "content"
	ChangeTypeMetadata  ChangeType = "metadata"
	ChangeTypeMedia     ChangeType = "media"
	ChangeTypeAnalysis  ChangeType = "analysis"
	ChangeTypeReference ChangeType = "reference"
	ChangeTypeOther     ChangeType = "other"
)

// ChangeSourceCollection marks history rows written by the collection run.
// Other sources ("manual_edit", "batch_update") are reserved for tooling.
const ChangeSourceCollection = "collection"

// changeTypeByField maps article field names to their change classification.
// Fields not listed here classify as ChangeTypeOther.
var changeTypeByField = map[string]ChangeType{
	"title":           ChangeTypeContent,
	"summary":         ChangeTypeContent,
	"content_excerpt": ChangeTypeContent,
	"author_id":       ChangeTypeMetadata,
	"category_id":     ChangeTypeMetadata,
	"published_at":    ChangeTypeMetadata,
	"image_url":       ChangeTypeMedia,
	"images":          ChangeTypeMedia,
	"tags":            ChangeTypeAnalysis,
	"keywords":        ChangeTypeAnalysis,
	"topics":          ChangeTypeAnalysis,
	"url":             ChangeTypeReference,
	"canonical_url":   ChangeTypeReference,
}

// alwaysSignificant holds the fields whose changes are tracked unconditionally.
var alwaysSignificant = map[string]bool{
	"title":        true,
	"author_id":    true,
	"category_id":  true,
	"published_at": true,
	"url":          true,
}

// ChangeTypeForField returns the change classification for an article field.
func ChangeTypeForField(fieldName string) ChangeType {
	if ct, ok := changeTypeByField[fieldName]; ok {
		return ct
	}
	return ChangeTypeOther
}

// IsSignificantChange reports whether a field change is worth surfacing in
// timelines and alerts. Identity fields are always significant. Long-text
// fields (summary, content excerpt) are significant when a side is empty or
// the length shifted by more than 10% relative to the old value. Any other
// field change is significant as long as the values differ.
func IsSignificantChange(fieldName, oldValue, newValue string) bool {
	if alwaysSignificant[fieldName] {
		return true
	}

	if fieldName == "summary" || fieldName == "content_excerpt" {
		if oldValue == "" || newValue == "" {
			return true
		}
		oldLen := utf8.RuneCountInString(oldValue)
		newLen := utf8.RuneCountInString(newValue)
		lengthDiff := float64(abs(oldLen-newLen)) / float64(oldLen)
		return lengthDiff > 0.1
	}

	return oldValue != newValue
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ArticleHistory records one field-level change on an article.
// Rows are append-only: the ingestion path writes them and never updates or
// deletes them, so the per-article timeline stays complete. Every changed
// field produces a row; IsSignificant is stored for consumers to filter on,
// not used as a write-time gate.
type ArticleHistory struct {
	ID            int64
	ArticleID     int64
	FieldName     string
	OldValue      string
	NewValue      string
	ChangeType    ChangeType
	ChangeSource  string
	IsSignificant bool
	CreatedAt     time.Time
}

// NewFieldChange builds a history entry for one changed article field,
// deriving the change classification and significance from the field name
// and value pair.
func NewFieldChange(articleID int64, fieldName, oldValue, newValue string) ArticleHistory {
	return ArticleHistory{
		ArticleID:     articleID,
		FieldName:     fieldName,
		OldValue:      oldValue,
		NewValue:      newValue,
		ChangeType:    ChangeTypeForField(fieldName),
		ChangeSource:  ChangeSourceCollection,
		IsSignificant: IsSignificantChange(fieldName, oldValue, newValue),
	}
}
