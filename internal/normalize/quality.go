package normalize

import (
	"math"

	"newsharvest/internal/domain/entity"
)

// minSubstantialWordCount is the word count above which an article counts as
// having substantial content for scoring purposes.
const minSubstantialWordCount = 50

// BatchQuality summarizes how usable one fetched payload was.
type BatchQuality struct {
	Found int
	Valid int
	Score float64
}

// ScoreDraft computes the 0-100 completeness score for one draft.
// The score is additive per present field and capped at 100: the required
// pair (title, external id) is worth 40, the important trio (author,
// category, url) 30, and supplementary content the remaining 30.
func ScoreDraft(d entity.ArticleDraft) float64 {
	score := 0.0

	if d.Title != "" {
		score += 20
	}
	if d.ExternalID != "" {
		score += 20
	}

	if d.Author != "" {
		score += 10
	}
	if d.Category != "" {
		score += 10
	}
	if d.URL != "" {
		score += 10
	}

	if d.Summary != "" {
		score += 10
	}
	if d.ImageURL != "" {
		score += 10
	}
	if !d.PublishedAt.IsZero() {
		score += 5
	}
	if d.WordCount > minSubstantialWordCount {
		score += 5
	}

	return math.Min(score, 100)
}

// ScoreBatch computes batch-level quality over the raw items of one payload:
// the share of items carrying the minimal required fields (id and title),
// as a percentage rounded to two decimals. An empty batch scores 0.
func ScoreBatch(items []map[string]any) BatchQuality {
	quality := BatchQuality{Found: len(items)}
	if quality.Found == 0 {
		return quality
	}

	for _, item := range items {
		if HasRequiredFields(item) {
			quality.Valid++
		}
	}

	quality.Score = round2(float64(quality.Valid) / float64(quality.Found) * 100)
	return quality
}

// HasRequiredFields reports whether a raw item carries the minimal fields
// (id and title) that make it persistable at all. The check probes the raw
// keys directly, before any normalization.
func HasRequiredFields(item map[string]any) bool {
	if ExtractField(item, []string{"id"}, genericNestedKeys) == "" {
		return false
	}
	return ExtractField(item, []string{"title"}, genericNestedKeys) != ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
