package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/normalize"
	"newsharvest/internal/observability/metrics"
)

// upsertOutcome classifies what one draft did to storage.
type upsertOutcome int

const (
	outcomeCreated upsertOutcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// upsertDraft reconciles one normalized draft with the article stored under
// (externalID, siteID): creates it on first sight, touches lastSeen when no
// compared field differs, otherwise persists the merged update with one
// history row per changed field.
func (s *Service) upsertDraft(ctx context.Context, site *entity.Site, draft entity.ArticleDraft) (*entity.Article, upsertOutcome, error) {
	existing, err := s.ArticleRepo.FindByExternalID(ctx, draft.ExternalID, site.ID)
	if err != nil {
		return nil, outcomeUnchanged, fmt.Errorf("find by external id: %w", err)
	}

	authorID, categoryID, err := s.resolveTaxonomy(ctx, site.ID, draft)
	if err != nil {
		return nil, outcomeUnchanged, err
	}

	now := time.Now().UTC()

	if existing == nil {
		article := buildArticle(site.ID, draft, authorID, categoryID, now)
		if err := s.ArticleRepo.Create(ctx, article); err != nil {
			return nil, outcomeUnchanged, fmt.Errorf("create article: %w", err)
		}
		return article, outcomeCreated, nil
	}

	merged := mergeArticle(existing, draft, authorID, categoryID, now)
	changes := diffArticle(existing, merged)
	if len(changes) == 0 {
		if err := s.ArticleRepo.TouchLastSeen(ctx, existing.ID, now); err != nil {
			return nil, outcomeUnchanged, fmt.Errorf("touch last seen: %w", err)
		}
		existing.LastSeen = now
		return existing, outcomeUnchanged, nil
	}

	if err := s.ArticleRepo.Update(ctx, merged); err != nil {
		return nil, outcomeUnchanged, fmt.Errorf("update article: %w", err)
	}
	if err := s.HistoryRepo.CreateBatch(ctx, changes); err != nil {
		return nil, outcomeUnchanged, fmt.Errorf("record history: %w", err)
	}
	for _, change := range changes {
		metrics.RecordFieldChange(string(change.ChangeType), change.IsSignificant)
	}

	return merged, outcomeUpdated, nil
}

// resolveTaxonomy maps the draft's author and category names to row ids.
// Authors resolve only when the draft carries one, an absent author stays
// null; categories always resolve because normalization guarantees the
// fallback.
func (s *Service) resolveTaxonomy(ctx context.Context, siteID int64, draft entity.ArticleDraft) (*int64, *int64, error) {
	var authorID, categoryID *int64

	if draft.Author != "" {
		author, err := s.TaxonomyRepo.GetOrCreateAuthor(ctx, siteID, draft.Author)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve author: %w", err)
		}
		authorID = &author.ID
	}

	if draft.Category != "" {
		category, err := s.TaxonomyRepo.GetOrCreateCategory(ctx, siteID, draft.Category)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve category: %w", err)
		}
		categoryID = &category.ID
	}

	return authorID, categoryID, nil
}

// buildArticle materializes a draft into a new Article. firstSeen equals
// lastSeen at creation; the slug derives from the article URL and is set
// once, never rewritten by later runs.
func buildArticle(siteID int64, draft entity.ArticleDraft, authorID, categoryID *int64, now time.Time) *entity.Article {
	return &entity.Article{
		SiteID:       siteID,
		ExternalID:   draft.ExternalID,
		Title:        draft.Title,
		Slug:         normalize.SlugFromURL(draft.URL),
		AuthorID:     authorID,
		CategoryID:   categoryID,
		URL:          draft.URL,
		Summary:      draft.Summary,
		ImageURL:     draft.ImageURL,
		PublishedAt:  draft.PublishedAt,
		WordCount:    draft.WordCount,
		ReadingTime:  entity.EstimateReadingTime(draft.WordCount),
		Tags:         draft.Tags,
		QualityScore: normalize.ScoreDraft(draft),
		IsActive:     true,
		FirstSeen:    now,
		LastSeen:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// mergeArticle lays the draft over a copy of the stored article. Fields a
// draft cannot carry (content excerpt, canonical URL, slug) are preserved,
// and publishedAt is preserved when the record carried no parseable date:
// the ingestion-time fallback must not register as an upstream correction.
func mergeArticle(existing *entity.Article, draft entity.ArticleDraft, authorID, categoryID *int64, now time.Time) *entity.Article {
	merged := *existing
	merged.Title = draft.Title
	merged.AuthorID = authorID
	merged.CategoryID = categoryID
	merged.URL = draft.URL
	merged.Summary = draft.Summary
	merged.ImageURL = draft.ImageURL
	merged.WordCount = draft.WordCount
	merged.ReadingTime = entity.EstimateReadingTime(draft.WordCount)
	merged.Tags = draft.Tags
	merged.QualityScore = normalize.ScoreDraft(draft)
	if normalize.HasPublishedDate(draft.RawPayload) {
		merged.PublishedAt = draft.PublishedAt
	}
	merged.LastSeen = now
	merged.UpdatedAt = now
	return &merged
}

// diffArticle compares the tracked fields of the stored article against the
// merged update and returns one history row per difference. Values compare
// in their stored string form; timestamps compare at second precision so
// storage roundtrip noise never reads as a change.
func diffArticle(existing, merged *entity.Article) []*entity.ArticleHistory {
	pairs := []struct {
		field    string
		old, new string
	}{
		{"title", existing.Title, merged.Title},
		{"author_id", formatRef(existing.AuthorID), formatRef(merged.AuthorID)},
		{"category_id", formatRef(existing.CategoryID), formatRef(merged.CategoryID)},
		{"url", existing.URL, merged.URL},
		{"canonical_url", existing.CanonicalURL, merged.CanonicalURL},
		{"summary", existing.Summary, merged.Summary},
		{"content_excerpt", existing.ContentExcerpt, merged.ContentExcerpt},
		{"image_url", existing.ImageURL, merged.ImageURL},
		{"published_at", formatTimestamp(existing.PublishedAt), formatTimestamp(merged.PublishedAt)},
		{"word_count", strconv.Itoa(existing.WordCount), strconv.Itoa(merged.WordCount)},
		{"tags", strings.Join(existing.Tags, ","), strings.Join(merged.Tags, ",")},
	}

	var changes []*entity.ArticleHistory
	for _, pair := range pairs {
		if pair.old == pair.new {
			continue
		}
		change := entity.NewFieldChange(existing.ID, pair.field, pair.old, pair.new)
		changes = append(changes, &change)
	}
	return changes
}

// formatRef renders a nullable foreign key for history values. Null renders
// as the empty string, which the significance rules read as an absent side.
func formatRef(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
