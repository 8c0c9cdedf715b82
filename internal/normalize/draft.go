package normalize

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/utils/text"
)

// DefaultFallbackCategory fills records that carry no category at all.
// Author has no equivalent: an unresolvable author stays absent.
const DefaultFallbackCategory = "Tecnologia"

// Ordered candidate key tables per logical field. Order matters: the first
// candidate yielding a value wins and extraction stops there.
var (
	idCandidates       = []string{"id", "post_id", "ID", "guid", "slug", "permalink", "url"}
	titleCandidates    = []string{"title", "post_title", "name", "headline", "subject"}
	authorCandidates   = []string{"author", "post_author", "author_name", "by", "created_by", "writer", "journalist", "redator"}
	categoryCandidates = []string{"category", "categories", "tag", "tags", "section", "channel", "topic", "subject", "type", "content_type"}
	urlCandidates      = []string{"url", "link", "permalink", "guid", "href"}
	summaryCandidates  = []string{"summary", "excerpt", "description", "content", "lead", "subtitle", "abstract", "preview"}
	imageCandidates    = []string{"image", "featured_image", "thumbnail", "cover_image", "picture", "photo", "media", "featured_media"}
	dateCandidates     = []string{"published_at", "date", "created_at", "publication_date", "post_date", "publish_date", "timestamp"}
	tagCandidates      = []string{"tags", "keywords", "topics"}
	contentCandidates  = []string{"content", "body", "text", "summary", "excerpt"}
)

// urlishIDFields are id candidates whose values are links; the last non-empty
// path segment of the link becomes the id.
var urlishIDFields = map[string]bool{"guid": true, "permalink": true, "url": true}

// Normalizer builds canonical article drafts from raw upstream records.
// A Normalizer is scoped to one site: the base URL anchors relative links and
// the fallback category fills records that carry none.
type Normalizer struct {
	baseURL          string
	fallbackCategory string
}

// NewNormalizer creates a Normalizer for a site. An empty fallbackCategory
// falls back to DefaultFallbackCategory.
func NewNormalizer(baseURL, fallbackCategory string) *Normalizer {
	if fallbackCategory == "" {
		fallbackCategory = DefaultFallbackCategory
	}
	return &Normalizer{baseURL: baseURL, fallbackCategory: fallbackCategory}
}

// BuildDraft normalizes one raw record into an ArticleDraft.
// A record without a usable external id or title fails validation and must be
// counted as skipped by the caller; the error is never fatal to the batch.
func (n *Normalizer) BuildDraft(item map[string]any) (entity.ArticleDraft, error) {
	draft := entity.ArticleDraft{
		ExternalID: extractExternalID(item),
		Title:      cleanTitle(ExtractField(item, titleCandidates, titleNestedKeys)),
	}
	if err := draft.Validate(); err != nil {
		return entity.ArticleDraft{}, fmt.Errorf("BuildDraft: %w", err)
	}

	draft.Author = ExtractField(item, authorCandidates, authorNestedKeys)
	draft.Category = extractCategory(item, n.fallbackCategory)
	draft.URL = n.extractURL(item)
	draft.Summary = extractSummary(item)
	draft.ImageURL = n.extractImageURL(item)
	draft.PublishedAt = extractPublishedAt(item)
	draft.Tags = extractTags(item)
	draft.WordCount = estimateWordCount(item)
	draft.RawPayload = item

	return draft, nil
}

// cleanTitle collapses whitespace and enforces the stored title length.
func cleanTitle(title string) string {
	return text.Truncate(text.CollapseWhitespace(title), entity.MaxTitleLength)
}

// extractExternalID finds a stable upstream identifier. Link-valued
// candidates contribute their last non-empty path segment instead of the
// whole URL.
func extractExternalID(item map[string]any) string {
	for _, field := range idCandidates {
		value := ExtractField(item, []string{field}, genericNestedKeys)
		if value == "" {
			continue
		}
		if urlishIDFields[field] && strings.Contains(value, "/") {
			if seg := lastPathSegment(value); seg != "" {
				return seg
			}
			continue
		}
		return value
	}
	return ""
}

func lastPathSegment(link string) string {
	path := link
	if parsed, err := url.Parse(link); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// extractCategory resolves the category name, falling back to the configured
// default when no candidate yields one.
func extractCategory(item map[string]any, fallback string) string {
	if value := ExtractField(item, categoryCandidates, categoryNestedKeys); value != "" {
		return value
	}
	return fallback
}

// extractURL finds the article link. Only values that normalize to absolute
// http(s) form are accepted; other shapes are treated as absent.
func (n *Normalizer) extractURL(item map[string]any) string {
	for _, field := range urlCandidates {
		value := ExtractField(item, []string{field}, genericNestedKeys)
		if value == "" {
			continue
		}
		normalized := NormalizeURL(value, n.baseURL)
		if strings.HasPrefix(normalized, "http://") || strings.HasPrefix(normalized, "https://") {
			return normalized
		}
	}
	return ""
}

// extractSummary walks the summary candidates until one yields meaningful
// text: markup stripped, whitespace collapsed, longer than the minimum
// length, truncated to the stored limit.
func extractSummary(item map[string]any) string {
	for _, field := range summaryCandidates {
		value := ExtractField(item, []string{field}, genericNestedKeys)
		if value == "" {
			continue
		}
		cleaned := text.CollapseWhitespace(text.StripHTML(value))
		if text.CountRunes(cleaned) > entity.MinSummaryLength {
			return text.Truncate(cleaned, entity.MaxSummaryLength)
		}
	}
	return ""
}

// extractImageURL finds an image-like link among the image candidates.
// Candidates that fail the image check are passed over rather than rejected.
func (n *Normalizer) extractImageURL(item map[string]any) string {
	for _, field := range imageCandidates {
		value, ok := item[field]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			if img := n.imageFromObject(v); img != "" {
				return img
			}
		case []any:
			for _, elem := range v {
				if obj, ok := elem.(map[string]any); ok {
					if img := n.imageFromObject(obj); img != "" {
						return img
					}
				} else if s := scalarString(elem); s != "" && IsImageURL(s) {
					return NormalizeURL(s, n.baseURL)
				}
			}
		default:
			if s := scalarString(value); s != "" && IsImageURL(s) {
				return NormalizeURL(s, n.baseURL)
			}
		}
	}
	return ""
}

func (n *Normalizer) imageFromObject(obj map[string]any) string {
	for _, key := range imageNestedKeys {
		s := scalarString(obj[key])
		if s != "" && IsImageURL(s) {
			return NormalizeURL(s, n.baseURL)
		}
	}
	return ""
}

// extractPublishedAt parses the first parseable timestamp among the date
// candidates. Lenient parsing covers RFC3339, common layouts and epoch
// values; total failure defaults to ingestion time rather than failing the
// record.
func extractPublishedAt(item map[string]any) time.Time {
	if ts, ok := parsePublishedAt(item); ok {
		return ts
	}
	return time.Now().UTC()
}

func parsePublishedAt(item map[string]any) (time.Time, bool) {
	for _, field := range dateCandidates {
		value := ExtractField(item, []string{field}, genericNestedKeys)
		if value == "" {
			continue
		}
		if ts, err := dateparse.ParseIn(value, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// HasPublishedDate reports whether the raw record carries a parseable
// timestamp among the date candidates. Drafts built from records without one
// default publishedAt to ingestion time; the upsert path consults this
// predicate so that fallback never registers as an upstream date change.
func HasPublishedDate(item map[string]any) bool {
	_, ok := parsePublishedAt(item)
	return ok
}

// extractTags collects opaque classification labels. Tags pass through
// without interpretation; they only matter for change tracking.
func extractTags(item map[string]any) []string {
	for _, field := range tagCandidates {
		value, ok := item[field].([]any)
		if !ok {
			continue
		}

		tags := make([]string, 0, len(value))
		for _, elem := range value {
			var tag string
			if obj, ok := elem.(map[string]any); ok {
				for _, k := range listItemKeys {
					if s := scalarString(obj[k]); s != "" {
						tag = s
						break
					}
				}
			} else {
				tag = scalarString(elem)
			}
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}

// estimateWordCount sums word tokens across all content-like fields after
// HTML stripping. Zero means unknown.
func estimateWordCount(item map[string]any) int {
	total := 0
	for _, field := range contentCandidates {
		value := ExtractField(item, []string{field}, genericNestedKeys)
		if value == "" {
			continue
		}
		total += text.CountWords(text.StripHTML(value))
	}
	return total
}
