package fixtures_test

import (
	"encoding/json"
	"testing"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/normalize"
	"newsharvest/tests/fixtures"
)

func TestArticleDefaults(t *testing.T) {
	a := fixtures.Article(3)

	if a.ID != 3 || a.SiteID != 1 {
		t.Errorf("identity = (%d, %d), want (3, 1)", a.ID, a.SiteID)
	}
	if a.ExternalID != "ext-3" {
		t.Errorf("ExternalID = %q, want %q", a.ExternalID, "ext-3")
	}
	if !a.IsActive || a.IsDuplicate {
		t.Errorf("flags = (active=%v, duplicate=%v), want (true, false)", a.IsActive, a.IsDuplicate)
	}
	if a.ReadingTime != entity.EstimateReadingTime(a.WordCount) {
		t.Errorf("ReadingTime = %d, inconsistent with WordCount %d", a.ReadingTime, a.WordCount)
	}
	if a.FirstSeen.After(a.LastSeen) {
		t.Errorf("FirstSeen %v after LastSeen %v", a.FirstSeen, a.LastSeen)
	}
}

func TestArticleDistinctIdentities(t *testing.T) {
	a, b := fixtures.Article(1), fixtures.Article(2)
	if a.ExternalID == b.ExternalID {
		t.Errorf("sequence numbers 1 and 2 produced the same external id %q", a.ExternalID)
	}
}

func TestArticleOptions(t *testing.T) {
	a := fixtures.Article(1,
		fixtures.WithSite(7),
		fixtures.WithTitle("Override"),
		fixtures.WithExternalID("custom"),
		fixtures.WithQuality(42),
		fixtures.AsDuplicate(99),
	)

	if a.SiteID != 7 || a.Title != "Override" || a.ExternalID != "custom" || a.QualityScore != 42 {
		t.Errorf("options not applied: %+v", a)
	}
	if !a.IsDuplicate || a.IsActive || a.DuplicateOfID == nil || *a.DuplicateOfID != 99 {
		t.Errorf("AsDuplicate not applied: %+v", a)
	}
}

func TestRawItemFeedsNormalizer(t *testing.T) {
	item := fixtures.RawItem(1)
	n := normalize.NewNormalizer("https://example.com", "Tecnologia")

	draft, err := n.BuildDraft(item)
	if err != nil {
		t.Fatalf("BuildDraft() error = %v", err)
	}
	if draft.ExternalID != "1001" {
		t.Errorf("ExternalID = %q, want %q", draft.ExternalID, "1001")
	}
	if draft.Title != "Raw Item 1" {
		t.Errorf("Title = %q, want %q", draft.Title, "Raw Item 1")
	}
	if draft.Author != "Author 1" {
		t.Errorf("Author = %q, want %q", draft.Author, "Author 1")
	}
	if draft.ImageURL == "" {
		t.Error("ImageURL empty, want the generated cover image")
	}
}

func TestRawFieldOverridesAndDeletes(t *testing.T) {
	item := fixtures.RawItem(1,
		fixtures.RawField("title", fixtures.Rendered("Wrapped Title")),
		fixtures.RawField("author", nil),
	)

	n := normalize.NewNormalizer("https://example.com", "Tecnologia")
	draft, err := n.BuildDraft(item)
	if err != nil {
		t.Fatalf("BuildDraft() error = %v", err)
	}
	if draft.Title != "Wrapped Title" {
		t.Errorf("Title = %q, want rendered value unwrapped", draft.Title)
	}
	if draft.Author != "" {
		t.Errorf("Author = %q, want empty after deletion", draft.Author)
	}
}

func TestListingPayloadLocates(t *testing.T) {
	body := fixtures.ListingPayload(fixtures.RawItem(1), fixtures.RawItem(2))

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	items := normalize.LocateArticles(payload)
	if len(items) != 2 {
		t.Fatalf("LocateArticles() returned %d items, want 2", len(items))
	}
}
