package normalize_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/normalize"
)

const testBaseURL = "https://www.tecmundo.com.br"

func buildOne(t *testing.T, payload string) entity.ArticleDraft {
	t.Helper()

	items := normalize.LocateArticles(decode(t, payload))
	if len(items) != 1 {
		t.Fatalf("located %d items, want 1", len(items))
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	draft, err := n.BuildDraft(items[0])
	if err != nil {
		t.Fatalf("BuildDraft() error = %v", err)
	}
	return draft
}

func TestBuildDraft_WellFormedPost(t *testing.T) {
	draft := buildOne(t, `{"posts": [{"id": "1", "title": "Hello", "author": {"name": "Joe"}}]}`)

	if draft.ExternalID != "1" {
		t.Errorf("ExternalID = %q, want %q", draft.ExternalID, "1")
	}
	if draft.Title != "Hello" {
		t.Errorf("Title = %q, want %q", draft.Title, "Hello")
	}
	if draft.Author != "Joe" {
		t.Errorf("Author = %q, want %q", draft.Author, "Joe")
	}
	if draft.Category != normalize.DefaultFallbackCategory {
		t.Errorf("Category = %q, want fallback %q", draft.Category, normalize.DefaultFallbackCategory)
	}
	if draft.RawPayload == nil {
		t.Error("RawPayload not retained")
	}
}

func TestBuildDraft_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		item      string
		wantField string
	}{
		{name: "no title", item: `{"id": "1", "body": "x"}`, wantField: "title"},
		{name: "no id", item: `{"title": "Hello"}`, wantField: "external_id"},
		{name: "neither", item: `{"body": "x"}`, wantField: "external_id"},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}

			_, err := n.BuildDraft(item)
			if err == nil {
				t.Fatal("BuildDraft() error = nil, want validation error")
			}

			var vErr *entity.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("BuildDraft() error = %v, want *entity.ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestBuildDraft_ExternalID(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{
			name: "numeric id stringified",
			item: `{"id": 290017, "title": "T"}`,
			want: "290017",
		},
		{
			name: "id beats guid",
			item: `{"id": "7", "guid": "https://example.com/a/b", "title": "T"}`,
			want: "7",
		},
		{
			name: "guid contributes last path segment",
			item: `{"guid": "https://www.tecmundo.com.br/ciencia/290017-fusao.htm", "title": "T"}`,
			want: "290017-fusao.htm",
		},
		{
			name: "permalink trailing slash ignored",
			item: `{"permalink": "https://example.com/games/zelda/", "title": "T"}`,
			want: "zelda",
		},
		{
			name: "query-only guid falls through to slug",
			item: `{"guid": "https://example.com/?p=123", "slug": "my-post", "title": "T"}`,
			want: "my-post",
		},
		{
			name: "slug used as-is",
			item: `{"slug": "easy-slug", "title": "T"}`,
			want: "easy-slug",
		},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			draft, err := n.BuildDraft(item)
			if err != nil {
				t.Fatalf("BuildDraft() error = %v", err)
			}
			if draft.ExternalID != tt.want {
				t.Errorf("ExternalID = %q, want %q", draft.ExternalID, tt.want)
			}
		})
	}
}

func TestBuildDraft_TitleCleaning(t *testing.T) {
	t.Run("rendered wrapper and whitespace", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": {"rendered": "  Hello \n\t World  "}}`)
		if draft.Title != "Hello World" {
			t.Errorf("Title = %q, want %q", draft.Title, "Hello World")
		}
	})

	t.Run("overlong title truncated with ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 600)
		draft := buildOne(t, `{"id": "1", "title": "`+long+`"}`)
		if got := len([]rune(draft.Title)); got != entity.MaxTitleLength {
			t.Errorf("title length = %d, want %d", got, entity.MaxTitleLength)
		}
		if !strings.HasSuffix(draft.Title, "...") {
			t.Errorf("Title = %q, want ... suffix", draft.Title[len(draft.Title)-10:])
		}
	})
}

func TestBuildDraft_Category(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{
			name: "plain string",
			item: `{"id": "1", "title": "T", "category": "Games"}`,
			want: "Games",
		},
		{
			name: "object list",
			item: `{"id": "1", "title": "T", "categories": [{"name": "Ciência"}]}`,
			want: "Ciência",
		},
		{
			name: "nested slug",
			item: `{"id": "1", "title": "T", "section": {"slug": "mobilidade"}}`,
			want: "mobilidade",
		},
		{
			name: "fallback when absent",
			item: `{"id": "1", "title": "T"}`,
			want: "Tecnologia",
		},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			draft, err := n.BuildDraft(item)
			if err != nil {
				t.Fatalf("BuildDraft() error = %v", err)
			}
			if draft.Category != tt.want {
				t.Errorf("Category = %q, want %q", draft.Category, tt.want)
			}
		})
	}
}

func TestBuildDraft_ConfiguredFallbackCategory(t *testing.T) {
	n := normalize.NewNormalizer(testBaseURL, "Hardware")
	item, _ := decode(t, `{"id": "1", "title": "T"}`).(map[string]any)

	draft, err := n.BuildDraft(item)
	if err != nil {
		t.Fatalf("BuildDraft() error = %v", err)
	}
	if draft.Category != "Hardware" {
		t.Errorf("Category = %q, want %q", draft.Category, "Hardware")
	}
}

func TestBuildDraft_URL(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{
			name: "absolute kept",
			item: `{"id": "1", "title": "T", "url": "https://example.com/a"}`,
			want: "https://example.com/a",
		},
		{
			name: "relative joined to base",
			item: `{"id": "1", "title": "T", "link": "/ciencia/artigo-123"}`,
			want: "https://www.tecmundo.com.br/ciencia/artigo-123",
		},
		{
			name: "bare value skipped in favor of next candidate",
			item: `{"id": "1", "title": "T", "url": "not-a-link", "link": "https://example.com/b"}`,
			want: "https://example.com/b",
		},
		{
			name: "absent",
			item: `{"id": "1", "title": "T"}`,
			want: "",
		},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			draft, err := n.BuildDraft(item)
			if err != nil {
				t.Fatalf("BuildDraft() error = %v", err)
			}
			if draft.URL != tt.want {
				t.Errorf("URL = %q, want %q", draft.URL, tt.want)
			}
		})
	}
}

func TestBuildDraft_Summary(t *testing.T) {
	t.Run("html stripped and whitespace collapsed", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "excerpt": "<p>Um  resumo\n<b>importante</b> do artigo.</p>"}`)
		if draft.Summary != "Um resumo importante do artigo." {
			t.Errorf("Summary = %q, want %q", draft.Summary, "Um resumo importante do artigo.")
		}
	})

	t.Run("short candidate passed over", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "summary": "curto", "description": "Uma descricao suficientemente longa."}`)
		if draft.Summary != "Uma descricao suficientemente longa." {
			t.Errorf("Summary = %q, want the longer description", draft.Summary)
		}
	})

	t.Run("all candidates too short", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "summary": "curto", "excerpt": "breve"}`)
		if draft.Summary != "" {
			t.Errorf("Summary = %q, want empty", draft.Summary)
		}
	})

	t.Run("overlong summary truncated", func(t *testing.T) {
		long := strings.Repeat("palavra ", 200)
		draft := buildOne(t, `{"id": "1", "title": "T", "description": "`+long+`"}`)
		if got := len([]rune(draft.Summary)); got != entity.MaxSummaryLength {
			t.Errorf("summary length = %d, want %d", got, entity.MaxSummaryLength)
		}
		if !strings.HasSuffix(draft.Summary, "...") {
			t.Error("truncated summary missing ... suffix")
		}
	})
}

func TestBuildDraft_ImageURL(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{
			name: "plain string",
			item: `{"id": "1", "title": "T", "image": "https://cdn.example.com/a.jpg"}`,
			want: "https://cdn.example.com/a.jpg",
		},
		{
			name: "object with source_url",
			item: `{"id": "1", "title": "T", "featured_image": {"source_url": "https://cdn.example.com/b.png"}}`,
			want: "https://cdn.example.com/b.png",
		},
		{
			name: "list of objects",
			item: `{"id": "1", "title": "T", "media": [{"url": "https://cdn.example.com/c.webp"}]}`,
			want: "https://cdn.example.com/c.webp",
		},
		{
			name: "protocol relative normalized",
			item: `{"id": "1", "title": "T", "thumbnail": "//cdn.example.com/d.gif"}`,
			want: "https://cdn.example.com/d.gif",
		},
		{
			name: "non-image value passed over",
			item: `{"id": "1", "title": "T", "image": "https://example.com/page", "thumbnail": "https://cdn.example.com/e.jpg"}`,
			want: "https://cdn.example.com/e.jpg",
		},
		{
			name: "indicator without extension",
			item: `{"id": "1", "title": "T", "picture": "https://cdn.example.com/img/resize/900"}`,
			want: "https://cdn.example.com/img/resize/900",
		},
		{
			name: "absent",
			item: `{"id": "1", "title": "T"}`,
			want: "",
		},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			draft, err := n.BuildDraft(item)
			if err != nil {
				t.Fatalf("BuildDraft() error = %v", err)
			}
			if draft.ImageURL != tt.want {
				t.Errorf("ImageURL = %q, want %q", draft.ImageURL, tt.want)
			}
		})
	}
}

func TestBuildDraft_PublishedAt(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "published_at": "2025-06-01T12:30:00Z"}`)
		want := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		if !draft.PublishedAt.Equal(want) {
			t.Errorf("PublishedAt = %v, want %v", draft.PublishedAt, want)
		}
	})

	t.Run("date only", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "date": "2025-06-01"}`)
		want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if !draft.PublishedAt.Equal(want) {
			t.Errorf("PublishedAt = %v, want %v", draft.PublishedAt, want)
		}
	})

	t.Run("first parseable candidate wins", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T", "published_at": "2025-06-01T00:00:00Z", "created_at": "2020-01-01T00:00:00Z"}`)
		want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if !draft.PublishedAt.Equal(want) {
			t.Errorf("PublishedAt = %v, want %v", draft.PublishedAt, want)
		}
	})

	t.Run("unparseable falls back to now", func(t *testing.T) {
		before := time.Now().UTC()
		draft := buildOne(t, `{"id": "1", "title": "T", "date": "sometime last week"}`)
		after := time.Now().UTC()

		if draft.PublishedAt.Before(before) || draft.PublishedAt.After(after) {
			t.Errorf("PublishedAt = %v, want between %v and %v", draft.PublishedAt, before, after)
		}
	})

	t.Run("absent falls back to now", func(t *testing.T) {
		draft := buildOne(t, `{"id": "1", "title": "T"}`)
		if draft.PublishedAt.IsZero() {
			t.Error("PublishedAt is zero, want ingestion time")
		}
	})
}

func TestHasPublishedDate(t *testing.T) {
	tests := []struct {
		name string
		item string
		want bool
	}{
		{"parseable date", `{"id": "1", "title": "T", "published_at": "2025-06-01T12:30:00Z"}`, true},
		{"date-only candidate", `{"id": "1", "title": "T", "date": "2025-06-01"}`, true},
		{"unparseable only", `{"id": "1", "title": "T", "date": "sometime last week"}`, false},
		{"no date candidates", `{"id": "1", "title": "T"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			if got := normalize.HasPublishedDate(item); got != tt.want {
				t.Errorf("HasPublishedDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildDraft_Tags(t *testing.T) {
	tests := []struct {
		name string
		item string
		want []string
	}{
		{
			name: "scalar list",
			item: `{"id": "1", "title": "T", "tags": ["go", "web"]}`,
			want: []string{"go", "web"},
		},
		{
			name: "object list",
			item: `{"id": "1", "title": "T", "tags": [{"name": "ios"}, {"name": "android"}]}`,
			want: []string{"ios", "android"},
		},
		{
			name: "keywords fallback",
			item: `{"id": "1", "title": "T", "keywords": ["ai"]}`,
			want: []string{"ai"},
		},
		{
			name: "absent",
			item: `{"id": "1", "title": "T"}`,
			want: nil,
		},
	}

	n := normalize.NewNormalizer(testBaseURL, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := decode(t, tt.item).(map[string]any)
			if !ok {
				t.Fatalf("payload did not decode to an object")
			}
			draft, err := n.BuildDraft(item)
			if err != nil {
				t.Fatalf("BuildDraft() error = %v", err)
			}
			if len(draft.Tags) != len(tt.want) {
				t.Fatalf("Tags = %v, want %v", draft.Tags, tt.want)
			}
			for i := range tt.want {
				if draft.Tags[i] != tt.want[i] {
					t.Errorf("Tags[%d] = %q, want %q", i, draft.Tags[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildDraft_WordCount(t *testing.T) {
	draft := buildOne(t, `{"id": "1", "title": "T", "content": "<p>um dois três</p>", "body": "quatro cinco"}`)
	if draft.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", draft.WordCount)
	}
}

func TestBuildDraft_WordCountAbsent(t *testing.T) {
	draft := buildOne(t, `{"id": "1", "title": "T"}`)
	if draft.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0", draft.WordCount)
	}
}
