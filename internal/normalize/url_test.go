package normalize_test

import (
	"testing"

	"newsharvest/internal/normalize"
)

func TestNormalizeURL(t *testing.T) {
	const base = "https://www.tecmundo.com.br"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "absolute https passes through",
			raw:  "https://www.tecmundo.com.br/ciencia/artigo-123",
			want: "https://www.tecmundo.com.br/ciencia/artigo-123",
		},
		{
			name: "absolute http passes through",
			raw:  "http://example.com/a",
			want: "http://example.com/a",
		},
		{
			name: "protocol relative gets https",
			raw:  "//cdn.tecmundo.com.br/img/x.jpg",
			want: "https://cdn.tecmundo.com.br/img/x.jpg",
		},
		{
			name: "root relative joins base",
			raw:  "/ciencia/artigo-123",
			want: "https://www.tecmundo.com.br/ciencia/artigo-123",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  https://example.com/a  ",
			want: "https://example.com/a",
		},
		{
			name: "bare path returned unchanged",
			raw:  "ciencia/artigo-123",
			want: "ciencia/artigo-123",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.NormalizeURL(tt.raw, base)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL_BadBase(t *testing.T) {
	got := normalize.NormalizeURL("/a", "://not a url")
	if got != "/a" {
		t.Errorf("NormalizeURL with unparseable base = %q, want %q", got, "/a")
	}
}

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://cdn.example.com/photo.jpg", want: true},
		{url: "https://cdn.example.com/photo.JPEG", want: true},
		{url: "https://cdn.example.com/banner.png", want: true},
		{url: "https://cdn.example.com/anim.gif", want: true},
		{url: "https://cdn.example.com/modern.webp", want: true},
		{url: "https://cdn.example.com/icon.svg", want: true},
		{url: "https://cdn.example.com/resize/800x600/foto.avif", want: false},
		{url: "https://img.example.com/v2/resize?id=9", want: true},
		{url: "https://example.com/thumbs/9", want: true},
		{url: "https://example.com/article/9", want: false},
		{url: "https://example.com/report.pdf", want: false},
		{url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := normalize.IsImageURL(tt.url)
			if got != tt.want {
				t.Errorf("IsImageURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestSlugFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "typical article path",
			url:  "https://www.tecmundo.com.br/ciencia/29017-artigo-sobre-fusao.htm",
			want: "ciencia-29017-artigo-sobre-fusao",
		},
		{
			name: "html extension stripped",
			url:  "https://example.com/news/story.html",
			want: "news-story",
		},
		{
			name: "trailing slash stripped",
			url:  "https://example.com/games/zelda/",
			want: "games-zelda",
		},
		{
			name: "accents folded to hyphens",
			url:  "https://example.com/notícias",
			want: "not-cias",
		},
		{
			name: "consecutive separators collapse",
			url:  "https://example.com/a//b  c",
			want: "a-b-c",
		},
		{
			name: "query ignored",
			url:  "https://example.com/a/b?page=2",
			want: "a-b",
		},
		{
			name: "root only",
			url:  "https://example.com/",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.SlugFromURL(tt.url)
			if got != tt.want {
				t.Errorf("SlugFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
