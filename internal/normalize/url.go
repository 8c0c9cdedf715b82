package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// imageExtensions are file suffixes accepted as direct image links.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// imageIndicators are substrings that mark a URL as image-like even without
// a recognizable extension (CDN paths, resize proxies).
var imageIndicators = []string{"image", "img", "photo", "pic", "thumb"}

var (
	slugTrimPattern     = regexp.MustCompile(`^/|/$|\.html?$`)
	slugInvalidPattern  = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	slugCollapsePattern = regexp.MustCompile(`-+`)
)

// maxSlugLength matches the slug column width.
const maxSlugLength = 500

// NormalizeURL resolves a raw link to absolute form, best effort:
// absolute http(s) URLs pass through, protocol-relative URLs get an https
// prefix, root-relative paths are joined to the site base URL, and anything
// else is returned unchanged for the caller to accept or reject.
func NormalizeURL(raw, baseURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}

	if strings.HasPrefix(raw, "/") {
		base, err := url.Parse(baseURL)
		if err != nil || base.Host == "" {
			return raw
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		return base.ResolveReference(ref).String()
	}

	return raw
}

// IsImageURL reports whether a URL plausibly points at an image, by known
// extension or by an image-indicating substring anywhere in the URL.
func IsImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, indicator := range imageIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// SlugFromURL derives a URL-friendly slug from an article link: the URL path
// without surrounding slashes and .html extension, non-alphanumerics folded
// to hyphens. Returns "" when the URL has no usable path.
func SlugFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	slug := slugTrimPattern.ReplaceAllString(parsed.Path, "")
	slug = slugInvalidPattern.ReplaceAllString(slug, "-")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")

	if slug == "" {
		return ""
	}
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}
