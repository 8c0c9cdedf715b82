// Package text provides the text processing utilities shared by the
// normalization pipeline: HTML stripping, whitespace normalization, rune-safe
// truncation and word counting.
package text

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// tagPattern is the fallback tag stripper for markup goquery cannot parse.
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// wordPattern matches one word token: a run of letters, digits or
	// underscores. Unicode-aware so Portuguese text counts correctly.
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// StripHTML removes markup from an HTML fragment and returns its visible text.
// Parsing goes through goquery, so entities are decoded and malformed markup
// is tolerated. Plain text without any tag passes through untouched.
func StripHTML(s string) string {
	if s == "" || !strings.ContainsRune(s, '<') {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return tagPattern.ReplaceAllString(s, "")
	}
	return doc.Text()
}

// CollapseWhitespace folds every run of whitespace (spaces, tabs, newlines)
// into a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes. Truncated strings end with an
// ellipsis marker and are exactly max runes long, matching the stored-field
// length limits.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CountWords counts word tokens in s. Markup should be stripped first; tags
// left in place count as words.
func CountWords(s string) int {
	if s == "" {
		return 0
	}
	return len(wordPattern.FindAllStringIndex(s, -1))
}

// CountRunes counts Unicode characters (runes) rather than bytes, so accented
// and multi-byte characters measure the way editors display them.
func CountRunes(s string) int {
	return len([]rune(s))
}
