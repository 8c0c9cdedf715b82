// Package normalize turns arbitrary upstream JSON into canonical article
// drafts. It covers response-shape discovery, candidate-key field extraction,
// URL and text normalization, and completeness scoring. Everything here is
// pure: no I/O, no storage, deterministic output for a given input.
package normalize

import "sort"

// listKeys are probed in order when the payload root is a keyed object.
var listKeys = []string{"posts", "articles", "data", "items", "results", "content"}

// LocateArticles finds the list of raw article records inside an arbitrarily
// shaped payload. Upstream responses vary between a bare array, an object
// with a well-known list key, a one-level nested wrapper, and a single bare
// record; all four shapes are handled, in that order. An empty result is a
// legitimate terminal state ("no items found"), never an error.
func LocateArticles(payload any) []map[string]any {
	switch root := payload.(type) {
	case []any:
		return objectsOf(root)

	case map[string]any:
		for _, key := range listKeys {
			if arr, ok := root[key].([]any); ok {
				return objectsOf(arr)
			}
		}

		// One level of nesting: {"response": {"posts": [...]}} and the like.
		// Keys are walked in sorted order so repeated runs over the same
		// payload always pick the same list.
		keys := make([]string, 0, len(root))
		for key := range root {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			nested, ok := root[key].(map[string]any)
			if !ok {
				continue
			}
			if arr, ok := nested["posts"].([]any); ok {
				return objectsOf(arr)
			}
			if arr, ok := nested["data"].([]any); ok {
				return objectsOf(arr)
			}
		}

		// The root itself may be a single record.
		if _, ok := root["title"]; ok {
			return []map[string]any{root}
		}
		if _, ok := root["id"]; ok {
			return []map[string]any{root}
		}
	}

	return nil
}

// objectsOf filters an array down to its object elements. Scalars mixed into
// a listing are dropped; they cannot carry article fields.
func objectsOf(arr []any) []map[string]any {
	items := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		if obj, ok := elem.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items
}
