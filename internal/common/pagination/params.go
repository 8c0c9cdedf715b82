// Package pagination provides offset pagination for the read-only API:
// query parameter parsing, offset math and a generic response envelope.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Config bounds the page and limit parameters a request may ask for.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the standard bounds: page 1, limit 20, max 100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// Params carries the pagination of one request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads the page and limit query parameters, applying the
// configured defaults when a parameter is absent. Parameters that are
// present but out of bounds are an error, not a fallback: a caller asking
// for limit=5000 should learn the cap rather than silently get 100 rows.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{
		Page:  config.DefaultPage,
		Limit: config.DefaultLimit,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > config.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", config.MaxLimit)
		}
		params.Limit = limit
	}

	return params, nil
}
