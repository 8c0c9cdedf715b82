package collect

import (
	"context"
	"time"

	"newsharvest/internal/domain/entity"
)

// FetchResult carries the payload and transport facts of one endpoint fetch.
// StatusCode and Elapsed describe the last attempt and remain meaningful when
// the fetch failed, so the run snapshot can record what actually happened on
// the wire.
type FetchResult struct {
	Body       []byte
	StatusCode int
	Elapsed    time.Duration
}

// EndpointFetcher retrieves one listing endpoint of a site and returns its
// payload as a JSON document. Implementations for non-JSON upstreams
// re-encode their records as a JSON array so every endpoint kind feeds the
// same normalization pipeline.
//
// Implementations must rate limit per site, cap the response body size and
// reject URLs that resolve to private addresses. When a fetch fails after a
// response was received, the returned result still carries the status code
// and elapsed time of the last attempt alongside the error.
type EndpointFetcher interface {
	Fetch(ctx context.Context, site *entity.Site, endpoint entity.Endpoint) (*FetchResult, error)
}

// ContentFetcher retrieves an article page and extracts its readable text.
// The collection service uses it to backfill excerpts for articles whose
// listing payload carried little or no content.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}
