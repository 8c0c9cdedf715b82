package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/resilience/retry"
	"newsharvest/internal/usecase/collect"
)

// RSSFetcher retrieves RSS/Atom listing endpoints and re-encodes their
// entries as a JSON array of records keyed the way the normalizer's candidate
// tables expect, so feed endpoints flow through the same pipeline as JSON
// endpoints. Safe for concurrent use.
type RSSFetcher struct {
	client      *http.Client
	config      ClientConfig
	retryConfig retry.Config
	gate        *siteGate
}

// NewRSSFetcher creates an RSSFetcher with the given transport settings.
func NewRSSFetcher(cfg ClientConfig) *RSSFetcher {
	return &RSSFetcher{
		client:      newHTTPClient(cfg),
		config:      cfg,
		retryConfig: retry.FeedConfig(),
		gate:        newSiteGate("feed"),
	}
}

// Fetch retrieves one feed endpoint of a site. On failure the returned
// result, when non-nil, carries the status code and elapsed time of the last
// attempt so the caller can snapshot the run.
func (f *RSSFetcher) Fetch(ctx context.Context, site *entity.Site, endpoint entity.Endpoint) (*collect.FetchResult, error) {
	endpointURL, err := resolveEndpointURL(site.BaseURL, endpoint.Path)
	if err != nil {
		return nil, err
	}
	if err := validateURL(endpointURL, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}
	if err := f.gate.limiterFor(site).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	breaker := f.gate.breakerFor(site)
	var last *collect.FetchResult

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := breaker.Execute(func() (interface{}, error) {
			result, err := f.doFetch(ctx, site, endpointURL)
			if result != nil {
				last = result
			}
			return result, err
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed circuit breaker open, request rejected",
					slog.String("site", site.Slug),
					slog.String("url", endpointURL),
					slog.String("state", breaker.State().String()))
			}
			return err
		}
		last = cbResult.(*collect.FetchResult)
		return nil
	})
	if retryErr != nil {
		return last, retryErr
	}
	return last, nil
}

func (f *RSSFetcher) doFetch(ctx context.Context, site *entity.Site, endpointURL string) (*collect.FetchResult, error) {
	timeout := requestTimeout(site, f.config.Timeout)
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", collect.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: request exceeded %v", collect.ErrTimeout, timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	result := &collect.FetchResult{
		StatusCode: resp.StatusCode,
		Elapsed:    time.Since(start),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := readLimitedBody(resp.Body, f.config.MaxBodySize)
	if err != nil {
		return result, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return result, fmt.Errorf("%w: %v", collect.ErrInvalidFeed, err)
	}

	payload, err := json.Marshal(feedRecords(feed))
	if err != nil {
		return result, fmt.Errorf("encode feed records: %w", err)
	}

	result.Body = payload
	return result, nil
}

// feedRecords flattens feed entries into generic records. Keys follow the
// candidate tables of the normalizer: guid doubles as the external id source,
// url as the article link, description and content as excerpt sources.
func feedRecords(feed *gofeed.Feed) []map[string]any {
	records := make([]map[string]any, 0, len(feed.Items))
	for _, it := range feed.Items {
		record := map[string]any{"title": it.Title}
		if it.GUID != "" {
			record["guid"] = it.GUID
		}
		if it.Link != "" {
			record["url"] = it.Link
		}
		if it.Description != "" {
			record["description"] = it.Description
		}
		if it.Content != "" {
			record["content"] = it.Content
		}
		if author := itemAuthor(it); author != "" {
			record["author"] = author
		}
		if len(it.Categories) > 0 {
			record["categories"] = it.Categories
		}
		if published := itemPublished(it); published != "" {
			record["published_at"] = published
		}
		if image := itemImage(it); image != "" {
			record["image"] = image
		}
		records = append(records, record)
	}
	return records
}

func itemAuthor(it *gofeed.Item) string {
	for _, person := range it.Authors {
		if person != nil && person.Name != "" {
			return person.Name
		}
	}
	if it.Author != nil {
		return it.Author.Name
	}
	return ""
}

// itemPublished prefers the parsed publication time in RFC 3339 form and
// falls back to the raw feed strings, which the normalizer parses leniently.
func itemPublished(it *gofeed.Item) string {
	if it.PublishedParsed != nil {
		return it.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if it.Published != "" {
		return it.Published
	}
	if it.UpdatedParsed != nil {
		return it.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return it.Updated
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
