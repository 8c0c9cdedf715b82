package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/resilience/retry"
	"newsharvest/internal/usecase/collect"
)

// JSONFetcher retrieves JSON listing endpoints over HTTP. Requests are rate
// limited per site, retried with exponential backoff and guarded by a
// per-site circuit breaker so one failing site cannot starve the rest of a
// run. Safe for concurrent use.
type JSONFetcher struct {
	client      *http.Client
	config      ClientConfig
	retryConfig retry.Config
	gate        *siteGate
}

// NewJSONFetcher creates a JSONFetcher with the given transport settings.
func NewJSONFetcher(cfg ClientConfig) *JSONFetcher {
	return &JSONFetcher{
		client:      newHTTPClient(cfg),
		config:      cfg,
		retryConfig: retry.EndpointConfig(),
		gate:        newSiteGate("endpoint"),
	}
}

// Fetch retrieves one JSON listing endpoint of a site. On failure the
// returned result, when non-nil, carries the status code and elapsed time of
// the last attempt so the caller can snapshot the run.
func (f *JSONFetcher) Fetch(ctx context.Context, site *entity.Site, endpoint entity.Endpoint) (*collect.FetchResult, error) {
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
				slog.Warn("endpoint circuit breaker open, request rejected",
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

// doFetch performs a single request attempt. A non-nil result is returned
// whenever a response was received, even on error, so status and timing
// survive into the snapshot.
func (f *JSONFetcher) doFetch(ctx context.Context, site *entity.Site, endpointURL string) (*collect.FetchResult, error) {
	timeout := requestTimeout(site, f.config.Timeout)
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", collect.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/json")

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

	result.Body = body
	return result, nil
}

// newHTTPClient builds the HTTP client shared by a fetcher instance. Request
// deadlines come from per-request contexts, not the client, because they vary
// per site. Each redirect target is revalidated before it is followed.
func newHTTPClient(cfg ClientConfig) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", collect.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), cfg.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
}

// readLimitedBody reads the response body up to maxSize bytes and rejects
// bodies that exceed it.
func readLimitedBody(body io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", collect.ErrBodyTooLarge, maxSize)
	}
	return data, nil
}

// resolveEndpointURL joins an endpoint path against the site base URL.
// Absolute endpoint paths are used as-is.
func resolveEndpointURL(baseURL, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse base URL: %v", collect.ErrInvalidURL, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: parse endpoint path: %v", collect.ErrInvalidURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// requestTimeout picks the per-request deadline: the site's own timeout when
// configured, the fetcher default otherwise.
func requestTimeout(site *entity.Site, fallback time.Duration) time.Duration {
	if site.RequestTimeout > 0 {
		return site.RequestTimeout
	}
	return fallback
}
