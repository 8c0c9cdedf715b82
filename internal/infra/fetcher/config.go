// Package fetcher provides the HTTP clients that retrieve site listing
// endpoints and article pages for collection runs.
package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// defaultUserAgent identifies the harvester to upstream sites.
const defaultUserAgent = "NewsHarvestBot/1.0"

// ClientConfig holds the transport settings shared by the listing fetchers.
type ClientConfig struct {
	// UserAgent is sent on every outbound request.
	UserAgent string

	// Timeout bounds a single request for sites that do not carry their own
	// request timeout. Default: 30s.
	Timeout time.Duration

	// MaxBodySize caps the response body in bytes. Responses exceeding the
	// cap are rejected while reading, independent of the Content-Length
	// header. Default: 10MB.
	MaxBodySize int64

	// MaxRedirects caps the redirect chain. Every redirect target is
	// revalidated before it is followed. Default: 5.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs that resolve to private, loopback or
	// link-local addresses. Default: true.
	DenyPrivateIPs bool
}

// DefaultClientConfig returns the production defaults for the listing
// fetchers.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent:      defaultUserAgent,
		Timeout:        30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the configuration bounds.
func (c *ClientConfig) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if err := validateBodySize(c.MaxBodySize); err != nil {
		return err
	}
	return validateRedirects(c.MaxRedirects)
}

// LoadClientConfigFromEnv loads the listing fetcher configuration from
// environment variables, falling back to defaults for unset values.
//
// Environment variables:
//   - COLLECTOR_USER_AGENT: string (default: NewsHarvestBot/1.0)
//   - COLLECTOR_HTTP_TIMEOUT: duration string, e.g. "30s" (default: 30s)
//   - COLLECTOR_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - COLLECTOR_MAX_REDIRECTS: integer (default: 5)
//   - COLLECTOR_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadClientConfigFromEnv() (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if val := os.Getenv("COLLECTOR_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv("COLLECTOR_HTTP_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid COLLECTOR_HTTP_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("COLLECTOR_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid COLLECTOR_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("COLLECTOR_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid COLLECTOR_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("COLLECTOR_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("client configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ContentFetchConfig holds the configuration for the excerpt enhancement
// stage, which fetches full article pages when the listing payload carried
// little or no content.
type ContentFetchConfig struct {
	// Enabled toggles the enhancement stage. When false no article pages
	// are fetched and the listing excerpt is stored as-is. Default: true.
	Enabled bool

	// Threshold is the minimum excerpt length in runes below which the full
	// article page is fetched. Default: 300.
	Threshold int

	// Timeout bounds a single article page request. Default: 10s.
	Timeout time.Duration

	// Parallelism caps concurrent article page fetches. Default: 10.
	Parallelism int

	// MaxBodySize caps the article page body in bytes. Default: 10MB.
	MaxBodySize int64

	// MaxRedirects caps the redirect chain. Default: 5.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs that resolve to private addresses.
	// Default: true.
	DenyPrivateIPs bool
}

// DefaultConfig returns the production defaults for content fetching.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Threshold:      300,
		Timeout:        10 * time.Second,
		Parallelism:    10,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the configuration bounds.
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Parallelism < 1 || c.Parallelism > 50 {
		return fmt.Errorf("parallelism must be between 1 and 50, got %d", c.Parallelism)
	}
	if err := validateBodySize(c.MaxBodySize); err != nil {
		return err
	}
	return validateRedirects(c.MaxRedirects)
}

// LoadConfigFromEnv loads the content fetch configuration from environment
// variables, falling back to defaults for unset values.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: "true" or "false" (default: true)
//   - CONTENT_FETCH_THRESHOLD: integer (default: 300)
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - CONTENT_FETCH_PARALLELISM: integer (default: 10)
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("CONTENT_FETCH_ENABLED"); val != "" {
		cfg.Enabled = val == "true"
	}

	if val := os.Getenv("CONTENT_FETCH_THRESHOLD"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_THRESHOLD: %v", err)
		}
		cfg.Threshold = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_PARALLELISM"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_PARALLELISM: %v", err)
		}
		cfg.Parallelism = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("content fetch configuration validation failed: %w", err)
	}
	return cfg, nil
}

func validateBodySize(size int64) error {
	const (
		minBodySize = int64(1024)
		maxBodySize = int64(100 * 1024 * 1024)
	)
	if size < minBodySize || size > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, size)
	}
	return nil
}

func validateRedirects(n int) error {
	if n < 0 || n > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", n)
	}
	return nil
}
