package entity

import (
	"fmt"
	"time"
)

// Endpoint kinds understood by the collector.
const (
	EndpointKindJSON = "json"
	EndpointKindRSS  = "rss"
)

// unhealthyErrorThreshold is the number of consecutive collection failures
// after which a site is considered unhealthy.
const unhealthyErrorThreshold = 5

// Endpoint describes one content-listing endpoint of a site.
// Path is joined against the site base URL when relative.
type Endpoint struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"` // json (default) or rss
}

// Site represents one upstream publication the collector ingests from.
// Endpoints, rate limits and the fallback category are site configuration;
// ErrorCount and LastCollectedAt are collection status maintained by runs.
type Site struct {
	ID               int64
	Name             string
	Slug             string
	BaseURL          string
	Endpoints        []Endpoint
	FallbackCategory string
	Language         string
	RateLimitPerHour int
	RequestTimeout   time.Duration
	IsActive         bool
	ErrorCount       int
	LastCollectedAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks that the site carries everything a collection run needs.
func (s *Site) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "site name is required"}
	}
	if s.Slug == "" {
		return &ValidationError{Field: "slug", Message: "site slug is required"}
	}
	if err := ValidateURL(s.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if len(s.Endpoints) == 0 {
		return &ValidationError{Field: "endpoints", Message: "at least one endpoint is required"}
	}
	for _, ep := range s.Endpoints {
		if ep.Path == "" {
			return &ValidationError{Field: "endpoints", Message: "endpoint path is required"}
		}
		switch ep.Kind {
		case "", EndpointKindJSON, EndpointKindRSS:
		default:
			return &ValidationError{
				Field:   "endpoints",
				Message: fmt.Sprintf("unknown endpoint kind %q (must be json or rss)", ep.Kind),
			}
		}
	}
	return nil
}

// IsHealthy reports whether the site is below the consecutive-failure
// threshold and should keep being scheduled.
func (s *Site) IsHealthy() bool {
	return s.ErrorCount < unhealthyErrorThreshold
}

// RecordFailure increments the consecutive collection error count.
func (s *Site) RecordFailure() {
	s.ErrorCount++
}

// RecordSuccess resets the error count and stamps the last successful
// collection time.
func (s *Site) RecordSuccess(at time.Time) {
	s.ErrorCount = 0
	s.LastCollectedAt = &at
}
