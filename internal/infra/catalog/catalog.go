// Package catalog loads the YAML site seed file and reconciles it with the
// sites table at worker start.
//
// The file declares which publications the collector ingests. Loading is
// strict: a malformed entry fails the load instead of silently never
// collecting. Reconciliation only ever touches configuration fields; the
// collection status a row accumulated (error count, last collected time)
// survives, and rows absent from the file are left alone.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

// Defaults for omitted seed fields. The timeout and hourly budget mirror
// the collector's posture toward upstream APIs: 30s per request, at most
// one request every six seconds per site.
const (
	DefaultRequestTimeout   = 30 * time.Second
	DefaultRateLimitPerHour = 600
	DefaultLanguage         = "pt-BR"
)

// ErrNoSites indicates the catalog file contains no site entries.
var ErrNoSites = errors.New("no sites in catalog")

// SiteSeed is one site entry in the catalog file. RequestTimeout is a Go
// duration string ("30s"). Active is tri-state: omitted leaves the stored
// flag alone (new sites start active), an explicit value forces it.
type SiteSeed struct {
	Name             string            `yaml:"name"`
	Slug             string            `yaml:"slug"`
	BaseURL          string            `yaml:"base_url"`
	Endpoints        []entity.Endpoint `yaml:"endpoints"`
	FallbackCategory string            `yaml:"fallback_category"`
	Language         string            `yaml:"language"`
	RateLimitPerHour int               `yaml:"rate_limit_per_hour"`
	RequestTimeout   string            `yaml:"request_timeout"`
	Active           *bool             `yaml:"active"`
}

type seedFile struct {
	Sites []SiteSeed `yaml:"sites"`
}

// Load reads the catalog at path, applies no defaults but validates every
// entry as if it were converted, so callers can trust each seed to yield a
// valid site. Duplicate slugs fail the load.
func Load(path string) ([]SiteSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Sites) == 0 {
		return nil, ErrNoSites
	}

	seen := make(map[string]bool, len(file.Sites))
	for i, seed := range file.Sites {
		if _, err := seed.Site(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i+1, seed.Slug, err)
		}
		if seen[seed.Slug] {
			return nil, fmt.Errorf("catalog entry %d: duplicate slug %q", i+1, seed.Slug)
		}
		seen[seed.Slug] = true
	}

	return file.Sites, nil
}

// Site converts the seed into a site entity, filling omitted fields with
// package defaults and validating the result.
func (s SiteSeed) Site() (*entity.Site, error) {
	timeout := DefaultRequestTimeout
	if s.RequestTimeout != "" {
		d, err := time.ParseDuration(s.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("request_timeout: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("request_timeout: must be positive, got %v", d)
		}
		timeout = d
	}

	if s.RateLimitPerHour < 0 {
		return nil, fmt.Errorf("rate_limit_per_hour: must not be negative, got %d", s.RateLimitPerHour)
	}
	rateLimit := s.RateLimitPerHour
	if rateLimit == 0 {
		rateLimit = DefaultRateLimitPerHour
	}

	language := s.Language
	if language == "" {
		language = DefaultLanguage
	}

	site := &entity.Site{
		Name:             s.Name,
		Slug:             s.Slug,
		BaseURL:          s.BaseURL,
		Endpoints:        s.Endpoints,
		FallbackCategory: s.FallbackCategory,
		Language:         language,
		RateLimitPerHour: rateLimit,
		RequestTimeout:   timeout,
		IsActive:         s.Active == nil || *s.Active,
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

// SyncResult summarizes one catalog reconciliation.
type SyncResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// Sync upserts the seeds into the sites table keyed by slug. New sites are
// created; existing sites get their configuration overwritten only when it
// actually drifted, so a restart against an unchanged catalog writes
// nothing. Sync stops at the first repository error.
func Sync(ctx context.Context, repo repository.SiteRepository, seeds []SiteSeed) (SyncResult, error) {
	logger := slog.Default()
	var result SyncResult
	now := time.Now().UTC()

	for _, seed := range seeds {
		want, err := seed.Site()
		if err != nil {
			return result, fmt.Errorf("catalog site %s: %w", seed.Slug, err)
		}

		existing, err := repo.GetBySlug(ctx, seed.Slug)
		if err != nil {
			return result, fmt.Errorf("sync site %s: %w", seed.Slug, err)
		}

		if existing == nil {
			want.CreatedAt = now
			want.UpdatedAt = now
			if err := repo.Create(ctx, want); err != nil {
				return result, fmt.Errorf("sync site %s: %w", seed.Slug, err)
			}
			result.Created++
			logger.Info("catalog site created",
				slog.String("site", seed.Slug),
				slog.Int64("site_id", want.ID))
			continue
		}

		if !applyConfig(existing, want, seed.Active != nil) {
			result.Unchanged++
			continue
		}
		existing.UpdatedAt = now
		if err := repo.Update(ctx, existing); err != nil {
			return result, fmt.Errorf("sync site %s: %w", seed.Slug, err)
		}
		result.Updated++
		logger.Info("catalog site updated",
			slog.String("site", seed.Slug),
			slog.Int64("site_id", existing.ID))
	}

	return result, nil
}

// applyConfig copies catalog-owned fields onto the stored site and reports
// whether anything changed. forceActive marks that the seed carried an
// explicit active flag; without it the stored flag is preserved.
func applyConfig(existing, want *entity.Site, forceActive bool) bool {
	changed := existing.Name != want.Name ||
		existing.BaseURL != want.BaseURL ||
		existing.FallbackCategory != want.FallbackCategory ||
		existing.Language != want.Language ||
		existing.RateLimitPerHour != want.RateLimitPerHour ||
		existing.RequestTimeout != want.RequestTimeout ||
		!slices.Equal(existing.Endpoints, want.Endpoints)
	if forceActive && existing.IsActive != want.IsActive {
		changed = true
	}
	if !changed {
		return false
	}

	existing.Name = want.Name
	existing.BaseURL = want.BaseURL
	existing.Endpoints = want.Endpoints
	existing.FallbackCategory = want.FallbackCategory
	existing.Language = want.Language
	existing.RateLimitPerHour = want.RateLimitPerHour
	existing.RequestTimeout = want.RequestTimeout
	if forceActive {
		existing.IsActive = want.IsActive
	}
	return true
}
