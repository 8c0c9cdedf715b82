// Package dedup implements advisory cross-site duplicate detection.
// Articles from different sites covering the same story tend to share most
// of their headline words; the scan surfaces those pairs for review. It is
// read-only: nothing is marked and the ingestion path never consults it.
package dedup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/repository"
)

// DefaultThreshold is the Jaccard similarity at or above which two titles
// count as duplicate candidates.
const DefaultThreshold = 0.8

// subjectPageSize bounds how many of the site's own articles are pulled per
// page while scanning.
const subjectPageSize = 500

// Match pairs an article with a similar article on another site.
type Match struct {
	Article    *entity.Article
	Candidate  *entity.Article
	Similarity float64
}

// Service finds cross-site duplicate candidates by title similarity.
type Service struct {
	ArticleRepo repository.ArticleRepository
}

// FindBySite compares every active, non-duplicate article of one site
// against the active articles of all other sites and returns the pairs
// whose title similarity reaches the threshold. A threshold of zero or
// below selects DefaultThreshold. Matches are ordered by descending
// similarity, ties by article then candidate id, so repeated scans over
// unchanged data list identically.
func (s *Service) FindBySite(ctx context.Context, siteID int64, threshold float64) ([]Match, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	candidates, err := s.ArticleRepo.ListActiveExcludingSite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list candidate articles: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	candidateSets := make([]map[string]struct{}, len(candidates))
	for i, candidate := range candidates {
		candidateSets[i] = titleWordSet(candidate.Title)
	}

	var matches []Match
	for offset := 0; ; offset += subjectPageSize {
		page, err := s.ArticleRepo.ListBySite(ctx, siteID, offset, subjectPageSize)
		if err != nil {
			return nil, fmt.Errorf("list site articles: %w", err)
		}

		for _, article := range page {
			if !article.IsActive || article.IsDuplicate {
				continue
			}
			words := titleWordSet(article.Title)
			for i, candidate := range candidates {
				similarity := jaccard(words, candidateSets[i])
				if similarity >= threshold {
					matches = append(matches, Match{
						Article:    article,
						Candidate:  candidate,
						Similarity: similarity,
					})
				}
			}
		}

		if len(page) < subjectPageSize {
			break
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if matches[i].Article.ID != matches[j].Article.ID {
			return matches[i].Article.ID < matches[j].Article.ID
		}
		return matches[i].Candidate.ID < matches[j].Candidate.ID
	})

	return matches, nil
}

// TitleSimilarity computes the Jaccard similarity of two titles over their
// lowercase whitespace-separated word sets. Identical sets score 1, disjoint
// sets 0; two empty titles score 0.
func TitleSimilarity(a, b string) float64 {
	return jaccard(titleWordSet(a), titleWordSet(b))
}

func titleWordSet(title string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(title))
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
