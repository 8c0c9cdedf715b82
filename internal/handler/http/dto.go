package http

import (
	"time"

	"newsharvest/internal/common/pagination"
	"newsharvest/internal/domain/entity"
	"newsharvest/internal/usecase/dedup"
	"newsharvest/internal/usecase/stats"
)

// statsResponse is the body of GET /stats.
type statsResponse struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Window       string          `json:"window"`
	Articles     articleStatsDTO `json:"articles"`
	FieldChanges int64           `json:"field_changes"`
	Sites        []siteReportDTO `json:"sites"`
}

type articleStatsDTO struct {
	Total      int64   `json:"total"`
	Active     int64   `json:"active"`
	Duplicates int64   `json:"duplicates"`
	AvgQuality float64 `json:"avg_quality"`
}

type siteReportDTO struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	IsActive        bool          `json:"is_active"`
	Healthy         bool          `json:"healthy"`
	ErrorCount      int           `json:"error_count"`
	LastCollectedAt *time.Time    `json:"last_collected_at,omitempty"`
	Articles        int64         `json:"articles"`
	Collection      collectionDTO `json:"collection"`
	LastSnapshot    *snapshotDTO  `json:"last_snapshot,omitempty"`
}

type collectionDTO struct {
	Requests      int64   `json:"requests"`
	Failures      int64   `json:"failures"`
	SuccessRate   float64 `json:"success_rate"`
	ArticlesFound int64   `json:"articles_found"`
	ArticlesValid int64   `json:"articles_valid"`
	AvgQuality    float64 `json:"avg_quality"`
	AvgResponseMs float64 `json:"avg_response_ms"`
}

type snapshotDTO struct {
	BatchID          string    `json:"batch_id"`
	Endpoint         string    `json:"endpoint"`
	ResponseStatus   int       `json:"response_status"`
	ResponseTimeMs   int64     `json:"response_time_ms"`
	ArticlesFound    int       `json:"articles_found"`
	ArticlesValid    int       `json:"articles_valid"`
	DataQualityScore float64   `json:"data_quality_score"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// duplicatesResponse is the body of GET /duplicates. Threshold echoes the
// effective value, so callers see the default when they omitted it.
type duplicatesResponse struct {
	Site       string              `json:"site"`
	Threshold  float64             `json:"threshold"`
	Data       []matchDTO          `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}

type matchDTO struct {
	Similarity float64    `json:"similarity"`
	Article    articleRef `json:"article"`
	Candidate  articleRef `json:"candidate"`
}

type articleRef struct {
	ID          int64     `json:"id"`
	SiteID      int64     `json:"site_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

func newStatsResponse(report *stats.Report) statsResponse {
	resp := statsResponse{
		GeneratedAt: report.GeneratedAt,
		Window:      report.Window.String(),
		Articles: articleStatsDTO{
			Total:      report.Articles.Total,
			Active:     report.Articles.Active,
			Duplicates: report.Articles.Duplicates,
			AvgQuality: report.Articles.AvgQuality,
		},
		FieldChanges: report.FieldChanges,
		Sites:        make([]siteReportDTO, 0, len(report.Sites)),
	}
	for _, site := range report.Sites {
		resp.Sites = append(resp.Sites, newSiteReportDTO(site))
	}
	return resp
}

func newSiteReportDTO(report stats.SiteReport) siteReportDTO {
	dto := siteReportDTO{
		ID:              report.Site.ID,
		Name:            report.Site.Name,
		Slug:            report.Site.Slug,
		IsActive:        report.Site.IsActive,
		Healthy:         report.Site.IsHealthy(),
		ErrorCount:      report.Site.ErrorCount,
		LastCollectedAt: report.Site.LastCollectedAt,
		Articles:        report.Articles,
		Collection: collectionDTO{
			Requests:      report.Collection.Requests,
			Failures:      report.Collection.Failures,
			SuccessRate:   successRate(report.Collection.Requests, report.Collection.Failures),
			ArticlesFound: report.Collection.ArticlesFound,
			ArticlesValid: report.Collection.ArticlesValid,
			AvgQuality:    report.Collection.AvgQuality,
			AvgResponseMs: report.Collection.AvgResponseMs,
		},
	}
	if report.LastSnapshot != nil {
		dto.LastSnapshot = newSnapshotDTO(report.LastSnapshot)
	}
	return dto
}

func newSnapshotDTO(snapshot *entity.Snapshot) *snapshotDTO {
	return &snapshotDTO{
		BatchID:          snapshot.BatchID,
		Endpoint:         snapshot.Endpoint,
		ResponseStatus:   snapshot.ResponseStatus,
		ResponseTimeMs:   snapshot.ResponseTimeMs,
		ArticlesFound:    snapshot.ArticlesFound,
		ArticlesValid:    snapshot.ArticlesValid,
		DataQualityScore: snapshot.DataQualityScore,
		ErrorMessage:     snapshot.ErrorMessage,
		CreatedAt:        snapshot.CreatedAt,
	}
}

func newMatchDTO(match dedup.Match) matchDTO {
	return matchDTO{
		Similarity: match.Similarity,
		Article:    newArticleRef(match.Article),
		Candidate:  newArticleRef(match.Candidate),
	}
}

func newArticleRef(article *entity.Article) articleRef {
	return articleRef{
		ID:          article.ID,
		SiteID:      article.SiteID,
		Title:       article.Title,
		URL:         article.URL,
		PublishedAt: article.PublishedAt,
	}
}

func successRate(requests, failures int64) float64 {
	if requests <= 0 {
		return 0
	}
	return float64(requests-failures) / float64(requests)
}
