package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/normalize"
	"newsharvest/internal/observability/metrics"
	"newsharvest/internal/observability/tracing"
	"newsharvest/internal/repository"
)

const (
	// siteParallelism caps how many sites collect concurrently. Runs within
	// one site stay sequential so per-article history keeps run order.
	siteParallelism = 4

	// maxRunErrors bounds the error list carried in run metrics.
	maxRunErrors = 10
)

// ContentFetchConfig controls the excerpt enhancement pass that runs after
// upserting: articles whose stored excerpt is shorter than Threshold runes
// get their page fetched and the readable text extracted.
type ContentFetchConfig struct {
	Parallelism int // maximum concurrent article page fetches
	Threshold   int // minimum excerpt length in runes before fetching
}

// Service orchestrates collection runs: fetching site listing endpoints,
// normalizing raw records into articles, upserting them with field-level
// change history and recording one snapshot per fetch attempt.
type Service struct {
	SiteRepo       repository.SiteRepository
	ArticleRepo    repository.ArticleRepository
	HistoryRepo    repository.HistoryRepository
	SnapshotRepo   repository.SnapshotRepository
	TaxonomyRepo   repository.TaxonomyRepository
	Fetchers       map[string]EndpointFetcher // endpoint kind -> fetcher
	ContentFetcher ContentFetcher             // nil disables excerpt enhancement
	contentConfig  ContentFetchConfig
}

// NewService creates a collection Service with the provided dependencies.
// Fetchers maps endpoint kinds (entity.EndpointKindJSON, entity.EndpointKindRSS)
// to their transports; contentFetcher may be nil to disable the excerpt
// enhancement pass.
func NewService(
	siteRepo repository.SiteRepository,
	articleRepo repository.ArticleRepository,
	historyRepo repository.HistoryRepository,
	snapshotRepo repository.SnapshotRepository,
	taxonomyRepo repository.TaxonomyRepository,
	fetchers map[string]EndpointFetcher,
	contentFetcher ContentFetcher,
	contentConfig ContentFetchConfig,
) Service {
	return Service{
		SiteRepo:       siteRepo,
		ArticleRepo:    articleRepo,
		HistoryRepo:    historyRepo,
		SnapshotRepo:   snapshotRepo,
		TaxonomyRepo:   taxonomyRepo,
		Fetchers:       fetchers,
		ContentFetcher: contentFetcher,
		contentConfig:  contentConfig,
	}
}

// RunStats aggregates the outcome of one collection cycle across all sites.
type RunStats struct {
	Sites      int
	Runs       int64
	FailedRuns int64
	Found      int64
	Created    int64
	Updated    int64
	Unchanged  int64
	Skipped    int64
	Duration   time.Duration
}

// RunMetrics captures one endpoint run. Exactly one snapshot is written from
// it, success or failure; Errors is bounded at maxRunErrors entries.
type RunMetrics struct {
	BatchID        string
	SiteID         int64
	Endpoint       string
	StartedAt      time.Time
	FinishedAt     time.Time
	Failed         bool
	ResponseStatus int
	ResponseTimeMs int64
	Found          int
	Valid          int
	Created        int
	Updated        int
	Unchanged      int
	Skipped        int
	QualityScore   float64
	Errors         []string
}

func (m *RunMetrics) recordError(err error) {
	if len(m.Errors) < maxRunErrors {
		m.Errors = append(m.Errors, err.Error())
	}
}

// CollectAll runs collection for every active, healthy site. Sites collect
// concurrently up to siteParallelism; a failing site never aborts the cycle,
// its failures land in the returned stats and in its own snapshots.
func (s *Service) CollectAll(ctx context.Context) (*RunStats, error) {
	logger := slog.Default()
	startAll := time.Now()
	stats := &RunStats{}

	sites, err := s.SiteRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sites: %w", err)
	}
	stats.Sites = len(sites)

	var eg errgroup.Group
	eg.SetLimit(siteParallelism)

	for _, site := range sites {
		site := site
		if !site.IsHealthy() {
			logger.Warn("skipping unhealthy site",
				slog.String("site", site.Slug),
				slog.Int("error_count", site.ErrorCount))
			continue
		}

		eg.Go(func() error {
			// Shutdown is honored between runs, never mid-run.
			if ctx.Err() != nil {
				return nil
			}
			for _, run := range s.CollectSite(ctx, site) {
				atomic.AddInt64(&stats.Runs, 1)
				atomic.AddInt64(&stats.Found, int64(run.Found))
				atomic.AddInt64(&stats.Created, int64(run.Created))
				atomic.AddInt64(&stats.Updated, int64(run.Updated))
				atomic.AddInt64(&stats.Unchanged, int64(run.Unchanged))
				atomic.AddInt64(&stats.Skipped, int64(run.Skipped))
				if run.Failed {
					atomic.AddInt64(&stats.FailedRuns, 1)
				}
			}
			return nil
		})
	}

	// Goroutines never return errors; per-run failures are in the stats.
	_ = eg.Wait()

	stats.Duration = time.Since(startAll)
	metrics.UpdateSitesTotal(stats.Sites)
	if articleStats, err := s.ArticleRepo.Stats(context.WithoutCancel(ctx)); err == nil {
		metrics.UpdateArticlesTotal(int(articleStats.Total))
	}

	logger.Info("collection cycle completed",
		slog.Int("sites", stats.Sites),
		slog.Int64("runs", stats.Runs),
		slog.Int64("failed_runs", stats.FailedRuns),
		slog.Int64("found", stats.Found),
		slog.Int64("new", stats.Created),
		slog.Int64("updated", stats.Updated),
		slog.Int64("unchanged", stats.Unchanged),
		slog.Int64("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// CollectSite runs every endpoint of one site in declaration order and
// maintains the site's collection status: any successful run resets the
// consecutive error count, a fully failed pass increments it.
func (s *Service) CollectSite(ctx context.Context, site *entity.Site) []*RunMetrics {
	logger := slog.Default()

	ctx, span := tracing.GetTracer().Start(ctx, "collect.site")
	defer span.End()
	span.SetAttributes(attribute.String("site", site.Slug))

	runs := make([]*RunMetrics, 0, len(site.Endpoints))
	for _, endpoint := range site.Endpoints {
		if ctx.Err() != nil {
			break
		}
		runs = append(runs, s.collectEndpoint(ctx, site, endpoint))
	}
	if len(runs) == 0 {
		return runs
	}

	succeeded := 0
	for _, run := range runs {
		if !run.Failed {
			succeeded++
		}
	}
	span.SetAttributes(
		attribute.Int("runs", len(runs)),
		attribute.Int("succeeded", succeeded),
	)

	// Site bookkeeping must survive shutdown mid-cycle.
	safeCtx := context.WithoutCancel(ctx)
	if succeeded > 0 {
		if err := s.SiteRepo.TouchCollectedAt(safeCtx, site.ID, time.Now().UTC()); err != nil {
			logger.Error("failed to record site success",
				slog.String("site", site.Slug),
				slog.Any("error", err))
		}
		return runs
	}

	count, err := s.SiteRepo.IncrementErrorCount(safeCtx, site.ID)
	if err != nil {
		logger.Error("failed to record site failure",
			slog.String("site", site.Slug),
			slog.Any("error", err))
		return runs
	}
	site.ErrorCount = count
	if !site.IsHealthy() {
		logger.Warn("site exceeded failure threshold, will be skipped",
			slog.String("site", site.Slug),
			slog.Int("error_count", count))
	}

	return runs
}

// collectEndpoint performs one full run against a single endpoint:
// fetch, locate, normalize, upsert, enhance, snapshot, metrics.
func (s *Service) collectEndpoint(ctx context.Context, site *entity.Site, endpoint entity.Endpoint) *RunMetrics {
	logger := slog.Default()
	run := &RunMetrics{
		BatchID:   uuid.NewString(),
		SiteID:    site.ID,
		Endpoint:  endpoint.Name,
		StartedAt: time.Now().UTC(),
	}

	logger.Info("collection run started",
		slog.String("batch_id", run.BatchID),
		slog.String("site", site.Slug),
		slog.String("endpoint", endpoint.Name))

	result, err := s.fetcherFor(endpoint).Fetch(ctx, site, endpoint)
	if result != nil {
		run.ResponseStatus = result.StatusCode
		run.ResponseTimeMs = result.Elapsed.Milliseconds()
		metrics.RecordEndpointFetch(site.Slug, result.Elapsed)
	}
	if err != nil {
		metrics.RecordCollectionError(site.Slug, "fetch_failed")
		s.failRun(ctx, site, run, fmt.Errorf("fetch %s: %w", endpoint.Name, err))
		return run
	}

	var payload any
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		metrics.RecordCollectionError(site.Slug, "decode_failed")
		s.failRun(ctx, site, run, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
		return run
	}

	items := normalize.LocateArticles(payload)
	quality := normalize.ScoreBatch(items)
	run.Found = quality.Found
	run.Valid = quality.Valid
	run.QualityScore = quality.Score
	metrics.RecordArticlesFound(site.Slug, run.Found)
	metrics.RecordBatchQuality(site.Slug, run.QualityScore)

	normalizer := normalize.NewNormalizer(site.BaseURL, site.FallbackCategory)
	articles := make([]*entity.Article, 0, len(items))
	for _, item := range items {
		draft, err := normalizer.BuildDraft(item)
		if err != nil {
			run.Skipped++
			run.recordError(err)
			logger.Debug("record skipped",
				slog.String("site", site.Slug),
				slog.Any("error", err))
			continue
		}

		article, outcome, err := s.upsertDraft(ctx, site, draft)
		if err != nil {
			run.Skipped++
			run.recordError(fmt.Errorf("upsert %s: %w", draft.ExternalID, err))
			metrics.RecordCollectionError(site.Slug, "process_failed")
			logger.Warn("failed to persist record",
				slog.String("site", site.Slug),
				slog.String("external_id", draft.ExternalID),
				slog.Any("error", err))
			continue
		}

		switch outcome {
		case outcomeCreated:
			run.Created++
		case outcomeUpdated:
			run.Updated++
		default:
			run.Unchanged++
		}
		articles = append(articles, article)
	}

	s.enhanceArticles(ctx, site, articles)

	run.FinishedAt = time.Now().UTC()
	s.writeSnapshot(ctx, site, run, result.Body, "")
	metrics.RecordCollectionRun(site.Slug, true, run.FinishedAt.Sub(run.StartedAt))
	metrics.RecordCollectionOutcomes(site.Slug, run.Created, run.Updated, run.Unchanged, run.Skipped)

	logger.Info("collection run completed",
		slog.String("batch_id", run.BatchID),
		slog.String("site", site.Slug),
		slog.String("endpoint", endpoint.Name),
		slog.Int("found", run.Found),
		slog.Int("new", run.Created),
		slog.Int("updated", run.Updated),
		slog.Int("unchanged", run.Unchanged),
		slog.Int("skipped", run.Skipped),
		slog.Float64("quality", run.QualityScore),
		slog.Int64("response_ms", run.ResponseTimeMs),
	)

	return run
}

// failRun finalizes a run that died at the fetch boundary. The failed
// snapshot still gets written: it carries the status and elapsed time of the
// last attempt when a response was received, zero values otherwise.
func (s *Service) failRun(ctx context.Context, site *entity.Site, run *RunMetrics, err error) {
	run.Failed = true
	run.FinishedAt = time.Now().UTC()
	run.recordError(err)

	slog.Error("collection run failed",
		slog.String("batch_id", run.BatchID),
		slog.String("site", site.Slug),
		slog.String("endpoint", run.Endpoint),
		slog.Int("status", run.ResponseStatus),
		slog.Any("error", err))

	s.writeSnapshot(ctx, site, run, nil, err.Error())
	metrics.RecordCollectionRun(site.Slug, false, run.FinishedAt.Sub(run.StartedAt))
}

// writeSnapshot records the audit row for one fetch attempt. Failed runs
// store an empty JSON object as payload. Snapshot loss is logged and counted
// but never fails the run.
func (s *Service) writeSnapshot(ctx context.Context, site *entity.Site, run *RunMetrics, rawData []byte, errorMessage string) {
	if len(rawData) == 0 {
		rawData = []byte("{}")
	}

	snapshot := &entity.Snapshot{
		SiteID:           site.ID,
		BatchID:          run.BatchID,
		Endpoint:         run.Endpoint,
		ResponseStatus:   run.ResponseStatus,
		ResponseTimeMs:   run.ResponseTimeMs,
		RawData:          rawData,
		ArticlesFound:    run.Found,
		ArticlesValid:    run.Valid,
		DataQualityScore: run.QualityScore,
		ErrorMessage:     errorMessage,
	}

	if err := s.SnapshotRepo.Create(context.WithoutCancel(ctx), snapshot); err != nil {
		run.recordError(fmt.Errorf("store snapshot: %w", err))
		slog.Error("failed to store snapshot",
			slog.String("batch_id", run.BatchID),
			slog.String("site", site.Slug),
			slog.Any("error", err))
	}
}

// fetcherFor picks the transport for an endpoint kind. Unknown kinds fall
// back to the JSON fetcher so one misconfigured catalog entry degrades
// noisily instead of halting the site.
func (s *Service) fetcherFor(endpoint entity.Endpoint) EndpointFetcher {
	kind := endpoint.Kind
	if kind == "" {
		kind = entity.EndpointKindJSON
	}
	if fetcher, ok := s.Fetchers[kind]; ok {
		return fetcher
	}

	slog.Warn("unknown endpoint kind, falling back to JSON fetcher",
		slog.String("kind", endpoint.Kind),
		slog.String("endpoint", endpoint.Name))
	return s.Fetchers[entity.EndpointKindJSON]
}
