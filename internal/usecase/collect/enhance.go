package collect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/observability/metrics"
	"newsharvest/internal/utils/text"
)

// maxExcerptLength caps the stored content excerpt in runes.
const maxExcerptLength = 5000

// enhanceArticles backfills content excerpts for the run's articles whose
// stored excerpt is below the configured threshold. The pass is best effort:
// every failure is logged and the listing data stands. A nil ContentFetcher
// disables the pass entirely.
func (s *Service) enhanceArticles(ctx context.Context, site *entity.Site, articles []*entity.Article) {
	if s.ContentFetcher == nil || len(articles) == 0 {
		return
	}

	parallelism := s.contentConfig.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	sem := make(chan struct{}, parallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, article := range articles {
		article := article
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			s.enhanceOne(egCtx, site, article)
			return nil
		})
	}

	_ = eg.Wait()
}

// enhanceOne fetches one article page and stores the extracted text when it
// improves on what is already stored. It never fails the run: any error
// leaves the article exactly as the listing produced it.
func (s *Service) enhanceOne(ctx context.Context, site *entity.Site, article *entity.Article) {
	logger := slog.Default()

	if article.URL == "" {
		return
	}

	currentLen := text.CountRunes(article.ContentExcerpt)
	if currentLen >= s.contentConfig.Threshold {
		metrics.RecordContentFetchSkipped()
		return
	}

	fetchStart := time.Now()
	content, err := s.ContentFetcher.FetchContent(ctx, article.URL)
	fetchDuration := time.Since(fetchStart)
	if err != nil {
		metrics.RecordContentFetchFailed(fetchDuration)
		logger.Warn("content fetch failed, keeping listing excerpt",
			slog.String("site", site.Slug),
			slog.String("url", article.URL),
			slog.Duration("fetch_duration", fetchDuration),
			slog.Any("error", err))
		return
	}

	excerpt := text.Truncate(text.CollapseWhitespace(content), maxExcerptLength)
	metrics.RecordContentFetchSuccess(fetchDuration, len(excerpt))

	// Shorter extractions lose: readability occasionally returns a
	// boilerplate fragment for paywalled or script-heavy pages.
	if text.CountRunes(excerpt) <= currentLen {
		logger.Debug("extracted content not longer than stored excerpt",
			slog.String("site", site.Slug),
			slog.String("url", article.URL),
			slog.Int("stored_length", currentLen),
			slog.Int("extracted_length", text.CountRunes(excerpt)))
		return
	}

	if err := s.storeExcerpt(ctx, article, excerpt); err != nil {
		logger.Warn("failed to store excerpt",
			slog.String("site", site.Slug),
			slog.Int64("article_id", article.ID),
			slog.Any("error", err))
	}
}

// storeExcerpt persists the new excerpt and its history row. The excerpt
// change goes through the same tracking as listing-driven field changes.
func (s *Service) storeExcerpt(ctx context.Context, article *entity.Article, excerpt string) error {
	oldExcerpt := article.ContentExcerpt
	article.ContentExcerpt = excerpt
	article.UpdatedAt = time.Now().UTC()

	if err := s.ArticleRepo.Update(ctx, article); err != nil {
		article.ContentExcerpt = oldExcerpt
		return fmt.Errorf("update article: %w", err)
	}

	change := entity.NewFieldChange(article.ID, "content_excerpt", oldExcerpt, excerpt)
	if err := s.HistoryRepo.CreateBatch(ctx, []*entity.ArticleHistory{&change}); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	metrics.RecordFieldChange(string(change.ChangeType), change.IsSignificant)

	return nil
}
