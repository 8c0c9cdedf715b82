package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"newsharvest/internal/common/pagination"
	"newsharvest/internal/handler/http/respond"
	"newsharvest/internal/observability/logging"
	"newsharvest/internal/repository"
	"newsharvest/internal/usecase/dedup"
)

// DuplicatesHandler serves GET /duplicates: the advisory cross-site
// duplicate listing for one site. The scan runs on demand, so responses
// are paginated in memory after scoring.
type DuplicatesHandler struct {
	Svc           *dedup.Service
	Sites         repository.SiteRepository
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

func (h *DuplicatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	slug := r.URL.Query().Get("site")
	if slug == "" {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("site query parameter is required"))
		return
	}

	threshold, err := parseThreshold(r.URL.Query().Get("threshold"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	site, err := h.Sites.GetBySlug(ctx, slug)
	if err != nil {
		logger.Error("failed to look up site", slog.String("slug", slug), slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if site == nil {
		respond.SafeError(w, http.StatusNotFound, fmt.Errorf("site %q not found", slug))
		return
	}

	matches, err := h.Svc.FindBySite(ctx, site.ID, threshold)
	if err != nil {
		logger.Error("duplicate scan failed", slog.String("slug", slug), slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	page, meta := pagination.Paginate(matches, params)
	data := make([]matchDTO, 0, len(page))
	for _, match := range page {
		data = append(data, newMatchDTO(match))
	}

	if threshold <= 0 {
		threshold = dedup.DefaultThreshold
	}
	logger.Info("duplicate scan served",
		slog.String("slug", slug),
		slog.Float64("threshold", threshold),
		slog.Int64("matches", meta.Total),
	)
	respond.JSON(w, http.StatusOK, duplicatesResponse{
		Site:       slug,
		Threshold:  threshold,
		Data:       data,
		Pagination: meta,
	})
}

// parseThreshold reads the threshold query parameter. Empty means "use the
// service default"; an explicit value must sit in (0, 1].
func parseThreshold(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		return 0, fmt.Errorf("threshold must be between 0 and 1")
	}
	return threshold, nil
}
