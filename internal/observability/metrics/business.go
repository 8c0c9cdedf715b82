package metrics

import (
	"strconv"
	"time"
)

// RecordCollectionRun records the result and duration of one collection run
// against a site endpoint.
func RecordCollectionRun(site string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	CollectionRunsTotal.WithLabelValues(site, result).Inc()
	CollectionRunDuration.WithLabelValues(site).Observe(duration.Seconds())
}

// RecordArticlesFound records the number of raw records located in one
// fetched payload.
func RecordArticlesFound(site string, count int) {
	if count > 0 {
		ArticlesFoundTotal.WithLabelValues(site).Add(float64(count))
	}
}

// RecordCollectionOutcomes records the per-record upsert breakdown of one run.
func RecordCollectionOutcomes(site string, created, updated, unchanged, skipped int) {
	if created > 0 {
		ArticlesProcessedTotal.WithLabelValues(site, "new").Add(float64(created))
	}
	if updated > 0 {
		ArticlesProcessedTotal.WithLabelValues(site, "updated").Add(float64(updated))
	}
	if unchanged > 0 {
		ArticlesProcessedTotal.WithLabelValues(site, "unchanged").Add(float64(unchanged))
	}
	if skipped > 0 {
		ArticlesProcessedTotal.WithLabelValues(site, "skipped").Add(float64(skipped))
	}
}

// RecordFieldChange records one article field change written to history.
func RecordFieldChange(changeType string, significant bool) {
	FieldChangesTotal.WithLabelValues(changeType, strconv.FormatBool(significant)).Inc()
}

// RecordBatchQuality records the data quality score of one fetched payload.
func RecordBatchQuality(site string, score float64) {
	BatchQualityScore.WithLabelValues(site).Observe(score)
}

// RecordEndpointFetch records the upstream response time of one fetch.
func RecordEndpointFetch(site string, duration time.Duration) {
	EndpointFetchDuration.WithLabelValues(site).Observe(duration.Seconds())
}

// RecordCollectionError records an error during a collection run.
// ErrorType should name the failed stage (e.g. "fetch_failed",
// "decode_failed", "process_failed").
func RecordCollectionError(site string, errorType string) {
	CollectionErrorsTotal.WithLabelValues(site, errorType).Inc()
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// UpdateSitesTotal updates the total count of sites in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateSitesTotal(count int) {
	SitesTotal.Set(float64(count))
}

// RecordContentFetchSuccess records a successful content fetch operation,
// tracking both the duration and the size of the extracted text.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the listing excerpt is already long enough and fetching
// is unnecessary.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g. "select_articles",
// "insert_article").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
