// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recommender"

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once; commands that do not serve /metrics may skip it.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			ScrapePagesTotal,
			ScrapeRecordsTotal,
			IndexEntries,
			IndexBuildDuration,
			InsightRequestsTotal,
			RecommendResultsCount,
		)
	})
}
