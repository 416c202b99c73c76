package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion, indexing and query pipeline metrics.
var (
	ScrapePagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_pages_total",
			Help:      "Pages fetched by the catalog scraper",
		},
		[]string{"kind", "outcome"}, // kind: listing|detail, outcome: ok|error
	)

	ScrapeRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_records_total",
			Help:      "Catalog records emitted by the scraper",
		},
		[]string{"outcome"}, // extracted|degraded
	)

	IndexEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "index_entries",
		Help:      "Entries loaded by the last index rebuild",
	})

	IndexBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "index_build_duration_seconds",
		Help:      "Full index rebuild duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	InsightRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_requests_total",
			Help:      "AI insight generation attempts",
		},
		[]string{"provider", "outcome"}, // ok|error|rejected|disabled
	)

	RecommendResultsCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommend_results",
		Help:      "Results returned per recommendation request",
		Buckets:   []float64{0, 1, 2, 5, 10},
	})
)
