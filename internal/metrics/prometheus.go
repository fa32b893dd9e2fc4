package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ComparisonDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seo_compare_comparison_duration_seconds",
			Help:    "Snapshot comparison duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"source"},
	)

	ComparisonTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_compare_comparison_total",
			Help: "Total number of comparisons served",
		},
		[]string{"status"},
	)

	KeywordStatusCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seo_compare_keywords_per_status",
			Help:    "Keywords per status class in a comparison",
			Buckets: []float64{0, 10, 100, 1000, 10000, 100000},
		},
		[]string{"status"},
	)

	DirectoriesMatched = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_compare_directories_matched",
			Help:    "Matched directory pairs per comparison",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
		},
	)

	SimilarityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_compare_similarity_score",
			Help:    "Similarity scores of matched directories",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_compare_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_compare_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	SnapshotFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_compare_snapshot_fetches_total",
			Help: "Snapshot fetches by outcome",
		},
		[]string{"outcome"},
	)

	SnapshotsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_compare_snapshots_stored_total",
			Help: "Total snapshots ingested",
		},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_compare_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func Init() {
	prometheus.MustRegister(ComparisonDuration)
	prometheus.MustRegister(ComparisonTotal)
	prometheus.MustRegister(KeywordStatusCount)
	prometheus.MustRegister(DirectoriesMatched)
	prometheus.MustRegister(SimilarityScore)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(SnapshotFetches)
	prometheus.MustRegister(SnapshotsStored)
	prometheus.MustRegister(RateLimited)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
