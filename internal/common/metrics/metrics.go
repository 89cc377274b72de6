// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HeadlinesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headlines_generated_total",
			Help: "Total number of headlines produced by the generator",
		},
		[]string{"category", "enhanced"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "headline_batch_duration_seconds",
			Help:    "Duration of one generation batch including enhancement",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"enhanced"},
	)

	KeywordFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_fallbacks_total",
			Help: "Placeholders resolved with a fallback token",
		},
		[]string{"category"},
	)

	TemplateFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "template_category_fallbacks_total",
			Help: "Category-restricted selections that fell back to a random template",
		},
	)

	EnhancementRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancement_requests_total",
			Help: "Rewrite requests issued to the enhancement endpoint by status",
		},
		[]string{"status"},
	)

	EnhancementOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancement_outcomes_total",
			Help: "Final outcome of each enhance call",
		},
		[]string{"outcome"},
	)

	EnhancementInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enhancement_in_flight",
			Help: "Rewrite calls currently running in the bounded pool",
		},
	)

	WorkerTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Tasks processed by the worker loop",
		},
		[]string{"status"},
	)

	WorkerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_state",
			Help: "Worker loop state (0 stopped, 1 running, 2 stopping)",
		},
	)
)
