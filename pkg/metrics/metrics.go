package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Note synthesis
	NotesGenerated     prometheus.Counter
	NoteGenerationTime prometheus.Histogram
	SummaryCacheHits   prometheus.Counter
	SummaryCacheMisses prometheus.Counter

	// Taper planner
	TaperPlansComputed prometheus.Counter
	TaperPlanSteps     prometheus.Histogram

	// Upstream LLM API
	LLMRequests *prometheus.CounterVec
	LLMLatency  prometheus.Histogram

	// Database
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		NotesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_generated_total",
			Help:      "Total number of SOAP notes synthesized",
		}),
		NoteGenerationTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "note_generation_duration_seconds",
			Help:      "Time spent synthesizing a note end to end",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		SummaryCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_hits_total",
			Help:      "Note summaries served from redis",
		}),
		SummaryCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_misses_total",
			Help:      "Note summaries that required an upstream call",
		}),
		TaperPlansComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taper_plans_computed_total",
			Help:      "Total taper plans computed",
		}),
		TaperPlanSteps: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "taper_plan_steps",
			Help:      "Number of steps per computed taper plan",
			Buckets:   []float64{2, 4, 6, 8, 12, 16, 24},
		}),
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Upstream LLM API requests by outcome",
		}, []string{"operation", "outcome"}),
		LLMLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Upstream LLM API request latency",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60},
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Database operations by table and outcome",
		}, []string{"table", "operation", "outcome"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Database operation latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"table", "operation"}),
	}
}
