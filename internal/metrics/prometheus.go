package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proposal_analysis_step_duration_seconds",
			Help:    "Analysis step duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"step"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_runs_total",
			Help: "Total number of analysis runs",
		},
		[]string{"status"},
	)

	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_verdicts_total",
			Help: "Compliance verdicts by outcome",
		},
		[]string{"verdict"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_cache_hits_total",
			Help: "Total verdict cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_cache_misses_total",
			Help: "Total verdict cache misses",
		},
		[]string{"cache_type"},
	)

	DocumentsUploaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_documents_uploaded_total",
			Help: "Total documents uploaded",
		},
		[]string{"doc_type"},
	)

	ProofreadFindings = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proposal_analysis_proofread_findings",
			Help:    "Number of proofreading findings per run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_analysis_exports_total",
			Help: "Total PDF report exports",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(StepDuration)
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(VerdictsTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DocumentsUploaded)
	prometheus.MustRegister(ProofreadFindings)
	prometheus.MustRegister(ExportsTotal)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
