package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion outcomes.
const (
	OutcomeIndexed = "indexed"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Query outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// Pipeline Prometheus metrics.
var (
	IngestEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photodex",
			Name:      "ingest_events_total",
			Help:      "Upload events handled by the ingestion coordinator",
		},
		[]string{"outcome"},
	)

	QueryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photodex",
			Name:      "query_requests_total",
			Help:      "Search queries handled by the query coordinator",
		},
		[]string{"outcome"},
	)

	QueryKeywords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "photodex",
			Name:      "query_keywords",
			Help:      "Keywords extracted per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers ingestion and query metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestEventsTotal)
	prometheus.MustRegister(QueryRequestsTotal)
	prometheus.MustRegister(QueryKeywords)
	pipelineMetricsRegistered = true
}
