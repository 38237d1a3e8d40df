package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the reporting services expose.
// All collectors are registered on the default registry via promauto.
type Metrics struct {
	EventsIngested    *prometheus.CounterVec
	EventsUnknown     prometheus.Counter
	EventsFailed      *prometheus.CounterVec
	DuplicateEvents   *prometheus.CounterVec
	BatchesIngested   prometheus.Counter
	BatchSize         prometheus.Histogram
	IngestLatency     prometheus.Histogram
	MatricesSettled   prometheus.Counter
	UnmatchedBatchRef prometheus.Counter
	UpstreamRequests  *prometheus.CounterVec
	UpstreamLatency   *prometheus.HistogramVec
	StatementRequests prometheus.Counter
	StatementLatency  prometheus.Histogram
	StoreErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers all reporting metrics.
// Call exactly once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reporting_events_ingested_total",
			Help: "Domain events folded into the read model, by event type.",
		}, []string{"event_type"}),

		EventsUnknown: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reporting_events_unknown_total",
			Help: "Messages skipped because the envelope named no known event type.",
		}),

		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reporting_events_failed_total",
			Help: "Events whose handler returned an error, by event type.",
		}, []string{"event_type"}),

		DuplicateEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reporting_duplicate_events_total",
			Help: "Redelivered events rejected by unique-key insert, by event type.",
		}, []string{"event_type"}),

		BatchesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reporting_batches_ingested_total",
			Help: "Message batches pulled from the broker and processed.",
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reporting_batch_size",
			Help:    "Number of messages per fetched batch.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reporting_ingest_latency_seconds",
			Help:    "Wall time to fold one batch into the store.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),

		MatricesSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reporting_matrices_settled_total",
			Help: "Settlement matrices materialized into the read model.",
		}),

		UnmatchedBatchRef: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reporting_unmatched_batch_refs_total",
			Help: "Batch-transfer correlations whose transfer record was not found.",
		}),

		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reporting_upstream_requests_total",
			Help: "Requests to upstream services, by service and outcome.",
		}, []string{"service", "outcome"}),

		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reporting_upstream_latency_seconds",
			Help:    "Latency of upstream service requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"service"}),

		StatementRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reporting_statement_requests_total",
			Help: "Settlement statement report requests served.",
		}),

		StatementLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reporting_statement_latency_seconds",
			Help:    "End to end latency of statement report requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reporting_store_errors_total",
			Help: "Persistence failures, by operation.",
		}, []string{"operation"}),
	}
}
