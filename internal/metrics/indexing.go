package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and search Prometheus metrics.
var (
	IndexerBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirrordex",
			Name:      "indexer_batches_total",
			Help:      "Total number of indexing batches by outcome",
		},
		[]string{"result"}, // "indexed" / "empty" / "error"
	)

	IndexerBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mirrordex",
			Name:      "indexer_batch_duration_seconds",
			Help:      "Duration of one indexing batch in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	IndexerCursor = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mirrordex",
			Name:      "indexer_cursor_sequence_id",
			Help:      "Highest change-sequence id fully committed to the index",
		},
	)

	NodesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirrordex",
			Name:      "indexer_nodes_processed_total",
			Help:      "Total nodes seen by the indexer by outcome",
		},
		[]string{"outcome"}, // "indexed" / "deleted" / "unchanged" / "skipped" / "failed"
	)

	SegmentsIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mirrordex",
			Name:      "indexer_segments_indexed_total",
			Help:      "Total segment upserts written to the index",
		},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirrordex",
			Name:      "search_requests_total",
			Help:      "Total search requests by mode and status",
		},
		[]string{"mode", "status"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirrordex",
			Name:      "embedding_requests_total",
			Help:      "Total number of query embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirrordex",
			Name:      "embedding_request_duration_seconds",
			Help:      "Query embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers indexing, search, and embedding
// metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexerBatchesTotal)
	prometheus.MustRegister(IndexerBatchDuration)
	prometheus.MustRegister(IndexerCursor)
	prometheus.MustRegister(NodesProcessedTotal)
	prometheus.MustRegister(SegmentsIndexedTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	indexingMetricsRegistered = true
}
