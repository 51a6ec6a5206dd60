package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Document lifecycle metrics.
var (
	IngestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semdex",
			Name:      "ingest_documents_total",
			Help:      "Submitted documents by admission outcome",
		},
		[]string{"outcome"}, // "accepted" or the rejection reason
	)

	DeleteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semdex",
			Name:      "delete_requests_total",
			Help:      "Batched delete requests by store outcome",
		},
		[]string{"outcome"}, // succeeded / failed / unknown / error
	)

	SearchResultsCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "semdex",
			Name:      "search_results",
			Help:      "Number of hits returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"filtered"},
	)
)

// LabelCounter adapts a single-label CounterVec to Inc(label).
type LabelCounter struct {
	Vec *prometheus.CounterVec
}

// Inc increments the series for label.
func (c LabelCounter) Inc(label string) {
	c.Vec.WithLabelValues(label).Inc()
}

// SearchObserver feeds SearchResultsCount.
type SearchObserver struct{}

// Observe records the hit count of one search.
func (SearchObserver) Observe(filtered bool, hits int) {
	SearchResultsCount.WithLabelValues(strconv.FormatBool(filtered)).Observe(float64(hits))
}
