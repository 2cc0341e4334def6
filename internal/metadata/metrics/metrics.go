package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for metadata extraction.
type Metrics struct {
	// Fetch latency by outcome
	FetchLatency *prometheus.HistogramVec

	// Extraction outcomes by result kind
	ExtractionOutcome *prometheus.CounterVec

	// Size of fetched documents
	DocumentBytes prometheus.Histogram

	// Number of attributes returned per successful extraction
	AttributesReturned prometheus.Histogram

	// Overall extraction latency (fetch + parse + resolve)
	ExtractLatency prometheus.Histogram
}

// New creates a new Metrics instance with all extraction metrics registered.
func New() *Metrics {
	return &Metrics{
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dicomviewer_metadata_fetch_duration_seconds",
			Help:    "Duration of storage fetches by outcome",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}), // outcome: "ok", "not_found", "error"

		ExtractionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dicomviewer_metadata_extractions_total",
			Help: "Total extractions by outcome",
		}, []string{"outcome"}),

		DocumentBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dicomviewer_metadata_document_bytes",
			Help:    "Size of fetched documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
		}),

		AttributesReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dicomviewer_metadata_attributes_returned",
			Help:    "Number of attributes returned per successful extraction",
			Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
		}),

		ExtractLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dicomviewer_metadata_extract_duration_seconds",
			Help:    "Duration of full extraction including the storage fetch",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveFetchLatency records the duration of one storage fetch.
func (m *Metrics) ObserveFetchLatency(outcome string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// IncrementOutcome records an extraction outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.ExtractionOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveDocumentSize records the size of a fetched document.
func (m *Metrics) ObserveDocumentSize(n int) {
	if m != nil {
		m.DocumentBytes.Observe(float64(n))
	}
}

// ObserveAttributes records how many attributes an extraction returned.
func (m *Metrics) ObserveAttributes(n int) {
	if m != nil {
		m.AttributesReturned.Observe(float64(n))
	}
}

// ObserveExtractLatency records the total extraction duration.
func (m *Metrics) ObserveExtractLatency(d time.Duration) {
	if m != nil {
		m.ExtractLatency.Observe(d.Seconds())
	}
}
