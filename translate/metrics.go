package translate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("semindex.translate")

	// documentsTotal counts translated records by document type and result
	documentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semindex_documents_total",
		Help: "Total records translated by document type and result",
	}, []string{"type", "result"})

	// warningsTotal counts warnings attached to documents
	warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semindex_document_warnings_total",
		Help: "Total warnings attached to translated documents by document type",
	}, []string{"type"})

	// translateDuration tracks how long a single record takes
	translateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "semindex_translate_duration_seconds",
		Help:    "Record translation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
	}, []string{"type"})
)
