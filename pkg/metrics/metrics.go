// Package metrics exposes the Prometheus instrumentation for the upload
// pipeline and session store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts processed uploads by outcome (ok, rejected).
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_uploads_total",
		Help: "Number of spreadsheet uploads processed, by outcome.",
	}, []string{"outcome"})

	// RowsDroppedTotal counts rows removed by the normalization drop
	// policy, by reason (date, amount).
	RowsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_rows_dropped_total",
		Help: "Number of rows dropped during normalization, by reason.",
	}, []string{"reason"})

	// NormalizeDuration observes end-to-end upload processing time.
	NormalizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "billing_upload_processing_seconds",
		Help:    "Time spent decoding, normalizing and indexing an upload.",
		Buckets: prometheus.DefBuckets,
	})

	// SessionsActive tracks sessions currently holding a table.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billing_sessions_active",
		Help: "Sessions currently holding an uploaded table.",
	})
)
