// Package observability exposes Prometheus metrics for the ingest server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// Metrics holds the ingest server counters and histograms.
type Metrics struct {
	registry *prometheus.Registry

	ScansIngested  prometheus.Counter
	DuplicateScans prometheus.Counter
	SyncBatches    *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers all ingest metrics on a fresh registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScansIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrishield_scans_ingested_total",
			Help: "Scans newly inserted by the sync endpoint.",
		}),
		DuplicateScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agrishield_scans_duplicate_total",
			Help: "Scans skipped as duplicates during ingest.",
		}),
		SyncBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agrishield_sync_batches_total",
			Help: "Sync batches processed, labelled by outcome.",
		}, []string{"status"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agrishield_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	collectors := []prometheus.Collector{
		m.ScansIngested, m.DuplicateScans, m.SyncBatches, m.RequestLatency,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, errors.New(err).
				Component("observability").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}
	return m, nil
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordBatch records one processed sync batch.
func (m *Metrics) RecordBatch(status string, inserted, duplicates int64) {
	m.SyncBatches.WithLabelValues(status).Inc()
	if inserted > 0 {
		m.ScansIngested.Add(float64(inserted))
	}
	if duplicates > 0 {
		m.DuplicateScans.Add(float64(duplicates))
	}
}
