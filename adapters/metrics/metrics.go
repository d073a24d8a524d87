// Package metrics provides Prometheus metrics collection for usagelens.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for usagelens.
type Collector struct {
	// Ingest metrics
	IngestsTotal     prometheus.Counter
	IngestFailures   *prometheus.CounterVec
	RowsIngested     prometheus.Counter
	RowsRejected     *prometheus.CounterVec
	IngestSuperseded prometheus.Counter
	DatasetRows      prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Export metrics
	ExportsTotal prometheus.Counter
}

// New creates a new metrics collector with all metrics registered on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		IngestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "ingests_total",
			Help:      "Total number of completed CSV ingests",
		}),
		IngestFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "ingest_failures_total",
			Help:      "Total number of aborted ingests by reason",
		}, []string{"reason"}),
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "rows_ingested_total",
			Help:      "Total number of rows normalized into events",
		}),
		RowsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "rows_rejected_total",
			Help:      "Total number of rows dropped during normalization by reason",
		}, []string{"reason"}),
		IngestSuperseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "ingests_superseded_total",
			Help:      "Total number of in-flight ingests cancelled by a newer one",
		}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "usagelens",
			Name:      "dataset_rows",
			Help:      "Event count of the active dataset",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		}, []string{"method", "path", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "usagelens",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "usagelens",
			Name:      "exports_total",
			Help:      "Total number of CSV exports served",
		}),
	}
}
