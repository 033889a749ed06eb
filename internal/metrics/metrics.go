// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dono"

// Outcomes recorded on dono_ingest_total
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeUpstream = "upstream"
	OutcomeStorage  = "storage"
)

// Metrics groups the collectors used across the service
type Metrics struct {
	registry *prometheus.Registry

	Ingested      *prometheus.CounterVec
	IngestSeconds *prometheus.HistogramVec
	Records       *prometheus.GaugeVec
	ZeroDurations prometheus.Counter
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "Submitted items by media kind and outcome.",
		}, []string{"kind", "outcome"}),
		IngestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time spent resolving and storing a submitted item.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_records",
			Help:      "Records currently stored per media kind.",
		}, []string{"kind"}),
		ZeroDurations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duration_zero_total",
			Help:      "Catalog durations that decoded to zero without spelling zero.",
		}),
	}

	m.registry.MustRegister(
		m.Ingested,
		m.IngestSeconds,
		m.Records,
		m.ZeroDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
