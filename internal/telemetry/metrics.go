// Package telemetry provides observability primitives for the wpaddons service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ActiveRequests     prometheus.Gauge
	UpstreamDuration   *prometheus.HistogramVec
	UpstreamErrors     *prometheus.CounterVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations *prometheus.CounterVec
	TransientsSwept    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "wpaddons",
			Name:                            "request_duration_seconds",
			Help:                            "HTTP request duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"method", "path"}),

		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wpaddons",
			Name:      "active_requests",
			Help:      "Number of currently active requests.",
		}),

		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "wpaddons",
			Name:                            "upstream_duration_seconds",
			Help:                            "Addons API call duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"outcome"}),

		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "upstream_errors_total",
			Help:      "Total failed addons API calls.",
		}, []string{"reason"}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "cache_hits_total",
			Help:      "Total addons cache hits.",
		}),

		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "cache_misses_total",
			Help:      "Total addons cache misses.",
		}),

		CacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "cache_invalidations_total",
			Help:      "Total addons cache invalidations.",
		}, []string{"source"}),

		TransientsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wpaddons",
			Name:      "transients_swept_total",
			Help:      "Total expired transients removed from the store.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ActiveRequests,
		m.UpstreamDuration,
		m.UpstreamErrors,
		m.CacheHits,
		m.CacheMisses,
		m.CacheInvalidations,
		m.TransientsSwept,
	)

	return m
}
