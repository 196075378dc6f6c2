// Package metric instruments the request pipeline and the triple store
// round trips with Prometheus collectors. All methods are safe on a nil
// receiver so callers without an observer skip instrumentation.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shexpose"

// Metrics bundles the collectors for one running instance. Every instance
// owns its registry so tests can create them freely without duplicate
// registration panics.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeReads      prometheus.Counter
	storeWrites     prometheus.Counter
	triplesDeleted  prometheus.Counter
	triplesInserted prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route, and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Total CONSTRUCT round trips to the triple store",
		}),
		storeWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total update round trips to the triple store",
		}),
		triplesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "triples_deleted_total",
			Help:      "Total ground triples removed by committed updates",
		}),
		triplesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "triples_inserted_total",
			Help:      "Total ground triples added by committed updates",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.storeReads,
		m.storeWrites,
		m.triplesDeleted,
		m.triplesInserted,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPRequest records one completed request.
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StoreRead records one CONSTRUCT round trip.
func (m *Metrics) StoreRead() {
	if m == nil {
		return
	}
	m.storeReads.Inc()
}

// StoreWrite records one committed update and its triple counts.
func (m *Metrics) StoreWrite(deleted, inserted int) {
	if m == nil {
		return
	}
	m.storeWrites.Inc()
	m.triplesDeleted.Add(float64(deleted))
	m.triplesInserted.Add(float64(inserted))
}
