/*
Package metrics exposes Prometheus instrumentation for the traffic engine.

WHAT IS MEASURED:
  traffic_http_requests_total{route,status}     Requests served
  traffic_http_request_duration_seconds{route}  Request latency
  traffic_uploads_total{result}                 Uploads by outcome
  traffic_rows_ingested_total                   Rows in published uploads
  traffic_people                                People in the raw dataset
  traffic_view_duration_seconds                 Merge + rank recompute time

Metrics implements attendance.Observer, so the workspace reports publishes,
discarded loads and recomputes directly.

Each Metrics owns its registry. Tests and multiple servers in one process
never collide on registration.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	UploadPublished = "published"
	UploadStale     = "stale"
	UploadRejected  = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	uploadsTotal      *prometheus.CounterVec
	rowsIngested      prometheus.Counter
	people            prometheus.Gauge
	viewDuration      prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "traffic_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_uploads_total",
			Help: "Uploads by outcome (published, stale, rejected).",
		}, []string{"result"}),
		rowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_rows_ingested_total",
			Help: "Rows contained in published uploads.",
		}),
		people: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_people",
			Help: "People in the current raw dataset.",
		}),
		viewDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "traffic_view_duration_seconds",
			Help:    "Time spent merging and ranking the raw dataset.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.uploadsTotal,
		m.rowsIngested,
		m.people,
		m.viewDuration,
	)

	for _, result := range []string{UploadPublished, UploadStale, UploadRejected} {
		m.uploadsTotal.WithLabelValues(result)
	}
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// =============================================================================
// HTTP
// =============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records every request under its chi route pattern, so
// /api/people/{id} is one series rather than one per person.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// =============================================================================
// WORKSPACE OBSERVER
// =============================================================================

func (m *Metrics) DatasetPublished(people, rows int) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(UploadPublished).Inc()
	m.rowsIngested.Add(float64(rows))
	m.people.Set(float64(people))
}

func (m *Metrics) LoadDiscarded() {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(UploadStale).Inc()
}

func (m *Metrics) ViewComputed(d time.Duration) {
	if m == nil {
		return
	}
	m.viewDuration.Observe(d.Seconds())
}

// DecodeFailed counts an upload that could not be decoded.
func (m *Metrics) DecodeFailed() {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(UploadRejected).Inc()
}
