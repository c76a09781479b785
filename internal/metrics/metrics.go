// Package metrics exposes Prometheus collectors for the lesson engine. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	completions      *prometheus.CounterVec
	persistFailures  *prometheus.CounterVec
	liveSessions     prometheus.Gauge
	persistQueueSize prometheus.GaugeFunc
}

// New registers the collectors on a fresh registry. queueSize, when set,
// reports the persistence queue depth on scrape.
func New(queueSize func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lessonflow_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lessonflow_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lessonflow_activity_completions_total",
				Help: "Activities completed by learners",
			},
			[]string{"variant"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lessonflow_persist_failures_total",
				Help: "Progress writes that failed",
			},
			[]string{"kind"},
		),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lessonflow_live_sessions",
			Help: "Lesson sessions held in memory",
		}),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.completions, m.persistFailures, m.liveSessions)

	if queueSize != nil {
		m.persistQueueSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lessonflow_persist_queue_depth",
			Help: "Progress writes waiting for a worker",
		}, func() float64 { return float64(queueSize()) })
		m.registry.MustRegister(m.persistQueueSize)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ActivityCompleted(variant string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(variant).Inc()
}

func (m *Metrics) PersistFailed(kind string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

func (m *Metrics) SessionsClosed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.liveSessions.Sub(float64(n))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
