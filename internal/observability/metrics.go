package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/job-portal/internal/domain"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	requestCount *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
	errorCount   *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	applications *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Failed HTTP requests by error code.",
		}, []string{"path", "method", "code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_status_transitions_total",
			Help: "Committed job status transitions.",
		}, []string{"from", "to", "reason"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_applications_total",
			Help: "Application attempts by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.requestCount, m.requestTime, m.errorCount, m.transitions, m.applications)
	return m
}

// Registry exposes the registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordTransition counts a committed status change.
func (m *Metrics) RecordTransition(from, to domain.JobStatus, reason domain.TransitionReason) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to), string(reason)).Inc()
}

// RecordApplication counts an application attempt.
func (m *Metrics) RecordApplication(outcome string) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(outcome).Inc()
}
