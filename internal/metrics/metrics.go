// Package metrics exposes Prometheus metrics for HTTP traffic, clinic
// lookups and report creation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "variant_reports"

// Clinic lookup outcomes
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Metrics contains the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	clinicRequestsTotal   *prometheus.CounterVec
	clinicRequestDuration prometheus.Histogram

	reportCreationsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefault creates a registry with Go runtime and process collectors
// alongside the service metrics
func NewDefault() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(registry)
}

func (m *Metrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.clinicRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clinic_requests_total",
			Help:      "Total number of patient lookups against the clinic service",
		},
		[]string{"outcome"}, // confirmed, not_found, unavailable
	)

	m.clinicRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clinic_request_duration_seconds",
			Help:      "Time taken for patient lookups against the clinic service",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11), // 5ms to ~5s
		},
	)

	m.reportCreationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_creations_total",
			Help:      "Report creation attempts by result",
		},
		[]string{"result"},
	)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.clinicRequestsTotal,
		m.clinicRequestDuration,
		m.reportCreationsTotal,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordHTTPRequest records a served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordClinicRequest records one patient lookup
func (m *Metrics) RecordClinicRequest(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.clinicRequestsTotal.WithLabelValues(outcome).Inc()
	m.clinicRequestDuration.Observe(seconds)
}

// RecordReportCreation records the result of one report creation attempt
func (m *Metrics) RecordReportCreation(result string) {
	if m == nil {
		return
	}
	m.reportCreationsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
