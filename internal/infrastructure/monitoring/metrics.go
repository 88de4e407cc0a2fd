package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sanitize outcomes
const (
	OutcomeCleaned       = "cleaned"
	OutcomeClean         = "clean"
	OutcomeNotApplicable = "not_applicable"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Sanitizer metrics
	SanitizeTotal     *prometheus.CounterVec
	RemovedParameters prometheus.Counter
	Unwrapped         prometheus.Counter

	// Rule store metrics
	RulesTracking prometheus.Gauge
	RulesDomains  prometheus.Gauge
	RuleReloads   *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	Sanitized       int64   `json:"sanitized"`
	TrackersRemoved int64   `json:"trackers_removed"`
	Reloads         int64   `json:"reloads"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	UptimeSeconds   float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linksan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linksan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linksan_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linksan_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Sanitizer metrics
		SanitizeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linksan_sanitize_total",
				Help: "Sanitize calls by outcome",
			},
			[]string{"outcome"},
		),
		RemovedParameters: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "linksan_removed_parameters_total",
				Help: "Total number of tracking parameters removed",
			},
		),
		Unwrapped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "linksan_redirects_unwrapped_total",
				Help: "Total number of redirect wrappers unwrapped",
			},
		),

		// Rule store metrics
		RulesTracking: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "linksan_rules_tracking_parameters",
				Help: "Number of globally tracked parameter names",
			},
		),
		RulesDomains: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "linksan_rules_domains",
				Help: "Number of domains with specific rules",
			},
		),
		RuleReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linksan_rule_reloads_total",
				Help: "Rule reload attempts by status",
			},
			[]string{"status"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "linksan_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordSanitize records one sanitize outcome
func (m *Metrics) RecordSanitize(applicable, unwrapped bool, removed int) {
	outcome := OutcomeClean
	switch {
	case !applicable:
		outcome = OutcomeNotApplicable
	case removed > 0:
		outcome = OutcomeCleaned
	}
	m.SanitizeTotal.WithLabelValues(outcome).Inc()
	if removed > 0 {
		m.RemovedParameters.Add(float64(removed))
	}
	if unwrapped {
		m.Unwrapped.Inc()
	}

	m.mu.Lock()
	m.snapshot.Sanitized++
	m.snapshot.TrackersRemoved += int64(removed)
	m.mu.Unlock()
}

// SetRules publishes the size of the active rule set
func (m *Metrics) SetRules(tracking, domains int) {
	m.RulesTracking.Set(float64(tracking))
	m.RulesDomains.Set(float64(domains))
}

// RecordReload records a reload attempt. status is "success", "malformed"
// or "error".
func (m *Metrics) RecordReload(status string) {
	m.RuleReloads.WithLabelValues(status).Inc()
	if status == "success" {
		m.mu.Lock()
		m.snapshot.Reloads++
		m.mu.Unlock()
	}
}

// Snapshot returns a copy of the JSON counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	snap := m.snapshot
	m.mu.RUnlock()

	if snap.TotalRequests > 0 {
		snap.AvgLatencyMs = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
