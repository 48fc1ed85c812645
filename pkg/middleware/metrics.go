package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/protocol"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "shirtform").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "shirtform",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the server's collectors. Its methods are safe for concurrent
// use; a nil *Metrics records nothing.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	validations    *prometheus.CounterVec
	discarded      *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	activeSessions prometheus.Gauge
	wsErrors       *prometheus.CounterVec
}

var _ form.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the collectors:
//   - shirtform_http_requests_total{route,method,status}
//   - shirtform_http_request_duration_seconds{route,method}
//   - shirtform_events_total{type,status}
//   - shirtform_event_duration_seconds{type}
//   - shirtform_validations_total{field,result}
//   - shirtform_validations_discarded_total{field}
//   - shirtform_submissions_total{result}
//   - shirtform_active_sessions
//   - shirtform_websocket_errors_total{type}
//
// It panics if the collectors are already registered on the registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, labels)
	}

	return &Metrics{
		httpRequests:  counter("http_requests_total", "Total HTTP requests", "route", "method", "status"),
		httpDuration:  histogram("http_request_duration_seconds", "HTTP request duration in seconds", "route", "method"),
		eventsTotal:   counter("events_total", "Total live form events processed", "type", "status"),
		eventDuration: histogram("event_duration_seconds", "Live form event processing duration in seconds", "type"),
		validations:   counter("validations_total", "Validation results applied to a form", "field", "result"),
		discarded:     counter("validations_discarded_total", "Validation results discarded as stale", "field"),
		submissions:   counter("submissions_total", "Submit attempts", "result"),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live form sessions",
			ConstLabels: config.ConstLabels,
		}),
		wsErrors: counter("websocket_errors_total", "WebSocket errors by type", "type"),
	}
}

// HTTP is chi middleware recording request counts and durations by route
// pattern.
func (m *Metrics) HTTP(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// routePattern returns the matched chi pattern, keeping label cardinality
// bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RecordEvent records one processed live event.
func (m *Metrics) RecordEvent(eventType protocol.EventType, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = categorizeError(err)
	}
	m.eventDuration.WithLabelValues(string(eventType)).Observe(d.Seconds())
	m.eventsTotal.WithLabelValues(string(eventType), status).Inc()
}

// RecordSubmission records a submit attempt.
func (m *Metrics) RecordSubmission(accepted bool) {
	if m == nil {
		return
	}
	result := "accepted"
	if !accepted {
		result = "blocked"
	}
	m.submissions.WithLabelValues(result).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}

// Validated implements form.Observer.
func (m *Metrics) Validated(field string, valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validations.WithLabelValues(field, result).Inc()
}

// Discarded implements form.Observer.
func (m *Metrics) Discarded(field string) {
	if m != nil {
		m.discarded.WithLabelValues(field).Inc()
	}
}

// categorizeError maps an error to a low-cardinality label.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, protocol.ErrInvalidEvent), errors.Is(err, protocol.ErrEventTooLarge):
		return "invalid_event"
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrUnknownAnimal):
		return "unknown_input"
	case errors.Is(err, form.ErrNotSubmittable):
		return "not_submittable"
	case errors.Is(err, form.ErrDisposed), errors.Is(err, form.ErrNotMounted):
		return "lifecycle"
	case strings.Contains(err.Error(), "timeout"):
		return "timeout"
	default:
		return "internal"
	}
}
