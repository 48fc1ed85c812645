package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/protocol"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func newTestMetrics() *Metrics {
	return NewMetrics(WithRegistry(prometheus.NewRegistry()))
}

func TestMetricsHTTPUsesRoutePattern(t *testing.T) {
	m := newTestMetrics()

	r := chi.NewRouter()
	r.Use(m.HTTP)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%d", i), nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := metricCounterValue(t, m.httpRequests.WithLabelValues("/items/{id}", "GET", "418")); got != 2 {
		t.Errorf("expected 2 requests for the route pattern, got %v", got)
	}
	if got := metricCounterValue(t, m.httpRequests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
}

func TestMetricsObserver(t *testing.T) {
	m := newTestMetrics()

	var obs form.Observer = m
	obs.Validated("fullName", true)
	obs.Validated("fullName", false)
	obs.Validated("fullName", false)
	obs.Discarded("fullName")

	if got := metricCounterValue(t, m.validations.WithLabelValues("fullName", "invalid")); got != 2 {
		t.Errorf("expected 2 invalid results, got %v", got)
	}
	if got := metricCounterValue(t, m.discarded.WithLabelValues("fullName")); got != 1 {
		t.Errorf("expected 1 discarded result, got %v", got)
	}
}

func TestMetricsEventsAndSessions(t *testing.T) {
	m := newTestMetrics()

	m.RecordEvent(protocol.EventToggle, time.Millisecond, nil)
	m.RecordEvent(protocol.EventToggle, time.Millisecond, fmt.Errorf("toggle: %w", form.ErrUnknownAnimal))
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordSubmission(false)
	m.RecordWebSocketError("read")

	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("toggle", "success")); got != 1 {
		t.Errorf("expected 1 successful toggle, got %v", got)
	}
	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("toggle", "unknown_input")); got != 1 {
		t.Errorf("expected 1 unknown_input toggle, got %v", got)
	}
	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("expected 1 active session, got %v", got)
	}
	if got := metricCounterValue(t, m.submissions.WithLabelValues("blocked")); got != 1 {
		t.Errorf("expected 1 blocked submission, got %v", got)
	}
	if got := metricCounterValue(t, m.wsErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("expected 1 websocket error, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Validated("fullName", true)
	m.Discarded("fullName")
	m.RecordEvent(protocol.EventSubmit, 0, nil)
	m.SessionOpened()
	m.SessionClosed()

	h := m.HTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{protocol.ErrInvalidEvent, "invalid_event"},
		{fmt.Errorf("x: %w", form.ErrUnknownField), "unknown_input"},
		{form.ErrNotSubmittable, "not_submittable"},
		{form.ErrDisposed, "lifecycle"},
		{errors.New("read timeout"), "timeout"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
