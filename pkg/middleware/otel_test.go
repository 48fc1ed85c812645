package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/shirtform/pkg/protocol"
)

// recordingTracer keeps every span it starts.
type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: cfg.Attributes()}

	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()

	return trace.ContextWithSpan(ctx, s), s
}

type recordedSpan struct {
	noop.Span

	name   string
	kind   trace.SpanKind
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }
func (s *recordedSpan) SetStatus(c codes.Code, _ string)       { s.status = c }
func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}
func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordedSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingHTTP(t *testing.T) {
	tracer := &recordingTracer{}
	tr := NewTracing(WithTracer(tracer), WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("test.attr", "ok")}
	}))

	var inner trace.Span
	h := tr.HTTP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = SpanFromContext(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/validate", nil))

	if len(tracer.spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.name != "POST /api/validate" || span.kind != trace.SpanKindServer {
		t.Errorf("unexpected span %q kind %v", span.name, span.kind)
	}
	if inner != trace.Span(span) {
		t.Error("expected the span in the request context")
	}
	if v, ok := span.attr("http.status_code"); !ok || v.AsInt64() != 500 {
		t.Errorf("expected status code 500, got %v", v)
	}
	if v, ok := span.attr("test.attr"); !ok || v.AsString() != "ok" {
		t.Error("expected extracted attribute")
	}
	if span.status != codes.Error || !span.ended {
		t.Errorf("expected ended error span, got status %v ended %v", span.status, span.ended)
	}
}

func TestTracingFilter(t *testing.T) {
	tracer := &recordingTracer{}
	tr := NewTracing(WithTracer(tracer), WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	}))

	h := tr.HTTP(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(tracer.spans) != 0 {
		t.Errorf("expected filtered request to have no span, got %d", len(tracer.spans))
	}
}

func TestTracingStartEvent(t *testing.T) {
	tracer := &recordingTracer{}
	tr := NewTracing(WithTracer(tracer))

	_, end := tr.StartEvent(context.Background(), "s1", protocol.Event{Type: protocol.EventToggle, Name: "3"})
	end(errors.New("bad"))

	span := tracer.spans[0]
	if span.name != "shirtform.toggle" {
		t.Errorf("unexpected span name %q", span.name)
	}
	if v, _ := span.attr("shirtform.event_target"); v.AsString() != "3" {
		t.Errorf("expected target 3, got %q", v.AsString())
	}
	if span.status != codes.Error || len(span.errs) != 1 || !span.ended {
		t.Errorf("expected recorded error, got status %v errs %d ended %v", span.status, len(span.errs), span.ended)
	}
}

func TestNilTracingIsSafe(t *testing.T) {
	var tr *Tracing
	ctx, end := tr.StartEvent(context.Background(), "s1", protocol.Event{Type: protocol.EventSubmit})
	end(nil)
	if ctx == nil {
		t.Error("expected context back")
	}
}
