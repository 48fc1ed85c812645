package middleware

import (
	"context"
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/shirtform/pkg/protocol"
)

// Default tracer name.
const defaultTracerName = "shirtform"

// OTelConfig configures tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "shirtform").
	TracerName string

	// Tracer overrides the tracer from the global provider.
	Tracer trace.Tracer

	// Filter determines which requests to trace. If nil, all are traced.
	Filter func(r *http.Request) bool

	// AttributeExtractor adds custom attributes to request spans.
	AttributeExtractor func(r *http.Request) []attribute.KeyValue
}

// OTelOption configures Tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(t trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = t
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(r *http.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates spans for requests and live events. A nil *Tracing traces
// nothing.
type Tracing struct {
	config OTelConfig
	tracer trace.Tracer
}

// NewTracing resolves the tracer.
func NewTracing(opts ...OTelOption) *Tracing {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{config: config, tracer: tracer}
}

// HTTP is chi middleware that starts a server span per request. The span is
// in the request context for handlers.
func (t *Tracing) HTTP(next http.Handler) http.Handler {
	if t == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.config.Filter != nil && !t.config.Filter(r) {
			next.ServeHTTP(w, r)
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			attrs = append(attrs, attribute.String("http.request_id", id))
		}
		if t.config.AttributeExtractor != nil {
			attrs = append(attrs, t.config.AttributeExtractor(r)...)
		}

		ctx, span := t.tracer.Start(r.Context(),
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.route", routePattern(r)),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}

// StartEvent starts a span for one live event. The returned function ends
// it, recording err.
func (t *Tracing) StartEvent(ctx context.Context, sessionID string, ev protocol.Event) (context.Context, func(error)) {
	if t == nil {
		return ctx, func(error) {}
	}

	attrs := []attribute.KeyValue{
		attribute.String("shirtform.session_id", sessionID),
		attribute.String("shirtform.event_type", string(ev.Type)),
	}
	if ev.Name != "" {
		attrs = append(attrs, attribute.String("shirtform.event_target", ev.Name))
	}

	ctx, span := t.tracer.Start(ctx, "shirtform."+string(ev.Type),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// SpanFromContext returns the current span, or a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
