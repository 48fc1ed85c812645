// Package middleware provides Prometheus metrics and OpenTelemetry tracing
// for the form server.
//
// # Metrics
//
// Metrics owns one set of collectors registered on a Prometheus registerer.
// Its HTTP method wraps a chi router; it also implements form.Observer so a
// controller reports every applied and discarded validation:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.HTTP)
//	ctl := form.NewController(schema, form.WithObserver(m))
//
// # Tracing
//
// Tracing starts a server span per HTTP request and a span per live form
// event. The tracer comes from the global OpenTelemetry provider unless one
// is passed with WithTracer; configure the provider in main() before
// starting the server.
package middleware
