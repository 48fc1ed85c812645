// Package server hosts the form over HTTP.
//
// Routes:
//
//	GET  /                 server-rendered form page
//	GET  /ws               live session: one mounted controller per socket
//	POST /api/validate     stateless validation of a JSON values document
//	GET  /api/catalog      animals and sizes
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus metrics, when enabled
//
// The form itself never performs network I/O. A live session decodes client
// events, runs them on its session.Loop against its own form.Controller and
// writes every state change back to the socket.
package server
