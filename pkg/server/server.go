package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/middleware"
	"github.com/vango-dev/shirtform/pkg/render"
	"github.com/vango-dev/shirtform/pkg/view"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithCatalog sets the catalog. Defaults to catalog.Default().
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithMetrics enables Prometheus metrics, served from gatherer.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracing enables OpenTelemetry spans.
func WithTracing(t *middleware.Tracing) Option {
	return func(s *Server) {
		s.tracing = t
	}
}

// Server serves the form page, live sessions and the JSON API.
type Server struct {
	config   Config
	schema   *form.Schema
	catalog  *catalog.Catalog
	logger   *slog.Logger
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	tracing  *middleware.Tracing
	renderer *render.Renderer
	upgrader websocket.Upgrader
	router   chi.Router

	mu         sync.Mutex
	sessions   map[string]*liveSession
	wg         sync.WaitGroup
	httpServer *http.Server
	closing    bool
}

// New creates a Server validating with schema.
func New(config Config, schema *form.Schema, opts ...Option) (*Server, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:   config,
		schema:   schema,
		catalog:  catalog.Default(),
		logger:   slog.Default(),
		renderer: render.NewRenderer(render.RendererConfig{}),
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := form.CheckCatalog(schema, s.catalog); err != nil {
		return nil, err
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     config.CheckOrigin,
	}
	s.router = s.routes()
	return s, nil
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.recoverer)
	r.Use(s.metrics.HTTP)
	r.Use(s.tracing.HTTP)

	r.Get("/", s.handlePage)
	r.Post("/", s.handleSubmitPage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get(view.ClientPath, s.handleClientJS)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.config.WriteTimeout))
		r.Post("/validate", s.handleValidate)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/schema", s.handleSchema)
	})

	if s.metrics != nil && s.gatherer != nil {
		r.Method(http.MethodGet, s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// recoverer logs panics from handlers and answers 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", chimw.GetReqID(r.Context()))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every live session, then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	sessions := make([]*liveSession, 0, len(s.sessions))
	for _, ls := range s.sessions {
		sessions = append(sessions, ls)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions did not close before shutdown deadline")
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// register adds ls unless the server is closing or full.
func (s *Server) register(ls *liveSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return ErrSessionClosed
	}
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		return ErrMaxSessionsReached
	}
	s.sessions[ls.id] = ls
	s.wg.Add(1)
	return nil
}

func (s *Server) unregister(ls *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[ls.id]; ok {
		delete(s.sessions, ls.id)
		s.wg.Done()
	}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
