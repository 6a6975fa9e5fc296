// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /api/v1/layout             lay out the document in the request body
//	GET  /api/v1/documents/{path}   lay out a stored document (WithDocuments)
//	GET  /healthz                   liveness and build version
//	GET  /metrics                   Prometheus metrics (WithMetrics)
//
// The layout endpoints accept ?direction=, ?format= (json, yaml, dot, svg) and
// ?refresh=true. Request bodies are JSON unless Content-Type names YAML.
// Errors are JSON objects {"error": "...", "code": "..."}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/archlayout/pkg/pipeline"
)

// maxBodyBytes bounds request documents.
const maxBodyBytes = 8 << 20

// Option configures optional Server behavior.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDocuments serves stored documents from dir under /api/v1/documents/.
func WithDocuments(dir string) Option {
	return func(s *Server) { s.docsDir = dir }
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithDirection sets the direction used when neither the request nor the
// document sets one.
func WithDirection(direction string) Option {
	return func(s *Server) { s.direction = direction }
}

// Server is an http.Handler serving layouts from a pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	docsDir   string
	direction string
	gatherer  prometheus.Gatherer
	router    chi.Router
}

// New creates a Server with all routes configured.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		if s.docsDir != "" {
			r.Get("/documents/*", s.handleDocument)
		}
	})

	return r
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
