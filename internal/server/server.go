package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/stv/internal/logging"
	"github.com/roach88/stv/internal/store"
)

// DefaultMaxBodyBytes bounds POST /tallies request bodies.
const DefaultMaxBodyBytes = 16 << 20

// Server serves tallies over HTTP.
type Server struct {
	store    *store.Store
	logger   *slog.Logger
	maxBody  int64
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStore persists counted tallies and enables the read routes.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the logger for request and engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// New creates a Server. Without WithStore the server counts but does not
// persist, and the read routes answer 503.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   logging.NewNop(),
		maxBody:  DefaultMaxBodyBytes,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = NewMetrics(s.registry)
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's tally collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/tallies", func(r chi.Router) {
		r.Post("/", s.handleCreateTally)
		r.Get("/", s.handleListTallies)
		r.Get("/{id}", s.handleGetTally)
		r.Get("/{id}/rounds", s.handleGetRounds)
	})
	return r
}
