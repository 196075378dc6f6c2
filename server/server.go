// Package server exposes the configured entities as a JSON CRUD surface
// over HTTP. Routing, content negotiation, and status mapping live here;
// all graph semantics live in the crud translator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tucfis/shexpose/crud"
	"github.com/tucfis/shexpose/logger"
	"github.com/tucfis/shexpose/metric"
)

// HealthChecker probes the backing triple store. *sparql.Client satisfies
// it via Ask.
type HealthChecker interface {
	Ask(ctx context.Context, query string) (bool, error)
}

// Server is the shexpose HTTP server.
type Server struct {
	translator     *crud.Translator
	health         HealthChecker
	metrics        *metric.Metrics
	allowedOrigins []string
	logger         *zap.SugaredLogger

	mux  *http.ServeMux
	http *http.Server
}

// New assembles the server around a validated translator.
func New(translator *crud.Translator, health HealthChecker, metrics *metric.Metrics, allowedOrigins []string) *Server {
	s := &Server{
		translator:     translator,
		health:         health,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		logger:         logger.Named("server"),
		mux:            http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP handlers
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/{entity}", s.instrument("/api/{entity}", s.handleCreate))

	s.mux.HandleFunc("GET /api/{entity}/{id}", s.instrument("/api/{entity}/{id}", s.handleReadResource))
	s.mux.HandleFunc("PUT /api/{entity}/{id}", s.instrument("/api/{entity}/{id}", s.handleReplaceResource))
	s.mux.HandleFunc("DELETE /api/{entity}/{id}", s.instrument("/api/{entity}/{id}", s.handleDeleteResource))

	s.mux.HandleFunc("GET /api/{entity}/{id}/{attribute}", s.instrument("/api/{entity}/{id}/{attribute}", s.handleReadAttribute))
	s.mux.HandleFunc("PUT /api/{entity}/{id}/{attribute}", s.instrument("/api/{entity}/{id}/{attribute}", s.handleReplaceAttribute))
	s.mux.HandleFunc("POST /api/{entity}/{id}/{attribute}", s.instrument("/api/{entity}/{id}/{attribute}", s.handleAddToAttribute))
	s.mux.HandleFunc("DELETE /api/{entity}/{id}/{attribute}", s.instrument("/api/{entity}/{id}/{attribute}", s.handleDeleteAttribute))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// preflight for the whole API surface
	s.mux.HandleFunc("OPTIONS /api/", s.corsMiddleware(func(http.ResponseWriter, *http.Request) {}))
}

// instrument wraps a handler with CORS headers and request metrics. The
// route label is the registered pattern, not the concrete path, to keep the
// metric cardinality bounded.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	handler := s.corsMiddleware(next)
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r)
		s.metrics.HTTPRequest(r.Method, route, rec.status, time.Since(start))

		s.logger.Debugw("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	}
}

// statusRecorder captures the written status for metrics and logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed matches the Origin header against the configured allowlist.
// Entries without a port allow any port on that host.
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start blocks serving HTTP on the given port until Shutdown or failure.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.logger.Infow("Server listening",
		"addr", addr,
		"entities", s.translator.Entities())

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
