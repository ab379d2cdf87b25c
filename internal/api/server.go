// Package api exposes the documentation chat service over HTTP: session
// lifecycle, chat turns, history, health, and metrics.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"docchat/internal/observability"
	"docchat/internal/session"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger   *slog.Logger
	Sessions *session.Manager       // Required
	Metrics  *observability.Metrics // Optional: nil disables instrumentation
	Ready    func() error           // Optional: readiness probe (nil = always ready)
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sh := &sessionHandler{sessions: cfg.Sessions, metrics: cfg.Metrics, logger: logger}
	ch := &chatHandler{sessions: cfg.Sessions, metrics: cfg.Metrics, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", sh.create)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", sh.delete)
	mux.HandleFunc("POST /api/v1/sessions/{id}/chat", ch.send)
	mux.HandleFunc("GET /api/v1/sessions/{id}/history", ch.history)

	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Probes and metrics bypass the middleware stack.
	top := http.NewServeMux()
	top.HandleFunc("GET /healthz", health)
	top.Handle("GET /readyz", readiness(cfg.Ready))
	top.Handle("GET /metrics", observability.MetricsHandler())
	top.Handle("/", handler)

	return &Server{handler: top}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// health reports liveness for container probes.
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, slog.Default())
}

// readiness reports whether the service's dependencies are reachable.
func readiness(check func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				writeError(w, http.StatusServiceUnavailable, "not_ready", err.Error(), slog.Default())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, slog.Default())
	})
}
