package api

import (
	"log/slog"
	"net/http"
	"time"

	"docchat/internal/observability"
	"docchat/internal/session"
)

type sessionHandler struct {
	sessions *session.Manager
	metrics  *observability.Metrics
	logger   *slog.Logger
}

type sessionResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

func (h *sessionHandler) create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	if h.metrics != nil {
		h.metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        s.ID(),
		CreatedAt: s.CreatedAt().UTC().Format(time.RFC3339),
	}, h.logger)
}

func (h *sessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(r.PathValue("id"))
	if h.metrics != nil {
		h.metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	}
	w.WriteHeader(http.StatusNoContent)
}
