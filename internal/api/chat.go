package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"docchat/internal/observability"
	"docchat/internal/rag"
	"docchat/internal/session"
)

// maxQuestionBytes bounds the chat request body. Documentation questions
// are short; anything larger is a client bug or abuse.
const maxQuestionBytes = 16 << 10

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type turnResponse struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatHandler struct {
	sessions *session.Manager
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// send runs one turn on an existing session.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxQuestionBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", h.logger)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "question is required", h.logger)
		return
	}

	answer, err := s.Send(r.Context(), req.Question)
	if err != nil {
		h.turnFailure(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveTurn("ok")
	}
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer.Text, Sources: sources}, h.logger)
}

// history returns the session's turns in order.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	turns := s.History()
	out := make([]turnResponse, len(turns))
	for i, t := range turns {
		out[i] = turnResponse{Role: string(t.Role), Text: t.Text}
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": out}, h.logger)
}

func (h *chatHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	s, err := h.sessions.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
		} else {
			writeError(w, http.StatusInternalServerError, "internal", "session lookup failed", h.logger)
		}
		return nil, false
	}
	return s, true
}

// turnFailure maps a failed turn to an HTTP status. The failure kind names
// the pipeline stage, and every kind is retryable from the client's point
// of view, so they all map to 502.
func (h *chatHandler) turnFailure(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		// Client went away; there is nobody to answer.
		h.logger.Debug("turn canceled by client", "error", err)
		return
	}

	kind, ok := rag.KindOf(err)
	if !ok {
		kind = "internal"
	}
	if h.metrics != nil {
		h.metrics.ObserveTurn(string(kind) + "_error")
	}

	h.logger.Error("turn failed", "kind", kind, "error", err)
	status := http.StatusBadGateway
	if kind == "internal" {
		status = http.StatusInternalServerError
	}
	writeError(w, status, string(kind), "turn failed, retrying the same question is safe", h.logger)
}
