// Package session manages conversations: per-session history, turn
// serialization, and the session registry.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docchat/internal/rag"
)

// Answerer runs a single turn against the knowledge base.
type Answerer interface {
	Answer(ctx context.Context, query string, history []rag.Turn) (rag.Answer, error)
}

// Session is one conversation. Sends on the same session are serialized;
// a turn observes only history from turns that completed before it started.
type Session struct {
	id       string
	answerer Answerer
	logger   *slog.Logger

	mu        sync.Mutex
	history   []rag.Turn
	createdAt time.Time
	lastUsed  time.Time
}

func newSession(id string, answerer Answerer, logger *slog.Logger) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		answerer:  answerer,
		logger:    logger,
		createdAt: now,
		lastUsed:  now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Send runs one turn: it answers query against the session's current
// history and, on success, appends the user turn and the assistant turn
// together. A failed turn leaves the history untouched, so a retried
// question is condensed against the same history as the original attempt.
func (s *Session) Send(ctx context.Context, query string) (rag.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.answerer.Answer(ctx, query, s.history)
	if err != nil {
		return rag.Answer{}, fmt.Errorf("session %s: %w", s.id, err)
	}

	s.history = append(s.history,
		rag.Turn{Role: rag.RoleUser, Text: query},
		rag.Turn{Role: rag.RoleAssistant, Text: answer.Text},
	)
	s.lastUsed = time.Now()

	s.logger.Debug("turn completed",
		"session_id", s.id,
		"history_len", len(s.history),
		"sources", len(answer.Sources),
	)
	return answer, nil
}

// History returns a copy of the session's turns in order.
func (s *Session) History() []rag.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rag.Turn(nil), s.history...)
}
