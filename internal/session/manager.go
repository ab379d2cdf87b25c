package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Manager is the in-memory session registry. It is safe for concurrent
// use; turns on different sessions proceed independently.
type Manager struct {
	answerer Answerer
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager(answerer Answerer, logger *slog.Logger) (*Manager, error) {
	if answerer == nil {
		return nil, errors.New("answerer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		answerer: answerer,
		logger:   logger,
		sessions: make(map[string]*Session),
	}, nil
}

// Create registers a new session and returns it.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.answerer, m.logger)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", s.id)
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneIdle removes sessions whose last activity is older than maxIdle
// and returns how many were removed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("pruned idle sessions", "removed", removed)
	}
	return removed
}
