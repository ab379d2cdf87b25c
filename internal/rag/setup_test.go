package rag

import (
	"context"
	"strings"

	"docchat/internal/knowledge"
	"docchat/internal/log"
)

// mockRewriter returns a scripted rewrite, or an error, and records the
// history it was given.
type mockRewriter struct {
	output      string
	err         error
	calls       int
	lastQuery   string
	lastHistory []Turn
}

func (m *mockRewriter) Rewrite(_ context.Context, query string, history []Turn) (string, error) {
	m.calls++
	m.lastQuery = query
	m.lastHistory = append([]Turn(nil), history...)
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

// mockEmbedder returns a fixed vector and records the text embedded.
type mockEmbedder struct {
	vector   []float32
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

// mockStore returns scripted scored chunks and records the requested k.
type mockStore struct {
	chunks []knowledge.ScoredChunk
	err    error
	lastK  int
}

func (m *mockStore) Search(_ context.Context, _ []float32, k int) ([]knowledge.ScoredChunk, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// mockGenerator returns scripted text, optionally failing the first n calls,
// and records the context it received.
type mockGenerator struct {
	output      string
	err         error
	failFirst   int
	calls       int
	lastQuery   string
	lastContext []string
}

func (m *mockGenerator) Generate(_ context.Context, query string, contextChunks []string) (string, error) {
	m.calls++
	m.lastQuery = query
	m.lastContext = append([]string(nil), contextChunks...)
	if m.failFirst > 0 && m.calls <= m.failFirst {
		return "", m.err
	}
	if m.failFirst == 0 && m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func scoredChunk(id, text, source string, score float32) knowledge.ScoredChunk {
	return knowledge.ScoredChunk{
		Chunk: knowledge.Chunk{ID: id, Text: text, SourceID: source},
		Score: score,
	}
}

func testConfig() Config {
	return Config{
		TopK:            4,
		MaxContextChars: 6000,
		Retry:           RetryConfig{MaxRetries: 1, InitialInterval: 1, MaxInterval: 1},
	}
}

func newTestRetriever(t interface{ Fatalf(string, ...any) }, cfg Config, rw *mockRewriter, emb *mockEmbedder, st *mockStore, gen *mockGenerator) *Retriever {
	condenser := NewCondenser(rw, 12, log.NewNop())
	r, err := NewRetriever(cfg, condenser, emb, st, gen, log.NewNop())
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	return r
}

func historyOf(texts ...string) []Turn {
	var turns []Turn
	for i, text := range texts {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Text: text})
	}
	return turns
}

func joinSources(sources []string) string {
	return strings.Join(sources, ",")
}
