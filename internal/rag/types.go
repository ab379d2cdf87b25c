package rag

import (
	"context"

	"docchat/internal/knowledge"
)

// Role identifies the speaker of a conversation turn.
type Role string

// Valid turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversation exchange entry. Immutable once appended to a
// history.
type Turn struct {
	Role Role
	Text string
}

// Answer is the result of one completed turn: the generated answer text and
// the distinct source IDs of the chunks that grounded it, in rank order.
// Sources is empty when the answer was generated without retrieved context.
type Answer struct {
	Text    string
	Sources []string
}

// ChunkStore performs similarity search over one fixed collection.
// Implemented by knowledge.Store and knowledge.MemoryStore.
type ChunkStore interface {
	Search(ctx context.Context, embedding []float32, k int) ([]knowledge.ScoredChunk, error)
}

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Rewriter rewrites a context-dependent query into a standalone one,
// conditioned on prior turns.
type Rewriter interface {
	Rewrite(ctx context.Context, query string, history []Turn) (string, error)
}

// Generator produces an answer for a query grounded in the given context
// chunks, which arrive in rank order.
type Generator interface {
	Generate(ctx context.Context, query string, contextChunks []string) (string, error)
}
