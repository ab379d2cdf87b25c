package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process chunk store using brute-force cosine
// similarity. It backs the "memory" store configuration for development
// and is the store of choice in unit tests.
//
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	chunk     Chunk
	embedding []float32
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add stores chunks with their embeddings. Existing chunks with the same ID
// are replaced.
func (s *MemoryStore) Add(_ context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d != %d",
			len(chunks), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chunk := range chunks {
		replaced := false
		for j := range s.entries {
			if s.entries[j].chunk.ID == chunk.ID {
				s.entries[j] = memoryEntry{chunk: chunk, embedding: embeddings[i]}
				replaced = true
				break
			}
		}
		if !replaced {
			s.entries = append(s.entries, memoryEntry{chunk: chunk, embedding: embeddings[i]})
		}
	}
	return nil
}

// Search returns the top-K chunks by cosine similarity, descending.
func (s *MemoryStore) Search(_ context.Context, embedding []float32, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid top K: %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ScoredChunk, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, ScoredChunk{
			Chunk: e.chunk,
			Score: cosineSimilarity(embedding, e.embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// DeleteCollection removes every stored chunk. Used by re-ingestion.
func (s *MemoryStore) DeleteCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
