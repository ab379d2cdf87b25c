package testutil

import (
	"context"
	"hash/fnv"
	"math"
)

// DeterministicEmbedder produces stable pseudo-embeddings from text: the
// same text always yields the same unit vector, and different texts yield
// (with overwhelming probability) different vectors. Ranking tests can rely
// on a query embedding matching its chunk's embedding exactly.
type DeterministicEmbedder struct {
	Dim int
}

// NewDeterministicEmbedder creates an embedder emitting dim-sized vectors.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	return &DeterministicEmbedder{Dim: dim}
}

// Embed maps text to its deterministic unit vector.
func (e *DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

// EmbedBatch embeds each text independently.
func (e *DeterministicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *DeterministicEmbedder) vector(text string) []float32 {
	// Seed a tiny xorshift generator from the text hash so every
	// component is reproducible.
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 1
	}

	vec := make([]float32, e.Dim)
	var norm float64
	for i := range vec {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		// Map to [-1, 1).
		vec[i] = float32(int64(state)) / float32(math.MaxInt64)
		norm += float64(vec[i]) * float64(vec[i])
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
