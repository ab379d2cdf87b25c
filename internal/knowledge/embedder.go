package knowledge

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// Embedder wraps a Genkit ai.Embedder behind the plain text-in, vector-out
// interface the retrieval pipeline consumes.
type Embedder struct {
	embedder ai.Embedder
}

// NewEmbedder creates an Embedder backed by the given Genkit embedder.
func NewEmbedder(embedder ai.Embedder) *Embedder {
	return &Embedder{embedder: embedder}
}

// Embed maps text to a fixed-dimension vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in one request. The result vector at
// index i corresponds to texts[i].
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]*ai.Document, len(texts))
	for i, text := range texts {
		input[i] = ai.DocumentFromText(text, nil)
	}

	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts",
			len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for text %d", i)
		}
		vectors[i] = emb.Embedding
	}
	return vectors, nil
}
