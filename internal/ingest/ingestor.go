package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docchat/internal/knowledge"
)

// embedBatchSize bounds how many chunks are embedded and written per round
// trip. Large documentation trees produce thousands of chunks; batching
// keeps embedding requests within provider limits.
const embedBatchSize = 50

// Embedder produces embeddings for a batch of texts.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter persists chunks with their embeddings.
type ChunkWriter interface {
	Add(ctx context.Context, chunks []knowledge.Chunk, embeddings [][]float32) error
}

// Stats summarizes an ingest run.
type Stats struct {
	Pages  int
	Chunks int
}

// Ingestor runs the load, split, embed, store pipeline.
type Ingestor struct {
	splitter *Splitter
	embedder Embedder
	writer   ChunkWriter
	logger   *slog.Logger
}

// NewIngestor creates an Ingestor.
func NewIngestor(splitter *Splitter, embedder Embedder, writer ChunkWriter, logger *slog.Logger) (*Ingestor, error) {
	if splitter == nil {
		return nil, errors.New("splitter is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if writer == nil {
		return nil, errors.New("chunk writer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		splitter: splitter,
		embedder: embedder,
		writer:   writer,
		logger:   logger,
	}, nil
}

// Ingest splits docs into chunks and writes them with embeddings in
// batches. Chunk IDs are deterministic (source URL plus chunk index), so
// re-ingesting the same tree updates chunks in place instead of
// duplicating them.
func (i *Ingestor) Ingest(ctx context.Context, docs []Document) (Stats, error) {
	var chunks []knowledge.Chunk
	for _, doc := range docs {
		for n, text := range i.splitter.Split(doc.Text) {
			chunks = append(chunks, knowledge.Chunk{
				ID:       fmt.Sprintf("%s#%d", doc.SourceID, n),
				Text:     text,
				SourceID: doc.SourceID,
			})
		}
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for n, c := range batch {
			texts[n] = c.Text
		}

		embeddings, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return Stats{}, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}
		if err := i.writer.Add(ctx, batch, embeddings); err != nil {
			return Stats{}, fmt.Errorf("store batch at offset %d: %w", start, err)
		}

		i.logger.Debug("ingested batch", "offset", start, "size", len(batch))
	}

	stats := Stats{Pages: len(docs), Chunks: len(chunks)}
	i.logger.Info("ingest complete", "pages", stats.Pages, "chunks", stats.Chunks)
	return stats, nil
}
