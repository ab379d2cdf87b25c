package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// searchTimeout bounds a single vector search so a slow index scan cannot
// block a turn indefinitely.
const searchTimeout = 10 * time.Second

// Store manages document chunks with vector similarity search backed by
// PostgreSQL + pgvector. One Store is scoped to a single named collection;
// every query it issues is filtered to that collection.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	logger     *slog.Logger
}

// NewStore creates a Store scoped to the given collection.
func NewStore(pool *pgxpool.Pool, collection string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:       pool,
		collection: collection,
		logger:     logger,
	}
}

// Collection returns the collection name this store is scoped to.
func (s *Store) Collection() string {
	return s.collection
}

// Add upserts a batch of chunks with their embeddings.
// chunks[i] pairs with embeddings[i]; a length mismatch is a programming
// error and is rejected up front.
func (s *Store) Add(ctx context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d != %d",
			len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	const upsert = `
		INSERT INTO chunks (id, collection, content, source_id, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    source_id = EXCLUDED.source_id,
		    embedding = EXCLUDED.embedding`

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		if len(embeddings[i]) == 0 {
			return fmt.Errorf("empty embedding for chunk %q", chunk.ID)
		}
		vec := pgvector.NewVector(embeddings[i])
		batch.Queue(upsert, chunk.ID, s.collection, chunk.Text, chunk.SourceID, vec)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			s.logger.Warn("closing batch results", "error", err)
		}
	}()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting chunk batch: %w", err)
		}
	}

	s.logger.Debug("added chunks", "count", len(chunks), "collection", s.collection)
	return nil
}

// Search returns the top-K most similar chunks for the query embedding,
// ordered by descending cosine similarity. An empty result is not an error.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error) {
	if len(embedding) == 0 {
		return nil, errors.New("empty query embedding")
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid top K: %d", k)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	// <=> is pgvector's cosine distance operator; similarity = 1 - distance.
	// The metric must match the index (vector_cosine_ops, see migrations).
	const query = `
		SELECT id, content, source_id, 1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE collection = $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(queryCtx, query, vec, s.collection, k)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("vector search timeout: %w", err)
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var sc ScoredChunk
		if err := rows.Scan(&sc.ID, &sc.Text, &sc.SourceID, &sc.Score); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	s.logger.Debug("search complete", "hits", len(results), "k", k)
	return results, nil
}

// Count returns the number of chunks in this store's collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = $1`, s.collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// DeleteCollection removes every chunk in this store's collection.
// Used by re-ingestion and tests.
func (s *Store) DeleteCollection(ctx context.Context) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM chunks WHERE collection = $1`, s.collection)
	if err != nil {
		return fmt.Errorf("deleting collection %q: %w", s.collection, err)
	}
	s.logger.Debug("deleted collection", "collection", s.collection, "rows", tag.RowsAffected())
	return nil
}
