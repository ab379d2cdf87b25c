package knowledge

// Chunk represents an immutable unit of indexed knowledge.
// Created once at ingestion, never mutated.
type Chunk struct {
	ID       string // unique identifier, derived from source and position
	Text     string // chunk text content
	SourceID string // stable provenance identifier (originating document URL)
}

// ScoredChunk is a single search result with its similarity score.
type ScoredChunk struct {
	Chunk
	Score float32 // cosine similarity, higher is more similar
}
