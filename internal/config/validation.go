package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate validates configuration values. It is called once at startup;
// a misconfigured similarity metric or collection is a hard error here,
// never a per-query concern.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Model configuration
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	// Retrieval configuration
	if c.Collection == "" {
		return fmt.Errorf("%w: collection cannot be empty", ErrInvalidCollection)
	}
	if c.TopK < 1 || c.TopK > 10 {
		return fmt.Errorf("%w: must be between 1 and 10, got %d", ErrInvalidTopK, c.TopK)
	}
	if c.SimilarityMetric != MetricCosine {
		return fmt.Errorf("%w: %q is not supported, chunks are indexed with %q",
			ErrInvalidMetric, c.SimilarityMetric, MetricCosine)
	}
	if c.MaxContextChars < 500 {
		return fmt.Errorf("%w: max_context_chars must be at least 500, got %d",
			ErrInvalidContextBudget, c.MaxContextChars)
	}
	if c.HistoryWindow < 1 || c.HistoryWindow > 50 {
		return fmt.Errorf("%w: must be between 1 and 50, got %d",
			ErrInvalidHistoryWindow, c.HistoryWindow)
	}

	// Storage configuration
	validStores := []string{StorePgvector, StoreMemory}
	if !slices.Contains(validStores, c.Store) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidStore, c.Store, validStores)
	}
	if c.Store == StorePgvector {
		if c.PostgresHost == "" {
			return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("%w: must be between 1 and 65535, got %d",
				ErrInvalidPostgresPort, c.PostgresPort)
		}
		if c.PostgresDBName == "" {
			return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
		}
	}

	// Ingest configuration
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d",
			ErrInvalidChunking, c.ChunkOverlap)
	}

	return nil
}
