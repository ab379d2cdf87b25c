package config

import (
	"errors"
	"testing"
)

// validConfig returns a config that passes Validate when GEMINI_API_KEY is set.
func validConfig() *Config {
	return &Config{
		ModelName:        "googleai/gemini-2.5-flash",
		EmbedderModel:    "text-embedding-004",
		Collection:       "docs",
		TopK:             4,
		SimilarityMetric: MetricCosine,
		MaxContextChars:  6000,
		HistoryWindow:    6,
		Store:            StoreMemory,
		ChunkSize:        500,
		ChunkOverlap:     100,
		ListenAddr:       ":8080",
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "empty collection",
			mutate:  func(c *Config) { c.Collection = "" },
			wantErr: ErrInvalidCollection,
		},
		{
			name:    "top K too small",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "top K too large",
			mutate:  func(c *Config) { c.TopK = 11 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "non-cosine metric rejected at startup",
			mutate:  func(c *Config) { c.SimilarityMetric = "l2" },
			wantErr: ErrInvalidMetric,
		},
		{
			name:    "context budget too small",
			mutate:  func(c *Config) { c.MaxContextChars = 100 },
			wantErr: ErrInvalidContextBudget,
		},
		{
			name:    "history window zero",
			mutate:  func(c *Config) { c.HistoryWindow = 0 },
			wantErr: ErrInvalidHistoryWindow,
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Store = "redis" },
			wantErr: ErrInvalidStore,
		},
		{
			name: "pgvector store requires host",
			mutate: func(c *Config) {
				c.Store = StorePgvector
				c.PostgresHost = ""
			},
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name: "pgvector store rejects bad port",
			mutate: func(c *Config) {
				c.Store = StorePgvector
				c.PostgresHost = "localhost"
				c.PostgresPort = 70000
			},
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name: "pgvector store requires db name",
			mutate: func(c *Config) {
				c.Store = StorePgvector
				c.PostgresHost = "localhost"
				c.PostgresPort = 5432
				c.PostgresDBName = ""
			},
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunking,
		},
		{
			name:    "overlap not smaller than chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = 500 },
			wantErr: ErrInvalidChunking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := validConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
	}
}
