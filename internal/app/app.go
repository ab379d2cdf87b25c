// Package app wires configuration, storage, models, and the retrieval
// pipeline into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"docchat/db"
	"docchat/internal/config"
	"docchat/internal/knowledge"
	"docchat/internal/llm"
	"docchat/internal/log"
	"docchat/internal/observability"
	"docchat/internal/rag"
	"docchat/internal/session"
)

// ChunkStore is the storage surface the application needs: writes for
// ingestion, similarity search for retrieval, and maintenance operations.
// Implemented by knowledge.Store and knowledge.MemoryStore.
type ChunkStore interface {
	Add(ctx context.Context, chunks []knowledge.Chunk, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, k int) ([]knowledge.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	DeleteCollection(ctx context.Context) error
}

// App holds the wired application components.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Store     ChunkStore
	Embedder  *knowledge.Embedder
	LLM       *llm.Client
	Retriever *rag.Retriever
	Sessions  *session.Manager
	Metrics   *observability.Metrics

	pool *pgxpool.Pool // nil when the memory store is used
}

// New builds the application from configuration. The configuration is
// validated up front so a bad deployment fails at startup, not on the
// first turn.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = log.New(log.Config{})
	}

	a := &App{Config: cfg, Logger: logger}

	if err := a.setupStore(ctx); err != nil {
		return nil, err
	}
	if err := a.setupAI(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.setupPipeline(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("application initialized",
		"store", cfg.Store,
		"collection", cfg.Collection,
		"model", cfg.ModelName,
	)
	return a, nil
}

func (a *App) setupStore(ctx context.Context) error {
	switch a.Config.Store {
	case config.StoreMemory:
		a.Store = knowledge.NewMemoryStore()
		return nil

	case config.StorePgvector:
		if err := db.Migrate(a.Config.PostgresURL()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		pool, err := pgxpool.New(ctx, a.Config.PostgresConnectionString())
		if err != nil {
			return fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("ping database: %w", err)
		}
		a.pool = pool
		a.Store = knowledge.NewStore(pool, a.Config.Collection, a.Logger)
		return nil

	default:
		return fmt.Errorf("unknown store %q", a.Config.Store)
	}
}

func (a *App) setupAI(ctx context.Context) error {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return errors.New("initializing genkit with googleai provider")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, a.Config.EmbedderModel)
	if embedder == nil {
		return fmt.Errorf("embedder %q not found", a.Config.EmbedderModel)
	}
	a.Embedder = knowledge.NewEmbedder(embedder)

	client, err := llm.NewClient(g, a.Config.ModelName, a.Logger)
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}
	a.LLM = client
	return nil
}

func (a *App) setupPipeline() error {
	a.Metrics = observability.NewMetrics("docchat")

	// HistoryWindow counts turn pairs; the condenser sees individual turns.
	condenser := rag.NewCondenser(a.LLM, a.Config.HistoryWindow*2, a.Logger)

	retriever, err := rag.NewRetriever(rag.Config{
		TopK:            a.Config.TopK,
		MaxContextChars: a.Config.MaxContextChars,
		GroundedOnly:    a.Config.GroundedOnly,
		Retry:           rag.DefaultRetryConfig(),
	}, condenser, a.Embedder, a.Store, a.LLM, a.Logger)
	if err != nil {
		return fmt.Errorf("create retriever: %w", err)
	}
	a.Retriever = retriever.WithObserver(a.Metrics)

	sessions, err := session.NewManager(a.Retriever, a.Logger)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}
	a.Sessions = sessions
	return nil
}

// Ready reports whether the application's storage dependency is reachable.
func (a *App) Ready(ctx context.Context) error {
	if a.pool != nil {
		return a.pool.Ping(ctx)
	}
	return nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
