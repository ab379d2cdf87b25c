package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docchat/internal/knowledge"
)

// fallbackAnswer is returned when the model produces no usable text for an
// otherwise successful turn.
const fallbackAnswer = "I could not produce an answer for that question. Please try rephrasing it."

// Config holds the retrieval pipeline parameters.
type Config struct {
	// TopK is the number of chunks requested from the store per query.
	TopK int

	// MaxContextChars caps the total length of chunk text included in the
	// generation context. Chunks are admitted in rank order until the
	// budget is exhausted.
	MaxContextChars int

	// GroundedOnly fails a turn when no context can be retrieved because
	// embedding failed, instead of degrading to an ungrounded answer.
	GroundedOnly bool

	// Retry controls the generation retry policy.
	Retry RetryConfig
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.TopK < 1 || c.TopK > 10 {
		return fmt.Errorf("top_k must be between 1 and 10, got %d", c.TopK)
	}
	if c.MaxContextChars < 500 {
		return fmt.Errorf("max_context_chars must be at least 500, got %d", c.MaxContextChars)
	}
	return nil
}

// Observer receives per-stage latencies. A nil Observer disables
// instrumentation.
type Observer interface {
	ObserveRetrievalLatency(d time.Duration)
	ObserveGenerationLatency(d time.Duration)
	ObserveChunksRetrieved(n int)
}

// Retriever runs the full turn pipeline: condense the query against the
// conversation history, embed the standalone query, fetch the most similar
// chunks, and generate a grounded answer.
type Retriever struct {
	cfg       Config
	condenser *Condenser
	embedder  Embedder
	store     ChunkStore
	generator Generator
	observer  Observer
	logger    *slog.Logger
}

// WithObserver attaches stage instrumentation to a Retriever.
func (r *Retriever) WithObserver(observer Observer) *Retriever {
	r.observer = observer
	return r
}

// NewRetriever creates a Retriever. All collaborators are required.
func NewRetriever(
	cfg Config,
	condenser *Condenser,
	embedder Embedder,
	store ChunkStore,
	generator Generator,
	logger *slog.Logger,
) (*Retriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retriever config: %w", err)
	}
	if condenser == nil {
		return nil, errors.New("condenser is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if store == nil {
		return nil, errors.New("chunk store is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		cfg:       cfg,
		condenser: condenser,
		embedder:  embedder,
		store:     store,
		generator: generator,
		logger:    logger,
	}, nil
}

// Retrieve condenses query against history and returns the most similar
// chunks in descending score order.
func (r *Retriever) Retrieve(ctx context.Context, query string, history []Turn) ([]string, []string, error) {
	standalone := r.condenser.Condense(ctx, query, history)

	embedding, err := r.embedder.Embed(ctx, standalone)
	if err != nil {
		return nil, nil, turnError(KindEmbedding, fmt.Errorf("embed query: %w", err))
	}

	scored, err := r.store.Search(ctx, embedding, r.cfg.TopK)
	if err != nil {
		return nil, nil, turnError(KindRetrieval, fmt.Errorf("search chunks: %w", err))
	}

	texts, sources := r.buildContext(scored)
	return texts, sources, nil
}

// Answer runs a full turn and returns the generated answer with its
// source attribution.
//
// Embedding failure degrades to an empty context unless GroundedOnly is
// set, in which case the turn fails. Retrieval failure always fails the
// turn. Generation failure retries per the retry policy before failing.
func (r *Retriever) Answer(ctx context.Context, query string, history []Turn) (Answer, error) {
	start := time.Now()

	standalone := r.condenser.Condense(ctx, query, history)

	var (
		contextChunks []string
		sources       []string
	)

	retrievalStart := time.Now()
	embedding, err := r.embedder.Embed(ctx, standalone)
	if err != nil {
		if r.cfg.GroundedOnly {
			return Answer{}, turnError(KindEmbedding, fmt.Errorf("embed query: %w", err))
		}
		r.logger.Warn("query embedding failed, answering without retrieved context", "error", err)
	} else {
		scored, err := r.store.Search(ctx, embedding, r.cfg.TopK)
		if err != nil {
			return Answer{}, turnError(KindRetrieval, fmt.Errorf("search chunks: %w", err))
		}
		contextChunks, sources = r.buildContext(scored)
		if r.observer != nil {
			r.observer.ObserveRetrievalLatency(time.Since(retrievalStart))
			r.observer.ObserveChunksRetrieved(len(contextChunks))
		}
	}

	generationStart := time.Now()
	text, err := generateWithRetry(ctx, r.cfg.Retry, func(ctx context.Context) (string, error) {
		return r.generator.Generate(ctx, standalone, contextChunks)
	})
	if err != nil {
		return Answer{}, turnError(KindGeneration, err)
	}
	if r.observer != nil {
		r.observer.ObserveGenerationLatency(time.Since(generationStart))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = fallbackAnswer
	}

	r.logger.Debug("turn answered",
		"context_chunks", len(contextChunks),
		"sources", len(sources),
		"elapsed", time.Since(start),
	)
	return Answer{Text: text, Sources: sources}, nil
}

// buildContext selects chunks for the generation context in rank order
// within the character budget, and returns the deduplicated sources of
// exactly the chunks that made it in. A top-ranked chunk larger than the
// whole budget is truncated rather than dropped so the best match is never
// lost.
func (r *Retriever) buildContext(scored []knowledge.ScoredChunk) ([]string, []string) {
	var (
		texts   []string
		sources []string
		seen    = make(map[string]bool)
		used    int
	)

	for i, sc := range scored {
		text := sc.Text
		if used+len(text) > r.cfg.MaxContextChars {
			if i == 0 {
				text = text[:r.cfg.MaxContextChars]
			} else {
				break
			}
		}
		texts = append(texts, text)
		used += len(text)
		if sc.SourceID != "" && !seen[sc.SourceID] {
			seen[sc.SourceID] = true
			sources = append(sources, sc.SourceID)
		}
	}

	return texts, sources
}
