package rag

import (
	"context"
	"log/slog"
	"strings"
)

// Condenser rewrites a user query into a standalone, history-independent
// query suitable for similarity search: it resolves pronouns and ellipsis
// against prior turns without introducing topics absent from the
// conversation.
//
// Condensation never fails a turn. Any rewriting problem falls back to the
// identity transform, which is also the zero-cost path when history is
// empty.
type Condenser struct {
	rewriter Rewriter
	window   int // max history entries passed to the rewriter
	logger   *slog.Logger
}

// NewCondenser creates a Condenser. window bounds the number of most recent
// history entries the rewriter sees; values below 1 fall back to 12
// (six turn pairs).
func NewCondenser(rewriter Rewriter, window int, logger *slog.Logger) *Condenser {
	if window < 1 {
		window = 12
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Condenser{
		rewriter: rewriter,
		window:   window,
		logger:   logger,
	}
}

// Condense returns the standalone form of query given the prior turns.
//
// With empty history the input query is returned unchanged: there is nothing
// to disambiguate and a rewrite would only add cost and drift risk. With
// non-empty history the rewriter runs over a bounded recent window; if it
// errors or returns a degenerate result, the original query is returned
// instead of failing the turn.
func (c *Condenser) Condense(ctx context.Context, query string, history []Turn) string {
	if len(history) == 0 {
		return query
	}

	recent := history
	if len(recent) > c.window {
		recent = recent[len(recent)-c.window:]
	}

	rewritten, err := c.rewriter.Rewrite(ctx, query, recent)
	if err != nil {
		c.logger.Warn("query rewrite failed, using original query", "error", err)
		return query
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		c.logger.Warn("query rewrite returned empty output, using original query")
		return query
	}

	c.logger.Debug("condensed query",
		"original_len", len(query),
		"condensed_len", len(rewritten),
		"history_entries", len(recent),
	)
	return rewritten
}
