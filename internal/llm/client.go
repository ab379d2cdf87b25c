// Package llm provides the Genkit-backed model client used for query
// rewriting and grounded answer generation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"docchat/internal/rag"
)

const rewriteSystemPrompt = `Given a chat history and the latest user question which might reference context in the chat history, formulate a standalone question which can be understood without the chat history. Do NOT answer the question, just reformulate it if needed and otherwise return it as is. Do not introduce topics that are absent from the question and the history.`

const answerSystemPrompt = `You are an assistant for question-answering tasks about technical documentation. Use the retrieved context below to answer the question. If the context does not contain the answer, say that you don't know rather than guessing. Keep the answer concise.`

// Client calls a Genkit model for the two LLM stages of a turn. Calls are
// rate limited proactively so bursts of concurrent sessions do not trip
// provider quotas.
type Client struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

var (
	_ rag.Rewriter  = (*Client)(nil)
	_ rag.Generator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithRateLimiter replaces the default limiter (10 rps, burst 30).
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates a Client bound to the given model name.
func NewClient(g *genkit.Genkit, model string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if g == nil {
		return nil, errors.New("genkit instance is required")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		g:       g,
		model:   model,
		limiter: rate.NewLimiter(10, 30),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Rewrite reformulates query into a standalone question using the
// conversation history.
func (c *Client) Rewrite(ctx context.Context, query string, history []rag.Turn) (string, error) {
	resp, err := c.generate(ctx,
		ai.WithSystem(rewriteSystemPrompt),
		ai.WithMessages(rewriteMessages(query, history)...),
	)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return resp.Text(), nil
}

// Generate answers query using the retrieved context chunks. An empty
// context is allowed; the model is instructed to admit ignorance rather
// than fabricate.
func (c *Client) Generate(ctx context.Context, query string, contextChunks []string) (string, error) {
	resp, err := c.generate(ctx,
		ai.WithSystem(answerSystemPrompt),
		ai.WithPrompt(answerPrompt(query, contextChunks)),
	)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return resp.Text(), nil
}

// rewriteMessages lays out the conversation for the rewrite model: the
// history in order, then the new question as the final user message.
func rewriteMessages(query string, history []rag.Turn) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case rag.RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(turn.Text)))
		default:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(turn.Text)))
		}
	}
	return append(messages, ai.NewUserMessage(ai.NewTextPart(query)))
}

// answerPrompt assembles the grounded QA prompt. Chunks appear in rank
// order ahead of the question.
func answerPrompt(query string, contextChunks []string) string {
	var prompt strings.Builder
	if len(contextChunks) > 0 {
		prompt.WriteString("Context:\n\n")
		for _, chunk := range contextChunks {
			prompt.WriteString(chunk)
			prompt.WriteString("\n\n")
		}
	}
	prompt.WriteString("Question: ")
	prompt.WriteString(query)
	return prompt.String()
}

func (c *Client) generate(ctx context.Context, opts ...ai.GenerateOption) (*ai.ModelResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	// Temperature 0 keeps rewrites and grounded answers deterministic.
	all := append([]ai.GenerateOption{
		ai.WithModelName(c.model),
		ai.WithConfig(map[string]any{"temperature": 0.0}),
	}, opts...)

	resp, err := genkit.Generate(ctx, c.g, all...)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
