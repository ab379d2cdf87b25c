package rag

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/log"
)

func TestCondenseEmptyHistory(t *testing.T) {
	t.Parallel()

	rw := &mockRewriter{output: "should not be used"}
	c := NewCondenser(rw, 12, log.NewNop())

	got := c.Condense(context.Background(), "What is enclave attestation?", nil)

	if got != "What is enclave attestation?" {
		t.Errorf("Condense() = %q, want original query", got)
	}
	if rw.calls != 0 {
		t.Errorf("rewriter called %d times with empty history, want 0", rw.calls)
	}
}

func TestCondenseRewritesWithHistory(t *testing.T) {
	t.Parallel()

	rw := &mockRewriter{output: "How do I configure enclave attestation?"}
	c := NewCondenser(rw, 12, log.NewNop())

	history := historyOf(
		"What is enclave attestation?",
		"Attestation proves an enclave's identity to a remote party.",
	)
	got := c.Condense(context.Background(), "How do I configure it?", history)

	if got != "How do I configure enclave attestation?" {
		t.Errorf("Condense() = %q, want rewritten query", got)
	}
	if rw.calls != 1 {
		t.Errorf("rewriter called %d times, want 1", rw.calls)
	}
	if rw.lastQuery != "How do I configure it?" {
		t.Errorf("rewriter received query %q", rw.lastQuery)
	}
	if len(rw.lastHistory) != 2 {
		t.Errorf("rewriter received %d history entries, want 2", len(rw.lastHistory))
	}
}

func TestCondenseBoundsHistoryWindow(t *testing.T) {
	t.Parallel()

	rw := &mockRewriter{output: "standalone"}
	c := NewCondenser(rw, 4, log.NewNop())

	history := historyOf("q1", "a1", "q2", "a2", "q3", "a3")
	c.Condense(context.Background(), "next", history)

	if len(rw.lastHistory) != 4 {
		t.Fatalf("rewriter received %d history entries, want 4", len(rw.lastHistory))
	}
	// Most recent entries win.
	if rw.lastHistory[0].Text != "q2" || rw.lastHistory[3].Text != "a3" {
		t.Errorf("rewriter received window [%q..%q], want [q2..a3]",
			rw.lastHistory[0].Text, rw.lastHistory[3].Text)
	}
}

func TestCondenseFallsBackOnError(t *testing.T) {
	t.Parallel()

	rw := &mockRewriter{err: errors.New("model unavailable")}
	c := NewCondenser(rw, 12, log.NewNop())

	got := c.Condense(context.Background(), "original question", historyOf("q", "a"))

	if got != "original question" {
		t.Errorf("Condense() = %q, want original query on rewrite error", got)
	}
}

func TestCondenseFallsBackOnEmptyOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
	}{
		{name: "empty string", output: ""},
		{name: "whitespace only", output: "  \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := &mockRewriter{output: tt.output}
			c := NewCondenser(rw, 12, log.NewNop())

			got := c.Condense(context.Background(), "original question", historyOf("q", "a"))
			if got != "original question" {
				t.Errorf("Condense() = %q, want original query", got)
			}
		})
	}
}

func TestCondenseTrimsRewriterOutput(t *testing.T) {
	t.Parallel()

	rw := &mockRewriter{output: "  standalone query \n"}
	c := NewCondenser(rw, 12, log.NewNop())

	got := c.Condense(context.Background(), "q", historyOf("q", "a"))
	if got != "standalone query" {
		t.Errorf("Condense() = %q, want trimmed output", got)
	}
}
