package rag

import (
	"errors"
	"fmt"
)

// Kind classifies a failed turn. Exactly one kind is attached to every error
// that leaves this package, so callers can map failures to API results
// without inspecting collaborator error types.
type Kind string

// Turn failure kinds.
const (
	// KindEmbedding: the embedder was unreachable or errored and the
	// configuration requires grounded answers.
	KindEmbedding Kind = "embedding"

	// KindRetrieval: the chunk store was unreachable. Zero hits is NOT a
	// retrieval failure; an empty result set is a valid outcome.
	KindRetrieval Kind = "retrieval"

	// KindGeneration: answer generation failed after the bounded retry.
	KindGeneration Kind = "generation"
)

// TurnError is a failed turn tagged with its Kind. It wraps the underlying
// cause for logging; the cause never needs to be inspected by callers.
type TurnError struct {
	Kind Kind
	Err  error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// turnError constructs a TurnError wrapping err.
func turnError(kind Kind, err error) *TurnError {
	return &TurnError{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from err. ok is false when err is not a
// turn failure from this package.
func KindOf(err error) (Kind, bool) {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
