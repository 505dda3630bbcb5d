// Package llm contains the provider adapters for explanation generation.
//
// Each adapter wraps one remote LLM service behind the same Provider
// interface: it builds the provider-specific request from an
// already-constructed prompt, makes exactly one remote call, extracts the
// text payload from the provider's response envelope, and propagates any
// failure to the caller unchanged. Adapters never retry — fallback policy
// belongs to the orchestrator (internal/service), not here.
package llm

import (
	"context"
	"errors"
)

// Failure reasons surfaced to the orchestrator. The current policy treats
// them all identically (try the next provider), but quota exhaustion is
// logged distinctly, so adapters must classify it.
var (
	// ErrQuota marks authentication/quota failures: invalid key, expired
	// billing, or a provider-side 429.
	ErrQuota = errors.New("llm: quota or auth exhausted")

	// ErrEmptyResponse marks a transport-level success whose envelope
	// contained no usable text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Provider is one remote explanation backend.
//
// Explain sends the prompt and returns the generated explanation text.
// The context is honoured for cancellation — if the caller gives up,
// the in-flight HTTP request is torn down rather than left to finish.
type Provider interface {
	Name() string
	Explain(ctx context.Context, promptText string) (string, error)
}
