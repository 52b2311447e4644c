package adapter

import "context"

// TextRequest is a single-turn text generation request
type TextRequest struct {
	// System is the fixed instruction constraining the output
	System string
	// Prompt is the user message
	Prompt string
	// MaxTokens bounds the output length
	MaxTokens int32
	// Temperature controls randomness; keep it low for near-deterministic output
	Temperature float32
}

// LLM is the provider-neutral text generation interface used for report narratives
type LLM interface {
	// GenerateText returns the generated text. An empty string with nil error is
	// possible and must be handled by the caller.
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}
