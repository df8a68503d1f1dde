package llm

import (
	"context"
)

// GenerateRequest is a single prompt completion request.
type GenerateRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// GetMaxTokens returns MaxTokens or the given default when unset.
func (r *GenerateRequest) GetMaxTokens(def int) int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return def
}

// GenerateResponse is a completed provider response.
type GenerateResponse struct {
	Text         string
	Model        string
	OutputTokens int
}

// Provider generates AI responses. Implementations route by model name
// prefix.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// SupportsModel returns true if this provider serves the given model.
	SupportsModel(model string) bool

	// Generate produces a complete response for the request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
