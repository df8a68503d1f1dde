package simulated

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"

	domainllm "studydesk/internal/domain/services/llm"
)

// Provider is a local stand-in for a real LLM provider. It generates filler
// text without any network access or API key, and backs the fallback path
// when a real provider call degrades.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new simulated provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "simulated"
}

// SupportsModel returns true if the model name starts with "simulated-".
// Example models: "simulated-fast", "simulated-study"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "simulated-")
}

// Generate produces locally generated placeholder prose: a few paragraphs
// followed by a short bullet list, so the output reads like study material
// rather than one text blob.
func (p *Provider) Generate(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var builder strings.Builder
	for i := 0; i < 2; i++ {
		builder.WriteString(p.generator.Paragraph(3, 5))
		builder.WriteString("\n\n")
	}
	builder.WriteString("Key points:\n")
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&builder, "- %s\n", p.generator.Sentence(5, 12))
	}

	text := builder.String()
	return &domainllm.GenerateResponse{
		Text:         text,
		Model:        req.Model,
		OutputTokens: len(strings.Fields(text)),
	}, nil
}
