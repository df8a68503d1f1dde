package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"studydesk/internal/domain"
	"studydesk/internal/domain/models"
	domainllm "studydesk/internal/domain/services/llm"
	"studydesk/internal/service/llm/providers/simulated"
)

// stubProvider supports every model and answers (or fails) on demand.
type stubProvider struct {
	name string
	text string
	err  error
}

func (p *stubProvider) Name() string                { return p.name }
func (p *stubProvider) SupportsModel(_ string) bool { return true }

func (p *stubProvider) Generate(_ context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domainllm.GenerateResponse{Text: p.text, Model: req.Model}, nil
}

func newTestResponder(primary domainllm.Provider) *Responder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResponder(primary, simulated.NewProvider(), "claude-test", "simulated-study", logger)
}

func TestRespondWithWorkingProvider(t *testing.T) {
	responder := newTestResponder(&stubProvider{name: "anthropic", text: "real answer"})

	result, err := responder.Respond(context.Background(), &Request{
		Kind:       KindSummary,
		Title:      "Algebra",
		SourceText: "matrices",
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if result.AIType != models.AITypeReal {
		t.Errorf("ai type = %q, want real", result.AIType)
	}
	if result.Degraded {
		t.Error("working provider flagged as degraded")
	}
	if result.Content != "real answer" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestRespondDegradesOnProviderFailure(t *testing.T) {
	responder := newTestResponder(&stubProvider{name: "anthropic", err: errors.New("api down")})

	result, err := responder.Respond(context.Background(), &Request{
		Kind:       KindSummary,
		Title:      "Algebra",
		SourceText: "matrices",
	})
	if err != nil {
		t.Fatalf("provider failure must degrade, not error: %v", err)
	}
	if result.AIType != models.AITypeSimulated {
		t.Errorf("ai type = %q, want simulated", result.AIType)
	}
	if !result.Degraded {
		t.Error("degraded flag not set")
	}
	if !strings.HasPrefix(result.Content, degradedNote) {
		t.Errorf("content missing provenance note:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "# Summary: Algebra") {
		t.Errorf("content missing simulated heading:\n%s", result.Content)
	}
	if result.Model != "simulated-study" {
		t.Errorf("model = %q, want simulated-study", result.Model)
	}
}

func TestRespondWithoutPrimarySimulatesSilently(t *testing.T) {
	responder := newTestResponder(nil)

	result, err := responder.Respond(context.Background(), &Request{
		Kind:       KindExercise,
		Title:      "Algebra",
		SourceText: "matrices",
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if result.AIType != models.AITypeSimulated {
		t.Errorf("ai type = %q, want simulated", result.AIType)
	}
	if result.Degraded {
		t.Error("no-primary path is not a degradation")
	}
	if strings.Contains(result.Content, degradedNote) {
		t.Error("no-primary path must not carry the degraded note")
	}
	if !strings.Contains(result.Content, "# Exercises: Algebra") {
		t.Errorf("content missing simulated heading:\n%s", result.Content)
	}
}

func TestRespondValidation(t *testing.T) {
	responder := newTestResponder(nil)

	tests := []struct {
		name string
		req  *Request
	}{
		{"missing kind", &Request{SourceText: "text"}},
		{"unknown kind", &Request{Kind: "poem", SourceText: "text"}},
		{"chat without question", &Request{Kind: KindChat, SourceText: "text"}},
		{"summary without source", &Request{Kind: KindSummary, Title: "Algebra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responder.Respond(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Respond() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		contains []string
	}{
		{
			name: "summary with topic",
			req:  &Request{Kind: KindSummary, Title: "Algebra", SourceText: "src", Topic: "matrices"},
			contains: []string{
				`"Algebra"`,
				`"matrices"`,
				"src",
			},
		},
		{
			name: "exercise defaults to mixed",
			req:  &Request{Kind: KindExercise, Title: "Algebra", SourceText: "src"},
			contains: []string{
				"(mixed)",
				"Do not include solutions",
			},
		},
		{
			name: "chat with selection and context",
			req:  &Request{Kind: KindChat, Question: "why?", SourceText: "ctx", SelectedText: "sel"},
			contains: []string{
				"sel",
				"ctx",
				"Question: why?",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(tt.req)
			for _, want := range tt.contains {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q:\n%s", want, prompt)
				}
			}
		})
	}
}

func TestTruncateSource(t *testing.T) {
	long := strings.Repeat("a", maxSourceChars+100)
	got := truncateSource(long)
	if len(got) >= len(long) {
		t.Error("oversized source not truncated")
	}
	if !strings.HasSuffix(got, "[material truncated]") {
		t.Error("truncation marker missing")
	}

	short := "fits fine"
	if truncateSource(short) != short {
		t.Error("short source must pass through untouched")
	}
}
