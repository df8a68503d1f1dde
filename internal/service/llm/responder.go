package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studydesk/internal/domain"
	"studydesk/internal/domain/models"
	domainllm "studydesk/internal/domain/services/llm"
)

// Kind names a generation flavor.
type Kind string

const (
	KindSummary     Kind = "summary"
	KindExplanation Kind = "explanation"
	KindExercise    Kind = "exercise"
	KindSolution    Kind = "solution"
	KindChat        Kind = "chat"
)

var kinds = []interface{}{KindSummary, KindExplanation, KindExercise, KindSolution, KindChat}

// degradedNote is embedded at the top of content whenever a real-AI call
// fell back to local generation, so provenance stays visible in the stored
// document or message itself.
const degradedNote = "> **Note:** The AI service was unavailable, so this content was generated locally as a placeholder."

// Request describes one generation: what to produce and from which material.
type Request struct {
	Kind         Kind
	Title        string
	SourceText   string
	Topic        string
	ExerciseType string
	Question     string
	SelectedText string
	Model        string // optional override of the default model
}

// Result is the outcome of a generation, with provenance.
type Result struct {
	Content  string
	AIType   models.AIType
	Model    string
	Degraded bool // true when a real-AI call fell back to simulated
}

// Responder routes generation requests to the configured provider and
// degrades to the simulated provider on any provider error. A degraded
// result is never surfaced as a failure: the caller always gets content,
// tagged with its provenance.
type Responder struct {
	primary        domainllm.Provider // nil when no real provider is configured
	fallback       domainllm.Provider
	defaultModel   string
	simulatedModel string
	logger         *slog.Logger
}

// NewResponder creates a responder. primary may be nil, in which case every
// request is served by the fallback provider.
func NewResponder(
	primary domainllm.Provider,
	fallback domainllm.Provider,
	defaultModel string,
	simulatedModel string,
	logger *slog.Logger,
) *Responder {
	return &Responder{
		primary:        primary,
		fallback:       fallback,
		defaultModel:   defaultModel,
		simulatedModel: simulatedModel,
		logger:         logger,
	}
}

// Respond generates content for the request. The only error condition is an
// invalid request; provider failures degrade to simulated content instead of
// erroring, per the fallback contract.
func (r *Responder) Respond(ctx context.Context, req *Request) (*Result, error) {
	if err := r.validateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	model := req.Model
	if model == "" {
		model = r.defaultModel
	}

	if r.primary != nil && r.primary.SupportsModel(model) {
		resp, err := r.primary.Generate(ctx, &domainllm.GenerateRequest{
			Model:  model,
			System: systemPrompt,
			Prompt: BuildPrompt(req),
		})
		if err == nil {
			return &Result{
				Content: resp.Text,
				AIType:  models.AITypeReal,
				Model:   resp.Model,
			}, nil
		}
		r.logger.Warn("AI call failed, falling back to simulated content",
			"provider", r.primary.Name(),
			"model", model,
			"error", err,
		)
		result := r.simulate(ctx, req)
		result.Content = degradedNote + "\n\n" + result.Content
		result.Degraded = true
		return result, nil
	}

	return r.simulate(ctx, req), nil
}

// simulate serves the request from the fallback provider. The fallback is
// local and effectively infallible; if it still errors, a static template
// stands in.
func (r *Responder) simulate(ctx context.Context, req *Request) *Result {
	content := ""
	resp, err := r.fallback.Generate(ctx, &domainllm.GenerateRequest{
		Model:  r.simulatedModel,
		Prompt: BuildPrompt(req),
	})
	if err != nil {
		r.logger.Error("simulated provider failed", "error", err)
		content = fmt.Sprintf("No content could be generated for %q. Please try again.", req.Title)
	} else {
		content = resp.Text
	}

	if heading := simulatedHeading(req); heading != "" {
		content = heading + "\n\n" + content
	}

	return &Result{
		Content: strings.TrimSpace(content),
		AIType:  models.AITypeSimulated,
		Model:   r.simulatedModel,
	}
}

func (r *Responder) validateRequest(req *Request) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Kind,
			validation.Required,
			validation.In(kinds...),
		),
		validation.Field(&req.Question,
			validation.Required.When(req.Kind == KindChat).Error("a question is required for chat"),
		),
		validation.Field(&req.SourceText,
			validation.Required.When(req.Kind != KindChat).Error("source material is required"),
		),
	)
}
