package llm

import (
	"fmt"
	"strings"
)

// systemPrompt frames every generation request.
const systemPrompt = "You are a study assistant. You produce clear, well-structured study material in markdown, grounded strictly in the material the user provides."

// maxSourceChars bounds how much extracted text is inlined into a prompt.
const maxSourceChars = 12000

// BuildPrompt renders the prompt template for a generation request.
func BuildPrompt(req *Request) string {
	source := truncateSource(req.SourceText)

	switch req.Kind {
	case KindSummary:
		topic := ""
		if req.Topic != "" {
			topic = fmt.Sprintf(" Focus on the topic %q.", req.Topic)
		}
		return fmt.Sprintf(
			"Summarize the following study material titled %q.%s Structure the summary with headings and keep it faithful to the source.\n\n%s",
			req.Title, topic, source,
		)

	case KindExplanation:
		return fmt.Sprintf(
			"Explain the following study material titled %q in plain language, as if teaching it to a student seeing it for the first time. Work through the concepts in order.\n\n%s",
			req.Title, source,
		)

	case KindExercise:
		exerciseType := req.ExerciseType
		if exerciseType == "" {
			exerciseType = "mixed"
		}
		return fmt.Sprintf(
			"Create practice exercises (%s) for the following study material titled %q. Number each exercise. Do not include solutions.\n\n%s",
			exerciseType, req.Title, source,
		)

	case KindSolution:
		return fmt.Sprintf(
			"Provide worked solutions for the following exercises. Answer each one in order, showing the reasoning.\n\n%s",
			source,
		)

	case KindChat:
		var b strings.Builder
		if req.SelectedText != "" {
			fmt.Fprintf(&b, "The user selected this passage:\n\n%s\n\n", truncateSource(req.SelectedText))
		}
		if source != "" {
			fmt.Fprintf(&b, "Context material:\n\n%s\n\n", source)
		}
		fmt.Fprintf(&b, "Question: %s", req.Question)
		return b.String()

	default:
		return source
	}
}

// simulatedHeading returns the markdown heading placed above locally
// generated fallback content.
func simulatedHeading(req *Request) string {
	switch req.Kind {
	case KindSummary:
		return fmt.Sprintf("# Summary: %s", req.Title)
	case KindExplanation:
		return fmt.Sprintf("# Explanation: %s", req.Title)
	case KindExercise:
		return fmt.Sprintf("# Exercises: %s", req.Title)
	case KindSolution:
		return fmt.Sprintf("# Solutions: %s", req.Title)
	default:
		return ""
	}
}

func truncateSource(text string) string {
	if len(text) <= maxSourceChars {
		return text
	}
	return text[:maxSourceChars] + "\n\n[material truncated]"
}
