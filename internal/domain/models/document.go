package models

import (
	"time"
)

// DocumentType classifies generated study documents.
type DocumentType string

const (
	DocumentTypeSummary     DocumentType = "summary"
	DocumentTypeExplanation DocumentType = "explanation"
	DocumentTypeExercise    DocumentType = "exercise"
	DocumentTypeSolution    DocumentType = "solution"
)

// DocumentTypes lists every valid document type, for validation.
var DocumentTypes = []interface{}{
	DocumentTypeSummary,
	DocumentTypeExplanation,
	DocumentTypeExercise,
	DocumentTypeSolution,
}

// AIType records the provenance of generated content.
type AIType string

const (
	AITypeReal      AIType = "real"
	AITypeSimulated AIType = "simulated"
)

// SourceFileRef identifies an uploaded file a document was generated from.
type SourceFileRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Document is a generated or user-edited study document.
//
// ParentExerciseID on a solution document is a weak reference: the exercise
// it points at may have been deleted since (solutions outlive exercises).
type Document struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Type             DocumentType    `json:"type"`
	Content          string          `json:"content"` // lightweight markup
	ExerciseType     string          `json:"exercise_type,omitempty"`
	Solutions        string          `json:"solutions,omitempty"`
	HasSolutions     bool            `json:"has_solutions,omitempty"`
	SourceFiles      []SourceFileRef `json:"source_files,omitempty"`
	SelectedTopic    string          `json:"selected_topic,omitempty"`
	ParentExerciseID string          `json:"parent_exercise_id,omitempty"`
	AIType           AIType          `json:"ai_type,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
