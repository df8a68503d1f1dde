package documents

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studydesk/internal/domain"
	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
	"studydesk/internal/service/library"
)

// Registry is CRUD over the documents collection. Saves normalize identity
// and timestamps, upsert into the store, and forward to the library
// projector when a project id is supplied. Each of those is an independent,
// idempotent step - there is no transaction spanning them.
type Registry struct {
	store     repositories.Store
	projector *library.Projector
	logger    *slog.Logger
}

// NewRegistry creates a new document registry.
func NewRegistry(
	store repositories.Store,
	projector *library.Projector,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		store:     store,
		projector: projector,
		logger:    logger,
	}
}

// Save upserts a document. The returned document carries the stored id and
// timestamps. A storage write failure is reported as domain.ErrStorage with
// the (in-memory) document still returned, so the caller can keep going.
func (r *Registry) Save(doc *models.Document, projectID string) (*models.Document, error) {
	if err := r.validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	rec, err := models.ToRecord(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", domain.ErrValidation, err)
	}
	// The store stamps timestamps itself; zero values must read as absent.
	if doc.CreatedAt.IsZero() {
		delete(rec, "created_at")
	}
	if doc.UpdatedAt.IsZero() {
		delete(rec, "updated_at")
	}

	stored, persisted := r.store.Upsert(repositories.CollectionDocuments, rec)

	saved := &models.Document{}
	if err := models.FromRecord(stored, saved); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}

	if projectID != "" {
		r.projector.UpsertDoc(projectID, saved)
	}

	r.logger.Debug("document saved",
		"id", saved.ID,
		"type", saved.Type,
		"project_id", projectID,
		"persisted", persisted,
	)

	if !persisted {
		return saved, fmt.Errorf("%w: documents", domain.ErrStorage)
	}
	return saved, nil
}

// Get returns the document by id, or nil when unknown. Probing for an id
// that was just deleted is common and is not an error.
func (r *Registry) Get(id string) *models.Document {
	for _, rec := range r.store.GetAll(repositories.CollectionDocuments) {
		if rec.ID() != id {
			continue
		}
		doc := &models.Document{}
		if err := models.FromRecord(rec, doc); err != nil {
			r.logger.Warn("skipping undecodable document", "id", id, "error", err)
			return nil
		}
		return doc
	}
	return nil
}

// Delete removes the document and, when a project id is supplied, its
// library mirror. Both removals are explicit, independent steps; deleting an
// unknown id is a no-op. Solutions referencing the deleted document via
// parent_exercise_id are left untouched.
func (r *Registry) Delete(id, projectID string) {
	r.store.Remove(repositories.CollectionDocuments, id)
	if projectID != "" {
		r.projector.DeleteDoc(projectID, id)
	}
}

// Search returns documents whose title, content or type contains the query,
// case-insensitively. The three fields are OR'd.
func (r *Registry) Search(query string) []models.Document {
	q := strings.ToLower(query)
	var matches []models.Document
	for _, doc := range r.List() {
		if strings.Contains(strings.ToLower(doc.Title), q) ||
			strings.Contains(strings.ToLower(doc.Content), q) ||
			strings.Contains(strings.ToLower(string(doc.Type)), q) {
			matches = append(matches, doc)
		}
	}
	return matches
}

// List returns all documents in storage (insertion) order. Callers sort by
// UpdatedAt themselves when recency matters.
func (r *Registry) List() []models.Document {
	recs := r.store.GetAll(repositories.CollectionDocuments)
	docs := make([]models.Document, 0, len(recs))
	for _, rec := range recs {
		doc := models.Document{}
		if err := models.FromRecord(rec, &doc); err != nil {
			r.logger.Warn("skipping undecodable document", "id", rec.ID(), "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// validateDocument checks the fields a save must not accept.
func (r *Registry) validateDocument(doc *models.Document) error {
	return validation.ValidateStruct(doc,
		validation.Field(&doc.Type,
			validation.Required,
			validation.In(models.DocumentTypes...),
		),
	)
}
