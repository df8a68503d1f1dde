package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"studydesk/internal/domain"
	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
	"studydesk/internal/service/extract"
	"studydesk/internal/service/library"
)

// Service manages the uploaded-files collection: extraction on ingest,
// persistence, and the library mirror.
type Service struct {
	store     repositories.Store
	projector *library.Projector
	extractor *extract.Registry
	logger    *slog.Logger

	now func() time.Time
}

// NewService creates a new uploads service.
func NewService(
	store repositories.Store,
	projector *library.Projector,
	extractor *extract.Registry,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		projector: projector,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// Ingest extracts text from an upload and persists the resulting file
// entity. Extraction never fails outright: unreadable files are stored with
// a placeholder content string.
func (s *Service) Ingest(ctx context.Context, name string, content []byte, projectID string) (*models.UploadedFile, error) {
	if err := validation.Validate(name, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: file name: %v", domain.ErrValidation, err)
	}

	result := s.extractor.Extract(ctx, name, content)
	file := &models.UploadedFile{
		Name:    name,
		Type:    result.Type,
		Size:    int64(len(content)),
		Content: result.Text,
		Preview: result.Preview,
	}
	return s.Save(file, projectID)
}

// Save upserts an uploaded file and mirrors it into the library when a
// project id is supplied. Files are immutable once created apart from the
// metadata refresh a re-save performs.
func (s *Service) Save(file *models.UploadedFile, projectID string) (*models.UploadedFile, error) {
	if file.UploadedAt.IsZero() {
		file.UploadedAt = s.now()
	}

	rec, err := models.ToRecord(file)
	if err != nil {
		return nil, fmt.Errorf("%w: encode file: %v", domain.ErrValidation, err)
	}
	if file.UpdatedAt.IsZero() {
		delete(rec, "updated_at")
	}

	stored, persisted := s.store.Upsert(repositories.CollectionFiles, rec)

	saved := &models.UploadedFile{}
	if err := models.FromRecord(stored, saved); err != nil {
		return nil, fmt.Errorf("decode stored file: %w", err)
	}

	if projectID != "" {
		s.projector.UpsertFile(projectID, saved)
	}

	s.logger.Debug("file saved",
		"id", saved.ID,
		"name", saved.Name,
		"type", saved.Type,
		"persisted", persisted,
	)

	if !persisted {
		return saved, fmt.Errorf("%w: uploaded_files", domain.ErrStorage)
	}
	return saved, nil
}

// Get returns the uploaded file by id, or nil when unknown.
func (s *Service) Get(id string) *models.UploadedFile {
	for _, rec := range s.store.GetAll(repositories.CollectionFiles) {
		if rec.ID() != id {
			continue
		}
		file := &models.UploadedFile{}
		if err := models.FromRecord(rec, file); err != nil {
			s.logger.Warn("skipping undecodable file", "id", id, "error", err)
			return nil
		}
		return file
	}
	return nil
}

// Delete removes the file and, when a project id is supplied, its library
// mirror. Deleting an unknown id is a no-op.
func (s *Service) Delete(id, projectID string) {
	s.store.Remove(repositories.CollectionFiles, id)
	if projectID != "" {
		s.projector.DeleteFile(projectID, id)
	}
}

// List returns all uploaded files in storage order.
func (s *Service) List() []models.UploadedFile {
	recs := s.store.GetAll(repositories.CollectionFiles)
	files := make([]models.UploadedFile, 0, len(recs))
	for _, rec := range recs {
		file := models.UploadedFile{}
		if err := models.FromRecord(rec, &file); err != nil {
			s.logger.Warn("skipping undecodable file", "id", rec.ID(), "error", err)
			continue
		}
		files = append(files, file)
	}
	return files
}
