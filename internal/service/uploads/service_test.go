package uploads

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"studydesk/internal/domain"
	"studydesk/internal/domain/models"
	domainllm "studydesk/internal/domain/services/llm"
	"studydesk/internal/repository/sqlite"
	"studydesk/internal/service/documents"
	"studydesk/internal/service/extract"
	"studydesk/internal/service/library"
	"studydesk/internal/service/llm"
	"studydesk/internal/service/llm/providers/simulated"
)

type uploadsFixture struct {
	store     *sqlite.Store
	projector *library.Projector
	service   *Service
	logger    *slog.Logger
}

func newUploadsFixture(t *testing.T) *uploadsFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Seed(); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	projector := library.NewProjector(store, logger)
	extractor := extract.NewRegistry(logger)
	return &uploadsFixture{
		store:     store,
		projector: projector,
		service:   NewService(store, projector, extractor, logger),
		logger:    logger,
	}
}

func TestIngestTextFile(t *testing.T) {
	f := newUploadsFixture(t)

	content := []byte("The mitochondria is the powerhouse of the cell.")
	file, err := f.service.Ingest(context.Background(), "biology.txt", content, "bio")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if file.ID == "" {
		t.Error("ingested file has no id")
	}
	if file.Type != models.FileTypeText {
		t.Errorf("type = %q, want txt", file.Type)
	}
	if file.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", file.Size, len(content))
	}
	if file.Content != string(content) {
		t.Errorf("content = %q", file.Content)
	}
	if file.Preview == "" {
		t.Error("preview not generated")
	}
	if file.UploadedAt.IsZero() {
		t.Error("uploaded_at not stamped")
	}

	proj := f.projector.Project("bio")
	if proj == nil || proj.Files[file.ID] == nil {
		t.Fatal("file not mirrored into project")
	}
	if proj.Files[file.ID].FileName != "biology.txt" {
		t.Errorf("mirror name = %q, want original verbatim", proj.Files[file.ID].FileName)
	}
}

func TestIngestRequiresName(t *testing.T) {
	f := newUploadsFixture(t)

	_, err := f.service.Ingest(context.Background(), "", []byte("content"), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Ingest() error = %v, want ErrValidation", err)
	}
}

func TestIngestUnsupportedTypeStillStores(t *testing.T) {
	f := newUploadsFixture(t)

	file, err := f.service.Ingest(context.Background(), "data.xyz", []byte{0x00, 0x01}, "")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if file.Type != models.FileTypeUnknown {
		t.Errorf("type = %q, want unknown", file.Type)
	}
	if !strings.Contains(file.Content, "Could not extract text") {
		t.Errorf("placeholder content missing: %q", file.Content)
	}
	if f.service.Get(file.ID) == nil {
		t.Error("unsupported file must still be retrievable")
	}
}

func TestDeleteRemovesFileAndMirror(t *testing.T) {
	f := newUploadsFixture(t)

	file, err := f.service.Ingest(context.Background(), "notes.txt", []byte("text"), "bio")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	f.service.Delete(file.ID, "bio")

	if f.service.Get(file.ID) != nil {
		t.Error("file still retrievable after delete")
	}
	if f.projector.Project("bio").Files[file.ID] != nil {
		t.Error("mirror still present after delete")
	}

	f.service.Delete("never-existed", "bio") // no-op, must not panic
}

// failingProvider simulates a reachable provider whose calls fail.
type failingProvider struct{}

func (p *failingProvider) Name() string              { return "anthropic" }
func (p *failingProvider) SupportsModel(string) bool { return true }

func (p *failingProvider) Generate(context.Context, *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	return nil, errors.New("connection refused")
}

// TestUploadToSummaryFlow walks the main user journey: upload material,
// generate a summary while the AI service is down, and verify the stored
// document is complete, marked simulated, and retrievable.
func TestUploadToSummaryFlow(t *testing.T) {
	f := newUploadsFixture(t)
	ctx := context.Background()

	file, err := f.service.Ingest(ctx, "photosynthesis.txt",
		[]byte("Photosynthesis converts light energy into chemical energy."), "bio")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	responder := llm.NewResponder(&failingProvider{}, simulated.NewProvider(),
		"claude-test", "simulated-study", f.logger)
	result, err := responder.Respond(ctx, &llm.Request{
		Kind:       llm.KindSummary,
		Title:      "photosynthesis",
		SourceText: file.Content,
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !result.Degraded || result.AIType != models.AITypeSimulated {
		t.Fatalf("expected degraded simulated result, got %+v", result)
	}

	registry := documents.NewRegistry(f.store, f.projector, f.logger)
	saved, err := registry.Save(&models.Document{
		Title:       "Summary - photosynthesis",
		Type:        models.DocumentTypeSummary,
		Content:     result.Content,
		SourceFiles: []models.SourceFileRef{{Name: file.Name, Type: string(file.Type)}},
		AIType:      result.AIType,
	}, "bio")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := registry.Get(saved.ID)
	if got == nil {
		t.Fatal("summary not retrievable after save")
	}
	if got.AIType != models.AITypeSimulated {
		t.Errorf("ai type = %q, want simulated", got.AIType)
	}
	if !strings.Contains(got.Content, "The AI service was unavailable") {
		t.Error("stored content missing the provenance note")
	}
	if len(got.SourceFiles) != 1 || got.SourceFiles[0].Name != "photosynthesis.txt" {
		t.Errorf("source file refs lost: %+v", got.SourceFiles)
	}

	proj := f.projector.Project("bio")
	if proj == nil || proj.Docs[saved.ID] == nil || proj.Files[file.ID] == nil {
		t.Error("project library should mirror both the upload and the summary")
	}
}
