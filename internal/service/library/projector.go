package library

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"studydesk/internal/domain/models"
	"studydesk/internal/domain/repositories"
)

var disallowedFileChars = regexp.MustCompile(`[^a-z0-9\-_]+`)

// SanitizeFileName derives a storable file name stem from a title: the title
// is lowercased and every run of characters outside [a-z0-9-_] collapses to
// a single underscore. "Intro: Chapter 1!" becomes "intro_chapter_1_".
func SanitizeFileName(title string) string {
	return disallowedFileChars.ReplaceAllString(strings.ToLower(title), "_")
}

// Projector maintains the project-grouped library mirror: a write-through
// projection of the flat collections, grouped by project for export. Every
// mutation that carries a project id lands here as well as in its flat
// collection; the mirror is never the system of record.
type Projector struct {
	store  repositories.Store
	logger *slog.Logger

	mu       sync.Mutex
	projects map[string]*models.Project
}

// NewProjector creates a projector over the store's persisted library state.
func NewProjector(store repositories.Store, logger *slog.Logger) *Projector {
	projects := store.Library()
	if projects == nil {
		projects = map[string]*models.Project{}
	}
	return &Projector{
		store:    store,
		logger:   logger,
		projects: projects,
	}
}

// EnsureProject lazily creates and returns the project entry.
func (p *Projector) EnsureProject(projectID string) *models.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensure(projectID)
}

func (p *Projector) ensure(projectID string) *models.Project {
	proj, ok := p.projects[projectID]
	if !ok {
		proj = &models.Project{
			Name:  projectID,
			Docs:  map[string]*models.DocMirror{},
			Chats: map[string]*models.ChatMirror{},
			Files: map[string]*models.FileMirror{},
		}
		p.projects[projectID] = proj
	}
	// Maps may arrive nil after JSON decoding of an older library value.
	if proj.Docs == nil {
		proj.Docs = map[string]*models.DocMirror{}
	}
	if proj.Chats == nil {
		proj.Chats = map[string]*models.ChatMirror{}
	}
	if proj.Files == nil {
		proj.Files = map[string]*models.FileMirror{}
	}
	return proj
}

// Project returns the project entry, or nil when the project id is unknown.
func (p *Projector) Project(projectID string) *models.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projects[projectID]
}

// UpsertDoc mirrors a document into the project entry.
func (p *Projector) UpsertDoc(projectID string, doc *models.Document) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj := p.ensure(projectID)
	proj.Docs[doc.ID] = &models.DocMirror{
		ID:          doc.ID,
		Title:       doc.Title,
		Type:        doc.Type,
		Content:     doc.Content,
		FileName:    SanitizeFileName(doc.Title) + ".md",
		ContentType: models.ContentTypeMarkdown,
		UpdatedAt:   doc.UpdatedAt,
	}
	return p.persist()
}

// UpsertChat mirrors a chat session into the project entry.
func (p *Projector) UpsertChat(projectID string, chat *models.ChatSession) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj := p.ensure(projectID)
	messages := make([]models.Message, len(chat.Messages))
	copy(messages, chat.Messages)
	proj.Chats[chat.ID] = &models.ChatMirror{
		ID:          chat.ID,
		Title:       chat.Title,
		Messages:    messages,
		FileName:    SanitizeFileName(chat.Title) + ".json",
		ContentType: models.ContentTypeJSON,
		UpdatedAt:   chat.UpdatedAt,
	}
	return p.persist()
}

// UpsertFile mirrors an uploaded file into the project entry. The mirror
// keeps the original upload name verbatim.
func (p *Projector) UpsertFile(projectID string, file *models.UploadedFile) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj := p.ensure(projectID)
	proj.Files[file.ID] = &models.FileMirror{
		ID:        file.ID,
		Name:      file.Name,
		Type:      file.Type,
		Size:      file.Size,
		Content:   file.Content,
		FileName:  file.Name,
		UpdatedAt: file.UpdatedAt,
	}
	return p.persist()
}

// DeleteDoc removes a document mirror. Unknown project or id is a no-op.
func (p *Projector) DeleteDoc(projectID, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj, ok := p.projects[projectID]
	if !ok {
		return true
	}
	if _, ok := proj.Docs[id]; !ok {
		return true
	}
	delete(proj.Docs, id)
	return p.persist()
}

// DeleteChat removes a chat mirror. Unknown project or id is a no-op.
func (p *Projector) DeleteChat(projectID, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj, ok := p.projects[projectID]
	if !ok {
		return true
	}
	if _, ok := proj.Chats[id]; !ok {
		return true
	}
	delete(proj.Chats, id)
	return p.persist()
}

// DeleteFile removes a file mirror. Unknown project or id is a no-op.
func (p *Projector) DeleteFile(projectID, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj, ok := p.projects[projectID]
	if !ok {
		return true
	}
	if _, ok := proj.Files[id]; !ok {
		return true
	}
	delete(proj.Files, id)
	return p.persist()
}

// CleanupEmptyProjects removes every project whose docs, chats and files are
// all empty, and returns the count removed. This is the only automatic
// reclamation in the system.
func (p *Projector) CleanupEmptyProjects() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, proj := range p.projects {
		if proj.Empty() {
			delete(p.projects, id)
			removed++
		}
	}
	if removed > 0 {
		p.persist()
		p.logger.Info("empty projects removed", "count", removed)
	}
	return removed
}

// ExportProject renders a project as a flat list of downloadable artifacts:
// markdown for documents, pretty-printed JSON for chats, JSON metadata plus
// content for files. No network I/O and no archiving - each artifact is
// downloaded individually. Returns nil for an unknown project.
func (p *Projector) ExportProject(projectID string) []models.ExportArtifact {
	p.mu.Lock()
	defer p.mu.Unlock()

	proj, ok := p.projects[projectID]
	if !ok {
		return nil
	}

	artifacts := make([]models.ExportArtifact, 0, len(proj.Docs)+len(proj.Chats)+len(proj.Files))
	for _, doc := range proj.Docs {
		artifacts = append(artifacts, models.ExportArtifact{
			FileName: doc.FileName,
			Content:  RenderDocumentMarkdown(doc),
			MIMEType: "text/markdown",
			Folder:   "documents",
		})
	}
	for _, chat := range proj.Chats {
		artifacts = append(artifacts, models.ExportArtifact{
			FileName: chat.FileName,
			Content:  RenderChatJSON(chat),
			MIMEType: "application/json",
			Folder:   "chats",
		})
	}
	for _, file := range proj.Files {
		artifacts = append(artifacts, models.ExportArtifact{
			FileName: file.FileName,
			Content:  RenderFileJSON(file),
			MIMEType: "application/json",
			Folder:   "files",
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if artifacts[i].Folder != artifacts[j].Folder {
			return artifacts[i].Folder < artifacts[j].Folder
		}
		return artifacts[i].FileName < artifacts[j].FileName
	})
	return artifacts
}

// persist writes the mirror through to durable storage. A failed write is
// logged and leaves the in-memory mirror ahead of disk.
func (p *Projector) persist() bool {
	if !p.store.SaveLibrary(p.projects) {
		p.logger.Warn("library mirror write failed, in-memory mirror ahead of disk")
		return false
	}
	return true
}
