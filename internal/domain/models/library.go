package models

import (
	"time"
)

// ContentType is the rendered form of a library mirror entry.
type ContentType string

const (
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeJSON     ContentType = "json"
)

// Project groups documents, chats and files under a project key in the
// library mirror. The mirror is read-derived and write-through: every
// mutation to a flat collection that supplies a project id also mutates the
// matching project entry. It is never the system of record.
type Project struct {
	Name  string                 `json:"name"`
	Docs  map[string]*DocMirror  `json:"docs"`
	Chats map[string]*ChatMirror `json:"chats"`
	Files map[string]*FileMirror `json:"files"`
}

// Empty reports whether the project holds no mirrored entries at all.
func (p *Project) Empty() bool {
	return len(p.Docs) == 0 && len(p.Chats) == 0 && len(p.Files) == 0
}

// DocMirror is the library projection of a document.
type DocMirror struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        DocumentType `json:"type"`
	Content     string       `json:"content"`
	FileName    string       `json:"file_name"`
	ContentType ContentType  `json:"content_type"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ChatMirror is the library projection of a chat session.
type ChatMirror struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Messages    []Message   `json:"messages"`
	FileName    string      `json:"file_name"`
	ContentType ContentType `json:"content_type"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// FileMirror is the library projection of an uploaded file. FileName keeps
// the original upload name verbatim.
type FileMirror struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	Size      int64     `json:"size"`
	Content   string    `json:"content"`
	FileName  string    `json:"file_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExportArtifact is one downloadable file produced from a project. Artifacts
// are downloaded one by one; there is no archive step.
type ExportArtifact struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
	MIMEType string `json:"mime_type"`
	Folder   string `json:"folder"`
}
