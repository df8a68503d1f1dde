package models

import (
	"time"
)

// FileType classifies uploaded files by how their content was extracted.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDocx    FileType = "docx"
	FileTypeText    FileType = "txt"
	FileTypeImage   FileType = "image"
	FileTypeUnknown FileType = "unknown"
)

// UploadedFile is a user upload with its extracted text (or a data URI for
// images). Immutable once created except for metadata refresh on re-save.
type UploadedFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       FileType  `json:"type"`
	Size       int64     `json:"size"`
	Content    string    `json:"content"` // extracted text, or data URI for images
	Preview    string    `json:"preview"`
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
