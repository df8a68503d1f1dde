package library

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"studydesk/internal/domain/models"
)

// docFrontmatter is the YAML metadata header emitted at the top of every
// exported document.
type docFrontmatter struct {
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	UpdatedAt string `yaml:"updated_at"`
}

// RenderDocumentMarkdown renders a document mirror as markdown: YAML
// frontmatter, a title heading, then the body verbatim.
func RenderDocumentMarkdown(doc *models.DocMirror) string {
	meta := docFrontmatter{
		Title:     doc.Title,
		Type:      string(doc.Type),
		UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
	}

	var b strings.Builder
	header, err := yaml.Marshal(meta)
	if err == nil {
		b.WriteString("---\n")
		b.Write(header)
		b.WriteString("---\n\n")
	}
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	b.WriteString(doc.Content)
	if !strings.HasSuffix(doc.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// chatTranscript is the JSON export shape of a chat mirror.
type chatTranscript struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	UpdatedAt time.Time        `json:"updated_at"`
	Messages  []models.Message `json:"messages"`
}

// RenderChatJSON renders a chat mirror as a pretty-printed JSON transcript.
func RenderChatJSON(chat *models.ChatMirror) string {
	transcript := chatTranscript{
		ID:        chat.ID,
		Title:     chat.Title,
		UpdatedAt: chat.UpdatedAt,
		Messages:  chat.Messages,
	}
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// fileExport is the JSON export shape of a file mirror: metadata plus the
// extracted content.
type fileExport struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      models.FileType `json:"type"`
	Size      int64           `json:"size"`
	UpdatedAt time.Time       `json:"updated_at"`
	Content   string          `json:"content"`
}

// RenderFileJSON renders a file mirror as pretty-printed JSON.
func RenderFileJSON(file *models.FileMirror) string {
	export := fileExport{
		ID:        file.ID,
		Name:      file.Name,
		Type:      file.Type,
		Size:      file.Size,
		UpdatedAt: file.UpdatedAt,
		Content:   file.Content,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
