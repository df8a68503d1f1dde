package extract

import (
	"context"

	"studydesk/internal/domain/models"
)

// textConverter handles plain-text formats verbatim.
type textConverter struct{}

// NewTextConverter creates a converter for .txt and .md files.
func NewTextConverter() Converter {
	return &textConverter{}
}

func (c *textConverter) Name() string {
	return "text"
}

func (c *textConverter) FileType() models.FileType {
	return models.FileTypeText
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

func (c *textConverter) Convert(ctx context.Context, filename string, content []byte) (*Result, error) {
	text := string(content)
	return &Result{
		Type: models.FileTypeText,
		Text: text,
	}, nil
}
