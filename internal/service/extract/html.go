package extract

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"studydesk/internal/domain/models"
)

// htmlConverter converts HTML pages to markdown so they store and display
// like any other text extraction.
type htmlConverter struct {
	converter *md.Converter
}

// NewHTMLConverter creates a converter for .html and .htm files.
func NewHTMLConverter() Converter {
	return &htmlConverter{
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Name() string {
	return "html"
}

func (c *htmlConverter) FileType() models.FileType {
	return models.FileTypeText
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Convert(ctx context.Context, filename string, content []byte) (*Result, error) {
	markdown, err := c.converter.ConvertString(string(content))
	if err != nil {
		return nil, fmt.Errorf("convert html to markdown: %w", err)
	}

	return &Result{
		Type: models.FileTypeText,
		Text: markdown,
	}, nil
}
