package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"studydesk/internal/domain/models"
)

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// pdfConverter extracts plain text from PDF files.
type pdfConverter struct{}

// NewPDFConverter creates a converter for .pdf files.
func NewPDFConverter() Converter {
	return &pdfConverter{}
}

func (c *pdfConverter) Name() string {
	return "pdf"
}

func (c *pdfConverter) FileType() models.FileType {
	return models.FileTypePDF
}

func (c *pdfConverter) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (c *pdfConverter) Convert(ctx context.Context, filename string, content []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, plain); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	text := extraneousWhitespace.ReplaceAllString(builder.String(), " ")
	return &Result{
		Type: models.FileTypePDF,
		Text: strings.TrimSpace(text),
	}, nil
}
