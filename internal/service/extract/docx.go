package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"studydesk/internal/domain/models"
)

// docxConverter extracts text from DOCX files. A .docx is a zip container;
// the body text lives in word/document.xml as runs of <w:t> elements grouped
// into <w:p> paragraphs.
type docxConverter struct{}

// NewDocxConverter creates a converter for .docx files.
func NewDocxConverter() Converter {
	return &docxConverter{}
}

func (c *docxConverter) Name() string {
	return "docx"
}

func (c *docxConverter) FileType() models.FileType {
	return models.FileTypeDocx
}

func (c *docxConverter) SupportedExtensions() []string {
	return []string{".docx"}
}

func (c *docxConverter) Convert(ctx context.Context, filename string, content []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("docx container has no word/document.xml")
	}

	body, err := document.Open()
	if err != nil {
		return nil, fmt.Errorf("open document body: %w", err)
	}
	defer body.Close()

	text, err := extractDocxText(body)
	if err != nil {
		return nil, fmt.Errorf("parse document body: %w", err)
	}

	return &Result{
		Type: models.FileTypeDocx,
		Text: text,
	}, nil
}

// extractDocxText walks the XML token stream collecting the text of every
// w:t element and emitting a newline at each paragraph end.
func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
