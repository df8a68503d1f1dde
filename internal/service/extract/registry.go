package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"studydesk/internal/domain/models"
)

const previewLength = 200

// Result is the outcome of extracting text from an upload. For images, Text
// holds a data URI instead of extracted text.
type Result struct {
	Type    models.FileType
	Text    string
	Preview string
}

// Converter extracts text from one family of file formats.
type Converter interface {
	Name() string
	FileType() models.FileType
	SupportedExtensions() []string
	Convert(ctx context.Context, filename string, content []byte) (*Result, error)
}

// Registry routes uploads to converters by file extension.
//
// Extraction never fails from the caller's point of view: converter errors
// become a placeholder result carrying an error note as its text, which the
// caller stores verbatim like any other extraction.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
	logger     *slog.Logger
}

// NewRegistry creates a registry with the standard converters registered.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		converters: make(map[string]Converter),
		logger:     logger,
	}

	r.Register(NewTextConverter())
	r.Register(NewPDFConverter())
	r.Register(NewDocxConverter())
	r.Register(NewHTMLConverter())
	r.Register(NewImageConverter())

	return r
}

// Register adds a converter under each of its extensions. Extensions are
// normalized to lowercase with a leading dot.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range c.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = c
	}
}

// Converter returns the converter registered for the extension, or nil.
func (r *Registry) Converter(ext string) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(ext)]
}

// Extract converts an upload to text. It always returns a usable result:
// unsupported types and converter failures degrade to a placeholder whose
// text states what went wrong.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) *Result {
	ext := filepath.Ext(filename)
	converter := r.Converter(ext)
	if converter == nil {
		r.logger.Warn("no converter for file type", "filename", filename, "ext", ext)
		text := fmt.Sprintf("[Could not extract text from %s: unsupported file type %q]", filename, ext)
		return &Result{
			Type:    models.FileTypeUnknown,
			Text:    text,
			Preview: MakePreview(text),
		}
	}

	result, err := converter.Convert(ctx, filename, content)
	if err != nil {
		r.logger.Warn("extraction failed",
			"filename", filename,
			"converter", converter.Name(),
			"error", err,
		)
		text := fmt.Sprintf("[Could not extract text from %s: %v]", filename, err)
		return &Result{
			Type:    converter.FileType(),
			Text:    text,
			Preview: MakePreview(text),
		}
	}

	if result.Preview == "" {
		result.Preview = MakePreview(result.Text)
	}
	return result
}

// MakePreview truncates text to a short rune-safe preview.
func MakePreview(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + "..."
}
