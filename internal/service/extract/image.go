package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"studydesk/internal/domain/models"
)

var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageConverter stores images as data URIs instead of extracted text.
type imageConverter struct{}

// NewImageConverter creates a converter for common image formats.
func NewImageConverter() Converter {
	return &imageConverter{}
}

func (c *imageConverter) Name() string {
	return "image"
}

func (c *imageConverter) FileType() models.FileType {
	return models.FileTypeImage
}

func (c *imageConverter) SupportedExtensions() []string {
	exts := make([]string, 0, len(imageMIMETypes))
	for ext := range imageMIMETypes {
		exts = append(exts, ext)
	}
	return exts
}

func (c *imageConverter) Convert(ctx context.Context, filename string, content []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := imageMIMETypes[ext]
	if !ok {
		return nil, fmt.Errorf("unrecognized image extension %q", ext)
	}

	encoded := base64.StdEncoding.EncodeToString(content)
	return &Result{
		Type:    models.FileTypeImage,
		Text:    fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
		Preview: fmt.Sprintf("[image: %s]", filepath.Base(filename)),
	}, nil
}
