// Package media stores admin-uploaded images and returns the URL a product
// or banner should reference.
package media

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"storefront/internal/model"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 << 20

// Image is a validated upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploader stores an image and returns a URL for it.
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// NewImage sniffs the content type of data and checks the upload limits.
func NewImage(name string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, model.ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return Image{}, model.ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, model.ErrInvalidImage
	}

	return Image{Name: filepath.Base(name), ContentType: contentType, Data: data}, nil
}

// extension returns the file extension used for the stored object.
func (img Image) extension() string {
	if ext := strings.ToLower(filepath.Ext(img.Name)); ext != "" {
		return ext
	}
	switch img.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
