package validator

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Default upload constraints
const (
	DefaultImageMaxSize = 10 * 1024 * 1024  // 10MiB
	DefaultModelMaxSize = 200 * 1024 * 1024 // 200MiB
)

var (
	ImageExtensions   = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}
	ModelExtensions   = []string{".obj", ".fbx", ".blend", ".glb", ".gltf", ".stl", ".ply"}
	PreviewExtensions = []string{".glb", ".gltf"}
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrFileTooLarge         = errors.New("uploaded file is too large")
)

// UploadRule defines constraints for one file field.
type UploadRule struct {
	AllowedExtensions []string
	MaxFileSize       int64
}

// ValidateExtension checks the lower-cased extension of name against the
// allowlist and returns it.
func (r UploadRule) ValidateExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !slices.Contains(r.AllowedExtensions, ext) {
		shown := ext
		if shown == "" {
			shown = "(none)"
		}
		return ext, fmt.Errorf("%w: %s", ErrUnsupportedExtension, shown)
	}
	return ext, nil
}

// ValidateFileSize checks that size fits the ceiling.
func (r UploadRule) ValidateFileSize(size int64) error {
	if r.MaxFileSize > 0 && size > r.MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// ImageRule is the rule for an image's primary file.
func ImageRule(maxSize int64) UploadRule {
	return UploadRule{AllowedExtensions: ImageExtensions, MaxFileSize: orDefault(maxSize, DefaultImageMaxSize)}
}

// ModelRule is the rule for a model's primary file.
func ModelRule(maxSize int64) UploadRule {
	return UploadRule{AllowedExtensions: ModelExtensions, MaxFileSize: orDefault(maxSize, DefaultModelMaxSize)}
}

// PreviewRule is the rule for a model's web-renderable preview.
func PreviewRule(maxSize int64) UploadRule {
	return UploadRule{AllowedExtensions: PreviewExtensions, MaxFileSize: orDefault(maxSize, DefaultModelMaxSize)}
}

// ThumbnailRule is the rule for a model's static image fallback.
func ThumbnailRule(maxSize int64) UploadRule {
	return UploadRule{AllowedExtensions: ImageExtensions, MaxFileSize: orDefault(maxSize, DefaultImageMaxSize)}
}

func orDefault(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}
