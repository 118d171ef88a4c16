package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBasePath = "uploads"

// Local implements Storage on the local filesystem.
type Local struct {
	basePath string
	dirs     map[Kind]string
}

// NewLocal creates the local adapter rooted at basePath and makes sure both
// kind directories exist.
func NewLocal(basePath string) (*Local, error) {
	if basePath == "" {
		basePath = defaultBasePath
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	s := &Local{
		basePath: abs,
		dirs: map[Kind]string{
			KindImages: filepath.Join(abs, string(KindImages)),
			KindModels: filepath.Join(abs, string(KindModels)),
		},
	}
	if err := s.EnsureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureDirs creates the kind directories.
func (s *Local) EnsureDirs() error {
	for _, kind := range Kinds() {
		if err := os.MkdirAll(s.dirs[kind], 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", kind, err)
		}
	}
	return nil
}

// UploadDir returns the absolute directory for kind, or "" for an unknown kind.
func (s *Local) UploadDir(kind Kind) string {
	return s.dirs[kind]
}

// Resolve maps storedName into the kind directory. Names that are empty,
// absolute or climb out with ".." are rejected with ErrInvalidPath.
func (s *Local) Resolve(kind Kind, storedName string) (string, error) {
	base, ok := s.dirs[kind]
	if !ok {
		return "", ErrUnknownKind
	}
	if strings.TrimSpace(storedName) == "" || filepath.IsAbs(storedName) {
		return "", ErrInvalidPath
	}

	target := filepath.Join(base, storedName)
	if !strings.HasPrefix(target, base+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return target, nil
}

// Create opens a new file named {epochMillis}-{uuid}{ext}.
func (s *Local) Create(kind Kind, ext string) (*os.File, string, error) {
	if !kind.Valid() {
		return nil, "", ErrUnknownKind
	}
	name := GenerateName(ext)
	path, err := s.Resolve(kind, name)
	if err != nil {
		return nil, "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("create file: %w", err)
	}
	return f, name, nil
}

// Open opens a stored file for reading.
func (s *Local) Open(kind Kind, storedName string) (*os.File, error) {
	path, err := s.Resolve(kind, storedName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Exists checks if a stored file is present.
func (s *Local) Exists(kind Kind, storedName string) (bool, error) {
	path, err := s.Resolve(kind, storedName)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// Delete removes a stored file.
func (s *Local) Delete(kind Kind, storedName string, opts DeleteOptions) error {
	path, err := s.Resolve(kind, storedName)
	if err != nil {
		if opts.IgnoreMissing && errors.Is(err, ErrInvalidPath) {
			return nil
		}
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			if opts.IgnoreMissing {
				return nil
			}
			return ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Type returns "local" as the storage type identifier.
func (s *Local) Type() string {
	return "local"
}

// BasePath returns the root holding the kind directories.
func (s *Local) BasePath() string {
	return s.basePath
}

// GenerateName builds a collision-free stored name. The extension is
// lower-cased and nothing else from the client ends up in the name.
func GenerateName(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
