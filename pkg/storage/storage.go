// Package storage maps media records to the files backing them.
//
// Every stored file lives in a per-kind upload directory under a
// server-generated name. Lookups resolve a (kind, storedName) pair to an
// absolute path and refuse anything that would escape that directory.
package storage

import (
	"errors"
	"os"
)

// Kind is one of the two parallel media categories.
type Kind string

const (
	KindImages Kind = "images"
	KindModels Kind = "models"
)

// Kinds returns every media kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindImages, KindModels}
}

// Valid reports whether k is a known media kind.
func (k Kind) Valid() bool {
	return k == KindImages || k == KindModels
}

var (
	ErrInvalidPath = errors.New("invalid stored file path")
	ErrNotFound    = errors.New("stored file not found")
	ErrUnknownKind = errors.New("unknown media kind")
)

// DeleteOptions tunes Delete.
type DeleteOptions struct {
	// IgnoreMissing treats missing files and unresolvable names as already gone.
	IgnoreMissing bool
}

// Storage defines the file operations the media lifecycle relies on.
type Storage interface {
	// EnsureDirs creates every kind directory. Safe to call repeatedly.
	EnsureDirs() error

	// UploadDir returns the absolute directory for a kind.
	UploadDir(kind Kind) string

	// Resolve maps a stored name to an absolute path inside the kind directory.
	Resolve(kind Kind, storedName string) (string, error)

	// Create opens a fresh file with a generated name for the given extension.
	// The caller must close the file.
	Create(kind Kind, ext string) (*os.File, string, error)

	// Open opens a stored file for reading. Returns ErrNotFound if it is absent.
	Open(kind Kind, storedName string) (*os.File, error)

	// Exists reports whether a stored file is present.
	Exists(kind Kind, storedName string) (bool, error)

	// Delete removes a stored file.
	Delete(kind Kind, storedName string, opts DeleteOptions) error

	// Type returns the storage type identifier.
	Type() string
}
