// Package upload stages multipart file fields into the upload directories.
//
// Each accepted file is checked against its field rule (extension allowlist
// and size ceiling) before any byte is written, then streamed to a generated
// name. Content signatures are not checked here.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/validator"
)

const defaultMimeType = "application/octet-stream"

// formOverhead covers multipart framing and the text fields of one request.
const formOverhead = 64 * 1024

// RequestLimit is the largest request body rules can accept: every file
// field at its ceiling plus the form overhead.
func RequestLimit(rules []Rule) int64 {
	limit := int64(formOverhead)
	for _, r := range rules {
		limit += r.MaxFileSize
	}
	return limit
}

// Rule binds a form field to the kind directory and constraints it uses.
type Rule struct {
	Field string
	Kind  storage.Kind
	validator.UploadRule
}

// StagedFile is a file written to its final directory but not yet owned by
// any record.
type StagedFile struct {
	Field        string
	Kind         storage.Kind
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
}

// Batch holds the files and text values of one request.
type Batch struct {
	store  storage.Storage
	values map[string][]string

	mu    sync.Mutex
	files map[string]*StagedFile
	kept  bool
}

// NewBatch returns an empty batch over values.
func NewBatch(store storage.Storage, values map[string][]string) *Batch {
	if values == nil {
		values = map[string][]string{}
	}
	return &Batch{store: store, values: values, files: map[string]*StagedFile{}}
}

// Values returns the non-file form values.
func (b *Batch) Values() map[string][]string {
	return b.values
}

// File returns the staged file for field, or nil.
func (b *Batch) File(field string) *StagedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files[field]
}

// Files returns every staged file ordered by field name.
func (b *Batch) Files() []*StagedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*StagedFile, 0, len(b.files))
	for _, f := range b.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Empty reports whether no file was staged.
func (b *Batch) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files) == 0
}

// Keep marks the staged files as owned by a committed record.
func (b *Batch) Keep() {
	b.mu.Lock()
	b.kept = true
	b.mu.Unlock()
}

// Discard removes every staged file unless Keep was called. Safe to call
// more than once.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kept {
		return
	}
	for field, f := range b.files {
		if err := b.store.Delete(f.Kind, f.StoredName, storage.DeleteOptions{IgnoreMissing: true}); err != nil {
			hlog.Warnf("discard staged %s file %s: %v", field, f.StoredName, err)
		}
		delete(b.files, field)
	}
}

func (b *Batch) add(f *StagedFile) {
	b.mu.Lock()
	b.files[f.Field] = f
	b.mu.Unlock()
}

// Ingest validates and stages every file of form. On error all files staged
// so far are removed.
func Ingest(ctx context.Context, store storage.Storage, form *multipart.Form, rules []Rule) (*Batch, error) {
	if form == nil {
		return NewBatch(store, nil), nil
	}
	batch := NewBatch(store, form.Value)

	byField := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byField[r.Field] = r
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	// Validate every header first so nothing is written for a request that
	// is bound to fail.
	for _, field := range fields {
		headers := form.File[field]
		rule, ok := byField[field]
		if !ok {
			return nil, common.NewValidationError("Unexpected file field: " + field)
		}
		if len(headers) > 1 {
			return nil, common.NewValidationError("Only one file is allowed for field: " + field)
		}
		if len(headers) == 0 {
			continue
		}
		if err := checkHeader(rule, headers[0]); err != nil {
			return nil, err
		}
	}

	for _, field := range fields {
		if len(form.File[field]) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			batch.Discard()
			return nil, err
		}
		staged, err := stage(store, byField[field], form.File[field][0])
		if err != nil {
			batch.Discard()
			return nil, err
		}
		batch.add(staged)
	}
	return batch, nil
}

func checkHeader(rule Rule, fh *multipart.FileHeader) error {
	if _, err := rule.ValidateExtension(fh.Filename); err != nil {
		return common.NewValidationError(capitalize(err.Error()))
	}
	if err := rule.ValidateFileSize(fh.Size); err != nil {
		return common.NewPayloadTooLargeError()
	}
	return nil
}

func stage(store storage.Storage, rule Rule, fh *multipart.FileHeader) (*StagedFile, error) {
	ext, err := rule.ValidateExtension(fh.Filename)
	if err != nil {
		return nil, common.NewValidationError(capitalize(err.Error()))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", rule.Field, err)
	}
	defer src.Close()

	dst, name, err := store.Create(rule.Kind, ext)
	if err != nil {
		return nil, fmt.Errorf("stage upload %s: %w", rule.Field, err)
	}

	// The header size is client-controlled; bound the copy itself too.
	limit := rule.MaxFileSize
	written, copyErr := io.Copy(dst, io.LimitReader(src, limit+1))
	closeErr := dst.Close()

	fail := func(err error) (*StagedFile, error) {
		_ = store.Delete(rule.Kind, name, storage.DeleteOptions{IgnoreMissing: true})
		return nil, err
	}
	switch {
	case copyErr != nil:
		return fail(fmt.Errorf("write upload %s: %w", rule.Field, copyErr))
	case closeErr != nil:
		return fail(fmt.Errorf("close upload %s: %w", rule.Field, closeErr))
	case written > limit:
		return fail(common.NewPayloadTooLargeError())
	}

	return &StagedFile{
		Field:        rule.Field,
		Kind:         rule.Kind,
		StoredName:   name,
		OriginalName: fh.Filename,
		MimeType:     detectMimeType(fh, ext),
		Size:         written,
	}, nil
}

func detectMimeType(fh *multipart.FileHeader, ext string) string {
	if ct := strings.TrimSpace(fh.Header.Get("Content-Type")); ct != "" {
		return ct
	}
	if ct := MimeTypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultMimeType
}

// MimeTypeByExtension maps the 3D formats the mime package does not know.
func MimeTypeByExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".glb":
		return "model/gltf-binary"
	case ".gltf":
		return "model/gltf+json"
	case ".stl":
		return "model/stl"
	case ".obj":
		return "model/obj"
	case ".ply", ".fbx", ".blend":
		return defaultMimeType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
