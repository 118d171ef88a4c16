package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/database"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
	"github.com/yi-nology/blender_board/pkg/validator"

	"gorm.io/gorm"
)

// Upload field names.
const (
	FieldFile          = "file"
	FieldPreviewFile   = "previewFile"
	FieldThumbnailFile = "thumbnailFile"
)

const apiPrefix = "/api/"

// Options carries the per-kind upload ceilings. Zero means the default.
type Options struct {
	ImageMaxSize int64
	ModelMaxSize int64
}

// Service orchestrates the media lifecycle: staged files, signature checks,
// metadata transactions and file cleanup.
type Service struct {
	db    *gorm.DB
	logic *Logic
	store storage.Storage
	opts  Options
}

func NewService(db *gorm.DB, store storage.Storage, opts Options) *Service {
	return &Service{
		db:    db,
		logic: NewLogic(db),
		store: store,
		opts:  opts,
	}
}

// Logic exposes the persistence rules.
func (s *Service) Logic() *Logic { return s.logic }

// Storage returns the file store the service writes to.
func (s *Service) Storage() storage.Storage { return s.store }

// Close releases the database handle.
func (s *Service) Close() error {
	return database.Close(s.db)
}

// ImageUploadRules are the multipart fields accepted by image create/update.
func (s *Service) ImageUploadRules() []upload.Rule {
	return []upload.Rule{
		{Field: FieldFile, Kind: storage.KindImages, UploadRule: validator.ImageRule(s.opts.ImageMaxSize)},
	}
}

// ModelUploadRules are the multipart fields accepted by model create/update.
// Thumbnails are images but live next to the model files.
func (s *Service) ModelUploadRules() []upload.Rule {
	return []upload.Rule{
		{Field: FieldFile, Kind: storage.KindModels, UploadRule: validator.ModelRule(s.opts.ModelMaxSize)},
		{Field: FieldPreviewFile, Kind: storage.KindModels, UploadRule: validator.PreviewRule(s.opts.ModelMaxSize)},
		{Field: FieldThumbnailFile, Kind: storage.KindModels, UploadRule: validator.ThumbnailRule(s.opts.ImageMaxSize)},
	}
}

// --------------------- Lifecycle helpers ---------------------

// discardOnError drops every staged file of batch when *errp is set.
func discardOnError(batch *upload.Batch, errp *error) {
	if *errp != nil && batch != nil {
		batch.Discard()
	}
}

// checkSignature verifies that a staged file's content matches its name,
// using the signature table of kind.
func (s *Service) checkSignature(file *upload.StagedFile, kind storage.Kind) error {
	path, err := s.store.Resolve(file.Kind, file.StoredName)
	if err != nil {
		return fmt.Errorf("resolve staged %s: %w", file.Field, err)
	}
	ok, err := validator.HasValidFileSignature(kind, path, file.OriginalName)
	if err != nil {
		return fmt.Errorf("read staged %s: %w", file.Field, err)
	}
	if !ok {
		return common.NewSignatureMismatchError(fieldLabel(file.Field))
	}
	return nil
}

func (s *Service) ensureModelsExist(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.logic.FindMissingModelIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return common.NewConflictError(missing)
	}
	return nil
}

// removeFiles deletes files no committed record references any more.
// Failures only leak disk space, so they are logged.
func (s *Service) removeFiles(ctx context.Context, kind storage.Kind, names []string) {
	for _, name := range names {
		if err := s.store.Delete(kind, name, storage.DeleteOptions{IgnoreMissing: true}); err != nil {
			hlog.CtxWarnf(ctx, "remove obsolete %s file %s: %v", kind, name, err)
		}
	}
}

func fieldLabel(field string) string {
	switch field {
	case FieldPreviewFile:
		return "Preview file"
	case FieldThumbnailFile:
		return "Thumbnail file"
	default:
		return "File"
	}
}

func requireFile(batch *upload.Batch) (*upload.StagedFile, error) {
	file := batch.File(FieldFile)
	if file == nil {
		return nil, common.NewValidationError("file is required.")
	}
	return file, nil
}

func mediaBase(fields validator.CreateFields, file *upload.StagedFile) model.MediaBase {
	return model.MediaBase{
		Title:        fields.Title,
		Author:       fields.Author,
		StoredPath:   file.StoredName,
		OriginalName: file.OriginalName,
		MimeType:     mimeTypeOf(file),
		FileSize:     file.Size,
	}
}

func attachment(file *upload.StagedFile) *model.Attachment {
	if file == nil {
		return nil
	}
	return &model.Attachment{
		StoredPath:   file.StoredName,
		OriginalName: file.OriginalName,
		MimeType:     mimeTypeOf(file),
		FileSize:     file.Size,
	}
}

func mimeTypeOf(file *upload.StagedFile) string {
	if file.MimeType == "" {
		return model.DefaultMimeType
	}
	return file.MimeType
}

// updateColumns maps the text fields and a replacement primary file to
// column updates.
func updateColumns(fields validator.UpdateFields, file *upload.StagedFile) map[string]any {
	columns := map[string]any{}
	if fields.Title != nil {
		columns["title"] = *fields.Title
	}
	if fields.Author != nil {
		columns["author"] = *fields.Author
	}
	if file != nil {
		columns["stored_path"] = file.StoredName
		columns["original_name"] = file.OriginalName
		columns["mime_type"] = mimeTypeOf(file)
		columns["file_size"] = file.Size
	}
	return columns
}

// --------------------- URLs ---------------------

func downloadURL(kind storage.Kind, id uint) string {
	return fmt.Sprintf("%s%s/%d/download", apiPrefix, kind, id)
}

// versionedURL appends the stored name so browsers refetch after a replace.
func versionedURL(kind storage.Kind, id uint, endpoint, storedName string) *string {
	u := fmt.Sprintf("%s%s/%d/%s?v=%s", apiPrefix, kind, id, endpoint, url.QueryEscape(storedName))
	return &u
}

// isWebPreviewable reports whether browsers can render the file directly.
func isWebPreviewable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}

func notFound(kind storage.Kind) error {
	if kind == storage.KindModels {
		return common.NewNotFoundError("Model not found.")
	}
	return common.NewNotFoundError("Image not found.")
}

func isStorageMiss(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath)
}
