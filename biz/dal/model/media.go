package model

import (
	"time"

	"github.com/yi-nology/blender_board/pkg/storage"
)

const DefaultMimeType = "application/octet-stream"

// Media is implemented by every persisted media kind.
type Media interface {
	Kind() storage.Kind
	Base() *MediaBase
	// StoredFiles lists every stored name backing the record.
	StoredFiles() []string
}

// MediaBase holds the columns shared by images and models.
type MediaBase struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"column:title;type:text;not null" json:"title"`
	Author       string    `gorm:"column:author;type:text;not null" json:"author"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
	StoredPath   string    `gorm:"column:stored_path;type:text;not null;default:''" json:"-"`
	OriginalName string    `gorm:"column:original_name;type:text;not null;default:''" json:"originalName"`
	MimeType     string    `gorm:"column:mime_type;type:text;not null;default:'application/octet-stream'" json:"mimeType"`
	FileSize     int64     `gorm:"column:file_size;not null;default:0" json:"fileSize"`
}

// Attachment is the provenance of one stored file.
type Attachment struct {
	StoredPath   string
	OriginalName string
	MimeType     string
	FileSize     int64
}

// Image is an uploaded picture.
type Image struct {
	MediaBase
}

// TableName overrides gorm to use the images table.
func (Image) TableName() string {
	return "images"
}

func (i *Image) Kind() storage.Kind { return storage.KindImages }

func (i *Image) Base() *MediaBase { return &i.MediaBase }

func (i *Image) StoredFiles() []string {
	if i.StoredPath == "" {
		return nil
	}
	return []string{i.StoredPath}
}

// Model is an uploaded 3D model with an optional web preview (.glb/.gltf)
// and an optional static thumbnail. Each optional asset is either fully set
// or fully NULL.
type Model struct {
	MediaBase
	PreviewStoredPath     *string `gorm:"column:preview_stored_path;type:text" json:"-"`
	PreviewOriginalName   *string `gorm:"column:preview_original_name;type:text" json:"-"`
	PreviewMimeType       *string `gorm:"column:preview_mime_type;type:text" json:"-"`
	PreviewFileSize       *int64  `gorm:"column:preview_file_size" json:"-"`
	ThumbnailStoredPath   *string `gorm:"column:thumbnail_stored_path;type:text" json:"-"`
	ThumbnailOriginalName *string `gorm:"column:thumbnail_original_name;type:text" json:"-"`
	ThumbnailMimeType     *string `gorm:"column:thumbnail_mime_type;type:text" json:"-"`
	ThumbnailFileSize     *int64  `gorm:"column:thumbnail_file_size" json:"-"`
}

// TableName overrides gorm to use the models table.
func (Model) TableName() string {
	return "models"
}

func (m *Model) Kind() storage.Kind { return storage.KindModels }

func (m *Model) Base() *MediaBase { return &m.MediaBase }

func (m *Model) StoredFiles() []string {
	var files []string
	if m.StoredPath != "" {
		files = append(files, m.StoredPath)
	}
	if p := m.Preview(); p != nil {
		files = append(files, p.StoredPath)
	}
	if t := m.Thumbnail(); t != nil {
		files = append(files, t.StoredPath)
	}
	return files
}

// Preview returns the preview asset, or nil when any column is unset.
func (m *Model) Preview() *Attachment {
	return attachmentOf(m.PreviewStoredPath, m.PreviewOriginalName, m.PreviewMimeType, m.PreviewFileSize)
}

// Thumbnail returns the thumbnail asset, or nil when any column is unset.
func (m *Model) Thumbnail() *Attachment {
	return attachmentOf(m.ThumbnailStoredPath, m.ThumbnailOriginalName, m.ThumbnailMimeType, m.ThumbnailFileSize)
}

// PreviewColumns returns the column updates that set (or clear, for nil) the preview.
func PreviewColumns(a *Attachment) map[string]any {
	return attachmentColumns("preview_", a)
}

// ThumbnailColumns returns the column updates that set (or clear, for nil) the thumbnail.
func ThumbnailColumns(a *Attachment) map[string]any {
	return attachmentColumns("thumbnail_", a)
}

// SetPreview fills the preview columns of a record that is about to be inserted.
func (m *Model) SetPreview(a *Attachment) {
	m.PreviewStoredPath, m.PreviewOriginalName, m.PreviewMimeType, m.PreviewFileSize = attachmentFields(a)
}

// SetThumbnail fills the thumbnail columns of a record that is about to be inserted.
func (m *Model) SetThumbnail(a *Attachment) {
	m.ThumbnailStoredPath, m.ThumbnailOriginalName, m.ThumbnailMimeType, m.ThumbnailFileSize = attachmentFields(a)
}

func attachmentOf(path, name, mimeType *string, size *int64) *Attachment {
	if path == nil || name == nil || mimeType == nil || size == nil || *path == "" {
		return nil
	}
	return &Attachment{StoredPath: *path, OriginalName: *name, MimeType: *mimeType, FileSize: *size}
}

func attachmentFields(a *Attachment) (*string, *string, *string, *int64) {
	if a == nil {
		return nil, nil, nil, nil
	}
	path, name, mimeType, size := a.StoredPath, a.OriginalName, a.MimeType, a.FileSize
	return &path, &name, &mimeType, &size
}

func attachmentColumns(prefix string, a *Attachment) map[string]any {
	if a == nil {
		return map[string]any{
			prefix + "stored_path":   nil,
			prefix + "original_name": nil,
			prefix + "mime_type":     nil,
			prefix + "file_size":     nil,
		}
	}
	return map[string]any{
		prefix + "stored_path":   a.StoredPath,
		prefix + "original_name": a.OriginalName,
		prefix + "mime_type":     a.MimeType,
		prefix + "file_size":     a.FileSize,
	}
}

// ImageModelLink connects one image to one model.
type ImageModelLink struct {
	ImageID uint   `gorm:"column:image_id;primaryKey;autoIncrement:false"`
	ModelID uint   `gorm:"column:model_id;primaryKey;autoIncrement:false;index:idx_image_model_links_model"`
	Image   *Image `gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Model   *Model `gorm:"foreignKey:ModelID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides gorm to use the image_model_links table.
func (ImageModelLink) TableName() string {
	return "image_model_links"
}

// MediaSummary is the projection returned for linked records.
type MediaSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
}

// SchemaMigration records an applied migration.
type SchemaMigration struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(191)"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

// TableName overrides gorm to use the schema_migrations table.
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
