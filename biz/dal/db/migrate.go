package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/biz/dal/model"
	"gorm.io/gorm"
)

// Migration is one forward-only schema step.
type Migration struct {
	ID string
	Up func(tx *gorm.DB) error
}

// Schema snapshots. Migrations must keep describing the tables as they were
// when the step was written, so they do not use the live models.

type MediaColumnsV1 struct {
	ID           uint      `gorm:"primaryKey"`
	Title        string    `gorm:"column:title;type:text;not null"`
	Author       string    `gorm:"column:author;type:text;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	StoredPath   string    `gorm:"column:stored_path;type:text;not null;default:''"`
	OriginalName string    `gorm:"column:original_name;type:text;not null;default:''"`
	MimeType     string    `gorm:"column:mime_type;type:text;not null;default:'application/octet-stream'"`
	FileSize     int64     `gorm:"column:file_size;not null;default:0"`
}

type imageV1 struct{ MediaColumnsV1 }

func (imageV1) TableName() string { return "images" }

type modelV1 struct{ MediaColumnsV1 }

func (modelV1) TableName() string { return "models" }

type modelPreviewV1 struct {
	PreviewStoredPath   *string `gorm:"column:preview_stored_path;type:text"`
	PreviewOriginalName *string `gorm:"column:preview_original_name;type:text"`
	PreviewMimeType     *string `gorm:"column:preview_mime_type;type:text"`
	PreviewFileSize     *int64  `gorm:"column:preview_file_size"`
}

func (modelPreviewV1) TableName() string { return "models" }

type modelThumbnailV1 struct {
	ThumbnailStoredPath   *string `gorm:"column:thumbnail_stored_path;type:text"`
	ThumbnailOriginalName *string `gorm:"column:thumbnail_original_name;type:text"`
	ThumbnailMimeType     *string `gorm:"column:thumbnail_mime_type;type:text"`
	ThumbnailFileSize     *int64  `gorm:"column:thumbnail_file_size"`
}

func (modelThumbnailV1) TableName() string { return "models" }

type imageModelLinkV1 struct {
	ImageID uint     `gorm:"column:image_id;primaryKey;autoIncrement:false"`
	ModelID uint     `gorm:"column:model_id;primaryKey;autoIncrement:false;index:idx_image_model_links_model"`
	Image   *imageV1 `gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
	Model   *modelV1 `gorm:"foreignKey:ModelID;references:ID;constraint:OnDelete:CASCADE"`
}

func (imageModelLinkV1) TableName() string { return "image_model_links" }

// Migrations lists every schema step in application order. IDs are
// persisted and must never change.
func Migrations() []Migration {
	return []Migration{
		{ID: "001_create_media_tables", Up: createMediaTables},
		{ID: "002_add_file_columns_to_existing_tables", Up: addFileColumns},
		{ID: "003_add_model_preview_columns", Up: addColumns(&modelPreviewV1{},
			"PreviewStoredPath", "PreviewOriginalName", "PreviewMimeType", "PreviewFileSize")},
		{ID: "004_add_model_thumbnail_columns", Up: addColumns(&modelThumbnailV1{},
			"ThumbnailStoredPath", "ThumbnailOriginalName", "ThumbnailMimeType", "ThumbnailFileSize")},
		{ID: "005_create_image_model_links", Up: createImageModelLinks},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations and
// returns the IDs it applied. Each step and its bookkeeping row share one
// transaction.
func Migrate(ctx context.Context, db *gorm.DB) ([]string, error) {
	return RunMigrations(ctx, db, Migrations())
}

// RunMigrations applies the given migrations in order.
func RunMigrations(ctx context.Context, db *gorm.DB, migrations []Migration) ([]string, error) {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&model.SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := make([]string, 0, len(migrations))
	for _, m := range migrations {
		var count int64
		if err := db.Model(&model.SchemaMigration{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return applied, fmt.Errorf("check migration %s: %w", m.ID, err)
		}
		if count > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&model.SchemaMigration{ID: m.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", m.ID, err)
		}
		hlog.Infof("applied migration %s", m.ID)
		applied = append(applied, m.ID)
	}
	return applied, nil
}

func createMediaTables(tx *gorm.DB) error {
	m := tx.Migrator()
	for _, table := range []any{&modelV1{}, &imageV1{}} {
		if m.HasTable(table) {
			continue
		}
		if err := m.CreateTable(table); err != nil {
			return err
		}
	}
	return nil
}

// addFileColumns upgrades databases created before files were stored
// alongside their metadata. Legacy rows keep their filename as both the
// stored and the original name.
func addFileColumns(tx *gorm.DB) error {
	for _, table := range []any{&modelV1{}, &imageV1{}} {
		if err := addColumns(table, "StoredPath", "OriginalName", "MimeType", "FileSize")(tx); err != nil {
			return err
		}
		if !tx.Migrator().HasColumn(table, "filename") {
			continue
		}
		name := table.(interface{ TableName() string }).TableName()
		if err := tx.Exec(fmt.Sprintf("UPDATE %s SET stored_path = filename WHERE stored_path = ''", name)).Error; err != nil {
			return err
		}
		if err := tx.Exec(fmt.Sprintf("UPDATE %s SET original_name = filename WHERE original_name = ''", name)).Error; err != nil {
			return err
		}
	}
	return nil
}

func addColumns(table any, fields ...string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		m := tx.Migrator()
		for _, field := range fields {
			if m.HasColumn(table, field) {
				continue
			}
			if err := m.AddColumn(table, field); err != nil {
				return fmt.Errorf("add column %s: %w", field, err)
			}
		}
		return nil
	}
}

func createImageModelLinks(tx *gorm.DB) error {
	if tx.Migrator().HasTable(&imageModelLinkV1{}) {
		return nil
	}
	return tx.Migrator().CreateTable(&imageModelLinkV1{})
}
