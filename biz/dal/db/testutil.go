package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yi-nology/blender_board/biz/dal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a private in-memory SQLite database with every
// migration applied.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if _, err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}
	t.Cleanup(func() { CleanupTestDB(t, db) })
	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestImage inserts an image row with placeholder file columns.
func CreateTestImage(t *testing.T, db *gorm.DB, title, author string) *model.Image {
	t.Helper()
	img := &model.Image{MediaBase: testBase(title, author, ".png")}
	if err := NewMediaDAO[model.Image]().Create(context.Background(), db, img); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return img
}

// CreateTestModel inserts a model row with placeholder file columns.
func CreateTestModel(t *testing.T, db *gorm.DB, title, author string) *model.Model {
	t.Helper()
	m := &model.Model{MediaBase: testBase(title, author, ".glb")}
	if err := NewMediaDAO[model.Model]().Create(context.Background(), db, m); err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	return m
}

func testBase(title, author, ext string) model.MediaBase {
	return model.MediaBase{
		Title:        title,
		Author:       author,
		CreatedAt:    time.Now().UTC(),
		StoredPath:   uuid.NewString() + ext,
		OriginalName: title + ext,
		MimeType:     model.DefaultMimeType,
		FileSize:     1,
	}
}
