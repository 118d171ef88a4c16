package db

import (
	"context"
	"testing"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"gorm.io/gorm"
)

func summaryIDs(items []model.MediaSummary) []uint {
	out := make([]uint, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLinkDAO(t *testing.T) {
	db := SetupTestDB(t)
	dao := NewLinkDAO()
	ctx := context.Background()

	img := CreateTestImage(t, db, "render", "aoi")
	m1 := CreateTestModel(t, db, "chair", "aoi")
	m2 := CreateTestModel(t, db, "table", "aoi")
	m3 := CreateTestModel(t, db, "lamp", "aoi")

	t.Run("ExistingModelIDs", func(t *testing.T) {
		got, err := dao.ExistingModelIDs(ctx, db, []uint{m2.ID, 9999, m1.ID})
		if err != nil {
			t.Fatalf("ExistingModelIDs failed: %v", err)
		}
		if !equalIDs(got, []uint{m1.ID, m2.ID}) {
			t.Errorf("Unexpected ids: %v", got)
		}

		got, err = dao.ExistingModelIDs(ctx, db, nil)
		if err != nil || len(got) != 0 {
			t.Errorf("Expected empty result, got %v (%v)", got, err)
		}
	})

	t.Run("ReplaceIsAllOrNothing", func(t *testing.T) {
		if err := dao.ReplaceForImage(ctx, db, img.ID, []uint{m1.ID, m2.ID}); err != nil {
			t.Fatalf("ReplaceForImage failed: %v", err)
		}
		if err := dao.ReplaceForImage(ctx, db, img.ID, []uint{m3.ID}); err != nil {
			t.Fatalf("ReplaceForImage failed: %v", err)
		}
		models, err := dao.ModelsByImageID(ctx, db, img.ID)
		if err != nil {
			t.Fatalf("ModelsByImageID failed: %v", err)
		}
		if !equalIDs(summaryIDs(models), []uint{m3.ID}) {
			t.Errorf("Expected only the replacement link, got %v", summaryIDs(models))
		}
		if models[0].Title != "lamp" || models[0].CreatedAt.IsZero() {
			t.Errorf("Unexpected summary: %+v", models[0])
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		if err := dao.ReplaceForImage(ctx, db, img.ID, []uint{m1.ID, m3.ID, m2.ID}); err != nil {
			t.Fatalf("ReplaceForImage failed: %v", err)
		}
		models, _ := dao.ModelsByImageID(ctx, db, img.ID)
		if !equalIDs(summaryIDs(models), []uint{m3.ID, m2.ID, m1.ID}) {
			t.Errorf("Unexpected order: %v", summaryIDs(models))
		}
		images, _ := dao.ImagesByModelID(ctx, db, m2.ID)
		if !equalIDs(summaryIDs(images), []uint{img.ID}) {
			t.Errorf("Unexpected images: %v", summaryIDs(images))
		}
	})

	t.Run("FailedReplaceInTransactionKeepsLinks", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			return dao.ReplaceForImage(ctx, tx, img.ID, []uint{m1.ID, 9999})
		})
		if err == nil {
			t.Fatal("Expected foreign key violation")
		}
		models, _ := dao.ModelsByImageID(ctx, db, img.ID)
		if !equalIDs(summaryIDs(models), []uint{m3.ID, m2.ID, m1.ID}) {
			t.Errorf("Expected previous links intact, got %v", summaryIDs(models))
		}
	})

	t.Run("DeletingModelCascades", func(t *testing.T) {
		if err := NewMediaDAO[model.Model]().Delete(ctx, db, m2.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		images, _ := dao.ImagesByModelID(ctx, db, m2.ID)
		if len(images) != 0 {
			t.Errorf("Expected links removed with the model, got %v", summaryIDs(images))
		}
	})

	t.Run("ClearWithEmptyList", func(t *testing.T) {
		if err := dao.ReplaceForImage(ctx, db, img.ID, nil); err != nil {
			t.Fatalf("ReplaceForImage failed: %v", err)
		}
		models, _ := dao.ModelsByImageID(ctx, db, img.ID)
		if len(models) != 0 {
			t.Errorf("Expected no links, got %v", summaryIDs(models))
		}
	})
}
