package db

import (
	"context"
	"fmt"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"gorm.io/gorm"
)

const summaryColumns = "%[1]s.id, %[1]s.title, %[1]s.author, %[1]s.created_at, %[1]s.original_name, %[1]s.mime_type, %[1]s.file_size"

// LinkDAO manages image_model_links rows.
type LinkDAO struct{}

func NewLinkDAO() *LinkDAO { return &LinkDAO{} }

// ExistingModelIDs returns the subset of ids present in the models table.
func (dao *LinkDAO) ExistingModelIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]uint, error) {
	existing := make([]uint, 0, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	if err := db.WithContext(ctx).Model(&model.Model{}).Where("id IN ?", ids).Order("id").Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// ReplaceForImage removes every link of imageID and inserts one per model ID.
// Run it inside a transaction.
func (dao *LinkDAO) ReplaceForImage(ctx context.Context, db *gorm.DB, imageID uint, modelIDs []uint) error {
	if err := dao.DeleteByImageID(ctx, db, imageID); err != nil {
		return err
	}
	if len(modelIDs) == 0 {
		return nil
	}
	links := make([]model.ImageModelLink, 0, len(modelIDs))
	for _, id := range modelIDs {
		links = append(links, model.ImageModelLink{ImageID: imageID, ModelID: id})
	}
	return db.WithContext(ctx).Omit("Image", "Model").Create(&links).Error
}

func (dao *LinkDAO) DeleteByImageID(ctx context.Context, db *gorm.DB, imageID uint) error {
	return db.WithContext(ctx).Where("image_id = ?", imageID).Delete(&model.ImageModelLink{}).Error
}

func (dao *LinkDAO) DeleteByModelID(ctx context.Context, db *gorm.DB, modelID uint) error {
	return db.WithContext(ctx).Where("model_id = ?", modelID).Delete(&model.ImageModelLink{}).Error
}

// ModelsByImageID lists the models linked to an image, newest first.
func (dao *LinkDAO) ModelsByImageID(ctx context.Context, db *gorm.DB, imageID uint) ([]model.MediaSummary, error) {
	out := make([]model.MediaSummary, 0)
	err := db.WithContext(ctx).
		Table("models").
		Select(fmt.Sprintf(summaryColumns, "models")).
		Joins("JOIN image_model_links ON image_model_links.model_id = models.id").
		Where("image_model_links.image_id = ?", imageID).
		Order("models.id DESC").
		Scan(&out).Error
	return out, err
}

// ImagesByModelID lists the images linked to a model, newest first.
func (dao *LinkDAO) ImagesByModelID(ctx context.Context, db *gorm.DB, modelID uint) ([]model.MediaSummary, error) {
	out := make([]model.MediaSummary, 0)
	err := db.WithContext(ctx).
		Table("images").
		Select(fmt.Sprintf(summaryColumns, "images")).
		Joins("JOIN image_model_links ON image_model_links.image_id = images.id").
		Where("image_model_links.model_id = ?", modelID).
		Order("images.id DESC").
		Scan(&out).Error
	return out, err
}
