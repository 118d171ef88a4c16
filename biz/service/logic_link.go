package service

import (
	"context"
	"slices"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/pkg/validator"
	"gorm.io/gorm"
)

// --------------------- Image <-> model links ---------------------

// FindMissingModelIDs returns the requested ids, de-duplicated and sorted,
// that have no row in the models table.
func (l *Logic) FindMissingModelIDs(ctx context.Context, ids []uint) ([]uint, error) {
	ids = validator.NormalizeIDs(ids)
	existing, err := l.linkDAO.ExistingModelIDs(ctx, l.db, ids)
	if err != nil {
		return nil, err
	}
	missing := make([]uint, 0)
	for _, id := range ids {
		if !slices.Contains(existing, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ReplaceImageModelLinks swaps every link of imageID for ids atomically. An
// empty list clears the links.
func (l *Logic) ReplaceImageModelLinks(ctx context.Context, imageID uint, ids []uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.replaceLinks(ctx, tx, imageID, ids)
	})
}

func (l *Logic) replaceLinks(ctx context.Context, tx *gorm.DB, imageID uint, ids []uint) error {
	return l.linkDAO.ReplaceForImage(ctx, tx, imageID, validator.NormalizeIDs(ids))
}

func (l *Logic) ListModelsByImageID(ctx context.Context, imageID uint) ([]model.MediaSummary, error) {
	return l.linkDAO.ModelsByImageID(ctx, l.db, imageID)
}

func (l *Logic) ListImagesByModelID(ctx context.Context, modelID uint) ([]model.MediaSummary, error) {
	return l.linkDAO.ImagesByModelID(ctx, l.db, modelID)
}
