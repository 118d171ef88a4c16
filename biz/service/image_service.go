package service

import (
	"context"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/biz/model/api"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
	"github.com/yi-nology/blender_board/pkg/validator"
	"gorm.io/gorm"
)

// --------------------- Image operations ---------------------

func (s *Service) ListImages(ctx context.Context, query map[string][]string) (*api.ListResponse[api.MediaItem], error) {
	opts, err := validator.ParseListQuery(query)
	if err != nil {
		return nil, err
	}
	result, err := s.logic.images.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &api.ListResponse[api.MediaItem]{
		Items: imageSliceToItems(result.Items),
		Meta:  listMeta(result),
	}, nil
}

func (s *Service) GetImage(ctx context.Context, id uint) (*api.ImageDetailResponse, error) {
	img, err := s.findImage(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.logic.ListModelsByImageID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &api.ImageDetailResponse{
		Item:          imageItem(img),
		RelatedModels: summaryItems(storage.KindModels, related),
	}, nil
}

// CreateImage stores a new image from a staged batch. Staged files are
// discarded on any failure and kept on success.
func (s *Service) CreateImage(ctx context.Context, batch *upload.Batch) (_ *api.ItemResponse[api.MediaItem], err error) {
	defer discardOnError(batch, &err)

	fields, err := validator.ParseCreateFields(batch.Values(), true)
	if err != nil {
		return nil, err
	}
	file, err := requireFile(batch)
	if err != nil {
		return nil, err
	}
	if err := s.checkSignature(file, storage.KindImages); err != nil {
		return nil, err
	}
	if err := s.ensureModelsExist(ctx, fields.ModelIDs); err != nil {
		return nil, err
	}

	var within TxFunc
	if fields.HasModelIDs {
		within = func(tx *gorm.DB, id uint) error {
			return s.logic.replaceLinks(ctx, tx, id, fields.ModelIDs)
		}
	}
	created, err := s.logic.images.Create(ctx, &model.Image{MediaBase: mediaBase(fields, file)}, within)
	if err != nil {
		return nil, err
	}
	batch.Keep()
	return &api.ItemResponse[api.MediaItem]{Item: imageItem(created)}, nil
}

// UpdateImage applies a partial update. A replaced file is deleted only
// after the new metadata committed.
func (s *Service) UpdateImage(ctx context.Context, id uint, batch *upload.Batch) (_ *api.ItemResponse[api.MediaItem], err error) {
	defer discardOnError(batch, &err)

	fields, err := validator.ParseUpdateFields(batch.Values(), !batch.Empty(), true, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.findImage(ctx, id); err != nil {
		return nil, err
	}
	file := batch.File(FieldFile)
	if file != nil {
		if err := s.checkSignature(file, storage.KindImages); err != nil {
			return nil, err
		}
	}
	if err := s.ensureModelsExist(ctx, fields.ModelIDs); err != nil {
		return nil, err
	}

	var within TxFunc
	if fields.HasModelIDs {
		within = func(tx *gorm.DB, id uint) error {
			return s.logic.replaceLinks(ctx, tx, id, fields.ModelIDs)
		}
	}
	outcome, err := s.logic.images.Update(ctx, id, updateColumns(fields, file), within)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, notFound(storage.KindImages)
	}
	batch.Keep()
	s.removeFiles(ctx, storage.KindImages, ObsoleteFiles(outcome))
	return &api.ItemResponse[api.MediaItem]{Item: imageItem(outcome.Current)}, nil
}

func (s *Service) DeleteImage(ctx context.Context, id uint) error {
	outcome, err := s.logic.images.Delete(ctx, id, func(tx *gorm.DB, id uint) error {
		return s.logic.linkDAO.DeleteByImageID(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	if outcome == nil {
		return notFound(storage.KindImages)
	}
	s.removeFiles(ctx, storage.KindImages, ObsoleteFiles(outcome))
	return nil
}

// ImageFile opens the original upload for download.
func (s *Service) ImageFile(ctx context.Context, id uint) (*FileContent, error) {
	img, err := s.findImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openFile(storage.KindImages, primaryAttachment(&img.MediaBase), false)
}

// ImagePreview opens the image for inline display.
func (s *Service) ImagePreview(ctx context.Context, id uint) (*FileContent, error) {
	img, err := s.findImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openFile(storage.KindImages, primaryAttachment(&img.MediaBase), true)
}

func (s *Service) findImage(ctx context.Context, id uint) (*model.Image, error) {
	img, err := s.logic.images.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, notFound(storage.KindImages)
	}
	return img, nil
}
