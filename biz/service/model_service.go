package service

import (
	"context"
	"maps"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/biz/model/api"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
	"github.com/yi-nology/blender_board/pkg/validator"
	"gorm.io/gorm"
)

// --------------------- Model operations ---------------------

func (s *Service) ListModels(ctx context.Context, query map[string][]string) (*api.ListResponse[api.ModelItem], error) {
	opts, err := validator.ParseListQuery(query)
	if err != nil {
		return nil, err
	}
	result, err := s.logic.models.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &api.ListResponse[api.ModelItem]{
		Items: modelSliceToItems(result.Items),
		Meta:  listMeta(result),
	}, nil
}

func (s *Service) GetModel(ctx context.Context, id uint) (*api.ModelDetailResponse, error) {
	m, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.logic.ListImagesByModelID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &api.ModelDetailResponse{
		Item:          modelItem(m),
		RelatedImages: summaryItems(storage.KindImages, related),
	}, nil
}

// CreateModel stores a model with its optional preview and thumbnail.
func (s *Service) CreateModel(ctx context.Context, batch *upload.Batch) (_ *api.ItemResponse[api.ModelItem], err error) {
	defer discardOnError(batch, &err)

	fields, err := validator.ParseCreateFields(batch.Values(), false)
	if err != nil {
		return nil, err
	}
	file, err := requireFile(batch)
	if err != nil {
		return nil, err
	}
	preview, thumbnail := batch.File(FieldPreviewFile), batch.File(FieldThumbnailFile)
	if err := s.checkModelFiles(file, preview, thumbnail); err != nil {
		return nil, err
	}

	record := &model.Model{MediaBase: mediaBase(fields, file)}
	record.SetPreview(attachment(preview))
	record.SetThumbnail(attachment(thumbnail))
	created, err := s.logic.models.Create(ctx, record, nil)
	if err != nil {
		return nil, err
	}
	batch.Keep()
	return &api.ItemResponse[api.ModelItem]{Item: modelItem(created)}, nil
}

// UpdateModel applies a partial update. Replaced or cleared assets are
// deleted only after the new metadata committed.
func (s *Service) UpdateModel(ctx context.Context, id uint, batch *upload.Batch) (_ *api.ItemResponse[api.ModelItem], err error) {
	defer discardOnError(batch, &err)

	fields, err := validator.ParseUpdateFields(batch.Values(), !batch.Empty(), false, true)
	if err != nil {
		return nil, err
	}
	file := batch.File(FieldFile)
	preview, thumbnail := batch.File(FieldPreviewFile), batch.File(FieldThumbnailFile)
	if fields.ClearPreview && preview != nil {
		return nil, common.NewValidationError("clearPreview cannot be combined with previewFile.")
	}
	if fields.ClearThumbnail && thumbnail != nil {
		return nil, common.NewValidationError("clearThumbnail cannot be combined with thumbnailFile.")
	}
	if _, err := s.findModel(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkModelFiles(file, preview, thumbnail); err != nil {
		return nil, err
	}

	columns := updateColumns(fields, file)
	if preview != nil || fields.ClearPreview {
		maps.Copy(columns, model.PreviewColumns(attachment(preview)))
	}
	if thumbnail != nil || fields.ClearThumbnail {
		maps.Copy(columns, model.ThumbnailColumns(attachment(thumbnail)))
	}
	outcome, err := s.logic.models.Update(ctx, id, columns, nil)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, notFound(storage.KindModels)
	}
	batch.Keep()
	s.removeFiles(ctx, storage.KindModels, ObsoleteFiles(outcome))
	return &api.ItemResponse[api.ModelItem]{Item: modelItem(outcome.Current)}, nil
}

func (s *Service) DeleteModel(ctx context.Context, id uint) error {
	outcome, err := s.logic.models.Delete(ctx, id, func(tx *gorm.DB, id uint) error {
		return s.logic.linkDAO.DeleteByModelID(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	if outcome == nil {
		return notFound(storage.KindModels)
	}
	s.removeFiles(ctx, storage.KindModels, ObsoleteFiles(outcome))
	return nil
}

// ModelFile opens the original upload for download.
func (s *Service) ModelFile(ctx context.Context, id uint) (*FileContent, error) {
	m, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openFile(storage.KindModels, primaryAttachment(&m.MediaBase), false)
}

// ModelPreview opens the preview asset, or the primary file when browsers
// can render it.
func (s *Service) ModelPreview(ctx context.Context, id uint) (*FileContent, error) {
	m, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if p := m.Preview(); p != nil {
		return s.openFile(storage.KindModels, *p, true)
	}
	if isWebPreviewable(m.OriginalName) {
		return s.openFile(storage.KindModels, primaryAttachment(&m.MediaBase), true)
	}
	return nil, common.NewPreviewNotSupportedError()
}

// ModelThumbnail opens the static thumbnail image.
func (s *Service) ModelThumbnail(ctx context.Context, id uint) (*FileContent, error) {
	m, err := s.findModel(ctx, id)
	if err != nil {
		return nil, err
	}
	t := m.Thumbnail()
	if t == nil {
		return nil, common.NewNotFoundError("Thumbnail not found.")
	}
	return s.openFile(storage.KindModels, *t, true)
}

// checkModelFiles validates the content of every supplied model file.
// Thumbnails are checked as images.
func (s *Service) checkModelFiles(file, preview, thumbnail *upload.StagedFile) error {
	if file != nil {
		if err := s.checkSignature(file, storage.KindModels); err != nil {
			return err
		}
	}
	if preview != nil {
		if err := s.checkSignature(preview, storage.KindModels); err != nil {
			return err
		}
	}
	if thumbnail != nil {
		if err := s.checkSignature(thumbnail, storage.KindImages); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) findModel(ctx context.Context, id uint) (*model.Model, error) {
	m, err := s.logic.models.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFound(storage.KindModels)
	}
	return m, nil
}
