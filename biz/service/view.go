package service

import (
	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/biz/model/api"
	"github.com/yi-nology/blender_board/pkg/storage"
)

// --------------------- Model conversion helpers ---------------------

func mediaItem(kind storage.Kind, base *model.MediaBase) api.MediaItem {
	return api.MediaItem{
		ID:           base.ID,
		Title:        base.Title,
		Author:       base.Author,
		CreatedAt:    base.CreatedAt,
		OriginalName: base.OriginalName,
		MimeType:     base.MimeType,
		FileSize:     base.FileSize,
		DownloadURL:  downloadURL(kind, base.ID),
	}
}

func imageItem(img *model.Image) api.MediaItem {
	item := mediaItem(storage.KindImages, &img.MediaBase)
	item.PreviewURL = versionedURL(storage.KindImages, img.ID, "preview", img.StoredPath)
	return item
}

func imageSliceToItems(images []model.Image) []api.MediaItem {
	list := make([]api.MediaItem, 0, len(images))
	for i := range images {
		list = append(list, imageItem(&images[i]))
	}
	return list
}

func modelItem(m *model.Model) api.ModelItem {
	item := api.ModelItem{MediaItem: mediaItem(storage.KindModels, &m.MediaBase)}
	if p := m.Preview(); p != nil {
		item.PreviewURL = versionedURL(storage.KindModels, m.ID, "preview", p.StoredPath)
		item.Preview = assetInfo(p)
	} else if isWebPreviewable(m.OriginalName) {
		item.PreviewURL = versionedURL(storage.KindModels, m.ID, "preview", m.StoredPath)
	}
	if t := m.Thumbnail(); t != nil {
		item.ThumbnailURL = versionedURL(storage.KindModels, m.ID, "thumbnail", t.StoredPath)
		item.Thumbnail = assetInfo(t)
	}
	return item
}

func modelSliceToItems(models []model.Model) []api.ModelItem {
	list := make([]api.ModelItem, 0, len(models))
	for i := range models {
		list = append(list, modelItem(&models[i]))
	}
	return list
}

func assetInfo(a *model.Attachment) *api.AssetInfo {
	return &api.AssetInfo{OriginalName: a.OriginalName, MimeType: a.MimeType, FileSize: a.FileSize}
}

func summaryItems(kind storage.Kind, summaries []model.MediaSummary) []api.SummaryItem {
	list := make([]api.SummaryItem, 0, len(summaries))
	for _, s := range summaries {
		list = append(list, api.SummaryItem{
			ID:           s.ID,
			Title:        s.Title,
			Author:       s.Author,
			CreatedAt:    s.CreatedAt,
			OriginalName: s.OriginalName,
			MimeType:     s.MimeType,
			FileSize:     s.FileSize,
			DownloadURL:  downloadURL(kind, s.ID),
		})
	}
	return list
}

func listMeta[T any](result *ListResult[T]) api.ListMeta {
	meta := api.ListMeta{Total: result.Total, Sort: result.Sort, Order: result.Order}
	if result.Limit > 0 {
		page, limit := result.Page, result.Limit
		meta.Page, meta.Limit = &page, &limit
	}
	return meta
}
