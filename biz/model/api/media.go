// Package api provides the JSON request/response models of the media API.
package api

import "time"

// MediaItem is the public view of an image or a model.
type MediaItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	DownloadURL  string    `json:"downloadUrl"`
	// PreviewURL is null when nothing can be rendered inline.
	PreviewURL *string `json:"previewUrl"`
}

// AssetInfo describes an optional secondary file of a model.
type AssetInfo struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	FileSize     int64  `json:"fileSize"`
}

// ModelItem extends MediaItem with the preview and thumbnail assets.
type ModelItem struct {
	MediaItem
	ThumbnailURL *string    `json:"thumbnailUrl"`
	Preview      *AssetInfo `json:"preview"`
	Thumbnail    *AssetInfo `json:"thumbnail"`
}

// SummaryItem is a linked record as listed on the other side of a link.
type SummaryItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	DownloadURL  string    `json:"downloadUrl"`
}

// ListMeta echoes the effective list options. Page and Limit are null when
// the list is not paginated.
type ListMeta struct {
	Total int64  `json:"total"`
	Page  *int   `json:"page"`
	Limit *int   `json:"limit"`
	Sort  string `json:"sort"`
	Order string `json:"order"`
}

type ListResponse[T any] struct {
	Items []T      `json:"items"`
	Meta  ListMeta `json:"meta"`
}

type ItemResponse[T any] struct {
	Item T `json:"item"`
}

type ImageDetailResponse struct {
	Item          MediaItem     `json:"item"`
	RelatedModels []SummaryItem `json:"relatedModels"`
}

type ModelDetailResponse struct {
	Item          ModelItem     `json:"item"`
	RelatedImages []SummaryItem `json:"relatedImages"`
}
