package service

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
)

// FileContent is an opened stored file ready to be streamed. The receiver
// must close Body.
type FileContent struct {
	Body     io.ReadCloser
	Size     int64
	Name     string
	MimeType string
	Inline   bool
}

func (s *Service) openFile(kind storage.Kind, a model.Attachment, inline bool) (*FileContent, error) {
	f, err := s.store.Open(kind, a.StoredPath)
	if err != nil {
		if isStorageMiss(err) {
			return nil, common.NewNotFoundError("File not found.")
		}
		return nil, fmt.Errorf("open %s file: %w", kind, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s file: %w", kind, err)
	}

	mimeType := a.MimeType
	if ct := upload.MimeTypeByExtension(filepath.Ext(a.OriginalName)); isWebPreviewable(a.OriginalName) && ct != "" {
		mimeType = ct
	}
	if mimeType == "" {
		mimeType = model.DefaultMimeType
	}
	return &FileContent{
		Body:     f,
		Size:     info.Size(),
		Name:     a.OriginalName,
		MimeType: mimeType,
		Inline:   inline,
	}, nil
}

func primaryAttachment(base *model.MediaBase) model.Attachment {
	return model.Attachment{
		StoredPath:   base.StoredPath,
		OriginalName: base.OriginalName,
		MimeType:     base.MimeType,
		FileSize:     base.FileSize,
	}
}
