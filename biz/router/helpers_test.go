package router

import (
	"os"

	"github.com/yi-nology/blender_board/biz/service"
	"github.com/yi-nology/blender_board/pkg/storage"
)

func storageEntries(svc *service.Service, kind storage.Kind) (int, error) {
	entries, err := os.ReadDir(svc.Storage().UploadDir(kind))
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
