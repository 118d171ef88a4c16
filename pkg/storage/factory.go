package storage

import (
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/pkg/config"
)

// New creates the file store named by cfg.Type. Only the local store exists;
// its kind directories are created before it is returned.
func New(cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		s, err := NewLocal(cfg.Local.BasePath)
		if err != nil {
			return nil, err
		}
		hlog.Infof("storage: %s uploads under %s", s.Type(), s.BasePath())
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
