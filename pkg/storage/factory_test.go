package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yi-nology/blender_board/pkg/config"
)

func TestNew(t *testing.T) {
	for _, typ := range []string{"", "local", "LOCAL"} {
		base := filepath.Join(t.TempDir(), "uploads")
		s, err := New(config.StorageConfig{Type: typ, Local: config.LocalStorageConfig{BasePath: base}})
		require.NoError(t, err, typ)
		assert.Equal(t, "local", s.Type())

		for _, kind := range []Kind{KindImages, KindModels} {
			info, err := os.Stat(filepath.Join(base, string(kind)))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	}

	_, err := New(config.StorageConfig{Type: "s3"})
	assert.ErrorContains(t, err, "unsupported storage type: s3")
}
