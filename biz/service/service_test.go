package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
)

var (
	pngBytes   = append([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, []byte("IMAGEDATA")...)
	glbBytes   = []byte("glTF\x02\x00\x00\x00PREVIEW")
	blendBytes = []byte("BLENDER-v300SOURCE")
)

type filePart struct {
	field, filename string
	data            []byte
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewService(db.SetupTestDB(t), store, Options{})
}

// stage builds a multipart form and runs it through upload ingestion the
// way the upload middleware does.
func stage(t *testing.T, rules []upload.Rule, store storage.Storage, values map[string][]string, parts ...filePart) *upload.Batch {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	batch, err := upload.Ingest(context.Background(), store, form, rules)
	require.NoError(t, err)
	return batch
}

func imageBatch(t *testing.T, s *Service, values map[string][]string, parts ...filePart) *upload.Batch {
	t.Helper()
	return stage(t, s.ImageUploadRules(), s.Storage(), values, parts...)
}

func modelBatch(t *testing.T, s *Service, values map[string][]string, parts ...filePart) *upload.Batch {
	t.Helper()
	return stage(t, s.ModelUploadRules(), s.Storage(), values, parts...)
}

func fileCount(t *testing.T, s *Service, kind storage.Kind) int {
	t.Helper()
	entries, err := os.ReadDir(s.Storage().UploadDir(kind))
	require.NoError(t, err)
	return len(entries)
}

func storedExists(t *testing.T, s *Service, kind storage.Kind, name string) bool {
	t.Helper()
	ok, err := s.Storage().Exists(kind, name)
	require.NoError(t, err)
	return ok
}

func requireCode(t *testing.T, err error, code common.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, common.AsError(err).Code)
}

func readAll(t *testing.T, fc *FileContent) []byte {
	t.Helper()
	defer fc.Body.Close()
	data, err := io.ReadAll(fc.Body)
	require.NoError(t, err)
	return data
}

func titleAuthor(title, author string) map[string][]string {
	return map[string][]string{"title": {title}, "author": {author}}
}
