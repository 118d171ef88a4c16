package service

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
)

func TestCreateImageRoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	resp, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor(" t ", " a "), filePart{"file", "photo.PNG", pngBytes}))
	require.NoError(t, err)

	item := resp.Item
	assert.Equal(t, "t", item.Title)
	assert.Equal(t, "a", item.Author)
	assert.Equal(t, "photo.PNG", item.OriginalName)
	assert.Equal(t, "image/png", item.MimeType)
	assert.EqualValues(t, len(pngBytes), item.FileSize)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, "/api/images/"+strconv.Itoa(int(item.ID))+"/download", item.DownloadURL)
	require.NotNil(t, item.PreviewURL)
	assert.Contains(t, *item.PreviewURL, "?v=")

	stored, err := s.Logic().Images().FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, ".png", stored.StoredPath[strings.LastIndex(stored.StoredPath, "."):])
	assert.NotEqual(t, "photo.PNG", stored.StoredPath)

	fc, err := s.ImageFile(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, fc.Inline)
	assert.Equal(t, "photo.PNG", fc.Name)
	assert.Equal(t, pngBytes, readAll(t, fc))

	fc, err = s.ImagePreview(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, fc.Inline)
	_ = fc.Body.Close()
}

func TestCreateImageRejects(t *testing.T) {
	cases := []struct {
		name   string
		values map[string][]string
		parts  []filePart
		code   common.Code
	}{
		{"SignatureMismatch", titleAuthor("t", "a"), []filePart{{"file", "fake.png", []byte("not an image at all")}}, common.CodeInvalidFileSignature},
		{"MissingModel", map[string][]string{"title": {"t"}, "author": {"a"}, "modelIds": {"999"}}, []filePart{{"file", "a.png", pngBytes}}, common.CodeModelNotFound},
		{"MissingTitle", map[string][]string{"author": {"a"}}, []filePart{{"file", "a.png", pngBytes}}, common.CodeBadRequest},
		{"MissingFile", titleAuthor("t", "a"), nil, common.CodeBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService(t)
			ctx := context.Background()

			_, err := s.CreateImage(ctx, imageBatch(t, s, tc.values, tc.parts...))
			requireCode(t, err, tc.code)

			assert.Zero(t, fileCount(t, s, storage.KindImages))
			result, err := s.ListImages(ctx, nil)
			require.NoError(t, err)
			assert.Zero(t, result.Meta.Total)
		})
	}
}

func TestCreateImageWithLinks(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	m, err := s.CreateModel(ctx, modelBatch(t, s, titleAuthor("chair", "a"), filePart{"file", "chair.glb", glbBytes}))
	require.NoError(t, err)
	modelID := strconv.Itoa(int(m.Item.ID))

	values := titleAuthor("render", "a")
	values["modelIds"] = []string{modelID}
	img, err := s.CreateImage(ctx, imageBatch(t, s, values, filePart{"file", "render.png", pngBytes}))
	require.NoError(t, err)

	detail, err := s.GetImage(ctx, img.Item.ID)
	require.NoError(t, err)
	require.Len(t, detail.RelatedModels, 1)
	assert.Equal(t, m.Item.ID, detail.RelatedModels[0].ID)
	assert.Equal(t, "/api/models/"+modelID+"/download", detail.RelatedModels[0].DownloadURL)

	modelDetail, err := s.GetModel(ctx, m.Item.ID)
	require.NoError(t, err)
	require.Len(t, modelDetail.RelatedImages, 1)
	assert.Equal(t, img.Item.ID, modelDetail.RelatedImages[0].ID)

	t.Run("LinksOnlyUpdateClears", func(t *testing.T) {
		_, err := s.UpdateImage(ctx, img.Item.ID, imageBatch(t, s, map[string][]string{"modelIds": {""}}))
		require.NoError(t, err)
		detail, err := s.GetImage(ctx, img.Item.ID)
		require.NoError(t, err)
		assert.Empty(t, detail.RelatedModels)
	})

	t.Run("LinksOnlyUpdateSets", func(t *testing.T) {
		_, err := s.UpdateImage(ctx, img.Item.ID, imageBatch(t, s, map[string][]string{"modelIds": {modelID}}))
		require.NoError(t, err)
		detail, err := s.GetImage(ctx, img.Item.ID)
		require.NoError(t, err)
		require.Len(t, detail.RelatedModels, 1)
	})

	t.Run("DeletingModelDropsLink", func(t *testing.T) {
		require.NoError(t, s.DeleteModel(ctx, m.Item.ID))
		detail, err := s.GetImage(ctx, img.Item.ID)
		require.NoError(t, err)
		assert.Empty(t, detail.RelatedModels)
	})
}

func TestUpdateImageReplacesFile(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor("t", "a"), filePart{"file", "first.png", pngBytes}))
	require.NoError(t, err)
	before, err := s.Logic().Images().FindByID(ctx, created.Item.ID)
	require.NoError(t, err)

	second := append(append([]byte{}, pngBytes...), "SECOND"...)
	updated, err := s.UpdateImage(ctx, created.Item.ID, imageBatch(t, s, nil, filePart{"file", "second.png", second}))
	require.NoError(t, err)

	after, err := s.Logic().Images().FindByID(ctx, created.Item.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.StoredPath, after.StoredPath)
	assert.False(t, storedExists(t, s, storage.KindImages, before.StoredPath))
	assert.True(t, storedExists(t, s, storage.KindImages, after.StoredPath))
	assert.Equal(t, 1, fileCount(t, s, storage.KindImages))

	assert.Equal(t, "t", updated.Item.Title)
	assert.Equal(t, "second.png", updated.Item.OriginalName)
	assert.EqualValues(t, len(second), updated.Item.FileSize)
	assert.Equal(t, created.Item.CreatedAt.Unix(), updated.Item.CreatedAt.Unix())
	assert.NotEqual(t, *created.Item.PreviewURL, *updated.Item.PreviewURL)
}

func TestUpdateImageFailureKeepsPreviousState(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor("t", "a"), filePart{"file", "first.png", pngBytes}))
	require.NoError(t, err)
	before, err := s.Logic().Images().FindByID(ctx, created.Item.ID)
	require.NoError(t, err)

	t.Run("SignatureMismatch", func(t *testing.T) {
		values := map[string][]string{"title": {"changed"}}
		_, err := s.UpdateImage(ctx, created.Item.ID, imageBatch(t, s, values, filePart{"file", "bad.gif", []byte("nope")}))
		requireCode(t, err, common.CodeInvalidFileSignature)
	})

	t.Run("MissingModel", func(t *testing.T) {
		values := map[string][]string{"modelIds": {"12", "7"}}
		_, err := s.UpdateImage(ctx, created.Item.ID, imageBatch(t, s, values, filePart{"file", "ok.png", pngBytes}))
		requireCode(t, err, common.CodeModelNotFound)
		assert.Equal(t, "Model not found: 7, 12", common.AsError(err).Msg)
	})

	t.Run("NothingToChange", func(t *testing.T) {
		_, err := s.UpdateImage(ctx, created.Item.ID, imageBatch(t, s, nil))
		requireCode(t, err, common.CodeBadRequest)
	})

	t.Run("UnknownID", func(t *testing.T) {
		_, err := s.UpdateImage(ctx, 9999, imageBatch(t, s, nil, filePart{"file", "ok.png", pngBytes}))
		requireCode(t, err, common.CodeNotFound)
	})

	after, err := s.Logic().Images().FindByID(ctx, created.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, before.MediaBase, after.MediaBase)
	assert.Equal(t, 1, fileCount(t, s, storage.KindImages))
	assert.True(t, storedExists(t, s, storage.KindImages, before.StoredPath))
}

func TestDeleteImage(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor("t", "a"), filePart{"file", "a.png", pngBytes}))
	require.NoError(t, err)

	require.NoError(t, s.DeleteImage(ctx, created.Item.ID))
	assert.Zero(t, fileCount(t, s, storage.KindImages))

	_, err = s.GetImage(ctx, created.Item.ID)
	requireCode(t, err, common.CodeNotFound)
	requireCode(t, s.DeleteImage(ctx, created.Item.ID), common.CodeNotFound)
}

func TestImageFileMissingOnDisk(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor("t", "a"), filePart{"file", "a.png", pngBytes}))
	require.NoError(t, err)
	stored, err := s.Logic().Images().FindByID(ctx, created.Item.ID)
	require.NoError(t, err)
	require.NoError(t, s.Storage().Delete(storage.KindImages, stored.StoredPath, storage.DeleteOptions{}))

	_, err = s.ImageFile(ctx, created.Item.ID)
	requireCode(t, err, common.CodeNotFound)
}

func TestListImagesPagination(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"b", "a"} {
		_, err := s.CreateImage(ctx, imageBatch(t, s, titleAuthor(title, "x"), filePart{"file", title + ".png", pngBytes}))
		require.NoError(t, err)
	}

	resp, err := s.ListImages(ctx, map[string][]string{
		"limit": {"1"}, "page": {"2"}, "sort": {"title"}, "order": {"asc"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "b", resp.Items[0].Title)
	assert.EqualValues(t, 2, resp.Meta.Total)
	require.NotNil(t, resp.Meta.Page)
	require.NotNil(t, resp.Meta.Limit)
	assert.Equal(t, 2, *resp.Meta.Page)
	assert.Equal(t, 1, *resp.Meta.Limit)
	assert.Equal(t, "title", resp.Meta.Sort)
	assert.Equal(t, "asc", resp.Meta.Order)

	resp, err = s.ListImages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Nil(t, resp.Meta.Page)
	assert.Nil(t, resp.Meta.Limit)
	assert.Equal(t, "id", resp.Meta.Sort)
	assert.Equal(t, "desc", resp.Meta.Order)

	_, err = s.ListImages(ctx, map[string][]string{"page": {"2"}})
	requireCode(t, err, common.CodeBadRequest)
}
