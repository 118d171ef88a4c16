package middleware

import (
	"bytes"
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/storage"
	"github.com/yi-nology/blender_board/pkg/upload"
)

const uploadBatchKey = "upload_batch"

// Upload stages the request's file fields according to rules and exposes the
// batch through UploadBatch. Staged files the handler did not keep are
// removed once the handler chain returns.
// A declared Content-Length above upload.RequestLimit is answered with 413
// before the body is read.
func Upload(store storage.Storage, rules []upload.Rule) app.HandlerFunc {
	limit := upload.RequestLimit(rules)
	return func(ctx context.Context, c *app.RequestContext) {
		if n := c.Request.Header.ContentLength(); n > 0 && int64(n) > limit {
			appErr := common.NewPayloadTooLargeError()
			c.AbortWithStatusJSON(appErr.Status, appErr.Response())
			return
		}
		batch, err := ingest(ctx, c, store, rules)
		if err != nil {
			appErr := common.AsError(err)
			if appErr.Status >= 500 {
				hlog.CtxErrorf(ctx, "stage upload: %v", err)
			}
			c.AbortWithStatusJSON(appErr.Status, appErr.Response())
			return
		}
		defer batch.Discard()

		c.Set(uploadBatchKey, batch)
		c.Next(ctx)
	}
}

// UploadBatch returns the batch staged by Upload, or an empty batch built
// from the url-encoded form when the route has no upload middleware.
func UploadBatch(c *app.RequestContext, store storage.Storage) *upload.Batch {
	if v, ok := c.Get(uploadBatchKey); ok {
		if batch, ok := v.(*upload.Batch); ok {
			return batch
		}
	}
	return upload.NewBatch(store, postValues(c))
}

func ingest(ctx context.Context, c *app.RequestContext, store storage.Storage, rules []upload.Rule) (*upload.Batch, error) {
	if !bytes.HasPrefix(bytes.ToLower(c.Request.Header.ContentType()), []byte("multipart/form-data")) {
		return upload.NewBatch(store, postValues(c)), nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, common.NewValidationError("Request body is not a valid multipart form.")
	}
	return upload.Ingest(ctx, store, form, rules)
}

func postValues(c *app.RequestContext) map[string][]string {
	values := map[string][]string{}
	c.PostArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})
	return values
}
