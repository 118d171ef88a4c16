package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/blender_board/biz/middleware"
	"github.com/yi-nology/blender_board/biz/service"
)

// MediaHandler adapts the image and model endpoints to the service layer.
type MediaHandler struct {
	service *service.Service
}

func NewMediaHandler(svc *service.Service) *MediaHandler {
	return &MediaHandler{service: svc}
}

// --------------------- Images ---------------------

func (h *MediaHandler) ListImages(ctx context.Context, c *app.RequestContext) {
	resp, err := h.service.ListImages(ctx, queryValues(c))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) GetImage(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	resp, err := h.service.GetImage(ctx, id)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) CreateImage(ctx context.Context, c *app.RequestContext) {
	resp, err := h.service.CreateImage(ctx, middleware.UploadBatch(c, h.service.Storage()))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, resp)
}

func (h *MediaHandler) UpdateImage(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	resp, err := h.service.UpdateImage(ctx, id, middleware.UploadBatch(c, h.service.Storage()))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) DeleteImage(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	if err := h.service.DeleteImage(ctx, id); err != nil {
		writeError(ctx, c, err)
		return
	}
	c.Status(consts.StatusNoContent)
}

func (h *MediaHandler) DownloadImage(ctx context.Context, c *app.RequestContext) {
	h.serveFile(ctx, c, h.service.ImageFile)
}

func (h *MediaHandler) PreviewImage(ctx context.Context, c *app.RequestContext) {
	h.serveFile(ctx, c, h.service.ImagePreview)
}

// --------------------- Models ---------------------

func (h *MediaHandler) ListModels(ctx context.Context, c *app.RequestContext) {
	resp, err := h.service.ListModels(ctx, queryValues(c))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) GetModel(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	resp, err := h.service.GetModel(ctx, id)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) CreateModel(ctx context.Context, c *app.RequestContext) {
	resp, err := h.service.CreateModel(ctx, middleware.UploadBatch(c, h.service.Storage()))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusCreated, resp)
}

func (h *MediaHandler) UpdateModel(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	resp, err := h.service.UpdateModel(ctx, id, middleware.UploadBatch(c, h.service.Storage()))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, resp)
}

func (h *MediaHandler) DeleteModel(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	if err := h.service.DeleteModel(ctx, id); err != nil {
		writeError(ctx, c, err)
		return
	}
	c.Status(consts.StatusNoContent)
}

func (h *MediaHandler) DownloadModel(ctx context.Context, c *app.RequestContext) {
	h.serveFile(ctx, c, h.service.ModelFile)
}

func (h *MediaHandler) PreviewModel(ctx context.Context, c *app.RequestContext) {
	h.serveFile(ctx, c, h.service.ModelPreview)
}

func (h *MediaHandler) ModelThumbnail(ctx context.Context, c *app.RequestContext) {
	h.serveFile(ctx, c, h.service.ModelThumbnail)
}

func (h *MediaHandler) serveFile(ctx context.Context, c *app.RequestContext, open func(context.Context, uint) (*service.FileContent, error)) {
	id, err := pathID(c)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	fc, err := open(ctx, id)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	respondFile(c, fc)
}
