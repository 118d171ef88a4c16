package handler

import (
	"context"
	"mime"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/blender_board/biz/service"
	"github.com/yi-nology/blender_board/pkg/common"
	"github.com/yi-nology/blender_board/pkg/validator"
)

// Ping answers health checks.
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"message": "pong"})
}

// writeError renders err as {"error","code"}. Internal errors are logged
// and reported with a generic message.
func writeError(ctx context.Context, c *app.RequestContext, err error) {
	appErr := common.AsError(err)
	if appErr.Status >= consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "%s %s: %v", c.Request.Method(), c.Request.URI().Path(), err)
	}
	c.JSON(appErr.Status, appErr.Response())
}

// pathID parses the :id route parameter.
func pathID(c *app.RequestContext) (uint, error) {
	return validator.ParseID(c.Param("id"))
}

func queryValues(c *app.RequestContext) map[string][]string {
	values := map[string][]string{}
	c.QueryArgs().VisitAll(func(key, value []byte) {
		values[string(key)] = append(values[string(key)], string(value))
	})
	return values
}

// respondFile streams fc. The response closes the body once written.
func respondFile(c *app.RequestContext, fc *service.FileContent) {
	disposition := "attachment"
	if fc.Inline {
		disposition = "inline"
	}
	if header := mime.FormatMediaType(disposition, map[string]string{"filename": fc.Name}); header != "" {
		c.Response.Header.Set("Content-Disposition", header)
	} else {
		c.Response.Header.Set("Content-Disposition", disposition)
	}
	c.SetStatusCode(consts.StatusOK)
	c.SetContentType(fc.MimeType)
	c.SetBodyStream(fc.Body, int(fc.Size))
}
