package middleware

import (
	"context"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/blender_board/pkg/common"
)

// Recovery turns a panic into a 500 with the standard error body. Staged
// uploads are still discarded because the upload middleware's deferred
// cleanup runs while the panic unwinds.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			hlog.CtxErrorf(ctx, "panic in %s %s: %v\n%s",
				c.Request.Method(), c.Request.URI().Path(), r, debug.Stack())
			appErr := common.NewInternalError(nil)
			c.AbortWithStatusJSON(appErr.Status, appErr.Response())
		}()
		c.Next(ctx)
	}
}
