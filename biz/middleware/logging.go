package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Logging returns a middleware that logs one line per request.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		status := c.Response.StatusCode()
		line := "[%s] %s %s %d %v"
		args := []any{c.ClientIP(), string(c.Request.Method()), string(c.Request.URI().Path()), status, time.Since(start)}
		switch {
		case status >= 500:
			hlog.CtxErrorf(ctx, line, args...)
		case status >= 400:
			hlog.CtxWarnf(ctx, line, args...)
		default:
			hlog.CtxInfof(ctx, line, args...)
		}
	}
}
