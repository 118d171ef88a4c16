package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/blender_board/pkg/config"
)

// exposedHeaders lets browser clients read the download file name and size.
const exposedHeaders = "Content-Disposition, Content-Length"

// CORS answers preflight requests and decorates responses for the gallery
// front end. AllowOrigin may list several origins separated by commas; the
// matching one is echoed back.
func CORS(cfg *config.CORSConfig) app.HandlerFunc {
	origins := []string{"*"}
	allowMethods := "GET,POST,PATCH,DELETE,OPTIONS"
	allowHeaders := "*"
	allowCredentials := false

	if cfg != nil {
		if list := splitList(cfg.AllowOrigin); len(list) > 0 {
			origins = list
		}
		if cfg.AllowMethods != "" {
			allowMethods = cfg.AllowMethods
		}
		if cfg.AllowHeaders != "" {
			allowHeaders = cfg.AllowHeaders
		}
		allowCredentials = cfg.AllowCredentials
	}
	wildcard := slices.Contains(origins, "*")

	return func(ctx context.Context, c *app.RequestContext) {
		origin := string(c.Request.Header.Peek("Origin"))
		switch {
		case wildcard && !allowCredentials:
			c.Response.Header.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && (wildcard || slices.Contains(origins, origin)):
			c.Response.Header.Set("Access-Control-Allow-Origin", origin)
			c.Response.Header.Add("Vary", "Origin")
		}
		c.Response.Header.Set("Access-Control-Allow-Methods", allowMethods)
		c.Response.Header.Set("Access-Control-Allow-Headers", allowHeaders)
		c.Response.Header.Set("Access-Control-Expose-Headers", exposedHeaders)
		if allowCredentials {
			c.Response.Header.Set("Access-Control-Allow-Credentials", "true")
		}

		if string(c.Request.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
