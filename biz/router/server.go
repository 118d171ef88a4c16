package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/yi-nology/blender_board/pkg/config"
)

// NewServer builds the hertz server. Request bodies are streamed and
// multipart forms are not pre-parsed, so the upload middleware sees the
// headers of an oversized upload before its body is read.
func NewServer(cfg config.ServerConfig) *server.Hertz {
	return server.New(
		server.WithHostPorts(cfg.Address),
		server.WithMaxRequestBodySize(int(cfg.MaxRequestBodySize)),
		server.WithStreamBody(true),
		server.WithDisablePreParseMultipartForm(true),
	)
}
