package util

import (
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// ParseLogLevel maps a config level name to an hlog level. Unknown names
// fall back to info.
func ParseLogLevel(name string) hlog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
