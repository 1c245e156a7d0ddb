package config

import (
	"io"
	log "log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// ParseLevel maps a flag value to a slog level. Unknown names fall back to info.
func ParseLevel(name string) log.Level {
	if lvl, ok := logLevelMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return log.LevelInfo
}

// SetupLogger installs a tint handler writing to w as the default logger.
func SetupLogger(w io.Writer, level string) *log.Logger {
	l := log.New(tint.NewHandler(w, &tint.Options{
		Level: ParseLevel(level),
	}))
	log.SetDefault(l)
	return l
}
