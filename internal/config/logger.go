package config

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// NewLogger builds a slog.Logger for the configured level and format:
// "json", "tint" (colored console output) or plain text. It does not touch
// the global logger.
func (r Runtime) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch r.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	switch r.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	case "tint":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02 15:04:05.000Z07:00",
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		}))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}
