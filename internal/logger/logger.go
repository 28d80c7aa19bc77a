// Package logger builds the slog logger used across babylog.
package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rcliao/babylog/internal/config"
)

// New returns a text logger for dev and a JSON logger for prod. level
// overrides the environment default when it names a slog level.
func New(w io.Writer, env config.Environment, level string) *slog.Logger {
	var handler slog.Handler
	switch env {
	case config.Development:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     parseLevel(level, slog.LevelDebug),
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: parseLevel(level, slog.LevelInfo),
		})
	}
	return slog.New(handler)
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return l
}
