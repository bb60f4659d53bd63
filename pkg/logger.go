package pkg

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger создаёт JSON-логгер. Уровень задаётся переменной окружения
// LOG_LEVEL (debug/info/warn/error), по умолчанию info.
func NewLogger(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevelFromEnv()})
	return slog.New(handler)
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
