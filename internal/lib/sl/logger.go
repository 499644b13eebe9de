package sl

import (
	"io"
	"log/slog"
)

const envProd = "prod"

// SetupLogger создаёт логгер для окружения env.
// prod пишет JSON с уровнем Info, остальные окружения пишут текст с уровнем Debug.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	if env == envProd {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
