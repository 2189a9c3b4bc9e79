// Package sl содержит вспомогательные функции для работы с логгером slog:
// создание логгера под окружение и единообразные поля ошибок.
package sl

import (
	"io"
	"log/slog"
	"os"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger создает логгер в stdout: текстовый для local, JSON для остальных.
func SetupLogger(env string) *slog.Logger {
	return NewLogger(os.Stdout, env)
}

// NewLogger создает логгер, пишущий в w.
func NewLogger(w io.Writer, env string) *slog.Logger {
	switch env {
	case EnvLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
