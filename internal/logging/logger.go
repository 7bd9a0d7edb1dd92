package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"fmiweather/internal/config"
)

// New returns a colored tint logger in dev and a JSON logger otherwise
func New(w io.Writer, cfg config.Config, version string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "fmiweather")
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", "fmiweather",
		"version", version,
		"env", cfg.AppEnv,
	)
}
