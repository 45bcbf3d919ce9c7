package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/polkiloo/dealerflow/internal/config"
)

// New creates the service JSON logger at the configured level.
func New(cfg *config.Config) (*slog.Logger, error) {
	return newLogger(os.Stdout, cfg.LogLevel)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With(slog.String("service", "dealerflow")), nil
}
