// Package logger builds the zerolog logger shared by the CLI and server
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shivavenkatesh/chunkviz/internal/config"
)

// New creates a logger writing to w. Human-readable console output unless cfg.JSON.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Setup creates a stderr logger and installs it as the global logger
func Setup(cfg config.LogConfig) (zerolog.Logger, error) {
	l, err := New(cfg, os.Stderr)
	if err != nil {
		return l, err
	}
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l, nil
}
