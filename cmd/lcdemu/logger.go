// cmd/lcdemu/logger.go
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/lcd-emulator/internal/config"
)

// newLogger builds the root logger from the log section.
// The returned close func releases an output file, if any.
func newLogger(c config.LogConfig) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("log.level: %w", err)
	}

	var (
		w       io.Writer
		closeFn = func() error { return nil }
	)

	switch c.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("log.output: %w", err)
		}
		w, closeFn = f, f.Close
	}

	if c.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr && w != os.Stdout}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closeFn, nil
}
