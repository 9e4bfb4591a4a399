// cmd/lcdemu/logger_test.go
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tamzrod/lcd-emulator/internal/config"
)

func TestNewLogger_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.log")

	log, closeLog, err := newLogger(config.LogConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level=%v", log.GetLevel())
	}

	log.Info().Msg("dropped")
	log.Warn().Str("component", "link").Msg("kept")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(raw)
	if strings.Contains(got, "dropped") || !strings.Contains(got, `"component":"link"`) {
		t.Fatalf("log file=%q", got)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, _, err := newLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error")
	}
}
