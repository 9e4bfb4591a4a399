// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tamzrod/lcd-emulator/internal/eeprom"
	"github.com/tamzrod/lcd-emulator/internal/link"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// CHIP
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Chip.Link) == "" {
		return fmt.Errorf("chip.link is required")
	}
	if _, err := link.ParseSpec(cfg.Chip.Link); err != nil {
		return fmt.Errorf("chip.link: %w", err)
	}
	if strings.TrimSpace(cfg.Chip.EEPROM) == "" {
		return fmt.Errorf("chip.eeprom is required")
	}
	if cfg.Chip.ButtonHoldMs < 0 {
		return fmt.Errorf("chip.button_hold_ms must not be negative")
	}

	// ------------------------------------------------------------
	// DISPLAY (0 means default)
	// ------------------------------------------------------------

	if cfg.Display.Rows < 0 || cfg.Display.Rows > 4 {
		return fmt.Errorf("display.rows=%d out of range 1..4", cfg.Display.Rows)
	}
	if cfg.Display.Cols < 0 || cfg.Display.Cols > 40 {
		return fmt.Errorf("display.cols=%d out of range 1..40", cfg.Display.Cols)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Log.Level))); err != nil {
		return fmt.Errorf("log.level %q: %w", cfg.Log.Level, err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Log.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q must be console or json", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// GPO MIRROR (OPT-IN)
	// ------------------------------------------------------------

	m := cfg.GPOMirror
	if m == nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(m.Kind)) {
	case "", MirrorModbus, MirrorIngest:
	default:
		return fmt.Errorf("gpo_mirror.kind %q must be %s or %s", m.Kind, MirrorModbus, MirrorIngest)
	}

	if strings.TrimSpace(m.Endpoint) == "" {
		return fmt.Errorf("gpo_mirror.endpoint is required")
	}
	if m.TimeoutMs < 0 || m.RetryMs < 0 {
		return fmt.Errorf("gpo_mirror timeouts must not be negative")
	}

	// every channel starting at each base must fit the 16-bit address space
	if uint32(m.CoilBase)+eeprom.GPOCount-1 > 0xFFFF {
		return fmt.Errorf("gpo_mirror.coil_base=%d overflows address space", m.CoilBase)
	}
	if uint32(m.RegisterBase)+eeprom.GPOCount-1 > 0xFFFF {
		return fmt.Errorf("gpo_mirror.register_base=%d overflows address space", m.RegisterBase)
	}

	return nil
}
