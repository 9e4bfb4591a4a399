// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultRows         = 4
	DefaultCols         = 40
	DefaultButtonHoldMs = 50
	DefaultTimeoutMs    = 1000
	DefaultRetryMs      = 5000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Display.Rows == 0 {
		cfg.Display.Rows = DefaultRows
	}
	if cfg.Display.Cols == 0 {
		cfg.Display.Cols = DefaultCols
	}
	if cfg.Chip.ButtonHoldMs == 0 {
		cfg.Chip.ButtonHoldMs = DefaultButtonHoldMs
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}

	// ------------------------------------------------------------
	// GPO MIRROR NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	m := cfg.GPOMirror
	if m == nil {
		return
	}
	m.Kind = strings.ToLower(strings.TrimSpace(m.Kind))
	if m.Kind == "" {
		m.Kind = MirrorModbus
	}
	if m.UnitID == 0 {
		m.UnitID = 1
	}
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultTimeoutMs
	}
	if m.RetryMs == 0 {
		m.RetryMs = DefaultRetryMs
	}
}
