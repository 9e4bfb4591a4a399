// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML (.yaml/.yml) or TOML (.toml) config file.
// It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &cfg); err != nil {
			return nil, fmt.Errorf("config: decode toml: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}

	return &cfg, nil
}
