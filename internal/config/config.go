// internal/config/config.go
package config

type Config struct {
	Chip      ChipConfig       `yaml:"chip" toml:"chip"`
	Display   DisplayConfig    `yaml:"display" toml:"display"`
	GPOMirror *GPOMirrorConfig `yaml:"gpo_mirror" toml:"gpo_mirror"`
	Log       LogConfig        `yaml:"log" toml:"log"`
	Console   bool             `yaml:"console" toml:"console"`
}

// ---- CHIP ----

type ChipConfig struct {
	Link         string `yaml:"link" toml:"link"`     // serial:<port>[:<baud>] | tcp:<port>[:local] | pipe:<name>
	EEPROM       string `yaml:"eeprom" toml:"eeprom"` // path of the 256-byte store
	ButtonHoldMs int    `yaml:"button_hold_ms" toml:"button_hold_ms"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Rows int `yaml:"rows" toml:"rows"`
	Cols int `yaml:"cols" toml:"cols"`
}

// ---- GPO MIRROR (optional) ----

type GPOMirrorConfig struct {
	Kind         string `yaml:"kind" toml:"kind"` // modbus | ingest
	Endpoint     string `yaml:"endpoint" toml:"endpoint"`
	UnitID       uint8  `yaml:"unit_id" toml:"unit_id"`
	CoilBase     uint16 `yaml:"coil_base" toml:"coil_base"`
	RegisterBase uint16 `yaml:"register_base" toml:"register_base"`
	TimeoutMs    int    `yaml:"timeout_ms" toml:"timeout_ms"`
	RetryMs      int    `yaml:"retry_ms" toml:"retry_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // trace|debug|info|warn|error|disabled
	Format string `yaml:"format" toml:"format"` // console|json
	Output string `yaml:"output" toml:"output"` // stderr|stdout|<path>
}

// Mirror kinds.
const (
	MirrorModbus = "modbus"
	MirrorIngest = "ingest"
)
