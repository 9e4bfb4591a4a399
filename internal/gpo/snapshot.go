// internal/gpo/snapshot.go
package gpo

import "github.com/tamzrod/lcd-emulator/internal/eeprom"

// Channels is the number of general purpose outputs on the module.
const Channels = eeprom.GPOCount

// Remote memory areas, numbered like Modbus function codes.
const (
	AreaCoils            byte = 1
	AreaHoldingRegisters byte = 3
)

// Snapshot represents exactly what the mirror is allowed to deliver.
// Index 0 is GPO 1.
type Snapshot struct {
	On    [Channels]bool
	Level [Channels]byte
}

// Bits returns the on/off state as a coil block.
func (s Snapshot) Bits() []bool {
	out := make([]bool, Channels)
	copy(out, s.On[:])
	return out
}

// Registers returns the PWM levels as a holding register block.
func (s Snapshot) Registers() []uint16 {
	out := make([]uint16, Channels)
	for i, v := range s.Level {
		out[i] = uint16(v)
	}
	return out
}
