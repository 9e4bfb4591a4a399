// internal/chip/state.go
package chip

import "github.com/tamzrod/lcd-emulator/internal/gpo"

// Flags is the packed display control byte.
type Flags byte

const (
	FlagCursor  Flags = 0x01
	FlagBlink   Flags = 0x02
	FlagDisplay Flags = 0x04
	FlagGeneral Flags = 0x08 // always set
)

func (f Flags) Has(x Flags) bool { return f&x == x }

// DeviceState is the volatile controller state.
// It is seeded from the store at startup and owned by the chip.
type DeviceState struct {
	Flags     Flags
	OnFor     byte // armed auto-off minutes, 0 when not armed
	Contrast  byte
	Backlight byte
	Remember  bool
	GPO       gpo.Snapshot
}
