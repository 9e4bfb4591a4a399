// internal/display/display.go
package display

import (
	"fmt"

	"github.com/tamzrod/lcd-emulator/internal/eeprom"
)

// Display is the surface the protocol engine drives.
// Implementations must be safe for use from the protocol goroutine
// and the auto-off timer at the same time.
type Display interface {
	Write(c byte)
	WriteBytes(p []byte)
	Clear()
	Home()
	CursorLeft()
	CursorRight()
	Goto(col, row byte)

	SetOn(on bool)
	SetCursorVisible(on bool)
	SetBlink(on bool)
	SetContrast(level byte)
	SetBacklight(level byte)

	SetGlyph(index int, glyph []byte) error
	Glyph(index int) []byte
	Content() []byte
	Size() (rows, cols int)
}

// Glyph geometry, shared with the saved glyph slots.
const (
	GlyphCount = eeprom.GlyphCount
	GlyphLen   = eeprom.GlyphLen
)

// ArgumentRangeError reports an argument outside its allowed range.
type ArgumentRangeError struct {
	Arg   string
	Value int
	Min   int
	Max   int
}

func (e *ArgumentRangeError) Error() string {
	return fmt.Sprintf("display: %s=%d out of range [%d,%d]", e.Arg, e.Value, e.Min, e.Max)
}

// CheckGlyph validates a glyph slot index and payload.
func CheckGlyph(index int, glyph []byte) error {
	if index < 0 || index >= GlyphCount {
		return &ArgumentRangeError{Arg: "glyph index", Value: index, Min: 0, Max: GlyphCount - 1}
	}
	if len(glyph) != GlyphLen {
		return &ArgumentRangeError{Arg: "glyph length", Value: len(glyph), Min: GlyphLen, Max: GlyphLen}
	}
	return nil
}
