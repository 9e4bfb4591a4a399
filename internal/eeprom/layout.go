// internal/eeprom/layout.go
package eeprom

// Address map of the emulated controller memory.
// Offsets are protocol-locked and MUST NOT be configurable.

// Size is the fixed size of the persisted medium.
const Size = 256

// ---- DISPLAY ----

// AddrFlags holds the packed display/cursor/blink flags.
const AddrFlags byte = 0x00

// AddrDisplayMinutes holds the auto-off timeout in minutes.
const AddrDisplayMinutes byte = 0x01

// AddrBacklight holds the backlight level.
const AddrBacklight byte = 0x02

// AddrContrast holds the contrast level.
const AddrContrast byte = 0x03

// ---- GPO ----

// GPOCount is the number of general purpose outputs.
const GPOCount = 5

// AddrGPO is the first of GPOCount on/off flags.
const AddrGPO byte = 0x04

// AddrGPOLevel is the first of GPOCount PWM levels.
const AddrGPOLevel byte = 0x09

// ---- IDENTITY ----

// AddrSerial is the first of two serial number bytes.
const AddrSerial byte = 0x0E

// SerialLen is the serial number length in bytes.
const SerialLen = 2

// ---- GLYPHS ----

// GlyphCount is the number of custom glyph slots.
const GlyphCount = 8

// GlyphLen is the size of one glyph in bytes.
const GlyphLen = 8

// AddrGlyph is the first glyph slot.
const AddrGlyph byte = 0x10

// ---- STARTUP MESSAGE ----

// LineLen is the length of one saved message line.
const LineLen = 40

// LineCount is the number of saved message lines.
const LineCount = 4

// MessageLen is the full saved message length.
const MessageLen = LineLen * LineCount

// AddrMessage is the first byte of the saved message.
const AddrMessage byte = 0x50

// ---- MISC ----

// AddrLargeDisplay holds the large display marker (>80 cells).
const AddrLargeDisplay byte = 0xF0

// AddrFirmware is set when a firmware reload is pending. Unused by the emulator.
const AddrFirmware byte = 0xFF

// GPOAddr returns the on/off flag address of a 0-based GPO index.
func GPOAddr(i int) byte { return AddrGPO + byte(i) }

// GPOLevelAddr returns the PWM level address of a 0-based GPO index.
func GPOLevelAddr(i int) byte { return AddrGPOLevel + byte(i) }

// GlyphAddr returns the first address of glyph slot i.
func GlyphAddr(i int) byte { return AddrGlyph + byte(i*GlyphLen) }

// LineAddr returns the first address of saved message line i.
func LineAddr(i int) byte { return AddrMessage + byte(i*LineLen) }
