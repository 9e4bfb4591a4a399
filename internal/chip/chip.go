// internal/chip/chip.go
package chip

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/lcd-emulator/internal/display"
	"github.com/tamzrod/lcd-emulator/internal/eeprom"
	"github.com/tamzrod/lcd-emulator/internal/gpo"
)

// Link is the byte channel the chip talks over.
type Link interface {
	ReadByte() (byte, error)
	ReadBytes(n int) ([]byte, error)
	WriteByte(b byte) error
	WriteBytes(p []byte) error
	WriteUnsolicitedByte(b byte)
}

// Store is the persisted controller memory.
type Store interface {
	Byte(addr byte) byte
	Bytes(addr byte, n int) []byte
	SetByte(addr, x byte) error
	SetBytes(addr byte, p []byte) error
}

// Indicator receives every GPO change.
type Indicator interface {
	Publish(s gpo.Snapshot)
}

// ReadMessage answers with this many cells.
const liveMessageLen = 80

// Config wires a chip to its collaborators.
// Link, Store and Display are required.
type Config struct {
	Link       Link
	Store      Store
	Display    display.Display
	Indicator  Indicator     // optional
	Clock      Clock         // optional, real time by default
	ButtonHold time.Duration // click hold time, 50ms by default
	Log        zerolog.Logger
}

// Chip is the protocol engine.
//
// HandleByte runs on the link's receive goroutine. mu guards state and the
// auto-off timer, which fires on its own goroutine. Button state has its
// own lock so unsolicited events never wait for a command to finish.
type Chip struct {
	link      Link
	store     Store
	display   display.Display
	indicator Indicator
	clock     Clock
	hold      time.Duration
	log       zerolog.Logger

	mu    sync.Mutex
	state DeviceState
	timer Timer
	gen   uint64

	buttonMu sync.Mutex
	down     [ButtonCount]bool
}

// New builds a chip and restores the saved state onto the display.
func New(cfg Config) (*Chip, error) {
	if cfg.Link == nil || cfg.Store == nil || cfg.Display == nil {
		return nil, errors.New("chip: link, store and display are required")
	}

	c := &Chip{
		link:      cfg.Link,
		store:     cfg.Store,
		display:   cfg.Display,
		indicator: cfg.Indicator,
		clock:     cfg.Clock,
		hold:      cfg.ButtonHold,
		log:       cfg.Log.With().Str("component", "chip").Logger(),
	}
	if c.indicator == nil {
		c.indicator = nopIndicator{}
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.hold <= 0 {
		c.hold = 50 * time.Millisecond
	}

	c.restore()
	return c, nil
}

type nopIndicator struct{}

func (nopIndicator) Publish(gpo.Snapshot) {}

// restore loads the saved settings and startup message.
func (c *Chip) restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, s := c.display, c.store

	d.Clear()

	c.state.Flags = Flags(s.Byte(eeprom.AddrFlags)) | FlagGeneral
	d.SetOn(c.state.Flags.Has(FlagDisplay))
	d.SetBlink(c.state.Flags.Has(FlagBlink))
	d.SetCursorVisible(c.state.Flags.Has(FlagCursor))

	c.state.OnFor = s.Byte(eeprom.AddrDisplayMinutes)
	c.armLocked(c.state.OnFor)

	c.state.Backlight = s.Byte(eeprom.AddrBacklight)
	d.SetBacklight(c.state.Backlight)
	c.state.Contrast = s.Byte(eeprom.AddrContrast)
	d.SetContrast(c.state.Contrast)

	for i := 0; i < gpo.Channels; i++ {
		c.state.GPO.On[i] = s.Byte(eeprom.GPOAddr(i)) > 0
		c.state.GPO.Level[i] = s.Byte(eeprom.GPOLevelAddr(i))
	}
	c.indicator.Publish(c.state.GPO)

	for i := 0; i < eeprom.GlyphCount; i++ {
		_ = d.SetGlyph(i, s.Bytes(eeprom.GlyphAddr(i), eeprom.GlyphLen))
	}

	rows, cols := d.Size()
	for i := 0; i < eeprom.LineCount && i < rows; i++ {
		line := s.Bytes(eeprom.LineAddr(i), eeprom.LineLen)
		if len(line) > cols {
			line = line[:cols]
		}
		d.Goto(1, byte(i+1))
		d.WriteBytes(line)
	}
	d.Home()

	c.log.Info().
		Uint8("flags", byte(c.state.Flags)).
		Uint8("auto_off_min", c.state.OnFor).
		Uint8("contrast", c.state.Contrast).
		Uint8("backlight", c.state.Backlight).
		Msg("state restored")
}

// State returns a copy of the device state.
func (c *Chip) State() DeviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels a pending auto-off.
func (c *Chip) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armLocked(0)
}

// ---- protocol ----

// HandleByte consumes one received byte. A non-escape byte is written to the
// display. The escape byte pulls the opcode and its arguments off the link
// before anything is executed.
//
// Link errors are returned unchanged; the caller should drop the session.
// A *display.ArgumentRangeError leaves the session usable.
func (c *Chip) HandleByte(b byte) error {
	if b != Escape {
		c.log.Trace().Uint8("byte", b).Msg("literal")
		c.display.Write(b)
		return nil
	}

	op, err := c.link.ReadByte()
	if err != nil {
		return err
	}
	cmd := Command(op)

	if !cmd.Known() {
		c.log.Debug().Uint8("opcode", op).Msg("unknown opcode ignored")
		return nil
	}

	var args []byte
	if n := cmd.Args(); n > 0 {
		if args, err = c.link.ReadBytes(n); err != nil {
			return err
		}
	}

	c.log.Debug().Stringer("cmd", cmd).Int("args", len(args)).Msg("command")

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execLocked(cmd, args)
}

func (c *Chip) execLocked(cmd Command, args []byte) error {
	d, s := c.display, c.store

	switch cmd {

	// ---- identity / misc ----

	case CmdFirmware:
		c.log.Info().Msg("firmware mode requested; not emulated")
		return nil
	case CmdReadVersion:
		return c.link.WriteByte(Version)
	case CmdReadModuleType:
		return c.link.WriteByte(ModuleType)
	case CmdSetSerialNum:
		return c.persist(eeprom.AddrSerial, args)
	case CmdReadSerialNum:
		return c.link.WriteBytes(s.Bytes(eeprom.AddrSerial, eeprom.SerialLen))
	case CmdSetLargeDisplay:
		return c.persist(eeprom.AddrLargeDisplay, []byte{boolByte(args[0] != 0)})
	case CmdIsLargeDisplay:
		return c.link.WriteByte(boolByte(s.Byte(eeprom.AddrLargeDisplay) != 0))
	case CmdRemember:
		c.state.Remember = args[0] == 1
		return nil

	// ---- display control ----

	case CmdDisplayOn:
		c.state.Flags |= FlagDisplay
		d.SetOn(true)
		c.state.OnFor = args[0]
		c.armLocked(c.state.OnFor)
		return c.rememberIt(eeprom.AddrFlags, byte(c.state.Flags), eeprom.AddrDisplayMinutes, c.state.OnFor)
	case CmdDisplayOff:
		c.state.Flags &^= FlagDisplay
		d.SetOn(false)
		c.state.OnFor = 0
		c.armLocked(0)
		return c.rememberIt(eeprom.AddrFlags, byte(c.state.Flags))
	case CmdCursorOn, CmdCursorOff:
		c.setFlag(FlagCursor, cmd == CmdCursorOn)
		d.SetCursorVisible(cmd == CmdCursorOn)
		return c.rememberIt(eeprom.AddrFlags, byte(c.state.Flags))
	case CmdBlinkOn, CmdBlinkOff:
		c.setFlag(FlagBlink, cmd == CmdBlinkOn)
		d.SetBlink(cmd == CmdBlinkOn)
		return c.rememberIt(eeprom.AddrFlags, byte(c.state.Flags))
	case CmdContrast:
		c.state.Contrast = args[0]
		d.SetContrast(args[0])
		return c.rememberIt(eeprom.AddrContrast, args[0])
	case CmdBacklight, CmdBacklightAlt:
		c.state.Backlight = args[0]
		d.SetBacklight(args[0])
		return c.rememberIt(eeprom.AddrBacklight, args[0])
	case CmdSaveBacklight:
		c.state.Backlight = args[0]
		d.SetBacklight(args[0])
		return c.persist(eeprom.AddrBacklight, args)

	// ---- text ----

	case CmdClearDisplay:
		d.Clear()
	case CmdHome:
		d.Home()
	case CmdCursorLeft:
		d.CursorLeft()
	case CmdCursorRight:
		d.CursorRight()
	case CmdPosition:
		d.Goto(args[0], args[1])
	case CmdChar254:
		d.Write(Escape)
	case CmdSaveStartup:
		return c.persist(eeprom.AddrMessage, args)

	// ---- glyphs ----

	case CmdDefineCustom:
		return d.SetGlyph(int(args[0]), args[1:])
	case CmdRememberCustom:
		if i := int(args[0]); i < eeprom.GlyphCount {
			return c.persist(eeprom.GlyphAddr(i), args[1:])
		}
	case CmdReadCustom:
		return c.link.WriteBytes(orZeros(d.Glyph(int(args[0])), eeprom.GlyphLen))
	case CmdReadSavedCustom:
		var glyph []byte
		if i := int(args[0]); i < eeprom.GlyphCount {
			glyph = s.Bytes(eeprom.GlyphAddr(i), eeprom.GlyphLen)
		}
		return c.link.WriteBytes(orZeros(glyph, eeprom.GlyphLen))

	// ---- GPO ----

	case CmdGPOon, CmdGPOoff:
		if i, ok := channel(args[0]); ok {
			c.state.GPO.On[i] = cmd == CmdGPOon
			c.indicator.Publish(c.state.GPO)
		}
	case CmdGPOpwm, CmdGPOpwmAlt:
		if i, ok := channel(args[0]); ok {
			c.state.GPO.Level[i] = args[1]
			c.indicator.Publish(c.state.GPO)
		}
	case CmdRememberGPO:
		if i, ok := channel(args[0]); ok {
			return c.persist(eeprom.GPOAddr(i), []byte{boolByte(args[1] > 0)})
		}
	case CmdRememberGPOpwm:
		if i, ok := channel(args[0]); ok {
			return c.persist(eeprom.GPOLevelAddr(i), args[1:2])
		}
	case CmdReadGPO:
		i, ok := channel(args[0])
		return c.link.WriteByte(boolByte(ok && c.state.GPO.On[i]))
	case CmdReadGPOpwm:
		var v byte
		if i, ok := channel(args[0]); ok {
			v = c.state.GPO.Level[i]
		}
		return c.link.WriteByte(v)
	case CmdReadSavedGPO:
		i, ok := channel(args[0])
		return c.link.WriteByte(boolByte(ok && s.Byte(eeprom.GPOAddr(i)) > 0))
	case CmdReadSavedGPOpwm:
		var v byte
		if i, ok := channel(args[0]); ok {
			v = s.Byte(eeprom.GPOLevelAddr(i))
		}
		return c.link.WriteByte(v)

	// ---- buttons ----

	case CmdReadButton:
		return c.link.WriteByte(c.buttonCode(args[0]))

	// ---- live reads ----

	case CmdReadDisplay:
		return c.link.WriteByte(byte(c.state.Flags))
	case CmdReadDisplayMin:
		return c.link.WriteByte(c.state.OnFor)
	case CmdReadContrast:
		return c.link.WriteByte(c.state.Contrast)
	case CmdReadBacklight:
		return c.link.WriteByte(c.state.Backlight)
	case CmdReadMessage:
		return c.link.WriteBytes(c.liveMessage())

	// ---- saved reads ----

	case CmdReadSavedDisplay:
		return c.link.WriteByte(s.Byte(eeprom.AddrFlags))
	case CmdReadSavedDisplayMin:
		return c.link.WriteByte(s.Byte(eeprom.AddrDisplayMinutes))
	case CmdReadSavedContrast:
		return c.link.WriteByte(s.Byte(eeprom.AddrContrast))
	case CmdReadSavedBacklight:
		return c.link.WriteByte(s.Byte(eeprom.AddrBacklight))
	case CmdReadSavedMessage:
		return c.link.WriteBytes(s.Bytes(eeprom.AddrMessage, eeprom.MessageLen))
	}

	return nil
}

// ---- persistence ----

// rememberIt persists address/value pairs only while the remember flag is set.
func (c *Chip) rememberIt(pairs ...byte) error {
	if !c.state.Remember {
		return nil
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := c.persist(pairs[i], pairs[i+1:i+2]); err != nil {
			return err
		}
	}
	return nil
}

// persist writes through to the store regardless of the remember flag.
func (c *Chip) persist(addr byte, p []byte) error {
	if err := c.store.SetBytes(addr, p); err != nil {
		return fmt.Errorf("chip: persist 0x%02x: %w", addr, err)
	}
	return nil
}

// ---- helpers ----

func (c *Chip) setFlag(f Flags, on bool) {
	if on {
		c.state.Flags |= f
	} else {
		c.state.Flags &^= f
	}
}

// liveMessage returns the first cells of the display, space padded.
func (c *Chip) liveMessage() []byte {
	out := c.display.Content()
	if len(out) >= liveMessageLen {
		return out[:liveMessageLen]
	}
	for len(out) < liveMessageLen {
		out = append(out, ' ')
	}
	return out
}

// channel converts a 1-based GPO number to an index.
func channel(n byte) (int, bool) {
	i := int(n) - 1
	return i, i >= 0 && i < gpo.Channels
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func orZeros(p []byte, n int) []byte {
	if len(p) == n {
		return p
	}
	return make([]byte, n)
}
