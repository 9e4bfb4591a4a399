// internal/display/text.go
package display

import (
	"strings"
	"sync"
)

// Default geometry of the emulated module.
const (
	DefaultRows = 4
	DefaultCols = 40
)

// State is a point-in-time copy of the surface settings.
type State struct {
	On            bool
	CursorVisible bool
	Blink         bool
	Contrast      byte
	Backlight     byte
	Cursor        int
}

// Text is a headless character surface: a rows*cols cell buffer with
// a wrapping cursor, glyph RAM and the visual settings.
type Text struct {
	mu sync.Mutex

	rows, cols int
	cells      []byte
	cursor     int

	on            bool
	cursorVisible bool
	blink         bool
	contrast      byte
	backlight     byte

	glyphs [GlyphCount][GlyphLen]byte
}

// NewText returns a cleared surface. Non-positive dimensions fall back to the defaults.
func NewText(rows, cols int) *Text {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	t := &Text{
		rows:          rows,
		cols:          cols,
		cells:         make([]byte, rows*cols),
		on:            true,
		cursorVisible: true,
		contrast:      0xFF / 2,
		backlight:     0xFF,
	}
	t.Clear()
	return t
}

func (t *Text) Size() (rows, cols int) { return t.rows, t.cols }

// ---- text ----

func (t *Text) Write(c byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cells[t.cursor] = c
	t.moveLocked(t.cursor + 1)
}

func (t *Text) WriteBytes(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range p {
		t.cells[t.cursor] = c
		t.moveLocked(t.cursor + 1)
	}
}

// Clear fills every cell with spaces. The cursor does not move.
func (t *Text) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.cells {
		t.cells[i] = ' '
	}
}

func (t *Text) Home() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = 0
}

func (t *Text) CursorLeft() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moveLocked(t.cursor - 1)
}

func (t *Text) CursorRight() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moveLocked(t.cursor + 1)
}

// Goto moves to a 1-based column and row. Out-of-range positions wrap.
func (t *Text) Goto(col, row byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moveLocked(t.cols*(int(row)-1) + (int(col) - 1))
}

func (t *Text) moveLocked(pos int) {
	n := len(t.cells)
	t.cursor = ((pos % n) + n) % n
}

// Content returns a copy of every cell, row-major.
func (t *Text) Content() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.cells...)
}

// ---- settings ----

func (t *Text) SetOn(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.on = on
}

func (t *Text) SetCursorVisible(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursorVisible = on
}

func (t *Text) SetBlink(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blink = on
}

func (t *Text) SetContrast(level byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.contrast = level
}

func (t *Text) SetBacklight(level byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.backlight = level
}

func (t *Text) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		On:            t.on,
		CursorVisible: t.cursorVisible,
		Blink:         t.blink,
		Contrast:      t.contrast,
		Backlight:     t.backlight,
		Cursor:        t.cursor,
	}
}

// ---- glyphs ----

// SetGlyph replaces glyph slot index. Invalid input leaves the slot untouched.
func (t *Text) SetGlyph(index int, glyph []byte) error {
	if err := CheckGlyph(index, glyph); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copy(t.glyphs[index][:], glyph)
	return nil
}

// Glyph returns a copy of slot index, or nil when out of range.
func (t *Text) Glyph(index int) []byte {
	if index < 0 || index >= GlyphCount {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.glyphs[index][:]...)
}

// Render draws the surface as rows of text.
// Glyph codes 0-7 render as their slot digit, or blank while the slot is
// empty. Other non-printables render as '?'.
// A display that is off renders blank.
func (t *Text) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	for r := 0; r < t.rows; r++ {
		sb.WriteByte('|')
		for c := 0; c < t.cols; c++ {
			ch := t.cells[r*t.cols+c]
			switch {
			case !t.on:
				ch = ' '
			case ch < GlyphCount && t.glyphs[ch] == [GlyphLen]byte{}:
				ch = ' '
			case ch < GlyphCount:
				ch = '0' + ch
			case ch < 0x20 || ch > 0x7E:
				ch = '?'
			}
			sb.WriteByte(ch)
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
