// internal/display/text_test.go
package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCursorRight_FullLapReturnsToStart(t *testing.T) {
	sizes := [][2]int{{4, 40}, {2, 16}, {1, 1}, {4, 20}}

	for _, sz := range sizes {
		d := NewText(sz[0], sz[1])
		d.Goto(3, 2)
		start := d.State().Cursor

		for i := 0; i < sz[0]*sz[1]; i++ {
			d.CursorRight()
		}
		if got := d.State().Cursor; got != start {
			t.Fatalf("%dx%d: cursor=%d after full lap, want %d", sz[0], sz[1], got, start)
		}
	}
}

func TestCursorLeft_WrapsToLastCell(t *testing.T) {
	d := NewText(4, 40)
	d.Home()
	d.CursorLeft()
	if got := d.State().Cursor; got != 159 {
		t.Fatalf("cursor=%d, want 159", got)
	}
}

func TestGoto_OneBasedAndWraps(t *testing.T) {
	d := NewText(4, 40)

	tests := []struct {
		col, row byte
		want     int
	}{
		{1, 1, 0},
		{40, 1, 39},
		{1, 2, 40},
		{5, 4, 124},
		{1, 5, 0},   // one row past the end
		{0, 1, 159}, // column zero wraps backwards
		{255, 255, (40*254 + 254) % 160},
	}

	for _, tt := range tests {
		d.Goto(tt.col, tt.row)
		if got := d.State().Cursor; got != tt.want {
			t.Fatalf("Goto(%d,%d) cursor=%d, want %d", tt.col, tt.row, got, tt.want)
		}
	}
}

func TestWrite_AdvancesAcrossRows(t *testing.T) {
	d := NewText(2, 4)
	d.Goto(3, 1)
	d.WriteBytes([]byte("abcd"))
	d.Write('e')

	want := []byte("  abcde ")
	if got := d.Content(); !bytes.Equal(got, want) {
		t.Fatalf("content=%q, want %q", got, want)
	}
	if got := d.State().Cursor; got != 7 {
		t.Fatalf("cursor=%d, want 7", got)
	}
}

func TestClear_KeepsCursor(t *testing.T) {
	d := NewText(2, 8)
	d.WriteBytes([]byte("xyz"))
	d.Clear()

	if got := d.Content(); !bytes.Equal(got, bytes.Repeat([]byte{' '}, 16)) {
		t.Fatalf("content=%q after clear", got)
	}
	if got := d.State().Cursor; got != 3 {
		t.Fatalf("cursor=%d, want 3", got)
	}
}

func TestSetGlyph_RejectsBadInputWithoutMutation(t *testing.T) {
	d := NewText(4, 40)
	good := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := d.SetGlyph(2, good); err != nil {
		t.Fatalf("SetGlyph: %v", err)
	}

	bad := []struct {
		index int
		glyph []byte
	}{
		{2, []byte{9, 9, 9}},
		{2, bytes.Repeat([]byte{9}, 9)},
		{8, good},
		{-1, good},
	}

	for _, b := range bad {
		err := d.SetGlyph(b.index, b.glyph)
		var rangeErr *ArgumentRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("SetGlyph(%d, len=%d): expected ArgumentRangeError, got %v", b.index, len(b.glyph), err)
		}
	}

	if got := d.Glyph(2); !bytes.Equal(got, good) {
		t.Fatalf("slot 2 = %v, want %v", got, good)
	}
	if d.Glyph(8) != nil {
		t.Fatalf("Glyph(8) should be nil")
	}
}

func TestRender_BlankWhenOff(t *testing.T) {
	d := NewText(1, 6)
	if err := d.SetGlyph(3, []byte{1, 1, 1, 1, 1, 1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	d.WriteBytes([]byte{'h', 'i', 3, 0xFF, 0})

	if got := d.Render(); got != "|hi3?  |\n" {
		t.Fatalf("render=%q", got)
	}

	d.SetOn(false)
	if got := d.Render(); strings.Trim(got, "| \n") != "" {
		t.Fatalf("render=%q while off", got)
	}
}
