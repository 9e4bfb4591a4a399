// internal/link/spec_test.go
package link

import (
	"errors"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		raw  string
		want Spec
	}{
		{"serial:/dev/ttyUSB0", Spec{Kind: KindSerial, Port: "/dev/ttyUSB0", Baud: 9600}},
		{"serial:/dev/ttyS1:19200", Spec{Kind: KindSerial, Port: "/dev/ttyS1", Baud: 19200}},
		{"COM:COM3:115200", Spec{Kind: KindSerial, Port: "COM3", Baud: 115200}},
		{"tcp:9999", Spec{Kind: KindTCP, TCPPort: 9999}},
		{"tcp:9999:local", Spec{Kind: KindTCP, TCPPort: 9999, Local: true}},
		{"TCP:0:LOCAL", Spec{Kind: KindTCP, TCPPort: 0, Local: true}},
		{"pipe:lcd", Spec{Kind: KindPipe, Name: "lcd"}},
		{"pipe:/run/lcd.sock", Spec{Kind: KindPipe, Name: "/run/lcd.sock"}},
	}

	for _, tt := range tests {
		got, err := ParseSpec(tt.raw)
		if err != nil {
			t.Fatalf("ParseSpec(%q) err=%v", tt.raw, err)
		}
		tt.want.raw = tt.raw
		if got != tt.want {
			t.Fatalf("ParseSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
		if got.String() != tt.raw {
			t.Fatalf("String() = %q, want %q", got.String(), tt.raw)
		}
	}
}

func TestParseSpec_Invalid(t *testing.T) {
	bad := []string{
		"",
		"tcp",
		"tcp:",
		"usb:0",
		"serial:",
		"serial:/dev/ttyS0:fast",
		"serial:/dev/ttyS0:0",
		"serial:/dev/ttyS0:9600:x",
		"tcp:abc",
		"tcp:70000",
		"tcp:-1",
		"tcp:9999:remote",
		"tcp:9999:local:x",
		"pipe:",
	}

	for _, raw := range bad {
		_, err := ParseSpec(raw)
		if err == nil {
			t.Fatalf("ParseSpec(%q): expected error, got nil", raw)
		}
		if !errors.Is(err, ErrInvalidSpec) {
			t.Fatalf("ParseSpec(%q): expected ErrInvalidSpec, got %v", raw, err)
		}
	}
}
