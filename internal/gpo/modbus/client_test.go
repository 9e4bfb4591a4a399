// internal/gpo/modbus/client_test.go
package modbus

import "testing"

func TestWrite_RejectsWrongArea(t *testing.T) {
	c, err := NewEndpointClient(Config{Endpoint: "127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.WriteBits(3, 1, 0, []bool{true}); err == nil {
		t.Fatal("expected error for bits into holding registers")
	}
	if err := c.WriteRegisters(1, 1, 0, []uint16{1}); err == nil {
		t.Fatal("expected error for registers into coils")
	}
}

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatal("expected error")
	}
}
