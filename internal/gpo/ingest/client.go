// internal/gpo/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tamzrod/lcd-emulator/internal/gpo/wire"
)

// Raw Ingest v1 framing.
const (
	magic     = "RI"
	versionV1 = 0x01
	headerLen = 10

	statusOK       byte = 0x00
	statusRejected byte = 0x01
)

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("gpo ingest: rejected")

// EndpointClient sends one Raw Ingest packet per connection.
// It holds no connection state between writes.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("gpo ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{endpoint: cfg.Endpoint, timeout: cfg.Timeout}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteBits sends a coil block, LSB-first packed.
func (c *EndpointClient) WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error {
	return c.send(Packet{Area: area, UnitID: unitID, Addr: addr, Count: uint16(len(bits)), Payload: wire.PackBits(bits)})
}

// WriteRegisters sends a register block, big-endian.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	return c.send(Packet{Area: area, UnitID: unitID, Addr: addr, Count: uint16(len(regs)), Payload: wire.PackRegisters(regs)})
}

// ---- packet ----

// Packet is one Raw Ingest v1 write.
//
// Header layout (10 bytes):
//
//	0-1  magic "RI"
//	2    version
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  count
//	10+  payload
type Packet struct {
	Area    byte
	UnitID  uint8
	Addr    uint16
	Count   uint16
	Payload []byte
}

func (p Packet) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerLen, headerLen+len(p.Payload))
	copy(out[0:2], magic)
	out[2] = versionV1
	out[3] = p.Area
	binary.BigEndian.PutUint16(out[4:6], uint16(p.UnitID))
	binary.BigEndian.PutUint16(out[6:8], p.Addr)
	binary.BigEndian.PutUint16(out[8:10], p.Count)
	return append(out, p.Payload...), nil
}

func (c *EndpointClient) send(p Packet) error {
	pkt, _ := p.MarshalBinary()

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("gpo ingest: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	// net.Conn.Write returns an error on short writes
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("gpo ingest: write: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return fmt.Errorf("gpo ingest: read status: %w", err)
	}

	switch status[0] {
	case statusOK:
		return nil
	case statusRejected:
		return ErrRejected
	default:
		return fmt.Errorf("gpo ingest: unknown status 0x%02x", status[0])
	}
}
