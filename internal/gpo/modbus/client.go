// internal/gpo/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/lcd-emulator/internal/gpo/wire"
)

const (
	areaCoils            byte = 1
	areaHoldingRegisters byte = 3
)

// EndpointClient is a single Modbus TCP connection to one endpoint.
// It serializes requests because it mutates SlaveId per write.
// The connection is opened on first use and re-dialled after a failure.
type EndpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("gpo modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}

	return &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteBits writes coils (area 1).
func (c *EndpointClient) WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error {
	if area != areaCoils {
		return fmt.Errorf("gpo modbus: area %d is not writable as bits", area)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	_, err := c.client.WriteMultipleCoils(addr, uint16(len(bits)), wire.PackBits(bits))
	return c.check(err)
}

// WriteRegisters writes holding registers (area 3).
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if area != areaHoldingRegisters {
		return fmt.Errorf("gpo modbus: area %d is not writable as registers", area)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), wire.PackRegisters(regs))
	return c.check(err)
}

// check drops the connection after a failure so the next request dials again.
func (c *EndpointClient) check(err error) error {
	if err == nil {
		return nil
	}
	var mbErr *modbus.ModbusError
	if !errors.As(err, &mbErr) {
		_ = c.handler.Close()
	}
	return err
}
