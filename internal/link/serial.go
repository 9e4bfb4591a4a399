// internal/link/serial.go
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// pollTimeout bounds each port read so Close can stop a blocked reader.
const pollTimeout = 100 * time.Millisecond

// allow tests to override the physical port
var openPort = func(c *serial.Config) (io.ReadWriteCloser, error) { return serial.Open(c) }

// Serial is active as soon as the port opens (8N1).
// Input pending at open time is discarded.
type Serial struct {
	port   io.ReadWriteCloser
	spec   Spec
	closed atomic.Bool
	taken  atomic.Bool
}

// NewSerial opens the port and drains its input buffer.
func NewSerial(s Spec, log zerolog.Logger) (*Serial, error) {
	p, err := openPort(&serial.Config{
		Address:  s.Port,
		BaudRate: s.Baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  pollTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("link serial: open %s: %w", s.Port, err)
	}

	if n := discardInput(p); n > 0 {
		log.Debug().Str("port", s.Port).Int("bytes", n).Msg("discarded pending input")
	}

	return &Serial{port: p, spec: s}, nil
}

// discardInput reads until the first poll timeout.
func discardInput(p io.Reader) int {
	buf := make([]byte, 256)
	total := 0
	for {
		n, err := p.Read(buf)
		total += n
		if err != nil || n == 0 {
			return total
		}
	}
}

// Accept hands out the port once.
func (s *Serial) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	if s.closed.Load() {
		return nil, &IOError{Op: "accept", Err: os.ErrClosed}
	}
	if !s.taken.CompareAndSwap(false, true) {
		return nil, &IOError{Op: "accept", Err: errors.New("serial port already in use")}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &serialConn{s: s}, nil
}

func (s *Serial) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.port.Close()
}

func (s *Serial) String() string { return s.spec.String() }

// serialConn turns poll timeouts into a blocking read.
type serialConn struct {
	s *Serial
}

func (c *serialConn) Read(p []byte) (int, error) {
	for {
		if c.s.closed.Load() {
			return 0, os.ErrClosed
		}
		n, err := c.s.port.Read(p)
		if errors.Is(err, serial.ErrTimeout) || (err == nil && n == 0) {
			continue
		}
		return n, err
	}
}

func (c *serialConn) Write(p []byte) (int, error) {
	if c.s.closed.Load() {
		return 0, os.ErrClosed
	}
	return c.s.port.Write(p)
}

func (c *serialConn) Close() error { return c.s.Close() }
