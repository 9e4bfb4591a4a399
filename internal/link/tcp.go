// internal/link/tcp.go
package link

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
)

// TCP listens on one port and serves exactly one client.
// The listener is discarded after the first accept, so later
// connection attempts are refused for the lifetime of the link.
type TCP struct {
	ln   net.Listener
	spec Spec
}

// NewTCP binds the listener immediately so bind errors surface at startup.
func NewTCP(s Spec) (*TCP, error) {
	host := ""
	if s.Local {
		host = "127.0.0.1"
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(s.TCPPort)))
	if err != nil {
		return nil, fmt.Errorf("link tcp: listen %d: %w", s.TCPPort, err)
	}
	return &TCP{ln: ln, spec: s}, nil
}

// Addr returns the bound listener address.
func (t *TCP) Addr() net.Addr { return t.ln.Addr() }

func (t *TCP) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	return acceptOne(ctx, t.ln)
}

func (t *TCP) Close() error { return closeListener(t.ln) }

func (t *TCP) String() string { return t.spec.String() }

// acceptOne accepts a single connection and closes ln.
func acceptOne(ctx context.Context, ln net.Listener) (net.Conn, error) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	conn, err := ln.Accept()
	_ = closeListener(ln)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &IOError{Op: "accept", Err: err}
	}
	return conn, nil
}

func closeListener(ln net.Listener) error {
	if err := ln.Close(); err != nil && !isClosedErr(err) {
		return err
	}
	return nil
}
