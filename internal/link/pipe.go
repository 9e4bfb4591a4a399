// internal/link/pipe.go
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Pipe is a single-instance duplex pipe, served as a unix domain socket.
// A bare name is placed in the system temp directory.
type Pipe struct {
	ln   net.Listener
	path string
	spec Spec
}

// NewPipe binds the socket; Accept blocks for the client.
func NewPipe(s Spec) (*Pipe, error) {
	path := pipePath(s.Name)

	// a stale socket from a previous run blocks the bind
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSocket != 0 {
		_ = os.Remove(path)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("link pipe: listen %s: %w", path, err)
	}
	if ul, ok := ln.(*net.UnixListener); ok {
		ul.SetUnlinkOnClose(true)
	}
	return &Pipe{ln: ln, path: path, spec: s}, nil
}

func pipePath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(os.TempDir(), name)
}

// Path returns the socket path.
func (p *Pipe) Path() string { return p.path }

func (p *Pipe) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	return acceptOne(ctx, p.ln)
}

func (p *Pipe) Close() error { return closeListener(p.ln) }

func (p *Pipe) String() string { return p.spec.String() }

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed)
}
