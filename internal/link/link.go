// internal/link/link.go
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Backend hides the physical channel.
// Accept blocks until exactly one peer session is available.
// Close aborts a pending Accept and releases backend resources.
type Backend interface {
	Accept(ctx context.Context) (io.ReadWriteCloser, error)
	Close() error
	String() string
}

// ByteHandler consumes one received byte.
// It runs on the link's receive goroutine and may pull further bytes
// synchronously through the same Link before returning.
type ByteHandler func(b byte) error

// Link is one byte channel with a single background reader.
//
// Reads (from the receive loop or from a handler pulling arguments) are
// serialized by readMu, one read sequence at a time. Writes are serialized
// by writeMu, so a multi-byte response is never split by an unsolicited byte.
type Link struct {
	backend Backend
	log     zerolog.Logger

	readMu  sync.Mutex
	writeMu sync.Mutex

	mu   sync.Mutex // guards conn, r
	conn io.ReadWriteCloser
	r    *bufio.Reader

	open    atomic.Bool
	closed  atomic.Bool
	started atomic.Bool

	closeOnce sync.Once
	closeErr  error
	doneOnce  sync.Once
	done      chan struct{}
}

// Open parses spec, builds its backend and returns an idle Link.
func Open(spec string, log zerolog.Logger) (*Link, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	b, err := NewBackend(s, log)
	if err != nil {
		return nil, err
	}
	return New(b, log), nil
}

// NewBackend builds the backend selected by s.
func NewBackend(s Spec, log zerolog.Logger) (Backend, error) {
	switch s.Kind {
	case KindSerial:
		return NewSerial(s, log)
	case KindTCP:
		return NewTCP(s)
	case KindPipe:
		return NewPipe(s)
	default:
		return nil, specError(s.raw, "unknown link kind")
	}
}

// New wraps a backend. Nothing is read until Start.
func New(b Backend, log zerolog.Logger) *Link {
	return &Link{
		backend: b,
		log:     log.With().Str("component", "link").Str("link", b.String()).Logger(),
		done:    make(chan struct{}),
	}
}

// Start launches the receive goroutine. It waits for a peer, then feeds
// every received byte to h in arrival order until the link closes.
// Cancelling ctx closes the link.
func (l *Link) Start(ctx context.Context, h ByteHandler) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	if l.closed.Load() {
		l.finish()
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-l.done:
		}
	}()

	go l.run(ctx, h)
}

func (l *Link) run(ctx context.Context, h ByteHandler) {
	defer l.finish()

	l.log.Info().Msg("waiting for peer")

	conn, err := l.backend.Accept(ctx)
	if err != nil {
		if !l.closed.Load() {
			l.log.Error().Err(err).Msg("accept failed")
		}
		_ = l.Close()
		return
	}

	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		_ = conn.Close()
		return
	}
	l.conn = conn
	l.r = bufio.NewReader(conn)
	l.open.Store(true)
	l.mu.Unlock()

	l.log.Info().Msg("peer connected")

	for l.open.Load() {
		b, err := l.ReadByte()
		if err != nil {
			if !l.closed.Load() {
				l.log.Info().Err(err).Msg("peer gone")
			}
			_ = l.Close()
			return
		}

		if err := h(b); err != nil {
			if IsLinkError(err) {
				l.log.Warn().Err(err).Msg("command abandoned")
				_ = l.Close()
				return
			}
			l.log.Warn().Err(err).Msg("command rejected")
		}
	}
}

// IsLinkError reports whether err means the session is unusable.
func IsLinkError(err error) bool {
	var ioErr *IOError
	return errors.Is(err, ErrEndOfStream) || errors.Is(err, ErrNotOpen) || errors.As(err, &ioErr)
}

// IsOpen reports whether a peer session is active.
func (l *Link) IsOpen() bool { return l.open.Load() }

// Done is closed once the receive loop has exited.
func (l *Link) Done() <-chan struct{} { return l.done }

// Wait blocks until the receive loop has exited.
func (l *Link) Wait() { <-l.done }

// Close ends the session and the receive loop. It is idempotent.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.open.Store(false)

		var errs []error
		if err := l.backend.Close(); err != nil {
			errs = append(errs, err)
		}

		l.mu.Lock()
		if l.conn != nil {
			if err := l.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
		l.mu.Unlock()

		l.closeErr = errors.Join(errs...)
		if !l.started.Load() {
			l.finish()
		}
		l.log.Info().Msg("closed")
	})
	return l.closeErr
}

func (l *Link) finish() {
	l.doneOnce.Do(func() { close(l.done) })
}

func (l *Link) session() (io.Writer, *bufio.Reader) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open.Load() || l.conn == nil {
		return nil, nil
	}
	return l.conn, l.r
}

// ---- synchronous reads ----

// ReadByte blocks for one byte.
func (l *Link) ReadByte() (byte, error) {
	l.readMu.Lock()
	defer l.readMu.Unlock()

	_, r := l.session()
	if r == nil {
		return 0, ErrNotOpen
	}
	b, err := r.ReadByte()
	if err != nil {
		return 0, l.readErr(err)
	}
	return b, nil
}

// ReadBytes blocks for exactly n bytes.
func (l *Link) ReadBytes(n int) ([]byte, error) {
	p := make([]byte, n)
	if err := l.ReadFull(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadFull blocks until p is filled, as one read sequence.
func (l *Link) ReadFull(p []byte) error {
	l.readMu.Lock()
	defer l.readMu.Unlock()

	_, r := l.session()
	if r == nil {
		return ErrNotOpen
	}
	if _, err := io.ReadFull(r, p); err != nil {
		return l.readErr(err)
	}
	return nil
}

func (l *Link) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) || l.closed.Load() {
		return fmt.Errorf("%w: %v", ErrEndOfStream, err)
	}
	return &IOError{Op: "read", Err: err}
}

// ---- synchronous writes ----

// WriteByte writes one byte.
func (l *Link) WriteByte(b byte) error {
	return l.WriteBytes([]byte{b})
}

// WriteBytes writes p as one unit.
func (l *Link) WriteBytes(p []byte) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	w, _ := l.session()
	if w == nil {
		return ErrNotOpen
	}
	if _, err := w.Write(p); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// WriteUnsolicitedByte writes b outside any command exchange.
// It is a no-op when no session is open; failures are only logged.
func (l *Link) WriteUnsolicitedByte(b byte) {
	if !l.open.Load() {
		return
	}
	if err := l.WriteBytes([]byte{b}); err != nil {
		l.log.Debug().Err(err).Uint8("byte", b).Msg("unsolicited write dropped")
	}
}
