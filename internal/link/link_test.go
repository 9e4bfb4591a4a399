// internal/link/link_test.go
package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func startTCP(t *testing.T, h func(l *Link) ByteHandler) (*Link, *TCP) {
	t.Helper()

	s, err := ParseSpec("tcp:0:local")
	require.NoError(t, err)
	b, err := NewTCP(s)
	require.NoError(t, err)

	l := New(b, zerolog.Nop())
	t.Cleanup(func() { _ = l.Close() })
	l.Start(context.Background(), h(l))
	return l, b
}

func dial(t *testing.T, network, addr string) net.Conn {
	t.Helper()
	c, err := net.DialTimeout(network, addr, waitFor)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.SetDeadline(time.Now().Add(waitFor)))
	return c
}

func collect(out chan<- byte) func(l *Link) ByteHandler {
	return func(l *Link) ByteHandler {
		return func(b byte) error {
			out <- b
			return nil
		}
	}
}

func TestTCP_LoopbackOnlyAndBytesInOrder(t *testing.T) {
	got := make(chan byte, 16)
	l, b := startTCP(t, collect(got))

	addr := b.Addr().(*net.TCPAddr)
	assert.True(t, addr.IP.IsLoopback())

	c := dial(t, "tcp", addr.String())
	_, err := c.Write([]byte("hello"))
	require.NoError(t, err)

	var recv []byte
	for i := 0; i < 5; i++ {
		select {
		case x := <-got:
			recv = append(recv, x)
		case <-time.After(waitFor):
			t.Fatalf("timed out after %q", recv)
		}
	}
	assert.Equal(t, "hello", string(recv))
	assert.True(t, l.IsOpen())
}

func TestTCP_SecondClientNotServed(t *testing.T) {
	l, b := startTCP(t, collect(make(chan byte, 16)))

	dial(t, "tcp", b.Addr().String())
	require.Eventually(t, l.IsOpen, waitFor, 5*time.Millisecond)

	_, err := net.DialTimeout("tcp", b.Addr().String(), 200*time.Millisecond)
	assert.Error(t, err)
}

func TestLink_HandlerPullsArgumentsInline(t *testing.T) {
	_, b := startTCP(t, func(l *Link) ByteHandler {
		return func(x byte) error {
			if x != 254 {
				return nil
			}
			args, err := l.ReadBytes(2)
			if err != nil {
				return err
			}
			return l.WriteBytes([]byte{args[1], args[0]})
		}
	})

	c := dial(t, "tcp", b.Addr().String())
	_, err := c.Write([]byte{'x', 254, 'a', 'b'})
	require.NoError(t, err)

	resp := make([]byte, 2)
	_, err = io.ReadFull(c, resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("ba"), resp)
}

func TestLink_PeerGoneMidCommandIsEndOfStream(t *testing.T) {
	errs := make(chan error, 1)
	l, b := startTCP(t, func(l *Link) ByteHandler {
		return func(x byte) error {
			_, err := l.ReadBytes(8)
			errs <- err
			return err
		}
	})

	c := dial(t, "tcp", b.Addr().String())
	_, err := c.Write([]byte{254, 1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrEndOfStream)
		assert.True(t, IsLinkError(err))
	case <-time.After(waitFor):
		t.Fatal("handler never returned")
	}

	select {
	case <-l.Done():
	case <-time.After(waitFor):
		t.Fatal("receive loop did not exit")
	}
	assert.False(t, l.IsOpen())
}

func TestLink_RejectedCommandKeepsLinkOpen(t *testing.T) {
	got := make(chan byte, 4)
	l, b := startTCP(t, func(l *Link) ByteHandler {
		return func(x byte) error {
			got <- x
			if x == 'e' {
				return errors.New("argument out of range")
			}
			return nil
		}
	})

	c := dial(t, "tcp", b.Addr().String())
	_, err := c.Write([]byte("ek"))
	require.NoError(t, err)

	for _, want := range []byte("ek") {
		select {
		case x := <-got:
			assert.Equal(t, want, x)
		case <-time.After(waitFor):
			t.Fatal("timed out")
		}
	}
	assert.True(t, l.IsOpen())
}

func TestLink_CloseBeforePeerUnblocksAccept(t *testing.T) {
	l, _ := startTCP(t, collect(make(chan byte)))

	assert.False(t, l.IsOpen())
	assert.ErrorIs(t, l.WriteByte('x'), ErrNotOpen)
	_, err := l.ReadByte()
	assert.ErrorIs(t, err, ErrNotOpen)
	l.WriteUnsolicitedByte('A')

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	select {
	case <-l.Done():
	case <-time.After(waitFor):
		t.Fatal("receive loop did not exit")
	}
	assert.False(t, l.IsOpen())
}

func TestLink_ContextCancelCloses(t *testing.T) {
	s, err := ParseSpec("tcp:0:local")
	require.NoError(t, err)
	b, err := NewTCP(s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	l := New(b, zerolog.Nop())
	l.Start(ctx, func(byte) error { return nil })
	cancel()

	select {
	case <-l.Done():
	case <-time.After(waitFor):
		t.Fatal("receive loop did not exit")
	}
}

func TestLink_CloseWithoutStart(t *testing.T) {
	s, err := ParseSpec("tcp:0:local")
	require.NoError(t, err)
	b, err := NewTCP(s)
	require.NoError(t, err)

	l := New(b, zerolog.Nop())
	require.NoError(t, l.Close())
	l.Wait()
}

func TestLink_UnsolicitedNeverSplitsResponse(t *testing.T) {
	response := bytes.Repeat([]byte{'r'}, 80)
	started := make(chan struct{})

	l, b := startTCP(t, func(l *Link) ByteHandler {
		return func(x byte) error {
			close(started)
			return l.WriteBytes(response)
		}
	})

	c := dial(t, "tcp", b.Addr().String())
	_, err := c.Write([]byte{254})
	require.NoError(t, err)

	<-started
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.WriteUnsolicitedByte('A')
		}()
	}
	wg.Wait()

	out := make([]byte, len(response)+4)
	_, err = io.ReadFull(c, out)
	require.NoError(t, err)

	assert.Contains(t, string(out), string(response))
	assert.Equal(t, 4, bytes.Count(out, []byte{'A'}))
}

func TestPipe_ServesOneClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.sock")
	l, err := Open("pipe:"+path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	got := make(chan byte, 4)
	l.Start(context.Background(), collect(got)(l))

	c := dial(t, "unix", path)
	_, err = c.Write([]byte{'p'})
	require.NoError(t, err)

	select {
	case x := <-got:
		assert.Equal(t, byte('p'), x)
	case <-time.After(waitFor):
		t.Fatal("timed out")
	}

	require.Eventually(t, l.IsOpen, waitFor, 5*time.Millisecond)
	_, err = net.DialTimeout("unix", path, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open("usb:1", zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

// ---- fake serial port ----

type fakePort struct {
	mu     sync.Mutex
	in     []byte
	out    bytes.Buffer
	closed bool
	cfg    *serial.Config
}

func (p *fakePort) push(b ...byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in = append(p.in, b...)
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.in) == 0 {
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, serial.ErrTimeout
	}
	n := copy(b, p.in)
	p.in = p.in[n:]
	p.mu.Unlock()
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePort) written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.out.Bytes()...)
}

func TestSerial_DiscardsPendingInputAndPollsThroughTimeouts(t *testing.T) {
	port := &fakePort{in: []byte("stale")}
	orig := openPort
	openPort = func(c *serial.Config) (io.ReadWriteCloser, error) {
		port.cfg = c
		return port, nil
	}
	t.Cleanup(func() { openPort = orig })

	l, err := Open("serial:/dev/ttyFAKE", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.Equal(t, "/dev/ttyFAKE", port.cfg.Address)
	assert.Equal(t, DefaultBaud, port.cfg.BaudRate)
	assert.Equal(t, 8, port.cfg.DataBits)
	assert.Equal(t, 1, port.cfg.StopBits)
	assert.Equal(t, "N", port.cfg.Parity)

	got := make(chan byte, 4)
	l.Start(context.Background(), func(b byte) error {
		got <- b
		return l.WriteByte(b + 1)
	})
	require.Eventually(t, l.IsOpen, waitFor, 5*time.Millisecond)

	port.push('a')
	select {
	case x := <-got:
		assert.Equal(t, byte('a'), x)
	case <-time.After(waitFor):
		t.Fatal("timed out")
	}
	require.Eventually(t, func() bool { return bytes.Equal(port.written(), []byte{'b'}) }, waitFor, 5*time.Millisecond)

	require.NoError(t, l.Close())
	select {
	case <-l.Done():
	case <-time.After(waitFor):
		t.Fatal("receive loop did not exit")
	}
	assert.True(t, port.isClosed())
}
