// internal/eeprom/store.go
package eeprom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// ErrInit is returned when the medium cannot provide Size bytes.
	ErrInit = errors.New("eeprom: init failed")

	// ErrOutOfRange is returned for writes that run past the end of the address space.
	ErrOutOfRange = errors.New("eeprom: write out of range")
)

// Medium is the durable backing of a Store. *os.File satisfies it.
type Medium interface {
	io.ReadWriteSeeker
	io.Closer
}

// Store is a 256-byte write-through memory.
// Reads are served from the in-memory mirror.
// Writes touch the medium only when the stored value changes.
type Store struct {
	mu     sync.RWMutex
	medium Medium
	data   [Size]byte
}

// Open opens (or creates) the file at path as the store medium.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	s, err := New(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

// New loads the mirror from m.
// A medium shorter than Size is zero-extended first; existing bytes are kept.
func New(m Medium) (*Store, error) {
	end, err := m.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek end: %v", ErrInit, err)
	}

	if missing := Size - end; missing > 0 {
		if _, err := m.Write(make([]byte, missing)); err != nil {
			return nil, fmt.Errorf("%w: extend by %d bytes: %v", ErrInit, missing, err)
		}
	}

	if _, err := m.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek start: %v", ErrInit, err)
	}

	s := &Store{medium: m}
	if _, err := io.ReadFull(m, s.data[:]); err != nil {
		return nil, fmt.Errorf("%w: read %d bytes: %v", ErrInit, Size, err)
	}
	return s, nil
}

// Close releases the medium.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.medium == nil {
		return nil
	}
	err := s.medium.Close()
	s.medium = nil
	return err
}

// Byte returns the byte at addr.
func (s *Store) Byte(addr byte) byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[addr]
}

// Bytes returns a copy of n bytes starting at addr, clipped to the end of the space.
func (s *Store) Bytes(addr byte, n int) []byte {
	out := make([]byte, clip(addr, n))
	s.ReadInto(addr, out, 0, len(out))
	return out
}

// ReadInto copies up to n bytes starting at addr into dst[off:].
// n is clipped to the room left in dst and to the end of the space.
// It returns the number of bytes copied.
func (s *Store) ReadInto(addr byte, dst []byte, off, n int) int {
	if off < 0 || off > len(dst) || n <= 0 {
		return 0
	}
	if room := len(dst) - off; n > room {
		n = room
	}
	n = clip(addr, n)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copy(dst[off:off+n], s.data[int(addr):int(addr)+n])
}

// SetByte stores x at addr. An unchanged value performs no medium I/O.
func (s *Store) SetByte(addr, x byte) error {
	return s.SetBytes(addr, []byte{x})
}

// SetBytes stores p starting at addr.
// Only the changed span is written to the medium.
func (s *Store) SetBytes(addr byte, p []byte) error {
	if int(addr)+len(p) > Size {
		return fmt.Errorf("%w: addr=0x%02X len=%d", ErrOutOfRange, addr, len(p))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.data[int(addr) : int(addr)+len(p)]
	if bytes.Equal(cur, p) {
		return nil
	}

	// narrow to the changed span
	lo, hi := 0, len(p)
	for lo < hi && cur[lo] == p[lo] {
		lo++
	}
	for hi > lo && cur[hi-1] == p[hi-1] {
		hi--
	}

	if s.medium == nil {
		return fmt.Errorf("eeprom: write addr=0x%02X: closed", addr)
	}
	if _, err := s.medium.Seek(int64(addr)+int64(lo), io.SeekStart); err != nil {
		return fmt.Errorf("eeprom: seek addr=0x%02X: %w", int(addr)+lo, err)
	}
	if _, err := s.medium.Write(p[lo:hi]); err != nil {
		return fmt.Errorf("eeprom: write addr=0x%02X: %w", int(addr)+lo, err)
	}

	// the mirror follows the medium only once the write landed
	copy(cur[lo:hi], p[lo:hi])
	return nil
}

// SetBytesN stores the first n bytes of p starting at addr.
func (s *Store) SetBytesN(addr byte, p []byte, n int) error {
	if n < 0 || n > len(p) {
		return fmt.Errorf("%w: n=%d len=%d", ErrOutOfRange, n, len(p))
	}
	return s.SetBytes(addr, p[:n])
}

func clip(addr byte, n int) int {
	if n < 0 {
		return 0
	}
	if rest := Size - int(addr); n > rest {
		return rest
	}
	return n
}
