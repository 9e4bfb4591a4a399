// internal/gpo/mirror_test.go
package gpo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSnapshotWriter struct {
	mu       sync.Mutex
	failures int
	written  []Snapshot
}

func (f *fakeSnapshotWriter) WriteSnapshot(s Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("endpoint down")
	}
	f.written = append(f.written, s)
	return nil
}

func (f *fakeSnapshotWriter) last() (Snapshot, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return Snapshot{}, 0
	}
	return f.written[len(f.written)-1], len(f.written)
}

func waitWritten(t *testing.T, f *fakeSnapshotWriter, want Snapshot) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, n := f.last(); n > 0 && got == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	got, _ := f.last()
	t.Fatalf("last written=%+v, want %+v", got, want)
}

func TestMirror_RetriesUntilDelivered(t *testing.T) {
	w := &fakeSnapshotWriter{failures: 2}
	m := NewMirror(w, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	var s Snapshot
	s.On[3] = true
	m.Publish(s)

	waitWritten(t, w, s)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestMirror_PublishKeepsNewest(t *testing.T) {
	w := &fakeSnapshotWriter{}
	m := NewMirror(w, time.Hour, zerolog.Nop())

	// not running: every publish replaces the queued one without blocking
	for i := 0; i < 10; i++ {
		var s Snapshot
		s.Level[0] = byte(i)
		m.Publish(s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	var want Snapshot
	want.Level[0] = 9
	waitWritten(t, w, want)

	if _, n := w.last(); n != 1 {
		t.Fatalf("written %d snapshots, want 1", n)
	}
}
