// internal/gpo/mirror.go
package gpo

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Mirror pushes GPO state to a remote endpoint from its own goroutine.
// Publish never blocks the caller; only the newest snapshot is kept.
type Mirror struct {
	w     SnapshotWriter
	retry time.Duration
	log   zerolog.Logger

	updates chan Snapshot
}

func NewMirror(w SnapshotWriter, retry time.Duration, log zerolog.Logger) *Mirror {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &Mirror{
		w:       w,
		retry:   retry,
		log:     log.With().Str("component", "gpo").Logger(),
		updates: make(chan Snapshot, 1),
	}
}

// Publish queues s for delivery, replacing any snapshot not yet taken.
func (m *Mirror) Publish(s Snapshot) {
	for {
		select {
		case m.updates <- s:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

// Run delivers published snapshots until ctx is done.
// A failed delivery is retried on every tick until it succeeds.
func (m *Mirror) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.retry)
	defer ticker.Stop()

	var (
		pending Snapshot
		dirty   bool
		failing bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case s := <-m.updates:
			pending = s
			dirty = true

		case <-ticker.C:
			if !dirty {
				continue
			}
		}

		if err := m.w.WriteSnapshot(pending); err != nil {
			if !failing {
				m.log.Warn().Err(err).Msg("mirror write failed")
			} else {
				m.log.Debug().Err(err).Msg("mirror write still failing")
			}
			failing = true
			continue
		}

		if failing {
			m.log.Info().Msg("mirror recovered")
		}
		failing = false
		dirty = false
	}
}
