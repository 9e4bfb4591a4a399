// internal/chip/timer.go
package chip

import "time"

// Clock schedules the display auto-off.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// armLocked cancels any pending auto-off and, for minutes > 0, starts a new one.
// Each arm bumps gen so a callback already in flight for an older timer is ignored.
func (c *Chip) armLocked(minutes byte) {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if minutes == 0 {
		return
	}

	gen := c.gen
	c.timer = c.clock.AfterFunc(time.Duration(minutes)*time.Minute, func() { c.expire(gen) })
	c.log.Debug().Uint8("minutes", minutes).Msg("auto-off armed")
}

func (c *Chip) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.gen++
	c.timer = nil

	c.state.Flags &^= FlagDisplay
	c.state.OnFor = 0
	c.display.SetOn(false)

	c.log.Info().Msg("auto-off: display turned off")
}
