// internal/chip/buttons.go
package chip

import (
	"errors"
	"time"
)

// ButtonCount is the number of keypad buttons. Buttons are numbered from 1.
const ButtonCount = 5

// ErrButtonRange is returned for a button number outside 1..ButtonCount.
var ErrButtonRange = errors.New("chip: button out of range")

// Button codes are sent unsolicited: 'A'..'E' on press, 'a'..'e' on release.
func downCode(i int) byte { return 'A' + byte(i) }
func upCode(i int) byte   { return 'a' + byte(i) }

// buttonCode answers ReadButton: the current code of button n, or ' '.
func (c *Chip) buttonCode(n byte) byte {
	i := int(n) - 1
	if i < 0 || i >= ButtonCount {
		return ' '
	}

	c.buttonMu.Lock()
	defer c.buttonMu.Unlock()
	if c.down[i] {
		return downCode(i)
	}
	return upCode(i)
}

// ButtonDown presses button n. Pressing a held button does nothing.
func (c *Chip) ButtonDown(n int) error {
	return c.setButton(n, true)
}

// ButtonUp releases button n. Releasing a released button does nothing.
func (c *Chip) ButtonUp(n int) error {
	return c.setButton(n, false)
}

// ButtonClick presses button n, holds it briefly and releases it,
// in the background.
func (c *Chip) ButtonClick(n int) error {
	if n < 1 || n > ButtonCount {
		return ErrButtonRange
	}
	go func() {
		_ = c.ButtonDown(n)
		time.Sleep(c.hold)
		_ = c.ButtonUp(n)
	}()
	return nil
}

func (c *Chip) setButton(n int, down bool) error {
	i := n - 1
	if i < 0 || i >= ButtonCount {
		return ErrButtonRange
	}

	c.buttonMu.Lock()
	defer c.buttonMu.Unlock()

	if c.down[i] == down {
		return nil
	}
	c.down[i] = down

	code := upCode(i)
	if down {
		code = downCode(i)
	}
	c.log.Debug().Int("button", n).Bool("down", down).Msg("button")
	c.link.WriteUnsolicitedByte(code)
	return nil
}
