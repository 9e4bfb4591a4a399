// cmd/lcdemu/console.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// buttons is the keypad surface the console drives.
type buttons interface {
	ButtonDown(n int) error
	ButtonUp(n int) error
	ButtonClick(n int) error
}

const consoleHelp = `commands:
  down N    press button N (1-5)
  up N      release button N
  click N   press, hold briefly, release
  show      print the display
  quit      stop the emulator`

// console is the operator's stand-in for the keypad and screen.
type console struct {
	in     io.Reader
	out    io.Writer
	btn    buttons
	render func() string
	log    zerolog.Logger
}

// Run reads commands until quit, EOF or ctx is done.
// quit is true only when the operator asked to stop.
func (c *console) Run(ctx context.Context) (quit bool, err error) {
	sc := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, "lcd> ")

		if !sc.Scan() {
			fmt.Fprintln(c.out)
			return false, sc.Err()
		}
		if ctx.Err() != nil {
			return false, nil
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "quit", "exit":
			return true, nil

		case "help", "?":
			fmt.Fprintln(c.out, consoleHelp)

		case "show":
			fmt.Fprint(c.out, c.render())

		case "down", "up", "click":
			if len(fields) != 2 {
				fmt.Fprintf(c.out, "usage: %s N\n", cmd)
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(c.out, "bad button %q\n", fields[1])
				continue
			}
			if err := c.press(cmd, n); err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
				continue
			}
			c.log.Debug().Str("action", cmd).Int("button", n).Msg("console")

		default:
			fmt.Fprintf(c.out, "unknown command %q (try help)\n", cmd)
		}
	}
}

func (c *console) press(action string, n int) error {
	switch action {
	case "down":
		return c.btn.ButtonDown(n)
	case "up":
		return c.btn.ButtonUp(n)
	default:
		return c.btn.ButtonClick(n)
	}
}
