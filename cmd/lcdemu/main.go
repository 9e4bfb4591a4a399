// cmd/lcdemu/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/lcd-emulator/internal/chip"
	"github.com/tamzrod/lcd-emulator/internal/config"
	"github.com/tamzrod/lcd-emulator/internal/display"
	"github.com/tamzrod/lcd-emulator/internal/eeprom"
	"github.com/tamzrod/lcd-emulator/internal/gpo"
	"github.com/tamzrod/lcd-emulator/internal/link"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		boot.Fatal().Msg("usage: lcdemu <config.yaml|config.toml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		boot.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		boot.Fatal().Err(err).Msg("logger setup failed")
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("emulator stopped")
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// --------------------
	// Store + display
	// --------------------

	store, err := eeprom.Open(cfg.Chip.EEPROM)
	if err != nil {
		return err
	}
	defer store.Close()

	disp := display.NewText(cfg.Display.Rows, cfg.Display.Cols)

	g, ctx := errgroup.WithContext(ctx)

	// ---- GPO mirror (optional) ----

	var indicator chip.Indicator
	if cfg.GPOMirror != nil {
		m, closeMirror, err := gpo.Build(cfg.GPOMirror, log)
		if err != nil {
			return fmt.Errorf("gpo mirror: %w", err)
		}
		defer closeMirror()

		indicator = m
		g.Go(func() error { return m.Run(ctx) })
	}

	// ---- link + chip ----

	lnk, err := link.Open(cfg.Chip.Link, log)
	if err != nil {
		return err
	}
	defer lnk.Close()

	c, err := chip.New(chip.Config{
		Link:       lnk,
		Store:      store,
		Display:    disp,
		Indicator:  indicator,
		ButtonHold: time.Duration(cfg.Chip.ButtonHoldMs) * time.Millisecond,
		Log:        log,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	lnk.Start(ctx, c.HandleByte)

	// single-connection lifetime: the emulator stops with its link
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-lnk.Done():
			log.Info().Msg("link finished")
		}
		cancel()
		return lnk.Close()
	})

	// ---- operator console ----

	if cfg.Console {
		con := &console{
			in:     os.Stdin,
			out:    os.Stdout,
			btn:    c,
			render: disp.Render,
			log:    log.With().Str("component", "console").Logger(),
		}
		// stdin reads cannot be interrupted, so the console stays outside the group
		go func() {
			quit, err := con.Run(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("console stopped")
			}
			if quit {
				cancel()
			}
		}()
	}

	log.Info().
		Str("link", cfg.Chip.Link).
		Str("eeprom", cfg.Chip.EEPROM).
		Int("rows", cfg.Display.Rows).
		Int("cols", cfg.Display.Cols).
		Msg("emulator running")

	return g.Wait()
}
