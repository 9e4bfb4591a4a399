// internal/gpo/builder.go
package gpo

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/lcd-emulator/internal/config"
	"github.com/tamzrod/lcd-emulator/internal/gpo/ingest"
	gmodbus "github.com/tamzrod/lcd-emulator/internal/gpo/modbus"
)

// Build creates the mirror described by c.
// Assumes config has already been validated and normalized.
func Build(c *config.GPOMirrorConfig, log zerolog.Logger) (*Mirror, func() error, error) {
	if c == nil {
		return nil, nil, errors.New("gpo: mirror not configured")
	}

	timeout := time.Duration(c.TimeoutMs) * time.Millisecond

	var (
		cli     endpointClient
		closeFn func() error
	)

	switch c.Kind {
	case config.MirrorModbus:
		mc, err := gmodbus.NewEndpointClient(gmodbus.Config{Endpoint: c.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		cli, closeFn = mc, mc.Close

	case config.MirrorIngest:
		ic, err := ingest.NewEndpointClient(ingest.Config{Endpoint: c.Endpoint, Timeout: timeout})
		if err != nil {
			return nil, nil, err
		}
		cli, closeFn = ic, ic.Close

	default:
		return nil, nil, fmt.Errorf("gpo: unknown mirror kind %q", c.Kind)
	}

	w := newBlockWriter(Plan{
		Endpoint:     c.Endpoint,
		UnitID:       c.UnitID,
		CoilBase:     c.CoilBase,
		RegisterBase: c.RegisterBase,
	}, cli)

	m := NewMirror(w, time.Duration(c.RetryMs)*time.Millisecond, log)
	m.log.Info().
		Str("kind", c.Kind).
		Str("endpoint", c.Endpoint).
		Uint8("unit_id", c.UnitID).
		Msg("mirror configured")

	return m, closeFn, nil
}
