// internal/gpo/writer.go
package gpo

import (
	"errors"
	"fmt"
	"strings"
)

// endpointClient is the remote memory contract shared by the Modbus
// and raw-ingest clients.
type endpointClient interface {
	WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// SnapshotWriter is the delivery-only contract for GPO state.
// It receives a snapshot and writes it verbatim.
type SnapshotWriter interface {
	WriteSnapshot(s Snapshot) error
}

// Plan says where the GPO block lives on the remote endpoint.
type Plan struct {
	Endpoint     string
	UnitID       uint8
	CoilBase     uint16
	RegisterBase uint16
}

// blockWriter writes the full block once, then only changed channels.
type blockWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     Snapshot
}

func newBlockWriter(plan Plan, cli endpointClient) *blockWriter {
	return &blockWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}
}

// WriteSnapshot delivers a GPO snapshot into remote memory.
// On any write failure, the next successful call will re-assert the full block.
func (w *blockWriter) WriteSnapshot(s Snapshot) error {
	if w == nil || w.cli == nil {
		return errors.New("gpo writer: missing client")
	}

	unitID := w.plan.UnitID

	// ------------------------------------------------------------
	// Full block write
	// ------------------------------------------------------------
	if w.needFull {
		if err := w.cli.WriteBits(AreaCoils, unitID, w.plan.CoilBase, s.Bits()); err != nil {
			return fmt.Errorf("gpo writer: full coil write failed: %w", err)
		}
		if err := w.cli.WriteRegisters(AreaHoldingRegisters, unitID, w.plan.RegisterBase, s.Registers()); err != nil {
			return fmt.Errorf("gpo writer: full register write failed: %w", err)
		}

		w.needFull = false
		w.last = s
		return nil
	}

	var errs []string

	for i := 0; i < Channels; i++ {
		if w.last.On[i] != s.On[i] {
			if err := w.cli.WriteBits(AreaCoils, unitID, w.plan.CoilBase+uint16(i), []bool{s.On[i]}); err != nil {
				errs = append(errs, fmt.Sprintf("gpo%d coil write failed: %v", i+1, err))
			} else {
				w.last.On[i] = s.On[i]
			}
		}

		if w.last.Level[i] != s.Level[i] {
			if err := w.cli.WriteRegisters(AreaHoldingRegisters, unitID, w.plan.RegisterBase+uint16(i), []uint16{uint16(s.Level[i])}); err != nil {
				errs = append(errs, fmt.Sprintf("gpo%d pwm write failed: %v", i+1, err))
			} else {
				w.last.Level[i] = s.Level[i]
			}
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next success.
		w.needFull = true
		return errors.New("gpo writer: " + strings.Join(errs, " | "))
	}

	return nil
}
