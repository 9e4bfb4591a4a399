// internal/gpo/wire/pack.go
package wire

import "encoding/binary"

// PackBits packs bits LSB-first, eight per byte, as coils travel on the wire.
func PackBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// PackRegisters packs registers big-endian.
func PackRegisters(regs []uint16) []byte {
	out := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		out = binary.BigEndian.AppendUint16(out, r)
	}
	return out
}
