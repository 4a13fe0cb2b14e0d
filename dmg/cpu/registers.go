package cpu

import "github.com/finch-emu/dmgcore/dmg/bit"

// Flag bit positions within F, the low byte of AF.
type flagBit = uint8

const (
	flagZ flagBit = 7 // Zero
	flagN flagBit = 6 // Subtract
	flagH flagBit = 5 // Half-carry
	flagC flagBit = 4 // Carry
)

// Registers holds the Z80-derived register file: eight 8-bit registers
// (A, F, B, C, D, E, H, L) addressable individually or paired into AF, BC,
// DE, HL, plus SP and PC.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16
}

func (r *Registers) AF() uint16 { return bit.Combine(r.A, r.F) }
func (r *Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r *Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r *Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

// SetAF stores a 16-bit value into AF. F's low nibble is always zero -
// the flag register only has four meaningful bits.
func (r *Registers) SetAF(v uint16) {
	r.A = bit.High(v)
	r.F = bit.Low(v) & 0xF0
}

func (r *Registers) SetBC(v uint16) { r.B = bit.High(v); r.C = bit.Low(v) }
func (r *Registers) SetDE(v uint16) { r.D = bit.High(v); r.E = bit.Low(v) }
func (r *Registers) SetHL(v uint16) { r.H = bit.High(v); r.L = bit.Low(v) }

func (r *Registers) flag(f flagBit) bool {
	return bit.IsSet(f, r.F)
}

func (r *Registers) setFlag(f flagBit, set bool) {
	if set {
		r.F = bit.Set(f, r.F)
	} else {
		r.F = bit.Reset(f, r.F)
	}
}
