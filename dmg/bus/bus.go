// Package bus implements the DMG's flat 64KiB memory-mapped address space:
// RAM, echo mirroring, OAM DMA, and the small registers (joypad, serial,
// timer, interrupt flags) that don't warrant their own address space.
package bus

import (
	"fmt"
	"log/slog"

	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/finch-emu/dmgcore/dmg/bit"
	"github.com/finch-emu/dmgcore/dmg/serial"
)

// romSize is the read-only cartridge ROM window, mapped flat at
// 0x0000-0x7FFF. The core has no MBC: image bytes past 32KiB are never
// banked into this window; LoadROM places them in the address space above
// it, matching the "flat 64KiB array" data model.
const romSize = 0x8000

// Bus is the DMG address space. Reads and writes route to RAM directly or
// through the small stateful registers that need it.
type Bus struct {
	memory [0x10000]byte
	rom    [romSize]byte
	romLoaded bool

	joypad *Joypad
	serial *serial.LogSink
	timer  Timer

	// needsInterruptCheck is set whenever IF, IE, or a request source
	// changes; NeedsInterruptCheck reports and clears it. The CPU does not
	// consult it: it reads IF/IE on every Step.
	needsInterruptCheck bool

	// owedDMACycles accumulates the 160 extra M-cycles an OAM DMA trigger
	// costs the instruction that wrote DMA. The clock coordinator drains
	// this through TakeOwedCycles, together with the CPU's own owed cycles.
	owedDMACycles int
}

// New creates a Bus with no ROM loaded - equivalent to a DMG with an empty
// cartridge slot.
func New() *Bus {
	b := &Bus{
		joypad: NewJoypad(),
	}
	b.serial = serial.NewLogSink(func() { b.RequestInterrupt(addr.Serial) })
	b.timer.RequestInterrupt = func() { b.RequestInterrupt(addr.Timer) }
	return b
}

// LoadROM copies up to 64KiB of a ROM image into the address space from
// 0x0000: the first 32KiB fill the read-only cartridge window and any
// further bytes land at 0x8000 upward. Bytes past 0xFFFF are dropped; this
// core has no bank switching.
func (b *Bus) LoadROM(data []byte) {
	n := copy(b.rom[:], data)
	n += copy(b.memory[romSize:], data[n:])
	if n < len(data) {
		slog.Warn("ROM image exceeds 64KiB address space, truncating", "size", len(data))
	}
	b.romLoaded = true
}

// Tick advances the timer by one M-cycle. Called once per cycle from the
// clock coordinator's wait loop.
func (b *Bus) Tick() {
	b.timer.Tick()
}

// TakeOwedCycles returns and clears any extra M-cycles owed by the last
// instruction that triggered OAM DMA.
func (b *Bus) TakeOwedCycles() int {
	c := b.owedDMACycles
	b.owedDMACycles = 0
	return c
}

// NeedsInterruptCheck reports whether IF/IE changed since the last check,
// and clears the flag.
func (b *Bus) NeedsInterruptCheck() bool {
	v := b.needsInterruptCheck
	b.needsInterruptCheck = false
	return v
}

// RequestInterrupt sets the given source's bit in IF.
func (b *Bus) RequestInterrupt(source addr.Interrupt) {
	b.memory[addr.IF] = b.memory[addr.IF] | source.Bit()
	b.needsInterruptCheck = true
}

// IF returns the interrupt request latch, with its unused top three bits
// always read as 1.
func (b *Bus) IF() byte {
	return b.memory[addr.IF] | 0xE0
}

// ClearInterrupt clears the given source's bit in IF, as done when the CPU
// dispatches it.
func (b *Bus) ClearInterrupt(source addr.Interrupt) {
	b.memory[addr.IF] &^= source.Bit()
}

// IE returns the interrupt enable mask.
func (b *Bus) IE() byte {
	return b.memory[addr.IE]
}

// PressButton marks a button held and raises Joypad if this is a new press.
func (b *Bus) PressButton(key Button) {
	if b.joypad.Press(key) {
		b.RequestInterrupt(addr.Joypad)
	}
}

// ReleaseButton marks a button released.
func (b *Bus) ReleaseButton(key Button) {
	b.joypad.Release(key)
}

func normalizeEcho(address uint16) uint16 {
	if address >= 0xE000 && address <= 0xFDFF {
		return address - 0x2000
	}
	return address
}

// Read returns the byte visible to the CPU at address, after echo
// normalization and register synthesis.
func (b *Bus) Read(address uint16) byte {
	address = normalizeEcho(address)

	switch {
	case address < romSize:
		if !b.romLoaded {
			return 0xFF
		}
		return b.rom[address]
	case address == addr.P1:
		return b.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.IF()
	default:
		return b.memory[address]
	}
}

// Read16 reads a little-endian 16-bit value.
func (b *Bus) Read16(address uint16) uint16 {
	return bit.Combine(b.Read(address+1), b.Read(address))
}

// Write stores value at address, after echo normalization, dispatching to
// the stateful registers and performing OAM DMA when triggered.
func (b *Bus) Write(address uint16, value byte) {
	address = normalizeEcho(address)

	switch {
	case address < romSize:
		slog.Warn("write to ROM dropped", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
		return
	case address == addr.P1:
		b.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, value)
	case address == addr.IF:
		b.memory[address] = value
		b.needsInterruptCheck = true
	case address == addr.IE:
		b.memory[address] = value
		b.needsInterruptCheck = true
	case address == addr.DMA:
		b.memory[address] = value
		b.runDMA(value)
	default:
		b.memory[address] = value
	}
}

// Write16 stores a little-endian 16-bit value.
func (b *Bus) Write16(address uint16, value uint16) {
	b.Write(address, bit.Low(value))
	b.Write(address+1, bit.High(value))
}

// runDMA copies 160 bytes starting at value<<8 into OAM and charges the
// transfer's 160 M-cycles to the triggering instruction.
func (b *Bus) runDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.memory[addr.OAMStart+i] = b.Read(source + i)
	}
	b.owedDMACycles += 160
}
