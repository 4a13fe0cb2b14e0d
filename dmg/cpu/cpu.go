// Package cpu implements the DMG's Sharp SM83 instruction set: fetch,
// bit-field decode, execute, and interrupt dispatch. Decoding extracts
// op[7:6]/op[5:3]/op[2:0] and indexes small register/operand tables rather
// than a 256-entry opcode map - see decode.go.
package cpu

import (
	"fmt"

	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/finch-emu/dmgcore/dmg/interrupt"
)

// Bus is the memory-mapped address space the CPU executes against.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Read16(address uint16) uint16
	Write16(address uint16, value uint16)
	IF() byte
	IE() byte
	ClearInterrupt(source addr.Interrupt)
	RequestInterrupt(source addr.Interrupt)
}

// CPU is the Sharp SM83 core: registers, interrupt master enable, and the
// halted/stopped states, executing against a Bus.
type CPU struct {
	Reg Registers
	bus Bus

	ime bool
	// imeDelay counts down the one-instruction latency of EI: set to 2 when
	// EI executes, decremented each Step, IME flips on when it reaches 0.
	// A DI executed in that window still takes effect immediately and
	// cancels the pending enable.
	imeDelay int

	halted  bool
	stopped bool

	cyclesToWait int
}

// New creates a CPU with zeroed registers, wired to bus.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// InitPostBoot sets the registers and IME to the documented post-boot-ROM
// state, for hosts that skip boot ROM emulation and jump straight to 0x0100.
func (c *CPU) InitPostBoot() {
	c.Reg.SetAF(0x01B0)
	c.Reg.SetBC(0x0013)
	c.Reg.SetDE(0x00D8)
	c.Reg.SetHL(0x014D)
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xFFFE
	c.ime = false
	c.imeDelay = 0
	c.halted = false
	c.stopped = false
}

// CyclesToWait returns the number of M-cycles owed by the last Step, for
// the clock coordinator to drain.
func (c *CPU) CyclesToWait() int {
	return c.cyclesToWait
}

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool {
	return c.halted
}

// Step executes one instruction, or one halted cycle if HALTed, updating
// PC and charging cyclesToWait. Call Wait (on the clock coordinator) to
// drain those cycles into the timer and PPU.
func (c *CPU) Step() {
	c.serviceEIDelay()

	if c.halted {
		c.cyclesToWait = 1
		if interrupt.Pending(c.bus.IF(), c.bus.IE()) {
			c.halted = false
		}
		c.dispatchInterruptIfPending()
		return
	}

	if c.dispatchInterruptIfPending() {
		return
	}

	opcode := c.fetch8()
	c.cyclesToWait = c.execute(opcode)
}

// serviceEIDelay advances the EI latch. EI sets imeDelay=2; it counts
// down across the instruction boundary following EI, not the EI
// instruction itself, so IME flips on at the start of the second Step
// after EI, once the instruction following EI has run.
func (c *CPU) serviceEIDelay() {
	if c.imeDelay == 0 {
		return
	}
	c.imeDelay--
	if c.imeDelay == 0 {
		c.ime = true
	}
}

// dispatchInterruptIfPending services the highest-priority pending
// interrupt if IME is set, pushing PC and jumping to its vector. Returns
// true if an interrupt was dispatched (the fetched opcode, if any, must
// not also execute this Step).
func (c *CPU) dispatchInterruptIfPending() bool {
	if !c.ime {
		return false
	}
	source, ok := interrupt.Highest(c.bus.IF(), c.bus.IE())
	if !ok {
		return false
	}

	c.ime = false
	c.bus.ClearInterrupt(source)
	c.pushStack(c.Reg.PC)
	c.Reg.PC = source.Vector()
	c.cyclesToWait = interrupt.DispatchCycles
	return true
}

func (c *CPU) fetch8() byte {
	v := c.bus.Read(c.Reg.PC)
	c.Reg.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.bus.Read16(c.Reg.PC)
	c.Reg.PC += 2
	return v
}

func (c *CPU) pushStack(v uint16) {
	c.Reg.SP -= 2
	c.bus.Write16(c.Reg.SP, v)
}

func (c *CPU) popStack() uint16 {
	v := c.bus.Read16(c.Reg.SP)
	c.Reg.SP += 2
	return v
}

func unimplemented(opcode byte, pc uint16) {
	panic(fmt.Sprintf("unimplemented opcode 0x%02X at 0x%04X", opcode, pc))
}
