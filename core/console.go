// Package core ties the bus, CPU, and PPU together into the console the
// host drives: load a ROM, step instructions, drain owed cycles, and read
// back the framebuffer and debug trace.
package core

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/finch-emu/dmgcore/dmg/bus"
	"github.com/finch-emu/dmgcore/dmg/cpu"
	"github.com/finch-emu/dmgcore/dmg/video"
)

// Console is the whole emulated machine: bus, CPU, and PPU wired together,
// driven one instruction at a time by the host.
type Console struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	PPU *video.PPU

	// cycleCount is the monotonic M-cycle counter Wait increments; it never
	// wraps, unlike the PPU's own dot counter.
	cycleCount uint64
}

// NewConsole creates a Console with a fresh bus, CPU, and PPU, but does not
// load a ROM or set any post-boot state - callers that skip boot ROM
// emulation should call LoadROM, which performs that initialization.
func NewConsole() *Console {
	b := bus.New()
	return &Console{
		Bus: b,
		CPU: cpu.New(b),
		PPU: video.NewPPU(b),
	}
}

// NewConsoleFromFile creates a Console and loads the ROM at path, wrapping
// any read failure.
func NewConsoleFromFile(path string) (*Console, error) {
	c := NewConsole()
	if err := c.LoadROM(path); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadROM reads up to 64KiB from path into the address space from 0x0000 and
// resets the machine to the documented post-boot state: CPU registers,
// IME, the initial I/O register snapshot a boot ROM would have left
// behind, and a cleared framebuffer.
func (c *Console) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM %q: %w", path, err)
	}
	slog.Debug("loaded ROM", "path", path, "size", len(data))

	c.Bus.LoadROM(data)
	c.CPU.InitPostBoot()
	c.initIORegisters()
	c.PPU = video.NewPPU(c.Bus)
	c.cycleCount = 0
	return nil
}

// initIORegisters sets the I/O register values a boot ROM leaves behind
// when it hands off to cartridge code at 0x0100.
func (c *Console) initIORegisters() {
	c.Bus.Write(addr.LCDC, 0x91)
	c.Bus.Write(addr.STAT, 0x81)
	c.Bus.Write(addr.LY, 0x91)
	c.Bus.Write(addr.BGP, 0xFC)
	c.Bus.Write(addr.IF, 0xE1)
	c.Bus.Write(addr.DMA, 0xFF)
	c.Bus.Write(addr.TAC, 0xF8)
	// Any DIV write resets the divider, so the post-boot value 0x18 is
	// reached by running it for 0x18 periods of 64 M-cycles. TAC's enable
	// bit (bit 2) is clear in 0xF8, so TIMA does not move meanwhile.
	c.Bus.Write(addr.DIV, 0)
	for i := 0; i < 0x18*64; i++ {
		c.Bus.Tick()
	}
}

// Step executes one instruction, or one halted cycle if HALTed. Call Wait
// afterward to drain the cycles it charges into the timer and PPU.
func (c *Console) Step() {
	c.CPU.Step()
}

// dotsPerMCycle is the number of PPU dots (T-states) one M-cycle covers.
const dotsPerMCycle = 4

// Wait drains the cycles owed by the last Step plus any DMA transfer it
// triggered, ticking the timer every M-cycle and the PPU four dots per
// M-cycle the LCD is enabled. A disabled LCD freezes dot counting, mode,
// and LY.
func (c *Console) Wait() {
	owed := c.CPU.CyclesToWait() + c.Bus.TakeOwedCycles()
	for owed > 0 {
		owed--
		c.cycleCount++
		c.Bus.Tick()
		if c.PPU.LCDEnabled() {
			c.PPU.Tick(dotsPerMCycle)
		}
	}
}

// RunInstruction steps one instruction and drains its owed cycles in one
// call, the usual host loop body.
func (c *Console) RunInstruction() {
	c.Step()
	c.Wait()
}

// RunFrame runs instructions until the PPU reports a freshly rasterized
// frame, then returns.
func (c *Console) RunFrame() {
	for {
		c.RunInstruction()
		if c.PPU.ConsumeFrameReady() {
			return
		}
	}
}

// CycleCount returns the monotonic M-cycle count accumulated by Wait.
func (c *Console) CycleCount() uint64 {
	return c.cycleCount
}

// PressButton marks a button held, raising a joypad interrupt on the
// press edge.
func (c *Console) PressButton(btn bus.Button) {
	c.Bus.PressButton(btn)
}

// ReleaseButton marks a button released.
func (c *Console) ReleaseButton(btn bus.Button) {
	c.Bus.ReleaseButton(btn)
}

// Origin returns the current background scroll position (SCY, SCX).
func (c *Console) Origin() (scy, scx byte) {
	return c.Bus.Read(addr.SCY), c.Bus.Read(addr.SCX)
}

// FrameBuffer returns the PPU's resolved 256x256 canvas.
func (c *Console) FrameBuffer() *video.FrameBuffer {
	return c.PPU.FrameBuffer()
}

// Dump emits a one-line CPU trace to the debug log: all registers, SP, PC,
// and the four bytes starting at PC.
func (c *Console) Dump() {
	r := c.CPU.Reg
	pc := r.PC
	slog.Debug(fmt.Sprintf(
		"A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X PCMEM:%02X,%02X,%02X,%02X",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, pc,
		c.Bus.Read(pc), c.Bus.Read(pc+1), c.Bus.Read(pc+2), c.Bus.Read(pc+3),
	))
}
