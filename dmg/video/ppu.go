package video

import (
	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/finch-emu/dmgcore/dmg/bit"
	"github.com/finch-emu/dmgcore/dmg/bus"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode uint8

const (
	HBlank Mode = 0
	VBlank Mode = 1
	Searching Mode = 2
	Transferring Mode = 3
)

// Frame timing, in dots (T-states). A frame is 154 scanlines of 456 dots
// each; VBlank begins the instant the overall frame dot count reaches the
// start of line 144.
const (
	DotsPerScanline = 456
	ScanlinesPerFrame = 154
	DotsPerFrame = DotsPerScanline * ScanlinesPerFrame // 70224

	vblankStartDot     = 144 * DotsPerScanline // 65664
	transferStartInDot = 80
	hblankStartInDot   = 248
)

func modeForDot(frameDot int) Mode {
	if frameDot >= vblankStartDot {
		return VBlank
	}
	switch m := frameDot % DotsPerScanline; {
	case m >= hblankStartInDot:
		return HBlank
	case m >= transferStartInDot:
		return Transferring
	default:
		return Searching
	}
}

// PPU rasterizes the entire 256x256 background/window/sprite canvas once,
// at the instant the frame transitions into VBlank, rather than per
// scanline - the mode machine below exists to drive STAT/LY and timing
// correctly, not to pace incremental rendering.
type PPU struct {
	bus         *bus.Bus
	framebuffer *FrameBuffer
	bgPixel     [FramebufferSize]byte // resolved BG/window color index, for sprite priority
	oam         *OAM

	frameDot   int
	mode       Mode
	ly         byte
	frameReady bool
}

// NewPPU creates a PPU wired to the given bus for register/VRAM access,
// starting at frame dot 0 - Searching mode, LY 0 - matching a post-boot
// console before its first real frame begins.
func NewPPU(b *bus.Bus) *PPU {
	return &PPU{
		bus:         b,
		framebuffer: NewFrameBuffer(),
		oam:         NewOAM(b),
		mode:        Searching,
		ly:          0,
	}
}

// FrameBuffer returns the full 256x256 canvas of resolved color indices.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.framebuffer
}

// ConsumeFrameReady reports whether a new frame finished rasterizing since
// the last call, clearing the flag.
func (p *PPU) ConsumeFrameReady() bool {
	v := p.frameReady
	p.frameReady = false
	return v
}

// Mode returns the PPU's current rendering stage.
func (p *PPU) Mode() Mode {
	return p.mode
}

// Tick advances the PPU by the given number of dots (T-states).
func (p *PPU) Tick(dots int) {
	for i := 0; i < dots; i++ {
		p.stepDot()
	}
}

func (p *PPU) stepDot() {
	p.frameDot++
	if p.frameDot >= DotsPerFrame {
		p.frameDot = 0
	}

	newLY := byte(p.frameDot / DotsPerScanline)
	if newLY != p.ly {
		p.ly = newLY
		p.bus.Write(addr.LY, p.ly)
		p.compareLYToLYC()
	}

	newMode := modeForDot(p.frameDot)
	if newMode == p.mode {
		return
	}
	p.mode = newMode
	p.setSTATMode(newMode)

	switch newMode {
	case VBlank:
		p.bus.RequestInterrupt(addr.VBlank)
		if p.statIRQEnabled(statVblankIrq) {
			p.bus.RequestInterrupt(addr.LCDSTAT)
		}
		if p.lcdEnabled() {
			p.rasterizeFrame()
		}
		p.frameReady = true
	case Searching:
		if p.statIRQEnabled(statOamIrq) {
			p.bus.RequestInterrupt(addr.LCDSTAT)
		}
	case HBlank:
		if p.statIRQEnabled(statHblankIrq) {
			p.bus.RequestInterrupt(addr.LCDSTAT)
		}
	case Transferring:
		// no STAT interrupt source for mode 3
	}
}

func (p *PPU) lcdEnabled() bool {
	return bit.IsSet(uint8(lcdDisplayEnable), p.bus.Read(addr.LCDC))
}

// LCDEnabled reports whether LCDC bit 7 is set. The clock coordinator only
// advances the PPU while the LCD is enabled; a disabled LCD freezes dot
// counting, mode, and LY in place.
func (p *PPU) LCDEnabled() bool {
	return p.lcdEnabled()
}

func (p *PPU) statIRQEnabled(bitPos statFlag) bool {
	return bit.IsSet(uint8(bitPos), p.bus.Read(addr.STAT))
}

func (p *PPU) setSTATMode(mode Mode) {
	stat := p.bus.Read(addr.STAT)
	stat = stat&0xFC | byte(mode)
	p.bus.Write(addr.STAT, stat)
}

func (p *PPU) compareLYToLYC() {
	stat := p.bus.Read(addr.STAT)
	if p.bus.Read(addr.LY) == p.bus.Read(addr.LYC) {
		stat = bit.Set(statLycCondition, stat)
		if bit.IsSet(statLycIrq, stat) {
			p.bus.RequestInterrupt(addr.LCDSTAT)
		}
	} else {
		stat = bit.Reset(statLycCondition, stat)
	}
	p.bus.Write(addr.STAT, stat)
}

// rasterizeFrame draws the full 256x256 background, overlays the window
// and sprites at their current scrolled screen position, and writes the
// result into the framebuffer. Run once, at VBlank entry.
func (p *PPU) rasterizeFrame() {
	scx := p.bus.Read(addr.SCX)
	scy := p.bus.Read(addr.SCY)

	p.drawBackground()
	p.drawWindow(scx, scy)
	p.drawSprites(scx, scy)
}
