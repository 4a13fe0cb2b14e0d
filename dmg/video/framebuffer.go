package video

// FrameBuffer holds the full 256x256 background/window canvas as 2-bit
// color indices (0-3, already resolved through BGP/OBP0/OBP1 - not raw tile
// pixel values). Rasterization fills the whole canvas once per frame, at
// VBlank entry; the visible 160x144 LCD window is whatever 256x256 region
// SCX/SCY currently scroll to, read out with Window.
const (
	FramebufferWidth  = 256
	FramebufferHeight = 256
	FramebufferSize   = FramebufferWidth * FramebufferHeight

	ViewportWidth  = 160
	ViewportHeight = 144
)

// GBColor is one of the four DMG shades, used by hosts that render RGBA.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// ByteToColor maps a resolved 2-bit color index to its DMG shade.
func ByteToColor(value byte) GBColor {
	switch value & 0x03 {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	case 3:
		return BlackColor
	}
	return WhiteColor
}

// FrameBuffer is the 256x256 canvas of resolved 2-bit color indices.
type FrameBuffer struct {
	buffer [FramebufferSize]byte
}

// NewFrameBuffer returns an all-zero (white) canvas.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// GetPixel returns the color index at (x, y), wrapping both axes modulo 256.
func (fb *FrameBuffer) GetPixel(x, y int) byte {
	x &= 0xFF
	y &= 0xFF
	return fb.buffer[y*FramebufferWidth+x]
}

// SetPixel stores a resolved color index at (x, y), wrapping both axes.
func (fb *FrameBuffer) SetPixel(x, y int, value byte) {
	x &= 0xFF
	y &= 0xFF
	fb.buffer[y*FramebufferWidth+x] = value & 0x03
}

// Clear resets the canvas to color index 0.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0
	}
}

// Window extracts the 160x144 LCD-visible view starting at the given scroll
// origin, wrapping around the 256x256 canvas on both axes.
func (fb *FrameBuffer) Window(scx, scy byte) [ViewportHeight][ViewportWidth]byte {
	var out [ViewportHeight][ViewportWidth]byte
	for y := 0; y < ViewportHeight; y++ {
		for x := 0; x < ViewportWidth; x++ {
			out[y][x] = fb.GetPixel(int(scx)+x, int(scy)+y)
		}
	}
	return out
}

// ToSlice returns the full 256x256 canvas as RGBA pixels, for hosts that
// want the raw background plane rather than just the scrolled viewport.
func (fb *FrameBuffer) ToSlice() []uint32 {
	out := make([]uint32, len(fb.buffer))
	for i, v := range fb.buffer {
		out[i] = uint32(ByteToColor(v))
	}
	return out
}
