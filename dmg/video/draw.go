package video

import (
	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/finch-emu/dmgcore/dmg/bit"
)

// drawBackground rasterizes the full 32x32 tile background map into canvas
// space, unscrolled - SCX/SCY are applied later, when a host reads out the
// visible 160x144 Window.
func (p *PPU) drawBackground() {
	lcdc := p.bus.Read(addr.LCDC)
	if !bit.IsSet(bgDisplay, lcdc) {
		palette := p.bus.Read(addr.BGP)
		color := palette & 0x03
		for i := range p.bgPixel {
			p.bgPixel[i] = 0
			p.framebuffer.buffer[i] = color
		}
		return
	}

	useSignedTileSet := !bit.IsSet(bgWindowTileDataSelect, lcdc)
	tileMapAddr := addr.TileMap1
	if !bit.IsSet(bgTileMapDisplaySelect, lcdc) {
		tileMapAddr = addr.TileMap0
	}
	palette := p.bus.Read(addr.BGP)

	for tileY := 0; tileY < 32; tileY++ {
		for tileX := 0; tileX < 32; tileX++ {
			tileValue := p.bus.Read(tileMapAddr + uint16(tileY*32+tileX))
			tileAddr := p.tileAddress(tileValue, useSignedTileSet)

			for row := 0; row < 8; row++ {
				low := p.bus.Read(tileAddr + uint16(row*2))
				high := p.bus.Read(tileAddr + uint16(row*2) + 1)
				canvasY := tileY*8 + row

				for col := 0; col < 8; col++ {
					pixel := tilePixel(low, high, col, false)
					canvasX := tileX*8 + col
					idx := canvasY*FramebufferWidth + canvasX
					color := (palette >> (pixel * 2)) & 0x03
					p.framebuffer.buffer[idx] = color
					p.bgPixel[idx] = byte(pixel)
				}
			}
		}
	}
}

// drawWindow overlays the window layer at its configured WX/WY position,
// translated into canvas coordinates via the frame's scroll origin so it
// lands within the visible viewport like on hardware.
func (p *PPU) drawWindow(scx, scy byte) {
	lcdc := p.bus.Read(addr.LCDC)
	if !bit.IsSet(windowDisplayEnable, lcdc) {
		return
	}

	wx := int(p.bus.Read(addr.WX)) - 7
	wy := int(p.bus.Read(addr.WY))
	if wx >= ViewportWidth || wy >= ViewportHeight {
		return
	}

	useSignedTileSet := !bit.IsSet(bgWindowTileDataSelect, lcdc)
	tileMapAddr := addr.TileMap1
	if !bit.IsSet(windowTileMapSelect, lcdc) {
		tileMapAddr = addr.TileMap0
	}
	palette := p.bus.Read(addr.BGP)

	visibleRows := ViewportHeight - wy
	visibleCols := ViewportWidth - wx

	for winY := 0; winY < visibleRows; winY++ {
		tileRow := winY / 8
		rowInTile := winY % 8

		for winX := 0; winX < visibleCols; winX++ {
			if wx+winX < 0 {
				continue
			}
			tileCol := winX / 8
			colInTile := winX % 8

			tileValue := p.bus.Read(tileMapAddr + uint16(tileRow*32+tileCol))
			tileAddr := p.tileAddress(tileValue, useSignedTileSet)
			low := p.bus.Read(tileAddr + uint16(rowInTile*2))
			high := p.bus.Read(tileAddr + uint16(rowInTile*2) + 1)

			pixel := tilePixel(low, high, colInTile, false)
			color := (palette >> (pixel * 2)) & 0x03

			canvasX := (int(scx) + wx + winX) & 0xFF
			canvasY := (int(scy) + wy + winY) & 0xFF
			idx := canvasY*FramebufferWidth + canvasX
			p.framebuffer.buffer[idx] = color
			p.bgPixel[idx] = byte(pixel)
		}
	}
}

// drawSprites overlays the 40 OAM objects, screen position translated into
// canvas coordinates via the frame's scroll origin, applying sprite-to-
// sprite and sprite-to-background priority.
func (p *PPU) drawSprites(scx, scy byte) {
	if !bit.IsSet(spriteDisplayEnable, p.bus.Read(addr.LCDC)) {
		return
	}

	for line := 0; line < ViewportHeight; line++ {
		sprites := p.oam.GetSpritesForScanline(line)
		p.drawSpriteLine(sprites, line, scx, scy)
	}
}

func (p *PPU) drawSpriteLine(sprites []Sprite, line int, scx, scy byte) {
	for i := range sprites {
		s := &sprites[i]
		// s.Y is uint8-wrapped; sprites overlapping the top edge have a
		// negative screen Y that wrapped into the 240-255 range.
		spriteY := int(s.Y)
		if spriteY > 200 {
			spriteY -= 256
		}
		pixelY := line - spriteY
		if s.FlipY {
			pixelY = s.Height - 1 - pixelY
		}

		tileIndex := int(s.TileIndex)
		if s.Height == 16 {
			tileIndex &^= 1
		}
		rowOffset := 0
		if s.Height == 16 && pixelY >= 8 {
			rowOffset = 16
			pixelY -= 8
		}

		tileAddr := addr.TileDataUnsigned + uint16(tileIndex*16+rowOffset+pixelY*2)
		low := p.bus.Read(tileAddr)
		high := p.bus.Read(tileAddr + 1)

		paletteAddr := addr.OBP0
		if s.PaletteOBP1 {
			paletteAddr = addr.OBP1
		}
		palette := p.bus.Read(paletteAddr)

		for col := 0; col < 8; col++ {
			if !s.HasPriorityForPixel(col) {
				continue
			}
			pixel := tilePixel(low, high, col, s.FlipX)
			if pixel == 0 {
				continue
			}

			spriteX := int(s.X)
			if spriteX > 240 {
				spriteX -= 256
			}
			screenX := spriteX + col
			if screenX < 0 || screenX >= ViewportWidth {
				continue
			}
			canvasX := (int(scx) + screenX) & 0xFF
			canvasY := (int(scy) + line) & 0xFF
			idx := canvasY*FramebufferWidth + canvasX

			if s.BehindBG && p.bgPixel[idx] != 0 {
				continue
			}

			color := (palette >> (pixel * 2)) & 0x03
			p.framebuffer.buffer[idx] = color
		}
	}
}

// tileAddress resolves a tile map byte to its tile data address under the
// LCDC-selected addressing mode.
func (p *PPU) tileAddress(tileValue byte, signed bool) uint16 {
	if signed {
		return uint16(int(addr.TileDataSigned) + int(int8(tileValue))*16)
	}
	return addr.TileDataUnsigned + uint16(tileValue)*16
}

// tilePixel extracts the 2-bit color index for column col (0=leftmost)
// from a tile row's low/high bit-plane bytes, honoring horizontal flip.
func tilePixel(low, high byte, col int, flip bool) int {
	bitIndex := uint8(7 - col)
	if flip {
		bitIndex = uint8(col)
	}

	pixel := 0
	if bit.IsSet(bitIndex, low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, high) {
		pixel |= 2
	}
	return pixel
}
