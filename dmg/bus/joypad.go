// Joypad models the DMG input port at 0xFF00. Button state is kept as two
// active-low nibbles (direction, action) the way the hardware multiplexes
// them onto P10-P13; which nibble is visible is controlled by bits 4-5,
// written by the game.
package bus

import "github.com/finch-emu/dmgcore/dmg/bit"

// Button identifies one of the eight physical inputs.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Joypad tracks which buttons are held and which row the game selected.
type Joypad struct {
	buttons uint8 // action row: A,B,Select,Start in bits 0-3, active-low
	dpad    uint8 // direction row: Right,Left,Up,Down in bits 0-3, active-low
	select_ uint8 // bits 4-5 as last written to P1
}

// NewJoypad returns a Joypad with all buttons released.
func NewJoypad() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F, select_: 0x30}
}

// Read synthesizes the byte the CPU sees at 0xFF00: unused bits 6-7 pinned
// high, the stored selection in bits 4-5, and bits 0-3 reflecting whichever
// row(s) are selected, ANDed together when both are (active-low, so ANDing
// is the OR of "pressed").
func (j *Joypad) Read() uint8 {
	lower := uint8(0x0F)
	if j.select_&0x10 == 0 { // direction selected
		lower &= j.dpad
	}
	if j.select_&0x20 == 0 { // action selected
		lower &= j.buttons
	}
	return 0xC0 | j.select_ | lower
}

// Write stores the row-selection bits from a write to P1. Bits 0-3 written
// by software are ignored; they're driven by the button matrix on hardware.
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0x30
}

// Press clears the bit for the given button (active-low: held = 0).
// Returns true if this was an edge (button was not already held), the
// condition under which pressing raises the Joypad interrupt.
func (j *Joypad) Press(key Button) bool {
	wasReleased := bit.IsSet(uint8(key)&3, j.row(key))
	j.setRow(key, bit.Reset(uint8(key)&3, j.row(key)))
	return wasReleased
}

// Release sets the bit for the given button back to released (1).
func (j *Joypad) Release(key Button) {
	j.setRow(key, bit.Set(uint8(key)&3, j.row(key)))
}

func (j *Joypad) row(key Button) uint8 {
	if key < ButtonA {
		return j.dpad
	}
	return j.buttons
}

func (j *Joypad) setRow(key Button, val uint8) {
	if key < ButtonA {
		j.dpad = val
	} else {
		j.buttons = val
	}
}
