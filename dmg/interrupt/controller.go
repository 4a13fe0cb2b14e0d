// Package interrupt implements the DMG interrupt priority logic: which of
// the five sources (VBlank, LCD STAT, Timer, Serial, Joypad) fires next
// given the IF request latch and IE enable mask. It holds no state of its
// own - IF/IE live on the bus, IME/HALTED live on the CPU - so it is safe
// to call from any component that needs to know what would fire.
package interrupt

import "github.com/finch-emu/dmgcore/dmg/addr"

// Pending reports whether any interrupt is requested and enabled,
// regardless of IME. The CPU uses this to wake from HALT even when
// interrupts are globally disabled.
func Pending(ifReg, ieReg byte) bool {
	return ifReg&ieReg != 0
}

// Highest returns the highest-priority interrupt that is both requested
// (IF) and enabled (IE), in the fixed order VBlank > LCD STAT > Timer >
// Serial > Joypad. ok is false if none are pending.
func Highest(ifReg, ieReg byte) (source addr.Interrupt, ok bool) {
	active := ifReg & ieReg
	for _, i := range addr.Priority {
		if active&i.Bit() != 0 {
			return i, true
		}
	}
	return 0, false
}

// Clear returns ifReg with the given interrupt's request bit cleared, as
// done immediately after a dispatch claims it.
func Clear(ifReg byte, source addr.Interrupt) byte {
	return ifReg &^ source.Bit()
}

// Request returns ifReg with the given interrupt's request bit set.
func Request(ifReg byte, source addr.Interrupt) byte {
	return ifReg | source.Bit()
}

// DispatchCycles is the fixed M-cycle cost of servicing an interrupt: two
// cycles to read the vector internally, two to push PC, one to jump.
const DispatchCycles = 5
