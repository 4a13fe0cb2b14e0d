package interrupt

import (
	"testing"

	"github.com/finch-emu/dmgcore/dmg/addr"
	"github.com/stretchr/testify/assert"
)

func TestPending(t *testing.T) {
	assert.False(t, Pending(0x00, 0x1F))
	assert.False(t, Pending(0x01, 0x00))
	assert.True(t, Pending(0x01, 0x01))
}

func TestHighestPriorityOrder(t *testing.T) {
	// all requested and enabled: VBlank must win
	source, ok := Highest(0x1F, 0x1F)
	assert.True(t, ok)
	assert.Equal(t, addr.VBlank, source)

	// VBlank not enabled: Timer (requested+enabled) wins over Serial/Joypad
	source, ok = Highest(0x1F, 0b00011100)
	assert.True(t, ok)
	assert.Equal(t, addr.Timer, source)

	// nothing enabled
	_, ok = Highest(0x1F, 0x00)
	assert.False(t, ok)
}

func TestClearAndRequest(t *testing.T) {
	ifReg := Request(0x00, addr.Timer)
	assert.Equal(t, addr.Timer.Bit(), ifReg)

	ifReg = Clear(ifReg, addr.Timer)
	assert.Equal(t, byte(0x00), ifReg)
}

func TestVectors(t *testing.T) {
	assert.Equal(t, uint16(0x40), addr.VBlank.Vector())
	assert.Equal(t, uint16(0x48), addr.LCDSTAT.Vector())
	assert.Equal(t, uint16(0x50), addr.Timer.Vector())
	assert.Equal(t, uint16(0x58), addr.Serial.Vector())
	assert.Equal(t, uint16(0x60), addr.Joypad.Vector())
}
