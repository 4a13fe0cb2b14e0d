package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapExchangesNibblesAndClearsCarry(t *testing.T) {
	_, c := newTestCPU(romAt(0x150, 0xCB, 0x37)) // SWAP A
	c.Reg.PC = 0x150
	c.Reg.A = 0xA5
	c.Reg.setFlag(flagC, true)

	c.Step()

	assert.Equal(t, uint8(0x5A), c.Reg.A)
	assert.False(t, c.Reg.flag(flagC))
	assert.False(t, c.Reg.flag(flagZ))
}

func TestSwapZero(t *testing.T) {
	_, c := newTestCPU(romAt(0x150, 0xCB, 0x37)) // SWAP A
	c.Reg.PC = 0x150
	c.Reg.A = 0x00

	c.Step()

	assert.True(t, c.Reg.flag(flagZ))
}

func TestResClearsBitWithoutAffectingFlags(t *testing.T) {
	_, c := newTestCPU(romAt(0x150, 0xCB, 0x87)) // RES 0, A
	c.Reg.PC = 0x150
	c.Reg.A = 0xFF
	c.Reg.F = 0xB0

	c.Step()

	assert.Equal(t, uint8(0xFE), c.Reg.A)
	assert.Equal(t, uint8(0xB0), c.Reg.F, "RES must not touch flags")
}

func TestSetSetsBitWithoutAffectingFlags(t *testing.T) {
	_, c := newTestCPU(romAt(0x150, 0xCB, 0xC7)) // SET 0, A
	c.Reg.PC = 0x150
	c.Reg.A = 0x00
	c.Reg.F = 0x50

	c.Step()

	assert.Equal(t, uint8(0x01), c.Reg.A)
	assert.Equal(t, uint8(0x50), c.Reg.F)
}

func TestRLCarriesThroughCarryFlag(t *testing.T) {
	_, c := newTestCPU(romAt(0x150, 0xCB, 0x10)) // RL B
	c.Reg.PC = 0x150
	c.Reg.B = 0x80
	c.Reg.setFlag(flagC, true)

	c.Step()

	assert.Equal(t, uint8(0x01), c.Reg.B, "bit 0 takes the old carry in")
	assert.True(t, c.Reg.flag(flagC), "bit 7 becomes the new carry out")
}

func TestBitOnMemoryOperand(t *testing.T) {
	b, c := newTestCPU(romAt(0x150, 0xCB, 0x46)) // BIT 0, (HL)
	c.Reg.PC = 0x150
	c.Reg.SetHL(0xC000)
	b.Write(0xC000, 0x01)

	c.Step()

	assert.False(t, c.Reg.flag(flagZ))
}
