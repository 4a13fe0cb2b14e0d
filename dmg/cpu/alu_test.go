package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDAAAfterAddCorrectsToBCD(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.A = 0x45
	c.add(0x38, 0) // 0x45 + 0x38 = 0x7D (binary), BCD should read 83

	c.daa()

	assert.Equal(t, uint8(0x83), c.Reg.A)
	assert.False(t, c.Reg.flag(flagC))
}

func TestDAAAfterSubCorrectsToBCD(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.A = 0x83
	c.sub(0x38, 0) // 0x83 - 0x38 = 0x4B (binary), BCD should read 45

	c.daa()

	assert.Equal(t, uint8(0x45), c.Reg.A)
}

func TestBitTestZFlagUsesComplementOfBit(t *testing.T) {
	// BIT test: Z = ((reg >> b) & 1) == 0 - not ~(reg >> b) as the source
	// had it, which only agrees with the correct rule at bit 0.
	_, c := newTestCPU(nil)

	c.bitTest(3, 0x08) // bit 3 set -> Z clear
	assert.False(t, c.Reg.flag(flagZ))

	c.bitTest(3, 0xF7) // bit 3 clear (all others set) -> Z set
	assert.True(t, c.Reg.flag(flagZ))

	assert.True(t, c.Reg.flag(flagH))
	assert.False(t, c.Reg.flag(flagN))
}

func TestAndAlwaysSetsHalfCarryAndClearsCarry(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.A = 0xFF
	c.Reg.setFlag(flagC, true)

	c.and(0x0F)

	assert.Equal(t, uint8(0x0F), c.Reg.A)
	assert.True(t, c.Reg.flag(flagH))
	assert.False(t, c.Reg.flag(flagC))
}

func TestOrXorClearAllFlagsExceptZero(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.A = 0x00
	c.Reg.setFlag(flagN, true)
	c.Reg.setFlag(flagH, true)
	c.Reg.setFlag(flagC, true)

	c.or(0x00)

	assert.True(t, c.Reg.flag(flagZ))
	assert.False(t, c.Reg.flag(flagN))
	assert.False(t, c.Reg.flag(flagH))
	assert.False(t, c.Reg.flag(flagC))

	c.Reg.setFlag(flagN, true)
	c.Reg.setFlag(flagH, true)
	c.Reg.setFlag(flagC, true)

	c.xor(0x00)

	assert.True(t, c.Reg.flag(flagZ))
	assert.False(t, c.Reg.flag(flagN))
	assert.False(t, c.Reg.flag(flagH))
	assert.False(t, c.Reg.flag(flagC))
}

func TestAddHLPreservesZeroFlag(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.setFlag(flagZ, true)
	c.Reg.SetHL(0x0FFF)

	c.addHL(0x0001)

	assert.Equal(t, uint16(0x1000), c.Reg.HL())
	assert.True(t, c.Reg.flag(flagZ), "ADD HL must not touch Z")
	assert.True(t, c.Reg.flag(flagH))
	assert.False(t, c.Reg.flag(flagC))
}

func TestIncDoesNotAffectCarry(t *testing.T) {
	_, c := newTestCPU(nil)
	c.Reg.setFlag(flagC, true)
	v := uint8(0xFF)

	c.inc8(func() uint8 { return v }, func(nv uint8) { v = nv })

	assert.Equal(t, uint8(0x00), v)
	assert.True(t, c.Reg.flag(flagZ))
	assert.True(t, c.Reg.flag(flagC), "INC must preserve the carry flag")
}
