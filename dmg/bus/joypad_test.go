package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypadIdleReadsAllReleased(t *testing.T) {
	j := NewJoypad()
	j.Write(0x30) // neither row selected
	assert.Equal(t, byte(0xFF), j.Read())
}

func TestJoypadDirectionSelected(t *testing.T) {
	j := NewJoypad()
	j.Press(ButtonUp)
	j.Write(0x20) // bit4=0: direction selected, bit5=1

	assert.Equal(t, byte(0xEB), j.Read()) // bit 2 (Up) clear, bits 6-7 set, selection bits kept
}

func TestJoypadActionSelected(t *testing.T) {
	j := NewJoypad()
	j.Press(ButtonStart)
	j.Write(0x10) // bit5=0: action selected

	assert.Equal(t, byte(0xD7), j.Read()) // bit 3 (Start) clear
}

func TestJoypadBothSelectedANDsRows(t *testing.T) {
	j := NewJoypad()
	j.Press(ButtonA)
	j.Write(0x00) // both rows selected

	assert.Equal(t, byte(0xCE), j.Read())
}

func TestJoypadReleaseRestoresBit(t *testing.T) {
	j := NewJoypad()
	j.Press(ButtonA)
	j.Release(ButtonA)
	j.Write(0x10)

	assert.Equal(t, byte(0xFF), j.Read())
}

func TestJoypadPressReportsEdge(t *testing.T) {
	j := NewJoypad()
	assert.True(t, j.Press(ButtonB))
	assert.False(t, j.Press(ButtonB))
}
