// Package serial implements the DMG serial port as a debug-output sink: a
// write to SB emits the byte immediately and completes the transfer, rather
// than modeling the real ~8192-cycle shift-clock timing.
package serial

import (
	"log/slog"

	"github.com/finch-emu/dmgcore/dmg/addr"
)

// LogSink logs outgoing serial bytes as text lines. Handy for test ROMs
// that report pass/fail over serial instead of the screen.
type LogSink struct {
	irqHandler func()
	sc         byte
	defaultRX  byte
	logger     *slog.Logger

	line []byte
}

// NewLogSink creates a logging serial device. irq is called once per byte
// transferred, wired to request the Serial interrupt.
func NewLogSink(irq func()) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	return s
}

// Write handles SB/SC writes. A write to SB emits the byte right away: the
// register must not retain the written value, so reads of SB always return
// defaultRX. SC is stored verbatim; its start/clock bits have no timing
// effect here since every transfer completes instantly.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.emit(value)
	case addr.SC:
		s.sc = value
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.defaultRX
	case addr.SC:
		return s.sc
	default:
		return 0xFF
	}
}

func (s *LogSink) emit(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.irqHandler != nil {
		s.irqHandler()
	}
}

// Reset clears any buffered partial line and control state.
func (s *LogSink) Reset() {
	s.sc = 0x00
	s.line = s.line[:0]
}
