package cpu

import "github.com/finch-emu/dmgcore/dmg/addr"

// execute decodes and runs one instruction, returning its M-cycle cost.
// Decoding follows the classic Z80 bit-field decomposition: x=op[7:6],
// y=op[5:3], z=op[2:0], p=y>>1, q=y&1 - a handful of small operand tables
// (reg8, rp, rp2, cc, aluOp) replace the 256-entry opcode map.
func (c *CPU) execute(opcode byte) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.executeX0(y, z, p, q)
	case 1:
		return c.executeX1(y, z)
	case 2:
		return c.executeX2(y, z)
	case 3:
		return c.executeX3(opcode, y, z, p, q)
	}
	unimplemented(opcode, c.Reg.PC-1)
	return 0
}

func (c *CPU) executeX0(y, z, p, q byte) int {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
			return 1
		case 1: // LD (nn), SP
			c.bus.Write16(c.fetch16(), c.Reg.SP)
			return 5
		case 2: // STOP
			c.stopped = true
			c.halted = true
			c.bus.Write(addr.DIV, 0)
			c.fetch8() // STOP's mandatory (and ignored) second byte
			return 1
		case 3: // JR e
			c.jumpRelative(int8(c.fetch8()))
			return 3
		default: // JR cc[y-4], e
			e := int8(c.fetch8())
			if c.checkCond(y - 4) {
				c.jumpRelative(e)
				return 3
			}
			return 2
		}
	case 1:
		if q == 0 { // LD rp[p], nn
			c.setRP(p, c.fetch16())
			return 3
		}
		// ADD HL, rp[p]
		c.addHL(c.getRP(p))
		return 2
	case 2:
		addrReg := [4]func() uint16{c.Reg.BC, c.Reg.DE, c.Reg.HL, c.Reg.HL}
		switch {
		case q == 0 && p < 2: // LD (BC/DE), A
			c.bus.Write(addrReg[p](), c.Reg.A)
		case q == 0 && p == 2: // LD (HL+), A
			c.bus.Write(c.Reg.HL(), c.Reg.A)
			c.Reg.SetHL(c.Reg.HL() + 1)
		case q == 0 && p == 3: // LD (HL-), A
			c.bus.Write(c.Reg.HL(), c.Reg.A)
			c.Reg.SetHL(c.Reg.HL() - 1)
		case q == 1 && p < 2: // LD A, (BC/DE)
			c.Reg.A = c.bus.Read(addrReg[p]())
		case q == 1 && p == 2: // LD A, (HL+)
			c.Reg.A = c.bus.Read(c.Reg.HL())
			c.Reg.SetHL(c.Reg.HL() + 1)
		case q == 1 && p == 3: // LD A, (HL-)
			c.Reg.A = c.bus.Read(c.Reg.HL())
			c.Reg.SetHL(c.Reg.HL() - 1)
		}
		return 2
	case 3:
		if q == 0 { // INC rp[p]
			c.setRP(p, c.getRP(p)+1)
		} else { // DEC rp[p]
			c.setRP(p, c.getRP(p)-1)
		}
		return 2
	case 4: // INC r[y]
		c.inc8(c.reg8Getter(y), c.reg8Setter(y))
		if y == 6 {
			return 3
		}
		return 1
	case 5: // DEC r[y]
		c.dec8(c.reg8Getter(y), c.reg8Setter(y))
		if y == 6 {
			return 3
		}
		return 1
	case 6: // LD r[y], n
		n := c.fetch8()
		c.reg8Setter(y)(n)
		if y == 6 {
			return 3
		}
		return 2
	case 7:
		return c.executeBlockOps(y)
	}
	return 1
}

// executeBlockOps handles x=0,z=7: the accumulator rotates and the misc
// single-byte flag operations.
func (c *CPU) executeBlockOps(y byte) int {
	switch y {
	case 0: // RLCA
		c.Reg.A = c.rlc(c.Reg.A)
		c.Reg.setFlag(flagZ, false)
	case 1: // RRCA
		c.Reg.A = c.rrc(c.Reg.A)
		c.Reg.setFlag(flagZ, false)
	case 2: // RLA
		c.Reg.A = c.rl(c.Reg.A)
		c.Reg.setFlag(flagZ, false)
	case 3: // RRA
		c.Reg.A = c.rr(c.Reg.A)
		c.Reg.setFlag(flagZ, false)
	case 4: // DAA
		c.daa()
	case 5: // CPL
		c.Reg.A = ^c.Reg.A
		c.Reg.setFlag(flagN, true)
		c.Reg.setFlag(flagH, true)
	case 6: // SCF
		c.Reg.setFlag(flagN, false)
		c.Reg.setFlag(flagH, false)
		c.Reg.setFlag(flagC, true)
	case 7: // CCF
		c.Reg.setFlag(flagN, false)
		c.Reg.setFlag(flagH, false)
		c.Reg.setFlag(flagC, !c.Reg.flag(flagC))
	}
	return 1
}

// executeX1 is x=1: LD r[y], r[z], with the r6,r6 encoding repurposed as
// HALT (the 8x8 LD grid has exactly one hole, at that slot).
func (c *CPU) executeX1(y, z byte) int {
	if y == 6 && z == 6 {
		c.halted = true
		return 1
	}
	c.reg8Setter(y)(c.reg8Getter(z)())
	if y == 6 || z == 6 {
		return 2
	}
	return 1
}

// executeX2 is x=2: alu[y] A, r[z].
func (c *CPU) executeX2(y, z byte) int {
	value := c.reg8Getter(z)()
	c.aluOp(y, value)
	if z == 6 {
		return 2
	}
	return 1
}

func (c *CPU) executeX3(opcode, y, z, p, q byte) int {
	switch z {
	case 0:
		switch {
		case y < 4: // RET cc[y]
			if c.checkCond(y) {
				c.Reg.PC = c.popStack()
				return 5
			}
			return 2
		case y == 4: // LDH (n), A
			c.bus.Write(0xFF00+uint16(c.fetch8()), c.Reg.A)
			return 3
		case y == 5: // ADD SP, e
			e := int8(c.fetch8())
			result, h, carry := c.addSPSigned(c.Reg.SP, e)
			c.Reg.setFlag(flagZ, false)
			c.Reg.setFlag(flagN, false)
			c.Reg.setFlag(flagH, h)
			c.Reg.setFlag(flagC, carry)
			c.Reg.SP = result
			return 4
		case y == 6: // LDH A, (n)
			c.Reg.A = c.bus.Read(0xFF00 + uint16(c.fetch8()))
			return 3
		default: // y==7: LD HL, SP+e
			e := int8(c.fetch8())
			result, h, carry := c.addSPSigned(c.Reg.SP, e)
			c.Reg.setFlag(flagZ, false)
			c.Reg.setFlag(flagN, false)
			c.Reg.setFlag(flagH, h)
			c.Reg.setFlag(flagC, carry)
			c.Reg.SetHL(result)
			return 3
		}
	case 1:
		if q == 0 { // POP rp2[p]
			c.setRP2(p, c.popStack())
			return 3
		}
		switch p {
		case 0: // RET
			c.Reg.PC = c.popStack()
			return 4
		case 1: // RETI
			c.Reg.PC = c.popStack()
			c.ime = true
			c.imeDelay = 0
			return 4
		case 2: // JP HL
			c.Reg.PC = c.Reg.HL()
			return 1
		default: // LD SP, HL
			c.Reg.SP = c.Reg.HL()
			return 2
		}
	case 2:
		switch {
		case y < 4: // JP cc[y], nn
			target := c.fetch16()
			if c.checkCond(y) {
				c.Reg.PC = target
				return 4
			}
			return 3
		case y == 4: // LD (0xFF00+C), A
			c.bus.Write(0xFF00+uint16(c.Reg.C), c.Reg.A)
			return 2
		case y == 5: // LD (nn), A
			c.bus.Write(c.fetch16(), c.Reg.A)
			return 4
		case y == 6: // LD A, (0xFF00+C)
			c.Reg.A = c.bus.Read(0xFF00 + uint16(c.Reg.C))
			return 2
		default: // LD A, (nn)
			c.Reg.A = c.bus.Read(c.fetch16())
			return 4
		}
	case 3:
		switch y {
		case 0: // JP nn
			c.Reg.PC = c.fetch16()
			return 4
		case 1: // CB prefix
			return c.executeCB(c.fetch8())
		case 6: // DI
			c.ime = false
			c.imeDelay = 0
			return 1
		case 7: // EI: latched, takes effect after the next instruction
			c.imeDelay = 2
			return 1
		default:
			unimplemented(opcode, c.Reg.PC-1)
			return 0
		}
	case 4: // CALL cc[y], nn
		target := c.fetch16()
		if y < 4 && c.checkCond(y) {
			c.pushStack(c.Reg.PC)
			c.Reg.PC = target
			return 6
		}
		if y < 4 {
			return 3
		}
		unimplemented(opcode, c.Reg.PC-1)
		return 0
	case 5:
		if q == 0 { // PUSH rp2[p]
			c.pushStack(c.getRP2(p))
			return 4
		}
		if p == 0 { // CALL nn
			target := c.fetch16()
			c.pushStack(c.Reg.PC)
			c.Reg.PC = target
			return 6
		}
		unimplemented(opcode, c.Reg.PC-1)
		return 0
	case 6: // alu[y] A, n
		c.aluOp(y, c.fetch8())
		return 2
	case 7: // RST y*8
		c.pushStack(c.Reg.PC)
		c.Reg.PC = uint16(y) * 8
		return 4
	}
	return 1
}

func (c *CPU) jumpRelative(e int8) {
	c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
}

// checkCond evaluates cc[idx] in order NZ, Z, NC, C.
func (c *CPU) checkCond(idx byte) bool {
	switch idx {
	case 0:
		return !c.Reg.flag(flagZ)
	case 1:
		return c.Reg.flag(flagZ)
	case 2:
		return !c.Reg.flag(flagC)
	default:
		return c.Reg.flag(flagC)
	}
}

// aluOp applies alu[idx] A, value: ADD, ADC, SUB, SBC, AND, XOR, OR, CP.
func (c *CPU) aluOp(idx byte, value uint8) {
	switch idx {
	case 0:
		c.add(value, 0)
	case 1:
		c.add(value, c.carryBit())
	case 2:
		c.sub(value, 0)
	case 3:
		c.sub(value, c.carryBit())
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	case 7:
		c.cp(value)
	}
}

func (c *CPU) carryBit() uint8 {
	if c.Reg.flag(flagC) {
		return 1
	}
	return 0
}

// getRP/setRP index rp[p] = BC, DE, HL, SP.
func (c *CPU) getRP(p byte) uint16 {
	switch p {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		return c.Reg.HL()
	default:
		return c.Reg.SP
	}
}

func (c *CPU) setRP(p byte, v uint16) {
	switch p {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		c.Reg.SetHL(v)
	default:
		c.Reg.SP = v
	}
}

// getRP2/setRP2 index rp2[p] = BC, DE, HL, AF - the PUSH/POP register set.
func (c *CPU) getRP2(p byte) uint16 {
	if p == 3 {
		return c.Reg.AF()
	}
	return c.getRP(p)
}

func (c *CPU) setRP2(p byte, v uint16) {
	if p == 3 {
		c.Reg.SetAF(v)
		return
	}
	c.setRP(p, v)
}

// reg8Getter/reg8Setter index r[idx] = B, C, D, E, H, L, (HL), A.
func (c *CPU) reg8Getter(idx byte) func() uint8 {
	switch idx {
	case 0:
		return func() uint8 { return c.Reg.B }
	case 1:
		return func() uint8 { return c.Reg.C }
	case 2:
		return func() uint8 { return c.Reg.D }
	case 3:
		return func() uint8 { return c.Reg.E }
	case 4:
		return func() uint8 { return c.Reg.H }
	case 5:
		return func() uint8 { return c.Reg.L }
	case 6:
		return func() uint8 { return c.bus.Read(c.Reg.HL()) }
	default:
		return func() uint8 { return c.Reg.A }
	}
}

func (c *CPU) reg8Setter(idx byte) func(uint8) {
	switch idx {
	case 0:
		return func(v uint8) { c.Reg.B = v }
	case 1:
		return func(v uint8) { c.Reg.C = v }
	case 2:
		return func(v uint8) { c.Reg.D = v }
	case 3:
		return func(v uint8) { c.Reg.E = v }
	case 4:
		return func(v uint8) { c.Reg.H = v }
	case 5:
		return func(v uint8) { c.Reg.L = v }
	case 6:
		return func(v uint8) { c.bus.Write(c.Reg.HL(), v) }
	default:
		return func(v uint8) { c.Reg.A = v }
	}
}
