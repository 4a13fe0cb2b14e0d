package cpu

// executeCB decodes a CB-prefixed opcode: x=op[7:6] selects the operation
// group (rotate/shift, BIT, RES, SET), y=op[5:3] selects the rotate variant
// or bit index, z=op[2:0] selects r[z].
func (c *CPU) executeCB(opcode byte) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	get := c.reg8Getter(z)
	set := c.reg8Setter(z)
	// The prefix byte's own fetch cost is absorbed into whatever executeCB
	// returns - decode.go charges nothing extra for it. A register operand
	// is 2 M-cycles (prefix + opcode byte); (HL) adds the extra bus round
	// trips for the read-modify-write.
	cost := 2
	if z == 6 {
		cost = 4
	}

	switch x {
	case 0: // rotate/shift group
		v := get()
		switch y {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		default:
			v = c.srl(v)
		}
		set(v)
		return cost
	case 1: // BIT y, r[z]
		c.bitTest(y, get())
		if z == 6 {
			return 3
		}
		return cost
	case 2: // RES y, r[z]
		set(get() &^ (1 << y))
		return cost
	default: // SET y, r[z]
		set(get() | (1 << y))
		return cost
	}
}
