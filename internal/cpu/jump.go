package cpu

// condition returns the result of the flag condition encoded in
// bits 3-4 of a conditional control flow opcode (NZ, Z, NC, C).
func (c *CPU) condition(instr uint8) bool {
	var f bool
	switch instr >> 4 & 1 {
	case 0:
		f = c.IsFlagSet(FlagZero)
	case 1:
		f = c.IsFlagSet(FlagCarry)
	}

	if instr>>3&1 == 0 {
		f = !f
	}

	return f
}

// jumpAbsolute reads a 16-bit address and jumps to it if taken.
//
//	JP nn
//	JP cc, nn
func (c *CPU) jumpAbsolute(taken bool) {
	address := c.readOperand16()
	if taken {
		c.PC = address
		c.tick4()
	}
}

// jumpRelative reads a signed offset and adds it to the PC if taken.
//
//	JR e
//	JR cc, e
func (c *CPU) jumpRelative(taken bool) {
	offset := int8(c.readOperand())
	if taken {
		c.PC = uint16(int32(c.PC) + int32(offset))
		c.tick4()
	}
}

// call reads a 16-bit address, and if taken pushes the address of the
// next instruction before jumping to it.
//
//	CALL nn
//	CALL cc, nn
func (c *CPU) call(taken bool) {
	address := c.readOperand16()
	if taken {
		c.tick4()
		c.push(uint8(c.PC>>8), uint8(c.PC&0xFF))
		c.PC = address
	}
}

// ret pops the return address off the stack if taken.
//
//	RET
//	RET cc
//	RETI
func (c *CPU) ret(taken bool) {
	if taken {
		high, low := c.pop()
		c.PC = uint16(high)<<8 | uint16(low)
		c.tick4()
	}
}

// rst pushes the address of the next instruction and jumps to one
// of the fixed restart vectors (0x00, 0x08 ... 0x38).
func (c *CPU) rst(vector uint16) {
	c.tick4()
	c.push(uint8(c.PC>>8), uint8(c.PC&0xFF))
	c.PC = vector
}
