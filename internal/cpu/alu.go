package cpu

// add adds n (and the carry flag for ADC) to the A Register.
//
//	ADD A, n
//	ADC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(n uint8, withCarry bool) {
	var carry uint8
	if withCarry {
		carry = c.carry()
	}
	sum := uint16(c.A) + uint16(n) + uint16(carry)
	c.setFlags(uint8(sum) == 0, false, (c.A&0xF)+(n&0xF)+carry > 0xF, sum > 0xFF)
	c.A = uint8(sum)
}

// sub subtracts n (and the carry flag for SBC) from the A Register.
//
//	SUB n
//	SBC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) sub(n uint8, withCarry bool) {
	c.A = c.subtract(n, withCarry)
}

// subtract computes A - n (- carry) and sets the flags, without
// storing the result. Shared by SUB, SBC and CP.
func (c *CPU) subtract(n uint8, withCarry bool) uint8 {
	var carry int
	if withCarry {
		carry = int(c.carry())
	}
	diff := int(c.A) - int(n) - carry
	half := int(c.A&0xF) - int(n&0xF) - carry
	c.setFlags(uint8(diff) == 0, true, half < 0, diff < 0)
	return uint8(diff)
}

// and performs a bitwise AND operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(n uint8) {
	c.A &= n
	c.setFlags(c.A == 0, false, true, false)
}

// or performs a bitwise OR operation on n and the A Register.
func (c *CPU) or(n uint8) {
	c.A |= n
	c.setFlags(c.A == 0, false, false, false)
}

// xor performs a bitwise XOR operation on n and the A Register.
func (c *CPU) xor(n uint8) {
	c.A ^= n
	c.setFlags(c.A == 0, false, false, false)
}

// compare compares n to the A Register, setting the flags as
// SUB would without modifying A.
func (c *CPU) compare(n uint8) {
	c.subtract(n, false)
}

// alu performs one of the eight accumulator operations, selected by
// bits 3-5 of the opcode (ADD ADC SUB SBC AND XOR OR CP).
func (c *CPU) alu(op, n uint8) {
	switch op & 0x7 {
	case 0:
		c.add(n, false)
	case 1:
		c.add(n, true)
	case 2:
		c.sub(n, false)
	case 3:
		c.sub(n, true)
	case 4:
		c.and(n)
	case 5:
		c.xor(n)
	case 6:
		c.or(n)
	case 7:
		c.compare(n)
	}
}

// increment n by 1 and set the flags accordingly.
//
//	INC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(n uint8) uint8 {
	result := n + 1
	c.setFlags(result == 0, false, n&0xF == 0xF, c.IsFlagSet(FlagCarry))
	return result
}

// decrement n by 1 and set the flags accordingly.
//
//	DEC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(n uint8) uint8 {
	result := n - 1
	c.setFlags(result == 0, true, n&0xF == 0x0, c.IsFlagSet(FlagCarry))
	return result
}

// addHL adds nn to the HL RegisterPair.
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(nn uint16) {
	hl := c.HL.Uint16()
	sum := uint32(hl) + uint32(nn)
	c.setFlags(c.IsFlagSet(FlagZero), false, (hl&0xFFF)+(nn&0xFFF) > 0xFFF, sum > 0xFFFF)
	c.HL.SetUint16(uint16(sum))
	c.tick4()
}

// addSPSigned reads a signed operand and returns SP plus that
// operand. Used by ADD SP, r8 and LD HL, SP+r8.
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3 of the low byte.
//	C - Set if carry from bit 7 of the low byte.
func (c *CPU) addSPSigned() uint16 {
	value := c.readOperand()
	result := uint16(int32(c.SP) + int32(int8(value)))

	c.setFlags(false, false, (c.SP&0xF)+uint16(value&0xF) > 0xF, (c.SP&0xFF)+uint16(value) > 0xFF)
	c.tick4()
	return result
}

// daa adjusts the A Register into binary coded decimal, following an
// addition (N clear) or subtraction (N set) of two BCD values.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set if the adjustment carried out of the upper digit.
func (c *CPU) daa() {
	carry := c.IsFlagSet(FlagCarry)
	if !c.IsFlagSet(FlagSubtract) {
		if carry || c.A > 0x99 {
			c.A += 0x60
			carry = true
		}
		if c.IsFlagSet(FlagHalfCarry) || c.A&0xF > 0x9 {
			c.A += 0x06
		}
	} else {
		if carry {
			c.A -= 0x60
		}
		if c.IsFlagSet(FlagHalfCarry) {
			c.A -= 0x06
		}
	}
	c.setFlags(c.A == 0, c.IsFlagSet(FlagSubtract), false, carry)
}
