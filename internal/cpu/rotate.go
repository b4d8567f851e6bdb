package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// rotate performs one of the eight CB prefixed rotate/shift
// operations on n, selected by bits 3-5 of the opcode:
//
//	0 RLC - rotate left, old bit 7 to carry and bit 0
//	1 RRC - rotate right, old bit 0 to carry and bit 7
//	2 RL  - rotate left through carry
//	3 RR  - rotate right through carry
//	4 SLA - shift left, bit 0 cleared
//	5 SRA - shift right, bit 7 unchanged
//	6 SWAP - exchange nibbles, carry cleared
//	7 SRL - shift right, bit 7 cleared
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains the bit shifted out (reset for SWAP).
func (c *CPU) rotate(op, n uint8) uint8 {
	var result uint8
	var carry bool
	switch op & 0x7 {
	case 0:
		result = n<<1 | n>>7
		carry = n&types.Bit7 != 0
	case 1:
		result = n>>1 | n<<7
		carry = n&types.Bit0 != 0
	case 2:
		result = n<<1 | c.carry()
		carry = n&types.Bit7 != 0
	case 3:
		result = n>>1 | c.carry()<<7
		carry = n&types.Bit0 != 0
	case 4:
		result = n << 1
		carry = n&types.Bit7 != 0
	case 5:
		result = n>>1 | n&types.Bit7
		carry = n&types.Bit0 != 0
	case 6:
		result = n<<4 | n>>4
	case 7:
		result = n >> 1
		carry = n&types.Bit0 != 0
	}
	c.setFlags(result == 0, false, false, carry)
	return result
}

// rotateAccumulator implements RLCA, RRCA, RLA and RRA. They
// behave like their CB prefixed forms on A, except that Z is
// always reset.
func (c *CPU) rotateAccumulator(op uint8) {
	c.A = c.rotate(op, c.A)
	c.clearFlag(FlagZero)
}

// testBit tests bit b of n.
//
//	BIT b, r
//
// Flags affected:
//
//	Z - Set if bit b of n is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) testBit(b, n uint8) {
	c.setFlags(n&(1<<b) == 0, false, true, c.IsFlagSet(FlagCarry))
}
