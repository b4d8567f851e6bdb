package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// Flag is a mask over the F register.
type Flag = uint8

const (
	FlagZero      Flag = types.Bit7
	FlagSubtract  Flag = types.Bit6
	FlagHalfCarry Flag = types.Bit5
	FlagCarry     Flag = types.Bit4
)

// clearFlag clears a flag from the F register.
func (c *CPU) clearFlag(flag Flag) {
	c.F &^= flag
}

// setFlag sets a flag in the F register.
func (c *CPU) setFlag(flag Flag) {
	c.F |= flag
}

// IsFlagSet reports whether flag is set in the F register.
func (c *CPU) IsFlagSet(flag Flag) bool {
	return c.F&flag == flag
}

// setFlags replaces the whole F register. The lower nibble is
// always left clear.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.F = 0
	if zero {
		c.F |= FlagZero
	}
	if subtract {
		c.F |= FlagSubtract
	}
	if halfCarry {
		c.F |= FlagHalfCarry
	}
	if carry {
		c.F |= FlagCarry
	}
}

// carry returns the carry flag as 0 or 1.
func (c *CPU) carry() uint8 {
	return c.F & FlagCarry >> 4
}
