package cpu

import (
	"github.com/thelolagemann/gbcore/internal/types"
)

// decode executes instr. Opcodes that don't fit the regular bit-field
// layout are handled first, the rest are decoded by their fields:
//
//	00 000 000
//	^^ ^^^ ^^^
//	xx yyy zzz
func (c *CPU) decode(instr uint8) {
	switch instr {
	case 0x00: // NOP
	case 0x08: // LD (a16), SP
		address := c.readOperand16()
		c.writeByte(address, uint8(c.SP&0xFF))
		c.writeByte(address+1, uint8(c.SP>>8))
	case 0x10: // STOP
		c.stop()
	case 0x18: // JR r8
		c.jumpRelative(true)
	case 0x27: // DAA
		c.daa()
	case 0x2F: // CPL
		c.A = ^c.A
		c.F |= FlagSubtract | FlagHalfCarry
	case 0x37: // SCF
		c.F = c.F&FlagZero | FlagCarry
	case 0x3F: // CCF
		c.F = c.F&(FlagZero|FlagCarry) ^ FlagCarry
	case 0x40: // LD B, B
		if c.Debug {
			c.DebugBreakpoint = true
		}
	case 0x76: // HALT
		c.halt()
	case 0xC3: // JP a16
		c.jumpAbsolute(true)
	case 0xC9: // RET
		c.ret(true)
	case 0xCB: // CB Prefix
		c.lastCB = true
		c.decodeCB(c.readOperand())
	case 0xCD: // CALL a16
		c.call(true)
	case 0xD9: // RETI
		c.irq.EnableNow()
		c.ret(true)
	case 0xE0: // LDH (a8), A
		c.writeByte(0xFF00+uint16(c.readOperand()), c.A)
	case 0xE2: // LD (C), A
		c.writeByte(0xFF00+uint16(c.C), c.A)
	case 0xE8: // ADD SP, r8
		c.SP = c.addSPSigned()
		c.tick4()
	case 0xE9: // JP HL
		c.PC = c.HL.Uint16()
	case 0xEA: // LD (a16), A
		c.writeByte(c.readOperand16(), c.A)
	case 0xF0: // LDH A, (a8)
		c.A = c.readByte(0xFF00 + uint16(c.readOperand()))
	case 0xF2: // LD A, (C)
		c.A = c.readByte(0xFF00 + uint16(c.C))
	case 0xF3: // DI
		c.irq.Disable()
	case 0xF8: // LD HL, SP+r8
		c.HL.SetUint16(c.addSPSigned())
	case 0xF9: // LD SP, HL
		c.SP = c.HL.Uint16()
		c.tick4()
	case 0xFA: // LD A, (a16)
		c.A = c.readByte(c.readOperand16())
	case 0xFB: // EI
		c.irq.EnableDeferred()
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		c.invalidOpcode(instr)
	default:
		switch instr >> 6 & 0x3 {
		case 0: // 0x00 - 0x3F
			c.decodeBlock0(instr)
		case 1: // 0x40 - 0x7F (LD r, r)
			c.setRegister(instr>>3, c.getRegister(instr))
		case 2: // 0x80 - 0xBF (ALU r)
			c.alu(instr>>3, c.getRegister(instr))
		case 3: // 0xC0 - 0xFF
			c.decodeBlock3(instr)
		}
	}
}

func (c *CPU) decodeBlock0(instr uint8) {
	switch instr & 0x7 {
	case 0: // JR cc, r8
		c.jumpRelative(c.condition(instr))
	case 1:
		if instr>>3&1 == 1 { // ADD HL, rr
			c.addHL(c.getPair(instr >> 4))
		} else { // LD rr, d16
			c.setPair(instr>>4, c.readOperand16())
		}
	case 2:
		address := c.getIndirect(instr >> 4)
		if instr>>3&1 == 1 { // LD A, (rr)
			c.A = c.readByte(address)
		} else { // LD (rr), A
			c.writeByte(address, c.A)
		}
	case 3: // INC/DEC rr
		if instr>>3&1 == 0 {
			c.setPair(instr>>4, c.getPair(instr>>4)+1)
		} else {
			c.setPair(instr>>4, c.getPair(instr>>4)-1)
		}
		c.tick4()
	case 4: // INC r
		c.setRegister(instr>>3, c.increment(c.getRegister(instr>>3)))
	case 5: // DEC r
		c.setRegister(instr>>3, c.decrement(c.getRegister(instr>>3)))
	case 6: // LD r, d8
		c.setRegister(instr>>3, c.readOperand())
	case 7: // RLCA, RRCA, RLA, RRA (DAA, CPL, SCF, CCF are decoded earlier)
		c.rotateAccumulator(instr >> 3)
	}
}

func (c *CPU) decodeBlock3(instr uint8) {
	switch instr & 0x7 {
	case 0: // RET cc
		c.tick4()
		c.ret(c.condition(instr))
	case 1: // POP rr
		high, low := c.pop()
		c.setStackPair(instr>>4, uint16(high)<<8|uint16(low))
	case 2: // JP cc, a16
		c.jumpAbsolute(c.condition(instr))
	case 4: // CALL cc, a16
		c.call(c.condition(instr))
	case 5: // PUSH rr
		v := c.getStackPair(instr >> 4)
		c.tick4()
		c.push(uint8(v>>8), uint8(v&0xFF))
	case 6: // ALU d8
		c.alu(instr>>3, c.readOperand())
	case 7: // RST
		c.rst(uint16(instr & 0x38))
	default:
		// every opcode in this block with z == 3 is decoded earlier
		c.invalidOpcode(instr)
	}
}

// decodeCB decodes a CB-prefixed instruction.
//
//	00 000 000
//	^^ ^^^ ^^^
//	op bit reg
//
// Below 0x40 the bit field selects a rotate/shift operation, from
// 0x40 upwards it is the bit index for BIT, RES and SET.
func (c *CPU) decodeCB(instr uint8) {
	val := c.getRegister(instr)
	b := instr >> 3 & 0x7

	switch instr >> 6 & 0x3 {
	case 0:
		val = c.rotate(b, val)
	case 1: // BIT
		c.testBit(b, val)
		return // BIT doesn't change the value of the source register
	case 2: // RES
		val &^= 1 << b
	case 3: // SET
		val |= 1 << b
	}

	c.setRegister(instr, val)
}

// getRegister returns the value of the register selected by the
// low 3 bits of reg, reading (HL) from the bus for index 6.
func (c *CPU) getRegister(reg uint8) uint8 {
	reg &= 0x7
	if reg == 6 {
		c.hlValue = c.readByte(c.HL.Uint16())
	}
	return *c.registerPointers[reg]
}

// setRegister sets the register selected by the low 3 bits of reg,
// writing (HL) to the bus for index 6.
func (c *CPU) setRegister(reg, value uint8) {
	reg &= 0x7
	if reg == 6 {
		c.writeByte(c.HL.Uint16(), value)
		return
	}
	*c.registerPointers[reg] = value
}

// getPair returns BC, DE, HL or SP, selected by the low 2 bits of p.
func (c *CPU) getPair(p uint8) uint16 {
	switch p & 0x3 {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

func (c *CPU) setPair(p uint8, value uint16) {
	switch p & 0x3 {
	case 0:
		c.BC.SetUint16(value)
	case 1:
		c.DE.SetUint16(value)
	case 2:
		c.HL.SetUint16(value)
	default:
		c.SP = value
	}
}

// getStackPair returns BC, DE, HL or AF, as used by PUSH and POP.
func (c *CPU) getStackPair(p uint8) uint16 {
	if p&0x3 == 3 {
		return c.AF.Uint16()
	}
	return c.getPair(p)
}

func (c *CPU) setStackPair(p uint8, value uint16) {
	if p&0x3 == 3 {
		c.AF.SetUint16(value) // the lower nibble of F is masked
		return
	}
	c.setPair(p, value)
}

// getIndirect returns the address used by LD (rr), A and
// LD A, (rr): BC, DE, HL+ or HL-.
func (c *CPU) getIndirect(p uint8) uint16 {
	switch p & 0x3 {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		hl := c.HL.Uint16()
		c.HL.SetUint16(hl + 1)
		return hl
	default:
		hl := c.HL.Uint16()
		c.HL.SetUint16(hl - 1)
		return hl
	}
}

// halt parks the CPU until an interrupt is pending. If IME is clear
// and an interrupt is already pending the CPU doesn't halt at all,
// instead failing to increment the PC on the next fetch.
func (c *CPU) halt() {
	if !c.irq.IME && c.irq.HasInterrupts() {
		c.haltBug = true
		return
	}
	c.halted = true
}

// stop is a 2 byte instruction, the second byte is ignored. The
// system clock is reset. On the colour models an armed speed switch
// (types.KEY1 bit 0) toggles double speed mode instead of parking
// the CPU.
func (c *CPU) stop() {
	c.PC++
	if c.clock != nil {
		c.clock.ResetDIV()
	}

	if c.model.IsCGB() && c.key1&types.Bit0 != 0 {
		c.doubleSpeed = !c.doubleSpeed
		c.key1 = 0
		return
	}
	c.stopped = true
}
