package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// ClockSpeed is the clock speed of the CPU in normal speed mode.
	ClockSpeed = 4194304
)

// Bus is the memory bus the CPU fetches from and executes against.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Clock is the part of the system clock that the CPU drives
// directly. STOP resets it.
type Clock interface {
	ResetDIV()
}

// CPU represents the SM83 CPU. It is responsible for executing instructions.
//
// The CPU does not tick any other hardware itself. Every bus access and
// internal delay adds 4 clock cycles to the cost of the instruction in
// progress, which Step reports back to the scheduler.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	b     Bus
	irq   *interrupts.Service
	clock Clock
	model types.Model

	Debug           bool
	DebugBreakpoint bool

	halted      bool
	stopped     bool
	haltBug     bool
	doubleSpeed bool
	key1        uint8 // speed switch armed (bit 0)

	currentTick uint8 // clock cycles used by the instruction in progress

	lastPC     uint16
	lastOpcode uint8
	lastCB     bool
}

// NewCPU creates a new CPU, reading and writing through b. On the
// colour models the CPU decodes the speed switch register (types.KEY1)
// on regs.
func NewCPU(b Bus, irq *interrupts.Service, clock Clock, regs *types.HardwareRegisters, model types.Model) *CPU {
	c := &CPU{
		b:     b,
		irq:   irq,
		clock: clock,
		model: model,
	}
	c.initPairs()
	c.Reset()

	if model.IsCGB() {
		regs.RegisterHardware(
			types.KEY1,
			func(v uint8) {
				c.key1 = v & types.Bit0
			},
			func() uint8 {
				v := c.key1 | 0x7E
				if c.doubleSpeed {
					v |= types.Bit7
				}
				return v
			},
		)
	}

	return c
}

// Reset puts the registers into their post boot ROM state for the model.
func (c *CPU) Reset() {
	r := types.ModelRegisters[c.model]
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = r[0], r[1]&0xF0, r[2], r[3], r[4], r[5], r[6], r[7]
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.halted, c.stopped, c.haltBug, c.doubleSpeed = false, false, false, false
	c.key1 = 0
}

// Halted returns true if the CPU is parked by HALT.
func (c *CPU) Halted() bool {
	return c.halted
}

// Stopped returns true if the CPU is parked by STOP.
func (c *CPU) Stopped() bool {
	return c.stopped
}

// DoubleSpeed returns true if the CGB double speed mode is active.
func (c *CPU) DoubleSpeed() bool {
	return c.doubleSpeed
}

// LastInstruction returns the address and opcode of the last
// instruction fetched. cb is true if it was CB prefixed.
func (c *CPU) LastInstruction() (pc uint16, opcode uint8, cb bool) {
	return c.lastPC, c.lastOpcode, c.lastCB
}

// ServiceInterrupt gives the interrupt controller a chance to run
// before the next fetch. It returns the cycles consumed and true if
// an interrupt was dispatched.
//
// A pending interrupt wakes the CPU from HALT regardless of IME, but
// is only dispatched when IME is set. STOP is only left by a joypad
// request.
func (c *CPU) ServiceInterrupt() (uint8, bool) {
	if c.stopped {
		if c.irq.Flag&interrupts.JoypadFlag == 0 {
			return 0, false
		}
		c.stopped = false
	}
	if !c.irq.HasInterrupts() {
		return 0, false
	}
	c.halted = false

	line := c.irq.Begin()
	if line == interrupts.None {
		return 0, false
	}

	c.currentTick = 0
	c.tick4() // two wait states
	c.tick4()

	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC&0xFF))

	c.PC = c.irq.Acknowledge(line)
	c.tick4()

	return c.currentTick, true
}

// Step fetches, decodes and executes a single instruction, returning
// the number of clock cycles it took. While parked by HALT or STOP the
// CPU idles for 4 clock cycles.
func (c *CPU) Step() uint8 {
	c.currentTick = 0

	if c.halted || c.stopped {
		if c.stopped && c.irq.Flag&interrupts.JoypadFlag != 0 {
			c.stopped = false
		} else if c.halted && c.irq.HasInterrupts() {
			c.halted = false
		} else {
			return 4
		}
	}

	enablePending := c.irq.EnablePending()

	c.lastPC = c.PC
	c.lastCB = false
	opcode := c.readInstruction()
	c.lastOpcode = opcode
	c.decode(opcode)

	c.irq.Commit(enablePending)

	return c.currentTick
}

// readInstruction reads the next opcode from memory. Straight after
// the HALT bug has been triggered the PC fails to increment, so the
// byte is read twice.
func (c *CPU) readInstruction() uint8 {
	c.tick4()
	value := c.b.Read(c.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.PC++
	}
	return value
}

// readOperand reads the next operand from memory.
func (c *CPU) readOperand() uint8 {
	c.tick4()
	value := c.b.Read(c.PC)
	c.PC++
	return value
}

// readOperand16 reads a little-endian 16-bit operand.
func (c *CPU) readOperand16() uint16 {
	low := c.readOperand()
	return uint16(c.readOperand())<<8 | uint16(low)
}

// readByte reads a byte from memory.
func (c *CPU) readByte(addr uint16) uint8 {
	c.tick4()
	return c.b.Read(addr)
}

// writeByte writes the given value to the given address.
func (c *CPU) writeByte(addr uint16, val uint8) {
	c.tick4()
	c.b.Write(addr, val)
}

// tick4 accounts for one machine cycle.
func (c *CPU) tick4() {
	c.currentTick += 4
}

// push pushes high then low onto the stack.
func (c *CPU) push(high, low uint8) {
	c.SP--
	c.writeByte(c.SP, high)
	c.SP--
	c.writeByte(c.SP, low)
}

// pop pops a 16-bit value off the stack.
func (c *CPU) pop() (high, low uint8) {
	low = c.readByte(c.SP)
	c.SP++
	high = c.readByte(c.SP)
	c.SP++
	return high, low
}

// invalidOpcode raises a fault for one of the unassigned opcodes.
func (c *CPU) invalidOpcode(opcode uint8) {
	panic(&types.Fault{
		Reason:  fmt.Sprintf("invalid opcode 0x%02X", opcode),
		Address: c.PC - 1,
		PC:      c.PC - 1,
		Opcode:  opcode,
	})
}

var _ types.Stater = (*CPU)(nil)

// Save implements the types.Stater interface.
func (c *CPU) Save(s *types.State) {
	s.Write8(c.A)
	s.Write8(c.F)
	s.Write8(c.B)
	s.Write8(c.C)
	s.Write8(c.D)
	s.Write8(c.E)
	s.Write8(c.H)
	s.Write8(c.L)
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.halted)
	s.WriteBool(c.stopped)
	s.WriteBool(c.haltBug)
	s.WriteBool(c.doubleSpeed)
	s.Write8(c.key1)
	c.irq.Save(s)
}

// String returns the register state in the format used by the monitor.
func (c *CPU) String() string {
	return fmt.Sprintf("A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X IME:%v",
		c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC, c.irq.IME)
}
