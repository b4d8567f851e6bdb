package cpu

import (
	"testing"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

// testBus is a flat 64KiB bus, with the hardware registers decoded
// on top of it.
type testBus struct {
	mem  [0x10000]uint8
	regs *types.HardwareRegisters
}

func (b *testBus) Read(address uint16) uint8 {
	if v, ok := b.regs.Read(address); ok {
		return v
	}
	return b.mem[address]
}

func (b *testBus) Write(address uint16, value uint8) {
	if b.regs.Write(address, value) {
		return
	}
	b.mem[address] = value
}

func (b *testBus) load(address uint16, program ...uint8) {
	for i, v := range program {
		b.mem[address+uint16(i)] = v
	}
}

type testClock struct {
	resets int
}

func (t *testClock) ResetDIV() { t.resets++ }

func newTestCPU(model types.Model) (*CPU, *testBus, *interrupts.Service) {
	regs := types.NewHardwareRegisters()
	b := &testBus{regs: regs}
	irq := interrupts.NewService(regs)
	c := NewCPU(b, irq, &testClock{}, regs, model)
	return c, b, irq
}

func TestCPU_Reset(t *testing.T) {
	c, _, _ := newTestCPU(types.DMGABC)
	if c.PC != 0x0100 || c.SP != 0xFFFE {
		t.Errorf("expected PC=0x0100 SP=0xFFFE, got PC=0x%04X SP=0x%04X", c.PC, c.SP)
	}
	if c.AF.Uint16() != 0x01B0 || c.BC.Uint16() != 0x0013 || c.DE.Uint16() != 0x00D8 || c.HL.Uint16() != 0x014D {
		t.Errorf("unexpected DMG boot registers: %s", c)
	}

	c, _, _ = newTestCPU(types.CGBABC)
	if c.A != 0x11 {
		t.Errorf("expected A=0x11 on CGB, got 0x%02X", c.A)
	}
}

func TestRegisterPair(t *testing.T) {
	c, _, _ := newTestCPU(types.DMGABC)
	c.BC.SetUint16(0x1234)
	if c.B != 0x12 || c.C != 0x34 {
		t.Errorf("expected B=0x12 C=0x34, got B=0x%02X C=0x%02X", c.B, c.C)
	}
	c.H, c.L = 0xAB, 0xCD
	if c.HL.Uint16() != 0xABCD {
		t.Errorf("expected HL=0xABCD, got 0x%04X", c.HL.Uint16())
	}
	c.AF.SetUint16(0xFFFF)
	if c.F != 0xF0 {
		t.Errorf("expected the lower nibble of F to be masked, got 0x%02X", c.F)
	}
}

func TestFlag(t *testing.T) {
	c, _, _ := newTestCPU(types.DMGABC)
	for _, f := range []Flag{FlagZero, FlagSubtract, FlagHalfCarry, FlagCarry} {
		c.clearFlag(f)
		if c.IsFlagSet(f) {
			t.Errorf("expected flag %08b to be unset", f)
		}
		c.setFlag(f)
		if !c.IsFlagSet(f) {
			t.Errorf("expected flag %08b to be set", f)
		}
	}
	c.setFlags(true, false, true, false)
	if c.F != FlagZero|FlagHalfCarry {
		t.Errorf("expected F=0xA0, got 0x%02X", c.F)
	}
}

func TestScenario_NOP(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x00)
	before := [5]uint16{c.AF.Uint16(), c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.SP}
	cycles := c.Step()
	if cycles != 4 {
		t.Errorf("expected 4 cycles, got %d", cycles)
	}
	if c.PC != 0x0101 {
		t.Errorf("expected PC=0x0101, got 0x%04X", c.PC)
	}
	if after := [5]uint16{c.AF.Uint16(), c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.SP}; after != before {
		t.Errorf("NOP changed the registers: %s", c)
	}
}

func TestScenario_LoadBC(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x01, 0x34, 0x12)
	cycles := c.Step()
	if c.BC.Uint16() != 0x1234 {
		t.Errorf("expected BC=0x1234, got 0x%04X", c.BC.Uint16())
	}
	if c.PC != 0x0103 {
		t.Errorf("expected PC=0x0103, got 0x%04X", c.PC)
	}
	if cycles != 12 {
		t.Errorf("expected 12 cycles, got %d", cycles)
	}
}

func TestScenario_IncA(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x3C)
	c.A = 0x0F
	c.F = 0
	c.Step()
	if c.A != 0x10 {
		t.Errorf("expected A=0x10, got 0x%02X", c.A)
	}
	if !c.IsFlagSet(FlagHalfCarry) || c.IsFlagSet(FlagZero) || c.IsFlagSet(FlagSubtract) {
		t.Errorf("expected only H set, got F=0x%02X", c.F)
	}
}

func TestScenario_HaltedInterrupt(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x76) // HALT
	irq.IME = true
	c.Step()
	if !c.Halted() {
		t.Fatalf("expected CPU to be halted")
	}

	// nothing pending, the CPU idles
	if _, ok := c.ServiceInterrupt(); ok {
		t.Fatalf("unexpected interrupt")
	}
	if cycles := c.Step(); cycles != 4 || c.PC != 0x0101 {
		t.Fatalf("expected halted CPU to idle, got %d cycles PC=0x%04X", cycles, c.PC)
	}

	b.Write(types.IF, 0x01)
	b.Write(types.IE, 0x01)
	cycles, ok := c.ServiceInterrupt()
	if !ok {
		t.Fatalf("expected the interrupt to be serviced")
	}
	if cycles != 20 {
		t.Errorf("expected 20 cycles, got %d", cycles)
	}
	if c.PC != 0x0040 {
		t.Errorf("expected PC=0x0040, got 0x%04X", c.PC)
	}
	if irq.Flag != 0 {
		t.Errorf("expected IF cleared, got 0x%02X", irq.Flag)
	}
	if irq.IME {
		t.Errorf("expected IME cleared")
	}
	if c.Halted() {
		t.Errorf("expected CPU to have left HALT")
	}
	// return address is the instruction after HALT
	if b.mem[0xFFFD] != 0x01 || b.mem[0xFFFC] != 0x01 {
		t.Errorf("expected 0x0101 on the stack, got 0x%02X%02X", b.mem[0xFFFD], b.mem[0xFFFC])
	}
}

func TestHalt_WithoutIME(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x76, 0x3C) // HALT, INC A
	c.A = 0
	c.Step()
	if !c.Halted() {
		t.Fatalf("expected CPU to be halted")
	}
	irq.Request(interrupts.TimerFlag)
	irq.Enable = interrupts.TimerFlag

	// wakes, but does not dispatch
	if _, ok := c.ServiceInterrupt(); ok {
		t.Fatalf("interrupt must not be dispatched with IME clear")
	}
	c.Step()
	if c.Halted() || c.PC != 0x0102 || c.A != 1 {
		t.Errorf("expected execution to resume after HALT, PC=0x%04X A=0x%02X", c.PC, c.A)
	}
	if irq.Flag&interrupts.TimerFlag == 0 {
		t.Errorf("IF must be left untouched")
	}
}

func TestHalt_Bug(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x76, 0x3C, 0x00) // HALT, INC A, NOP
	c.A = 0
	irq.Request(interrupts.VBlankFlag)
	irq.Enable = interrupts.VBlankFlag

	c.Step() // HALT with IME clear and an interrupt pending
	if c.Halted() {
		t.Fatalf("CPU must not halt")
	}
	c.Step()
	c.Step()
	if c.A != 2 {
		t.Errorf("expected INC A to execute twice, A=0x%02X", c.A)
	}
	if c.PC != 0x0102 {
		t.Errorf("expected PC=0x0102, got 0x%04X", c.PC)
	}
}

func TestEI_Latency(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0xFB, 0x00, 0x00) // EI, NOP, NOP
	irq.Request(interrupts.VBlankFlag)
	irq.Enable = interrupts.VBlankFlag

	c.Step() // EI
	if irq.IME {
		t.Fatalf("IME must not be set by EI")
	}
	if _, ok := c.ServiceInterrupt(); ok {
		t.Fatalf("no interrupt may be serviced before the instruction after EI")
	}
	c.Step() // NOP, IME still clear while it runs
	if !irq.IME {
		t.Fatalf("IME must be set once the instruction after EI completes")
	}
	if _, ok := c.ServiceInterrupt(); !ok {
		t.Fatalf("expected interrupt to be serviced")
	}
	if c.PC != 0x0040 {
		t.Errorf("expected PC=0x0040, got 0x%04X", c.PC)
	}
	// the return address is the second NOP
	if b.mem[0xFFFC] != 0x02 {
		t.Errorf("expected return address 0x0102, got 0x%02X%02X", b.mem[0xFFFD], b.mem[0xFFFC])
	}
}

func TestEI_DI(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0xFB, 0xF3, 0x00) // EI, DI, NOP
	c.Step()
	c.Step()
	c.Step()
	if irq.IME {
		t.Errorf("DI after EI must leave IME clear")
	}
}

func TestRETI(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0100, 0xD9) // RETI
	c.SP = 0xDFFE
	b.load(0xDFFE, 0x00, 0x20)
	c.Step()
	if !irq.IME {
		t.Errorf("RETI must set IME immediately")
	}
	if c.PC != 0x2000 {
		t.Errorf("expected PC=0x2000, got 0x%04X", c.PC)
	}
}

func TestInterruptPriority(t *testing.T) {
	c, b, irq := newTestCPU(types.DMGABC)
	b.load(0x0040, 0x00)
	irq.IME = true
	b.Write(types.IF, 0x03)
	b.Write(types.IE, 0x03)

	if _, ok := c.ServiceInterrupt(); !ok || c.PC != 0x0040 {
		t.Fatalf("expected VBlank first, PC=0x%04X", c.PC)
	}
	if irq.Flag != 0x02 {
		t.Errorf("expected only the VBlank bit to be cleared, IF=0x%02X", irq.Flag)
	}

	irq.IME = true
	if _, ok := c.ServiceInterrupt(); !ok || c.PC != 0x0048 {
		t.Fatalf("expected LCD second, PC=0x%04X", c.PC)
	}
	if irq.Flag != 0 {
		t.Errorf("expected IF cleared, got 0x%02X", irq.Flag)
	}
}

func TestPushPop(t *testing.T) {
	for _, pair := range []struct {
		name      string
		push, pop uint8
	}{
		{"BC", 0xC5, 0xC1},
		{"DE", 0xD5, 0xD1},
		{"HL", 0xE5, 0xE1},
		{"AF", 0xF5, 0xF1},
	} {
		t.Run(pair.name, func(t *testing.T) {
			c, b, _ := newTestCPU(types.DMGABC)
			c.PC = 0xC000
			c.SP = 0xDFF0
			b.load(0xC000, pair.push, pair.pop)
			c.BC.SetUint16(0x1234)
			c.DE.SetUint16(0x5678)
			c.HL.SetUint16(0x9ABC)
			c.AF.SetUint16(0xDEF0)
			before := [4]uint16{c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.AF.Uint16()}

			if cycles := c.Step(); cycles != 16 {
				t.Errorf("PUSH: expected 16 cycles, got %d", cycles)
			}
			if c.SP != 0xDFEE {
				t.Errorf("PUSH: expected SP=0xDFEE, got 0x%04X", c.SP)
			}
			if cycles := c.Step(); cycles != 12 {
				t.Errorf("POP: expected 12 cycles, got %d", cycles)
			}
			after := [4]uint16{c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.AF.Uint16()}
			if before != after {
				t.Errorf("expected %04X, got %04X", before, after)
			}
			if c.SP != 0xDFF0 {
				t.Errorf("expected SP=0xDFF0, got 0x%04X", c.SP)
			}
		})
	}
}

func TestPopAF_MasksFlags(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	c.PC = 0xC000
	c.SP = 0xDFF0
	b.load(0xC000, 0xF1)
	b.load(0xDFF0, 0xFF, 0x12)
	c.Step()
	if c.A != 0x12 || c.F != 0xF0 {
		t.Errorf("expected A=0x12 F=0xF0, got A=0x%02X F=0x%02X", c.A, c.F)
	}
}

func TestInvalidOpcodes(t *testing.T) {
	for _, opcode := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		c, b, _ := newTestCPU(types.DMGABC)
		c.PC = 0xC000
		b.load(0xC000, opcode)
		func() {
			defer func() {
				f, ok := recover().(*types.Fault)
				if !ok {
					t.Errorf("0x%02X: expected a fault", opcode)
					return
				}
				if f.Opcode != opcode || f.PC != 0xC000 {
					t.Errorf("0x%02X: unexpected fault %v", opcode, f)
				}
			}()
			c.Step()
		}()
	}
}

func TestStop(t *testing.T) {
	t.Run("DMG", func(t *testing.T) {
		c, b, irq := newTestCPU(types.DMGABC)
		clock := c.clock.(*testClock)
		b.load(0x0100, 0x10, 0x00, 0x00)
		c.Step()
		if !c.Stopped() || c.PC != 0x0102 {
			t.Fatalf("expected CPU stopped at 0x0102, PC=0x%04X", c.PC)
		}
		if clock.resets != 1 {
			t.Errorf("expected DIV reset")
		}
		irq.Request(interrupts.TimerFlag)
		irq.Enable = 0x1F
		if _, ok := c.ServiceInterrupt(); ok || !c.Stopped() {
			t.Errorf("only the joypad should leave STOP")
		}
		irq.Request(interrupts.JoypadFlag)
		c.ServiceInterrupt()
		if c.Stopped() {
			t.Errorf("expected joypad to leave STOP")
		}
	})
	t.Run("CGB speed switch", func(t *testing.T) {
		c, b, _ := newTestCPU(types.CGBABC)
		b.load(0x0100, 0x10, 0x00)
		b.Write(types.KEY1, 0x01)
		if b.Read(types.KEY1) != 0x7F {
			t.Errorf("expected KEY1=0x7F, got 0x%02X", b.Read(types.KEY1))
		}
		c.Step()
		if c.Stopped() {
			t.Errorf("speed switch must not park the CPU")
		}
		if !c.DoubleSpeed() {
			t.Errorf("expected double speed")
		}
		if b.Read(types.KEY1) != 0xFE {
			t.Errorf("expected KEY1=0xFE, got 0x%02X", b.Read(types.KEY1))
		}
	})
}

func TestLoadForms(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	c.PC = 0xC000

	// LD (HL+), A ; LD A, (HL-) ; LDH (a8), A ; LD (C), A ; LD (a16), SP
	b.load(0xC000, 0x22, 0x3A, 0xE0, 0x80, 0xE2, 0x08, 0x00, 0xD0)
	c.A = 0x42
	c.HL.SetUint16(0xD000)
	c.Step()
	if b.mem[0xD000] != 0x42 || c.HL.Uint16() != 0xD001 {
		t.Errorf("LD (HL+), A: mem=0x%02X HL=0x%04X", b.mem[0xD000], c.HL.Uint16())
	}
	b.mem[0xD001] = 0x99
	c.Step()
	if c.A != 0x99 || c.HL.Uint16() != 0xD000 {
		t.Errorf("LD A, (HL-): A=0x%02X HL=0x%04X", c.A, c.HL.Uint16())
	}
	c.Step()
	if b.mem[0xFF80] != 0x99 {
		t.Errorf("LDH (a8), A: got 0x%02X", b.mem[0xFF80])
	}
	c.C = 0x81
	c.Step()
	if b.mem[0xFF81] != 0x99 {
		t.Errorf("LD (C), A: got 0x%02X", b.mem[0xFF81])
	}
	c.SP = 0xBEEF
	c.Step()
	if b.mem[0xD000] != 0xEF || b.mem[0xD001] != 0xBE {
		t.Errorf("LD (a16), SP: got 0x%02X%02X", b.mem[0xD001], b.mem[0xD000])
	}
}

func TestAddSP(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	c.PC = 0xC000
	b.load(0xC000, 0xE8, 0xFF, 0xF8, 0x01)

	c.SP = 0x000F
	c.Step() // ADD SP, -1
	if c.SP != 0x000E {
		t.Errorf("expected SP=0x000E, got 0x%04X", c.SP)
	}
	if c.F != FlagHalfCarry|FlagCarry {
		t.Errorf("expected H and C set, got F=0x%02X", c.F)
	}

	c.Step() // LD HL, SP+1
	if c.HL.Uint16() != 0x000F || c.F != 0 {
		t.Errorf("expected HL=0x000F F=0, got HL=0x%04X F=0x%02X", c.HL.Uint16(), c.F)
	}
}

func TestDebugBreakpoint(t *testing.T) {
	c, b, _ := newTestCPU(types.DMGABC)
	b.load(0x0100, 0x40)
	c.Debug = true
	c.Step()
	if !c.DebugBreakpoint {
		t.Errorf("expected LD B, B to trigger a breakpoint")
	}
}
