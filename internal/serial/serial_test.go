package serial

import (
	"bytes"
	"testing"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

type testClock struct {
	div uint16
}

func (c *testClock) DIV() uint16 { return c.div }

type link struct {
	clock *testClock
	c     *Controller
	irq   *interrupts.Service
	regs  *types.HardwareRegisters
}

func newLink(model types.Model) *link {
	regs := types.NewHardwareRegisters()
	irq := interrupts.NewService(regs)
	clock := &testClock{}
	return &link{
		clock: clock,
		c:     NewController(irq, clock, regs, model),
		irq:   irq,
		regs:  regs,
	}
}

func (l *link) run(cycles int) {
	for i := 0; i < cycles; i++ {
		l.clock.div++
		l.c.Tick()
	}
}

func (l *link) read(address types.HardwareAddress) uint8 {
	v, _ := l.regs.Read(address)
	return v
}

func TestSerial_InternalClock(t *testing.T) {
	l := newLink(types.DMGABC)
	buf := &bytes.Buffer{}
	d := NewDebugger(buf, log.NewNullLogger())
	l.c.Attach(d)

	l.irq.Flag = 0
	l.regs.Write(types.SB, 'A')
	l.regs.Write(types.SC, 0x81)
	if l.read(types.SC) != 0xFF {
		t.Errorf("expected SC=0xFF during the transfer, got 0x%02X", l.read(types.SC))
	}

	l.run(8*512 - 1)
	if l.irq.Flag&interrupts.SerialFlag != 0 {
		t.Fatalf("transfer finished early")
	}
	l.run(1)
	if l.irq.Flag&interrupts.SerialFlag == 0 {
		t.Fatalf("expected the serial interrupt after 8 bits")
	}
	if l.read(types.SC) != 0x7F {
		t.Errorf("expected the transfer bit cleared, got 0x%02X", l.read(types.SC))
	}
	if l.read(types.SB) != 0xFF {
		t.Errorf("expected 0xFF from the debugger, got 0x%02X", l.read(types.SB))
	}
	if buf.String() != "A" || string(d.Output()) != "A" {
		t.Errorf("expected the debugger to print A, got %q", buf.String())
	}
}

func TestSerial_ExternalClock(t *testing.T) {
	l := newLink(types.DMGABC)
	l.regs.Write(types.SC, 0x80)
	l.run(0x10000)
	if l.read(types.SC)&types.Bit7 == 0 {
		t.Errorf("expected the transfer to wait for an external clock")
	}
}

func TestSerial_FastClock(t *testing.T) {
	l := newLink(types.CGBABC)
	l.irq.Flag = 0
	l.regs.Write(types.SC, 0x83)
	if l.read(types.SC) != 0xFF {
		t.Errorf("expected SC=0xFF, got 0x%02X", l.read(types.SC))
	}
	l.run(8 * 16)
	if l.irq.Flag&interrupts.SerialFlag == 0 {
		t.Errorf("expected the transfer to finish at 262144 Hz")
	}
}

func TestSerial_Link(t *testing.T) {
	master, slave := newLink(types.DMGABC), newLink(types.DMGABC)
	master.c.Attach(slave.c)
	slave.c.Attach(master.c)

	master.regs.Write(types.SB, 0x12)
	slave.regs.Write(types.SB, 0x34)
	slave.regs.Write(types.SC, 0x80)
	master.regs.Write(types.SC, 0x81)
	slave.irq.Flag = 0

	master.run(8 * 512)
	if master.read(types.SB) != 0x34 || slave.read(types.SB) != 0x12 {
		t.Errorf("expected the bytes swapped, got 0x%02X and 0x%02X", master.read(types.SB), slave.read(types.SB))
	}
	if slave.irq.Flag&interrupts.SerialFlag == 0 {
		t.Errorf("expected the slave to be interrupted")
	}
}
