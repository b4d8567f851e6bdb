// Package timer provides an implementation of the DMG and CGB timer.
// A 16-bit system counter advances every clock cycle, its upper byte is
// visible as DIV. TIMA is incremented on the falling edge of the counter
// bit selected by TAC, and raises the timer interrupt on overflow.
package timer

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

// bits are the system counter bits selected by TAC 0-3, giving
// frequencies of 4096, 262144, 65536 and 16384 Hz.
var bits = [4]uint16{512, 8, 32, 128}

// Controller is a timer controller.
type Controller struct {
	div uint16

	tima uint8
	tma  uint8
	tac  uint8

	Enabled    bool
	currentBit uint16

	// TIMA reads 0 for a machine cycle after overflowing, before it is
	// reloaded from TMA and the interrupt is requested
	overflowDelay uint8
	// the machine cycle in which TIMA is reloaded
	reloadWindow uint8

	irq *interrupts.Service
}

// NewController returns a new timer controller, with the system counter
// in its post boot state for model.
func NewController(irq *interrupts.Service, regs *types.HardwareRegisters, model types.Model) *Controller {
	c := &Controller{
		irq:        irq,
		div:        types.ModelDIV[model],
		currentBit: bits[0],
		tac:        0xF8,
	}

	regs.RegisterHardware(
		types.DIV,
		func(v uint8) {
			c.ResetDIV()
		},
		func() uint8 {
			return uint8(c.div >> 8)
		},
	)
	regs.RegisterHardware(
		types.TIMA,
		func(v uint8) {
			// writes are ignored in the cycle TIMA is reloaded
			if c.reloadWindow > 0 {
				return
			}
			c.tima = v
			c.overflowDelay = 0 // a pending reload is cancelled
		},
		func() uint8 {
			return c.tima
		},
	)
	regs.RegisterHardware(
		types.TMA,
		func(v uint8) {
			c.tma = v
			// TIMA follows TMA while it is being reloaded
			if c.reloadWindow > 0 {
				c.tima = v
			}
		},
		func() uint8 {
			return c.tma
		},
	)
	regs.RegisterHardware(
		types.TAC,
		func(v uint8) {
			c.update(func() {
				c.tac = v
				c.currentBit = bits[v&0b11]
				c.Enabled = v&types.Bit2 != 0
			})
		},
		func() uint8 {
			return c.tac | 0b1111_1000
		},
	)

	return c
}

// Tick advances the timer by a single clock cycle.
func (c *Controller) Tick() {
	if c.reloadWindow > 0 {
		c.reloadWindow--
	}
	if c.overflowDelay > 0 {
		c.overflowDelay--
		if c.overflowDelay == 0 {
			c.tima = c.tma
			c.irq.Request(interrupts.TimerFlag)
			c.reloadWindow = 4
		}
	}

	c.update(func() {
		c.div++
	})
}

// ResetDIV resets the system counter, as done by writing DIV or
// executing STOP. Resetting may produce a falling edge and increment
// TIMA.
func (c *Controller) ResetDIV() {
	c.update(func() {
		c.div = 0
	})
}

// DIV returns the system counter.
func (c *Controller) DIV() uint16 {
	return c.div
}

// signal is the input to the falling edge detector.
func (c *Controller) signal() bool {
	return c.Enabled && c.div&c.currentBit != 0
}

// update applies change, incrementing TIMA if it lowers the signal.
func (c *Controller) update(change func()) {
	was := c.signal()
	change()
	if was && !c.signal() {
		c.increment()
	}
}

func (c *Controller) increment() {
	c.tima++
	if c.tima == 0 {
		c.overflowDelay = 4
	}
}

var _ types.Stater = (*Controller)(nil)

// Save saves the state of the controller.
func (c *Controller) Save(s *types.State) {
	s.Write16(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
	s.WriteBool(c.Enabled)
	s.Write8(c.overflowDelay)
	s.Write8(c.reloadWindow)
}
