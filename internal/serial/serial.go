// Package serial provides the serial port of the DMG and CGB, through
// which a Device is attached with a link cable.
package serial

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// normalBit and fastBit are the system counter bits whose falling
	// edge shifts a bit with the internal clock, giving 8192 Hz and
	// 262144 Hz.
	normalBit = 0x0100
	fastBit   = 0x0008
)

// Clock is the system counter the internal clock is divided from.
type Clock interface {
	DIV() uint16
}

// Controller is the serial controller. It is responsible for sending and
// receiving data to and from devices.
// Before a transfer, data holds the next byte to be sent. AKA types.SB
// During a transfer, it has a mix of the incoming data and the outgoing data.
// each cycle, the leftmost bit of data is sent to the attached device, and
// shifted out of data, and the incoming bit is shifted into data.
//
// example:
//
//	Before : data = o7 o6 o5 o4 o3 o2 o1 o0
//	Cycle 1: data = o6 o5 o4 o3 o2 o1 o0 i0
//	Cycle 2: data = o5 o4 o3 o2 o1 o0 i0 i1
//	...
//	Cycle 8: data = i0 i1 i2 i3 i4 i5 i6 i7
//
// Where o0-o7 are the outgoing bits, and i0-i7 are the incoming bits.
type Controller struct {
	data            uint8 // types.SB
	count           uint8 // the number of bits that have been transferred.
	InternalClock   bool  // if true, this controller is the master.
	TransferRequest bool  // if true, a transfer has been requested.
	fast            bool  // CGB high speed clock

	lastBit bool

	AttachedDevice Device // the device that is attached to this controller.

	clock Clock
	irq   *interrupts.Service
	isGBC bool
}

// NewController creates a new Controller, decoding SB and SC on regs.
//
// By default, the Controller is attached to a nullDevice, which acts as if
// there is no device attached. This is the same as if the device is not
// plugged in. If you want to attach a device, use the Controller.Attach method.
func NewController(irq *interrupts.Service, clock Clock, regs *types.HardwareRegisters, model types.Model) *Controller {
	c := &Controller{
		AttachedDevice: nullDevice{},
		clock:          clock,
		irq:            irq,
		isGBC:          model.IsCGB(),
	}
	regs.RegisterHardware(
		types.SB,
		func(v uint8) {
			c.data = v
		},
		func() uint8 {
			return c.data
		},
	)
	regs.RegisterHardware(types.SC, c.writeControl, c.readControl)
	return c
}

// Attach attaches a Device to the Controller.
func (c *Controller) Attach(d Device) {
	c.AttachedDevice = d
}

func (c *Controller) writeControl(v uint8) {
	c.InternalClock = v&types.Bit0 != 0
	c.TransferRequest = v&types.Bit7 != 0
	if c.isGBC {
		c.fast = v&types.Bit1 != 0
	}
	if c.TransferRequest {
		c.count = 0
		c.lastBit = c.clockBit()
	}
}

func (c *Controller) readControl() uint8 {
	v := uint8(0x7E) // bits 1-6 are unused
	if c.isGBC {
		v = 0x7C
		if c.fast {
			v |= types.Bit1
		}
	}
	if c.InternalClock {
		v |= types.Bit0
	}
	if c.TransferRequest {
		v |= types.Bit7
	}
	return v
}

func (c *Controller) clockBit() bool {
	if c.fast {
		return c.clock.DIV()&fastBit != 0
	}
	return c.clock.DIV()&normalBit != 0
}

// Tick advances the controller by a single clock cycle. With the
// internal clock a bit is shifted on each falling edge of the divided
// system counter.
func (c *Controller) Tick() {
	if !c.TransferRequest || !c.InternalClock {
		return
	}
	bit := c.clockBit()
	if c.lastBit && !bit {
		c.shift()
	}
	c.lastBit = bit
}

// shift exchanges a single bit with the attached device.
func (c *Controller) shift() {
	in := c.AttachedDevice.Send()
	c.AttachedDevice.Receive(c.data&types.Bit7 != 0)

	c.data <<= 1
	if in {
		c.data |= 1
	}
	c.checkTransfer()
}

// checkTransfer checks if a transfer has been completed, and if so,
// triggers a serial interrupt, and clears the transfer request.
func (c *Controller) checkTransfer() {
	if c.count++; c.count == 8 {
		c.count = 0
		c.TransferRequest = false
		c.irq.Request(interrupts.SerialFlag)
	}
}

// Send returns the leftmost bit of the data register, unless
// the caller is the master, in which case it always returns true.
// This is because the master is driving the clock, and thus should
// not be trying to read from its own data register.
func (c *Controller) Send() bool {
	if c.InternalClock {
		return true
	}
	return c.data&types.Bit7 != 0
}

// Receive receives a bit from the attached device, and shifts it into
// the data register. If the caller is the master, or has not requested
// a transfer, it does nothing.
func (c *Controller) Receive(bit bool) {
	if c.InternalClock || !c.TransferRequest {
		return
	}
	c.data <<= 1
	if bit {
		c.data |= 1
	}
	c.checkTransfer()
}

var _ types.Stater = (*Controller)(nil)

// Save implements the types.Stater interface.
func (c *Controller) Save(s *types.State) {
	s.Write8(c.data)
	s.WriteBool(c.TransferRequest)
	s.Write8(c.count)
	s.WriteBool(c.InternalClock)
	s.WriteBool(c.fast)
	s.WriteBool(c.lastBit)
}
