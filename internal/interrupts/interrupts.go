package interrupts

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the display enters
	// VBlank mode (lcd.VBlank).
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2),
	// which is requested when types.TIMA overflows.
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3),
	// which is requested when a serial transfer is
	// completed.
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4),
	// which is requested when any of types.P1 bits 0-3
	// go from high to low while selected.
	JoypadFlag = types.Bit4
)

// ServiceCycles is the number of clock cycles taken to
// dispatch an interrupt: two wait states, two stack
// writes and the jump.
const ServiceCycles = 20

// Line identifies one of the five interrupt lines, in priority
// order. VBlank has the highest priority.
type Line uint8

const (
	VBlank Line = iota
	LCD
	Timer
	Serial
	Joypad
	None Line = 0xFF
)

var lineNames = [...]string{"VBlank", "LCD", "Timer", "Serial", "Joypad"}

func (l Line) String() string {
	if int(l) < len(lineNames) {
		return lineNames[l]
	}
	return "None"
}

// Flag returns the IF/IE bit for the line.
func (l Line) Flag() uint8 {
	return 1 << l
}

// Vector returns the fixed jump target of the line.
func (l Line) Vector() uint16 {
	return 0x0040 + uint16(l)*8
}

// State describes what the controller is doing.
type State uint8

const (
	// Idle - no line is both requested and enabled.
	Idle State = iota
	// Pending - a line is requested and enabled, but either IME
	// is clear or the scheduler has not yet got round to it.
	Pending
	// Servicing - a line has been selected and its dispatch is
	// in progress.
	Servicing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Pending:
		return "Pending"
	case Servicing:
		return "Servicing"
	}
	return "Unknown"
}

// Service is the interrupt service, used to request
// interrupts and to select the next line to dispatch.
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the IME is set, the CPU will jump to the interrupt
// vector, and the corresponding bit in the Flag register
// will be cleared.
//
// The IME is changed by the DI, EI and RETI instructions.
// DI and RETI act immediately, whereas EI only takes effect
// once the instruction following it has completed.
type Service struct {
	Flag   uint8 // interrupt Flag (types.IF)
	Enable uint8 // interrupt Enable (types.IE)

	IME bool // interrupt master enable

	enablePending bool // EI executed, IME not yet set
	servicing     bool
	next          Line // line selected by Begin
}

// NewService returns a new Service, decoding types.IF and
// types.IE on the provided hardware register table.
func NewService(regs *types.HardwareRegisters) *Service {
	s := &Service{next: None}
	regs.RegisterHardware(
		types.IF,
		func(v uint8) {
			s.Flag = v & 0x1F // only the first 5 bits are used
		}, func() uint8 {
			return s.Flag | 0xE0 // the upper 3 bits are always set
		},
	)
	regs.RegisterHardware(
		types.IE,
		func(v uint8) {
			s.Enable = v
		}, func() uint8 {
			return s.Enable
		},
	)

	return s
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled, regardless of IME.
func (s *Service) HasInterrupts() bool {
	return s.Enable&s.Flag&0x1F != 0
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(flag uint8) {
	s.Flag |= flag & 0x1F
}

// State returns the current controller state.
func (s *Service) State() State {
	if s.servicing {
		return Servicing
	}
	if s.HasInterrupts() {
		return Pending
	}
	return Idle
}

// Highest returns the highest priority line that is both
// requested and enabled, or None.
func (s *Service) Highest() Line {
	pending := s.Enable & s.Flag & 0x1F
	if pending == 0 {
		return None
	}
	for i := Line(0); i < 5; i++ {
		if pending&i.Flag() != 0 {
			return i
		}
	}
	return None
}

// Begin selects the line to be dispatched and caches it until
// Acknowledge is called. It returns None if IME is clear or
// nothing is pending.
func (s *Service) Begin() Line {
	if !s.IME {
		return None
	}
	l := s.Highest()
	if l == None {
		return None
	}
	s.next = l
	s.servicing = true
	return l
}

// Acknowledge completes the dispatch of line l: its Flag bit
// is cleared, IME is cleared and the line's vector is returned.
//
// The line must be the one cached by Begin. Anything else
// means the dispatch bookkeeping has been corrupted, which is
// raised as a types.Fault.
func (s *Service) Acknowledge(l Line) uint16 {
	if !s.servicing || s.next != l {
		panic(&types.Fault{
			Reason:  fmt.Sprintf("interrupt controller: acknowledged %s but %s was selected", l, s.next),
			Address: types.IF,
		})
	}
	s.Flag &^= l.Flag()
	s.IME = false
	s.enablePending = false
	s.servicing = false
	s.next = None
	return l.Vector()
}

// EnableDeferred is executed by EI. IME is set once the
// instruction after EI has completed (see Commit).
func (s *Service) EnableDeferred() {
	s.enablePending = true
}

// EnableNow is executed by RETI.
func (s *Service) EnableNow() {
	s.IME = true
	s.enablePending = false
}

// Disable is executed by DI, and cancels a pending EI.
func (s *Service) Disable() {
	s.IME = false
	s.enablePending = false
}

// EnablePending reports whether an EI is waiting to take effect.
func (s *Service) EnablePending() bool {
	return s.enablePending
}

// Commit is called after each instruction with the value
// EnablePending had before that instruction started. If an EI
// was already pending then, and nothing cancelled it, IME is set.
func (s *Service) Commit(wasPending bool) {
	if wasPending && s.enablePending {
		s.IME = true
		s.enablePending = false
	}
}

var _ types.Stater = (*Service)(nil)

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
//   - IME (bool)
//   - enablePending (bool)
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
	st.WriteBool(s.enablePending)
}
