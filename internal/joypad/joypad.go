// Package joypad provides an implementation of the DMG and CGB
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/bits"
)

// Button represents a physical button.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

// ButtonNames maps the names accepted by the monitor to buttons.
var ButtonNames = map[string]Button{
	"a":      ButtonA,
	"b":      ButtonB,
	"select": ButtonSelect,
	"start":  ButtonStart,
	"right":  ButtonRight,
	"left":   ButtonLeft,
	"up":     ButtonUp,
	"down":   ButtonDown,
}

// State represents the state of the joypad. Select either
// action or direction buttons by writing to the register,
// and then read out bits 0-3 to get the state of the buttons.
//
//	Bit 7 - Not used
//	Bit 6 - Not used
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
type State struct {
	// State holds a set bit for every button held, the lower 4 bits
	// are the action buttons and the upper 4 bits the directions.
	State    uint8
	selected uint8 // bits 4-5 as last written

	irq *interrupts.Service
}

// New returns a new joypad state, decoding P1 on regs.
func New(irq *interrupts.Service, regs *types.HardwareRegisters) *State {
	s := &State{
		irq:      irq,
		selected: 0x30,
	}
	regs.RegisterHardware(
		types.P1,
		func(v uint8) {
			s.update(func() {
				s.selected = v & 0x30
			})
		},
		s.Read,
	)
	return s
}

// Read returns the value of P1.
func (s *State) Read() uint8 {
	return 0xC0 | s.selected | s.lines()
}

// lines returns the input lines P10-P13, low for a pressed button in
// a selected group.
func (s *State) lines() uint8 {
	var pressed uint8
	if !bits.Test(s.selected, 4) {
		pressed |= s.State >> 4
	}
	if !bits.Test(s.selected, 5) {
		pressed |= s.State & 0x0F
	}
	return ^pressed & 0x0F
}

// update applies change, requesting the joypad interrupt if any input
// line falls.
func (s *State) update(change func()) {
	before := s.lines()
	change()
	if before&^s.lines() != 0 {
		s.irq.Request(interrupts.JoypadFlag)
	}
}

// Press presses a button.
func (s *State) Press(button Button) {
	s.update(func() {
		s.State = bits.Set(s.State, button)
	})
}

// Release releases a button.
func (s *State) Release(button Button) {
	s.State = bits.Reset(s.State, button)
}

var _ types.Stater = (*State)(nil)

func (s *State) Save(st *types.State) {
	st.Write8(s.State)
	st.Write8(s.selected)
}
