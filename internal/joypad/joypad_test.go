package joypad

import (
	"testing"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
)

func newTestJoypad() (*State, *interrupts.Service, *types.HardwareRegisters) {
	regs := types.NewHardwareRegisters()
	irq := interrupts.NewService(regs)
	return New(irq, regs), irq, regs
}

func TestJoypad_Matrix(t *testing.T) {
	s, _, regs := newTestJoypad()
	s.Press(ButtonA)
	s.Press(ButtonDown)

	for _, tt := range []struct {
		name string
		sel  uint8
		want uint8
	}{
		{"none", 0x30, 0xFF},
		{"actions", 0x10, 0xDE},
		{"directions", 0x20, 0xE7},
		{"both", 0x00, 0xC6},
	} {
		t.Run(tt.name, func(t *testing.T) {
			regs.Write(types.P1, tt.sel)
			if got, _ := regs.Read(types.P1); got != tt.want {
				t.Errorf("expected 0x%02X, got 0x%02X", tt.want, got)
			}
		})
	}

	s.Release(ButtonA)
	regs.Write(types.P1, 0x10)
	if got, _ := regs.Read(types.P1); got != 0xDF {
		t.Errorf("expected A released, got 0x%02X", got)
	}
}

func TestJoypad_Interrupt(t *testing.T) {
	s, irq, regs := newTestJoypad()
	irq.Flag = 0

	regs.Write(types.P1, 0x30)
	s.Press(ButtonStart)
	if irq.Flag&interrupts.JoypadFlag != 0 {
		t.Errorf("expected no interrupt with neither group selected")
	}

	regs.Write(types.P1, 0x10)
	if irq.Flag&interrupts.JoypadFlag == 0 {
		t.Errorf("expected selecting a held button to lower a line")
	}

	irq.Flag = 0
	s.Press(ButtonB)
	if irq.Flag&interrupts.JoypadFlag == 0 {
		t.Errorf("expected pressing B to interrupt")
	}

	irq.Flag = 0
	s.Press(ButtonB)
	if irq.Flag&interrupts.JoypadFlag != 0 {
		t.Errorf("expected no interrupt for a button already held")
	}
}
