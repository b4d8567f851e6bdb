package apu

import (
	"fmt"
	"testing"

	"github.com/thelolagemann/gbcore/internal/types"
)

func newTestAPU(model types.Model) (*APU, *types.HardwareRegisters) {
	regs := types.NewHardwareRegisters()
	a := NewAPU(regs, model)
	regs.Write(types.NR52, 0x80)
	return a, regs
}

func read(t *testing.T, regs *types.HardwareRegisters, addr types.HardwareAddress) uint8 {
	t.Helper()
	v, ok := regs.Read(addr)
	if !ok {
		t.Fatalf("0x%04X is not decoded", addr)
	}
	return v
}

// lengthClock advances the APU to just after the next frame sequencer
// step that clocks the length counters.
func lengthClock(a *APU) {
	for {
		step := a.frameSequencerStep
		for i := uint(0); i < frameSequencerPeriod && a.frameSequencerStep == step; i++ {
			a.Tick()
		}
		if step&1 == 0 {
			return
		}
	}
}

func TestAPU_ReadMasks(t *testing.T) {
	_, regs := newTestAPU(types.CGBABC)
	for i, mask := range readMasks {
		addr := types.NR10 + types.HardwareAddress(i)
		if addr == 0xFF15 || addr == 0xFF1F || addr == types.NR52 {
			continue
		}
		t.Run(fmt.Sprintf("0x%04X", addr), func(t *testing.T) {
			regs.Write(addr, 0x00)
			if v := read(t, regs, addr); v != mask {
				t.Errorf("expected 0x%02X, got 0x%02X", mask, v)
			}
		})
	}
	if v := read(t, regs, types.NR52); v != 0xF0 {
		t.Errorf("NR52: expected 0xF0, got 0x%02X", v)
	}
}

func TestAPU_Power(t *testing.T) {
	t.Run("off clears registers", func(t *testing.T) {
		_, regs := newTestAPU(types.CGBABC)
		regs.Write(types.NR50, 0x77)
		regs.Write(types.NR12, 0xF0)
		regs.Write(types.NR52, 0x00)
		if v := read(t, regs, types.NR50); v != 0x00 {
			t.Errorf("NR50: expected 0x00, got 0x%02X", v)
		}
		if v := read(t, regs, types.NR52); v != 0x70 {
			t.Errorf("NR52: expected 0x70, got 0x%02X", v)
		}
	})
	t.Run("writes ignored while off", func(t *testing.T) {
		_, regs := newTestAPU(types.CGBABC)
		regs.Write(types.NR52, 0x00)
		regs.Write(types.NR50, 0x77)
		regs.Write(types.NR11, 0x3F)
		if v := read(t, regs, types.NR50); v != 0x00 {
			t.Errorf("NR50: expected 0x00, got 0x%02X", v)
		}
		if v := read(t, regs, types.NR11); v != 0x3F {
			t.Errorf("NR11: expected 0x3F, got 0x%02X", v)
		}
	})
	t.Run("DMG length writable while off", func(t *testing.T) {
		a, regs := newTestAPU(types.DMGABC)
		regs.Write(types.NR52, 0x00)
		regs.Write(types.NR41, 0x3E)
		if a.chan4.lengthCounter != 2 {
			t.Errorf("expected length 2, got %d", a.chan4.lengthCounter)
		}
	})
	t.Run("wave RAM kept", func(t *testing.T) {
		_, regs := newTestAPU(types.DMGABC)
		regs.Write(types.WaveRAM+3, 0xA5)
		regs.Write(types.NR52, 0x00)
		if v := read(t, regs, types.WaveRAM+3); v != 0xA5 {
			t.Errorf("expected 0xA5, got 0x%02X", v)
		}
	})
}

func TestAPU_Trigger(t *testing.T) {
	for _, tt := range []struct {
		name      string
		dac, nrx4 types.HardwareAddress
		dacOn     uint8
		status    uint8
	}{
		{"channel 1", types.NR12, types.NR14, 0xF0, 0x01},
		{"channel 2", types.NR22, types.NR24, 0x08, 0x02},
		{"channel 3", types.NR30, types.NR34, 0x80, 0x04},
		{"channel 4", types.NR42, types.NR44, 0x10, 0x08},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, regs := newTestAPU(types.DMGABC)

			regs.Write(tt.nrx4, 0x80)
			if v := read(t, regs, types.NR52); v&0x0F != 0 {
				t.Fatalf("triggered with DAC off: NR52=0x%02X", v)
			}

			regs.Write(tt.dac, tt.dacOn)
			regs.Write(tt.nrx4, 0x80)
			if v := read(t, regs, types.NR52); v&0x0F != tt.status {
				t.Fatalf("expected status 0x%02X, got 0x%02X", tt.status, v&0x0F)
			}

			// disabling the DAC disables the channel
			regs.Write(tt.dac, 0x00)
			if v := read(t, regs, types.NR52); v&0x0F != 0 {
				t.Errorf("expected channel off, got NR52=0x%02X", v)
			}
		})
	}
}

func TestAPU_Length(t *testing.T) {
	t.Run("expires", func(t *testing.T) {
		a, regs := newTestAPU(types.DMGABC)
		regs.Write(types.NR12, 0xF0)
		regs.Write(types.NR11, 0x3C) // length 4
		regs.Write(types.NR14, 0xC0)

		for i := 0; i < 3; i++ {
			lengthClock(a)
			if v := read(t, regs, types.NR52); v&0x01 == 0 {
				t.Fatalf("channel disabled after %d clocks", i+1)
			}
		}
		lengthClock(a)
		if v := read(t, regs, types.NR52); v&0x01 != 0 {
			t.Errorf("expected channel disabled after 4 clocks")
		}
	})
	t.Run("not enabled", func(t *testing.T) {
		a, regs := newTestAPU(types.DMGABC)
		regs.Write(types.NR12, 0xF0)
		regs.Write(types.NR11, 0x3F)
		regs.Write(types.NR14, 0x80)
		for i := 0; i < 4; i++ {
			lengthClock(a)
		}
		if v := read(t, regs, types.NR52); v&0x01 == 0 {
			t.Errorf("expected channel still enabled")
		}
	})
	t.Run("trigger reloads", func(t *testing.T) {
		a, regs := newTestAPU(types.DMGABC)
		regs.Write(types.NR30, 0x80)
		regs.Write(types.NR34, 0x80)
		if a.chan3.lengthCounter != 256 {
			t.Errorf("expected 256, got %d", a.chan3.lengthCounter)
		}
	})
	t.Run("extra clock", func(t *testing.T) {
		a, regs := newTestAPU(types.DMGABC)
		regs.Write(types.NR12, 0xF0)
		regs.Write(types.NR11, 0x3C)
		lengthClock(a) // next step does not clock length

		regs.Write(types.NR14, 0x40)
		if a.chan1.lengthCounter != 3 {
			t.Errorf("expected 3, got %d", a.chan1.lengthCounter)
		}
	})
}

func TestAPU_Tick_Off(t *testing.T) {
	a, regs := newTestAPU(types.DMGABC)
	regs.Write(types.NR52, 0x00)
	for i := 0; i < frameSequencerPeriod*2; i++ {
		a.Tick()
	}
	if a.frameSequencerStep != 0 {
		t.Errorf("frame sequencer advanced while powered off")
	}
}
