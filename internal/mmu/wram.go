package mmu

import "github.com/thelolagemann/gbcore/internal/types"

// WRAM is the work RAM at 0xC000-0xDFFF. The DMG has 2 fixed banks of
// 4kB, the CGB has 8 where 0xD000-0xDFFF maps the bank selected by SVBK.
type WRAM struct {
	bank uint8
	raw  [8][0x1000]uint8
}

// NewWRAM returns a new WRAM, decoding SVBK on regs for the colour models.
func NewWRAM(regs *types.HardwareRegisters, isGBC bool) *WRAM {
	w := &WRAM{
		bank: 1, // bank 0 is fixed
	}
	if isGBC {
		regs.RegisterHardware(
			types.SVBK,
			func(v uint8) {
				v &= 0x07 // only 3 bits are used
				if v == 0 {
					v = 1
				}
				w.bank = v
			}, func() uint8 {
				return w.bank | 0xF8
			},
		)
	}
	return w
}

// Read returns the value at addr (0xC000-0xDFFF).
func (w *WRAM) Read(addr uint16) uint8 {
	if addr < 0xD000 {
		return w.raw[0][addr&0xFFF]
	}
	return w.raw[w.bank][addr&0xFFF]
}

// Write writes v at addr (0xC000-0xDFFF).
func (w *WRAM) Write(addr uint16, v uint8) {
	if addr < 0xD000 {
		w.raw[0][addr&0xFFF] = v
		return
	}
	w.raw[w.bank][addr&0xFFF] = v
}

func (w *WRAM) Save(s *types.State) {
	s.Write8(w.bank)
	for i := range w.raw {
		s.WriteData(w.raw[i][:])
	}
}
