package ppu

import "github.com/thelolagemann/gbcore/internal/types"

// Source is the memory an OAM DMA transfer copies from. Reads made
// through it bypass the bus lock held by the transfer.
type Source interface {
	Peek(address uint16) uint8
}

// DMA is the OAM DMA controller (0xFF46). Writing a page number starts
// copying the 160 bytes at page<<8 into OAM, a byte every 4 clock cycles
// after a single machine cycle of setup. While a transfer is running the
// CPU may only access HRAM and the I/O registers.
type DMA struct {
	enabled    bool
	restarting bool

	timer  uint
	source uint16
	value  uint8

	bus Source
	ppu *PPU
}

// NewDMA creates an OAM DMA controller decoding types.DMA on regs.
func NewDMA(bus Source, ppu *PPU, regs *types.HardwareRegisters) *DMA {
	d := &DMA{
		bus: bus,
		ppu: ppu,
	}
	regs.RegisterHardware(
		types.DMA,
		func(v uint8) {
			d.value = v
			d.source = uint16(v) << 8
			d.timer = 0

			d.restarting = d.enabled
			d.enabled = true
		},
		func() uint8 {
			return d.value
		},
	)
	return d
}

// Tick advances the transfer by a single clock cycle.
func (d *DMA) Tick() {
	if !d.enabled {
		return
	}

	d.timer++

	// the first machine cycle sets up the transfer, after which a byte
	// moves every 4 ticks
	if d.timer%4 == 0 && d.timer > 4 {
		d.restarting = false

		offset := uint16(d.timer-8) >> 2
		source := d.source + offset

		// sources above WRAM read the echo
		if source >= 0xE000 {
			source -= 0x2000
		}
		d.ppu.WriteOAM(uint8(offset), d.bus.Peek(source))

		// 160 bytes * 4 ticks, plus setup
		if offset == 0x9F {
			d.enabled = false
			d.timer = 0
		}
	}
}

// IsTransferring returns true while the transfer holds the bus.
func (d *DMA) IsTransferring() bool {
	return d.enabled && d.timer > 4 || d.restarting
}

func (d *DMA) Save(s *types.State) {
	s.WriteBool(d.enabled)
	s.WriteBool(d.restarting)
	s.Write16(uint16(d.timer))
	s.Write8(d.value)
}
