package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// MemoryBankedCartridge2 represents a MBC2 cartridge. It switches up to
// 256kB of ROM and carries 512 half bytes of RAM on the controller.
type MemoryBankedCartridge2 struct {
	*base

	romBank uint8
}

// NewMemoryBankedCartridge2 returns a new MBC2 cartridge.
func NewMemoryBankedCartridge2(rom []byte, header *Header, l log.Logger) *MemoryBankedCartridge2 {
	return &MemoryBankedCartridge2{
		base:    newBase(rom, header, l),
		romBank: 1,
	}
}

func (m *MemoryBankedCartridge2) Init() bool {
	if !m.base.Init() {
		return false
	}
	m.ram = make([]byte, 512)
	return true
}

func (m *MemoryBankedCartridge2) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.readROM(0, address)
	case address < 0x8000:
		return m.readROM(int(m.romBank), address)
	default:
		if !m.ramEnabled {
			return 0xFF
		}
		// the RAM repeats across the region, upper nibble is open bus
		return m.ram[address&0x01FF] | 0xF0
	}
}

// Write updates the controller registers. Bit 8 of the address picks
// between the RAM enable and the ROM bank register.
func (m *MemoryBankedCartridge2) Write(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		if address&0x100 == 0x100 {
			m.romBank = value & 0x0F
			if m.romBank == 0 {
				m.romBank = 1
			}
		} else {
			m.ramEnabled = value&0x0F == 0x0A
		}
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled {
			m.ram[address&0x01FF] = value & 0x0F
		}
	}
}

func (m *MemoryBankedCartridge2) Save(s *types.State) {
	m.saveBase(s)
	s.Write8(m.romBank)
}
