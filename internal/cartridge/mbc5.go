package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// MemoryBankedCartridge5 represents a MBC5 cartridge. It switches up to
// 8MB of ROM through a 9 bit bank number, where bank 0 may be mapped to
// the switchable region, and up to 128kB of RAM.
type MemoryBankedCartridge5 struct {
	*base

	romBank uint16
	ramBank uint8

	rumble   bool
	Rumbling bool // motor state, on rumble cartridges
}

// NewMemoryBankedCartridge5 returns a new MBC5 cartridge.
func NewMemoryBankedCartridge5(rom []byte, header *Header, l log.Logger) *MemoryBankedCartridge5 {
	t := header.CartridgeType
	return &MemoryBankedCartridge5{
		base:    newBase(rom, header, l),
		romBank: 1,
		rumble:  t == MBC5RUMBLE || t == MBC5RUMBLERAM || t == MBC5RUMBLERAMBATT,
	}
}

func (m *MemoryBankedCartridge5) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.readROM(0, address)
	case address < 0x8000:
		return m.readROM(int(m.romBank), address)
	default:
		return m.readRAM(int(m.ramBank), address)
	}
}

func (m *MemoryBankedCartridge5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value == 0x0A
	case address < 0x3000:
		// lower 8 bits of the ROM bank
		m.romBank = m.romBank&0x100 | uint16(value)
	case address < 0x4000:
		// bit 8 of the ROM bank
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address < 0x6000:
		if m.rumble {
			m.Rumbling = value&types.Bit3 != 0
			m.ramBank = value & 0x07
		} else {
			m.ramBank = value & 0x0F
		}
	case address >= 0xA000 && address < 0xC000:
		m.writeRAM(int(m.ramBank), address, value)
	}
}

func (m *MemoryBankedCartridge5) Save(s *types.State) {
	m.saveBase(s)
	s.Write16(m.romBank)
	s.Write8(m.ramBank)
}
