package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// MemoryBankedCartridge1 represents a MBC1 cartridge. It switches up to
// 2MB of ROM and 32kB of RAM.
//
// The controller has two bank registers. BANK1 (5 bits) selects the
// switchable ROM bank, where 0 is read as 1. BANK2 (2 bits) supplies the
// upper ROM bank bits on cartridges of 1MB or more, or the RAM bank on
// cartridges with 32kB of RAM. The mode register decides whether BANK2
// also applies to the fixed ROM region and the RAM.
type MemoryBankedCartridge1 struct {
	*base

	bank1 uint8
	bank2 uint8
	mode  bool
}

// NewMemoryBankedCartridge1 returns a new MBC1 cartridge.
func NewMemoryBankedCartridge1(rom []byte, header *Header, l log.Logger) *MemoryBankedCartridge1 {
	return &MemoryBankedCartridge1{
		base:  newBase(rom, header, l),
		bank1: 1,
	}
}

func (m *MemoryBankedCartridge1) largeROM() bool {
	return m.header.ROMSize >= 1024*1024
}

// Read returns the value from the cartridge's ROM or RAM, depending on
// the banks selected.
func (m *MemoryBankedCartridge1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		bank := 0
		if m.mode && m.largeROM() {
			bank = int(m.bank2) << 5
		}
		return m.readROM(bank, address)
	case address < 0x8000:
		bank := int(m.bank1)
		if m.largeROM() {
			bank |= int(m.bank2) << 5
		}
		return m.readROM(bank, address)
	default:
		return m.readRAM(m.ramBank(), address)
	}
}

func (m *MemoryBankedCartridge1) ramBank() int {
	if m.mode && !m.largeROM() {
		return int(m.bank2)
	}
	return 0
}

// Write updates the controller registers, or writes to the selected RAM bank.
func (m *MemoryBankedCartridge1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = len(m.ram) > 0 && value&0x0F == 0x0A
	case address < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case address < 0x6000:
		m.bank2 = value & 0x03
	case address < 0x8000:
		m.mode = value&0x01 == 0x01
	case address >= 0xA000 && address < 0xC000:
		m.writeRAM(m.ramBank(), address, value)
	}
}

func (m *MemoryBankedCartridge1) Save(s *types.State) {
	m.saveBase(s)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
}
