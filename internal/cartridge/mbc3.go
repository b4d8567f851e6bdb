package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// rtcMasks are the implemented bits of the seconds, minutes, hours,
// days low and days high/control registers.
var rtcMasks = [5]uint8{0x3F, 0x3F, 0x1F, 0xFF, 0xC1}

// RTC holds the clock registers of an MBC3. The registers are plain
// storage: the clock does not advance on its own, software sees the
// values last written, as of the last latch.
type RTC struct {
	Registers [5]uint8
	Latched   [5]uint8

	latchValue uint8
}

// latch copies the live registers once 0x00 then 0x01 is written.
func (r *RTC) latch(value uint8) {
	if r.latchValue == 0x00 && value == 0x01 {
		r.Latched = r.Registers
	}
	r.latchValue = value
}

// MemoryBankedCartridge3 represents a MBC3 cartridge. It switches up to
// 2MB of ROM and 32kB of RAM, and may carry a real time clock whose
// registers are mapped in place of the RAM.
type MemoryBankedCartridge3 struct {
	*base

	romBank uint8
	ramBank uint8 // 0x00-0x03 RAM, 0x08-0x0C clock

	hasRTC bool
	rtc    RTC
}

// NewMemoryBankedCartridge3 returns a new MBC3 cartridge.
func NewMemoryBankedCartridge3(rom []byte, header *Header, l log.Logger) *MemoryBankedCartridge3 {
	return &MemoryBankedCartridge3{
		base:    newBase(rom, header, l),
		romBank: 1,
		hasRTC:  header.CartridgeType == MBC3TIMERBATT || header.CartridgeType == MBC3TIMERRAMBATT,
	}
}

// Read returns the value from the cartridge's ROM, RAM or clock,
// depending on the banks selected.
func (m *MemoryBankedCartridge3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.readROM(0, address)
	case address < 0x8000:
		return m.readROM(int(m.romBank), address)
	}

	if m.ramBank >= 0x08 {
		if !m.ramEnabled || !m.hasRTC || m.ramBank > 0x0C {
			return 0xFF
		}
		return m.rtc.Latched[m.ramBank-0x08]
	}
	return m.readRAM(int(m.ramBank), address)
}

// Write updates the controller registers, or writes to the selected
// RAM bank or clock register.
func (m *MemoryBankedCartridge3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		// enables the clock as well as the RAM
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address < 0x8000:
		if m.hasRTC {
			m.rtc.latch(value)
		}
	case address >= 0xA000 && address < 0xC000:
		if m.ramBank >= 0x08 {
			if m.ramEnabled && m.hasRTC && m.ramBank <= 0x0C {
				i := m.ramBank - 0x08
				m.rtc.Registers[i] = value & rtcMasks[i]
			}
			return
		}
		m.writeRAM(int(m.ramBank), address, value)
	}
}

func (m *MemoryBankedCartridge3) Save(s *types.State) {
	m.saveBase(s)
	s.Write8(m.romBank)
	s.Write8(m.ramBank)
	s.WriteData(m.rtc.Registers[:])
	s.WriteData(m.rtc.Latched[:])
	s.Write8(m.rtc.latchValue)
}
