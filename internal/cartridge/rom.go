package cartridge

import (
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// ROMCartridge represents a cartridge without a memory bank controller.
// It maps 32kB of ROM and optionally 8kB of RAM, which is always enabled.
type ROMCartridge struct {
	*base
}

// NewROMCartridge returns a new ROM cartridge.
func NewROMCartridge(rom []byte, header *Header, l log.Logger) *ROMCartridge {
	return &ROMCartridge{base: newBase(rom, header, l)}
}

func (r *ROMCartridge) Init() bool {
	if !r.base.Init() {
		return false
	}
	r.ramEnabled = true
	return true
}

// Read returns the value at the given address.
func (r *ROMCartridge) Read(address uint16) uint8 {
	if address < 0x8000 {
		return r.readROM(int(address>>14), address)
	}
	return r.readRAM(0, address)
}

// Write writes to RAM, writes to ROM are ignored.
func (r *ROMCartridge) Write(address uint16, value uint8) {
	if address >= 0xA000 && address < 0xC000 {
		r.writeRAM(0, address, value)
	}
}

func (r *ROMCartridge) Save(s *types.State) {
	r.saveBase(s)
}
