// Package cartridge provides the memory bank controllers found in DMG
// and CGB cartridges. The cartridge holds the game ROM and any
// external RAM, and is mapped at 0x0000-0x7FFF and 0xA000-0xBFFF.
package cartridge

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Controller is a memory bank controller as seen from the bus.
type Controller interface {
	// Init prepares the controller for use, returning false if the
	// ROM image cannot be run by it.
	Init() bool
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// Finish releases the controller once emulation has ended.
	Finish()
}

// Cartridge is a ROM image and the controller selected by its header.
type Cartridge struct {
	Controller
	header *Header
}

// New parses the header of rom and selects its controller.
func New(rom []byte, l log.Logger) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("rom too small: %d bytes", len(rom))
	}
	header, err := parseHeader(rom[0x100:0x150])
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}

	l = log.WithComponent(l, "cartridge")
	l.Infof("cartridge: %s", header.String())

	var c Controller
	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		c = NewROMCartridge(rom, header, l)
	case MBC1, MBC1RAM, MBC1RAMBATT:
		c = NewMemoryBankedCartridge1(rom, header, l)
	case MBC2, MBC2BATT:
		c = NewMemoryBankedCartridge2(rom, header, l)
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		c = NewMemoryBankedCartridge3(rom, header, l)
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		c = NewMemoryBankedCartridge5(rom, header, l)
	default:
		return nil, fmt.Errorf("unsupported cartridge type: %s", header.CartridgeType)
	}

	if !c.Init() {
		return nil, fmt.Errorf("%s controller rejected the rom", header.CartridgeType)
	}

	return &Cartridge{Controller: c, header: header}, nil
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() *Header {
	return c.header
}

// Title returns the title of the cartridge.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Save appends the controller state, if it has any.
func (c *Cartridge) Save(s *types.State) {
	if st, ok := c.Controller.(types.Stater); ok {
		st.Save(s)
	}
}

// base holds the storage shared by every controller. Bank relative
// accesses that land beyond the end of the ROM or RAM read 0xFF and are
// reported once per bank.
type base struct {
	rom []byte
	ram []byte

	ramEnabled bool

	header *Header
	log    log.Logger
	warned map[bankKey]bool
}

type bankKey struct {
	kind string
	bank int
}

func newBase(rom []byte, header *Header, l log.Logger) *base {
	return &base{
		rom:    rom,
		header: header,
		log:    l,
		warned: make(map[bankKey]bool),
	}
}

// Init allocates the external RAM declared by the header.
func (b *base) Init() bool {
	if len(b.rom) < 0x8000 {
		b.log.Errorf("rom is %d bytes, need at least 32kB", len(b.rom))
		return false
	}
	if uint(len(b.rom)) != b.header.ROMSize {
		b.log.Warnf("header declares %dkB of ROM, image is %dkB", b.header.ROMSize/1024, len(b.rom)/1024)
	}
	b.ram = make([]byte, b.header.RAMSize)
	return true
}

// Finish discards the external RAM.
func (b *base) Finish() {
	if b.header.CartridgeType.Battery() && len(b.ram) > 0 {
		b.log.Debugf("discarding %d bytes of battery backed RAM", len(b.ram))
	}
	b.ram = nil
	b.ramEnabled = false
}

func (b *base) readROM(bank int, address uint16) uint8 {
	offset := bank*0x4000 + int(address&0x3FFF)
	if offset >= len(b.rom) {
		b.overflow("ROM", bank, address)
		return 0xFF
	}
	return b.rom[offset]
}

func (b *base) readRAM(bank int, address uint16) uint8 {
	if !b.ramEnabled {
		return 0xFF
	}
	offset := bank*0x2000 + int(address&0x1FFF)
	if offset >= len(b.ram) {
		b.overflow("RAM", bank, address)
		return 0xFF
	}
	return b.ram[offset]
}

func (b *base) writeRAM(bank int, address uint16, value uint8) {
	if !b.ramEnabled {
		return
	}
	offset := bank*0x2000 + int(address&0x1FFF)
	if offset >= len(b.ram) {
		b.overflow("RAM", bank, address)
		return
	}
	b.ram[offset] = value
}

func (b *base) overflow(kind string, bank int, address uint16) {
	key := bankKey{kind, bank}
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	b.log.Warnf("%s bank %d is beyond the cartridge (address 0x%04X)", kind, bank, address)
}

func (b *base) saveBase(s *types.State) {
	s.WriteData(b.ram)
	s.WriteBool(b.ramEnabled)
}
