package mmu

import "github.com/thelolagemann/gbcore/internal/types"

type Mode = uint8

const (
	// GDMAMode copies every block at once, halting the CPU until done.
	GDMAMode Mode = iota
	// HDMAMode copies a block each time the display enters HBlank.
	HDMAMode
)

// HDMA is the CGB VRAM DMA controller (HDMA1-HDMA5). It copies blocks of
// 16 bytes from ROM or RAM into the selected VRAM bank. The CPU does not
// run while a block is being copied.
type HDMA struct {
	mode Mode

	transferring bool
	copying      bool

	blocks      uint8
	source      uint16
	destination uint16

	bus           *MMU
	vRAMWriteFunc func(uint16, uint8)
}

// NewHDMA returns a new HDMA controller reading from bus.
func NewHDMA(bus *MMU, regs *types.HardwareRegisters) *HDMA {
	h := &HDMA{
		mode: GDMAMode,
		bus:  bus,
	}
	regs.RegisterHardware(
		types.HDMA1,
		func(v uint8) {
			h.source = h.source&0x00FF | uint16(v)<<8
		},
		types.NoRead,
	)
	regs.RegisterHardware(
		types.HDMA2,
		func(v uint8) {
			h.source = h.source&0xFF00 | uint16(v&0xF0)
		},
		types.NoRead,
	)
	regs.RegisterHardware(
		types.HDMA3,
		func(v uint8) {
			h.destination = h.destination&0x00FF | uint16(v&0x1F)<<8
		},
		types.NoRead,
	)
	regs.RegisterHardware(
		types.HDMA4,
		func(v uint8) {
			h.destination = h.destination&0xFF00 | uint16(v&0xF0)
		},
		types.NoRead,
	)
	regs.RegisterHardware(types.HDMA5, h.writeControl, h.readControl)
	return h
}

func (h *HDMA) writeControl(v uint8) {
	if h.mode == HDMAMode && h.transferring && v&types.Bit7 == 0 {
		// cancels the HBlank transfer, the remaining length is kept
		h.transferring = false
		h.copying = false
		return
	}

	h.mode = v >> 7
	h.blocks = v&0x7F + 1
	h.transferring = true

	// general purpose transfers start immediately
	h.copying = h.mode == GDMAMode
}

func (h *HDMA) readControl() uint8 {
	remaining := (h.blocks - 1) & 0x7F
	if h.transferring {
		return remaining
	}
	return types.Bit7 | remaining
}

// CopyBlock copies the next 16 byte block into VRAM.
func (h *HDMA) CopyBlock() {
	for i := 0; i < 0x10; i++ {
		h.vRAMWriteFunc(h.destination&0x1FFF, h.bus.Peek(h.source))
		h.destination++
		h.source++
	}

	h.blocks--
	if h.blocks == 0 {
		h.transferring = false
		h.copying = false
	} else if h.mode == HDMAMode {
		// wait for the next HBlank
		h.copying = false
	}
}

// IsCopying returns true if the HDMA controller is currently copying
// data.
func (h *HDMA) IsCopying() bool {
	return h.copying
}

// SetHBlank starts copying the next block of an HBlank transfer.
func (h *HDMA) SetHBlank() {
	if h.mode == HDMAMode && h.transferring {
		h.copying = true
	}
}

// AttachVRAM sets the function used to write the selected VRAM bank.
func (h *HDMA) AttachVRAM(vramWriteFunc func(uint16, uint8)) {
	h.vRAMWriteFunc = vramWriteFunc
}

func (h *HDMA) Save(s *types.State) {
	s.Write8(h.mode)
	s.WriteBool(h.transferring)
	s.WriteBool(h.copying)
	s.Write8(h.blocks)
	s.Write16(h.source)
	s.Write16(h.destination)
}
