// Package mmu provides the memory bus of the DMG and CGB. The MMU
// decodes every CPU access to the cartridge, video memory, work RAM,
// I/O registers or high RAM, and enforces the bus lock held by OAM DMA.
package mmu

import (
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/ram"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

// IOBus is the interface that the MMU uses to communicate with the other
// components.
type IOBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Lock is held by a DMA transfer that takes over the bus.
type Lock interface {
	IsTransferring() bool
}

// region is the handler for a 256 byte page of the address space.
type region struct {
	read  func(address uint16) uint8
	write func(address uint16, value uint8)
}

// MMU is the memory management unit. It handles all memory reads and
// writes to the 64kB address space, and delegates to the other
// components through the IOBus interface.
type MMU struct {
	// page table, indexed by address >> 8
	raw [256]*region

	// 0x0000 - 0x7FFF - ROM (32kB)
	// 0xA000 - 0xBFFF - External RAM (8kB)
	Cart cartridge.Controller

	// 0x8000 - 0x9FFF - Video RAM (8kB)
	// 0xFE00 - 0xFE9F - Sprite Attribute Table (160B)
	Video IOBus

	// 0xC000 - 0xDFFF - Work RAM (8kB)
	// 0xE000 - 0xFDFF - Echo RAM (7.5kB)
	wRAM *WRAM

	// 0xFF00 - 0xFF7F - I/O Registers
	// 0xFFFF - Interrupt Enable
	registers *types.HardwareRegisters

	// 0xFF80 - 0xFFFE - Zero Page RAM (127B)
	zRAM ram.RAM

	HDMA *HDMA

	dma    Lock
	Log    log.Logger
	warned map[uint16]bool
	isGBC  bool
}

// NewMMU returns a new MMU, decoding its own registers on regs.
func NewMMU(cart cartridge.Controller, regs *types.HardwareRegisters, model types.Model, l log.Logger) *MMU {
	m := &MMU{
		Cart:      cart,
		registers: regs,
		zRAM:      ram.NewRAM(0x7F),
		Log:       log.WithComponent(l, "mmu"),
		warned:    make(map[uint16]bool),
		isGBC:     model.IsCGB(),
	}
	m.wRAM = NewWRAM(regs, m.isGBC)
	if m.isGBC {
		m.HDMA = NewHDMA(m, regs)
	}
	m.init()
	return m
}

func (m *MMU) init() {
	cart := &region{read: m.Cart.Read, write: m.Cart.Write}
	wram := &region{read: m.wRAM.Read, write: m.wRAM.Write}
	echo := &region{
		read: func(address uint16) uint8 {
			return m.wRAM.Read(address - 0x2000)
		},
		write: func(address uint16, value uint8) {
			m.wRAM.Write(address-0x2000, value)
		},
	}
	video := &region{
		read: func(address uint16) uint8 {
			return m.Video.Read(address)
		},
		write: func(address uint16, value uint8) {
			m.Video.Write(address, value)
		},
	}

	for page := 0x00; page < 0x80; page++ {
		m.raw[page] = cart
	}
	for page := 0x80; page < 0xA0; page++ {
		m.raw[page] = video
	}
	for page := 0xA0; page < 0xC0; page++ {
		m.raw[page] = cart
	}
	for page := 0xC0; page < 0xE0; page++ {
		m.raw[page] = wram
	}
	for page := 0xE0; page < 0xFE; page++ {
		m.raw[page] = echo
	}
	m.raw[0xFE] = &region{read: m.readOAMPage, write: m.writeOAMPage}
	m.raw[0xFF] = &region{read: m.readHighPage, write: m.writeHighPage}
}

// AttachVideo attaches the component owning VRAM and OAM.
func (m *MMU) AttachVideo(video IOBus) {
	m.Video = video
}

// AttachDMA attaches the OAM DMA controller whose transfers lock the bus.
func (m *MMU) AttachDMA(dma Lock) {
	m.dma = dma
}

// IsGBC returns true if the colour hardware is decoded.
func (m *MMU) IsGBC() bool {
	return m.isGBC
}

// Read returns the value at address, as seen by the CPU.
func (m *MMU) Read(address uint16) uint8 {
	m.checkLock(address, "read")
	return m.raw[address>>8].read(address)
}

// Write writes value to address, as done by the CPU.
func (m *MMU) Write(address uint16, value uint8) {
	m.checkLock(address, "write")
	m.raw[address>>8].write(address, value)
}

// Read16 reads a little endian word, low byte first.
func (m *MMU) Read16(address uint16) uint16 {
	low := m.Read(address)
	return utils.BytesToUint16(m.Read(address+1), low)
}

// Write16 writes a little endian word, low byte first.
func (m *MMU) Write16(address uint16, value uint16) {
	high, low := utils.Uint16ToBytes(value)
	m.Write(address, low)
	m.Write(address+1, high)
}

// checkLock faults any access outside of the I/O registers, HRAM and
// IE while OAM DMA holds the bus.
func (m *MMU) checkLock(address uint16, access string) {
	if address < types.IOStart && m.dma != nil && m.dma.IsTransferring() {
		types.Fatalf(address, "%s of 0x%04X during OAM DMA", access, address)
	}
}

// Peek returns the value at address without the DMA lock or any
// warnings. It is used by DMA transfers and the monitor.
func (m *MMU) Peek(address uint16) uint8 {
	switch {
	case address >= types.UnusableStart && address < types.IOStart:
		return 0xFF
	case address >= types.IOStart && address < types.HRAMStart || address == types.InterruptEnable:
		v, _ := m.registers.Read(address)
		return v
	}
	return m.raw[address>>8].read(address)
}

func (m *MMU) readOAMPage(address uint16) uint8 {
	if address < types.UnusableStart {
		return m.Video.Read(address)
	}
	m.floating(address, "read from unusable memory")
	return 0xFF
}

func (m *MMU) writeOAMPage(address uint16, value uint8) {
	if address < types.UnusableStart {
		m.Video.Write(address, value)
		return
	}
	m.floating(address, "write 0x%02X to unusable memory dropped", value)
}

func (m *MMU) readHighPage(address uint16) uint8 {
	if address >= types.HRAMStart && address < types.InterruptEnable {
		return m.zRAM.Read(address - types.HRAMStart)
	}
	if v, ok := m.registers.Read(address); ok {
		return v
	}
	m.floating(address, "read from undecoded register")
	return 0xFF
}

func (m *MMU) writeHighPage(address uint16, value uint8) {
	if address >= types.HRAMStart && address < types.InterruptEnable {
		m.zRAM.Write(address-types.HRAMStart, value)
		return
	}
	if !m.registers.Write(address, value) {
		m.floating(address, "write 0x%02X to undecoded register dropped", value)
	}
}

// floating reports an access nothing responds to. Only the first access
// to each address is reported as a warning.
func (m *MMU) floating(address uint16, format string, args ...any) {
	args = append([]any{address}, args...)
	if m.warned[address] {
		m.Log.Debugf("0x%04X: "+format, args...)
		return
	}
	m.warned[address] = true
	m.Log.Warnf("0x%04X: "+format, args...)
}

func (m *MMU) Save(s *types.State) {
	m.wRAM.Save(s)
	m.zRAM.Save(s)
	if m.HDMA != nil {
		m.HDMA.Save(s)
	}
}
