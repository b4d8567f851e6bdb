package types

import (
	"fmt"
)

// HardwareRegisters is the table of hardware registers decoded
// by a single bus. Components register the addresses they own
// when they are created; any address left unregistered behaves
// as a floating bus.
//
// The table is indexed by the address ANDed with 0x007F, with the
// IE register (0xFFFF) stored in a trailing slot of its own.
type HardwareRegisters struct {
	registers [0x81]*HardwareRegister
}

// NewHardwareRegisters returns an empty register table.
func NewHardwareRegisters() *HardwareRegisters {
	return &HardwareRegisters{}
}

func hardwareIndex(address HardwareAddress) int {
	if address == IE {
		return 0x80
	}
	return int(address & 0x007F)
}

// RegisterHardware registers a hardware register at the given
// address. Either function may be NoRead / NoWrite for write-only
// or read-only registers. Registering the same address twice is a
// programming error and panics.
func (h *HardwareRegisters) RegisterHardware(address HardwareAddress, write func(v uint8), read func() uint8) {
	if address != IE && (address < IOStart || address >= HRAMStart) {
		panic(fmt.Sprintf("hardware: 0x%04X is not a hardware address", address))
	}
	i := hardwareIndex(address)
	if h.registers[i] != nil {
		panic(fmt.Sprintf("hardware: address 0x%04X has already been registered", address))
	}
	h.registers[i] = &HardwareRegister{
		address: address,
		write:   write,
		read:    read,
	}
}

// Has returns true if a component decodes the given address.
func (h *HardwareRegisters) Has(address HardwareAddress) bool {
	if address != IE && (address < IOStart || address >= HRAMStart) {
		return false
	}
	return h.registers[hardwareIndex(address)] != nil
}

// Read returns the value of the hardware register at address. The
// second return value is false when nothing decodes the address.
func (h *HardwareRegisters) Read(address HardwareAddress) (uint8, bool) {
	if !h.Has(address) {
		return 0xFF, false
	}
	return h.registers[hardwareIndex(address)].Read(), true
}

// Write writes value to the hardware register at address, returning
// false when nothing decodes the address.
func (h *HardwareRegisters) Write(address HardwareAddress, value uint8) bool {
	if !h.Has(address) {
		return false
	}
	h.registers[hardwareIndex(address)].Write(value)
	return true
}

// HardwareRegister is a single memory-mapped register, backed by
// the component that owns it.
type HardwareRegister struct {
	address HardwareAddress
	write   func(v uint8)
	read    func() uint8
}

// Read returns the register value as the CPU sees it.
func (h *HardwareRegister) Read() uint8 {
	if h.read == nil {
		return 0xFF
	}
	return h.read()
}

// Write hands value to the owning component.
func (h *HardwareRegister) Write(value uint8) {
	if h.write != nil {
		h.write(value)
	}
}

// NoRead is used for write-only registers, which read back as 0xFF.
func NoRead() uint8 {
	return 0xFF
}

// NoWrite is used for read-only registers, ignoring the write.
func NoWrite(uint8) {}
