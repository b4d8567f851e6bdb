// Package ram provides a basic RAM implementation.
package ram

import "github.com/thelolagemann/gbcore/internal/types"

// RAM represents a block of RAM, addressed relative to its start.
type RAM interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	types.Stater
}

type ram struct {
	data []uint8
}

// NewRAM returns a new, zeroed RAM of size bytes.
func NewRAM(size uint32) RAM {
	return &ram{
		data: make([]uint8, size),
	}
}

// Read returns the value at the given address.
func (r *ram) Read(address uint16) uint8 {
	return r.data[address]
}

// Write writes the value to the given address.
func (r *ram) Write(address uint16, value uint8) {
	r.data[address] = value
}

func (r *ram) Save(s *types.State) {
	s.WriteData(r.data)
}
