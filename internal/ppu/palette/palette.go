// Package palette provides the colour palette memory of the CGB.
package palette

import "github.com/thelolagemann/gbcore/internal/types"

// Index is a palette specification register (BCPS/OCPS). Bits 0-5
// address a byte of palette memory, bit 7 increments the address after
// every write to the data register.
//
//	Bit 7   - Auto Increment (0=Disabled, 1=Increment after Writing)
//	Bit 5-0 - Byte Address   (00-3F)
type Index uint8

// Address returns the byte of palette memory selected.
func (i Index) Address() uint8 {
	return uint8(i) & 0x3F
}

// Incrementing returns true if the address advances after each write.
func (i Index) Incrementing() bool {
	return i&types.Bit7 != 0
}

// Palette returns the palette number (0-7) and colour number (0-3)
// the selected byte belongs to.
func (i Index) Palette() (palette, colour uint8) {
	return i.Address() >> 3, i.Address() & 0x7 >> 1
}

// next advances the address, wrapping inside the 64 bytes of memory.
func (i Index) next() Index {
	return i&types.Bit7 | Index((i.Address()+1)&0x3F)
}

// Read returns the register as the CPU sees it, bit 6 is unused.
func (i Index) Read() uint8 {
	return uint8(i) | types.Bit6
}

// CGBPalette is the memory for 8 palettes of 4 colours, each colour
// stored as 15 bit little endian RGB, accessed through a
// specification register and a data register.
type CGBPalette struct {
	Index Index
	data  [64]uint8
}

// SetIndex writes the specification register.
func (p *CGBPalette) SetIndex(value uint8) {
	p.Index = Index(value &^ types.Bit6)
}

// Read returns the byte of palette memory addressed by Index.
func (p *CGBPalette) Read() uint8 {
	return p.data[p.Index.Address()]
}

// Write writes the byte of palette memory addressed by Index, and
// advances Index if auto increment is set.
func (p *CGBPalette) Write(value uint8) {
	p.data[p.Index.Address()] = value
	if p.Index.Incrementing() {
		p.Index = p.Index.next()
	}
}

// Colour returns the 15 bit colour of palette, colour.
func (p *CGBPalette) Colour(palette, colour uint8) uint16 {
	i := (palette&0x7)<<3 | (colour&0x3)<<1
	return uint16(p.data[i]) | uint16(p.data[i+1])<<8
}

func (p *CGBPalette) Save(s *types.State) {
	s.Write8(uint8(p.Index))
	s.WriteData(p.data[:])
}
