package types

import (
	"strings"
)

type Model int // The Model used in emulation.

const (
	Unset  Model = iota // Unset - Model hasn't been set - behaves as DMGABC
	DMG0                // DMG0 - early Game Boy, only released in Japan
	DMGABC              // DMGABC - Standard Game Boy
	CGB0                // CGB0 -  early Game Boy Colour, only released in Japan
	CGBABC              // CGBABC - Standard Game Boy Colour
	MGB                 // MGB - Pocket Game Boy
	SGB                 // SGB - Super Game Boy
	SGB2                // SGB2 - Super Game Boy 2
	AGB                 // AGB - Game Boy Advance
)

var ModelNames = map[Model]string{
	DMG0:   "DMG0",
	DMGABC: "DMG",
	CGB0:   "CGB0",
	CGBABC: "CGB",
	MGB:    "MGB",
	SGB:    "SGB",
	SGB2:   "SGB2",
	AGB:    "AGB",
	Unset:  "Unset",
}

// StringToModel converts a string to a Model.
func StringToModel(s string) Model {
	for m, n := range ModelNames {
		if n == strings.ToUpper(s) {
			return m
		}
	}

	return Unset
}

func (m Model) String() string {
	return ModelNames[m]
}

// IsCGB returns true for the models that have the colour
// hardware (banked VRAM/WRAM, speed switch, VRAM DMA).
func (m Model) IsCGB() bool {
	return m == CGB0 || m == CGBABC || m == AGB
}

// ModelRegisters - model specific starting CPU registers,
// in the order A, F, B, C, D, E, H, L.
var ModelRegisters = map[Model][8]uint8{
	Unset:  {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D}, // default to DMG registers
	DMG0:   {0x01, 0x00, 0xFF, 0x13, 0x00, 0xC1, 0x84, 0x03},
	DMGABC: {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	CGB0:   {0x11, 0x80, 0x00, 0x00, 0x00, 0x08, 0x00, 0x7C},
	CGBABC: {0x11, 0x80, 0x00, 0x00, 0x00, 0x08, 0x00, 0x7C},
	MGB:    {0xFF, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	SGB:    {0x01, 0x00, 0x00, 0x14, 0x00, 0x00, 0xC0, 0x60},
	SGB2:   {0xFF, 0x00, 0x00, 0x14, 0x00, 0x00, 0xC0, 0x60},
	AGB:    {0x11, 0x00, 0x01, 0x00, 0x00, 0x08, 0x00, 0x7C},
}

// ModelDIV - model specific starting value of the 16-bit system
// clock counter, the upper byte of which is read through DIV.
var ModelDIV = map[Model]uint16{
	Unset:  0xABC9,
	DMG0:   0x182F,
	DMGABC: 0xABC9,
	MGB:    0xABC9,
	CGBABC: 0x2675,
	CGB0:   0x2881,
	SGB:    0xD85F,
	SGB2:   0xD84F,
	AGB:    0x267B,
}

// CommonIO - common starting IO registers, written through the
// bus once the machine has been assembled.
var CommonIO = []struct {
	Address HardwareAddress
	Value   uint8
}{
	{P1, 0xCF},
	{TAC, 0xF8},
	{NR52, 0xF1},
	{NR10, 0x80},
	{NR11, 0xBF},
	{NR12, 0xF3},
	{NR14, 0xBF},
	{NR21, 0x3F},
	{NR22, 0x00},
	{NR24, 0xBF},
	{NR30, 0x7F},
	{NR31, 0xFF},
	{NR32, 0x9F},
	{NR33, 0xBF},
	{NR41, 0xFF},
	{NR42, 0x00},
	{NR43, 0x00},
	{NR50, 0x77},
	{NR51, 0xF3},
	{BGP, 0xFC},
	{LCDC, 0x91},
	{IF, 0xE1},
}
