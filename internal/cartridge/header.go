package cartridge

import (
	"fmt"
	"strings"
)

// Flag is the colour support declared at 0x0143.
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

// ramSizes maps the RAM size code at 0x0149 to a size in bytes.
var ramSizes = map[uint8]uint{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Type is the memory bank controller and peripherals declared at 0x0147.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	POCKETCAMERA      Type = 0x1F
	BANDAITAMA5       Type = 0xFD
	HUDSONHUC3        Type = 0xFE
	HUDSONHUC1        Type = 0xFF
)

var typeNames = map[Type]string{
	ROM:               "ROM",
	MBC1:              "MBC1",
	MBC1RAM:           "MBC1+RAM",
	MBC1RAMBATT:       "MBC1+RAM+BATTERY",
	MBC2:              "MBC2",
	MBC2BATT:          "MBC2+BATTERY",
	ROMRAM:            "ROM+RAM",
	ROMRAMBATT:        "ROM+RAM+BATTERY",
	MMM01:             "MMM01",
	MMM01RAM:          "MMM01+RAM",
	MMM01RAMBATT:      "MMM01+RAM+BATTERY",
	MBC3TIMERBATT:     "MBC3+TIMER+BATTERY",
	MBC3TIMERRAMBATT:  "MBC3+TIMER+RAM+BATTERY",
	MBC3:              "MBC3",
	MBC3RAM:           "MBC3+RAM",
	MBC3RAMBATT:       "MBC3+RAM+BATTERY",
	MBC5:              "MBC5",
	MBC5RAM:           "MBC5+RAM",
	MBC5RAMBATT:       "MBC5+RAM+BATTERY",
	MBC5RUMBLE:        "MBC5+RUMBLE",
	MBC5RUMBLERAM:     "MBC5+RUMBLE+RAM",
	MBC5RUMBLERAMBATT: "MBC5+RUMBLE+RAM+BATTERY",
	POCKETCAMERA:      "POCKET CAMERA",
	BANDAITAMA5:       "BANDAI TAMA5",
	HUDSONHUC3:        "HuC3",
	HUDSONHUC1:        "HuC1+RAM+BATTERY",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
}

// Battery returns true if the cartridge keeps its RAM powered.
func (t Type) Battery() bool {
	switch t {
	case MBC1RAMBATT, MBC2BATT, ROMRAMBATT, MMM01RAMBATT, MBC3TIMERBATT,
		MBC3TIMERRAMBATT, MBC3RAMBATT, MBC5RAMBATT, MBC5RUMBLERAMBATT, HUDSONHUC1:
		return true
	}
	return false
}

// Header represents the header of a cartridge, located in the address
// space 0x0100-0x014F. It describes the cartridge itself, and the
// hardware it expects to run on.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string

	// 0x013F-0x0142 - ManufacturerCode of the game
	ManufacturerCode string

	// 0x0143 - In older cartridges this byte was part of the title, the
	// colour models interpret it as the level of colour support.
	CartridgeGBMode Flag

	NewLicenseeCode string
	SGBFlag         bool
	CartridgeType   Type
	ROMSize         uint
	RAMSize         uint
	CountryCode     uint8
	OldLicenseeCode uint8
	MaskROMVersion  uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16
}

// parseHeader parses the 0x50 bytes at 0x0100 of a ROM image.
func parseHeader(header []byte) (*Header, error) {
	if len(header) != 0x50 {
		return nil, fmt.Errorf("invalid header length: %d", len(header))
	}

	h := &Header{}
	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	title := header[0x34:0x44]
	if h.CartridgeGBMode != FlagOnlyDMG {
		title = header[0x34:0x43]
	}
	h.Title = strings.TrimRight(string(title), "\x00 ")

	h.ManufacturerCode = string(header[0x3F:0x43])
	h.NewLicenseeCode = string(header[0x44:0x46])
	h.SGBFlag = header[0x46] == 0x03
	h.CartridgeType = Type(header[0x47])

	// 32kB x (1 << n)
	if header[0x48] > 0x08 {
		return nil, fmt.Errorf("invalid ROM size code: 0x%02X", header[0x48])
	}
	h.ROMSize = (32 * 1024) << header[0x48]

	size, ok := ramSizes[header[0x49]]
	if !ok {
		return nil, fmt.Errorf("invalid RAM size code: 0x%02X", header[0x49])
	}
	h.RAMSize = size

	h.CountryCode = header[0x4A]
	h.OldLicenseeCode = header[0x4B]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	return h, nil
}

// GameboyColor returns true if the cartridge makes use of the colour models.
func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

func (h *Header) Hardware() string {
	if h.GameboyColor() {
		return "CGB"
	}
	return "DMG"
}

func (h *Header) String() string {
	return fmt.Sprintf("%s Mode: %s | Type: %s | ROM Size: %dkB | RAM Size: %dkB",
		h.Title, h.Hardware(), h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
