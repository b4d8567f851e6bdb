package lcd

import "github.com/thelolagemann/gbcore/pkg/bits"

// Status represents the LCD status register (0xFF41). Its value is
// stored as follows:
//
//	Bit 6 - LYC=LY Coincidence Interrupt (1=Enable) (Read/Write)
//	Bit 5 - Mode 2 OAM Interrupt         (1=Enable) (Read/Write)
//	Bit 4 - Mode 1 V-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 3 - Mode 0 H-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 2 - Coincidence Flag  (0:LYC<>LY, 1:LYC=LY) (Read Only)
//	Bit 1-0 - Mode Flag                             (Read Only)
type Status uint8

const writableStatus = 0b0111_1000

// Mode returns the current mode of the LCD.
func (s Status) Mode() Mode {
	return uint8(s) & 0x03
}

// SetMode sets the mode reported by the LCD.
func (s *Status) SetMode(mode Mode) {
	*s = *s&^0x03 | Status(mode&0x03)
}

func (s Status) Coincidence() bool {
	return bits.Test(uint8(s), 2)
}

// SetCoincidence sets the LYC=LY flag.
func (s *Status) SetCoincidence(v bool) {
	if v {
		*s = Status(bits.Set(uint8(*s), 2))
	} else {
		*s = Status(bits.Reset(uint8(*s), 2))
	}
}

// Line returns the level of the STAT interrupt line: the OR of every
// enabled source that is currently active.
func (s Status) Line() bool {
	v := uint8(s)
	switch {
	case bits.Test(v, 6) && s.Coincidence():
		return true
	case bits.Test(v, 5) && s.Mode() == OAM:
		return true
	case bits.Test(v, 4) && s.Mode() == VBlank:
		return true
	case bits.Test(v, 3) && s.Mode() == HBlank:
		return true
	}
	return false
}

// Write updates the interrupt enable bits, the flag and mode are read only.
func (s *Status) Write(value uint8) {
	*s = *s&^writableStatus | Status(value&writableStatus)
}

// Read returns the value of the status register, bit 7 always reads set.
func (s Status) Read() uint8 {
	return uint8(s) | 0x80
}
