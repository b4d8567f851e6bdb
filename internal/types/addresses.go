package types

// HardwareAddress is the bus address of a memory-mapped hardware
// register. Hardware registers live in 0xFF00 - 0xFF7F, with the
// interrupt enable register alone at 0xFFFF.
type HardwareAddress = uint16

// Memory map boundaries. Each range is owned by exactly one
// component of the bus.
const (
	ROMBank0Start   uint16 = 0x0000 // fixed ROM bank (cartridge)
	ROMBankNStart   uint16 = 0x4000 // switchable ROM bank (cartridge)
	VRAMStart       uint16 = 0x8000 // video RAM, 2 banks on CGB
	ExternalRAM     uint16 = 0xA000 // cartridge RAM (cartridge)
	WRAMBank0Start  uint16 = 0xC000 // work RAM bank 0
	WRAMBankNStart  uint16 = 0xD000 // work RAM bank 1-7 (SVBK)
	EchoStart       uint16 = 0xE000 // mirror of 0xC000 - 0xDDFF
	OAMStart        uint16 = 0xFE00 // sprite attribute table
	UnusableStart   uint16 = 0xFEA0 // floating bus
	IOStart         uint16 = 0xFF00 // hardware registers
	HRAMStart       uint16 = 0xFF80 // high RAM
	InterruptEnable uint16 = 0xFFFF // IE
)

const (
	// P1 selects the joypad button matrix and reads it back.
	P1 HardwareAddress = 0xFF00
	// SB holds the byte being shifted in and out of the serial port.
	SB HardwareAddress = 0xFF01
	// SC controls the serial port.
	//
	//	Bit 7 - Transfer start / in progress
	//	Bit 1 - Clock speed (CGB only)
	//	Bit 0 - Shift clock (0=External, 1=Internal)
	SC HardwareAddress = 0xFF02
	// DIV exposes the upper 8 bits of the 16-bit system clock
	// counter. Any write resets the whole counter.
	DIV HardwareAddress = 0xFF04
	// TIMA is incremented at the rate selected by TAC and requests a
	// timer interrupt when it overflows, after which it is reloaded
	// from TMA.
	TIMA HardwareAddress = 0xFF05
	// TMA is loaded into TIMA on overflow.
	TMA HardwareAddress = 0xFF06
	// TAC enables the timer (bit 2) and selects its clock (bits 0-1).
	TAC HardwareAddress = 0xFF07
	// IF is the interrupt flag (pending) register.
	//
	//	Bit 0: VBlank   (INT 40h)
	//	Bit 1: LCD STAT (INT 48h)
	//	Bit 2: Timer    (INT 50h)
	//	Bit 3: Serial   (INT 58h)
	//	Bit 4: Joypad   (INT 60h)
	IF HardwareAddress = 0xFF0F

	NR10 HardwareAddress = 0xFF10
	NR11 HardwareAddress = 0xFF11
	NR12 HardwareAddress = 0xFF12
	NR13 HardwareAddress = 0xFF13
	NR14 HardwareAddress = 0xFF14
	NR21 HardwareAddress = 0xFF16
	NR22 HardwareAddress = 0xFF17
	NR23 HardwareAddress = 0xFF18
	NR24 HardwareAddress = 0xFF19
	NR30 HardwareAddress = 0xFF1A
	NR31 HardwareAddress = 0xFF1B
	NR32 HardwareAddress = 0xFF1C
	NR33 HardwareAddress = 0xFF1D
	NR34 HardwareAddress = 0xFF1E
	NR41 HardwareAddress = 0xFF20
	NR42 HardwareAddress = 0xFF21
	NR43 HardwareAddress = 0xFF22
	NR44 HardwareAddress = 0xFF23
	NR50 HardwareAddress = 0xFF24
	NR51 HardwareAddress = 0xFF25
	// NR52 is the sound on/off register. Bit 7 powers the APU,
	// bits 0-3 report which channels are active.
	NR52 HardwareAddress = 0xFF26
	// WaveRAM is the first of the 16 wave pattern bytes
	// (0xFF30 - 0xFF3F).
	WaveRAM HardwareAddress = 0xFF30

	// LCDC controls the display, see lcd.Controller.
	LCDC HardwareAddress = 0xFF40
	// STAT reports the display mode and selects the STAT
	// interrupt sources, see lcd.Status.
	STAT HardwareAddress = 0xFF41
	SCY  HardwareAddress = 0xFF42
	SCX  HardwareAddress = 0xFF43
	// LY is the scanline currently being drawn (0-153).
	LY HardwareAddress = 0xFF44
	// LYC is compared against LY to drive the coincidence flag.
	LYC HardwareAddress = 0xFF45
	// DMA starts a 160 byte transfer from (value << 8) into OAM.
	DMA  HardwareAddress = 0xFF46
	BGP  HardwareAddress = 0xFF47
	OBP0 HardwareAddress = 0xFF48
	OBP1 HardwareAddress = 0xFF49
	WY   HardwareAddress = 0xFF4A
	WX   HardwareAddress = 0xFF4B
	// KEY0 selects the CGB compatibility mode. (CGB only)
	KEY0 HardwareAddress = 0xFF4C
	// KEY1 is the CGB speed switch register.
	//
	//	Bit 7 - Current speed (0=Normal, 1=Double) (Read Only)
	//	Bit 0 - Prepare speed switch (0=No, 1=Prepare)
	KEY1 HardwareAddress = 0xFF4D
	// VBK selects the VRAM bank in bit 0. (CGB only)
	VBK HardwareAddress = 0xFF4F
	// BDIS unmaps the boot ROM.
	BDIS  HardwareAddress = 0xFF50
	HDMA1 HardwareAddress = 0xFF51
	HDMA2 HardwareAddress = 0xFF52
	HDMA3 HardwareAddress = 0xFF53
	HDMA4 HardwareAddress = 0xFF54
	// HDMA5 starts a VRAM DMA transfer. Bit 7 selects HBlank mode,
	// bits 0-6 hold the number of 16 byte blocks minus one.
	HDMA5 HardwareAddress = 0xFF55
	// BCPS selects the background palette byte addressed by BCPD.
	//
	//	Bit 7   - Auto increment on write
	//	Bit 5-0 - Palette byte index
	BCPS HardwareAddress = 0xFF68
	BCPD HardwareAddress = 0xFF69
	// OCPS selects the object palette byte addressed by OCPD.
	OCPS HardwareAddress = 0xFF6A
	OCPD HardwareAddress = 0xFF6B
	// OPRI selects the object priority mode. (CGB only)
	OPRI HardwareAddress = 0xFF6C
	// SVBK selects the WRAM bank mapped at 0xD000 in bits 0-2,
	// where 0 selects bank 1. (CGB only)
	SVBK HardwareAddress = 0xFF70
	// IE is the interrupt enable (mask) register, with the same bit
	// layout as IF.
	IE HardwareAddress = 0xFFFF
)
