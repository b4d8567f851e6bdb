// Package ppu provides the display timing of the DMG and CGB. It owns the
// video memory and the LCD registers, steps through the modes of each
// scanline and raises the VBlank and STAT interrupts. Pixels are not
// composed.
package ppu

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/ppu/lcd"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/ram"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144

	// DotsPerLine is the number of clock cycles taken by each scanline.
	DotsPerLine = 456
	// LinesPerFrame includes the 10 lines of VBlank.
	LinesPerFrame = 154
	// CyclesPerFrame is the number of clock cycles in a frame.
	CyclesPerFrame = DotsPerLine * LinesPerFrame

	oamScanDots  = 80
	transferDots = 172
)

// PPU implements the timing of the (P)ixel (P)rocessing (U)nit.
//
// Each line spends 80 dots in mode 2 (OAM scan), 172 dots in mode 3
// (pixel transfer) and the remainder of its 456 dots in mode 0 (HBlank).
// Lines 144-153 are spent in mode 1 (VBlank).
type PPU struct {
	Controller lcd.Controller
	Status     lcd.Status

	ScrollY, ScrollX uint8
	CurrentScanline  uint8
	LYCompare        uint8
	WindowY, WindowX uint8
	BGP, OBP0, OBP1  uint8

	dot      uint16
	statLine bool
	frames   uint64

	vRAM     [2][0x2000]uint8
	vRAMBank uint8
	oam      ram.RAM

	ColourPalette    *palette.CGBPalette
	ColourOBJPalette *palette.CGBPalette
	objPriority      uint8

	isGBC bool
	irq   *interrupts.Service

	// HBlankHook is called whenever a visible line enters HBlank.
	HBlankHook func()
}

// New creates a PPU decoding its registers on regs.
func New(irq *interrupts.Service, regs *types.HardwareRegisters, model types.Model) *PPU {
	p := &PPU{
		irq:              irq,
		oam:              ram.NewRAM(0xA0),
		isGBC:            model.IsCGB(),
		ColourPalette:    &palette.CGBPalette{},
		ColourOBJPalette: &palette.CGBPalette{},
	}
	p.registerHardware(regs)
	return p
}

func (p *PPU) registerHardware(regs *types.HardwareRegisters) {
	regs.RegisterHardware(
		types.LCDC,
		func(v uint8) {
			wasEnabled := p.Controller.Enabled()
			p.Controller = lcd.Controller(v)
			switch {
			case wasEnabled && !p.Controller.Enabled():
				// LY and the mode reset while the screen is off
				p.CurrentScanline = 0
				p.dot = 0
				p.Status.SetMode(lcd.HBlank)
				p.updateStatLine()
			case !wasEnabled && p.Controller.Enabled():
				p.dot = 0
				p.Status.SetMode(lcd.OAM)
				p.checkCoincidence()
			}
		},
		func() uint8 {
			return uint8(p.Controller)
		},
	)
	regs.RegisterHardware(
		types.STAT,
		func(v uint8) {
			p.Status.Write(v)
			p.updateStatLine()
		},
		func() uint8 {
			return p.Status.Read()
		},
	)
	regs.RegisterHardware(
		types.SCY,
		func(v uint8) {
			p.ScrollY = v
		},
		func() uint8 {
			return p.ScrollY
		},
	)
	regs.RegisterHardware(
		types.SCX,
		func(v uint8) {
			p.ScrollX = v
		},
		func() uint8 {
			return p.ScrollX
		},
	)
	regs.RegisterHardware(
		types.LY,
		types.NoWrite,
		func() uint8 {
			return p.CurrentScanline
		},
	)
	regs.RegisterHardware(
		types.LYC,
		func(v uint8) {
			p.LYCompare = v
			if p.Controller.Enabled() {
				p.checkCoincidence()
			}
		},
		func() uint8 {
			return p.LYCompare
		},
	)
	regs.RegisterHardware(
		types.BGP,
		func(v uint8) {
			p.BGP = v
		},
		func() uint8 {
			return p.BGP
		},
	)
	regs.RegisterHardware(
		types.OBP0,
		func(v uint8) {
			p.OBP0 = v
		},
		func() uint8 {
			return p.OBP0
		},
	)
	regs.RegisterHardware(
		types.OBP1,
		func(v uint8) {
			p.OBP1 = v
		},
		func() uint8 {
			return p.OBP1
		},
	)
	regs.RegisterHardware(
		types.WY,
		func(v uint8) {
			p.WindowY = v
		},
		func() uint8 {
			return p.WindowY
		},
	)
	regs.RegisterHardware(
		types.WX,
		func(v uint8) {
			p.WindowX = v
		},
		func() uint8 {
			return p.WindowX
		},
	)

	if !p.isGBC {
		return
	}

	regs.RegisterHardware(
		types.VBK,
		func(v uint8) {
			p.vRAMBank = v & types.Bit0
		},
		func() uint8 {
			return p.vRAMBank | 0xFE
		},
	)
	regs.RegisterHardware(
		types.BCPS,
		func(v uint8) {
			p.ColourPalette.SetIndex(v)
		},
		func() uint8 {
			return p.ColourPalette.Index.Read()
		},
	)
	regs.RegisterHardware(
		types.BCPD,
		func(v uint8) {
			p.ColourPalette.Write(v)
		},
		func() uint8 {
			return p.ColourPalette.Read()
		},
	)
	regs.RegisterHardware(
		types.OCPS,
		func(v uint8) {
			p.ColourOBJPalette.SetIndex(v)
		},
		func() uint8 {
			return p.ColourOBJPalette.Index.Read()
		},
	)
	regs.RegisterHardware(
		types.OCPD,
		func(v uint8) {
			p.ColourOBJPalette.Write(v)
		},
		func() uint8 {
			return p.ColourOBJPalette.Read()
		},
	)
	regs.RegisterHardware(
		types.OPRI,
		func(v uint8) {
			p.objPriority = v & types.Bit0
		},
		func() uint8 {
			return p.objPriority | 0xFE
		},
	)
}

// Tick advances the display by a single dot.
func (p *PPU) Tick() {
	if !p.Controller.Enabled() {
		return
	}

	p.dot++
	if p.dot == DotsPerLine {
		p.dot = 0
		p.CurrentScanline++
		if p.CurrentScanline == LinesPerFrame {
			p.CurrentScanline = 0
		}
		p.checkCoincidence()

		switch {
		case p.CurrentScanline == ScreenHeight:
			p.frames++
			p.setMode(lcd.VBlank)
			p.irq.Request(interrupts.VBlankFlag)
		case p.CurrentScanline < ScreenHeight:
			p.setMode(lcd.OAM)
		}
		return
	}

	if p.CurrentScanline >= ScreenHeight {
		return
	}
	switch p.dot {
	case oamScanDots:
		p.setMode(lcd.VRAM)
	case oamScanDots + transferDots:
		p.setMode(lcd.HBlank)
		if p.HBlankHook != nil {
			p.HBlankHook()
		}
	}
}

func (p *PPU) setMode(mode lcd.Mode) {
	p.Status.SetMode(mode)
	p.updateStatLine()
}

func (p *PPU) checkCoincidence() {
	p.Status.SetCoincidence(p.CurrentScanline == p.LYCompare)
	p.updateStatLine()
}

// updateStatLine requests the STAT interrupt on a rising edge of the
// STAT interrupt line.
func (p *PPU) updateStatLine() {
	line := p.Controller.Enabled() && p.Status.Line()
	if line && !p.statLine {
		p.irq.Request(interrupts.LCDFlag)
	}
	p.statLine = line
}

// Frames returns the number of frames that have entered VBlank.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// Read returns the value at address in VRAM (0x8000-0x9FFF) or
// OAM (0xFE00-0xFE9F).
func (p *PPU) Read(address uint16) uint8 {
	if address >= types.OAMStart {
		return p.oam.Read(address - types.OAMStart)
	}
	return p.vRAM[p.vRAMBank][address&0x1FFF]
}

// Write writes the value at address in VRAM or OAM.
func (p *PPU) Write(address uint16, value uint8) {
	if address >= types.OAMStart {
		p.oam.Write(address-types.OAMStart, value)
		return
	}
	p.vRAM[p.vRAMBank][address&0x1FFF] = value
}

// WriteOAM writes the byte at index of OAM, used by OAM DMA.
func (p *PPU) WriteOAM(index uint8, value uint8) {
	p.oam.Write(uint16(index), value)
}

// WriteVRAM writes to the selected VRAM bank at offset, used by
// VRAM DMA.
func (p *PPU) WriteVRAM(offset uint16, value uint8) {
	p.vRAM[p.vRAMBank][offset&0x1FFF] = value
}

// String describes the display state for the monitor.
func (p *PPU) String() string {
	c := p.Controller
	return fmt.Sprintf("LCDC=%02X STAT=%02X LY=%d LYC=%d mode=%s dot=%d on=%v bg=%v(map %04X data %04X) win=%v(map %04X) obj=%v(8x%d)",
		uint8(c), p.Status.Read(), p.CurrentScanline, p.LYCompare, lcd.ModeNames[p.Status.Mode()], p.dot,
		c.Enabled(), c.BackgroundEnabled(), c.BackgroundTileMapAddress(), c.TileDataAddress(),
		c.WindowEnabled(), c.WindowTileMapAddress(), c.SpriteEnabled(), c.SpriteSize())
}

func (p *PPU) Save(s *types.State) {
	s.Write8(uint8(p.Controller))
	s.Write8(uint8(p.Status))
	s.Write8(p.ScrollY)
	s.Write8(p.ScrollX)
	s.Write8(p.CurrentScanline)
	s.Write8(p.LYCompare)
	s.Write8(p.WindowY)
	s.Write8(p.WindowX)
	s.Write8(p.BGP)
	s.Write8(p.OBP0)
	s.Write8(p.OBP1)
	s.Write16(p.dot)
	s.WriteBool(p.statLine)
	s.WriteData(p.vRAM[0][:])
	s.WriteData(p.vRAM[1][:])
	s.Write8(p.vRAMBank)
	p.oam.Save(s)
	p.ColourPalette.Save(s)
	p.ColourOBJPalette.Save(s)
}
