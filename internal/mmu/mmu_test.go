package mmu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

type testCart struct {
	rom [0x8000]uint8
	ram [0x2000]uint8
}

func (c *testCart) Init() bool { return true }
func (c *testCart) Finish()    {}

func (c *testCart) Read(address uint16) uint8 {
	if address < 0x8000 {
		return c.rom[address]
	}
	return c.ram[address&0x1FFF]
}

func (c *testCart) Write(address uint16, value uint8) {
	if address >= 0xA000 {
		c.ram[address&0x1FFF] = value
	}
}

type testVideo map[uint16]uint8

func (v testVideo) Read(address uint16) uint8         { return v[address] }
func (v testVideo) Write(address uint16, value uint8) { v[address] = value }

type testLock bool

func (l *testLock) IsTransferring() bool { return bool(*l) }

func newTestMMU(model types.Model) (*MMU, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	m := NewMMU(&testCart{}, types.NewHardwareRegisters(), model, log.NewWithWriter(buf, logrus.DebugLevel))
	m.AttachVideo(testVideo{})
	return m, buf
}

func TestMMU_Regions(t *testing.T) {
	m, _ := newTestMMU(types.DMGABC)
	m.Cart.(*testCart).rom[0x4123] = 0x42
	for _, tt := range []struct {
		name    string
		address uint16
	}{
		{"external RAM", 0xA000},
		{"work RAM bank 0", 0xC000},
		{"work RAM bank 1", 0xDFFF},
		{"VRAM", 0x8010},
		{"OAM", 0xFE9F},
		{"HRAM", 0xFF80},
		{"HRAM end", 0xFFFE},
	} {
		t.Run(tt.name, func(t *testing.T) {
			m.Write(tt.address, 0xA5)
			if got := m.Read(tt.address); got != 0xA5 {
				t.Errorf("expected 0xA5, got 0x%02X", got)
			}
		})
	}

	t.Run("ROM", func(t *testing.T) {
		if got := m.Read(0x4123); got != 0x42 {
			t.Errorf("expected 0x42, got 0x%02X", got)
		}
	})
}

func TestMMU_Echo(t *testing.T) {
	m, _ := newTestMMU(types.DMGABC)
	m.Write(0xC010, 0x12)
	if got := m.Read(0xE010); got != 0x12 {
		t.Errorf("expected 0xE010 to echo 0xC010, got 0x%02X", got)
	}
	m.Write(0xE010, 0x34)
	if got := m.Read(0xC010); got != 0x34 {
		t.Errorf("expected a write to 0xE010 to land at 0xC010, got 0x%02X", got)
	}
	m.Write(0xFDFF, 0x56)
	if got := m.Read(0xDDFF); got != 0x56 {
		t.Errorf("expected 0xFDFF to echo 0xDDFF, got 0x%02X", got)
	}
}

func TestMMU_Floating(t *testing.T) {
	m, buf := newTestMMU(types.DMGABC)

	t.Run("unusable", func(t *testing.T) {
		buf.Reset()
		m.Write(0xFEA0, 0x12)
		for i := 0; i < 3; i++ {
			if got := m.Read(0xFEA0); got != 0xFF {
				t.Errorf("expected 0xFF, got 0x%02X", got)
			}
		}
		if n := strings.Count(buf.String(), "level=warning"); n != 1 {
			t.Errorf("expected 1 warning, got %d: %s", n, buf.String())
		}
		if !strings.Contains(buf.String(), "component=mmu") {
			t.Errorf("expected the component field, got %s", buf.String())
		}
	})
	t.Run("undecoded I/O", func(t *testing.T) {
		buf.Reset()
		if got := m.Read(0xFF4C); got != 0xFF {
			t.Errorf("expected 0xFF, got 0x%02X", got)
		}
		m.Write(0xFF7F, 0x12)
		if got := m.Read(0xFF7F); got != 0xFF {
			t.Errorf("expected the write to be dropped, got 0x%02X", got)
		}
		if n := strings.Count(buf.String(), "level=warning"); n != 2 {
			t.Errorf("expected 2 warnings, got %d: %s", n, buf.String())
		}
	})
	t.Run("CGB registers on DMG", func(t *testing.T) {
		if got := m.Read(types.SVBK); got != 0xFF {
			t.Errorf("expected SVBK to be undecoded, got 0x%02X", got)
		}
	})
}

func TestMMU_Registers(t *testing.T) {
	m, _ := newTestMMU(types.DMGABC)
	var latched uint8
	m.registers.RegisterHardware(types.SB, func(v uint8) { latched = v }, func() uint8 { return latched })
	m.registers.RegisterHardware(types.IE, func(v uint8) { latched = v }, func() uint8 { return latched })

	m.Write(types.SB, 0x99)
	if got := m.Read(types.SB); got != 0x99 {
		t.Errorf("expected SB=0x99, got 0x%02X", got)
	}
	m.Write(0xFFFF, 0x1F)
	if got := m.Read(0xFFFF); got != 0x1F {
		t.Errorf("expected IE=0x1F, got 0x%02X", got)
	}
}

func TestMMU_Word(t *testing.T) {
	m, _ := newTestMMU(types.DMGABC)
	m.Write16(0xC000, 0xBEEF)
	if m.Read(0xC000) != 0xEF || m.Read(0xC001) != 0xBE {
		t.Errorf("expected the low byte first")
	}
	if got := m.Read16(0xC000); got != 0xBEEF {
		t.Errorf("expected 0xBEEF, got 0x%04X", got)
	}
}

func expectFault(t *testing.T, address uint16, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		fault, ok := r.(*types.Fault)
		if !ok {
			t.Fatalf("expected a fault, got %v", r)
		}
		if fault.Address != address {
			t.Errorf("expected a fault at 0x%04X, got 0x%04X", address, fault.Address)
		}
	}()
	f()
}

func TestMMU_DMALock(t *testing.T) {
	m, _ := newTestMMU(types.DMGABC)
	lock := testLock(true)
	m.AttachDMA(&lock)

	for _, address := range []uint16{0x0000, 0x8000, 0xC000, 0xE000, 0xFE00, 0xFEFF} {
		expectFault(t, address, func() { m.Read(address) })
		expectFault(t, address, func() { m.Write(address, 0) })
	}

	// HRAM, I/O and IE stay reachable
	m.Write(0xFF80, 0x12)
	if m.Read(0xFF80) != 0x12 {
		t.Errorf("expected HRAM to be accessible")
	}
	m.Read(0xFF4C)
	m.Read(0xFFFF)

	// the transfer itself reads around the lock
	m.wRAM.Write(0xC000, 0x77)
	if m.Peek(0xC000) != 0x77 {
		t.Errorf("expected Peek to bypass the lock")
	}

	lock = false
	if m.Read(0xC000) != 0x77 {
		t.Errorf("expected the bus to be released")
	}
}

func TestWRAM_Banks(t *testing.T) {
	m, _ := newTestMMU(types.CGBABC)
	for bank := uint8(0); bank < 8; bank++ {
		m.Write(types.SVBK, bank)
		m.Write(0xD000, bank+0x10)
	}
	m.Write(types.SVBK, 0)
	if got := m.Read(types.SVBK); got != 0xF9 {
		t.Errorf("expected bank 0 to select 1, got 0x%02X", got)
	}
	for bank := uint8(1); bank < 8; bank++ {
		m.Write(types.SVBK, bank)
		if got := m.Read(0xD000); got != bank+0x10 {
			t.Errorf("bank %d: expected 0x%02X, got 0x%02X", bank, bank+0x10, got)
		}
		if got := m.Read(0xF000); got != bank+0x10 {
			t.Errorf("bank %d: expected the echo to follow SVBK, got 0x%02X", bank, got)
		}
	}
}

func TestHDMA(t *testing.T) {
	setup := func(t *testing.T) (*MMU, map[uint16]uint8) {
		m, _ := newTestMMU(types.CGBABC)
		vram := make(map[uint16]uint8)
		m.HDMA.AttachVRAM(func(a uint16, v uint8) { vram[a] = v })
		for i := uint16(0); i < 0x40; i++ {
			m.Write(0xC100+i, uint8(i)+1)
		}
		m.Write(types.HDMA1, 0xC1)
		m.Write(types.HDMA2, 0x00)
		m.Write(types.HDMA3, 0x81) // upper bits ignored
		m.Write(types.HDMA4, 0x00)
		return m, vram
	}

	t.Run("general purpose", func(t *testing.T) {
		m, vram := setup(t)
		m.Write(types.HDMA5, 0x01) // 2 blocks
		blocks := 0
		for m.HDMA.IsCopying() {
			m.HDMA.CopyBlock()
			blocks++
		}
		if blocks != 2 {
			t.Errorf("expected 2 blocks, got %d", blocks)
		}
		for i := uint16(0); i < 0x20; i++ {
			if vram[0x0100+i] != uint8(i)+1 {
				t.Fatalf("0x%04X: expected 0x%02X, got 0x%02X", 0x8100+i, i+1, vram[0x0100+i])
			}
		}
		if got := m.Read(types.HDMA5); got != 0xFF {
			t.Errorf("expected HDMA5=0xFF when done, got 0x%02X", got)
		}
	})
	t.Run("hblank", func(t *testing.T) {
		m, vram := setup(t)
		m.Write(types.HDMA5, 0x82) // 3 blocks
		if m.HDMA.IsCopying() {
			t.Fatalf("expected the transfer to wait for HBlank")
		}
		m.HDMA.SetHBlank()
		m.HDMA.CopyBlock()
		if m.HDMA.IsCopying() {
			t.Errorf("expected a single block per HBlank")
		}
		if got := m.Read(types.HDMA5); got != 0x01 {
			t.Errorf("expected 2 blocks remaining, got 0x%02X", got)
		}
		if vram[0x010F] != 0x10 || vram[0x0110] != 0 {
			t.Errorf("expected exactly one block copied")
		}

		m.Write(types.HDMA5, 0x00) // cancel
		if got := m.Read(types.HDMA5); got != 0x81 {
			t.Errorf("expected the cancelled transfer to report 0x81, got 0x%02X", got)
		}
		m.HDMA.SetHBlank()
		if m.HDMA.IsCopying() {
			t.Errorf("expected no copying after cancelling")
		}
	})
}
