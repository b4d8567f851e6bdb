// Package apu provides the register file of the DMG and CGB audio
// processing unit. It models what software can observe: power gating
// through NR52, the read masks of every register, wave RAM, channel
// triggering and the length counters clocked by the frame sequencer.
// No samples are generated.
package apu

import "github.com/thelolagemann/gbcore/internal/types"

const (
	frameSequencerRate = 512
	// frameSequencerPeriod is the number of clock cycles per frame
	// sequencer step.
	frameSequencerPeriod = 4194304 / frameSequencerRate
)

// readMasks are ORed into the value read back from NR10-NR52, as
// unused and write only bits read as 1.
var readMasks = [0x17]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
}

// APU represents the audio processing unit. It comprises 4 channels: 2
// pulse channels, a wave channel and a noise channel, each controlled by
// a set of registers.
type APU struct {
	enabled bool

	registers [0x17]uint8 // NR10-NR52 as last written
	waveRAM   [16]uint8

	chan1, chan2, chan3, chan4 *channel

	frameSequencerCounter uint
	frameSequencerStep    uint8

	isGBC bool
}

// NewAPU returns a new APU, decoding its registers on regs.
func NewAPU(regs *types.HardwareRegisters, model types.Model) *APU {
	a := &APU{
		chan1:                 newChannel(types.Bit0, 64),
		chan2:                 newChannel(types.Bit1, 64),
		chan3:                 newChannel(types.Bit2, 256),
		chan4:                 newChannel(types.Bit3, 64),
		frameSequencerCounter: frameSequencerPeriod,
		isGBC:                 model.IsCGB(),
	}

	for addr := types.NR10; addr <= types.NR51; addr++ {
		if addr == 0xFF15 || addr == 0xFF1F {
			continue // unused
		}
		a.registerChannel(regs, addr)
	}
	regs.RegisterHardware(types.NR52, a.writeNR52, a.readNR52)

	for i := uint16(0); i < 16; i++ {
		offset := i
		regs.RegisterHardware(
			types.WaveRAM+offset,
			func(v uint8) {
				a.waveRAM[offset] = v
			},
			func() uint8 {
				return a.waveRAM[offset]
			},
		)
	}

	return a
}

func (a *APU) registerChannel(regs *types.HardwareRegisters, addr types.HardwareAddress) {
	index := addr - types.NR10
	regs.RegisterHardware(
		addr,
		func(v uint8) {
			if !a.enabled && !a.writableWhileOff(addr) {
				return
			}
			a.registers[index] = v
			a.write(addr, v)
		},
		func() uint8 {
			return a.registers[index] | readMasks[index]
		},
	)
}

// writableWhileOff reports whether the register accepts writes while
// the APU is powered off. The DMG keeps its length counters powered.
func (a *APU) writableWhileOff(addr types.HardwareAddress) bool {
	if a.isGBC {
		return false
	}
	switch addr {
	case types.NR11, types.NR21, types.NR31, types.NR41:
		return true
	}
	return false
}

// firstHalfOfLengthPeriod is true when the next frame sequencer step
// does not clock the length counters.
func (a *APU) firstHalfOfLengthPeriod() bool {
	return a.frameSequencerStep&1 == 1
}

func (a *APU) write(addr types.HardwareAddress, v uint8) {
	switch addr {
	case types.NR11:
		a.chan1.setLength(v & 0x3F)
	case types.NR12:
		a.chan1.setDAC(v&0xF8 != 0)
	case types.NR14:
		a.chan1.setControl(v, a.firstHalfOfLengthPeriod())
	case types.NR21:
		a.chan2.setLength(v & 0x3F)
	case types.NR22:
		a.chan2.setDAC(v&0xF8 != 0)
	case types.NR24:
		a.chan2.setControl(v, a.firstHalfOfLengthPeriod())
	case types.NR30:
		a.chan3.setDAC(v&types.Bit7 != 0)
	case types.NR31:
		a.chan3.setLength(v)
	case types.NR34:
		a.chan3.setControl(v, a.firstHalfOfLengthPeriod())
	case types.NR41:
		a.chan4.setLength(v & 0x3F)
	case types.NR42:
		a.chan4.setDAC(v&0xF8 != 0)
	case types.NR44:
		a.chan4.setControl(v, a.firstHalfOfLengthPeriod())
	}
}

func (a *APU) writeNR52(v uint8) {
	switch {
	case v&types.Bit7 == 0 && a.enabled:
		// power off, every register is cleared
		for i := range a.registers {
			a.registers[i] = 0
		}
		for _, c := range a.channels() {
			c.reset()
			if a.isGBC {
				c.lengthCounter = 0
			}
		}
		a.enabled = false
	case v&types.Bit7 != 0 && !a.enabled:
		a.enabled = true
		a.frameSequencerStep = 0
		a.frameSequencerCounter = frameSequencerPeriod
	}
}

func (a *APU) readNR52() uint8 {
	b := readMasks[types.NR52-types.NR10]
	if a.enabled {
		b |= types.Bit7
	}
	for _, c := range a.channels() {
		if c.enabled {
			b |= c.channelBit
		}
	}
	return b
}

func (a *APU) channels() [4]*channel {
	return [4]*channel{a.chan1, a.chan2, a.chan3, a.chan4}
}

// Tick advances the APU by a single clock cycle of the 4 MiHz clock.
func (a *APU) Tick() {
	if !a.enabled {
		return
	}
	if a.frameSequencerCounter--; a.frameSequencerCounter > 0 {
		return
	}
	a.frameSequencerCounter = frameSequencerPeriod

	// steps 0, 2, 4 and 6 clock the length counters, 2 and 6 the
	// sweep and 7 the envelopes, neither of which are modelled
	if a.frameSequencerStep&1 == 0 {
		for _, c := range a.channels() {
			c.lengthStep()
		}
	}
	a.frameSequencerStep = (a.frameSequencerStep + 1) & 7
}

// Enabled returns true if the APU is powered on.
func (a *APU) Enabled() bool {
	return a.enabled
}

var _ types.Stater = (*APU)(nil)

func (a *APU) Save(s *types.State) {
	s.WriteBool(a.enabled)
	s.WriteData(a.registers[:])
	s.WriteData(a.waveRAM[:])
	for _, c := range a.channels() {
		s.WriteBool(c.enabled)
		s.WriteBool(c.dacEnabled)
		s.Write16(uint16(c.lengthCounter))
		s.WriteBool(c.lengthCounterEnabled)
	}
	s.Write16(uint16(a.frameSequencerCounter))
	s.Write8(a.frameSequencerStep)
}
