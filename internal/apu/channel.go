package apu

// channel holds the state of a sound channel visible to software: its
// DAC, its status bit in NR52 and its length counter.
type channel struct {
	enabled    bool
	dacEnabled bool

	// NRx1
	lengthCounter uint
	maxLength     uint

	// NRx4
	lengthCounterEnabled bool

	channelBit uint8
}

func newChannel(bit uint8, maxLength uint) *channel {
	return &channel{
		channelBit: bit,
		maxLength:  maxLength,
	}
}

func (c *channel) setLength(v uint8) {
	c.lengthCounter = c.maxLength - uint(v)
}

func (c *channel) setDAC(on bool) {
	c.dacEnabled = on
	if !on {
		c.enabled = false
	}
}

// setControl handles a write to NRx4. Enabling the length counter in
// the half of the frame sequencer period that does not clock it
// clocks it once.
func (c *channel) setControl(v uint8, firstHalfOfLengthPeriod bool) {
	lengthCounterEnabled := v&0x40 != 0
	if firstHalfOfLengthPeriod && !c.lengthCounterEnabled && lengthCounterEnabled && c.lengthCounter > 0 {
		c.lengthCounter--
		c.enabled = c.enabled && c.lengthCounter > 0
	}
	c.lengthCounterEnabled = lengthCounterEnabled

	if v&0x80 != 0 {
		// trigger
		c.enabled = c.dacEnabled
		if c.lengthCounter == 0 {
			c.lengthCounter = c.maxLength
			if c.lengthCounterEnabled && firstHalfOfLengthPeriod {
				c.lengthCounter--
			}
		}
	}
}

func (c *channel) lengthStep() {
	if c.lengthCounterEnabled && c.lengthCounter > 0 {
		c.lengthCounter--
		if c.lengthCounter == 0 {
			c.enabled = false
		}
	}
}

func (c *channel) reset() {
	c.enabled = false
	c.dacEnabled = false
	c.lengthCounterEnabled = false
}
