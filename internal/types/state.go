package types

// State is a flat, append-only snapshot of the machine. It is
// only ever written: the machine fingerprints it to compare two
// runs, and the monitor prints that fingerprint.
type State struct {
	raw []byte
}

// Stater is implemented by every component that contributes to
// the machine snapshot.
type Stater interface {
	Save(*State) // Save appends the component state
}

// NewState creates a new, empty state.
func NewState() *State {
	return &State{
		raw: make([]byte, 0, 0x10000),
	}
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

// Write16 writes value little-endian, matching the bus order.
func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
}

func (s *State) Write64(value uint64) {
	s.Write32(uint32(value))
	s.Write32(uint32(value >> 32))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

// Bytes returns the snapshot written so far.
func (s *State) Bytes() []byte {
	return s.raw
}

// Len returns the number of bytes written so far.
func (s *State) Len() int {
	return len(s.raw)
}
