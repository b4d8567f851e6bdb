package cpu

// Register represents a single 8-bit register of the CPU.
type Register = uint8

// RegisterPair composes two 8-bit registers into a single
// 16-bit value. The first register holds the high byte.
type RegisterPair struct {
	High *Register
	Low  *Register

	// mask is applied to the low byte on writes. Only AF uses
	// it, as the lower nibble of F always reads as zero.
	mask uint8
}

// Uint16 returns the value of the RegisterPair.
func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// SetUint16 sets the value of the RegisterPair.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High = Register(value >> 8)
	*r.Low = Register(value) & r.mask
}

// Registers holds the 8-bit registers of the CPU, and the 16-bit
// pairs composed from them.
type Registers struct {
	A Register
	B Register
	C Register
	D Register
	E Register
	F Register
	H Register
	L Register

	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
	AF *RegisterPair

	// registerPointers is indexed by the 3-bit register field of
	// an opcode (B, C, D, E, H, L, (HL), A). Slot 6 points at
	// hlValue, a scratch byte holding the value read from (HL).
	registerPointers [8]*Register
	hlValue          Register
}

func (r *Registers) initPairs() {
	r.BC = &RegisterPair{High: &r.B, Low: &r.C, mask: 0xFF}
	r.DE = &RegisterPair{High: &r.D, Low: &r.E, mask: 0xFF}
	r.HL = &RegisterPair{High: &r.H, Low: &r.L, mask: 0xFF}
	r.AF = &RegisterPair{High: &r.A, Low: &r.F, mask: 0xF0}

	r.registerPointers = [8]*Register{&r.B, &r.C, &r.D, &r.E, &r.H, &r.L, &r.hlValue, &r.A}
}

// registerNames follows the order of registerPointers.
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
