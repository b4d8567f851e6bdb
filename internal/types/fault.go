package types

import "fmt"

// Fault is a condition the hardware does not define, or a fault in
// the emulator's own bookkeeping, from which there is no sensible
// recovery: an invalid opcode, a bus access while OAM DMA holds the
// bus, or an interrupt acknowledged out of order.
//
// Components raise a Fault by panicking with it (see Fatalf). The
// machine recovers it at its boundary, fills in the location of the
// instruction being executed and returns it as an error.
type Fault struct {
	Reason  string
	Address uint16 // bus address involved, if any
	PC      uint16 // address of the instruction being executed
	Opcode  uint8  // opcode of the instruction being executed
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fatal: %s (pc=0x%04X opcode=0x%02X address=0x%04X)", f.Reason, f.PC, f.Opcode, f.Address)
}

// Fatalf raises a Fault for the given bus address.
func Fatalf(address uint16, format string, args ...any) {
	panic(&Fault{
		Reason:  fmt.Sprintf(format, args...),
		Address: address,
	})
}
