package serial

import (
	"io"

	"github.com/thelolagemann/gbcore/pkg/log"
)

// Device is a device that can be attached to the Controller.
type Device interface {
	Receive(bool)
	Send() bool
}

// nullDevice is an implementation of Device that
// simply returns true on Send and does nothing on
// Receive. This is most commonly used for when no
// device is attached to the Controller.
type nullDevice struct{}

// Receive does nothing.
func (n nullDevice) Receive(bool) {}

// Send always returns true.
func (n nullDevice) Send() bool { return true }

// Debugger is a Device that collects every byte sent to it, as test
// ROMs print their results over the link cable. It answers like an
// unplugged cable.
type Debugger struct {
	w     io.Writer
	log   log.Logger
	bits  uint8
	count uint8
	out   []byte
}

// NewDebugger returns a Debugger copying each byte to w, if w is not nil.
func NewDebugger(w io.Writer, l log.Logger) *Debugger {
	return &Debugger{w: w, log: log.WithComponent(l, "serial")}
}

// Receive shifts a bit in, most significant first.
func (d *Debugger) Receive(bit bool) {
	d.bits <<= 1
	if bit {
		d.bits |= 1
	}
	if d.count++; d.count < 8 {
		return
	}
	d.count = 0
	d.out = append(d.out, d.bits)
	d.log.Debugf("received 0x%02X", d.bits)
	if d.w != nil {
		if _, err := d.w.Write([]byte{d.bits}); err != nil {
			d.log.Errorf("writing serial output: %v", err)
		}
	}
}

func (d *Debugger) Send() bool { return true }

// Output returns every byte received so far.
func (d *Debugger) Output() []byte {
	return d.out
}
