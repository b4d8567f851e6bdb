package gameboy

import (
	"io"

	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance before it is assembled.
type Opt func(gb *GameBoy)

// Debug stops the run methods with ErrBreakpoint whenever the CPU
// executes LD B, B.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.debug = true
	}
}

// AsModel forces the model emulated, rather than the one the
// cartridge header asks for.
func AsModel(m types.Model) Opt {
	return func(gb *GameBoy) {
		gb.model = m
	}
}

func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = l
	}
}

// WithIME sets the interrupt master enable at boot.
func WithIME(ime bool) Opt {
	return func(gb *GameBoy) {
		gb.ime = ime
	}
}

// SerialDebugger captures every byte sent over the serial port,
// copying it to w if w is not nil. Test ROMs report their results
// this way.
func SerialDebugger(w io.Writer) Opt {
	return func(gb *GameBoy) {
		gb.serialOutput = w
		if w == nil {
			gb.serialOutput = io.Discard
		}
	}
}

// WithSerialDevice attaches d to the serial port.
func WithSerialDevice(d serial.Device) Opt {
	return func(gb *GameBoy) {
		gb.serialDevice = d
	}
}
