// Package gameboy assembles the components of a Game Boy into a
// machine and drives it through the cycle scheduler.
package gameboy

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash"
	"github.com/thelolagemann/gbcore/internal/apu"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/scheduler"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/internal/timer"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed // 4.194304 MHz
	// CyclesPerFrame is the number of clock cycles per frame.
	CyclesPerFrame = ppu.CyclesPerFrame
)

// ErrBreakpoint is returned by the run methods when the CPU stops at a
// debug breakpoint (LD B, B with the Debug option).
var ErrBreakpoint = errors.New("breakpoint")

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	PPU        *ppu.PPU
	DMA        *ppu.DMA
	APU        *apu.APU
	Joypad     *joypad.State
	Interrupts *interrupts.Service
	Timer      *timer.Controller
	Serial     *serial.Controller
	Cartridge  *cartridge.Cartridge

	Scheduler *scheduler.Scheduler

	log.Logger

	model        types.Model
	ime          bool
	debug        bool
	serialDevice serial.Device
	serialOutput io.Writer
	serialDebug  *serial.Debugger

	deadline   bool
	frameLimit bool
	fault      error
}

// NewGameBoy returns a new GameBoy running rom. Unless AsModel is
// given, the model is chosen from the cartridge header.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{
		Logger: log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	cart, err := cartridge.New(rom, g.Logger)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}
	g.Cartridge = cart
	if g.model == types.Unset {
		g.model = types.DMGABC
		if cart.Header().GameboyColor() {
			g.model = types.CGBABC
		}
	}
	g.assemble()

	return g, nil
}

// assemble wires the components together, each decoding its own
// registers on a table owned by this machine.
func (g *GameBoy) assemble() {
	regs := types.NewHardwareRegisters()

	g.Interrupts = interrupts.NewService(regs)
	g.MMU = mmu.NewMMU(g.Cartridge, regs, g.model, g.Logger)
	g.PPU = ppu.New(g.Interrupts, regs, g.model)
	g.MMU.AttachVideo(g.PPU)
	g.DMA = ppu.NewDMA(g.MMU, g.PPU, regs)
	g.MMU.AttachDMA(g.DMA)
	g.Timer = timer.NewController(g.Interrupts, regs, g.model)
	g.Serial = serial.NewController(g.Interrupts, g.Timer, regs, g.model)
	g.Joypad = joypad.New(g.Interrupts, regs)
	g.APU = apu.NewAPU(regs, g.model)
	g.CPU = cpu.NewCPU(g.MMU, g.Interrupts, g.Timer, regs, g.model)
	g.CPU.Debug = g.debug

	components := scheduler.Components{
		CPU:     g.CPU,
		DMA:     g.DMA,
		Timer:   g.Timer,
		Serial:  g.Serial,
		Sound:   g.APU,
		Display: g.PPU,
	}
	if g.MMU.HDMA != nil {
		g.MMU.HDMA.AttachVRAM(g.PPU.WriteVRAM)
		g.PPU.HBlankHook = g.MMU.HDMA.SetHBlank
		components.VRAMDMA = g.MMU.HDMA
	}
	g.Scheduler = scheduler.NewScheduler(components)
	g.Scheduler.RegisterEvent(scheduler.Deadline, func() {
		g.deadline = true
	})
	g.Scheduler.RegisterEvent(scheduler.FrameLimit, func() {
		g.frameLimit = true
	})

	for _, r := range types.CommonIO {
		regs.Write(r.Address, r.Value)
	}
	g.Interrupts.IME = g.ime

	switch {
	case g.serialDevice != nil:
		g.Serial.Attach(g.serialDevice)
	case g.serialOutput != nil:
		g.serialDebug = serial.NewDebugger(g.serialOutput, g.Logger)
		g.Serial.Attach(g.serialDebug)
	}
}

// Model returns the model being emulated.
func (g *GameBoy) Model() types.Model {
	return g.model
}

// guard recovers a fault raised while the machine runs, returning it
// through err. The machine refuses to run after a fault.
func (g *GameBoy) guard(err *error) {
	r := recover()
	if r == nil {
		return
	}

	f, ok := r.(*types.Fault)
	if !ok {
		f = &types.Fault{Reason: fmt.Sprint(r)}
	}
	f.PC, f.Opcode, _ = g.CPU.LastInstruction()
	g.Errorf("%v", f)

	g.fault = f
	*err = f
}

// Step executes a single instruction, or dispatches a pending
// interrupt, returning the clock cycles it took.
func (g *GameBoy) Step() (cycles uint64, err error) {
	if g.fault != nil {
		return 0, g.fault
	}
	defer g.guard(&err)

	cycles = g.Scheduler.StepInstruction()
	if g.CPU.DebugBreakpoint {
		g.CPU.DebugBreakpoint = false
		return cycles, ErrBreakpoint
	}
	return cycles, nil
}

// RunCycles advances the machine by n clock cycles.
func (g *GameBoy) RunCycles(n uint64) (err error) {
	if g.fault != nil {
		return g.fault
	}
	if n == 0 {
		return nil
	}
	defer g.guard(&err)

	g.deadline = false
	g.Scheduler.ScheduleEvent(scheduler.Deadline, n)
	defer g.Scheduler.DescheduleEvent(scheduler.Deadline)

	for !g.deadline {
		g.Scheduler.Tick()
		if g.CPU.DebugBreakpoint {
			g.CPU.DebugBreakpoint = false
			return ErrBreakpoint
		}
	}
	return nil
}

// RunFrame runs until the display enters VBlank. While the LCD is
// disabled no frames are produced, so the run is capped at the length
// of a frame.
func (g *GameBoy) RunFrame() (err error) {
	if g.fault != nil {
		return g.fault
	}
	defer g.guard(&err)

	limit := uint64(CyclesPerFrame)
	if g.CPU.DoubleSpeed() {
		limit *= 2
	}
	g.frameLimit = false
	g.Scheduler.ScheduleEvent(scheduler.FrameLimit, limit)
	defer g.Scheduler.DescheduleEvent(scheduler.FrameLimit)

	for frame := g.PPU.Frames(); g.PPU.Frames() == frame && !g.frameLimit; {
		g.Scheduler.Tick()
		if g.CPU.DebugBreakpoint {
			g.CPU.DebugBreakpoint = false
			return ErrBreakpoint
		}
	}
	return nil
}

// Run runs frames until ctx is cancelled or the machine stops,
// returning the reason it stopped.
func (g *GameBoy) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.RunFrame(); err != nil {
			return err
		}
	}
}

// Press presses a button on the joypad.
func (g *GameBoy) Press(button joypad.Button) {
	g.Joypad.Press(button)
}

// Release releases a button on the joypad.
func (g *GameBoy) Release(button joypad.Button) {
	g.Joypad.Release(button)
}

// SerialOutput returns the bytes received by the serial debugger, if
// one was attached.
func (g *GameBoy) SerialOutput() []byte {
	if g.serialDebug == nil {
		return nil
	}
	return g.serialDebug.Output()
}

// Save writes the state of every component to s.
func (g *GameBoy) Save(s *types.State) {
	for _, c := range []types.Stater{
		g.CPU,
		g.MMU,
		g.PPU,
		g.DMA,
		g.Timer,
		g.Serial,
		g.Joypad,
		g.APU,
		g.Cartridge,
		g.Scheduler,
	} {
		c.Save(s)
	}
}

// Hash returns a fingerprint of the machine state, which is equal for
// two machines that have run the same ROM for the same number of
// cycles with the same inputs.
func (g *GameBoy) Hash() uint64 {
	s := types.NewState()
	g.Save(s)
	return xxhash.Sum64(s.Bytes())
}

// Close releases the cartridge.
func (g *GameBoy) Close() {
	g.Cartridge.Finish()
}

func (g *GameBoy) String() string {
	return fmt.Sprintf("%s %s\n%s", g.model, g.Cartridge.Header(), g.CPU)
}
