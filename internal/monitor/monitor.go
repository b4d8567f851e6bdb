// Package monitor provides an interactive command interpreter for
// inspecting and driving a machine: stepping, running to breakpoints,
// dumping memory, disassembling and setting registers.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/gameboy"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/pkg/utils"
)

var errQuit = errors.New("quit")

// Monitor drives a GameBoy from text commands.
type Monitor struct {
	gb   *gameboy.GameBoy
	opts []gameboy.Opt

	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Command
	lastArgs    []string

	settings    *settings
	breakpoints map[uint16]bool
	buttons     *prefixtree.Tree[joypad.Button]
	help        *prefixtree.Tree[*cmd.CommandDescriptor]
}

// New returns a Monitor driving gb. opts are used to assemble the
// machines created by the load command.
func New(gb *gameboy.GameBoy, opts ...gameboy.Opt) *Monitor {
	m := &Monitor{
		gb:          gb,
		opts:        opts,
		settings:    newSettings(),
		breakpoints: make(map[uint16]bool),
		buttons:     prefixtree.New[joypad.Button](),
		help:        prefixtree.New[*cmd.CommandDescriptor](),
	}
	for name, button := range joypad.ButtonNames {
		m.buttons.Add(name, button)
	}
	for i := range commands {
		m.help.Add(commands[i].Name, &commands[i])
	}
	m.settings.NextDisasmAddr = gb.CPU.PC
	return m
}

// GameBoy returns the machine currently being driven, which changes
// after a load.
func (m *Monitor) GameBoy() *gameboy.GameBoy {
	return m.gb
}

// RunCommands reads commands from r until it is exhausted or the quit
// command is entered, writing the results to w. If interactive, a
// prompt is displayed before each command. An empty line repeats the
// previous command.
func (m *Monitor) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	m.input = bufio.NewScanner(r)
	m.output = bufio.NewWriter(w)
	m.interactive = interactive
	defer m.flush()

	m.displayPC()

	for {
		m.prompt()

		line, err := m.getLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var c *cmd.Command
		var args []string
		if strings.TrimSpace(line) != "" {
			c, args, err = cmds.LookupCommand(line)
			switch {
			case err == cmd.ErrNotFound:
				m.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				m.println("Command is ambiguous.")
				continue
			case err != nil:
				m.printf("ERROR: %v.\n", err)
				continue
			}
		} else if m.lastCmd != nil {
			c, args = m.lastCmd, m.lastArgs
		}

		if c == nil {
			continue
		}
		m.lastCmd, m.lastArgs = c, args

		handler := c.Data.(func(*Monitor, *cmd.Command, []string) error)
		if err := handler(m, c, args); err != nil {
			if err == errQuit {
				return nil
			}
			return err
		}
	}
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.output, format, args...)
	m.flush()
}

func (m *Monitor) println(args ...any) {
	fmt.Fprintln(m.output, args...)
	m.flush()
}

func (m *Monitor) flush() {
	m.output.Flush()
}

func (m *Monitor) getLine() (string, error) {
	if m.input.Scan() {
		return m.input.Text(), nil
	}
	if m.input.Err() != nil {
		return "", m.input.Err()
	}
	return "", io.EOF
}

func (m *Monitor) prompt() {
	if m.interactive {
		m.printf("> ")
	}
}

func (m *Monitor) displayPC() {
	if m.interactive {
		m.println(m.disassemble(m.gb.CPU.PC))
	}
}

func (m *Monitor) usage(c *cmd.Command) {
	m.printf("Usage: %s\n", c.Usage)
}

// parseValue parses a number. A $ or 0x prefix marks hexadecimal, as
// does the HexMode setting.
func (m *Monitor) parseValue(s string) (uint64, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case m.settings.HexMode:
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// parseAddress parses an address, where '.' is the PC.
func (m *Monitor) parseAddress(s string) (uint16, error) {
	if s == "." {
		return m.gb.CPU.PC, nil
	}
	v, err := m.parseValue(s)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, fmt.Errorf("address $%X out of range", v)
	}
	return uint16(v), nil
}

// parseCount parses an optional count argument, clamped to [1, max].
func (m *Monitor) parseCount(args []string, i int, def, max int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := m.parseValue(args[i])
	if err != nil {
		return 0, err
	}
	return utils.Clamp(1, int(utils.Clamp(0, v, 1<<20)), max), nil
}

func (m *Monitor) disassemble(addr uint16) string {
	text, length := cpu.Disassemble(m.gb.MMU.Peek, addr)
	var raw strings.Builder
	for i := uint16(0); i < uint16(length); i++ {
		fmt.Fprintf(&raw, "%02X ", m.gb.MMU.Peek(addr+i))
	}
	marker := " "
	if m.breakpoints[addr] {
		marker = "*"
	}
	return fmt.Sprintf("%s%04X  %-9s %s", marker, addr, raw.String(), text)
}

func (m *Monitor) cmdHelp(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		m.println("Commands:")
		for _, d := range commands {
			m.printf("    %-12s %s\n", d.Name, d.Brief)
		}
		return nil
	}

	d, err := m.help.FindValue(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	m.printf("Usage: %s\n\n%s\n", d.Usage, d.Description)
	return nil
}

func (m *Monitor) cmdBreakpoint(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		if len(m.breakpoints) == 0 {
			m.println("No breakpoints set.")
		}
		for addr := 0; addr <= 0xFFFF; addr++ {
			if m.breakpoints[uint16(addr)] {
				m.println(m.disassemble(uint16(addr)))
			}
		}
		return nil
	}

	addr, err := m.parseAddress(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	m.breakpoints[addr] = true
	m.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (m *Monitor) cmdClear(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		m.usage(c)
		return nil
	}
	addr, err := m.parseAddress(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	if !m.breakpoints[addr] {
		m.printf("No breakpoint at $%04X.\n", addr)
		return nil
	}
	delete(m.breakpoints, addr)
	m.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (m *Monitor) cmdDisassemble(c *cmd.Command, args []string) error {
	addr := m.settings.NextDisasmAddr
	if len(args) > 0 {
		a, err := m.parseAddress(args[0])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		addr = a
	}
	lines, err := m.parseCount(args, 1, m.settings.DisasmLines, 256)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	for i := 0; i < lines; i++ {
		m.println(m.disassemble(addr))
		_, length := cpu.Disassemble(m.gb.MMU.Peek, addr)
		addr += uint16(length)
	}

	m.settings.NextDisasmAddr = addr
	m.lastArgs = []string{fmt.Sprintf("$%04X", addr), strconv.Itoa(lines)}
	return nil
}

func (m *Monitor) cmdMemory(c *cmd.Command, args []string) error {
	addr := m.settings.NextMemDumpAddr
	if len(args) > 0 {
		a, err := m.parseAddress(args[0])
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		addr = a
	}
	count, err := m.parseCount(args, 1, m.settings.MemDumpBytes, 0x10000)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	for i := 0; i < count; i += 16 {
		var hex, ascii strings.Builder
		for j := 0; j < 16 && i+j < count; j++ {
			v := m.gb.MMU.Peek(addr + uint16(i+j))
			fmt.Fprintf(&hex, "%02X ", v)
			if v >= 0x20 && v < 0x7F {
				ascii.WriteByte(v)
			} else {
				ascii.WriteByte('.')
			}
		}
		m.printf("%04X  %-48s %s\n", addr+uint16(i), hex.String(), ascii.String())
	}

	m.settings.NextMemDumpAddr = addr + uint16(count)
	m.lastArgs = []string{fmt.Sprintf("$%04X", m.settings.NextMemDumpAddr), strconv.Itoa(count)}
	return nil
}

func (m *Monitor) cmdRegisters(c *cmd.Command, args []string) error {
	g := m.gb
	m.println(g.CPU)
	m.printf("Z:%s N:%s H:%s C:%s  IF:%02X IE:%02X %s  halted:%v double speed:%v\n",
		utils.BoolToString(g.CPU.IsFlagSet(cpu.FlagZero)),
		utils.BoolToString(g.CPU.IsFlagSet(cpu.FlagSubtract)),
		utils.BoolToString(g.CPU.IsFlagSet(cpu.FlagHalfCarry)),
		utils.BoolToString(g.CPU.IsFlagSet(cpu.FlagCarry)),
		g.Interrupts.Flag, g.Interrupts.Enable, g.Interrupts.State(),
		g.CPU.Halted(), g.CPU.DoubleSpeed())
	m.println(m.disassemble(g.CPU.PC))
	return nil
}

func (m *Monitor) cmdLCD(c *cmd.Command, args []string) error {
	m.println(m.gb.PPU)
	m.printf("frames: %d  cycle: %d\n", m.gb.PPU.Frames(), m.gb.Scheduler.Cycle())
	return nil
}

func (m *Monitor) cmdHash(c *cmd.Command, args []string) error {
	m.printf("%016X\n", m.gb.Hash())
	return nil
}

func (m *Monitor) cmdStep(c *cmd.Command, args []string) error {
	count, err := m.parseCount(args, 0, 1, 1<<20)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	for i := 0; i < count; i++ {
		pc := m.gb.CPU.PC
		cycles, err := m.gb.Step()
		if i >= count-m.settings.MaxStepLines {
			m.printf("%-36s ; %d cycles\n", m.disassemble(pc), cycles)
		}
		if err != nil {
			m.printf("Stopped: %v\n", err)
			break
		}
	}

	m.settings.NextDisasmAddr = m.gb.CPU.PC
	m.println(m.disassemble(m.gb.CPU.PC))
	return nil
}

func (m *Monitor) cmdFrame(c *cmd.Command, args []string) error {
	if err := m.gb.RunFrame(); err != nil {
		m.printf("Stopped: %v\n", err)
	}
	m.settings.NextDisasmAddr = m.gb.CPU.PC
	m.displayPC()
	return nil
}

func (m *Monitor) cmdRun(c *cmd.Command, args []string) error {
	frames, err := m.parseCount(args, 0, m.settings.RunFrames, 60*60*60)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	g := m.gb
	start := g.PPU.Frames()
	if len(m.breakpoints) == 0 {
		for i := 0; i < frames && err == nil; i++ {
			err = g.RunFrame()
		}
	} else {
		limit := g.Scheduler.Cycle() + uint64(frames)*gameboy.CyclesPerFrame
		for first := true; g.Scheduler.Cycle() < limit; first = false {
			if !first && m.breakpoints[g.CPU.PC] {
				m.printf("Breakpoint at $%04X.\n", g.CPU.PC)
				break
			}
			if _, err = g.Step(); err != nil {
				break
			}
		}
	}
	if err != nil {
		m.printf("Stopped: %v\n", err)
	}
	m.printf("Ran %d frames.\n", g.PPU.Frames()-start)

	m.settings.NextDisasmAddr = g.CPU.PC
	m.println(m.disassemble(g.CPU.PC))
	return nil
}

func (m *Monitor) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		m.println("Settings:")
		m.settings.Display(m.output)
		m.flush()
		return nil
	case 1:
		m.usage(c)
		return nil
	}

	key, value := strings.ToLower(args[0]), args[1]
	if m.setRegister(key, value) {
		return nil
	}

	var v any
	switch m.settings.Kind(key) {
	case reflect.Invalid:
		m.printf("Unknown register or setting %q.\n", key)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		v = b
	default:
		n, err := m.parseValue(value)
		if err != nil {
			m.printf("%v\n", err)
			return nil
		}
		v = n
	}

	name, err := m.settings.Set(key, v)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	m.printf("Setting %s updated.\n", name)
	return nil
}

// setRegister sets the CPU register named key, returning false if key
// names no register.
func (m *Monitor) setRegister(key, value string) bool {
	r := &m.gb.CPU.Registers
	bytes := map[string]*uint8{"a": &r.A, "f": &r.F, "b": &r.B, "c": &r.C, "d": &r.D, "e": &r.E, "h": &r.H, "l": &r.L}
	pairs := map[string]*cpu.RegisterPair{"af": r.AF, "bc": r.BC, "de": r.DE, "hl": r.HL}

	_, isByte := bytes[key]
	_, isPair := pairs[key]
	if !isByte && !isPair && key != "pc" && key != "sp" {
		return false
	}

	v, err := m.parseValue(value)
	if err != nil {
		m.printf("%v\n", err)
		return true
	}
	switch {
	case isByte:
		*bytes[key] = uint8(v)
		if key == "f" {
			r.F &= 0xF0
		}
	case isPair:
		pairs[key].SetUint16(uint16(v))
		r.F &= 0xF0
	case key == "pc":
		m.gb.CPU.PC = uint16(v)
		m.settings.NextDisasmAddr = m.gb.CPU.PC
	case key == "sp":
		m.gb.CPU.SP = uint16(v)
	}
	m.printf("Register %s set to $%X.\n", strings.ToUpper(key), v)
	return true
}

func (m *Monitor) cmdLoad(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		m.usage(c)
		return nil
	}

	rom, err := utils.LoadFile(strings.Join(args, " "))
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}
	gb, err := gameboy.NewGameBoy(rom, m.opts...)
	if err != nil {
		m.printf("%v\n", err)
		return nil
	}

	m.gb.Close()
	m.gb = gb
	m.breakpoints = make(map[uint16]bool)
	m.settings.NextDisasmAddr = gb.CPU.PC
	m.settings.NextMemDumpAddr = 0
	m.printf("Loaded %s (%s).\n", gb.Cartridge.Title(), gb.Model())
	return nil
}

func (m *Monitor) button(c *cmd.Command, args []string) (joypad.Button, bool) {
	if len(args) == 0 {
		m.usage(c)
		return 0, false
	}
	b, err := m.buttons.FindValue(strings.ToLower(args[0]))
	if err != nil {
		m.printf("Unknown button %q.\n", args[0])
		return 0, false
	}
	return b, true
}

func (m *Monitor) cmdPress(c *cmd.Command, args []string) error {
	if b, ok := m.button(c, args); ok {
		m.gb.Press(b)
	}
	return nil
}

func (m *Monitor) cmdRelease(c *cmd.Command, args []string) error {
	if b, ok := m.button(c, args); ok {
		m.gb.Release(b)
	}
	return nil
}

func (m *Monitor) cmdQuit(c *cmd.Command, args []string) error {
	return errQuit
}
