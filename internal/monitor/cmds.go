package monitor

import "github.com/beevik/cmd"

var (
	cmds *cmd.Tree

	// commands lists every monitor command, in the order help shows them.
	commands []cmd.CommandDescriptor
)

func init() {
	commands = []cmd.CommandDescriptor{
		{
			Name:        "help",
			Brief:       "Display help for a command",
			Description: "Display the list of commands, or the help for a single command.",
			Usage:       "help [<command>]",
			Data:        (*Monitor).cmdHelp,
		},
		{
			Name:  "breakpoint",
			Brief: "Add a breakpoint or list breakpoints",
			Description: "Stop the run command before the instruction at the" +
				" address executes. With no address, list every breakpoint.",
			Usage: "breakpoint [<address>]",
			Data:  (*Monitor).cmdBreakpoint,
		},
		{
			Name:        "clear",
			Brief:       "Remove a breakpoint",
			Description: "Remove the breakpoint at the address.",
			Usage:       "clear <address>",
			Data:        (*Monitor).cmdClear,
		},
		{
			Name:  "disassemble",
			Brief: "Disassemble code",
			Description: "Disassemble instructions starting at the address, or" +
				" where the last disassembly left off. '.' is the PC.",
			Usage: "disassemble [<address>] [<lines>]",
			Data:  (*Monitor).cmdDisassemble,
		},
		{
			Name:        "frame",
			Brief:       "Run a single frame",
			Description: "Run until the display next enters VBlank.",
			Usage:       "frame",
			Data:        (*Monitor).cmdFrame,
		},
		{
			Name:  "hash",
			Brief: "Display the state fingerprint",
			Description: "Display a hash of the machine state. Two machines" +
				" with equal hashes behave identically from then on.",
			Usage: "hash",
			Data:  (*Monitor).cmdHash,
		},
		{
			Name:        "lcd",
			Brief:       "Display the LCD registers",
			Description: "Display the LCD control and status registers, and the display timing.",
			Usage:       "lcd",
			Data:        (*Monitor).cmdLCD,
		},
		{
			Name:  "load",
			Brief: "Load a ROM",
			Description: "Load a ROM image, or an archive holding one, and" +
				" reset the machine to run it.",
			Usage: "load <filename>",
			Data:  (*Monitor).cmdLoad,
		},
		{
			Name:  "memory",
			Brief: "Dump memory",
			Description: "Dump memory starting at the address, or where the" +
				" last dump left off. Reads have no side effects.",
			Usage: "memory [<address>] [<bytes>]",
			Data:  (*Monitor).cmdMemory,
		},
		{
			Name:        "press",
			Brief:       "Press a button",
			Description: "Hold a joypad button: a, b, select, start, right, left, up or down.",
			Usage:       "press <button>",
			Data:        (*Monitor).cmdPress,
		},
		{
			Name:        "quit",
			Brief:       "Quit the monitor",
			Description: "Quit the monitor.",
			Usage:       "quit",
			Data:        (*Monitor).cmdQuit,
		},
		{
			Name:        "registers",
			Brief:       "Display the CPU registers",
			Description: "Display the CPU registers, flags and interrupt state.",
			Usage:       "registers",
			Data:        (*Monitor).cmdRegisters,
		},
		{
			Name:        "release",
			Brief:       "Release a button",
			Description: "Release a held joypad button.",
			Usage:       "release <button>",
			Data:        (*Monitor).cmdRelease,
		},
		{
			Name:  "run",
			Brief: "Run the machine",
			Description: "Run for a number of frames, stopping early at a" +
				" breakpoint or a fault.",
			Usage: "run [<frames>]",
			Data:  (*Monitor).cmdRun,
		},
		{
			Name:  "set",
			Brief: "Set a register or setting",
			Description: "Set a CPU register (a, f, b, c, d, e, h, l, af, bc," +
				" de, hl, sp, pc) or a monitor setting. With no arguments," +
				" display the settings.",
			Usage: "set [<name> <value>]",
			Data:  (*Monitor).cmdSet,
		},
		{
			Name:        "step",
			Brief:       "Step instructions",
			Description: "Execute one or more instructions, displaying each.",
			Usage:       "step [<count>]",
			Data:        (*Monitor).cmdStep,
		},
	}

	cmds = cmd.NewTree(cmd.TreeDescriptor{Name: "gbcore"})
	for _, d := range commands {
		cmds.AddCommand(d)
	}
}
