package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/thelolagemann/gbcore/internal/gameboy"
	"github.com/thelolagemann/gbcore/internal/monitor"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
	"github.com/thelolagemann/gbcore/pkg/utils"
	"golang.org/x/term"
)

func main() {
	romFile := flag.String("rom", "", "The rom file to load (.gb, .gbc, or a .zip, .7z or .gz holding one)")
	asModel := flag.String("model", "auto", "The model to emulate. Can be auto, dmg0, dmg, mgb, cgb0, cgb, sgb, sgb2 or agb")
	frames := flag.Int("frames", 0, "Run this many frames, print the state hash and exit")
	cycles := flag.Uint64("cycles", 0, "Run this many clock cycles, print the state hash and exit")
	level := flag.String("log", "info", "The log level. Can be debug, info, warn or error")
	interactive := flag.Bool("monitor", false, "Start the interactive monitor")
	serialOut := flag.Bool("serial", false, "Print bytes sent over the serial port to stdout")
	ime := flag.Bool("ime", false, "Set the interrupt master enable at boot")
	debug := flag.Bool("debug", false, "Stop at LD B, B breakpoints")
	flag.Parse()

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.NewWithWriter(os.Stderr, lvl)

	if *romFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	rom, err := utils.LoadFile(*romFile)
	if err != nil {
		logger.Fatalf("loading rom: %v", err)
	}

	opts := []gameboy.Opt{gameboy.WithLogger(logger), gameboy.WithIME(*ime)}
	if *asModel != "auto" {
		model := types.StringToModel(*asModel)
		if model == types.Unset {
			logger.Fatalf("unknown model %q", *asModel)
		}
		opts = append(opts, gameboy.AsModel(model))
	}
	if *serialOut {
		opts = append(opts, gameboy.SerialDebugger(os.Stdout))
	}
	if *debug {
		opts = append(opts, gameboy.Debug())
	}

	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Infof("running %s as %s", strings.TrimSpace(gb.Cartridge.Title()), gb.Model())

	if *interactive {
		m := monitor.New(gb, opts...)
		err := m.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
		m.GameBoy().Close()
		if err != nil {
			logger.Fatalf("%v", err)
		}
		return
	}
	defer gb.Close()

	switch {
	case *frames > 0 || *cycles > 0:
		for i := 0; i < *frames && err == nil; i++ {
			err = gb.RunFrame()
		}
		if err == nil {
			err = gb.RunCycles(*cycles)
		}
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = gb.Run(ctx)
		stop()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}

	if *serialOut {
		fmt.Println()
	}
	if err != nil && !errors.Is(err, gameboy.ErrBreakpoint) {
		gb.Close()
		logger.Fatalf("%v", err)
	}
	fmt.Printf("%016X\n", gb.Hash())
}
