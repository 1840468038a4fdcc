package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrogolib/log"

	"github.com/c8vm/chip8"
)

func newLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func main() {
	ipt := flag.Int("ipt", chip8.DefaultInstructionsPerTick,
		"instructions executed per 60Hz timer tick")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: chip8-term [options] <rom>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	logger := newLogger(*debug)

	rom, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	term, err := chip8.NewTerminal()
	if err != nil {
		logger.Fatal("Initializing terminal failed", log.Err(err))
	}
	defer term.Close()

	events := make(chan termbox.Event)
	k := chip8.NewTermKeypad(events)
	c := chip8.NewChip8(k)

	if err := c.LoadROM(rom); err != nil {
		term.Close()
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := chip8.NewScheduler(c, *ipt, logger)

	// Esc quits, backtick toggles pause. Keypad keys never reach this
	// channel, and the machine itself is only driven from the run loop below.
	go func() {
		for e := range events {
			switch {
			case e.Key == termbox.KeyEsc || e.Key == termbox.KeyCtrlQ:
				cancel()
				return
			case e.Ch == '`':
				sched.TogglePause()
			}
		}
	}()
	err = sched.Run(ctx, func() {
		if c.TakeRenderFlag() {
			term.Render(c.ScreenSnapshot())
		}
	})
	if err != nil && err != context.Canceled {
		term.Close()
		logger.Fatal("Emulation stopped", log.Err(err))
	}
}
