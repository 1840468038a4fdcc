package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jroimartin/gocui"
	"github.com/retroenv/retrogolib/log"

	"github.com/c8vm/chip8"
)

func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	if maxY < chip8.SCREEN_HEIGHT || maxX < chip8.SCREEN_WIDTH {
		return fmt.Errorf("cannot display if less than %d x %d! Resize your terminal! (^Q to quit)",
			chip8.SCREEN_WIDTH, chip8.SCREEN_HEIGHT)
	}
	left := (maxX - chip8.SCREEN_WIDTH) / 2
	_, err := g.SetView("display", left, 0, chip8.SCREEN_WIDTH+2+left, chip8.SCREEN_HEIGHT+2)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	return nil
}

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
		fmt.Fprintln(os.Stderr, "usage: chip8 [options] <rom>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	logger := newLogger(*debug)

	rom, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		logger.Fatal("Creating UI failed", log.Err(err))
	}
	defer g.Close()

	g.SetManagerFunc(layout)
	// HACK: Need to call layout once to create the views
	layout(g)
	v, err := g.View("display")
	if err != nil {
		g.Close()
		logger.Fatal("Creating display view failed", log.Err(err))
	}
	g.SetCurrentView(v.Name())

	k := chip8.NewGocuiKeypad(g, v)
	r := chip8.NewGocuiRenderer(v)
	c := chip8.NewChip8(k)

	if err := c.LoadROM(rom); err != nil {
		g.Close()
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	sched := chip8.NewScheduler(c, *ipt, logger)

	// The UI goroutine never touches the machine directly: pause requests go
	// through the scheduler and are applied on its goroutine.
	if err := g.SetKeybinding("", gocui.KeyCtrlQ, gocui.ModNone,
		func(g *gocui.Gui, v *gocui.View) error { return gocui.ErrQuit }); err != nil {
		g.Close()
		logger.Fatal("Setting keybinding failed", log.Err(err))
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlP, gocui.ModNone,
		func(g *gocui.Gui, v *gocui.View) error { sched.TogglePause(); return nil }); err != nil {
		g.Close()
		logger.Fatal("Setting keybinding failed", log.Err(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		err := sched.Run(ctx, func() {
			if !c.TakeRenderFlag() {
				return
			}
			snap := c.ScreenSnapshot()
			g.Update(func(g *gocui.Gui) error {
				r.Render(snap)
				return nil
			})
		})
		errc <- err
		if err != nil && !errors.Is(err, context.Canceled) {
			g.Update(func(g *gocui.Gui) error { return gocui.ErrQuit })
		}
	}()

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		g.Close()
		logger.Fatal("UI loop failed", log.Err(err))
	}
	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		g.Close()
		os.Exit(1)
	}
}
