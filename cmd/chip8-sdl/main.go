package main

import (
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/c8vm/chip8"
)

const pixelScale = 10

var (
	// VM is the CHIP-8 virtual machine.
	VM *chip8.Chip8

	// The SDL window and renderer.
	Window   *sdl.Window
	Renderer *sdl.Renderer

	logger *log.Logger
	rom    []byte
)

func init() {
	// SDL event handling must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	ipt := flag.Int("ipt", chip8.DefaultInstructionsPerTick,
		"instructions executed per 60Hz timer tick")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := log.DefaultConfig()
	if *debug {
		cfg.Level = log.DebugLevel
	}
	logger = log.NewWithConfig(cfg)

	// without an argument, ask for a ROM
	path := flag.Arg(0)
	if path == "" {
		var err error
		path, err = dialog.File().Title("Open CHIP-8 ROM").Load()
		if err != nil {
			logger.Fatal("No ROM selected", log.Err(err))
		}
	}

	var err error
	rom, err = os.ReadFile(path)
	if err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		logger.Fatal("Initializing SDL failed", log.Err(err))
	}
	defer sdl.Quit()

	Window, Renderer, err = sdl.CreateWindowAndRenderer(
		chip8.SCREEN_WIDTH*pixelScale, chip8.SCREEN_HEIGHT*pixelScale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		logger.Fatal("Creating window failed", log.Err(err))
	}
	defer Window.Destroy()
	Window.SetTitle("CHIP-8")

	InitScreen()
	InitAudio()

	keypad := NewKeypad()
	VM = chip8.NewChip8(keypad)
	if err := VM.LoadROM(rom); err != nil {
		logger.Fatal("Loading ROM failed", log.Err(err))
	}

	sched := chip8.NewScheduler(VM, *ipt, logger)
	frame := time.NewTicker(time.Second / chip8.TimerHz)
	defer frame.Stop()

	// loop until window closed or user quit
	for ProcessEvents(keypad) {
		<-frame.C

		if err := sched.RunTick(); err != nil {
			logger.Error("Emulation stopped", log.Err(err))
			os.Exit(1)
		}

		if VM.TakeRenderFlag() {
			RefreshScreen()
		}
		Refresh()
		QueueTone()
	}
}

// Refresh redraws the window from the screen texture.
func Refresh() {
	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()
	CopyScreen(0, 0, chip8.SCREEN_WIDTH*pixelScale, chip8.SCREEN_HEIGHT*pixelScale)
	Renderer.Present()
}
