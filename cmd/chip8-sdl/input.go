package main

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"
)

// KeyMap maps a modern keyboard to the CHIP-8 keypad grid.
var KeyMap = map[sdl.Scancode]uint8{
	sdl.SCANCODE_X: 0x0,
	sdl.SCANCODE_1: 0x1,
	sdl.SCANCODE_2: 0x2,
	sdl.SCANCODE_3: 0x3,
	sdl.SCANCODE_Q: 0x4,
	sdl.SCANCODE_W: 0x5,
	sdl.SCANCODE_E: 0x6,
	sdl.SCANCODE_A: 0x7,
	sdl.SCANCODE_S: 0x8,
	sdl.SCANCODE_D: 0x9,
	sdl.SCANCODE_Z: 0xA,
	sdl.SCANCODE_C: 0xB,
	sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_V: 0xF,
}

// Keypad holds the 16 key-down states the interpreter polls. SDL reports
// both key-down and key-up, so no release timer hack is needed here.
type Keypad struct {
	mu    sync.Mutex
	state [16]bool
}

func NewKeypad() *Keypad {
	return &Keypad{}
}

func (k *Keypad) Pressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state[key]
}

func (k *Keypad) set(key uint8, down bool) {
	k.mu.Lock()
	k.state[key] = down
	k.mu.Unlock()
}

// ProcessEvents drains the SDL event queue, feeding the keypad and handling
// the host controls: Escape quits, Space pauses, Backspace resets.
func ProcessEvents(k *Keypad) bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			key, mapped := KeyMap[ev.Keysym.Scancode]

			switch ev.Type {
			case sdl.KEYDOWN:
				if mapped {
					k.set(key, true)
					continue
				}
				switch ev.Keysym.Scancode {
				case sdl.SCANCODE_ESCAPE:
					return false
				case sdl.SCANCODE_SPACE:
					VM.TogglePause()
				case sdl.SCANCODE_BACKSPACE:
					VM.Reset()
					if err := VM.LoadROM(rom); err != nil {
						logger.Error("Reloading ROM failed")
						return false
					}
				}
			case sdl.KEYUP:
				if mapped {
					k.set(key, false)
				}
			}
		}
	}

	return true
}
