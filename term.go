package chip8

import (
	"sync"
	"time"

	"github.com/nsf/termbox-go"
)

type Terminal struct {
	fg, bg termbox.Attribute
}

func NewTerminal() (*Terminal, error) {
	return &Terminal{termbox.ColorWhite, termbox.ColorBlack}, initTerm()
}

func (d *Terminal) Render(i IterableImage) {
	i.OnEachPixel(func(x, y int, i ReadableImage) {
		if i.At(x, y) != 0 {
			termbox.SetCell(x, y, '█', d.fg, d.bg)
		} else {
			termbox.SetCell(x, y, ' ', d.fg, d.bg)
		}
	})

	termbox.Flush()
}

func (d *Terminal) Close() {
	termbox.Close()
}

func initTerm() error {
	if err := termbox.Init(); err != nil {
		return err
	}
	termbox.HideCursor()
	if err := termbox.Clear(0, 0); err != nil {
		return err
	}

	return termbox.Flush()
}

// TermKeypad reads termbox key events into the 16 polled key states. Events
// that aren't keypad keys (Esc to quit, backtick to pause) are forwarded to
// the host loop.
type TermKeypad struct {
	mu          sync.Mutex
	state       [16]bool
	keyUpTimers map[rune]*time.Timer
}

func NewTermKeypad(event chan<- termbox.Event) *TermKeypad {
	k := &TermKeypad{
		keyUpTimers: make(map[rune]*time.Timer),
	}

	for key, code := range HostKeyMap {
		c := code
		k.keyUpTimers[key] = time.AfterFunc(0, func() {
			k.set(c, false)
		})
	}
	go k.receiveEvents(event)
	return k
}

func (k *TermKeypad) receiveEvents(event chan<- termbox.Event) {
	for {
		e := termbox.PollEvent()
		if e.Type != termbox.EventKey {
			continue
		}
		if v, ok := HostKeyMap[e.Ch]; ok {
			// HACK: reset the timer for that key. On expiration mark as up.
			k.keyUpTimers[e.Ch].Reset(100 * time.Millisecond)
			k.set(v, true)
		} else {
			event <- e
		}
	}
}

func (k *TermKeypad) set(key uint8, down bool) {
	k.mu.Lock()
	k.state[key] = down
	k.mu.Unlock()
}

func (k *TermKeypad) Pressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state[key]
}
