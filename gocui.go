package chip8

import (
	"sync"
	"time"

	"github.com/jroimartin/gocui"
)

// HostKeyMap is the conventional host layout for the 16-key grid: the
// 1234/qwer/asdf/zxcv block of the keyboard.
var HostKeyMap = map[rune]uint8{
	'1': 0x1,
	'2': 0x2,
	'3': 0x3,
	'4': 0xC,
	'q': 0x4,
	'w': 0x5,
	'e': 0x6,
	'r': 0xD,
	'a': 0x7,
	's': 0x8,
	'd': 0x9,
	'f': 0xE,
	'z': 0xA,
	'x': 0x0,
	'c': 0xB,
	'v': 0xF,
}

type gocuiKeypad struct {
	mu          sync.Mutex
	state       [16]bool
	keyUpTimers map[rune]*time.Timer
}

// NewGocuiKeypad registers a keybinding per mapped key. Terminals only report
// key-down, so a key counts as released once its repeat events stop coming.
func NewGocuiKeypad(g *gocui.Gui, view *gocui.View) *gocuiKeypad {
	k := &gocuiKeypad{
		keyUpTimers: make(map[rune]*time.Timer),
	}

	for key, code := range HostKeyMap {
		key := key
		c := code
		k.keyUpTimers[key] = time.AfterFunc(0, func() {
			k.set(c, false)
		})
		g.SetKeybinding(view.Name(), key, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
			// HACK: reset the timer for that key. On expiration mark as up.
			k.keyUpTimers[key].Reset(100 * time.Millisecond)
			k.set(c, true)
			return nil
		})
	}
	return k
}

func (k *gocuiKeypad) set(key uint8, down bool) {
	k.mu.Lock()
	k.state[key] = down
	k.mu.Unlock()
}

func (k *gocuiKeypad) Pressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state[key]
}

type gocuiRenderer struct {
	*gocui.View
}

func NewGocuiRenderer(view *gocui.View) *gocuiRenderer {
	return &gocuiRenderer{view}
}

func (d *gocuiRenderer) Render(i IterableImage) {
	i.OnEachPixel(func(x, y int, i ReadableImage) {
		d.SetCursor(x, y)
		d.EditDelete(false)

		if i.At(x, y) != 0 {
			d.EditWrite('█')
		} else {
			d.EditWrite(' ')
		}
	})
}
