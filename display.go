package chip8

import "sync"

const (
	SCREEN_WIDTH  = 64
	SCREEN_HEIGHT = 32
)

// ReadableImage is the renderer's view of the framebuffer. Only the clear and
// draw opcodes ever write pixels.
type ReadableImage interface {
	At(x, y int) byte
}

type IterableImage interface {
	ReadableImage
	OnEachPixel(func(x, y int, i ReadableImage))
}

// Renderer turns the framebuffer into something visible. Called by the host,
// never by the interpreter.
type Renderer interface {
	Render(IterableImage)
}

type NullDisplay struct{}

func (d *NullDisplay) Render(i IterableImage) {}

// screen is the 64x32 1-bit framebuffer owned by the interpreter. The mutex
// belongs to the buffer, not the interpreter: it exists so a frontend running
// on its own goroutine can take a consistent Snapshot while Clear/DrawSprite
// mutate.
type screen struct {
	mu     sync.Mutex
	buffer [SCREEN_WIDTH * SCREEN_HEIGHT]byte
}

func (i *screen) At(x, y int) byte {
	return i.buffer[y*SCREEN_WIDTH+x]
}

func (i *screen) OnEachPixel(cb func(x, y int, i ReadableImage)) {
	for y := 0; y < SCREEN_HEIGHT; y++ {
		for x := 0; x < SCREEN_WIDTH; x++ {
			cb(x, y, i)
		}
	}
}

// toggle XORs a pixel and reports whether a lit pixel was turned off.
// Coordinates outside the screen are clipped, never wrapped.
func (i *screen) toggle(x, y int) bool {
	if x < 0 || x >= SCREEN_WIDTH || y < 0 || y >= SCREEN_HEIGHT {
		return false
	}
	a := y*SCREEN_WIDTH + x
	c := i.buffer[a]
	i.buffer[a] ^= 1
	return c != 0
}

// Clear turns every pixel off.
func (i *screen) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.buffer = [SCREEN_WIDTH * SCREEN_HEIGHT]byte{}
}

// DrawSprite XORs the MSB-first sprite rows onto the screen with the origin
// at (ox, oy) and reports whether any pixel was turned off. Pixels past the
// right or bottom edge are clipped.
func (i *screen) DrawSprite(rows []byte, ox, oy int) (collision bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for j, row := range rows {
		y := oy + j
		if y >= SCREEN_HEIGHT {
			break
		}
		for b := 0; b < 8; b++ {
			x := ox + b
			if x >= SCREEN_WIDTH {
				break
			}
			if row&(0x80>>b) == 0 {
				continue
			}
			if i.toggle(x, y) {
				collision = true
			}
		}
	}
	return collision
}

// Snapshot returns a detached copy of the framebuffer, safe to hand to a
// renderer on another goroutine.
func (i *screen) Snapshot() *ScreenSnapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return &ScreenSnapshot{buffer: i.buffer}
}

// ScreenSnapshot is a frozen framebuffer copy.
type ScreenSnapshot struct {
	buffer [SCREEN_WIDTH * SCREEN_HEIGHT]byte
}

func (i *ScreenSnapshot) At(x, y int) byte {
	return i.buffer[y*SCREEN_WIDTH+x]
}

func (i *ScreenSnapshot) OnEachPixel(cb func(x, y int, i ReadableImage)) {
	for y := 0; y < SCREEN_HEIGHT; y++ {
		for x := 0; x < SCREEN_WIDTH; x++ {
			cb(x, y, i)
		}
	}
}
