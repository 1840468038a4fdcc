package chip8

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"time"
)

const (
	V0 = iota
	V1
	V2
	V3
	V4
	V5
	V6
	V7
	V8
	V9
	V10
	V11
	V12
	V13
	V14
	V15
	VF = V15
)

const (
	MAX_MEM_ADDRESS = 0x1000
	PROGRAM_START   = 0x200
	STACK_DEPTH     = 16

	// MaxROMSize is everything above the reserved interpreter area.
	MaxROMSize = MAX_MEM_ADDRESS - PROGRAM_START
)

// State is the machine's run state. Step only executes instructions while
// Running; Halted is terminal.
type State int

const (
	Running State = iota
	Paused
	AwaitingKey
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Chip8 holds the whole machine: 4K of memory, sixteen 8-bit registers, the
// call stack, the two 60Hz timers, and the framebuffer. It borrows read
// access to the keypad and owns everything else. All mutation happens through
// Step, Tick, Reset and the load functions. There is no internal goroutine
// and no pacing in here; that is the Scheduler's job.
type Chip8 struct {
	mem   [MAX_MEM_ADDRESS]byte
	v     [16]byte
	stack [STACK_DEPTH]uint16
	sp    int
	i     uint16
	pc    uint16
	delay uint8
	sound uint8

	state    State
	resumeTo State // run state to restore on Resume
	waitReg  uint8 // FX0A destination register
	waitEdge bool  // saw all keys up since entering AwaitingKey

	screen *screen
	keypad Keypad
	r      *rand.Rand

	renderFlag bool
	invalidOps int
}

func NewChip8(k Keypad) *Chip8 {
	c := &Chip8{
		screen: &screen{},
		keypad: k,
		r:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.Reset()
	return c
}

func (c *Chip8) String() string {
	return fmt.Sprintf("PC:0x%04X I:0x%04X state:%s regs:% X", c.pc, c.i, c.state, c.v)
}

// LoadROM copies a raw program image to 0x200. Anything larger than the
// program space is rejected outright, never truncated.
func (c *Chip8) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("loading %d byte ROM: %w", len(rom), ErrROMTooLarge)
	}
	copy(c.mem[PROGRAM_START:], rom)
	return nil
}

func (c *Chip8) LoadBinary(filename string) error {
	rom, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	return c.LoadROM(rom)
}

// Reset returns the machine to its power-on state: memory zeroed with the
// font glyphs at the bottom, PC at 0x200, everything else cleared. The ROM
// must be loaded again afterwards.
func (c *Chip8) Reset() {
	c.mem = [MAX_MEM_ADDRESS]byte{}
	copy(c.mem[FontBase:], font)

	c.v = [16]byte{}
	c.stack = [STACK_DEPTH]uint16{}
	c.sp = 0
	c.i = 0
	c.pc = PROGRAM_START
	c.delay = 0
	c.sound = 0

	c.state = Running
	c.waitEdge = false
	c.invalidOps = 0

	c.screen.Clear()
	c.renderFlag = true
}

// Step executes exactly one instruction: fetch two bytes big-endian at PC,
// advance PC by 2, then dispatch. In Paused nothing happens; in AwaitingKey
// the only effect is watching the keypad for a key-down transition. A fatal
// error halts the machine; an invalid opcode is reported but leaves it
// running.
func (c *Chip8) Step() error {
	switch c.state {
	case Halted:
		return ErrHalted
	case Paused:
		return nil
	case AwaitingKey:
		c.pollWaitKey()
		return nil
	}

	word, err := c.fetch()
	if err != nil {
		return c.halt(err)
	}

	if err := c.exec(decode(word)); err != nil {
		if IsFatal(err) {
			return c.halt(err)
		}
		c.invalidOps++
		return err
	}
	return nil
}

func (c *Chip8) fetch() (uint16, error) {
	if uint(c.pc)+1 >= MAX_MEM_ADDRESS {
		return 0, &OutOfRangeError{Addr: uint(c.pc)}
	}
	word := binary.BigEndian.Uint16(c.mem[c.pc:])
	c.pc += 2
	return word, nil
}

func (c *Chip8) halt(err error) error {
	c.state = Halted
	return err
}

// pollWaitKey is the AwaitingKey body: FX0A completes on the first transition
// from no key held to some key held. A key already down when the wait began
// has to be released first.
func (c *Chip8) pollWaitKey() {
	key, down := firstPressed(c.keypad)
	if !down {
		c.waitEdge = true
		return
	}
	if c.waitEdge {
		c.v[c.waitReg] = key
		c.waitEdge = false
		c.state = Running
	}
}

// Tick decrements the delay and sound timers toward zero. The Scheduler calls
// this at a fixed 60Hz no matter how fast instructions run.
func (c *Chip8) Tick() {
	if c.delay > 0 {
		c.delay--
	}
	if c.sound > 0 {
		c.sound--
	}
}

// Pause suspends Step entirely. Resume restores whichever state the machine
// was in, so pausing mid key-wait goes back to waiting.
func (c *Chip8) Pause() {
	if c.state == Running || c.state == AwaitingKey {
		c.resumeTo = c.state
		c.state = Paused
	}
}

func (c *Chip8) Resume() {
	if c.state == Paused {
		c.state = c.resumeTo
	}
}

func (c *Chip8) TogglePause() {
	if c.state == Paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

func (c *Chip8) State() State {
	return c.state
}

// Sounding reports whether the audio collaborator should be playing a tone.
func (c *Chip8) Sounding() bool {
	return c.sound > 0
}

// InvalidOps is the count of no-op'd unrecognized instruction words.
func (c *Chip8) InvalidOps() int {
	return c.invalidOps
}

// Render hands the framebuffer to a renderer. Must be called on the
// interpreter goroutine; other goroutines use ScreenSnapshot.
func (c *Chip8) Render(r Renderer) {
	r.Render(c.screen)
}

// ScreenSnapshot returns a consistent copy of the framebuffer, safe to call
// from a render goroutine.
func (c *Chip8) ScreenSnapshot() *ScreenSnapshot {
	return c.screen.Snapshot()
}

// TakeRenderFlag reports whether the display changed since the last call and
// clears the flag.
func (c *Chip8) TakeRenderFlag() bool {
	f := c.renderFlag
	c.renderFlag = false
	return f
}
