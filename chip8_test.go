package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

type testKeypad struct {
	state [16]bool
}

func (k *testKeypad) Pressed(key uint8) bool {
	return k.state[key]
}

// newTestMachine loads the given instruction words at 0x200.
func newTestMachine(t *testing.T, program ...uint16) (*Chip8, *testKeypad) {
	t.Helper()

	rom := make([]byte, 0, len(program)*2)
	for _, op := range program {
		rom = append(rom, byte(op>>8), byte(op))
	}

	k := &testKeypad{}
	c := NewChip8(k)
	assert.NoError(t, c.LoadROM(rom))
	return c, k
}

func TestLoadROMBounds(t *testing.T) {
	c := NewChip8(&NoKeypad{})

	assert.NoError(t, c.LoadROM(make([]byte, MaxROMSize)))

	err := c.LoadROM(make([]byte, MaxROMSize+1))
	assert.True(t, errors.Is(err, ErrROMTooLarge))
}

func TestReset(t *testing.T) {
	c, _ := newTestMachine(t, 0x6A42, 0xA300)
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())

	c.Reset()

	assert.Equal(t, uint16(PROGRAM_START), c.pc)
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, byte(0), c.v[0xA])
	assert.Equal(t, Running, c.State())
	// font glyph for 0 lives at the bottom of memory
	assert.Equal(t, byte(0xF0), c.mem[FontBase])
	// program space was cleared
	assert.Equal(t, byte(0), c.mem[PROGRAM_START])
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
		vx   byte
		vy   byte
		key  int // pressed key, -1 for none
		skip bool
	}{
		{"3XNN equal", 0x3042, 0x42, 0, -1, true},
		{"3XNN not equal", 0x3042, 0x43, 0, -1, false},
		{"4XNN equal", 0x4042, 0x42, 0, -1, false},
		{"4XNN not equal", 0x4042, 0x43, 0, -1, true},
		{"5XY0 equal", 0x5010, 0x11, 0x11, -1, true},
		{"5XY0 not equal", 0x5010, 0x11, 0x12, -1, false},
		{"9XY0 equal", 0x9010, 0x11, 0x11, -1, false},
		{"9XY0 not equal", 0x9010, 0x11, 0x12, -1, true},
		{"EX9E pressed", 0xE09E, 0x5, 0, 0x5, true},
		{"EX9E not pressed", 0xE09E, 0x5, 0, -1, false},
		{"EXA1 pressed", 0xE0A1, 0x5, 0, 0x5, false},
		{"EXA1 not pressed", 0xE0A1, 0x5, 0, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, k := newTestMachine(t, tt.op)
			c.v[0] = tt.vx
			c.v[1] = tt.vy
			if tt.key >= 0 {
				k.state[tt.key] = true
			}

			assert.NoError(t, c.Step())

			want := uint16(PROGRAM_START + 2)
			if tt.skip {
				want = PROGRAM_START + 4
			}
			assert.Equal(t, want, c.pc)
		})
	}
}

func TestJumps(t *testing.T) {
	c, _ := newTestMachine(t, 0x1404)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x404), c.pc)

	c, _ = newTestMachine(t, 0xB404)
	c.v[0] = 0x10
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x414), c.pc)
}

func TestCallReturn(t *testing.T) {
	c, _ := newTestMachine(t, 0x2300)
	// subroutine at 0x300 returns immediately
	c.mem[0x300] = 0x00
	c.mem[0x301] = 0xEE

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x300), c.pc)
	assert.Equal(t, 1, c.sp)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(PROGRAM_START+2), c.pc)
	assert.Equal(t, 0, c.sp)
}

func TestStackOverflow(t *testing.T) {
	// a subroutine that calls itself forever
	c, _ := newTestMachine(t, 0x2200)

	for i := 0; i < STACK_DEPTH; i++ {
		assert.NoError(t, c.Step())
	}

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, Halted, c.State())

	// the machine stays down
	assert.True(t, errors.Is(c.Step(), ErrHalted))
}

func TestStackUnderflow(t *testing.T) {
	c, _ := newTestMachine(t, 0x00EE)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, Halted, c.State())
}

func TestRegisterOps(t *testing.T) {
	tests := []struct {
		name   string
		op     uint16
		vx     byte
		vy     byte
		wantX  byte
		wantVF byte
	}{
		{"8XY0 load", 0x8010, 0x00, 0x42, 0x42, 0},
		{"8XY1 or", 0x8011, 0xF0, 0x0F, 0xFF, 0},
		{"8XY2 and", 0x8012, 0xF0, 0xFF, 0xF0, 0},
		{"8XY3 xor", 0x8013, 0xFF, 0x0F, 0xF0, 0},
		{"8XY4 carry", 0x8014, 0xFF, 0x01, 0x00, 1},
		{"8XY4 no carry", 0x8014, 0x01, 0x01, 0x02, 0},
		{"8XY5 borrow", 0x8015, 0x05, 0x0A, 0xFB, 0},
		{"8XY5 no borrow", 0x8015, 0x0A, 0x05, 0x05, 1},
		{"8XY5 equal", 0x8015, 0x0A, 0x0A, 0x00, 1},
		{"8XY6 lsb set", 0x8016, 0x05, 0x00, 0x02, 1},
		{"8XY6 lsb clear", 0x8016, 0x04, 0x00, 0x02, 0},
		{"8XY7 borrow", 0x8017, 0x0A, 0x05, 0xFB, 0},
		{"8XY7 no borrow", 0x8017, 0x05, 0x0A, 0x05, 1},
		{"8XYE msb set", 0x801E, 0x81, 0x00, 0x02, 1},
		{"8XYE msb clear", 0x801E, 0x41, 0x00, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestMachine(t, tt.op)
			c.v[0] = tt.vx
			c.v[1] = tt.vy

			assert.NoError(t, c.Step())
			assert.Equal(t, tt.wantX, c.v[0])
			assert.Equal(t, tt.wantVF, c.v[VF])
		})
	}
}

func TestConstantOps(t *testing.T) {
	c, _ := newTestMachine(t, 0x6442, 0x7401, 0x74FF)

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x42), c.v[4])

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x43), c.v[4])

	// 7XNN wraps without touching VF
	c.v[VF] = 0xAA
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x42), c.v[4])
	assert.Equal(t, byte(0xAA), c.v[VF])
}

func TestRandomMask(t *testing.T) {
	// rand() & 0x00 is always zero regardless of the random byte
	c, _ := newTestMachine(t, 0xC000)
	c.v[0] = 0xFF
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0), c.v[0])
}

func TestIndexOps(t *testing.T) {
	c, _ := newTestMachine(t, 0xA300, 0xF11E, 0xF229)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x300), c.i)

	c.v[1] = 0x10
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x310), c.i)
	// VF untouched by FX1E
	assert.Equal(t, byte(0), c.v[VF])

	c.v[2] = 0xA
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xA*GlyphSize), c.i)
}

func TestBCD(t *testing.T) {
	c, _ := newTestMachine(t, 0xF033)
	c.v[0] = 234
	c.i = 0x300

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(2), c.mem[0x300])
	assert.Equal(t, byte(3), c.mem[0x301])
	assert.Equal(t, byte(4), c.mem[0x302])
}

func TestSaveLoadRegs(t *testing.T) {
	c, _ := newTestMachine(t, 0xF355, 0xF365)
	for i := byte(0); i <= 3; i++ {
		c.v[i] = 0x10 + i
	}
	c.v[4] = 0x99
	c.i = 0x300

	// FX55 stores V0..VX inclusive, leaving I alone
	assert.NoError(t, c.Step())
	for i := 0; i <= 3; i++ {
		assert.Equal(t, byte(0x10+i), c.mem[0x300+i])
	}
	assert.Equal(t, byte(0), c.mem[0x304])
	assert.Equal(t, uint16(0x300), c.i)

	// FX65 loads them back
	c.v = [16]byte{}
	assert.NoError(t, c.Step())
	for i := byte(0); i <= 3; i++ {
		assert.Equal(t, byte(0x10+i), c.v[i])
	}
	assert.Equal(t, byte(0), c.v[4])
	assert.Equal(t, uint16(0x300), c.i)
}

func TestTimerOps(t *testing.T) {
	c, _ := newTestMachine(t, 0x6005, 0xF015, 0xF018, 0xF107)

	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(5), c.delay)
	assert.Equal(t, uint8(5), c.sound)
	assert.True(t, c.Sounding())

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(5), c.v[1])
}

func TestTicksDrainTimers(t *testing.T) {
	c, _ := newTestMachine(t)
	c.delay = 5
	c.sound = 3

	for i := 0; i < 5; i++ {
		c.Tick()
	}
	assert.Equal(t, uint8(0), c.delay)
	assert.Equal(t, uint8(0), c.sound)
	assert.False(t, c.Sounding())

	// clamped at zero, no wrap
	c.Tick()
	assert.Equal(t, uint8(0), c.delay)
	assert.Equal(t, uint8(0), c.sound)
}

func TestAwaitKey(t *testing.T) {
	c, k := newTestMachine(t, 0xF30A, 0x6001)

	assert.NoError(t, c.Step())
	assert.Equal(t, AwaitingKey, c.State())
	pc := c.pc

	// nothing pressed: state does not move
	for i := 0; i < 3; i++ {
		assert.NoError(t, c.Step())
		assert.Equal(t, AwaitingKey, c.State())
		assert.Equal(t, pc, c.pc)
	}

	// first key-down transition is captured into V3
	k.state[0xB] = true
	assert.NoError(t, c.Step())
	assert.Equal(t, Running, c.State())
	assert.Equal(t, byte(0xB), c.v[3])
	assert.Equal(t, pc, c.pc)

	// execution continues with the next instruction
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.v[0])
}

func TestAwaitKeyNeedsRelease(t *testing.T) {
	c, k := newTestMachine(t, 0xF00A)

	// a key already held when the wait begins doesn't count
	k.state[0x2] = true
	assert.NoError(t, c.Step())
	assert.Equal(t, AwaitingKey, c.State())

	assert.NoError(t, c.Step())
	assert.Equal(t, AwaitingKey, c.State())

	// release, then press again
	k.state[0x2] = false
	assert.NoError(t, c.Step())
	assert.Equal(t, AwaitingKey, c.State())

	k.state[0x2] = true
	assert.NoError(t, c.Step())
	assert.Equal(t, Running, c.State())
	assert.Equal(t, byte(0x2), c.v[0])
}

func TestPauseResume(t *testing.T) {
	c, _ := newTestMachine(t, 0x6001, 0x6102)

	c.Pause()
	assert.Equal(t, Paused, c.State())
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(PROGRAM_START), c.pc)

	c.Resume()
	assert.Equal(t, Running, c.State())
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.v[0])
}

func TestPausePreservesKeyWait(t *testing.T) {
	c, _ := newTestMachine(t, 0xF00A)
	assert.NoError(t, c.Step())

	c.TogglePause()
	assert.Equal(t, Paused, c.State())
	c.TogglePause()
	assert.Equal(t, AwaitingKey, c.State())
}

func TestInvalidOpcode(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
	}{
		{"0NNN machine call", 0x0123},
		{"8XY8", 0x8018},
		{"5XY1", 0x5011},
		{"9XY1", 0x9011},
		{"EXFF", 0xE0FF},
		{"FXFF", 0xF0FF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestMachine(t, tt.op)

			err := c.Step()
			var inv *InvalidOpcodeError
			assert.True(t, errors.As(err, &inv))
			assert.Equal(t, tt.op, inv.Word)

			// recoverable: the fetch advance stands and the machine runs on
			assert.Equal(t, Running, c.State())
			assert.Equal(t, uint16(PROGRAM_START+2), c.pc)
			assert.Equal(t, 1, c.InvalidOps())
		})
	}
}

func TestOutOfRangeAccess(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Chip8)
		op    uint16
	}{
		{"FX1E past end", func(c *Chip8) { c.i = 0xFFF; c.v[0] = 0x10 }, 0xF01E},
		{"sprite fetch past end", func(c *Chip8) { c.i = 0xFFE; c.v[0] = 0 }, 0xD005},
		{"BCD past end", func(c *Chip8) { c.i = 0xFFE }, 0xF033},
		{"store regs past end", func(c *Chip8) { c.i = 0xFFE; c.v[0] = 1 }, 0xF555},
		{"load regs past end", func(c *Chip8) { c.i = 0xFFE }, 0xF565},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestMachine(t, tt.op)
			tt.setup(c)

			err := c.Step()
			var oor *OutOfRangeError
			assert.True(t, errors.As(err, &oor))
			assert.Equal(t, Halted, c.State())
		})
	}
}

func TestFetchPastEndHalts(t *testing.T) {
	c, _ := newTestMachine(t, 0x1FFE)
	// a valid instruction in the last word of memory
	c.mem[0xFFE] = 0x60
	c.mem[0xFFF] = 0x01

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xFFE), c.pc)

	// the word at 0xFFE executes, the next fetch is out of range
	assert.NoError(t, c.Step())
	err := c.Step()
	var oor *OutOfRangeError
	assert.True(t, errors.As(err, &oor))
	assert.Equal(t, Halted, c.State())
}

func TestDraw(t *testing.T) {
	// 8x1 fully-set sprite at (0, 0), drawn twice
	c, _ := newTestMachine(t, 0xD011, 0xD011)
	c.i = 0x300
	c.mem[0x300] = 0xFF

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0), c.v[VF])
	for x := 0; x < 8; x++ {
		assert.Equal(t, byte(1), c.screen.At(x, 0))
	}
	assert.True(t, c.TakeRenderFlag())

	// second draw XORs everything back off and reports the collision
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.v[VF])
	for x := 0; x < 8; x++ {
		assert.Equal(t, byte(0), c.screen.At(x, 0))
	}
}

func TestDrawClipsAtEdges(t *testing.T) {
	c, _ := newTestMachine(t, 0xD012)
	c.i = 0x300
	c.mem[0x300] = 0xFF
	c.mem[0x301] = 0xFF
	c.v[0] = 60 // x: only 4 pixels fit
	c.v[1] = 31 // y: only 1 row fits

	assert.NoError(t, c.Step())

	for x := 60; x < 64; x++ {
		assert.Equal(t, byte(1), c.screen.At(x, 31))
	}
	// nothing wrapped to the left column or the top row
	for x := 0; x < 4; x++ {
		assert.Equal(t, byte(0), c.screen.At(x, 31))
		assert.Equal(t, byte(0), c.screen.At(x, 0))
	}
}

func TestDrawOriginWraps(t *testing.T) {
	// the origin itself is taken mod the screen size
	c, _ := newTestMachine(t, 0xD011)
	c.i = 0x300
	c.mem[0x300] = 0x80
	c.v[0] = 64 + 4
	c.v[1] = 32 + 2

	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.screen.At(4, 2))
}

func TestClearScreen(t *testing.T) {
	c, _ := newTestMachine(t, 0xD011, 0x00E0)
	c.i = 0x300
	c.mem[0x300] = 0xFF

	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())

	c.screen.OnEachPixel(func(x, y int, i ReadableImage) {
		assert.Equal(t, byte(0), i.At(x, y))
	})
}

func TestFontGlyphsDrawable(t *testing.T) {
	// point I at the glyph for "F" and draw it at (V1, V2) = (0, 0)
	c, _ := newTestMachine(t, 0xF029, 0xD125)
	c.v[0] = 0xF

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xF*GlyphSize), c.i)

	assert.NoError(t, c.Step())
	// top row of the F glyph is 0xF0: four lit pixels
	for x := 0; x < 4; x++ {
		assert.Equal(t, byte(1), c.screen.At(x, 0))
	}
	assert.Equal(t, byte(0), c.screen.At(4, 0))
}
