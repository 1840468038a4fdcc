package chip8

// opcode is the decoded form of one instruction word: the standard NNN/NN/N
// constants and the X/Y register selectors. Derived per fetch, never stored.
type opcode struct {
	word uint16
	nnn  uint16
	nn   uint8
	n    uint8
	x    uint8
	y    uint8
}

func decode(word uint16) opcode {
	return opcode{
		word: word,
		nnn:  word & 0xFFF,
		nn:   uint8(word),
		n:    uint8(word) & 0xF,
		x:    uint8(word>>8) & 0xF,
		y:    uint8(word>>4) & 0xF,
	}
}

type handler func(*Chip8, opcode) error

// handlers is keyed by the instruction's high nibble. The 0x0, 0x8, 0xE and
// 0xF families dispatch a second time on their sub-selector.
var handlers = [16]handler{
	0x0: (*Chip8).op0,
	0x1: (*Chip8).op1NNN,
	0x2: (*Chip8).op2NNN,
	0x3: (*Chip8).op3XNN,
	0x4: (*Chip8).op4XNN,
	0x5: (*Chip8).op5XY0,
	0x6: (*Chip8).op6XNN,
	0x7: (*Chip8).op7XNN,
	0x8: (*Chip8).op8,
	0x9: (*Chip8).op9XY0,
	0xA: (*Chip8).opANNN,
	0xB: (*Chip8).opBNNN,
	0xC: (*Chip8).opCXNN,
	0xD: (*Chip8).opDXYN,
	0xE: (*Chip8).opE,
	0xF: (*Chip8).opF,
}

var family8 = map[uint8]handler{
	0x0: (*Chip8).op8XY0,
	0x1: (*Chip8).op8XY1,
	0x2: (*Chip8).op8XY2,
	0x3: (*Chip8).op8XY3,
	0x4: (*Chip8).op8XY4,
	0x5: (*Chip8).op8XY5,
	0x6: (*Chip8).op8XY6,
	0x7: (*Chip8).op8XY7,
	0xE: (*Chip8).op8XYE,
}

var familyE = map[uint8]handler{
	0x9E: (*Chip8).opEX9E,
	0xA1: (*Chip8).opEXA1,
}

var familyF = map[uint8]handler{
	0x07: (*Chip8).opFX07,
	0x0A: (*Chip8).opFX0A,
	0x15: (*Chip8).opFX15,
	0x18: (*Chip8).opFX18,
	0x1E: (*Chip8).opFX1E,
	0x29: (*Chip8).opFX29,
	0x33: (*Chip8).opFX33,
	0x55: (*Chip8).opFX55,
	0x65: (*Chip8).opFX65,
}

func (c *Chip8) exec(ins opcode) error {
	return handlers[ins.word>>12](c, ins)
}

func (c *Chip8) op0(ins opcode) error {
	switch ins.word {
	case 0x00E0:
		c.screen.Clear()
		c.renderFlag = true
		return nil
	case 0x00EE:
		if c.sp == 0 {
			return ErrStackUnderflow
		}
		c.sp--
		c.pc = c.stack[c.sp]
		return nil
	}
	// 0NNN machine-code calls are not part of the repertoire
	return &InvalidOpcodeError{Word: ins.word}
}

// op1NNN jumps to NNN.
func (c *Chip8) op1NNN(ins opcode) error {
	c.pc = ins.nnn
	return nil
}

// op2NNN calls the subroutine at NNN.
func (c *Chip8) op2NNN(ins opcode) error {
	if c.sp == STACK_DEPTH {
		return ErrStackOverflow
	}
	c.stack[c.sp] = c.pc
	c.sp++
	c.pc = ins.nnn
	return nil
}

// op3XNN skips the next instruction if Vx == NN.
func (c *Chip8) op3XNN(ins opcode) error {
	if c.v[ins.x] == ins.nn {
		c.pc += 2
	}
	return nil
}

func (c *Chip8) op4XNN(ins opcode) error {
	if c.v[ins.x] != ins.nn {
		c.pc += 2
	}
	return nil
}

func (c *Chip8) op5XY0(ins opcode) error {
	if ins.n != 0 {
		return &InvalidOpcodeError{Word: ins.word}
	}
	if c.v[ins.x] == c.v[ins.y] {
		c.pc += 2
	}
	return nil
}

func (c *Chip8) op6XNN(ins opcode) error {
	c.v[ins.x] = ins.nn
	return nil
}

// op7XNN adds NN to Vx with 8-bit wraparound. No flag.
func (c *Chip8) op7XNN(ins opcode) error {
	c.v[ins.x] += ins.nn
	return nil
}

func (c *Chip8) op8(ins opcode) error {
	h, ok := family8[ins.n]
	if !ok {
		return &InvalidOpcodeError{Word: ins.word}
	}
	return h(c, ins)
}

func (c *Chip8) op8XY0(ins opcode) error {
	c.v[ins.x] = c.v[ins.y]
	return nil
}

func (c *Chip8) op8XY1(ins opcode) error {
	c.v[ins.x] |= c.v[ins.y]
	return nil
}

func (c *Chip8) op8XY2(ins opcode) error {
	c.v[ins.x] &= c.v[ins.y]
	return nil
}

func (c *Chip8) op8XY3(ins opcode) error {
	c.v[ins.x] ^= c.v[ins.y]
	return nil
}

// op8XY4 adds Vy to Vx. The carry comes from the widened sum of the original
// operands, so an X==F operand still produces the right flag.
func (c *Chip8) op8XY4(ins opcode) error {
	sum := uint16(c.v[ins.x]) + uint16(c.v[ins.y])
	if sum > 0xFF {
		c.v[VF] = 1
	} else {
		c.v[VF] = 0
	}
	c.v[ins.x] = uint8(sum)
	return nil
}

// op8XY5 subtracts Vy from Vx. VF is 1 when no borrow occurred.
func (c *Chip8) op8XY5(ins opcode) error {
	diff := c.v[ins.x] - c.v[ins.y]
	if c.v[ins.y] <= c.v[ins.x] {
		c.v[VF] = 1
	} else {
		c.v[VF] = 0
	}
	c.v[ins.x] = diff
	return nil
}

// op8XY6 shifts Vx right one bit; VF takes the bit shifted out.
func (c *Chip8) op8XY6(ins opcode) error {
	lsb := c.v[ins.x] & 1
	res := c.v[ins.x] >> 1
	c.v[VF] = lsb
	c.v[ins.x] = res
	return nil
}

// op8XY7 stores Vy - Vx into Vx. VF is 1 when no borrow occurred.
func (c *Chip8) op8XY7(ins opcode) error {
	diff := c.v[ins.y] - c.v[ins.x]
	if c.v[ins.x] <= c.v[ins.y] {
		c.v[VF] = 1
	} else {
		c.v[VF] = 0
	}
	c.v[ins.x] = diff
	return nil
}

// op8XYE shifts Vx left one bit; VF takes the bit shifted out.
func (c *Chip8) op8XYE(ins opcode) error {
	msb := c.v[ins.x] >> 7
	res := c.v[ins.x] << 1
	c.v[VF] = msb
	c.v[ins.x] = res
	return nil
}

func (c *Chip8) op9XY0(ins opcode) error {
	if ins.n != 0 {
		return &InvalidOpcodeError{Word: ins.word}
	}
	if c.v[ins.x] != c.v[ins.y] {
		c.pc += 2
	}
	return nil
}

func (c *Chip8) opANNN(ins opcode) error {
	c.i = ins.nnn
	return nil
}

// opBNNN jumps to NNN + V0. An out-of-range target surfaces at the next
// fetch.
func (c *Chip8) opBNNN(ins opcode) error {
	c.pc = ins.nnn + uint16(c.v[V0])
	return nil
}

// opCXNN sets Vx to rand() & NN.
func (c *Chip8) opCXNN(ins opcode) error {
	c.v[ins.x] = uint8(c.r.Uint32()) & ins.nn
	return nil
}

// opDXYN draws the N-row sprite at I with its origin at (Vx mod 64,
// Vy mod 32). Pixels XOR onto the screen and clip at the right and bottom
// edges; VF records whether any pixel was turned off anywhere in the sprite.
func (c *Chip8) opDXYN(ins opcode) error {
	end := uint(c.i) + uint(ins.n)
	if end > MAX_MEM_ADDRESS {
		return &OutOfRangeError{Addr: end - 1}
	}

	ox := int(c.v[ins.x]) % SCREEN_WIDTH
	oy := int(c.v[ins.y]) % SCREEN_HEIGHT

	if c.screen.DrawSprite(c.mem[c.i:end], ox, oy) {
		c.v[VF] = 1
	} else {
		c.v[VF] = 0
	}
	c.renderFlag = true
	return nil
}

func (c *Chip8) opE(ins opcode) error {
	h, ok := familyE[ins.nn]
	if !ok {
		return &InvalidOpcodeError{Word: ins.word}
	}
	return h(c, ins)
}

// opEX9E skips the next instruction if key Vx is pressed.
func (c *Chip8) opEX9E(ins opcode) error {
	if c.keyDown(ins.x) {
		c.pc += 2
	}
	return nil
}

// opEXA1 skips the next instruction if key Vx is not pressed.
func (c *Chip8) opEXA1(ins opcode) error {
	if !c.keyDown(ins.x) {
		c.pc += 2
	}
	return nil
}

// keyDown reads the keypad for the key named by Vx. Values past the 16-key
// grid read as released.
func (c *Chip8) keyDown(x uint8) bool {
	key := c.v[x]
	return key <= 0xF && c.keypad.Pressed(key)
}

func (c *Chip8) opF(ins opcode) error {
	h, ok := familyF[ins.nn]
	if !ok {
		return &InvalidOpcodeError{Word: ins.word}
	}
	return h(c, ins)
}

func (c *Chip8) opFX07(ins opcode) error {
	c.v[ins.x] = c.delay
	return nil
}

// opFX0A suspends execution until the next key press. No busy PC rollback:
// the machine moves to AwaitingKey and Step watches the keypad from there.
func (c *Chip8) opFX0A(ins opcode) error {
	c.waitReg = ins.x
	_, down := firstPressed(c.keypad)
	c.waitEdge = !down
	c.state = AwaitingKey
	return nil
}

func (c *Chip8) opFX15(ins opcode) error {
	c.delay = c.v[ins.x]
	return nil
}

func (c *Chip8) opFX18(ins opcode) error {
	c.sound = c.v[ins.x]
	return nil
}

// opFX1E adds Vx to I. VF is untouched. A result past the address space is a
// fault, not a wrap.
func (c *Chip8) opFX1E(ins opcode) error {
	addr := uint(c.i) + uint(c.v[ins.x])
	if addr >= MAX_MEM_ADDRESS {
		return &OutOfRangeError{Addr: addr}
	}
	c.i = uint16(addr)
	return nil
}

// opFX29 points I at the font glyph for Vx.
func (c *Chip8) opFX29(ins opcode) error {
	c.i = FontBase + GlyphSize*uint16(c.v[ins.x])
	return nil
}

// opFX33 stores the BCD digits of Vx at I, I+1, I+2.
func (c *Chip8) opFX33(ins opcode) error {
	if uint(c.i)+3 > MAX_MEM_ADDRESS {
		return &OutOfRangeError{Addr: uint(c.i) + 2}
	}
	v := c.v[ins.x]
	c.mem[c.i+2] = v % 10
	v /= 10
	c.mem[c.i+1] = v % 10
	v /= 10
	c.mem[c.i] = v % 10
	return nil
}

// opFX55 stores V0 through Vx inclusive at I. I is not advanced.
func (c *Chip8) opFX55(ins opcode) error {
	end := uint(c.i) + uint(ins.x) + 1
	if end > MAX_MEM_ADDRESS {
		return &OutOfRangeError{Addr: end - 1}
	}
	for r := uint16(0); r <= uint16(ins.x); r++ {
		c.mem[c.i+r] = c.v[r]
	}
	return nil
}

// opFX65 loads V0 through Vx inclusive from I. I is not advanced.
func (c *Chip8) opFX65(ins opcode) error {
	end := uint(c.i) + uint(ins.x) + 1
	if end > MAX_MEM_ADDRESS {
		return &OutOfRangeError{Addr: end - 1}
	}
	for r := uint16(0); r <= uint16(ins.x); r++ {
		c.v[r] = c.mem[c.i+r]
	}
	return nil
}
