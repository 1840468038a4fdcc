package chip8

// Keypad is the 16-key input device as the interpreter sees it: 16 polled
// key-down states, written by the host frontend, read-only in here. The
// blocking FX0A opcode is handled by the interpreter's AwaitingKey state, so
// implementations never need to block.
type Keypad interface {
	Pressed(key uint8) bool
}

// firstPressed returns the lowest-numbered key currently held.
func firstPressed(k Keypad) (uint8, bool) {
	for key := uint8(0); key < 16; key++ {
		if k.Pressed(key) {
			return key, true
		}
	}
	return 0, false
}

type NoKeypad struct{}

func (k *NoKeypad) Pressed(key uint8) bool {
	return false
}
