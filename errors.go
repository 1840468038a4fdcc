package chip8

import (
	"errors"
	"fmt"
)

// Sentinel errors for the unrecoverable machine faults. All of them move the
// machine to Halted; Step refuses to run afterwards.
var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrHalted         = errors.New("machine halted")
	ErrROMTooLarge    = fmt.Errorf("ROM exceeds %d bytes of program space", MaxROMSize)
)

// InvalidOpcodeError reports an instruction word that matches no documented
// opcode pattern. It is recoverable: the fetch and PC advance still happened
// and the run loop may carry on.
type InvalidOpcodeError struct {
	Word uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %04X", e.Word)
}

// OutOfRangeError reports a computed memory address at or beyond the 4KiB
// address space. Addresses never wrap; the access is a fault.
type OutOfRangeError struct {
	Addr uint
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("memory access out of range: 0x%04X", e.Addr)
}

// IsFatal reports whether err leaves the machine unable to continue.
// Invalid opcodes are diagnostics; everything else from Step is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var inv *InvalidOpcodeError
	return !errors.As(err, &inv)
}
