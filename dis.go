package chip8

import (
	"encoding/binary"
	"fmt"
)

type instruction struct {
	name string
	args []string
	op   uint16
}

func (i instruction) String() string {
	// fmt.Sprintf(i.name, i.args...) would be too nice:
	// https://golang.org/doc/faq#convert_slice_of_interface
	s := make([]interface{}, len(i.args))
	for j, v := range i.args {
		s[j] = v
	}
	return fmt.Sprintf(i.name, s...)
}

func (i instruction) isCall() bool {
	return i.op&0xF000 == 0x2000
}

func (i instruction) callTarget() uint16 {
	return i.op & 0xFFF
}

type Disassembler struct{}

func (d *Disassembler) dis(mem []byte) instruction {
	op := binary.BigEndian.Uint16(mem[:])
	ins := decode(op)

	switch op >> 12 {
	case 0x0:
		switch op {
		case 0x00E0:
			return instruction{"Clear display", nil, op}
		case 0x00EE:
			return instruction{"Return", nil, op}
		default:
			return instruction{"Call RCA 1802 %s", []string{SArgNNN(op)}, op}
		}
	case 0x1:
		return instruction{"Jump to %s", []string{SArgNNN(op)}, op}
	case 0x2:
		return instruction{"Call %s", []string{SArgNNN(op)}, op}
	case 0x3:
		return instruction{"Skip next if %s == %s", []string{SArgX(op), SArgNN(op)}, op}
	case 0x4:
		return instruction{"Skip next if %s != %s", []string{SArgX(op), SArgNN(op)}, op}
	case 0x5:
		if ins.n != 0 {
			return instruction{"ILLEGAL", nil, op}
		}
		return instruction{"Skip next if %s == %s", []string{SArgX(op), SArgY(op)}, op}
	case 0x6:
		return instruction{"Set %s = %s", []string{SArgX(op), SArgNN(op)}, op}
	case 0x7:
		return instruction{"Set %s += %s", []string{SArgX(op), SArgNN(op)}, op}
	case 0x8:
		switch ins.n {
		case 0x0:
			return instruction{"Set %s = %s", []string{SArgX(op), SArgY(op)}, op}
		case 0x1:
			return instruction{"Set %s = %[1]s|%[2]s", []string{SArgX(op), SArgY(op)}, op}
		case 0x2:
			return instruction{"Set %s = %[1]s&%[2]s", []string{SArgX(op), SArgY(op)}, op}
		case 0x3:
			return instruction{"Set %s = %[1]s^%[2]s", []string{SArgX(op), SArgY(op)}, op}
		case 0x4:
			return instruction{"Set %s += %s", []string{SArgX(op), SArgY(op)}, op}
		case 0x5:
			return instruction{"Set %s -= %s", []string{SArgX(op), SArgY(op)}, op}
		case 0x6:
			return instruction{"Set %s >>= 1", []string{SArgX(op)}, op}
		case 0x7:
			return instruction{"Set %s = %[2]s - %[1]s", []string{SArgX(op), SArgY(op)}, op}
		case 0xE:
			return instruction{"Set %s <<= 1", []string{SArgX(op)}, op}
		default:
			return instruction{"ILLEGAL", nil, op}
		}
	case 0x9:
		if ins.n != 0 {
			return instruction{"ILLEGAL", nil, op}
		}
		return instruction{"Skip next if %s != %s", []string{SArgX(op), SArgY(op)}, op}
	case 0xA:
		return instruction{"Set I = %s", []string{SArgNNN(op)}, op}
	case 0xB:
		return instruction{"Jump to V0 + %s", []string{SArgNNN(op)}, op}
	case 0xC:
		return instruction{"Set %s = rand() & %s", []string{SArgX(op), SArgNN(op)}, op}
	case 0xD:
		return instruction{"Draw sprite at I at (%s, %s) height %s", []string{SArgX(op), SArgY(op), SArgN(op)}, op}
	case 0xE:
		switch ins.nn {
		case 0x9E:
			return instruction{"Skip next if key() == %s", []string{SArgX(op)}, op}
		case 0xA1:
			return instruction{"Skip next if key() != %s", []string{SArgX(op)}, op}
		default:
			return instruction{"ILLEGAL", nil, op}
		}
	case 0xF:
		switch ins.nn {
		case 0x07:
			return instruction{"Set %s = get_delay()", []string{SArgX(op)}, op}
		case 0x0A:
			return instruction{"Set %s = get_key()", []string{SArgX(op)}, op}
		case 0x15:
			return instruction{"Set delay_timer = %s", []string{SArgX(op)}, op}
		case 0x18:
			return instruction{"Set sound_timer = %s", []string{SArgX(op)}, op}
		case 0x1E:
			return instruction{"Set I += %s", []string{SArgX(op)}, op}
		case 0x29:
			return instruction{"Set I = sprite_addr[%s]", []string{SArgX(op)}, op}
		case 0x33:
			return instruction{"Store BCD(%s) at I", []string{SArgX(op)}, op}
		case 0x55:
			return instruction{"Store V0 to %s at I", []string{SArgX(op)}, op}
		case 0x65:
			return instruction{"Load V0 to %s from I", []string{SArgX(op)}, op}
		default:
			return instruction{"ILLEGAL", nil, op}
		}
	default:
		return instruction{"ILLEGAL", nil, op}
	}
}

func SArgX(op uint16) string {
	return fmt.Sprintf("V%01X", uint8(op>>8)&0xF)
}

func SArgY(op uint16) string {
	return fmt.Sprintf("V%01X", uint8(op>>4)&0xF)
}

func SArgN(op uint16) string {
	return fmt.Sprintf("0x%01X", uint8(op)&0xF)
}

func SArgNN(op uint16) string {
	return fmt.Sprintf("0x%02X", uint8(op))
}

func SArgNNN(op uint16) string {
	return fmt.Sprintf("0x%03X", op&0xFFF)
}
