package cpu

import (
	"fmt"
	"strings"
)

// Disassemble decodes the instruction at address, returning its text
// and length in bytes. Memory is read through peek, which should not
// have side effects.
func Disassemble(peek func(uint16) uint8, address uint16) (string, uint8) {
	opcode := peek(address)
	if opcode == 0xCB {
		return InstructionSetCB[peek(address+1)].Name, 2
	}

	instr := InstructionSet[opcode]
	if !instr.Valid() {
		return fmt.Sprintf("DB $%02X", opcode), 1
	}

	name := instr.Name
	switch {
	case strings.Contains(name, "d16"):
		name = strings.Replace(name, "d16", fmt.Sprintf("$%04X", peek16(peek, address+1)), 1)
	case strings.Contains(name, "a16"):
		name = strings.Replace(name, "a16", fmt.Sprintf("$%04X", peek16(peek, address+1)), 1)
	case strings.Contains(name, "d8"):
		name = strings.Replace(name, "d8", fmt.Sprintf("$%02X", peek(address+1)), 1)
	case strings.Contains(name, "a8"):
		name = strings.Replace(name, "(a8)", fmt.Sprintf("($FF%02X)", peek(address+1)), 1)
	case strings.Contains(name, "SP+r8"):
		name = strings.Replace(name, "r8", fmt.Sprintf("%d", int8(peek(address+1))), 1)
	case strings.Contains(name, "r8"):
		if strings.HasPrefix(name, "JR") {
			// show the target rather than the offset
			target := uint16(int32(address) + int32(instr.Length) + int32(int8(peek(address+1))))
			name = strings.Replace(name, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			name = strings.Replace(name, "r8", fmt.Sprintf("%d", int8(peek(address+1))), 1)
		}
	}

	return name, instr.Length
}

func peek16(peek func(uint16) uint8, address uint16) uint16 {
	return uint16(peek(address+1))<<8 | uint16(peek(address))
}
