package opcode

import (
	"fmt"
	"strings"

	"github.com/tritvm/tervm/internal/value"
)

// Instruction is an OpcodeAddress plus its ordered immediate operands.
type Instruction struct {
	Address  OpcodeAddress
	Operands []value.Value
}

// New builds an Instruction for addr with the given operands.
func New(addr OpcodeAddress, operands ...value.Value) Instruction {
	return Instruction{Address: addr, Operands: operands}
}

// String renders the instruction in the disassembler's presentation:
// "(s,g,c) mnemonic operand1, operand2, ...".
func (ins Instruction) String() string {
	meta := Lookup(ins.Address)
	mnemonic := meta.English
	if mnemonic == "" {
		mnemonic = "RESERVED"
	}

	if len(ins.Operands) == 0 {
		return fmt.Sprintf("%s %s", ins.Address, mnemonic)
	}

	parts := make([]string, len(ins.Operands))
	for i, op := range ins.Operands {
		parts[i] = op.Display()
	}
	return fmt.Sprintf("%s %s %s", ins.Address, mnemonic, strings.Join(parts, ", "))
}
