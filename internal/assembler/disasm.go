package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/tritvm/tervm/internal/opcode"
)

// Disassembler renders an instruction list in the assembler's inverse
// presentation: one zero-padded line per instruction. It is not an
// exact inverse of Assemble — operand literal spelling and comments are
// not recovered.
type Disassembler struct {
	writer io.Writer
	instrs []opcode.Instruction
}

// NewDisassembler builds a Disassembler over instrs, writing to w.
func NewDisassembler(instrs []opcode.Instruction, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, instrs: instrs}
}

// Disassemble prints every instruction, one per line.
func (d *Disassembler) Disassemble() {
	for offset := range d.instrs {
		d.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction prints the instruction at offset as
// "NNNN: (s,g,c) mnemonic operand1, operand2, ...".
func (d *Disassembler) DisassembleInstruction(offset int) {
	if offset < 0 || offset >= len(d.instrs) {
		fmt.Fprintf(d.writer, "invalid offset: %d\n", offset)
		return
	}

	ins := d.instrs[offset]
	meta := opcode.Lookup(ins.Address)
	mnemonic := meta.English
	if mnemonic == "" {
		mnemonic = "RESERVED"
	}

	if len(ins.Operands) == 0 {
		fmt.Fprintf(d.writer, "%04d: %s %s\n", offset, ins.Address, mnemonic)
		return
	}

	parts := make([]string, len(ins.Operands))
	for i, op := range ins.Operands {
		parts[i] = op.Display()
	}
	fmt.Fprintf(d.writer, "%04d: %s %s %s\n", offset, ins.Address, mnemonic, strings.Join(parts, ", "))
}

// Text renders the full disassembly as a string, for tests and
// snapshotting.
func Text(instrs []opcode.Instruction) string {
	var sb strings.Builder
	NewDisassembler(instrs, &sb).Disassemble()
	return sb.String()
}
