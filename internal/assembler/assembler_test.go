package assembler

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/tritvm/tervm/internal/opcode"
)

func TestAssembleBasicArithmetic(t *testing.T) {
	res := Assemble("PUSH 5\nPUSH 3\nADD\nHALT\n")
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if len(res.Instructions) != 4 {
		t.Fatalf("got %d instructions, want 4", len(res.Instructions))
	}
	add, ok := opcode.Resolve("ADD")
	if !ok {
		t.Fatal("ADD not found in catalog")
	}
	if res.Instructions[2].Address != add {
		t.Errorf("instruction 2 address = %v, want %v", res.Instructions[2].Address, add)
	}
}

func TestAssembleCaseInsensitiveMnemonic(t *testing.T) {
	upper := Assemble("ADD\n")
	lower := Assemble("add\n")
	if len(upper.Instructions) != 1 || len(lower.Instructions) != 1 {
		t.Fatalf("expected one instruction each, got %d and %d", len(upper.Instructions), len(lower.Instructions))
	}
	if upper.Instructions[0].Address != lower.Instructions[0].Address {
		t.Errorf("ADD and add resolved to different addresses: %v vs %v",
			upper.Instructions[0].Address, lower.Instructions[0].Address)
	}
}

func TestAssembleSkipsCommentsAndBlankLines(t *testing.T) {
	source := "; a leading comment\n\n// another style\n# and another\nPUSH 1 ; inline comment\nHALT\n"
	res := Assemble(source)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if len(res.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(res.Instructions))
	}
}

func TestAssembleUnknownMnemonicDiagnosesAndSkips(t *testing.T) {
	source := "PUSH 1\nWIBBLE\nPUSH 2\nHALT\n"
	res := Assemble(source)
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
	}
	if res.Diagnostics[0].Pos.Line != 2 {
		t.Errorf("diagnostic line = %d, want 2", res.Diagnostics[0].Pos.Line)
	}
	if len(res.Instructions) != 3 {
		t.Fatalf("got %d surviving instructions, want 3 (bad line skipped)", len(res.Instructions))
	}
}

func TestAssembleOperandTokenGrammar(t *testing.T) {
	res := Assemble(`PUSH "hello", 42, 3.5, nil, 참, P`)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if len(res.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(res.Instructions))
	}
	ops := res.Instructions[0].Operands
	if len(ops) != 6 {
		t.Fatalf("got %d operands, want 6", len(ops))
	}
	if s, ok := ops[0].AsStr(); !ok || s != "hello" {
		t.Errorf("operand 0 = %v, want Str(hello)", ops[0])
	}
	if i, ok := ops[1].AsInt(); !ok || i != 42 {
		t.Errorf("operand 1 = %v, want Int(42)", ops[1])
	}
	if f, ok := ops[2].AsFloat(); !ok || f != 3.5 {
		t.Errorf("operand 2 = %v, want Float(3.5)", ops[2])
	}
	if !ops[3].IsNil() {
		t.Errorf("operand 3 = %v, want Nil", ops[3])
	}
	if !ops[4].IsBool() || !ops[4].RawBool() {
		t.Errorf("operand 4 = %v, want Bool(true)", ops[4])
	}
	if !ops[5].IsTrit() {
		t.Errorf("operand 5 = %v, want Trit", ops[5])
	}
}

func TestAssembleStringLiteralInternsNormalizedForm(t *testing.T) {
	res := Assemble("PUSH \"안녕\"\nPUSH \"안녕\"\nHALT\n")
	if len(res.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(res.Instructions))
	}
	a, _ := res.Instructions[0].Operands[0].AsStr()
	b, _ := res.Instructions[1].Operands[0].AsStr()
	if a != "안녕" || b != "안녕" {
		t.Errorf("got %q and %q, want both %q", a, b, "안녕")
	}
}

// TestDisassembleSnapshot snapshots the disassembly text of a
// representative assembled program.
func TestDisassembleSnapshot(t *testing.T) {
	source := `; exercise a representative slice of the opcode catalog
PUSH 5
PUSH 3
ADD
DUP
PRINT
TRUE
UNKNOWN
AND
HALT
`
	res := Assemble(source)
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	snaps.MatchSnapshot(t, Text(res.Instructions))
}
