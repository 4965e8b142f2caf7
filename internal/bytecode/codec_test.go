package bytecode

import (
	"testing"

	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/value"
)

func mustAddr(t *testing.T, name string) opcode.OpcodeAddress {
	t.Helper()
	addr, ok := opcode.Resolve(name)
	if !ok {
		t.Fatalf("mnemonic %q not found", name)
	}
	return addr
}

func TestSerializeHeader(t *testing.T) {
	out, err := Serialize(nil)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{0xCB, 0x33, 0xCB, 0x33, 0x01, 0x00}
	if len(out) < len(want) {
		t.Fatalf("output too short: %d bytes", len(out))
	}
	for i, b := range want {
		if out[i] != b {
			t.Fatalf("header byte %d = 0x%02x, want 0x%02x", i, out[i], b)
		}
	}
}

func TestRoundTripOperandTags(t *testing.T) {
	push := mustAddr(t, "PUSH")
	instrs := []opcode.Instruction{
		opcode.New(push, value.Int(-42)),
		opcode.New(push, value.Float(3.5)),
		opcode.New(push, value.Bool(true)),
		opcode.New(push, value.TritValue(-1)),
		opcode.New(push, value.Str("안녕")),
		opcode.New(push, value.Nil()),
	}

	data, err := Serialize(instrs)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if len(got) != len(instrs) {
		t.Fatalf("got %d instructions, want %d", len(got), len(instrs))
	}
	for i, ins := range got {
		if ins.Address != instrs[i].Address {
			t.Errorf("instr %d address = %v, want %v", i, ins.Address, instrs[i].Address)
		}
		if len(ins.Operands) != len(instrs[i].Operands) {
			t.Fatalf("instr %d operand count = %d, want %d", i, len(ins.Operands), len(instrs[i].Operands))
		}
	}

	if got[0].Operands[0].RawInt() != -42 {
		t.Errorf("int operand = %d, want -42", got[0].Operands[0].RawInt())
	}
	if got[1].Operands[0].RawFloat() != 3.5 {
		t.Errorf("float operand = %v, want 3.5", got[1].Operands[0].RawFloat())
	}
	if !got[2].Operands[0].RawBool() {
		t.Errorf("bool operand = false, want true")
	}
	if got[3].Operands[0].RawTrit().ToI8() != -1 {
		t.Errorf("trit operand = %d, want -1", got[3].Operands[0].RawTrit().ToI8())
	}
	if got[4].Operands[0].RawStr() != "안녕" {
		t.Errorf("str operand = %q, want 안녕", got[4].Operands[0].RawStr())
	}
	if !got[5].Operands[0].IsNil() {
		t.Errorf("nil operand type = %v, want nil", got[5].Operands[0].Type())
	}
}

func TestDeserializeMagicMismatch(t *testing.T) {
	_, err := Deserialize([]byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected a magic mismatch error")
	}
}

func TestDeserializeUnsupportedVersion(t *testing.T) {
	data := []byte{0xCB, 0x33, 0xCB, 0x33, 0x02, 0x00, 0, 0, 0, 0}
	_, err := Deserialize(data)
	if err == nil {
		t.Fatal("expected an unsupported-version error")
	}
}

func TestDeserializeTruncated(t *testing.T) {
	data := []byte{0xCB, 0x33, 0xCB, 0x33, 0x01, 0x00, 1, 0, 0, 0} // count=1, no instruction body
	_, err := Deserialize(data)
	if err == nil {
		t.Fatal("expected a truncation error")
	}
}

func TestAnalyze(t *testing.T) {
	push := mustAddr(t, "PUSH")
	instrs := []opcode.Instruction{
		opcode.New(push, value.Int(1)),
		opcode.New(push, value.Int(2)),
	}
	data, err := Serialize(instrs)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	a, err := Analyze(data)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Version != 1 {
		t.Errorf("version = %d, want 1", a.Version)
	}
	if a.InstructionCount != 2 {
		t.Errorf("instruction count = %d, want 2", a.InstructionCount)
	}
	if a.TotalBytes != len(data) {
		t.Errorf("total bytes = %d, want %d", a.TotalBytes, len(data))
	}
}

func TestTruncateUTF8DoesNotSplitCodepoint(t *testing.T) {
	// "가" is 3 bytes in UTF-8; truncating to 4 bytes of "가가" (6 bytes)
	// must back off to 3, not split the second rune.
	b := []byte("가가")
	got := truncateUTF8(b, 4)
	if len(got) != 3 {
		t.Fatalf("truncateUTF8 returned %d bytes, want 3", len(got))
	}
}

func TestBytecodeRoundTripPreservesArity(t *testing.T) {
	add := mustAddr(t, "ADD")
	halt := mustAddr(t, "HALT")
	push := mustAddr(t, "PUSH")

	instrs := []opcode.Instruction{
		opcode.New(push, value.Int(5)),
		opcode.New(push, value.Int(3)),
		opcode.New(add),
		opcode.New(halt),
	}

	data, err := Serialize(instrs)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	for i, ins := range got {
		if ins.Address != instrs[i].Address || len(ins.Operands) != len(instrs[i].Operands) {
			t.Fatalf("instr %d mismatch: got %v/%d, want %v/%d", i, ins.Address, len(ins.Operands), instrs[i].Address, len(instrs[i].Operands))
		}
	}
}
