package vm

import (
	"strings"
	"testing"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/value"
)

func addr(t *testing.T, mnemonic string) opcode.OpcodeAddress {
	t.Helper()
	a, ok := opcode.Resolve(mnemonic)
	if !ok {
		t.Fatalf("mnemonic %q not found", mnemonic)
	}
	return a
}

func ins(t *testing.T, mnemonic string, operands ...value.Value) opcode.Instruction {
	t.Helper()
	return opcode.New(addr(t, mnemonic), operands...)
}

func TestPushAddHalt(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(5)),
		ins(t, "PUSH", value.Int(3)),
		ins(t, "ADD"),
		ins(t, "HALT"),
	}

	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	top, ok := m.StackTop()
	if !ok {
		t.Fatal("expected a value on the stack")
	}
	if top.RawInt() != 8 {
		t.Errorf("top = %d, want 8", top.RawInt())
	}
}

func TestDivisionByZero(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(1)),
		ins(t, "PUSH", value.Int(0)),
		ins(t, "DIV"),
		ins(t, "HALT"),
	}

	m := New()
	m.Load(program)
	err := m.Run()
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	var vmErr *asmerr.VmError
	if !asVmError(err, &vmErr) {
		t.Fatalf("expected *asmerr.VmError, got %T: %v", err, err)
	}
}

func asVmError(err error, target **asmerr.VmError) bool {
	if e, ok := err.(*asmerr.VmError); ok {
		*target = e
		return true
	}
	return false
}

func TestStackUnderflow(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "ADD"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err == nil {
		t.Fatal("expected a stack-underflow error")
	}
}

func TestPrintSink(t *testing.T) {
	var got []value.Value
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(7)),
		ins(t, "PRINT"),
		ins(t, "HALT"),
	}

	m := New(WithSink(func(v value.Value) error {
		got = append(got, v)
		return nil
	}))
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].RawInt() != 7 {
		t.Fatalf("sink received %v, want [7]", got)
	}
}

func TestWriterSink(t *testing.T) {
	var sb strings.Builder
	sink := WriterSink(&sb)
	if err := sink(value.Int(42)); err != nil {
		t.Fatalf("sink: %v", err)
	}
	if sb.String() != "42\n" {
		t.Errorf("sink wrote %q, want %q", sb.String(), "42\n")
	}
}

func TestClearDrainsStack(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(1)),
		ins(t, "PUSH", value.Int(2)),
		ins(t, "PUSH", value.Int(3)),
		ins(t, "CLEAR"),
		ins(t, "HALT"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := m.StackTop(); ok {
		t.Fatal("expected an empty stack after CLEAR")
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Addr(4)),
		ins(t, "PUSH", value.Int(99)),
		ins(t, "STORE"),
		ins(t, "PUSH", value.Addr(4)),
		ins(t, "LOAD"),
		ins(t, "HALT"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top, ok := m.StackTop()
	if !ok || top.RawInt() != 99 {
		t.Fatalf("top = %v, want 99", top)
	}
}

func TestCallReturn(t *testing.T) {
	halt := addr(t, "HALT")
	call := addr(t, "CALL")
	ret := addr(t, "RET")
	push := addr(t, "PUSH")

	program := []opcode.Instruction{
		opcode.New(push, value.Int(1)),  // 0
		opcode.New(call, value.Addr(3)), // 1: call function at index 3
		opcode.New(halt),                // 2: halt after return
		opcode.New(push, value.Int(2)),  // 3: function body
		opcode.New(ret),                 // 4: return to index 2
	}

	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top, ok := m.StackTop()
	if !ok || top.RawInt() != 2 {
		t.Fatalf("top = %v, want 2", top)
	}
}

func TestErrorInsideCallCarriesTrace(t *testing.T) {
	halt := addr(t, "HALT")
	call := addr(t, "CALL")
	div := addr(t, "DIV")
	push := addr(t, "PUSH")

	program := []opcode.Instruction{
		opcode.New(call, value.Addr(2)), // 0: call function at index 2
		opcode.New(halt),                // 1
		opcode.New(push, value.Int(1)),  // 2: function body
		opcode.New(push, value.Int(0)),  // 3
		opcode.New(div),                 // 4: fails inside the frame
	}

	m := New()
	m.Load(program)
	err := m.Run()
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	var vmErr *asmerr.VmError
	if !asVmError(err, &vmErr) {
		t.Fatalf("expected *asmerr.VmError, got %T: %v", err, err)
	}
	if vmErr.Trace.Depth() != 1 {
		t.Fatalf("trace depth = %d, want 1", vmErr.Trace.Depth())
	}
	frame := vmErr.Trace.Top()
	if frame.ReturnIP != 1 || frame.EntryAddress != 2 {
		t.Fatalf("frame = %+v, want return ip 1 and entry 2", frame)
	}
	if !strings.Contains(vmErr.Format(false), "return ip: 1") {
		t.Fatalf("formatted error missing trace: %q", vmErr.Format(false))
	}
}

func TestMaxCyclesBudget(t *testing.T) {
	jmp := addr(t, "JMP")
	program := []opcode.Instruction{
		opcode.New(jmp, value.Addr(0)),
	}
	m := New(WithMaxCycles(5))
	m.Load(program)
	err := m.Run()
	if err == nil {
		t.Fatal("expected a budget-exceeded error")
	}
}

func TestResetClearsHeapAndRegisters(t *testing.T) {
	m := New()
	m.Load([]opcode.Instruction{
		ins(t, "PUSH", value.Addr(0)),
		ins(t, "PUSH", value.Int(1)),
		ins(t, "STORE"),
		ins(t, "PUSH", value.Int(5)),
		ins(t, "RSTORE", value.Int(0)),
	})
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.HeapAliveCount() == 0 {
		t.Fatal("expected a live heap slot before Reset")
	}
	if m.registers[0].RawInt() != 5 {
		t.Fatalf("register 0 = %v before Reset, want 5", m.registers[0])
	}
	m.Reset()
	if m.HeapAliveCount() != 0 {
		t.Errorf("HeapAliveCount after Reset = %d, want 0", m.HeapAliveCount())
	}
	if !m.registers[0].IsNil() {
		t.Errorf("register 0 after Reset = %v, want nil", m.registers[0])
	}
}

func TestAllocWriteReadFree(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(1)), // region size
		ins(t, "ALLOC"),              // -> Addr(0)
		ins(t, "DUP"),
		ins(t, "PUSH", value.Int(77)),
		ins(t, "HWRITE"), // heap[0] = 77, Addr(0) still on stack
		ins(t, "DUP"),
		ins(t, "HREAD"), // -> 77
		ins(t, "HALT"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	top, ok := m.StackTop()
	if !ok || top.RawInt() != 77 {
		t.Fatalf("top = %v, want 77", top)
	}
	if m.HeapAliveCount() != 1 {
		t.Fatalf("HeapAliveCount = %d, want 1", m.HeapAliveCount())
	}
}

func TestFreeReleasesSlot(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(1)),
		ins(t, "ALLOC"),
		ins(t, "FREE"),
		ins(t, "HALT"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.HeapAliveCount() != 0 {
		t.Fatalf("HeapAliveCount = %d, want 0 after FREE", m.HeapAliveCount())
	}
}

func TestReadFreedSlotFails(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(1)
	if err := h.Free(addr); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, err := h.Read(addr); err == nil {
		t.Fatal("expected an error reading a freed slot")
	}
}

func TestErrorLeavesIPAtFailingInstruction(t *testing.T) {
	program := []opcode.Instruction{
		ins(t, "PUSH", value.Int(1)), // 0
		ins(t, "PUSH", value.Int(0)), // 1
		ins(t, "DIV"),                // 2: fails
		ins(t, "HALT"),               // 3
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	if m.IP() != 2 {
		t.Fatalf("ip after failure = %d, want 2 (the failing instruction)", m.IP())
	}
}

func TestUnknownAddressIsNop(t *testing.T) {
	program := []opcode.Instruction{
		{Address: opcode.OpcodeAddress{Sector: 5, Group: 2, Command: 2}},
		ins(t, "PUSH", value.Int(1)),
		ins(t, "HALT"),
	}
	m := New()
	m.Load(program)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Cycles() != 3 {
		t.Fatalf("cycles = %d, want 3 (reserved opcode still counts a cycle)", m.Cycles())
	}
}
