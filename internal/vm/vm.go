// Package vm implements the stack-based execution engine: an operand
// stack, a call-frame stack, a register file, and an indexed heap arena,
// dispatching each fetched instruction through a switch on its
// (sector,group,command) address.
package vm

import (
	"io"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/value"
)

const (
	defaultStackCapacity = 256
	defaultFrameCapacity = 16
	defaultRegisters     = 27 // 3^3, addressable by a RLOAD/RSTORE immediate
)

// Frame is a call-frame entry: the instruction pointer to resume at on
// RET, the CALL target the frame entered, and the operand-stack depth
// at the time of CALL (the frame base).
type Frame struct {
	ReturnIP  int
	EntryIP   int
	FrameBase int
}

// Source reads one line of input for the INPUT opcode.
type Source func() (string, error)

// Sink emits one value for the PRINT opcode.
type Sink func(value.Value) error

// VM owns the program, the operand/call stacks, the register file, the
// heap arena, and the cycle counter. The zero value is not usable; use
// New.
type VM struct {
	program []opcode.Instruction
	ip      int

	stack  []value.Value
	frames []Frame

	registers [defaultRegisters]value.Value

	heap *Heap

	cycles    uint64
	maxCycles uint64 // 0 means unbounded

	sink   Sink
	source Source
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithSink overrides the PRINT host hook. A VM without a sink treats
// PRINT as a plain pop; use WriterSink(os.Stdout) for the stream-backed
// default.
func WithSink(sink Sink) Option {
	return func(v *VM) { v.sink = sink }
}

// WithSource overrides the INPUT host hook.
func WithSource(source Source) Option {
	return func(v *VM) { v.source = source }
}

// WithMaxCycles sets the cycle budget; 0 (the default) means unbounded.
func WithMaxCycles(n uint64) Option {
	return func(v *VM) { v.maxCycles = n }
}

// New constructs an empty VM, ready for Load.
func New(opts ...Option) *VM {
	v := &VM{
		stack:  make([]value.Value, 0, defaultStackCapacity),
		frames: make([]Frame, 0, defaultFrameCapacity),
		heap:   NewHeap(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// WriterSink adapts an io.Writer into a Sink, rendering each value with
// Display() and a trailing newline.
func WriterSink(w io.Writer) Sink {
	return func(v value.Value) error {
		_, err := io.WriteString(w, v.Display()+"\n")
		return err
	}
}

// Load replaces the program, resets ip to 0, and clears the operand and
// call-frame stacks. The heap is left as-is unless Reset is also called.
func (v *VM) Load(program []opcode.Instruction) {
	v.program = program
	v.ip = 0
	v.stack = v.stack[:0]
	v.frames = v.frames[:0]
	v.cycles = 0
}

// Reset clears the heap and register file in addition to what Load
// clears; call before Load to fully restart a VM instance.
func (v *VM) Reset() {
	v.heap = NewHeap()
	v.registers = [defaultRegisters]value.Value{}
}

// IP returns the current instruction pointer.
func (v *VM) IP() int { return v.ip }

// Cycles returns the number of successfully completed steps.
func (v *VM) Cycles() uint64 { return v.cycles }

// HeapAliveCount returns the number of live heap slots.
func (v *VM) HeapAliveCount() int { return v.heap.AliveCount() }

// StackTop returns the top of the operand stack without popping, for
// tests and the facade's result extraction. ok is false on an empty
// stack.
func (v *VM) StackTop() (value.Value, bool) {
	if len(v.stack) == 0 {
		return value.Nil(), false
	}
	return v.stack[len(v.stack)-1], true
}

func (v *VM) push(val value.Value) {
	v.stack = append(v.stack, val)
}

func (v *VM) pop() (value.Value, error) {
	if len(v.stack) == 0 {
		return value.Nil(), v.err(asmerr.StackUnderflow, "pop from empty stack")
	}
	top := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return top, nil
}

func (v *VM) peek() (value.Value, error) {
	if len(v.stack) == 0 {
		return value.Nil(), v.err(asmerr.StackUnderflow, "peek on empty stack")
	}
	return v.stack[len(v.stack)-1], nil
}

// err builds a VmError located at the instruction the VM is currently
// executing. Step has already advanced ip past it, so the failing
// instruction is at ip-1. The live call-frame stack is captured as the
// error's trace, oldest frame first.
func (v *VM) err(kind asmerr.Kind, format string, args ...interface{}) *asmerr.VmError {
	addr := opcode.OpcodeAddress{}
	if v.ip-1 >= 0 && v.ip-1 < len(v.program) {
		addr = v.program[v.ip-1].Address
	}
	e := asmerr.NewVmError(kind, v.ip-1, addr.Sector, addr.Group, addr.Command, format, args...)
	if len(v.frames) > 0 {
		trace := asmerr.NewStackTrace()
		for _, f := range v.frames {
			trace = append(trace, asmerr.NewStackFrame("", f.ReturnIP, f.EntryIP))
		}
		e.Trace = trace
	}
	return e
}

// Step fetches program[ip], advances ip, and executes the instruction's
// effect. It returns true to continue execution, false on HALT or
// program exhaustion. A failing instruction returns an error and leaves
// ip at the failing instruction (ip-1 relative to the post-increment
// value) for debuggers to inspect.
func (v *VM) Step() (bool, error) {
	if v.ip >= len(v.program) {
		return false, nil
	}
	if v.maxCycles != 0 && v.cycles >= v.maxCycles {
		next := v.program[v.ip].Address
		return false, asmerr.NewVmError(asmerr.BudgetExceeded, v.ip, next.Sector, next.Group, next.Command,
			"exceeded max cycles %d", v.maxCycles)
	}

	ins := v.program[v.ip]
	v.ip++

	cont, err := v.execute(ins)
	if err != nil {
		v.ip--
		return false, err
	}
	v.cycles++
	return cont, nil
}

// Run loops Step until a halt opcode, program exhaustion, or an error.
func (v *VM) Run() error {
	for {
		cont, err := v.Step()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}
