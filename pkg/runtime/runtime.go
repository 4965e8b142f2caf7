// Package runtime is the micro-runtime facade: it wraps
// assemble+load+run and assemble+lower+emit behind the two coarse
// operations outer layers consume, collapsing the full error taxonomy
// to a ternary P/Z/N result alongside the richer diagnostics and error
// value callers can still inspect.
package runtime

import (
	"time"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/assembler"
	"github.com/tritvm/tervm/internal/ir"
	"github.com/tritvm/tervm/internal/ternary"
	"github.com/tritvm/tervm/internal/value"
	"github.com/tritvm/tervm/internal/vm"
	"github.com/tritvm/tervm/internal/wasmgen"
)

// ExecuteResult is the outcome of Execute: a ternary state, the value
// left on top of the operand stack (Nil if the stack was empty), any
// diagnostics from assembly, and how long the run took.
type ExecuteResult struct {
	State       ternary.Trit
	Value       value.Value
	Diagnostics []*asmerr.Diagnostic
	Elapsed     time.Duration
	Err         error
}

// Options configures the facade's underlying VM.
type Options struct {
	Sink      vm.Sink
	Source    vm.Source
	MaxCycles uint64
}

// Execute assembles source, runs it to halt on a fresh VM instance, and
// reports a ternary outcome: P on a clean halt, N on any assembly
// diagnostic or runtime error, Z when the source assembled to no
// instructions at all (nothing ran). Each invocation builds its own VM;
// the operation is not re-entrant per instance.
func Execute(source string, opts Options) ExecuteResult {
	start := time.Now()
	res := assembler.Assemble(source)

	if len(res.Diagnostics) > 0 {
		return ExecuteResult{
			State:       ternary.N,
			Diagnostics: res.Diagnostics,
			Elapsed:     time.Since(start),
		}
	}
	if len(res.Instructions) == 0 {
		return ExecuteResult{State: ternary.Z, Value: value.Nil(), Elapsed: time.Since(start)}
	}

	machine := vm.New(vm.WithSink(opts.Sink), vm.WithSource(opts.Source), vm.WithMaxCycles(opts.MaxCycles))
	machine.Load(res.Instructions)

	err := machine.Run()
	top, _ := machine.StackTop()
	elapsed := time.Since(start)

	if err != nil {
		return ExecuteResult{State: ternary.N, Value: top, Elapsed: elapsed, Err: err}
	}
	return ExecuteResult{State: ternary.P, Value: top, Elapsed: elapsed}
}

// CompileResult is the outcome of CompileToWASM.
type CompileResult struct {
	State       ternary.Trit
	Bytes       []byte
	Diagnostics []*asmerr.Diagnostic
	Err         error
}

// CompileToWASM assembles source and lowers it through IR into a binary
// WebAssembly module. State is P on success, Z when the source assembled
// to no instructions (the emitted module is the Const(0) fallback body),
// N on any assembly diagnostic or emitter error.
func CompileToWASM(source string) CompileResult {
	res := assembler.Assemble(source)
	if len(res.Diagnostics) > 0 {
		return CompileResult{State: ternary.N, Diagnostics: res.Diagnostics}
	}

	mod := ir.Lower(res.Instructions)
	bytes, err := wasmgen.Emit(mod)
	if err != nil {
		return CompileResult{State: ternary.N, Err: err}
	}
	if len(res.Instructions) == 0 {
		return CompileResult{State: ternary.Z, Bytes: bytes}
	}
	return CompileResult{State: ternary.P, Bytes: bytes}
}
