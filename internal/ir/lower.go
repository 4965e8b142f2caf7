package ir

import (
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/value"
)

// Scratch local indices the lowered "main" function always reserves.
// The emitter's Dup/Swap/Abs/min-max expansions address these same
// slots, so the layout here is a contract with wasmgen.
const (
	sqrLocalSlot = 0
	swapLocalA   = 1
	swapLocalB   = 2
)

// Lower translates a VM program into a single exported "main" function
// returning one i64, using a fixed per-opcode lowering table. Only
// sector-0 addresses have real mappings; everything else lowers to Nop,
// preserving the WASM emitter's byte-determinism on unrecognized input.
func Lower(program []opcode.Instruction) Module {
	mod := Module{
		Imports:     FixedImports(),
		MemoryPages: 1,
		Globals:     []ValType{ValTypeI64}, // global 0: STORE/LOAD's target slot
	}

	fn := Function{
		Name:   "main",
		Result: ValTypeI64,
		Locals: []ValType{ValTypeI64, ValTypeI64, ValTypeI64},
		Export: true,
	}

	for _, ins := range program {
		fn.Body = append(fn.Body, lowerOne(ins)...)
	}

	if len(fn.Body) == 0 {
		fn.Body = append(fn.Body, Const(0))
	}

	mod.Functions = append(mod.Functions, fn)
	return mod
}

const importCount = 3

func lowerOne(ins opcode.Instruction) []Instr {
	a := ins.Address
	if a.Sector != 0 {
		return []Instr{Simple(OpNop)}
	}

	switch a.Group {
	case 0:
		return lowerLogic(a.Command)
	case 1:
		return lowerArith(a.Command)
	case 2:
		return lowerControl(a.Command, ins)
	case 3:
		return lowerStackIO(a.Command, ins)
	case 8:
		return lowerAccessHeap(a.Command)
	default:
		return []Instr{Simple(OpNop)}
	}
}

func lowerLogic(cmd int) []Instr {
	switch cmd {
	case 0:
		return []Instr{ConstTrit(1)}
	case 1:
		return []Instr{ConstTrit(-1)}
	case 2:
		return []Instr{ConstTrit(0)}
	case 3:
		return []Instr{Simple(OpEq)}
	case 4:
		return []Instr{Simple(OpNe)}
	case 5:
		return []Instr{Simple(OpGt)}
	case 6:
		return []Instr{Simple(OpLt)}
	case 7:
		return []Instr{Simple(OpTritNot)}
	case 8:
		return []Instr{Simple(OpTritAnd)}
	default:
		return []Instr{Simple(OpNop)}
	}
}

func lowerArith(cmd int) []Instr {
	switch cmd {
	case 0:
		return []Instr{Simple(OpAdd)}
	case 1:
		return []Instr{Simple(OpSub)}
	case 2:
		return []Instr{Simple(OpMul)}
	case 3:
		return []Instr{Simple(OpDiv)}
	case 4:
		return []Instr{Simple(OpRem)}
	case 5:
		return []Instr{Simple(OpNeg)}
	case 6:
		return []Instr{Simple(OpAbs)}
	case 7: // SQR: store into the scratch local, get it twice, multiply.
		return []Instr{
			WithImm(OpLocalSet, sqrLocalSlot),
			WithImm(OpLocalGet, sqrLocalSlot),
			WithImm(OpLocalGet, sqrLocalSlot),
			Simple(OpMul),
		}
	case 8: // SQRT: convert to f64, take the real sqrt opcode rather
		// than a placeholder Nop, truncate back to i64.
		return []Instr{
			Simple(OpF64ConvertI64),
			Simple(OpSqrt),
			Simple(OpI64TruncF64),
		}
	default:
		return []Instr{Simple(OpNop)}
	}
}

func lowerControl(cmd int, ins opcode.Instruction) []Instr {
	switch cmd {
	case 0:
		return []Instr{WithImm(OpBr, immOf(ins))}
	case 1:
		return []Instr{WithImm(OpBrIf, immOf(ins))}
	case 2:
		return []Instr{WithImm(OpCall, immOf(ins)+importCount)}
	case 3:
		return []Instr{Simple(OpReturn)}
	case 7:
		return []Instr{Simple(OpHalt)}
	case 8:
		return []Instr{Simple(OpSub)}
	default:
		return []Instr{Simple(OpNop)}
	}
}

func lowerStackIO(cmd int, ins opcode.Instruction) []Instr {
	switch cmd {
	case 0:
		return []Instr{lowerPush(ins)}
	case 1:
		return []Instr{Simple(OpDrop)}
	case 2:
		return []Instr{Simple(OpDup)}
	case 3:
		return []Instr{Simple(OpSwap)}
	case 5:
		return []Instr{WithImm(OpCallImport, importPrint)}
	case 6:
		return []Instr{WithImm(OpCallImport, importInput)}
	case 7:
		return []Instr{WithImm(OpGlobalSet, 0)}
	case 8:
		return []Instr{WithImm(OpGlobalGet, 0)}
	default:
		return []Instr{Simple(OpNop)}
	}
}

func lowerAccessHeap(cmd int) []Instr {
	switch cmd {
	case 3:
		return []Instr{Simple(OpMemGrow)}
	case 5:
		return []Instr{WithImm(OpMemLoad, 0)}
	case 6:
		return []Instr{WithImm(OpMemStore, 0)}
	default:
		return []Instr{Simple(OpNop)}
	}
}

// lowerPush maps a PUSH's immediate Value to the matching IR constant
// form: ConstF64 for Float, ConstTrit for Trit, Const (i64) for
// Int/Bool/Nil/the UTF-8 byte length of Str, and Const(0) as the
// default when no operand was supplied.
func lowerPush(ins opcode.Instruction) Instr {
	if len(ins.Operands) == 0 {
		return Const(0)
	}
	v := ins.Operands[0]
	switch v.Type() {
	case value.TypeFloat:
		f, _ := v.AsFloat()
		return ConstF64(f)
	case value.TypeTrit:
		return ConstTrit(int64(v.RawTrit().ToI8()))
	case value.TypeStr:
		return Const(int64(len(v.RawStr())))
	case value.TypeBool, value.TypeNil, value.TypeInt:
		i, _ := v.AsInt()
		return Const(i)
	default:
		i, _ := v.AsInt()
		return Const(i)
	}
}

func immOf(ins opcode.Instruction) int64 {
	if len(ins.Operands) == 0 {
		return 0
	}
	i, _ := ins.Operands[0].AsInt()
	return i
}
