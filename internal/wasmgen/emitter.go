package wasmgen

import (
	"github.com/tritvm/tervm/internal/ir"
)

// funcSig is a deduplication key for the type section: a function's
// param types joined with its result type.
type funcSig struct {
	params string
	result string
}

func sigOf(params []ir.ValType, result ir.ValType) funcSig {
	sig := funcSig{params: valsKey(params)}
	if result != ir.ValTypeNone {
		sig.result = string(byteOf(result))
	}
	return sig
}

func valsKey(vs []ir.ValType) string {
	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byteOf(v)
	}
	return string(b)
}

func byteOf(v ir.ValType) byte {
	switch v {
	case ir.ValTypeI32:
		return valI32
	case ir.ValTypeI64:
		return valI64
	case ir.ValTypeF64:
		return valF64
	default:
		return 0
	}
}

// Emit lowers mod into a byte-exact binary WebAssembly module. It is a
// pure function of mod: no map iteration leaks into the output, and
// every list (imports, types, exports) is emitted in first-use / declared
// order.
func Emit(mod ir.Module) ([]byte, error) {
	types, typeIndex := buildTypeSection(mod)

	out := make([]byte, 0, 256)
	out = append(out, Magic[:]...)
	out = append(out, Version[:]...)

	out = appendSection(out, sectionType, encodeTypeSection(types))
	out = appendSection(out, sectionImport, encodeImportSection(mod.Imports, typeIndex))
	out = appendSection(out, sectionFunction, encodeFunctionSection(mod.Functions, typeIndex))
	out = appendSection(out, sectionMemory, encodeMemorySection(mod.MemoryPages))
	if len(mod.Globals) > 0 {
		out = appendSection(out, sectionGlobal, encodeGlobalSection(mod.Globals))
	}
	out = appendSection(out, sectionExport, encodeExportSection(mod))

	code, err := encodeCodeSection(mod.Functions)
	if err != nil {
		return nil, err
	}
	out = appendSection(out, sectionCode, code)

	return out, nil
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = uleb128(out, uint64(len(body)))
	return append(out, body...)
}

// buildTypeSection collects the deduplicated signature list in
// first-use order: imports first (they are always declared first in
// the module), then module-defined functions.
func buildTypeSection(mod ir.Module) ([]funcSig, map[funcSig]int) {
	var types []funcSig
	index := make(map[funcSig]int)

	add := func(params []ir.ValType, result ir.ValType) {
		sig := sigOf(params, result)
		if _, ok := index[sig]; ok {
			return
		}
		index[sig] = len(types)
		types = append(types, sig)
	}

	for _, imp := range mod.Imports {
		add(imp.Params, imp.Result)
	}
	for _, fn := range mod.Functions {
		add(fn.Params, fn.Result)
	}

	return types, index
}

func encodeTypeSection(types []funcSig) []byte {
	var b []byte
	b = uleb128(b, uint64(len(types)))
	for _, t := range types {
		b = append(b, funcTypeTag)
		b = uleb128(b, uint64(len(t.params)))
		b = append(b, []byte(t.params)...)
		if t.result == "" {
			b = uleb128(b, 0)
		} else {
			b = uleb128(b, 1)
			b = append(b, []byte(t.result)...)
		}
	}
	return b
}

func encodeImportSection(imports []ir.Import, typeIndex map[funcSig]int) []byte {
	var b []byte
	b = uleb128(b, uint64(len(imports)))
	for _, imp := range imports {
		b = appendName(b, imp.Module)
		b = appendName(b, imp.Name)
		b = append(b, kindFunc)
		idx := typeIndex[sigOf(imp.Params, imp.Result)]
		b = uleb128(b, uint64(idx))
	}
	return b
}

func encodeFunctionSection(fns []ir.Function, typeIndex map[funcSig]int) []byte {
	var b []byte
	b = uleb128(b, uint64(len(fns)))
	for _, fn := range fns {
		idx := typeIndex[sigOf(fn.Params, fn.Result)]
		b = uleb128(b, uint64(idx))
	}
	return b
}

func encodeMemorySection(pages uint32) []byte {
	var b []byte
	b = uleb128(b, 1) // one memory
	b = append(b, 0x00) // limits flag: min only
	b = uleb128(b, uint64(pages))
	return b
}

func encodeGlobalSection(globals []ir.ValType) []byte {
	var b []byte
	b = uleb128(b, uint64(len(globals)))
	for _, g := range globals {
		b = append(b, byteOf(g))
		b = append(b, 0x01) // mutable
		switch g {
		case ir.ValTypeF64:
			b = append(b, opF64Const)
			b = f64bytes(b, 0)
		default:
			b = append(b, opI64Const)
			b = sleb128(b, 0)
		}
		b = append(b, opEnd)
	}
	return b
}

// encodeExportSection exports every Function with Export=true, in
// declared order, followed by the module's single memory as "memory".
func encodeExportSection(mod ir.Module) []byte {
	funcIdx := len(mod.Imports)
	count := 1 // memory export
	for _, fn := range mod.Functions {
		if fn.Export {
			count++
		}
	}

	var b []byte
	b = uleb128(b, uint64(count))
	for _, fn := range mod.Functions {
		if fn.Export {
			b = appendName(b, fn.Name)
			b = append(b, kindFunc)
			b = uleb128(b, uint64(funcIdx))
		}
		funcIdx++
	}
	b = appendName(b, "memory")
	b = append(b, kindMemory)
	b = uleb128(b, 0)
	return b
}

func encodeCodeSection(fns []ir.Function) ([]byte, error) {
	var b []byte
	b = uleb128(b, uint64(len(fns)))
	for _, fn := range fns {
		body, err := encodeFunctionBody(fn)
		if err != nil {
			return nil, err
		}
		b = uleb128(b, uint64(len(body)))
		b = append(b, body...)
	}
	return b, nil
}

// encodeFunctionBody writes the locals-count header (grouped by run of
// identical type, as the binary format requires) followed by the
// lowered instruction stream and a terminating end opcode.
func encodeFunctionBody(fn ir.Function) ([]byte, error) {
	var b []byte

	groups := groupLocals(fn.Locals)
	b = uleb128(b, uint64(len(groups)))
	for _, g := range groups {
		b = uleb128(b, uint64(g.count))
		b = append(b, byteOf(g.typ))
	}

	for _, instr := range fn.Body {
		enc, err := encodeInstr(instr)
		if err != nil {
			return nil, err
		}
		b = append(b, enc...)
	}
	b = append(b, opEnd)
	return b, nil
}

type localGroup struct {
	typ   ir.ValType
	count int
}

func groupLocals(locals []ir.ValType) []localGroup {
	var groups []localGroup
	for _, l := range locals {
		if len(groups) > 0 && groups[len(groups)-1].typ == l {
			groups[len(groups)-1].count++
			continue
		}
		groups = append(groups, localGroup{typ: l, count: 1})
	}
	return groups
}

func appendName(b []byte, name string) []byte {
	b = uleb128(b, uint64(len(name)))
	return append(b, []byte(name)...)
}

// encodeInstr lowers one IR op to its binary encoding. Ops with no
// native WASM equivalent on i64 are expanded into a short sequence: Neg
// and TritNot multiply by -1; Dup, Swap, Abs, Min, Max, TritAnd, TritOr
// and TritClamp go through the scratch locals that ir.Lower reserves in
// main.
// An op the emitter doesn't recognize is encoded as a bare nop rather
// than failing, preserving byte-determinism on unrecognized IR input.
func encodeInstr(instr ir.Instr) ([]byte, error) {
	switch instr.Op {
	case ir.OpConst, ir.OpConstTrit:
		return append([]byte{opI64Const}, sleb128(nil, instr.Imm)...), nil
	case ir.OpConstF64:
		return append([]byte{opF64Const}, f64bytes(nil, instr.ImmF)...), nil
	case ir.OpDrop:
		return []byte{opDrop}, nil
	case ir.OpDup:
		// There is no native dup: round-trip through the scratch local.
		return encodeDup(), nil
	case ir.OpSwap:
		return encodeSwap(), nil
	case ir.OpAdd:
		return []byte{opI64Add}, nil
	case ir.OpSub:
		return []byte{opI64Sub}, nil
	case ir.OpMul:
		return []byte{opI64Mul}, nil
	case ir.OpDiv:
		return []byte{opI64DivS}, nil
	case ir.OpRem:
		return []byte{opI64RemS}, nil
	case ir.OpNeg, ir.OpTritNot:
		// x * -1
		b := []byte{opI64Const}
		b = sleb128(b, -1)
		return append(b, opI64Mul), nil
	case ir.OpAbs:
		return encodeAbs(), nil
	case ir.OpMin, ir.OpTritAnd:
		return encodeMinMax(true), nil
	case ir.OpMax, ir.OpTritOr:
		return encodeMinMax(false), nil
	case ir.OpEq:
		return relop(opI64Eq), nil
	case ir.OpNe:
		return relop(opI64Ne), nil
	case ir.OpGt:
		return relop(opI64GtS), nil
	case ir.OpLt:
		return relop(opI64LtS), nil
	case ir.OpGe:
		return relop(opI64GeS), nil
	case ir.OpLe:
		return relop(opI64LeS), nil
	case ir.OpEqz:
		return relop(opI64Eqz), nil
	case ir.OpBlock:
		return []byte{opBlock, blockTypeVoid}, nil
	case ir.OpLoop:
		return []byte{opLoop, blockTypeVoid}, nil
	case ir.OpBr:
		return append([]byte{opBr}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpBrIf:
		return append([]byte{opI32WrapI64, opBrIf}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpCall, ir.OpCallImport:
		return append([]byte{opCall}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpReturn:
		return []byte{opReturn}, nil
	case ir.OpEnd:
		return []byte{opEnd}, nil
	case ir.OpHalt:
		return []byte{opReturn}, nil
	case ir.OpMemLoad:
		// The address comes off the i64 stack; i64.load wants i32.
		b := []byte{opI32WrapI64, opI64Load}
		b = uleb128(b, 3) // alignment hint: 8-byte natural alignment
		return uleb128(b, uint64(instr.Imm)), nil
	case ir.OpMemStore:
		// Stack is [addr, value] with value on top: park the value in
		// the scratch local, wrap the addr to i32, then store.
		b := []byte{opLocalSet}
		b = uleb128(b, 0) // sqrLocalSlot
		b = append(b, opI32WrapI64, opLocalGet)
		b = uleb128(b, 0)
		b = append(b, opI64Store)
		b = uleb128(b, 3)
		return uleb128(b, uint64(instr.Imm)), nil
	case ir.OpMemGrow:
		// memory.grow takes and returns i32 page counts; sign-extend
		// the result so a -1 failure survives the widening.
		return []byte{opI32WrapI64, opMemoryGrow, 0x00, opI64ExtendI32S}, nil
	case ir.OpLocalGet:
		return append([]byte{opLocalGet}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpLocalSet:
		return append([]byte{opLocalSet}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpGlobalGet:
		return append([]byte{opGlobalGet}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpGlobalSet:
		return append([]byte{opGlobalSet}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpI64ExtendI32:
		return []byte{opI64ExtendI32S}, nil
	case ir.OpF64ConvertI64:
		return []byte{opF64ConvertI64S}, nil
	case ir.OpI64TruncF64:
		return []byte{opI64TruncF64S}, nil
	case ir.OpSqrt:
		return []byte{opF64Sqrt}, nil
	case ir.OpPrint, ir.OpInput:
		return append([]byte{opCall}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpTritClamp:
		return encodeTritClamp(), nil
	case ir.OpTritBranch:
		return append([]byte{opI32WrapI64, opBrIf}, uleb128(nil, uint64(instr.Imm))...), nil
	case ir.OpNop:
		return []byte{opNop}, nil
	default:
		return []byte{opNop}, nil
	}
}

// relop pairs an i64 comparison opcode with i64.extend_i32_u. Every
// i64 relop pushes an i32 boolean, but the lowered stack is uniformly
// i64 (main's result, arithmetic, global stores, env.print all expect
// i64), so the 0/1 result is widened back before it re-enters the
// stack.
func relop(op byte) []byte {
	return []byte{op, opI64ExtendI32U}
}

// encodeDup sets the scratch local and gets it twice, leaving two
// copies of the former stack top.
func encodeDup() []byte {
	const tmp = 0 // sqrLocalSlot, shared scratch
	b := []byte{opLocalSet}
	b = uleb128(b, tmp)
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	return b
}

// encodeSwap pops the top two into the swap locals and pushes them back
// in reverse order.
func encodeSwap() []byte {
	const a, bLocal = 1, 2 // swapLocalA, swapLocalB
	b := []byte{opLocalSet}
	b = uleb128(b, bLocal)
	b = append(b, opLocalSet)
	b = uleb128(b, a)
	b = append(b, opLocalGet)
	b = uleb128(b, bLocal)
	b = append(b, opLocalGet)
	b = uleb128(b, a)
	return b
}

// encodeAbs expands ABS using the sqr scratch local and an if/else
// block, since WASM has no native i64.abs: store the value, test its
// sign, and select -x or x.
func encodeAbs() []byte {
	const tmp = 0 // sqrLocalSlot, shared scratch
	b := []byte{opLocalSet}
	b = uleb128(b, tmp)
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opI64Const)
	b = sleb128(b, 0)
	b = append(b, opI64LtS)
	b = append(b, 0x04, valI64) // if (result i64)
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opI64Const)
	b = sleb128(b, -1)
	b = append(b, opI64Mul)
	b = append(b, 0x05) // else
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opEnd) // end if
	return b
}

// encodeMinMax expands ternary min/max over the two scratch swap
// locals, reusing the same if/else pattern as Abs.
func encodeMinMax(isMin bool) []byte {
	const a, bLocal = 1, 2 // swapLocalA, swapLocalB
	b := []byte{opLocalSet}
	b = uleb128(b, bLocal)
	b = append(b, opLocalSet)
	b = uleb128(b, a)
	b = append(b, opLocalGet)
	b = uleb128(b, a)
	b = append(b, opLocalGet)
	b = uleb128(b, bLocal)
	if isMin {
		b = append(b, opI64LtS)
	} else {
		b = append(b, opI64GtS)
	}
	b = append(b, 0x04, valI64) // if (result i64)
	b = append(b, opLocalGet)
	b = uleb128(b, a)
	b = append(b, 0x05) // else
	b = append(b, opLocalGet)
	b = uleb128(b, bLocal)
	b = append(b, opEnd)
	return b
}

// encodeTritClamp normalizes an i64 to {-1,0,1} by sign, using nested
// if/else blocks over the sqr scratch local.
func encodeTritClamp() []byte {
	const tmp = 0
	b := []byte{opLocalSet}
	b = uleb128(b, tmp)
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opI64Const)
	b = sleb128(b, 0)
	b = append(b, opI64GtS)
	b = append(b, 0x04, valI64) // outer if (result i64)
	b = append(b, opI64Const)
	b = sleb128(b, 1)
	b = append(b, 0x05) // else
	b = append(b, opLocalGet)
	b = uleb128(b, tmp)
	b = append(b, opI64Const)
	b = sleb128(b, 0)
	b = append(b, opI64LtS)
	b = append(b, 0x04, valI64) // inner if (result i64)
	b = append(b, opI64Const)
	b = sleb128(b, -1)
	b = append(b, 0x05) // else
	b = append(b, opI64Const)
	b = sleb128(b, 0)
	b = append(b, opEnd) // end inner if
	b = append(b, opEnd) // end outer if
	return b
}
