package vm

import (
	"math"
	"strconv"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/ternary"
	"github.com/tritvm/tervm/internal/value"
)

// execute dispatches one fetched instruction. Only sector 0 (the Core
// sector populated by the catalog) has real semantics; every other
// sector, and any unimplemented sector-0 address, behaves as NOP and
// still counts a cycle.
func (v *VM) execute(ins opcode.Instruction) (bool, error) {
	a := ins.Address
	if a.Sector != 0 {
		return true, nil
	}

	switch a.Group {
	case 0:
		return v.execLogic(a.Command, ins)
	case 1:
		return v.execArith(a.Command, ins)
	case 2:
		return v.execControl(a.Command, ins)
	case 3:
		return v.execStackIO(a.Command, ins)
	case 4:
		return v.execFunctions(a.Command, ins)
	case 5:
		return v.execType(a.Command, ins)
	case 6:
		return v.execExceptions(a.Command, ins)
	case 7:
		return v.execCollections(a.Command, ins)
	case 8:
		return v.execAccessHeap(a.Command, ins)
	default:
		return true, nil
	}
}

// --- G0 Logic ---

func (v *VM) execLogic(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0: // TRUE
		v.push(value.TritValue(ternary.P))
	case 1: // FALSE
		v.push(value.TritValue(ternary.N))
	case 2: // UNKNOWN
		v.push(value.TritValue(ternary.Z))
	case 3: // EQ
		return true, v.compareOp(func(c int) bool { return c == 0 })
	case 4: // NE
		return true, v.compareOp(func(c int) bool { return c != 0 })
	case 5: // GT
		return true, v.compareOp(func(c int) bool { return c > 0 })
	case 6: // LT
		return true, v.compareOp(func(c int) bool { return c < 0 })
	case 7: // NOT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.TritValue(top.ToTrit().Negate()))
	case 8: // AND
		right, err := v.pop()
		if err != nil {
			return false, err
		}
		left, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.TritValue(left.ToTrit().And(right.ToTrit())))
	}
	return true, nil
}

// compareOp pops two values, numerically or lexically compares them,
// and pushes P if accept(result) else N (false is always N, never Z).
func (v *VM) compareOp(accept func(int) bool) error {
	right, err := v.pop()
	if err != nil {
		return err
	}
	left, err := v.pop()
	if err != nil {
		return err
	}

	var cmp int
	if left.IsNumber() && right.IsNumber() {
		lf, _ := left.AsFloat()
		rf, _ := right.AsFloat()
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	} else if c, ok := left.Compare(right); ok {
		cmp = c
	} else {
		return v.err(asmerr.TypeMismatch, "cannot compare %s and %s", left.Type(), right.Type())
	}

	if accept(cmp) {
		v.push(value.TritValue(ternary.P))
	} else {
		v.push(value.TritValue(ternary.N))
	}
	return nil
}

// --- G1 Arithmetic ---

func (v *VM) execArith(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0:
		return true, v.binaryArith(func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	case 1:
		return true, v.binaryArith(func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case 2:
		return true, v.binaryArith(func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	case 3:
		return true, v.divOrMod(false)
	case 4:
		return true, v.divOrMod(true)
	case 5: // NEG
		return true, v.unaryArith(func(a int64) int64 { return -a }, func(a float64) float64 { return -a })
	case 6: // ABS
		return true, v.unaryArith(func(a int64) int64 {
			if a < 0 {
				return -a
			}
			return a
		}, math.Abs)
	case 7: // SQR
		return true, v.unaryArith(func(a int64) int64 { return a * a }, func(a float64) float64 { return a * a })
	case 8: // SQRT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		f, ok := top.AsFloat()
		if !ok {
			return false, v.err(asmerr.TypeMismatch, "SQRT requires a number, got %s", top.Type())
		}
		v.push(value.Float(math.Sqrt(f)))
	}
	return true, nil
}

func (v *VM) binaryArith(intOp func(a, b int64) int64, floatOp func(a, b float64) float64) error {
	right, err := v.pop()
	if err != nil {
		return err
	}
	left, err := v.pop()
	if err != nil {
		return err
	}
	if left.IsInt() && right.IsInt() {
		v.push(value.Int(intOp(left.RawInt(), right.RawInt())))
		return nil
	}
	lf, ok1 := left.AsFloat()
	rf, ok2 := right.AsFloat()
	if !ok1 || !ok2 {
		return v.err(asmerr.TypeMismatch, "arithmetic requires numbers, got %s, %s", left.Type(), right.Type())
	}
	v.push(value.Float(floatOp(lf, rf)))
	return nil
}

func (v *VM) unaryArith(intOp func(int64) int64, floatOp func(float64) float64) error {
	top, err := v.pop()
	if err != nil {
		return err
	}
	if top.IsInt() {
		v.push(value.Int(intOp(top.RawInt())))
		return nil
	}
	f, ok := top.AsFloat()
	if !ok {
		return v.err(asmerr.TypeMismatch, "arithmetic requires a number, got %s", top.Type())
	}
	v.push(value.Float(floatOp(f)))
	return nil
}

func (v *VM) divOrMod(mod bool) error {
	right, err := v.pop()
	if err != nil {
		return err
	}
	left, err := v.pop()
	if err != nil {
		return err
	}
	if left.IsInt() && right.IsInt() {
		r := right.RawInt()
		if r == 0 {
			return v.err(asmerr.DivisionByZero, "division by zero")
		}
		if mod {
			v.push(value.Int(left.RawInt() % r))
		} else {
			v.push(value.Int(left.RawInt() / r))
		}
		return nil
	}
	lf, ok1 := left.AsFloat()
	rf, ok2 := right.AsFloat()
	if !ok1 || !ok2 {
		return v.err(asmerr.TypeMismatch, "arithmetic requires numbers, got %s, %s", left.Type(), right.Type())
	}
	if rf == 0 {
		return v.err(asmerr.DivisionByZero, "division by zero")
	}
	if mod {
		v.push(value.Float(math.Mod(lf, rf)))
	} else {
		v.push(value.Float(lf / rf))
	}
	return nil
}

// --- G2 Control ---

func (v *VM) execControl(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0: // JMP
		target, err := v.jumpTarget(ins)
		if err != nil {
			return false, err
		}
		v.ip = target
	case 1: // JMPIF
		target, err := v.jumpTarget(ins)
		if err != nil {
			return false, err
		}
		cond, err := v.pop()
		if err != nil {
			return false, err
		}
		if cond.AsBool() {
			v.ip = target
		}
	case 2: // CALL
		target, err := v.jumpTarget(ins)
		if err != nil {
			return false, err
		}
		v.frames = append(v.frames, Frame{ReturnIP: v.ip, EntryIP: target, FrameBase: len(v.stack)})
		v.ip = target
	case 3: // RET
		if len(v.frames) == 0 {
			return false, v.err(asmerr.InvalidAddress, "RET with no active call frame")
		}
		top := v.frames[len(v.frames)-1]
		v.frames = v.frames[:len(v.frames)-1]
		v.ip = top.ReturnIP
	case 4, 5, 6: // LOOP, BREAK, CONT — structured loop control left to
		// the assembler's jump-target lowering; no frame-level effect.
		return true, nil
	case 7: // HALT
		return false, nil
	case 8: // CMP — alias for SUB, leaving the ternary result for a
		// following G0 comparison to interpret.
		return true, v.binaryArith(func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	}
	return true, nil
}

func (v *VM) jumpTarget(ins opcode.Instruction) (int, error) {
	if len(ins.Operands) == 0 {
		return 0, v.err(asmerr.MissingOperand, "jump requires a target operand")
	}
	target, ok := ins.Operands[0].AsInt()
	if !ok {
		return 0, v.err(asmerr.TypeMismatch, "jump target must be numeric")
	}
	if target < 0 || int(target) > len(v.program) {
		return 0, v.err(asmerr.InvalidJumpTarget, "jump target %d out of program range", target)
	}
	return int(target), nil
}

// --- G3 Stack/IO ---

func (v *VM) execStackIO(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0: // PUSH
		if len(ins.Operands) == 0 {
			return false, v.err(asmerr.MissingOperand, "PUSH requires an immediate operand")
		}
		v.push(ins.Operands[0])
	case 1: // POP
		if _, err := v.pop(); err != nil {
			return false, err
		}
	case 2: // DUP
		top, err := v.peek()
		if err != nil {
			return false, err
		}
		v.push(top)
	case 3: // SWAP
		right, err := v.pop()
		if err != nil {
			return false, err
		}
		left, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(right)
		v.push(left)
	case 4: // CLEAR — drains the stack to empty.
		v.stack = v.stack[:0]
	case 5: // PRINT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		if v.sink != nil {
			if err := v.sink(top); err != nil {
				return false, v.err(asmerr.Custom, "print: %v", err)
			}
		}
	case 6: // INPUT
		if v.source == nil {
			v.push(value.Nil())
			break
		}
		line, err := v.source()
		if err != nil {
			return false, v.err(asmerr.Custom, "input: %v", err)
		}
		if i, perr := strconv.ParseInt(line, 10, 64); perr == nil {
			v.push(value.Int(i))
		} else {
			v.push(value.Str(line))
		}
	case 7: // STORE
		val, err := v.pop()
		if err != nil {
			return false, err
		}
		addrVal, err := v.pop()
		if err != nil {
			return false, err
		}
		addr, ok := addrVal.AsInt()
		if !ok || addr < 0 {
			return false, v.err(asmerr.TypeMismatch, "STORE requires a non-negative address")
		}
		v.heap.WriteGlobal(uint64(addr), val)
	case 8: // LOAD
		addrVal, err := v.pop()
		if err != nil {
			return false, err
		}
		addr, ok := addrVal.AsInt()
		if !ok || addr < 0 {
			return false, v.err(asmerr.TypeMismatch, "LOAD requires a non-negative address")
		}
		v.push(v.heap.ReadGlobal(uint64(addr)))
	}
	return true, nil
}

// --- G4 Functions ---

func (v *VM) execFunctions(cmd int, ins opcode.Instruction) (bool, error) {
	// FUNC/PARAM/RECUR/LAMBDA/APPLY/BIND/UNBIND remain metadata-only
	// NOPs pending a full function ABI. RETURN pops the active call frame
	// like RET; with no active frame it stops execution instead of
	// raising an error as RET does.
	if cmd == 2 { // RETURN
		if len(v.frames) == 0 {
			return false, nil
		}
		top := v.frames[len(v.frames)-1]
		v.frames = v.frames[:len(v.frames)-1]
		v.ip = top.ReturnIP
	}
	return true, nil
}

// --- G5 Type ---

func (v *VM) execType(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0: // TOINT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		i, ok := top.AsInt()
		if !ok {
			return false, v.err(asmerr.TypeMismatch, "cannot convert %s to int", top.Type())
		}
		v.push(value.Int(i))
	case 1: // TOFLT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		f, ok := top.AsFloat()
		if !ok {
			return false, v.err(asmerr.TypeMismatch, "cannot convert %s to float", top.Type())
		}
		v.push(value.Float(f))
	case 2: // TOSTR
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.Str(top.Display()))
	case 3: // TOTRIT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.TritValue(top.ToTrit()))
	case 4: // TYPE
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.Str(top.Type().String()))
	case 5: // TOBOOL
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		v.push(value.Bool(top.AsBool()))
	case 6, 7, 8: // CLASS, INHERIT, IMPL — object-model metadata, NOP.
	}
	return true, nil
}

// --- G6 Exceptions ---

func (v *VM) execExceptions(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 2: // THROW
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		return false, v.err(asmerr.Custom, "thrown: %s", top.Display())
	case 4: // ASSERT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		if !top.AsBool() {
			return false, v.err(asmerr.Custom, "assertion failed")
		}
	case 5, 6, 7: // WARN, ERROR, LOG
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		if v.sink != nil {
			_ = v.sink(top)
		}
	case 0, 1, 3, 8: // TRY, CATCH, FINALLY, TRACE — handler registration
		// is a future function-ABI concern; NOP for now.
	}
	return true, nil
}

// --- G7 Collections ---

func (v *VM) execCollections(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0: // ARRAY — immediate n: pop n values, push an Array (bottom
		// of the popped span first).
		if len(ins.Operands) == 0 {
			return false, v.err(asmerr.MissingOperand, "ARRAY requires an element-count operand")
		}
		n, ok := ins.Operands[0].AsInt()
		if !ok || n < 0 || int(n) > len(v.stack) {
			return false, v.err(asmerr.TypeMismatch, "ARRAY count out of range")
		}
		elems := make([]value.Value, n)
		copy(elems, v.stack[len(v.stack)-int(n):])
		v.stack = v.stack[:len(v.stack)-int(n)]
		v.push(value.Array(elems))
	case 1: // APPEND
		elem, err := v.pop()
		if err != nil {
			return false, err
		}
		arr, err := v.pop()
		if err != nil {
			return false, err
		}
		if !arr.IsArray() {
			return false, v.err(asmerr.TypeMismatch, "APPEND requires an array")
		}
		v.push(value.Array(append(append([]value.Value{}, arr.RawArray()...), elem)))
	case 2: // LEN
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		switch {
		case top.IsArray():
			v.push(value.Int(int64(len(top.RawArray()))))
		case top.IsStr():
			v.push(value.Int(int64(len(top.RawStr()))))
		default:
			return false, v.err(asmerr.TypeMismatch, "LEN requires an array or string")
		}
	case 3: // INDEX
		idxVal, err := v.pop()
		if err != nil {
			return false, err
		}
		arr, err := v.pop()
		if err != nil {
			return false, err
		}
		idx, ok := idxVal.AsInt()
		if !arr.IsArray() || !ok || idx < 0 || int(idx) >= len(arr.RawArray()) {
			return false, v.err(asmerr.InvalidAddress, "INDEX out of range")
		}
		v.push(arr.RawArray()[idx])
	case 4: // SLICE
		endVal, err := v.pop()
		if err != nil {
			return false, err
		}
		startVal, err := v.pop()
		if err != nil {
			return false, err
		}
		arr, err := v.pop()
		if err != nil {
			return false, err
		}
		start, ok1 := startVal.AsInt()
		end, ok2 := endVal.AsInt()
		elems := arr.RawArray()
		if !arr.IsArray() || !ok1 || !ok2 || start < 0 || end > int64(len(elems)) || start > end {
			return false, v.err(asmerr.InvalidAddress, "SLICE bounds out of range")
		}
		v.push(value.Array(elems[start:end]))
	case 5, 6, 7: // MAP, FILTER, FOLD — require calling back into a
		// function address carried as an immediate; left as NOP until
		// a full function ABI is realized.
	case 8: // SORT
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		if !top.IsArray() {
			return false, v.err(asmerr.TypeMismatch, "SORT requires an array")
		}
		sorted := append([]value.Value{}, top.RawArray()...)
		sortValues(sorted)
		v.push(value.Array(sorted))
	}
	return true, nil
}

func sortValues(vs []value.Value) {
	for i := 1; i < len(vs); i++ {
		j := i
		for j > 0 {
			c, ok := vs[j-1].Compare(vs[j])
			if !ok || c <= 0 {
				break
			}
			vs[j-1], vs[j] = vs[j], vs[j-1]
			j--
		}
	}
}

// --- G8 Access/Heap ---

func (v *VM) execAccessHeap(cmd int, ins opcode.Instruction) (bool, error) {
	switch cmd {
	case 0, 1, 2: // PUBLIC, PRIVATE, PROTECT — object-model metadata, NOP.
	case 3: // ALLOC
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		n, ok := top.AsInt()
		if !ok || n < 1 {
			n = 1
		}
		v.push(value.Addr(v.heap.Allocate(int(n))))
	case 4: // FREE
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		addr, ok := top.AsInt()
		if !ok || addr < 0 {
			return false, v.err(asmerr.TypeMismatch, "FREE requires an address")
		}
		if err := v.heap.Free(uint64(addr)); err != nil {
			return false, err
		}
	case 5: // HREAD
		top, err := v.pop()
		if err != nil {
			return false, err
		}
		addr, ok := top.AsInt()
		if !ok || addr < 0 {
			return false, v.err(asmerr.TypeMismatch, "HREAD requires an address")
		}
		val, err := v.heap.Read(uint64(addr))
		if err != nil {
			return false, err
		}
		v.push(val)
	case 6: // HWRITE
		val, err := v.pop()
		if err != nil {
			return false, err
		}
		addrVal, err := v.pop()
		if err != nil {
			return false, err
		}
		addr, ok := addrVal.AsInt()
		if !ok || addr < 0 {
			return false, v.err(asmerr.TypeMismatch, "HWRITE requires an address")
		}
		if err := v.heap.Write(uint64(addr), val); err != nil {
			return false, err
		}
	case 7: // RLOAD — immediate register index
		if len(ins.Operands) == 0 {
			return false, v.err(asmerr.MissingOperand, "RLOAD requires a register-index operand")
		}
		idx, ok := ins.Operands[0].AsInt()
		if !ok || idx < 0 || int(idx) >= len(v.registers) {
			return false, v.err(asmerr.InvalidAddress, "RLOAD register index out of range")
		}
		v.push(v.registers[idx])
	case 8: // RSTORE — immediate register index
		if len(ins.Operands) == 0 {
			return false, v.err(asmerr.MissingOperand, "RSTORE requires a register-index operand")
		}
		idx, ok := ins.Operands[0].AsInt()
		if !ok || idx < 0 || int(idx) >= len(v.registers) {
			return false, v.err(asmerr.InvalidAddress, "RSTORE register index out of range")
		}
		val, err := v.pop()
		if err != nil {
			return false, err
		}
		v.registers[idx] = val
	}
	return true, nil
}
