package validate

import (
	"github.com/manhvn135/gowasm/internal/wasm"
)

// step validates exactly one instruction, returning done=true once the
// function-terminating `end` (the one that closes the outermost frame) has
// been consumed.
func (v *validator) step() (done bool, err error) {
	opb, err := v.readByte()
	if err != nil {
		return false, err
	}
	op := wasm.Opcode(opb)

	switch op {
	case wasm.OpcodeUnreachable:
		v.setUnreachable()
	case wasm.OpcodeNop:

	case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf:
		bt, err := v.readBlockType()
		if err != nil {
			return false, err
		}
		for i := len(bt.params) - 1; i >= 0; i-- {
			if err := v.popExpect(bt.params[i]); err != nil {
				return false, err
			}
		}
		if op == wasm.OpcodeIf {
			if err := v.popExpect(i32); err != nil {
				return false, err
			}
		}
		kind := frameBlock
		if op == wasm.OpcodeLoop {
			kind = frameLoop
		} else if op == wasm.OpcodeIf {
			kind = frameIf
		}
		if len(v.frames) >= maxControlFrames {
			return false, v.errf("control frame stack exceeds limit")
		}
		v.pushFrame(kind, bt)
		for _, p := range bt.params {
			v.push(p)
		}

	case wasm.OpcodeElse:
		f := v.top()
		if f.kind != frameIf {
			return false, v.errf("else without matching if")
		}
		if f.elseSeen {
			return false, v.errf("duplicate else")
		}
		f.elseSeen = true
		if err := v.checkBranchTypes(f.blockType.results, true); err != nil {
			return false, err
		}
		v.stack = v.stack[:f.stackHeight]
		f.unreachable = false
		for _, p := range f.blockType.params {
			v.push(p)
		}

	case wasm.OpcodeEnd:
		f := v.top()
		if err := v.checkBranchTypes(f.blockType.results, true); err != nil {
			return false, err
		}
		v.stack = v.stack[:f.stackHeight]
		v.frames = v.frames[:len(v.frames)-1]
		for _, r := range f.blockType.results {
			v.push(r)
		}
		if len(v.frames) == 0 {
			return true, nil
		}

	case wasm.OpcodeBr:
		depth, err := v.readU32()
		if err != nil {
			return false, err
		}
		target, err := v.labelFrame(depth)
		if err != nil {
			return false, err
		}
		keepSlots, dropSlots := v.branchInfo(target, len(v.stack))
		v.branches = append(v.branches, BranchInfo{KeepSlots: keepSlots, DropSlots: []int{dropSlots}})
		if err := v.checkBranchTypes(branchValueTypes(target), true); err != nil {
			return false, err
		}
		v.setUnreachable()

	case wasm.OpcodeBrIf:
		depth, err := v.readU32()
		if err != nil {
			return false, err
		}
		target, err := v.labelFrame(depth)
		if err != nil {
			return false, err
		}
		if err := v.popExpect(i32); err != nil {
			return false, err
		}
		keepSlots, dropSlots := v.branchInfo(target, len(v.stack))
		v.branches = append(v.branches, BranchInfo{KeepSlots: keepSlots, DropSlots: []int{dropSlots}})
		if err := v.checkBranchTypes(branchValueTypes(target), false); err != nil {
			return false, err
		}

	case wasm.OpcodeBrTable:
		n, err := v.readU32()
		if err != nil {
			return false, err
		}
		targets := make([]*controlFrame, n+1)
		for i := uint32(0); i < n; i++ {
			d, err := v.readU32()
			if err != nil {
				return false, err
			}
			targets[i], err = v.labelFrame(d)
			if err != nil {
				return false, err
			}
		}
		d, err := v.readU32()
		if err != nil {
			return false, err
		}
		def, err := v.labelFrame(d)
		if err != nil {
			return false, err
		}
		targets[n] = def
		if err := v.popExpect(i32); err != nil {
			return false, err
		}
		defTypes := branchValueTypes(def)
		for _, t := range targets {
			if !sameTypes(branchValueTypes(t), defTypes) {
				return false, v.errf("br_table targets disagree on result types")
			}
		}
		h := len(v.stack)
		keepSlots := 0
		for _, t := range defTypes {
			keepSlots += slotWidth(t)
		}
		dropSlots := make([]int, n+1)
		for i, t := range targets {
			_, dropSlots[i] = v.branchInfo(t, h)
		}
		v.branches = append(v.branches, BranchInfo{KeepSlots: keepSlots, DropSlots: dropSlots})
		if err := v.checkBranchTypes(defTypes, true); err != nil {
			return false, err
		}
		v.setUnreachable()

	case wasm.OpcodeReturn:
		if err := v.checkBranchTypes(v.funcResults, true); err != nil {
			return false, err
		}
		v.setUnreachable()

	case wasm.OpcodeCall:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= v.m.FunctionCount() {
			return false, v.errf("call target %d out of range", idx)
		}
		ft := v.m.FuncType(idx)
		for i := len(ft.Params) - 1; i >= 0; i-- {
			if err := v.popExpect(ft.Params[i]); err != nil {
				return false, err
			}
		}
		for _, r := range ft.Results {
			v.push(r)
		}

	case wasm.OpcodeCallIndirect:
		typeIdx, err := v.readU32()
		if err != nil {
			return false, err
		}
		tableIdx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(tableIdx) >= len(v.m.Tables) {
			return false, v.errf("call_indirect table %d out of range", tableIdx)
		}
		if int(typeIdx) >= len(v.m.Types) {
			return false, v.errf("call_indirect type %d out of range", typeIdx)
		}
		if err := v.popExpect(i32); err != nil {
			return false, err
		}
		ft := v.m.Types[typeIdx]
		for i := len(ft.Params) - 1; i >= 0; i-- {
			if err := v.popExpect(ft.Params[i]); err != nil {
				return false, err
			}
		}
		for _, r := range ft.Results {
			v.push(r)
		}

	case wasm.OpcodeDrop:
		if _, err := v.pop(); err != nil {
			return false, err
		}

	case wasm.OpcodeSelect:
		if err := v.popExpect(i32); err != nil {
			return false, err
		}
		b, err := v.pop()
		if err != nil {
			return false, err
		}
		if err := v.popExpect(b); err != nil {
			return false, err
		}
		v.push(b)

	case wasm.OpcodeLocalGet:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= len(v.locals) {
			return false, v.errf("local %d out of range", idx)
		}
		v.push(v.locals[idx])
	case wasm.OpcodeLocalSet:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= len(v.locals) {
			return false, v.errf("local %d out of range", idx)
		}
		if err := v.popExpect(v.locals[idx]); err != nil {
			return false, err
		}
	case wasm.OpcodeLocalTee:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= len(v.locals) {
			return false, v.errf("local %d out of range", idx)
		}
		if err := v.popExpect(v.locals[idx]); err != nil {
			return false, err
		}
		v.push(v.locals[idx])
	case wasm.OpcodeGlobalGet:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= len(v.m.Globals) {
			return false, v.errf("global %d out of range", idx)
		}
		v.push(v.m.Globals[idx].Type)
	case wasm.OpcodeGlobalSet:
		idx, err := v.readU32()
		if err != nil {
			return false, err
		}
		if int(idx) >= len(v.m.Globals) {
			return false, v.errf("global %d out of range", idx)
		}
		g := v.m.Globals[idx]
		if !g.Mutable {
			return false, v.errf("global.set on immutable global %d", idx)
		}
		if err := v.popExpect(g.Type); err != nil {
			return false, err
		}

	case wasm.OpcodeMemorySize:
		if _, err := v.readByte(); err != nil { // memory index, must be 0.
			return false, err
		}
		v.push(i32)
	case wasm.OpcodeMemoryGrow:
		if _, err := v.readByte(); err != nil {
			return false, err
		}
		if err := v.popExpect(i32); err != nil {
			return false, err
		}
		v.push(i32)

	case wasm.OpcodeI32Const:
		if _, err := v.readI32(); err != nil {
			return false, err
		}
		v.push(i32)
	case wasm.OpcodeI64Const:
		if _, err := v.readI64(); err != nil {
			return false, err
		}
		v.push(i64)
	case wasm.OpcodeF32Const:
		if _, err := v.readFixed(4); err != nil {
			return false, err
		}
		v.push(f32)
	case wasm.OpcodeF64Const:
		if _, err := v.readFixed(8); err != nil {
			return false, err
		}
		v.push(f64)

	case wasm.OpcodeMiscPrefix:
		if err := v.miscOp(); err != nil {
			return false, err
		}
	case wasm.OpcodeSIMDPrefix:
		if err := v.simdOp(); err != nil {
			return false, err
		}

	default:
		if err := v.simpleOp(op); err != nil {
			return false, err
		}
	}
	return false, nil
}

// memImmediate reads the align/offset pair and validates the alignment
// bound (§4.D).
func (v *validator) memImmediate(maxAlign uint32) (offset uint32, err error) {
	align, err := v.readU32()
	if err != nil {
		return 0, err
	}
	if align > maxAlign {
		return 0, v.errf("alignment %d exceeds natural alignment %d", align, maxAlign)
	}
	offset, err = v.readU32()
	return offset, err
}

func (v *validator) load(maxAlign uint32, result wasm.ValueType) error {
	if _, err := v.memImmediate(maxAlign); err != nil {
		return err
	}
	if err := v.popExpect(i32); err != nil {
		return err
	}
	v.push(result)
	return nil
}

func (v *validator) store(maxAlign uint32, operand wasm.ValueType) error {
	if _, err := v.memImmediate(maxAlign); err != nil {
		return err
	}
	if err := v.popExpect(operand); err != nil {
		return err
	}
	return v.popExpect(i32)
}

func (v *validator) unop(t wasm.ValueType) error {
	if err := v.popExpect(t); err != nil {
		return err
	}
	v.push(t)
	return nil
}

func (v *validator) binop(t wasm.ValueType) error {
	if err := v.popExpect(t); err != nil {
		return err
	}
	if err := v.popExpect(t); err != nil {
		return err
	}
	v.push(t)
	return nil
}

func (v *validator) testop(t wasm.ValueType) error {
	if err := v.popExpect(t); err != nil {
		return err
	}
	v.push(i32)
	return nil
}

func (v *validator) relop(t wasm.ValueType) error {
	if err := v.popExpect(t); err != nil {
		return err
	}
	if err := v.popExpect(t); err != nil {
		return err
	}
	v.push(i32)
	return nil
}

func (v *validator) cvtop(from, to wasm.ValueType) error {
	if err := v.popExpect(from); err != nil {
		return err
	}
	v.push(to)
	return nil
}

// simpleOp handles every opcode whose validation needs no immediate beyond
// what is implied by its fixed signature: memory ops (alignment + offset),
// arithmetic, comparisons, and conversions.
func (v *validator) simpleOp(op wasm.Opcode) error {
	switch op {
	case wasm.OpcodeI32Load:
		return v.load(2, i32)
	case wasm.OpcodeI64Load:
		return v.load(3, i64)
	case wasm.OpcodeF32Load:
		return v.load(2, f32)
	case wasm.OpcodeF64Load:
		return v.load(3, f64)
	case wasm.OpcodeI32Load8S, wasm.OpcodeI32Load8U:
		return v.load(0, i32)
	case wasm.OpcodeI32Load16S, wasm.OpcodeI32Load16U:
		return v.load(1, i32)
	case wasm.OpcodeI64Load8S, wasm.OpcodeI64Load8U:
		return v.load(0, i64)
	case wasm.OpcodeI64Load16S, wasm.OpcodeI64Load16U:
		return v.load(1, i64)
	case wasm.OpcodeI64Load32S, wasm.OpcodeI64Load32U:
		return v.load(2, i64)
	case wasm.OpcodeI32Store:
		return v.store(2, i32)
	case wasm.OpcodeI64Store:
		return v.store(3, i64)
	case wasm.OpcodeF32Store:
		return v.store(2, f32)
	case wasm.OpcodeF64Store:
		return v.store(3, f64)
	case wasm.OpcodeI32Store8:
		return v.store(0, i32)
	case wasm.OpcodeI32Store16:
		return v.store(1, i32)
	case wasm.OpcodeI64Store8:
		return v.store(0, i64)
	case wasm.OpcodeI64Store16:
		return v.store(1, i64)
	case wasm.OpcodeI64Store32:
		return v.store(2, i64)

	case wasm.OpcodeI32Eqz:
		return v.testop(i32)
	case wasm.OpcodeI32Eq, wasm.OpcodeI32Ne, wasm.OpcodeI32LtS, wasm.OpcodeI32LtU,
		wasm.OpcodeI32GtS, wasm.OpcodeI32GtU, wasm.OpcodeI32LeS, wasm.OpcodeI32LeU,
		wasm.OpcodeI32GeS, wasm.OpcodeI32GeU:
		return v.relop(i32)
	case wasm.OpcodeI64Eqz:
		return v.testop(i64)
	case wasm.OpcodeI64Eq, wasm.OpcodeI64Ne, wasm.OpcodeI64LtS, wasm.OpcodeI64LtU,
		wasm.OpcodeI64GtS, wasm.OpcodeI64GtU, wasm.OpcodeI64LeS, wasm.OpcodeI64LeU,
		wasm.OpcodeI64GeS, wasm.OpcodeI64GeU:
		return v.relop(i64)
	case wasm.OpcodeF32Eq, wasm.OpcodeF32Ne, wasm.OpcodeF32Lt, wasm.OpcodeF32Gt,
		wasm.OpcodeF32Le, wasm.OpcodeF32Ge:
		return v.relop(f32)
	case wasm.OpcodeF64Eq, wasm.OpcodeF64Ne, wasm.OpcodeF64Lt, wasm.OpcodeF64Gt,
		wasm.OpcodeF64Le, wasm.OpcodeF64Ge:
		return v.relop(f64)

	case wasm.OpcodeI32Clz, wasm.OpcodeI32Ctz, wasm.OpcodeI32Popcnt:
		return v.unop(i32)
	case wasm.OpcodeI32Add, wasm.OpcodeI32Sub, wasm.OpcodeI32Mul, wasm.OpcodeI32DivS,
		wasm.OpcodeI32DivU, wasm.OpcodeI32RemS, wasm.OpcodeI32RemU, wasm.OpcodeI32And,
		wasm.OpcodeI32Or, wasm.OpcodeI32Xor, wasm.OpcodeI32Shl, wasm.OpcodeI32ShrS,
		wasm.OpcodeI32ShrU, wasm.OpcodeI32Rotl, wasm.OpcodeI32Rotr:
		return v.binop(i32)

	case wasm.OpcodeI64Clz, wasm.OpcodeI64Ctz, wasm.OpcodeI64Popcnt:
		return v.unop(i64)
	case wasm.OpcodeI64Add, wasm.OpcodeI64Sub, wasm.OpcodeI64Mul, wasm.OpcodeI64DivS,
		wasm.OpcodeI64DivU, wasm.OpcodeI64RemS, wasm.OpcodeI64RemU, wasm.OpcodeI64And,
		wasm.OpcodeI64Or, wasm.OpcodeI64Xor, wasm.OpcodeI64Shl, wasm.OpcodeI64ShrS,
		wasm.OpcodeI64ShrU, wasm.OpcodeI64Rotl, wasm.OpcodeI64Rotr:
		return v.binop(i64)

	case wasm.OpcodeF32Abs, wasm.OpcodeF32Neg, wasm.OpcodeF32Ceil, wasm.OpcodeF32Floor,
		wasm.OpcodeF32Trunc, wasm.OpcodeF32Nearest, wasm.OpcodeF32Sqrt:
		return v.unop(f32)
	case wasm.OpcodeF32Add, wasm.OpcodeF32Sub, wasm.OpcodeF32Mul, wasm.OpcodeF32Div,
		wasm.OpcodeF32Min, wasm.OpcodeF32Max, wasm.OpcodeF32Copysign:
		return v.binop(f32)
	case wasm.OpcodeF64Abs, wasm.OpcodeF64Neg, wasm.OpcodeF64Ceil, wasm.OpcodeF64Floor,
		wasm.OpcodeF64Trunc, wasm.OpcodeF64Nearest, wasm.OpcodeF64Sqrt:
		return v.unop(f64)
	case wasm.OpcodeF64Add, wasm.OpcodeF64Sub, wasm.OpcodeF64Mul, wasm.OpcodeF64Div,
		wasm.OpcodeF64Min, wasm.OpcodeF64Max, wasm.OpcodeF64Copysign:
		return v.binop(f64)

	case wasm.OpcodeI32WrapI64:
		return v.cvtop(i64, i32)
	case wasm.OpcodeI32TruncF32S, wasm.OpcodeI32TruncF32U:
		return v.cvtop(f32, i32)
	case wasm.OpcodeI32TruncF64S, wasm.OpcodeI32TruncF64U:
		return v.cvtop(f64, i32)
	case wasm.OpcodeI64ExtendI32S, wasm.OpcodeI64ExtendI32U:
		return v.cvtop(i32, i64)
	case wasm.OpcodeI64TruncF32S, wasm.OpcodeI64TruncF32U:
		return v.cvtop(f32, i64)
	case wasm.OpcodeI64TruncF64S, wasm.OpcodeI64TruncF64U:
		return v.cvtop(f64, i64)
	case wasm.OpcodeF32ConvertI32S, wasm.OpcodeF32ConvertI32U:
		return v.cvtop(i32, f32)
	case wasm.OpcodeF32ConvertI64S, wasm.OpcodeF32ConvertI64U:
		return v.cvtop(i64, f32)
	case wasm.OpcodeF32DemoteF64:
		return v.cvtop(f64, f32)
	case wasm.OpcodeF64ConvertI32S, wasm.OpcodeF64ConvertI32U:
		return v.cvtop(i32, f64)
	case wasm.OpcodeF64ConvertI64S, wasm.OpcodeF64ConvertI64U:
		return v.cvtop(i64, f64)
	case wasm.OpcodeF64PromoteF32:
		return v.cvtop(f32, f64)
	case wasm.OpcodeI32ReinterpretF32:
		return v.cvtop(f32, i32)
	case wasm.OpcodeI64ReinterpretF64:
		return v.cvtop(f64, i64)
	case wasm.OpcodeF32ReinterpretI32:
		return v.cvtop(i32, f32)
	case wasm.OpcodeF64ReinterpretI64:
		return v.cvtop(i64, f64)
	case wasm.OpcodeI32Extend8S, wasm.OpcodeI32Extend16S:
		return v.unop(i32)
	case wasm.OpcodeI64Extend8S, wasm.OpcodeI64Extend16S, wasm.OpcodeI64Extend32S:
		return v.unop(i64)
	}
	return v.errf("unsupported opcode %#x", byte(op))
}

func (v *validator) miscOp() error {
	sub, err := v.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case wasm.MiscI32TruncSatF32S, wasm.MiscI32TruncSatF32U:
		return v.cvtop(f32, i32)
	case wasm.MiscI32TruncSatF64S, wasm.MiscI32TruncSatF64U:
		return v.cvtop(f64, i32)
	case wasm.MiscI64TruncSatF32S, wasm.MiscI64TruncSatF32U:
		return v.cvtop(f32, i64)
	case wasm.MiscI64TruncSatF64S, wasm.MiscI64TruncSatF64U:
		return v.cvtop(f64, i64)
	case wasm.MiscMemoryInit:
		if _, err := v.readU32(); err != nil { // data segment index
			return err
		}
		if _, err := v.readByte(); err != nil { // memory index
			return err
		}
		for i := 0; i < 3; i++ {
			if err := v.popExpect(i32); err != nil {
				return err
			}
		}
	case wasm.MiscDataDrop:
		if _, err := v.readU32(); err != nil {
			return err
		}
	case wasm.MiscMemoryCopy:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if _, err := v.readByte(); err != nil {
			return err
		}
		for i := 0; i < 3; i++ {
			if err := v.popExpect(i32); err != nil {
				return err
			}
		}
	case wasm.MiscMemoryFill:
		if _, err := v.readByte(); err != nil {
			return err
		}
		for i := 0; i < 3; i++ {
			if err := v.popExpect(i32); err != nil {
				return err
			}
		}
	default:
		return v.errf("unsupported 0xFC sub-opcode %d", sub)
	}
	return nil
}

// simdOp validates the representative SIMD subset this runtime implements
// (see internal/wasm/opcode.go). Every SIMD op is validated generically by
// shape/arity rather than one case per concrete opcode, since the type
// signature pattern (unop/binop/relop/load/store over v128, with an
// occasional extra lane-index byte or extracted scalar) is shared across
// the whole family.
func (v *validator) simdOp() error {
	sub, err := v.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case wasm.SIMDV128Load:
		return v.load(4, v128)
	case wasm.SIMDV128Load32Zero:
		return v.load(2, v128)
	case wasm.SIMDV128Load64Zero:
		return v.load(3, v128)
	case wasm.SIMDV128Store:
		return v.store(4, v128)
	case wasm.SIMDV128Const:
		if _, err := v.readFixed(16); err != nil {
			return err
		}
		v.push(v128)
	case wasm.SIMDI8x16Shuffle:
		if _, err := v.readFixed(16); err != nil {
			return err
		}
		return v.binop(v128)
	case wasm.SIMDI8x16Swizzle:
		return v.binop(v128)

	case wasm.SIMDI8x16Splat, wasm.SIMDI16x8Splat, wasm.SIMDI32x4Splat:
		return v.cvtop(i32, v128)
	case wasm.SIMDI64x2Splat:
		return v.cvtop(i64, v128)
	case wasm.SIMDF32x4Splat:
		return v.cvtop(f32, v128)
	case wasm.SIMDF64x2Splat:
		return v.cvtop(f64, v128)

	case wasm.SIMDI8x16ExtractLaneS, wasm.SIMDI8x16ExtractLaneU,
		wasm.SIMDI16x8ExtractLaneS, wasm.SIMDI16x8ExtractLaneU, wasm.SIMDI32x4ExtractLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.cvtop(v128, i32)
	case wasm.SIMDI64x2ExtractLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.cvtop(v128, i64)
	case wasm.SIMDF32x4ExtractLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.cvtop(v128, f32)
	case wasm.SIMDF64x2ExtractLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		return v.cvtop(v128, f64)
	case wasm.SIMDI8x16ReplaceLane, wasm.SIMDI16x8ReplaceLane, wasm.SIMDI32x4ReplaceLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if err := v.popExpect(i32); err != nil {
			return err
		}
		return v.unop(v128)
	case wasm.SIMDI64x2ReplaceLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if err := v.popExpect(i64); err != nil {
			return err
		}
		return v.unop(v128)
	case wasm.SIMDF32x4ReplaceLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if err := v.popExpect(f32); err != nil {
			return err
		}
		return v.unop(v128)
	case wasm.SIMDF64x2ReplaceLane:
		if _, err := v.readByte(); err != nil {
			return err
		}
		if err := v.popExpect(f64); err != nil {
			return err
		}
		return v.unop(v128)

	case wasm.SIMDV128Not, wasm.SIMDI8x16Abs, wasm.SIMDI8x16Neg, wasm.SIMDI16x8Abs,
		wasm.SIMDI16x8Neg, wasm.SIMDI32x4Abs, wasm.SIMDI32x4Neg, wasm.SIMDI64x2Abs,
		wasm.SIMDI64x2Neg, wasm.SIMDF32x4Ceil, wasm.SIMDF32x4Floor, wasm.SIMDF32x4Trunc,
		wasm.SIMDF32x4Nearest, wasm.SIMDF32x4Abs, wasm.SIMDF32x4Neg, wasm.SIMDF32x4Sqrt,
		wasm.SIMDF64x2Ceil, wasm.SIMDF64x2Floor, wasm.SIMDF64x2Trunc, wasm.SIMDF64x2Nearest,
		wasm.SIMDF64x2Abs, wasm.SIMDF64x2Neg, wasm.SIMDF64x2Sqrt,
		wasm.SIMDI32x4TruncSatF32x4S, wasm.SIMDI32x4TruncSatF32x4U, wasm.SIMDF32x4ConvertI32x4S,
		wasm.SIMDF32x4ConvertI32x4U:
		return v.unop(v128)

	case wasm.SIMDI8x16AllTrue, wasm.SIMDI16x8AllTrue, wasm.SIMDI32x4AllTrue, wasm.SIMDV128AnyTrue,
		wasm.SIMDI8x16Bitmask, wasm.SIMDI16x8Bitmask, wasm.SIMDI32x4Bitmask:
		return v.cvtop(v128, i32)

	case wasm.SIMDI8x16Shl, wasm.SIMDI8x16ShrS, wasm.SIMDI8x16ShrU,
		wasm.SIMDI16x8Shl, wasm.SIMDI16x8ShrS, wasm.SIMDI16x8ShrU,
		wasm.SIMDI32x4Shl, wasm.SIMDI32x4ShrS, wasm.SIMDI32x4ShrU,
		wasm.SIMDI64x2Shl, wasm.SIMDI64x2ShrS, wasm.SIMDI64x2ShrU:
		if err := v.popExpect(i32); err != nil {
			return err
		}
		return v.unop(v128)

	case wasm.SIMDV128And, wasm.SIMDV128AndNot, wasm.SIMDV128Or, wasm.SIMDV128Xor,
		wasm.SIMDI8x16Eq, wasm.SIMDI8x16Ne, wasm.SIMDI8x16LtS, wasm.SIMDI8x16LtU,
		wasm.SIMDI8x16GtS, wasm.SIMDI8x16GtU, wasm.SIMDI8x16LeS, wasm.SIMDI8x16LeU,
		wasm.SIMDI8x16GeS, wasm.SIMDI8x16GeU,
		wasm.SIMDI16x8Eq, wasm.SIMDI16x8Ne, wasm.SIMDI16x8LtS, wasm.SIMDI16x8LtU,
		wasm.SIMDI16x8GtS, wasm.SIMDI16x8GtU, wasm.SIMDI16x8LeS, wasm.SIMDI16x8LeU,
		wasm.SIMDI16x8GeS, wasm.SIMDI16x8GeU,
		wasm.SIMDI32x4Eq, wasm.SIMDI32x4Ne, wasm.SIMDI32x4LtS, wasm.SIMDI32x4LtU,
		wasm.SIMDI32x4GtS, wasm.SIMDI32x4GtU, wasm.SIMDI32x4LeS, wasm.SIMDI32x4LeU,
		wasm.SIMDI32x4GeS, wasm.SIMDI32x4GeU,
		wasm.SIMDF32x4Eq, wasm.SIMDF32x4Ne, wasm.SIMDF32x4Lt, wasm.SIMDF32x4Gt,
		wasm.SIMDF32x4Le, wasm.SIMDF32x4Ge,
		wasm.SIMDF64x2Eq, wasm.SIMDF64x2Ne, wasm.SIMDF64x2Lt, wasm.SIMDF64x2Gt,
		wasm.SIMDF64x2Le, wasm.SIMDF64x2Ge,
		wasm.SIMDI8x16Add, wasm.SIMDI8x16AddSatS, wasm.SIMDI8x16AddSatU, wasm.SIMDI8x16Sub,
		wasm.SIMDI8x16SubSatS, wasm.SIMDI8x16SubSatU, wasm.SIMDI8x16MinS, wasm.SIMDI8x16MinU,
		wasm.SIMDI8x16MaxS, wasm.SIMDI8x16MaxU,
		wasm.SIMDI16x8Add, wasm.SIMDI16x8AddSatS, wasm.SIMDI16x8AddSatU, wasm.SIMDI16x8Sub,
		wasm.SIMDI16x8SubSatS, wasm.SIMDI16x8SubSatU, wasm.SIMDI16x8Mul, wasm.SIMDI16x8MinS,
		wasm.SIMDI16x8MinU, wasm.SIMDI16x8MaxS, wasm.SIMDI16x8MaxU,
		wasm.SIMDI32x4Add, wasm.SIMDI32x4Sub, wasm.SIMDI32x4Mul, wasm.SIMDI32x4MinS,
		wasm.SIMDI32x4MinU, wasm.SIMDI32x4MaxS, wasm.SIMDI32x4MaxU,
		wasm.SIMDI64x2Add, wasm.SIMDI64x2Sub, wasm.SIMDI64x2Mul,
		wasm.SIMDF32x4Add, wasm.SIMDF32x4Sub, wasm.SIMDF32x4Mul, wasm.SIMDF32x4Div,
		wasm.SIMDF32x4Min, wasm.SIMDF32x4Max,
		wasm.SIMDF64x2Add, wasm.SIMDF64x2Sub, wasm.SIMDF64x2Mul, wasm.SIMDF64x2Div,
		wasm.SIMDF64x2Min, wasm.SIMDF64x2Max:
		return v.binop(v128)

	case wasm.SIMDV128Bitselect:
		if err := v.popExpect(v128); err != nil {
			return err
		}
		if err := v.popExpect(v128); err != nil {
			return err
		}
		return v.unop(v128)

	default:
		return v.errf("unsupported 0xFD sub-opcode %d", sub)
	}
	return nil
}
