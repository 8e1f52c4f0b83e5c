package ircode

import (
	"fmt"

	"github.com/manhvn135/gowasm/internal/wasm"
)

// memImmediate reads the align/offset pair; ircode only needs offset (the
// interpreter computes effective addresses directly, alignment having
// already been bounds-checked by internal/validate).
func (c *compiler) memImmediate() (offset uint32, err error) {
	if _, err := c.readU32(); err != nil { // align, discarded
		return 0, err
	}
	return c.readU32()
}

func (c *compiler) emitLoad(kind Kind) error {
	offset, err := c.memImmediate()
	if err != nil {
		return err
	}
	c.emit(Op{Kind: kind, A: offset})
	return nil
}

func (c *compiler) emitStore(kind Kind) error {
	offset, err := c.memImmediate()
	if err != nil {
		return err
	}
	c.emit(Op{Kind: kind, A: offset})
	return nil
}

// simpleOp lowers every opcode that carries no immediate beyond its fixed
// memory/arithmetic/conversion shape.
func (c *compiler) simpleOp(op wasm.Opcode) error {
	switch op {
	case wasm.OpcodeI32Load:
		return c.emitLoad(I32Load)
	case wasm.OpcodeI64Load:
		return c.emitLoad(I64Load)
	case wasm.OpcodeF32Load:
		return c.emitLoad(F32Load)
	case wasm.OpcodeF64Load:
		return c.emitLoad(F64Load)
	case wasm.OpcodeI32Load8S:
		return c.emitLoad(I32Load8S)
	case wasm.OpcodeI32Load8U:
		return c.emitLoad(I32Load8U)
	case wasm.OpcodeI32Load16S:
		return c.emitLoad(I32Load16S)
	case wasm.OpcodeI32Load16U:
		return c.emitLoad(I32Load16U)
	case wasm.OpcodeI64Load8S:
		return c.emitLoad(I64Load8S)
	case wasm.OpcodeI64Load8U:
		return c.emitLoad(I64Load8U)
	case wasm.OpcodeI64Load16S:
		return c.emitLoad(I64Load16S)
	case wasm.OpcodeI64Load16U:
		return c.emitLoad(I64Load16U)
	case wasm.OpcodeI64Load32S:
		return c.emitLoad(I64Load32S)
	case wasm.OpcodeI64Load32U:
		return c.emitLoad(I64Load32U)
	case wasm.OpcodeI32Store:
		return c.emitStore(I32Store)
	case wasm.OpcodeI64Store:
		return c.emitStore(I64Store)
	case wasm.OpcodeF32Store:
		return c.emitStore(F32Store)
	case wasm.OpcodeF64Store:
		return c.emitStore(F64Store)
	case wasm.OpcodeI32Store8:
		return c.emitStore(I32Store8)
	case wasm.OpcodeI32Store16:
		return c.emitStore(I32Store16)
	case wasm.OpcodeI64Store8:
		return c.emitStore(I64Store8)
	case wasm.OpcodeI64Store16:
		return c.emitStore(I64Store16)
	case wasm.OpcodeI64Store32:
		return c.emitStore(I64Store32)

	case wasm.OpcodeI32Eqz:
		c.emit(Op{Kind: I32Eqz})
	case wasm.OpcodeI32Eq:
		c.emit(Op{Kind: I32Eq})
	case wasm.OpcodeI32Ne:
		c.emit(Op{Kind: I32Ne})
	case wasm.OpcodeI32LtS:
		c.emit(Op{Kind: I32LtS})
	case wasm.OpcodeI32LtU:
		c.emit(Op{Kind: I32LtU})
	case wasm.OpcodeI32GtS:
		c.emit(Op{Kind: I32GtS})
	case wasm.OpcodeI32GtU:
		c.emit(Op{Kind: I32GtU})
	case wasm.OpcodeI32LeS:
		c.emit(Op{Kind: I32LeS})
	case wasm.OpcodeI32LeU:
		c.emit(Op{Kind: I32LeU})
	case wasm.OpcodeI32GeS:
		c.emit(Op{Kind: I32GeS})
	case wasm.OpcodeI32GeU:
		c.emit(Op{Kind: I32GeU})

	case wasm.OpcodeI64Eqz:
		c.emit(Op{Kind: I64Eqz})
	case wasm.OpcodeI64Eq:
		c.emit(Op{Kind: I64Eq})
	case wasm.OpcodeI64Ne:
		c.emit(Op{Kind: I64Ne})
	case wasm.OpcodeI64LtS:
		c.emit(Op{Kind: I64LtS})
	case wasm.OpcodeI64LtU:
		c.emit(Op{Kind: I64LtU})
	case wasm.OpcodeI64GtS:
		c.emit(Op{Kind: I64GtS})
	case wasm.OpcodeI64GtU:
		c.emit(Op{Kind: I64GtU})
	case wasm.OpcodeI64LeS:
		c.emit(Op{Kind: I64LeS})
	case wasm.OpcodeI64LeU:
		c.emit(Op{Kind: I64LeU})
	case wasm.OpcodeI64GeS:
		c.emit(Op{Kind: I64GeS})
	case wasm.OpcodeI64GeU:
		c.emit(Op{Kind: I64GeU})

	case wasm.OpcodeF32Eq:
		c.emit(Op{Kind: F32Eq})
	case wasm.OpcodeF32Ne:
		c.emit(Op{Kind: F32Ne})
	case wasm.OpcodeF32Lt:
		c.emit(Op{Kind: F32Lt})
	case wasm.OpcodeF32Gt:
		c.emit(Op{Kind: F32Gt})
	case wasm.OpcodeF32Le:
		c.emit(Op{Kind: F32Le})
	case wasm.OpcodeF32Ge:
		c.emit(Op{Kind: F32Ge})

	case wasm.OpcodeF64Eq:
		c.emit(Op{Kind: F64Eq})
	case wasm.OpcodeF64Ne:
		c.emit(Op{Kind: F64Ne})
	case wasm.OpcodeF64Lt:
		c.emit(Op{Kind: F64Lt})
	case wasm.OpcodeF64Gt:
		c.emit(Op{Kind: F64Gt})
	case wasm.OpcodeF64Le:
		c.emit(Op{Kind: F64Le})
	case wasm.OpcodeF64Ge:
		c.emit(Op{Kind: F64Ge})

	case wasm.OpcodeI32Clz:
		c.emit(Op{Kind: I32Clz})
	case wasm.OpcodeI32Ctz:
		c.emit(Op{Kind: I32Ctz})
	case wasm.OpcodeI32Popcnt:
		c.emit(Op{Kind: I32Popcnt})
	case wasm.OpcodeI32Add:
		c.emit(Op{Kind: I32Add})
	case wasm.OpcodeI32Sub:
		c.emit(Op{Kind: I32Sub})
	case wasm.OpcodeI32Mul:
		c.emit(Op{Kind: I32Mul})
	case wasm.OpcodeI32DivS:
		c.emit(Op{Kind: I32DivS})
	case wasm.OpcodeI32DivU:
		c.emit(Op{Kind: I32DivU})
	case wasm.OpcodeI32RemS:
		c.emit(Op{Kind: I32RemS})
	case wasm.OpcodeI32RemU:
		c.emit(Op{Kind: I32RemU})
	case wasm.OpcodeI32And:
		c.emit(Op{Kind: I32And})
	case wasm.OpcodeI32Or:
		c.emit(Op{Kind: I32Or})
	case wasm.OpcodeI32Xor:
		c.emit(Op{Kind: I32Xor})
	case wasm.OpcodeI32Shl:
		c.emit(Op{Kind: I32Shl})
	case wasm.OpcodeI32ShrS:
		c.emit(Op{Kind: I32ShrS})
	case wasm.OpcodeI32ShrU:
		c.emit(Op{Kind: I32ShrU})
	case wasm.OpcodeI32Rotl:
		c.emit(Op{Kind: I32Rotl})
	case wasm.OpcodeI32Rotr:
		c.emit(Op{Kind: I32Rotr})

	case wasm.OpcodeI64Clz:
		c.emit(Op{Kind: I64Clz})
	case wasm.OpcodeI64Ctz:
		c.emit(Op{Kind: I64Ctz})
	case wasm.OpcodeI64Popcnt:
		c.emit(Op{Kind: I64Popcnt})
	case wasm.OpcodeI64Add:
		c.emit(Op{Kind: I64Add})
	case wasm.OpcodeI64Sub:
		c.emit(Op{Kind: I64Sub})
	case wasm.OpcodeI64Mul:
		c.emit(Op{Kind: I64Mul})
	case wasm.OpcodeI64DivS:
		c.emit(Op{Kind: I64DivS})
	case wasm.OpcodeI64DivU:
		c.emit(Op{Kind: I64DivU})
	case wasm.OpcodeI64RemS:
		c.emit(Op{Kind: I64RemS})
	case wasm.OpcodeI64RemU:
		c.emit(Op{Kind: I64RemU})
	case wasm.OpcodeI64And:
		c.emit(Op{Kind: I64And})
	case wasm.OpcodeI64Or:
		c.emit(Op{Kind: I64Or})
	case wasm.OpcodeI64Xor:
		c.emit(Op{Kind: I64Xor})
	case wasm.OpcodeI64Shl:
		c.emit(Op{Kind: I64Shl})
	case wasm.OpcodeI64ShrS:
		c.emit(Op{Kind: I64ShrS})
	case wasm.OpcodeI64ShrU:
		c.emit(Op{Kind: I64ShrU})
	case wasm.OpcodeI64Rotl:
		c.emit(Op{Kind: I64Rotl})
	case wasm.OpcodeI64Rotr:
		c.emit(Op{Kind: I64Rotr})

	case wasm.OpcodeF32Abs:
		c.emit(Op{Kind: F32Abs})
	case wasm.OpcodeF32Neg:
		c.emit(Op{Kind: F32Neg})
	case wasm.OpcodeF32Ceil:
		c.emit(Op{Kind: F32Ceil})
	case wasm.OpcodeF32Floor:
		c.emit(Op{Kind: F32Floor})
	case wasm.OpcodeF32Trunc:
		c.emit(Op{Kind: F32Trunc})
	case wasm.OpcodeF32Nearest:
		c.emit(Op{Kind: F32Nearest})
	case wasm.OpcodeF32Sqrt:
		c.emit(Op{Kind: F32Sqrt})
	case wasm.OpcodeF32Add:
		c.emit(Op{Kind: F32Add})
	case wasm.OpcodeF32Sub:
		c.emit(Op{Kind: F32Sub})
	case wasm.OpcodeF32Mul:
		c.emit(Op{Kind: F32Mul})
	case wasm.OpcodeF32Div:
		c.emit(Op{Kind: F32Div})
	case wasm.OpcodeF32Min:
		c.emit(Op{Kind: F32Min})
	case wasm.OpcodeF32Max:
		c.emit(Op{Kind: F32Max})
	case wasm.OpcodeF32Copysign:
		c.emit(Op{Kind: F32Copysign})

	case wasm.OpcodeF64Abs:
		c.emit(Op{Kind: F64Abs})
	case wasm.OpcodeF64Neg:
		c.emit(Op{Kind: F64Neg})
	case wasm.OpcodeF64Ceil:
		c.emit(Op{Kind: F64Ceil})
	case wasm.OpcodeF64Floor:
		c.emit(Op{Kind: F64Floor})
	case wasm.OpcodeF64Trunc:
		c.emit(Op{Kind: F64Trunc})
	case wasm.OpcodeF64Nearest:
		c.emit(Op{Kind: F64Nearest})
	case wasm.OpcodeF64Sqrt:
		c.emit(Op{Kind: F64Sqrt})
	case wasm.OpcodeF64Add:
		c.emit(Op{Kind: F64Add})
	case wasm.OpcodeF64Sub:
		c.emit(Op{Kind: F64Sub})
	case wasm.OpcodeF64Mul:
		c.emit(Op{Kind: F64Mul})
	case wasm.OpcodeF64Div:
		c.emit(Op{Kind: F64Div})
	case wasm.OpcodeF64Min:
		c.emit(Op{Kind: F64Min})
	case wasm.OpcodeF64Max:
		c.emit(Op{Kind: F64Max})
	case wasm.OpcodeF64Copysign:
		c.emit(Op{Kind: F64Copysign})

	case wasm.OpcodeI32WrapI64:
		c.emit(Op{Kind: I32WrapI64})
	case wasm.OpcodeI32TruncF32S:
		c.emit(Op{Kind: I32TruncF32S})
	case wasm.OpcodeI32TruncF32U:
		c.emit(Op{Kind: I32TruncF32U})
	case wasm.OpcodeI32TruncF64S:
		c.emit(Op{Kind: I32TruncF64S})
	case wasm.OpcodeI32TruncF64U:
		c.emit(Op{Kind: I32TruncF64U})
	case wasm.OpcodeI64ExtendI32S:
		c.emit(Op{Kind: I64ExtendI32S})
	case wasm.OpcodeI64ExtendI32U:
		c.emit(Op{Kind: I64ExtendI32U})
	case wasm.OpcodeI64TruncF32S:
		c.emit(Op{Kind: I64TruncF32S})
	case wasm.OpcodeI64TruncF32U:
		c.emit(Op{Kind: I64TruncF32U})
	case wasm.OpcodeI64TruncF64S:
		c.emit(Op{Kind: I64TruncF64S})
	case wasm.OpcodeI64TruncF64U:
		c.emit(Op{Kind: I64TruncF64U})
	case wasm.OpcodeF32ConvertI32S:
		c.emit(Op{Kind: F32ConvertI32S})
	case wasm.OpcodeF32ConvertI32U:
		c.emit(Op{Kind: F32ConvertI32U})
	case wasm.OpcodeF32ConvertI64S:
		c.emit(Op{Kind: F32ConvertI64S})
	case wasm.OpcodeF32ConvertI64U:
		c.emit(Op{Kind: F32ConvertI64U})
	case wasm.OpcodeF32DemoteF64:
		c.emit(Op{Kind: F32DemoteF64})
	case wasm.OpcodeF64ConvertI32S:
		c.emit(Op{Kind: F64ConvertI32S})
	case wasm.OpcodeF64ConvertI32U:
		c.emit(Op{Kind: F64ConvertI32U})
	case wasm.OpcodeF64ConvertI64S:
		c.emit(Op{Kind: F64ConvertI64S})
	case wasm.OpcodeF64ConvertI64U:
		c.emit(Op{Kind: F64ConvertI64U})
	case wasm.OpcodeF64PromoteF32:
		c.emit(Op{Kind: F64PromoteF32})
	case wasm.OpcodeI32ReinterpretF32:
		c.emit(Op{Kind: I32ReinterpretF32})
	case wasm.OpcodeI64ReinterpretF64:
		c.emit(Op{Kind: I64ReinterpretF64})
	case wasm.OpcodeF32ReinterpretI32:
		c.emit(Op{Kind: F32ReinterpretI32})
	case wasm.OpcodeF64ReinterpretI64:
		c.emit(Op{Kind: F64ReinterpretI64})

	case wasm.OpcodeI32Extend8S:
		c.emit(Op{Kind: I32Extend8S})
	case wasm.OpcodeI32Extend16S:
		c.emit(Op{Kind: I32Extend16S})
	case wasm.OpcodeI64Extend8S:
		c.emit(Op{Kind: I64Extend8S})
	case wasm.OpcodeI64Extend16S:
		c.emit(Op{Kind: I64Extend16S})
	case wasm.OpcodeI64Extend32S:
		c.emit(Op{Kind: I64Extend32S})

	default:
		return fmt.Errorf("unsupported opcode %#x", byte(op))
	}
	return nil
}

func (c *compiler) miscOp() error {
	sub, err := c.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case wasm.MiscI32TruncSatF32S:
		c.emit(Op{Kind: I32TruncSatF32S})
	case wasm.MiscI32TruncSatF32U:
		c.emit(Op{Kind: I32TruncSatF32U})
	case wasm.MiscI32TruncSatF64S:
		c.emit(Op{Kind: I32TruncSatF64S})
	case wasm.MiscI32TruncSatF64U:
		c.emit(Op{Kind: I32TruncSatF64U})
	case wasm.MiscI64TruncSatF32S:
		c.emit(Op{Kind: I64TruncSatF32S})
	case wasm.MiscI64TruncSatF32U:
		c.emit(Op{Kind: I64TruncSatF32U})
	case wasm.MiscI64TruncSatF64S:
		c.emit(Op{Kind: I64TruncSatF64S})
	case wasm.MiscI64TruncSatF64U:
		c.emit(Op{Kind: I64TruncSatF64U})

	case wasm.MiscMemoryInit:
		segIdx, err := c.readU32()
		if err != nil {
			return err
		}
		if _, err := c.readByte(); err != nil {
			return err
		}
		c.emit(Op{Kind: MemoryInit, A: segIdx})
	case wasm.MiscDataDrop:
		segIdx, err := c.readU32()
		if err != nil {
			return err
		}
		c.emit(Op{Kind: DataDrop, A: segIdx})
	case wasm.MiscMemoryCopy:
		if _, err := c.readByte(); err != nil {
			return err
		}
		if _, err := c.readByte(); err != nil {
			return err
		}
		c.emit(Op{Kind: MemoryCopy})
	case wasm.MiscMemoryFill:
		if _, err := c.readByte(); err != nil {
			return err
		}
		c.emit(Op{Kind: MemoryFill})
	default:
		return fmt.Errorf("unsupported 0xFC sub-opcode %d", sub)
	}
	return nil
}

func (c *compiler) simdOp() error {
	sub, err := c.readU32()
	if err != nil {
		return err
	}
	switch sub {
	case wasm.SIMDV128Load:
		return c.emitLoad(V128Load)
	case wasm.SIMDV128Load32Zero:
		return c.emitLoad(V128Load32Zero)
	case wasm.SIMDV128Load64Zero:
		return c.emitLoad(V128Load64Zero)
	case wasm.SIMDV128Store:
		return c.emitStore(V128Store)
	case wasm.SIMDV128Const:
		b, err := c.readFixed(16)
		if err != nil {
			return err
		}
		lo, hi := le64(b[:8]), le64(b[8:])
		c.emit(Op{Kind: V128Const, Imm1: lo, Imm2: hi})
	case wasm.SIMDI8x16Shuffle:
		b, err := c.readFixed(16)
		if err != nil {
			return err
		}
		op := Op{Kind: I8x16Shuffle}
		copy(op.Lanes[:], b)
		c.emit(op)
	case wasm.SIMDI8x16Swizzle:
		c.emit(Op{Kind: I8x16Swizzle})

	case wasm.SIMDI8x16Splat:
		c.emit(Op{Kind: I8x16Splat})
	case wasm.SIMDI16x8Splat:
		c.emit(Op{Kind: I16x8Splat})
	case wasm.SIMDI32x4Splat:
		c.emit(Op{Kind: I32x4Splat})
	case wasm.SIMDI64x2Splat:
		c.emit(Op{Kind: I64x2Splat})
	case wasm.SIMDF32x4Splat:
		c.emit(Op{Kind: F32x4Splat})
	case wasm.SIMDF64x2Splat:
		c.emit(Op{Kind: F64x2Splat})

	case wasm.SIMDI8x16ExtractLaneS:
		return c.emitLane(I8x16ExtractLaneS)
	case wasm.SIMDI8x16ExtractLaneU:
		return c.emitLane(I8x16ExtractLaneU)
	case wasm.SIMDI8x16ReplaceLane:
		return c.emitLane(I8x16ReplaceLane)
	case wasm.SIMDI16x8ExtractLaneS:
		return c.emitLane(I16x8ExtractLaneS)
	case wasm.SIMDI16x8ExtractLaneU:
		return c.emitLane(I16x8ExtractLaneU)
	case wasm.SIMDI16x8ReplaceLane:
		return c.emitLane(I16x8ReplaceLane)
	case wasm.SIMDI32x4ExtractLane:
		return c.emitLane(I32x4ExtractLane)
	case wasm.SIMDI32x4ReplaceLane:
		return c.emitLane(I32x4ReplaceLane)
	case wasm.SIMDI64x2ExtractLane:
		return c.emitLane(I64x2ExtractLane)
	case wasm.SIMDI64x2ReplaceLane:
		return c.emitLane(I64x2ReplaceLane)
	case wasm.SIMDF32x4ExtractLane:
		return c.emitLane(F32x4ExtractLane)
	case wasm.SIMDF32x4ReplaceLane:
		return c.emitLane(F32x4ReplaceLane)
	case wasm.SIMDF64x2ExtractLane:
		return c.emitLane(F64x2ExtractLane)
	case wasm.SIMDF64x2ReplaceLane:
		return c.emitLane(F64x2ReplaceLane)

	case wasm.SIMDI8x16Eq:
		c.emit(Op{Kind: I8x16Eq})
	case wasm.SIMDI8x16Ne:
		c.emit(Op{Kind: I8x16Ne})
	case wasm.SIMDI8x16LtS:
		c.emit(Op{Kind: I8x16LtS})
	case wasm.SIMDI8x16LtU:
		c.emit(Op{Kind: I8x16LtU})
	case wasm.SIMDI8x16GtS:
		c.emit(Op{Kind: I8x16GtS})
	case wasm.SIMDI8x16GtU:
		c.emit(Op{Kind: I8x16GtU})
	case wasm.SIMDI8x16LeS:
		c.emit(Op{Kind: I8x16LeS})
	case wasm.SIMDI8x16LeU:
		c.emit(Op{Kind: I8x16LeU})
	case wasm.SIMDI8x16GeS:
		c.emit(Op{Kind: I8x16GeS})
	case wasm.SIMDI8x16GeU:
		c.emit(Op{Kind: I8x16GeU})

	case wasm.SIMDI16x8Eq:
		c.emit(Op{Kind: I16x8Eq})
	case wasm.SIMDI16x8Ne:
		c.emit(Op{Kind: I16x8Ne})
	case wasm.SIMDI16x8LtS:
		c.emit(Op{Kind: I16x8LtS})
	case wasm.SIMDI16x8LtU:
		c.emit(Op{Kind: I16x8LtU})
	case wasm.SIMDI16x8GtS:
		c.emit(Op{Kind: I16x8GtS})
	case wasm.SIMDI16x8GtU:
		c.emit(Op{Kind: I16x8GtU})
	case wasm.SIMDI16x8LeS:
		c.emit(Op{Kind: I16x8LeS})
	case wasm.SIMDI16x8LeU:
		c.emit(Op{Kind: I16x8LeU})
	case wasm.SIMDI16x8GeS:
		c.emit(Op{Kind: I16x8GeS})
	case wasm.SIMDI16x8GeU:
		c.emit(Op{Kind: I16x8GeU})

	case wasm.SIMDI32x4Eq:
		c.emit(Op{Kind: I32x4Eq})
	case wasm.SIMDI32x4Ne:
		c.emit(Op{Kind: I32x4Ne})
	case wasm.SIMDI32x4LtS:
		c.emit(Op{Kind: I32x4LtS})
	case wasm.SIMDI32x4LtU:
		c.emit(Op{Kind: I32x4LtU})
	case wasm.SIMDI32x4GtS:
		c.emit(Op{Kind: I32x4GtS})
	case wasm.SIMDI32x4GtU:
		c.emit(Op{Kind: I32x4GtU})
	case wasm.SIMDI32x4LeS:
		c.emit(Op{Kind: I32x4LeS})
	case wasm.SIMDI32x4LeU:
		c.emit(Op{Kind: I32x4LeU})
	case wasm.SIMDI32x4GeS:
		c.emit(Op{Kind: I32x4GeS})
	case wasm.SIMDI32x4GeU:
		c.emit(Op{Kind: I32x4GeU})

	case wasm.SIMDF32x4Eq:
		c.emit(Op{Kind: F32x4Eq})
	case wasm.SIMDF32x4Ne:
		c.emit(Op{Kind: F32x4Ne})
	case wasm.SIMDF32x4Lt:
		c.emit(Op{Kind: F32x4Lt})
	case wasm.SIMDF32x4Gt:
		c.emit(Op{Kind: F32x4Gt})
	case wasm.SIMDF32x4Le:
		c.emit(Op{Kind: F32x4Le})
	case wasm.SIMDF32x4Ge:
		c.emit(Op{Kind: F32x4Ge})

	case wasm.SIMDF64x2Eq:
		c.emit(Op{Kind: F64x2Eq})
	case wasm.SIMDF64x2Ne:
		c.emit(Op{Kind: F64x2Ne})
	case wasm.SIMDF64x2Lt:
		c.emit(Op{Kind: F64x2Lt})
	case wasm.SIMDF64x2Gt:
		c.emit(Op{Kind: F64x2Gt})
	case wasm.SIMDF64x2Le:
		c.emit(Op{Kind: F64x2Le})
	case wasm.SIMDF64x2Ge:
		c.emit(Op{Kind: F64x2Ge})

	case wasm.SIMDV128Not:
		c.emit(Op{Kind: V128Not})
	case wasm.SIMDV128And:
		c.emit(Op{Kind: V128And})
	case wasm.SIMDV128AndNot:
		c.emit(Op{Kind: V128AndNot})
	case wasm.SIMDV128Or:
		c.emit(Op{Kind: V128Or})
	case wasm.SIMDV128Xor:
		c.emit(Op{Kind: V128Xor})
	case wasm.SIMDV128Bitselect:
		c.emit(Op{Kind: V128Bitselect})
	case wasm.SIMDV128AnyTrue:
		c.emit(Op{Kind: V128AnyTrue})

	case wasm.SIMDI8x16Abs:
		c.emit(Op{Kind: I8x16Abs})
	case wasm.SIMDI8x16Neg:
		c.emit(Op{Kind: I8x16Neg})
	case wasm.SIMDI8x16AllTrue:
		c.emit(Op{Kind: I8x16AllTrue})
	case wasm.SIMDI8x16Bitmask:
		c.emit(Op{Kind: I8x16Bitmask})
	case wasm.SIMDI8x16Shl:
		c.emit(Op{Kind: I8x16Shl})
	case wasm.SIMDI8x16ShrS:
		c.emit(Op{Kind: I8x16ShrS})
	case wasm.SIMDI8x16ShrU:
		c.emit(Op{Kind: I8x16ShrU})
	case wasm.SIMDI8x16Add:
		c.emit(Op{Kind: I8x16Add})
	case wasm.SIMDI8x16AddSatS:
		c.emit(Op{Kind: I8x16AddSatS})
	case wasm.SIMDI8x16AddSatU:
		c.emit(Op{Kind: I8x16AddSatU})
	case wasm.SIMDI8x16Sub:
		c.emit(Op{Kind: I8x16Sub})
	case wasm.SIMDI8x16SubSatS:
		c.emit(Op{Kind: I8x16SubSatS})
	case wasm.SIMDI8x16SubSatU:
		c.emit(Op{Kind: I8x16SubSatU})
	case wasm.SIMDI8x16MinS:
		c.emit(Op{Kind: I8x16MinS})
	case wasm.SIMDI8x16MinU:
		c.emit(Op{Kind: I8x16MinU})
	case wasm.SIMDI8x16MaxS:
		c.emit(Op{Kind: I8x16MaxS})
	case wasm.SIMDI8x16MaxU:
		c.emit(Op{Kind: I8x16MaxU})

	case wasm.SIMDI16x8Abs:
		c.emit(Op{Kind: I16x8Abs})
	case wasm.SIMDI16x8Neg:
		c.emit(Op{Kind: I16x8Neg})
	case wasm.SIMDI16x8AllTrue:
		c.emit(Op{Kind: I16x8AllTrue})
	case wasm.SIMDI16x8Bitmask:
		c.emit(Op{Kind: I16x8Bitmask})
	case wasm.SIMDI16x8Shl:
		c.emit(Op{Kind: I16x8Shl})
	case wasm.SIMDI16x8ShrS:
		c.emit(Op{Kind: I16x8ShrS})
	case wasm.SIMDI16x8ShrU:
		c.emit(Op{Kind: I16x8ShrU})
	case wasm.SIMDI16x8Add:
		c.emit(Op{Kind: I16x8Add})
	case wasm.SIMDI16x8AddSatS:
		c.emit(Op{Kind: I16x8AddSatS})
	case wasm.SIMDI16x8AddSatU:
		c.emit(Op{Kind: I16x8AddSatU})
	case wasm.SIMDI16x8Sub:
		c.emit(Op{Kind: I16x8Sub})
	case wasm.SIMDI16x8SubSatS:
		c.emit(Op{Kind: I16x8SubSatS})
	case wasm.SIMDI16x8SubSatU:
		c.emit(Op{Kind: I16x8SubSatU})
	case wasm.SIMDI16x8Mul:
		c.emit(Op{Kind: I16x8Mul})
	case wasm.SIMDI16x8MinS:
		c.emit(Op{Kind: I16x8MinS})
	case wasm.SIMDI16x8MinU:
		c.emit(Op{Kind: I16x8MinU})
	case wasm.SIMDI16x8MaxS:
		c.emit(Op{Kind: I16x8MaxS})
	case wasm.SIMDI16x8MaxU:
		c.emit(Op{Kind: I16x8MaxU})

	case wasm.SIMDI32x4Abs:
		c.emit(Op{Kind: I32x4Abs})
	case wasm.SIMDI32x4Neg:
		c.emit(Op{Kind: I32x4Neg})
	case wasm.SIMDI32x4AllTrue:
		c.emit(Op{Kind: I32x4AllTrue})
	case wasm.SIMDI32x4Bitmask:
		c.emit(Op{Kind: I32x4Bitmask})
	case wasm.SIMDI32x4Shl:
		c.emit(Op{Kind: I32x4Shl})
	case wasm.SIMDI32x4ShrS:
		c.emit(Op{Kind: I32x4ShrS})
	case wasm.SIMDI32x4ShrU:
		c.emit(Op{Kind: I32x4ShrU})
	case wasm.SIMDI32x4Add:
		c.emit(Op{Kind: I32x4Add})
	case wasm.SIMDI32x4Sub:
		c.emit(Op{Kind: I32x4Sub})
	case wasm.SIMDI32x4Mul:
		c.emit(Op{Kind: I32x4Mul})
	case wasm.SIMDI32x4MinS:
		c.emit(Op{Kind: I32x4MinS})
	case wasm.SIMDI32x4MinU:
		c.emit(Op{Kind: I32x4MinU})
	case wasm.SIMDI32x4MaxS:
		c.emit(Op{Kind: I32x4MaxS})
	case wasm.SIMDI32x4MaxU:
		c.emit(Op{Kind: I32x4MaxU})

	case wasm.SIMDI64x2Abs:
		c.emit(Op{Kind: I64x2Abs})
	case wasm.SIMDI64x2Neg:
		c.emit(Op{Kind: I64x2Neg})
	case wasm.SIMDI64x2Shl:
		c.emit(Op{Kind: I64x2Shl})
	case wasm.SIMDI64x2ShrS:
		c.emit(Op{Kind: I64x2ShrS})
	case wasm.SIMDI64x2ShrU:
		c.emit(Op{Kind: I64x2ShrU})
	case wasm.SIMDI64x2Add:
		c.emit(Op{Kind: I64x2Add})
	case wasm.SIMDI64x2Sub:
		c.emit(Op{Kind: I64x2Sub})
	case wasm.SIMDI64x2Mul:
		c.emit(Op{Kind: I64x2Mul})

	case wasm.SIMDF32x4Ceil:
		c.emit(Op{Kind: F32x4Ceil})
	case wasm.SIMDF32x4Floor:
		c.emit(Op{Kind: F32x4Floor})
	case wasm.SIMDF32x4Trunc:
		c.emit(Op{Kind: F32x4Trunc})
	case wasm.SIMDF32x4Nearest:
		c.emit(Op{Kind: F32x4Nearest})
	case wasm.SIMDF32x4Abs:
		c.emit(Op{Kind: F32x4Abs})
	case wasm.SIMDF32x4Neg:
		c.emit(Op{Kind: F32x4Neg})
	case wasm.SIMDF32x4Sqrt:
		c.emit(Op{Kind: F32x4Sqrt})
	case wasm.SIMDF32x4Add:
		c.emit(Op{Kind: F32x4Add})
	case wasm.SIMDF32x4Sub:
		c.emit(Op{Kind: F32x4Sub})
	case wasm.SIMDF32x4Mul:
		c.emit(Op{Kind: F32x4Mul})
	case wasm.SIMDF32x4Div:
		c.emit(Op{Kind: F32x4Div})
	case wasm.SIMDF32x4Min:
		c.emit(Op{Kind: F32x4Min})
	case wasm.SIMDF32x4Max:
		c.emit(Op{Kind: F32x4Max})

	case wasm.SIMDF64x2Ceil:
		c.emit(Op{Kind: F64x2Ceil})
	case wasm.SIMDF64x2Floor:
		c.emit(Op{Kind: F64x2Floor})
	case wasm.SIMDF64x2Trunc:
		c.emit(Op{Kind: F64x2Trunc})
	case wasm.SIMDF64x2Nearest:
		c.emit(Op{Kind: F64x2Nearest})
	case wasm.SIMDF64x2Abs:
		c.emit(Op{Kind: F64x2Abs})
	case wasm.SIMDF64x2Neg:
		c.emit(Op{Kind: F64x2Neg})
	case wasm.SIMDF64x2Sqrt:
		c.emit(Op{Kind: F64x2Sqrt})
	case wasm.SIMDF64x2Add:
		c.emit(Op{Kind: F64x2Add})
	case wasm.SIMDF64x2Sub:
		c.emit(Op{Kind: F64x2Sub})
	case wasm.SIMDF64x2Mul:
		c.emit(Op{Kind: F64x2Mul})
	case wasm.SIMDF64x2Div:
		c.emit(Op{Kind: F64x2Div})
	case wasm.SIMDF64x2Min:
		c.emit(Op{Kind: F64x2Min})
	case wasm.SIMDF64x2Max:
		c.emit(Op{Kind: F64x2Max})

	case wasm.SIMDI32x4TruncSatF32x4S:
		c.emit(Op{Kind: I32x4TruncSatF32x4S})
	case wasm.SIMDI32x4TruncSatF32x4U:
		c.emit(Op{Kind: I32x4TruncSatF32x4U})
	case wasm.SIMDF32x4ConvertI32x4S:
		c.emit(Op{Kind: F32x4ConvertI32x4S})
	case wasm.SIMDF32x4ConvertI32x4U:
		c.emit(Op{Kind: F32x4ConvertI32x4U})

	default:
		return fmt.Errorf("unsupported 0xFD sub-opcode %d", sub)
	}
	return nil
}

// emitLane handles the extract/replace-lane family: one trailing byte names
// the lane index, stored in B.
func (c *compiler) emitLane(kind Kind) error {
	lane, err := c.readByte()
	if err != nil {
		return err
	}
	c.emit(Op{Kind: kind, B: uint32(lane)})
	return nil
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
