package interpreter

import (
	"encoding/binary"
	"math"

	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/moremath"
)

// execSIMD handles the representative v128 subset captured by ircode's SIMD
// Kind range (spec.md §4.E): loads/stores/const, lane shuffle/splat/extract/
// replace, per-shape comparisons and arithmetic, and the i32x4<->f32x4
// truncate/convert pair. The 128-bit value is carried on the operand stack
// as two adjacent 64-bit lanes (interpreter.go's pushV128/popV128).
func (c *Context) execSIMD(op *ircode.Op) {
	switch op.Kind {
	case ircode.V128Load:
		addr := c.popU32()
		b := c.readMem(effectiveAddress(addr, op.A), 16)
		c.pushV128(binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16]))
	case ircode.V128Load32Zero:
		addr := c.popU32()
		v := binary.LittleEndian.Uint32(c.readMem(effectiveAddress(addr, op.A), 4))
		c.pushV128(uint64(v), 0)
	case ircode.V128Load64Zero:
		addr := c.popU32()
		v := binary.LittleEndian.Uint64(c.readMem(effectiveAddress(addr, op.A), 8))
		c.pushV128(v, 0)
	case ircode.V128Store:
		lo, hi := c.popV128()
		addr := c.popU32()
		var b [16]byte
		binary.LittleEndian.PutUint64(b[0:8], lo)
		binary.LittleEndian.PutUint64(b[8:16], hi)
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.V128Const:
		c.pushV128(op.Imm1, op.Imm2)

	case ircode.I8x16Shuffle:
		loB, hiB := c.popV128()
		loA, hiA := c.popV128()
		a := v128Bytes(loA, hiA)
		b := v128Bytes(loB, hiB)
		var r [16]byte
		for i, sel := range op.Lanes {
			if sel < 16 {
				r[i] = a[sel]
			} else {
				r[i] = b[sel-16]
			}
		}
		c.pushV128(bytesToV128(r))
	case ircode.I8x16Swizzle:
		loB, hiB := c.popV128()
		loA, hiA := c.popV128()
		a := v128Bytes(loA, hiA)
		idx := v128Bytes(loB, hiB)
		var r [16]byte
		for i, sel := range idx {
			if sel < 16 {
				r[i] = a[sel]
			}
		}
		c.pushV128(bytesToV128(r))

	case ircode.I8x16Splat:
		v := byte(c.popU32())
		var b [16]byte
		for i := range b {
			b[i] = v
		}
		c.pushV128(bytesToV128(b))
	case ircode.I16x8Splat:
		v := uint16(c.popU32())
		var lanes [8]uint16
		for i := range lanes {
			lanes[i] = v
		}
		c.pushV128(i16x8ToV128(lanes))
	case ircode.I32x4Splat:
		v := c.popU32()
		c.pushV128(i32x4ToV128([4]uint32{v, v, v, v}))
	case ircode.I64x2Splat:
		v := c.pop()
		c.pushV128(i64x2ToV128([2]uint64{v, v}))
	case ircode.F32x4Splat:
		v := c.popF32()
		c.pushV128(f32x4ToV128([4]float32{v, v, v, v}))
	case ircode.F64x2Splat:
		v := c.popF64()
		c.pushV128(f64x2ToV128([2]float64{v, v}))

	case ircode.I8x16ExtractLaneS:
		lo, hi := c.popV128()
		c.pushI32(int32(int8(v128Bytes(lo, hi)[op.B])))
	case ircode.I8x16ExtractLaneU:
		lo, hi := c.popV128()
		c.pushI32(int32(v128Bytes(lo, hi)[op.B]))
	case ircode.I8x16ReplaceLane:
		v := byte(c.popU32())
		lo, hi := c.popV128()
		b := v128Bytes(lo, hi)
		b[op.B] = v
		c.pushV128(bytesToV128(b))
	case ircode.I16x8ExtractLaneS:
		lo, hi := c.popV128()
		c.pushI32(int32(int16(i16x8FromV128(lo, hi)[op.B])))
	case ircode.I16x8ExtractLaneU:
		lo, hi := c.popV128()
		c.pushI32(int32(i16x8FromV128(lo, hi)[op.B]))
	case ircode.I16x8ReplaceLane:
		v := uint16(c.popU32())
		lo, hi := c.popV128()
		lanes := i16x8FromV128(lo, hi)
		lanes[op.B] = v
		c.pushV128(i16x8ToV128(lanes))
	case ircode.I32x4ExtractLane:
		lo, hi := c.popV128()
		c.pushI32(int32(i32x4FromV128(lo, hi)[op.B]))
	case ircode.I32x4ReplaceLane:
		v := c.popU32()
		lo, hi := c.popV128()
		lanes := i32x4FromV128(lo, hi)
		lanes[op.B] = v
		c.pushV128(i32x4ToV128(lanes))
	case ircode.I64x2ExtractLane:
		lo, hi := c.popV128()
		c.push(i64x2FromV128(lo, hi)[op.B])
	case ircode.I64x2ReplaceLane:
		v := c.pop()
		lo, hi := c.popV128()
		lanes := i64x2FromV128(lo, hi)
		lanes[op.B] = v
		c.pushV128(i64x2ToV128(lanes))
	case ircode.F32x4ExtractLane:
		lo, hi := c.popV128()
		c.pushF32(f32x4FromV128(lo, hi)[op.B])
	case ircode.F32x4ReplaceLane:
		v := c.popF32()
		lo, hi := c.popV128()
		lanes := f32x4FromV128(lo, hi)
		lanes[op.B] = v
		c.pushV128(f32x4ToV128(lanes))
	case ircode.F64x2ExtractLane:
		lo, hi := c.popV128()
		c.pushF64(f64x2FromV128(lo, hi)[op.B])
	case ircode.F64x2ReplaceLane:
		v := c.popF64()
		lo, hi := c.popV128()
		lanes := f64x2FromV128(lo, hi)
		lanes[op.B] = v
		c.pushV128(f64x2ToV128(lanes))

	case ircode.I8x16Eq, ircode.I8x16Ne, ircode.I8x16LtS, ircode.I8x16LtU, ircode.I8x16GtS, ircode.I8x16GtU,
		ircode.I8x16LeS, ircode.I8x16LeU, ircode.I8x16GeS, ircode.I8x16GeU:
		c.execI8x16Compare(op.Kind)
	case ircode.I16x8Eq, ircode.I16x8Ne, ircode.I16x8LtS, ircode.I16x8LtU, ircode.I16x8GtS, ircode.I16x8GtU,
		ircode.I16x8LeS, ircode.I16x8LeU, ircode.I16x8GeS, ircode.I16x8GeU:
		c.execI16x8Compare(op.Kind)
	case ircode.I32x4Eq, ircode.I32x4Ne, ircode.I32x4LtS, ircode.I32x4LtU, ircode.I32x4GtS, ircode.I32x4GtU,
		ircode.I32x4LeS, ircode.I32x4LeU, ircode.I32x4GeS, ircode.I32x4GeU:
		c.execI32x4Compare(op.Kind)
	case ircode.F32x4Eq, ircode.F32x4Ne, ircode.F32x4Lt, ircode.F32x4Gt, ircode.F32x4Le, ircode.F32x4Ge:
		c.execF32x4Compare(op.Kind)
	case ircode.F64x2Eq, ircode.F64x2Ne, ircode.F64x2Lt, ircode.F64x2Gt, ircode.F64x2Le, ircode.F64x2Ge:
		c.execF64x2Compare(op.Kind)

	case ircode.V128Not:
		lo, hi := c.popV128()
		c.pushV128(^lo, ^hi)
	case ircode.V128And:
		bLo, bHi := c.popV128()
		aLo, aHi := c.popV128()
		c.pushV128(aLo&bLo, aHi&bHi)
	case ircode.V128AndNot:
		bLo, bHi := c.popV128()
		aLo, aHi := c.popV128()
		c.pushV128(aLo&^bLo, aHi&^bHi)
	case ircode.V128Or:
		bLo, bHi := c.popV128()
		aLo, aHi := c.popV128()
		c.pushV128(aLo|bLo, aHi|bHi)
	case ircode.V128Xor:
		bLo, bHi := c.popV128()
		aLo, aHi := c.popV128()
		c.pushV128(aLo^bLo, aHi^bHi)
	case ircode.V128Bitselect:
		maskLo, maskHi := c.popV128()
		fLo, fHi := c.popV128()
		tLo, tHi := c.popV128()
		c.pushV128((tLo&maskLo)|(fLo&^maskLo), (tHi&maskHi)|(fHi&^maskHi))
	case ircode.V128AnyTrue:
		lo, hi := c.popV128()
		c.pushBool(lo != 0 || hi != 0)

	case ircode.I8x16Abs, ircode.I8x16Neg, ircode.I8x16AllTrue, ircode.I8x16Bitmask,
		ircode.I8x16Shl, ircode.I8x16ShrS, ircode.I8x16ShrU,
		ircode.I8x16Add, ircode.I8x16AddSatS, ircode.I8x16AddSatU,
		ircode.I8x16Sub, ircode.I8x16SubSatS, ircode.I8x16SubSatU,
		ircode.I8x16MinS, ircode.I8x16MinU, ircode.I8x16MaxS, ircode.I8x16MaxU:
		c.execI8x16(op.Kind)
	case ircode.I16x8Abs, ircode.I16x8Neg, ircode.I16x8AllTrue, ircode.I16x8Bitmask,
		ircode.I16x8Shl, ircode.I16x8ShrS, ircode.I16x8ShrU,
		ircode.I16x8Add, ircode.I16x8AddSatS, ircode.I16x8AddSatU,
		ircode.I16x8Sub, ircode.I16x8SubSatS, ircode.I16x8SubSatU, ircode.I16x8Mul,
		ircode.I16x8MinS, ircode.I16x8MinU, ircode.I16x8MaxS, ircode.I16x8MaxU:
		c.execI16x8(op.Kind)
	case ircode.I32x4Abs, ircode.I32x4Neg, ircode.I32x4AllTrue, ircode.I32x4Bitmask,
		ircode.I32x4Shl, ircode.I32x4ShrS, ircode.I32x4ShrU,
		ircode.I32x4Add, ircode.I32x4Sub, ircode.I32x4Mul,
		ircode.I32x4MinS, ircode.I32x4MinU, ircode.I32x4MaxS, ircode.I32x4MaxU:
		c.execI32x4(op.Kind)
	case ircode.I64x2Abs, ircode.I64x2Neg, ircode.I64x2Shl, ircode.I64x2ShrS, ircode.I64x2ShrU,
		ircode.I64x2Add, ircode.I64x2Sub, ircode.I64x2Mul:
		c.execI64x2(op.Kind)

	case ircode.F32x4Ceil, ircode.F32x4Floor, ircode.F32x4Trunc, ircode.F32x4Nearest,
		ircode.F32x4Abs, ircode.F32x4Neg, ircode.F32x4Sqrt,
		ircode.F32x4Add, ircode.F32x4Sub, ircode.F32x4Mul, ircode.F32x4Div,
		ircode.F32x4Min, ircode.F32x4Max:
		c.execF32x4(op.Kind)
	case ircode.F64x2Ceil, ircode.F64x2Floor, ircode.F64x2Trunc, ircode.F64x2Nearest,
		ircode.F64x2Abs, ircode.F64x2Neg, ircode.F64x2Sqrt,
		ircode.F64x2Add, ircode.F64x2Sub, ircode.F64x2Mul, ircode.F64x2Div,
		ircode.F64x2Min, ircode.F64x2Max:
		c.execF64x2(op.Kind)

	case ircode.I32x4TruncSatF32x4S:
		lo, hi := c.popV128()
		f := f32x4FromV128(lo, hi)
		var r [4]uint32
		for i, v := range f {
			r[i] = uint32(truncToI32(float64(v), true))
		}
		c.pushV128(i32x4ToV128(r))
	case ircode.I32x4TruncSatF32x4U:
		lo, hi := c.popV128()
		f := f32x4FromV128(lo, hi)
		var r [4]uint32
		for i, v := range f {
			r[i] = truncToU32(float64(v), true)
		}
		c.pushV128(i32x4ToV128(r))
	case ircode.F32x4ConvertI32x4S:
		lo, hi := c.popV128()
		n := i32x4FromV128(lo, hi)
		var r [4]float32
		for i, v := range n {
			r[i] = float32(int32(v))
		}
		c.pushV128(f32x4ToV128(r))
	case ircode.F32x4ConvertI32x4U:
		lo, hi := c.popV128()
		n := i32x4FromV128(lo, hi)
		var r [4]float32
		for i, v := range n {
			r[i] = float32(v)
		}
		c.pushV128(f32x4ToV128(r))
	}
}

// v128Bytes/bytesToV128 convert between the two-lane stack representation
// and a byte-addressable view shared by the i8x16 family and shuffle/const.
func v128Bytes(lo, hi uint64) [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], lo)
	binary.LittleEndian.PutUint64(b[8:16], hi)
	return b
}

func bytesToV128(b [16]byte) (lo, hi uint64) {
	return binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16])
}

func i16x8FromV128(lo, hi uint64) [8]uint16 {
	b := v128Bytes(lo, hi)
	var r [8]uint16
	for i := range r {
		r[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return r
}

func i16x8ToV128(lanes [8]uint16) (uint64, uint64) {
	var b [16]byte
	for i, v := range lanes {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return bytesToV128(b)
}

func i32x4FromV128(lo, hi uint64) [4]uint32 {
	b := v128Bytes(lo, hi)
	var r [4]uint32
	for i := range r {
		r[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return r
}

func i32x4ToV128(lanes [4]uint32) (uint64, uint64) {
	var b [16]byte
	for i, v := range lanes {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return bytesToV128(b)
}

func i64x2FromV128(lo, hi uint64) [2]uint64 { return [2]uint64{lo, hi} }
func i64x2ToV128(lanes [2]uint64) (uint64, uint64) { return lanes[0], lanes[1] }

func f32x4FromV128(lo, hi uint64) [4]float32 {
	n := i32x4FromV128(lo, hi)
	var r [4]float32
	for i, v := range n {
		r[i] = math.Float32frombits(v)
	}
	return r
}

func f32x4ToV128(lanes [4]float32) (uint64, uint64) {
	var n [4]uint32
	for i, v := range lanes {
		n[i] = math.Float32bits(v)
	}
	return i32x4ToV128(n)
}

func f64x2FromV128(lo, hi uint64) [2]float64 {
	return [2]float64{math.Float64frombits(lo), math.Float64frombits(hi)}
}

func f64x2ToV128(lanes [2]float64) (uint64, uint64) {
	return math.Float64bits(lanes[0]), math.Float64bits(lanes[1])
}

func boolByte(b bool) byte {
	if b {
		return 0xFF
	}
	return 0
}

func boolU16(b bool) uint16 {
	if b {
		return 0xFFFF
	}
	return 0
}

func boolU32(b bool) uint32 {
	if b {
		return 0xFFFFFFFF
	}
	return 0
}

func (c *Context) execI8x16Compare(kind ircode.Kind) {
	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := v128Bytes(aLo, aHi), v128Bytes(bLo, bHi)
	var r [16]byte
	for i := range r {
		sa, sb := int8(a[i]), int8(b[i])
		switch kind {
		case ircode.I8x16Eq:
			r[i] = boolByte(a[i] == b[i])
		case ircode.I8x16Ne:
			r[i] = boolByte(a[i] != b[i])
		case ircode.I8x16LtS:
			r[i] = boolByte(sa < sb)
		case ircode.I8x16LtU:
			r[i] = boolByte(a[i] < b[i])
		case ircode.I8x16GtS:
			r[i] = boolByte(sa > sb)
		case ircode.I8x16GtU:
			r[i] = boolByte(a[i] > b[i])
		case ircode.I8x16LeS:
			r[i] = boolByte(sa <= sb)
		case ircode.I8x16LeU:
			r[i] = boolByte(a[i] <= b[i])
		case ircode.I8x16GeS:
			r[i] = boolByte(sa >= sb)
		case ircode.I8x16GeU:
			r[i] = boolByte(a[i] >= b[i])
		}
	}
	c.pushV128(bytesToV128(r))
}

func (c *Context) execI16x8Compare(kind ircode.Kind) {
	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := i16x8FromV128(aLo, aHi), i16x8FromV128(bLo, bHi)
	var r [8]uint16
	for i := range r {
		sa, sb := int16(a[i]), int16(b[i])
		switch kind {
		case ircode.I16x8Eq:
			r[i] = boolU16(a[i] == b[i])
		case ircode.I16x8Ne:
			r[i] = boolU16(a[i] != b[i])
		case ircode.I16x8LtS:
			r[i] = boolU16(sa < sb)
		case ircode.I16x8LtU:
			r[i] = boolU16(a[i] < b[i])
		case ircode.I16x8GtS:
			r[i] = boolU16(sa > sb)
		case ircode.I16x8GtU:
			r[i] = boolU16(a[i] > b[i])
		case ircode.I16x8LeS:
			r[i] = boolU16(sa <= sb)
		case ircode.I16x8LeU:
			r[i] = boolU16(a[i] <= b[i])
		case ircode.I16x8GeS:
			r[i] = boolU16(sa >= sb)
		case ircode.I16x8GeU:
			r[i] = boolU16(a[i] >= b[i])
		}
	}
	c.pushV128(i16x8ToV128(r))
}

func (c *Context) execI32x4Compare(kind ircode.Kind) {
	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := i32x4FromV128(aLo, aHi), i32x4FromV128(bLo, bHi)
	var r [4]uint32
	for i := range r {
		sa, sb := int32(a[i]), int32(b[i])
		switch kind {
		case ircode.I32x4Eq:
			r[i] = boolU32(a[i] == b[i])
		case ircode.I32x4Ne:
			r[i] = boolU32(a[i] != b[i])
		case ircode.I32x4LtS:
			r[i] = boolU32(sa < sb)
		case ircode.I32x4LtU:
			r[i] = boolU32(a[i] < b[i])
		case ircode.I32x4GtS:
			r[i] = boolU32(sa > sb)
		case ircode.I32x4GtU:
			r[i] = boolU32(a[i] > b[i])
		case ircode.I32x4LeS:
			r[i] = boolU32(sa <= sb)
		case ircode.I32x4LeU:
			r[i] = boolU32(a[i] <= b[i])
		case ircode.I32x4GeS:
			r[i] = boolU32(sa >= sb)
		case ircode.I32x4GeU:
			r[i] = boolU32(a[i] >= b[i])
		}
	}
	c.pushV128(i32x4ToV128(r))
}

func (c *Context) execF32x4Compare(kind ircode.Kind) {
	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := f32x4FromV128(aLo, aHi), f32x4FromV128(bLo, bHi)
	var r [4]uint32
	for i := range r {
		switch kind {
		case ircode.F32x4Eq:
			r[i] = boolU32(a[i] == b[i])
		case ircode.F32x4Ne:
			r[i] = boolU32(a[i] != b[i])
		case ircode.F32x4Lt:
			r[i] = boolU32(a[i] < b[i])
		case ircode.F32x4Gt:
			r[i] = boolU32(a[i] > b[i])
		case ircode.F32x4Le:
			r[i] = boolU32(a[i] <= b[i])
		case ircode.F32x4Ge:
			r[i] = boolU32(a[i] >= b[i])
		}
	}
	c.pushV128(i32x4ToV128(r))
}

func (c *Context) execF64x2Compare(kind ircode.Kind) {
	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := f64x2FromV128(aLo, aHi), f64x2FromV128(bLo, bHi)
	var r [2]uint64
	for i := range r {
		var res bool
		switch kind {
		case ircode.F64x2Eq:
			res = a[i] == b[i]
		case ircode.F64x2Ne:
			res = a[i] != b[i]
		case ircode.F64x2Lt:
			res = a[i] < b[i]
		case ircode.F64x2Gt:
			res = a[i] > b[i]
		case ircode.F64x2Le:
			res = a[i] <= b[i]
		case ircode.F64x2Ge:
			res = a[i] >= b[i]
		}
		if res {
			r[i] = ^uint64(0)
		}
	}
	c.pushV128(i64x2ToV128(r))
}

func satAddS8(a, b int8) int8 {
	sum := int16(a) + int16(b)
	if sum > math.MaxInt8 {
		return math.MaxInt8
	}
	if sum < math.MinInt8 {
		return math.MinInt8
	}
	return int8(sum)
}

func satAddU8(a, b uint8) uint8 {
	sum := int(a) + int(b)
	if sum > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(sum)
}

func satSubS8(a, b int8) int8 {
	d := int16(a) - int16(b)
	if d > math.MaxInt8 {
		return math.MaxInt8
	}
	if d < math.MinInt8 {
		return math.MinInt8
	}
	return int8(d)
}

func satSubU8(a, b uint8) uint8 {
	d := int(a) - int(b)
	if d < 0 {
		return 0
	}
	return uint8(d)
}

func satAddS16(a, b int16) int16 {
	sum := int32(a) + int32(b)
	if sum > math.MaxInt16 {
		return math.MaxInt16
	}
	if sum < math.MinInt16 {
		return math.MinInt16
	}
	return int16(sum)
}

func satAddU16(a, b uint16) uint16 {
	sum := int32(a) + int32(b)
	if sum > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(sum)
}

func satSubS16(a, b int16) int16 {
	d := int32(a) - int32(b)
	if d > math.MaxInt16 {
		return math.MaxInt16
	}
	if d < math.MinInt16 {
		return math.MinInt16
	}
	return int16(d)
}

func satSubU16(a, b uint16) uint16 {
	d := int32(a) - int32(b)
	if d < 0 {
		return 0
	}
	return uint16(d)
}

func (c *Context) execI8x16(kind ircode.Kind) {
	switch kind {
	case ircode.I8x16Abs, ircode.I8x16Neg, ircode.I8x16AllTrue, ircode.I8x16Bitmask:
		lo, hi := c.popV128()
		a := v128Bytes(lo, hi)
		switch kind {
		case ircode.I8x16Abs:
			var r [16]byte
			for i, v := range a {
				sv := int8(v)
				if sv < 0 {
					sv = -sv
				}
				r[i] = byte(sv)
			}
			c.pushV128(bytesToV128(r))
		case ircode.I8x16Neg:
			var r [16]byte
			for i, v := range a {
				r[i] = byte(-int8(v))
			}
			c.pushV128(bytesToV128(r))
		case ircode.I8x16AllTrue:
			all := true
			for _, v := range a {
				if v == 0 {
					all = false
					break
				}
			}
			c.pushBool(all)
		case ircode.I8x16Bitmask:
			var mask uint32
			for i, v := range a {
				if int8(v) < 0 {
					mask |= 1 << uint(i)
				}
			}
			c.pushI32(int32(mask))
		}
		return

	case ircode.I8x16Shl, ircode.I8x16ShrS, ircode.I8x16ShrU:
		shift := c.popU32() & 7
		lo, hi := c.popV128()
		a := v128Bytes(lo, hi)
		var r [16]byte
		for i, v := range a {
			switch kind {
			case ircode.I8x16Shl:
				r[i] = v << shift
			case ircode.I8x16ShrS:
				r[i] = byte(int8(v) >> shift)
			case ircode.I8x16ShrU:
				r[i] = v >> shift
			}
		}
		c.pushV128(bytesToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := v128Bytes(aLo, aHi), v128Bytes(bLo, bHi)
	var r [16]byte
	for i := range r {
		sa, sb := int8(a[i]), int8(b[i])
		switch kind {
		case ircode.I8x16Add:
			r[i] = a[i] + b[i]
		case ircode.I8x16AddSatS:
			r[i] = byte(satAddS8(sa, sb))
		case ircode.I8x16AddSatU:
			r[i] = satAddU8(a[i], b[i])
		case ircode.I8x16Sub:
			r[i] = a[i] - b[i]
		case ircode.I8x16SubSatS:
			r[i] = byte(satSubS8(sa, sb))
		case ircode.I8x16SubSatU:
			r[i] = satSubU8(a[i], b[i])
		case ircode.I8x16MinS:
			if sa < sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I8x16MinU:
			if a[i] < b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I8x16MaxS:
			if sa > sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I8x16MaxU:
			if a[i] > b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		}
	}
	c.pushV128(bytesToV128(r))
}

func (c *Context) execI16x8(kind ircode.Kind) {
	switch kind {
	case ircode.I16x8Abs, ircode.I16x8Neg, ircode.I16x8AllTrue, ircode.I16x8Bitmask:
		lo, hi := c.popV128()
		a := i16x8FromV128(lo, hi)
		switch kind {
		case ircode.I16x8Abs:
			var r [8]uint16
			for i, v := range a {
				sv := int16(v)
				if sv < 0 {
					sv = -sv
				}
				r[i] = uint16(sv)
			}
			c.pushV128(i16x8ToV128(r))
		case ircode.I16x8Neg:
			var r [8]uint16
			for i, v := range a {
				r[i] = uint16(-int16(v))
			}
			c.pushV128(i16x8ToV128(r))
		case ircode.I16x8AllTrue:
			all := true
			for _, v := range a {
				if v == 0 {
					all = false
					break
				}
			}
			c.pushBool(all)
		case ircode.I16x8Bitmask:
			var mask uint32
			for i, v := range a {
				if int16(v) < 0 {
					mask |= 1 << uint(i)
				}
			}
			c.pushI32(int32(mask))
		}
		return

	case ircode.I16x8Shl, ircode.I16x8ShrS, ircode.I16x8ShrU:
		shift := c.popU32() & 15
		lo, hi := c.popV128()
		a := i16x8FromV128(lo, hi)
		var r [8]uint16
		for i, v := range a {
			switch kind {
			case ircode.I16x8Shl:
				r[i] = v << shift
			case ircode.I16x8ShrS:
				r[i] = uint16(int16(v) >> shift)
			case ircode.I16x8ShrU:
				r[i] = v >> shift
			}
		}
		c.pushV128(i16x8ToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := i16x8FromV128(aLo, aHi), i16x8FromV128(bLo, bHi)
	var r [8]uint16
	for i := range r {
		sa, sb := int16(a[i]), int16(b[i])
		switch kind {
		case ircode.I16x8Add:
			r[i] = a[i] + b[i]
		case ircode.I16x8AddSatS:
			r[i] = uint16(satAddS16(sa, sb))
		case ircode.I16x8AddSatU:
			r[i] = satAddU16(a[i], b[i])
		case ircode.I16x8Sub:
			r[i] = a[i] - b[i]
		case ircode.I16x8SubSatS:
			r[i] = uint16(satSubS16(sa, sb))
		case ircode.I16x8SubSatU:
			r[i] = satSubU16(a[i], b[i])
		case ircode.I16x8Mul:
			r[i] = a[i] * b[i]
		case ircode.I16x8MinS:
			if sa < sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I16x8MinU:
			if a[i] < b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I16x8MaxS:
			if sa > sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I16x8MaxU:
			if a[i] > b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		}
	}
	c.pushV128(i16x8ToV128(r))
}

func (c *Context) execI32x4(kind ircode.Kind) {
	switch kind {
	case ircode.I32x4Abs, ircode.I32x4Neg, ircode.I32x4AllTrue, ircode.I32x4Bitmask:
		lo, hi := c.popV128()
		a := i32x4FromV128(lo, hi)
		switch kind {
		case ircode.I32x4Abs:
			var r [4]uint32
			for i, v := range a {
				sv := int32(v)
				if sv < 0 {
					sv = -sv
				}
				r[i] = uint32(sv)
			}
			c.pushV128(i32x4ToV128(r))
		case ircode.I32x4Neg:
			var r [4]uint32
			for i, v := range a {
				r[i] = uint32(-int32(v))
			}
			c.pushV128(i32x4ToV128(r))
		case ircode.I32x4AllTrue:
			all := true
			for _, v := range a {
				if v == 0 {
					all = false
					break
				}
			}
			c.pushBool(all)
		case ircode.I32x4Bitmask:
			var mask uint32
			for i, v := range a {
				if int32(v) < 0 {
					mask |= 1 << uint(i)
				}
			}
			c.pushI32(int32(mask))
		}
		return

	case ircode.I32x4Shl, ircode.I32x4ShrS, ircode.I32x4ShrU:
		shift := c.popU32() & 31
		lo, hi := c.popV128()
		a := i32x4FromV128(lo, hi)
		var r [4]uint32
		for i, v := range a {
			switch kind {
			case ircode.I32x4Shl:
				r[i] = v << shift
			case ircode.I32x4ShrS:
				r[i] = uint32(int32(v) >> shift)
			case ircode.I32x4ShrU:
				r[i] = v >> shift
			}
		}
		c.pushV128(i32x4ToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := i32x4FromV128(aLo, aHi), i32x4FromV128(bLo, bHi)
	var r [4]uint32
	for i := range r {
		sa, sb := int32(a[i]), int32(b[i])
		switch kind {
		case ircode.I32x4Add:
			r[i] = a[i] + b[i]
		case ircode.I32x4Sub:
			r[i] = a[i] - b[i]
		case ircode.I32x4Mul:
			r[i] = a[i] * b[i]
		case ircode.I32x4MinS:
			if sa < sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I32x4MinU:
			if a[i] < b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I32x4MaxS:
			if sa > sb {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		case ircode.I32x4MaxU:
			if a[i] > b[i] {
				r[i] = a[i]
			} else {
				r[i] = b[i]
			}
		}
	}
	c.pushV128(i32x4ToV128(r))
}

func (c *Context) execI64x2(kind ircode.Kind) {
	switch kind {
	case ircode.I64x2Abs, ircode.I64x2Neg:
		lo, hi := c.popV128()
		a := i64x2FromV128(lo, hi)
		var r [2]uint64
		for i, v := range a {
			switch kind {
			case ircode.I64x2Abs:
				sv := int64(v)
				if sv < 0 {
					sv = -sv
				}
				r[i] = uint64(sv)
			case ircode.I64x2Neg:
				r[i] = uint64(-int64(v))
			}
		}
		c.pushV128(i64x2ToV128(r))
		return

	case ircode.I64x2Shl, ircode.I64x2ShrS, ircode.I64x2ShrU:
		shift := c.pop() & 63
		lo, hi := c.popV128()
		a := i64x2FromV128(lo, hi)
		var r [2]uint64
		for i, v := range a {
			switch kind {
			case ircode.I64x2Shl:
				r[i] = v << shift
			case ircode.I64x2ShrS:
				r[i] = uint64(int64(v) >> shift)
			case ircode.I64x2ShrU:
				r[i] = v >> shift
			}
		}
		c.pushV128(i64x2ToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := i64x2FromV128(aLo, aHi), i64x2FromV128(bLo, bHi)
	var r [2]uint64
	for i := range r {
		switch kind {
		case ircode.I64x2Add:
			r[i] = a[i] + b[i]
		case ircode.I64x2Sub:
			r[i] = a[i] - b[i]
		case ircode.I64x2Mul:
			r[i] = a[i] * b[i]
		}
	}
	c.pushV128(i64x2ToV128(r))
}

func (c *Context) execF32x4(kind ircode.Kind) {
	switch kind {
	case ircode.F32x4Ceil, ircode.F32x4Floor, ircode.F32x4Trunc, ircode.F32x4Nearest,
		ircode.F32x4Abs, ircode.F32x4Neg, ircode.F32x4Sqrt:
		lo, hi := c.popV128()
		a := f32x4FromV128(lo, hi)
		var r [4]float32
		for i, v := range a {
			switch kind {
			case ircode.F32x4Ceil:
				r[i] = float32(math.Ceil(float64(v)))
			case ircode.F32x4Floor:
				r[i] = float32(math.Floor(float64(v)))
			case ircode.F32x4Trunc:
				r[i] = float32(math.Trunc(float64(v)))
			case ircode.F32x4Nearest:
				r[i] = canonF32(moremath.WasmCompatNearestF32(v))
			case ircode.F32x4Abs:
				r[i] = canonF32(float32(math.Abs(float64(v))))
			case ircode.F32x4Neg:
				r[i] = -v
			case ircode.F32x4Sqrt:
				r[i] = canonF32(float32(math.Sqrt(float64(v))))
			}
		}
		c.pushV128(f32x4ToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := f32x4FromV128(aLo, aHi), f32x4FromV128(bLo, bHi)
	var r [4]float32
	for i := range r {
		switch kind {
		case ircode.F32x4Add:
			r[i] = canonF32(a[i] + b[i])
		case ircode.F32x4Sub:
			r[i] = canonF32(a[i] - b[i])
		case ircode.F32x4Mul:
			r[i] = canonF32(a[i] * b[i])
		case ircode.F32x4Div:
			r[i] = canonF32(a[i] / b[i])
		case ircode.F32x4Min:
			r[i] = canonF32(float32(moremath.WasmCompatMin(float64(a[i]), float64(b[i]))))
		case ircode.F32x4Max:
			r[i] = canonF32(float32(moremath.WasmCompatMax(float64(a[i]), float64(b[i]))))
		}
	}
	c.pushV128(f32x4ToV128(r))
}

func (c *Context) execF64x2(kind ircode.Kind) {
	switch kind {
	case ircode.F64x2Ceil, ircode.F64x2Floor, ircode.F64x2Trunc, ircode.F64x2Nearest,
		ircode.F64x2Abs, ircode.F64x2Neg, ircode.F64x2Sqrt:
		lo, hi := c.popV128()
		a := f64x2FromV128(lo, hi)
		var r [2]float64
		for i, v := range a {
			switch kind {
			case ircode.F64x2Ceil:
				r[i] = math.Ceil(v)
			case ircode.F64x2Floor:
				r[i] = math.Floor(v)
			case ircode.F64x2Trunc:
				r[i] = math.Trunc(v)
			case ircode.F64x2Nearest:
				r[i] = canonF64(moremath.WasmCompatNearestF64(v))
			case ircode.F64x2Abs:
				r[i] = canonF64(math.Abs(v))
			case ircode.F64x2Neg:
				r[i] = -v
			case ircode.F64x2Sqrt:
				r[i] = canonF64(math.Sqrt(v))
			}
		}
		c.pushV128(f64x2ToV128(r))
		return
	}

	bLo, bHi := c.popV128()
	aLo, aHi := c.popV128()
	a, b := f64x2FromV128(aLo, aHi), f64x2FromV128(bLo, bHi)
	var r [2]float64
	for i := range r {
		switch kind {
		case ircode.F64x2Add:
			r[i] = canonF64(a[i] + b[i])
		case ircode.F64x2Sub:
			r[i] = canonF64(a[i] - b[i])
		case ircode.F64x2Mul:
			r[i] = canonF64(a[i] * b[i])
		case ircode.F64x2Div:
			r[i] = canonF64(a[i] / b[i])
		case ircode.F64x2Min:
			r[i] = canonF64(moremath.WasmCompatMin(a[i], b[i]))
		case ircode.F64x2Max:
			r[i] = canonF64(moremath.WasmCompatMax(a[i], b[i]))
		}
	}
	c.pushV128(f64x2ToV128(r))
}
