package interpreter

import (
	"math"
	"math/bits"

	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/moremath"
)

// canonical quiet NaN bit patterns. Every arithmetic float op that could
// produce a NaN overwrites its result with these bits instead of whatever
// the hardware instruction happened to leave behind: loads, stores,
// consts, reinterprets, and sign-only ops (neg, copysign, ceil/floor/trunc
// which merely pass a NaN operand through) are untouched.
const (
	canonicalNaN32 = uint32(0x7fc00000)
	canonicalNaN64 = uint64(0x7ff8000000000000)
)

func canonF32(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return math.Float32frombits(canonicalNaN32)
	}
	return v
}

func canonF64(v float64) float64 {
	if math.IsNaN(v) {
		return math.Float64frombits(canonicalNaN64)
	}
	return v
}

// execArith handles every scalar comparison, arithmetic, conversion, and
// sign-extension opcode: the ones whose stack effect needs no memory access
// and no control-flow change (spec.md §4.D-E).
func (c *Context) execArith(op *ircode.Op) {
	switch op.Kind {
	case ircode.I32Eqz:
		c.pushBool(c.popI32() == 0)
	case ircode.I32Eq:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a == b)
	case ircode.I32Ne:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a != b)
	case ircode.I32LtS:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a < b)
	case ircode.I32LtU:
		b, a := c.popU32(), c.popU32()
		c.pushBool(a < b)
	case ircode.I32GtS:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a > b)
	case ircode.I32GtU:
		b, a := c.popU32(), c.popU32()
		c.pushBool(a > b)
	case ircode.I32LeS:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a <= b)
	case ircode.I32LeU:
		b, a := c.popU32(), c.popU32()
		c.pushBool(a <= b)
	case ircode.I32GeS:
		b, a := c.popI32(), c.popI32()
		c.pushBool(a >= b)
	case ircode.I32GeU:
		b, a := c.popU32(), c.popU32()
		c.pushBool(a >= b)

	case ircode.I64Eqz:
		c.pushBool(c.pop() == 0)
	case ircode.I64Eq:
		b, a := c.pop(), c.pop()
		c.pushBool(a == b)
	case ircode.I64Ne:
		b, a := c.pop(), c.pop()
		c.pushBool(a != b)
	case ircode.I64LtS:
		b, a := int64(c.pop()), int64(c.pop())
		c.pushBool(a < b)
	case ircode.I64LtU:
		b, a := c.pop(), c.pop()
		c.pushBool(a < b)
	case ircode.I64GtS:
		b, a := int64(c.pop()), int64(c.pop())
		c.pushBool(a > b)
	case ircode.I64GtU:
		b, a := c.pop(), c.pop()
		c.pushBool(a > b)
	case ircode.I64LeS:
		b, a := int64(c.pop()), int64(c.pop())
		c.pushBool(a <= b)
	case ircode.I64LeU:
		b, a := c.pop(), c.pop()
		c.pushBool(a <= b)
	case ircode.I64GeS:
		b, a := int64(c.pop()), int64(c.pop())
		c.pushBool(a >= b)
	case ircode.I64GeU:
		b, a := c.pop(), c.pop()
		c.pushBool(a >= b)

	case ircode.F32Eq:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a == b)
	case ircode.F32Ne:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a != b)
	case ircode.F32Lt:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a < b)
	case ircode.F32Gt:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a > b)
	case ircode.F32Le:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a <= b)
	case ircode.F32Ge:
		b, a := c.popF32(), c.popF32()
		c.pushBool(a >= b)

	case ircode.F64Eq:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a == b)
	case ircode.F64Ne:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a != b)
	case ircode.F64Lt:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a < b)
	case ircode.F64Gt:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a > b)
	case ircode.F64Le:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a <= b)
	case ircode.F64Ge:
		b, a := c.popF64(), c.popF64()
		c.pushBool(a >= b)

	case ircode.I32Clz:
		c.pushI32(int32(bits.LeadingZeros32(c.popU32())))
	case ircode.I32Ctz:
		c.pushI32(int32(bits.TrailingZeros32(c.popU32())))
	case ircode.I32Popcnt:
		c.pushI32(int32(bits.OnesCount32(c.popU32())))
	case ircode.I32Add:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a + b))
	case ircode.I32Sub:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a - b))
	case ircode.I32Mul:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a * b))
	case ircode.I32DivS:
		b, a := c.popI32(), c.popI32()
		if b == 0 {
			trap("integer divide by zero")
		}
		if a == math.MinInt32 && b == -1 {
			trap("integer overflow")
		}
		c.pushI32(a / b)
	case ircode.I32DivU:
		b, a := c.popU32(), c.popU32()
		if b == 0 {
			trap("integer divide by zero")
		}
		c.push(uint64(a / b))
	case ircode.I32RemS:
		b, a := c.popI32(), c.popI32()
		if b == 0 {
			trap("integer divide by zero")
		}
		if a == math.MinInt32 && b == -1 {
			c.pushI32(0)
		} else {
			c.pushI32(a % b)
		}
	case ircode.I32RemU:
		b, a := c.popU32(), c.popU32()
		if b == 0 {
			trap("integer divide by zero")
		}
		c.push(uint64(a % b))
	case ircode.I32And:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a & b))
	case ircode.I32Or:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a | b))
	case ircode.I32Xor:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a ^ b))
	case ircode.I32Shl:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a << (b & 31)))
	case ircode.I32ShrS:
		b, a := c.popU32(), c.popI32()
		c.pushI32(a >> (b & 31))
	case ircode.I32ShrU:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(a >> (b & 31)))
	case ircode.I32Rotl:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(bits.RotateLeft32(a, int(b&31))))
	case ircode.I32Rotr:
		b, a := c.popU32(), c.popU32()
		c.push(uint64(bits.RotateLeft32(a, -int(b&31))))

	case ircode.I64Clz:
		c.push(uint64(bits.LeadingZeros64(c.pop())))
	case ircode.I64Ctz:
		c.push(uint64(bits.TrailingZeros64(c.pop())))
	case ircode.I64Popcnt:
		c.push(uint64(bits.OnesCount64(c.pop())))
	case ircode.I64Add:
		b, a := c.pop(), c.pop()
		c.push(a + b)
	case ircode.I64Sub:
		b, a := c.pop(), c.pop()
		c.push(a - b)
	case ircode.I64Mul:
		b, a := c.pop(), c.pop()
		c.push(a * b)
	case ircode.I64DivS:
		b, a := int64(c.pop()), int64(c.pop())
		if b == 0 {
			trap("integer divide by zero")
		}
		if a == math.MinInt64 && b == -1 {
			trap("integer overflow")
		}
		c.push(uint64(a / b))
	case ircode.I64DivU:
		b, a := c.pop(), c.pop()
		if b == 0 {
			trap("integer divide by zero")
		}
		c.push(a / b)
	case ircode.I64RemS:
		b, a := int64(c.pop()), int64(c.pop())
		if b == 0 {
			trap("integer divide by zero")
		}
		if a == math.MinInt64 && b == -1 {
			c.push(0)
		} else {
			c.push(uint64(a % b))
		}
	case ircode.I64RemU:
		b, a := c.pop(), c.pop()
		if b == 0 {
			trap("integer divide by zero")
		}
		c.push(a % b)
	case ircode.I64And:
		b, a := c.pop(), c.pop()
		c.push(a & b)
	case ircode.I64Or:
		b, a := c.pop(), c.pop()
		c.push(a | b)
	case ircode.I64Xor:
		b, a := c.pop(), c.pop()
		c.push(a ^ b)
	case ircode.I64Shl:
		b, a := c.pop(), c.pop()
		c.push(a << (b & 63))
	case ircode.I64ShrS:
		b, a := c.pop(), int64(c.pop())
		c.push(uint64(a >> (b & 63)))
	case ircode.I64ShrU:
		b, a := c.pop(), c.pop()
		c.push(a >> (b & 63))
	case ircode.I64Rotl:
		b, a := c.pop(), c.pop()
		c.push(bits.RotateLeft64(a, int(b&63)))
	case ircode.I64Rotr:
		b, a := c.pop(), c.pop()
		c.push(bits.RotateLeft64(a, -int(b&63)))

	case ircode.F32Abs:
		c.pushF32(canonF32(float32(math.Abs(float64(c.popF32())))))
	case ircode.F32Neg:
		c.pushF32(-c.popF32())
	case ircode.F32Ceil:
		c.pushF32(float32(math.Ceil(float64(c.popF32()))))
	case ircode.F32Floor:
		c.pushF32(float32(math.Floor(float64(c.popF32()))))
	case ircode.F32Trunc:
		c.pushF32(float32(math.Trunc(float64(c.popF32()))))
	case ircode.F32Nearest:
		c.pushF32(canonF32(moremath.WasmCompatNearestF32(c.popF32())))
	case ircode.F32Sqrt:
		c.pushF32(canonF32(float32(math.Sqrt(float64(c.popF32())))))
	case ircode.F32Add:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(a + b))
	case ircode.F32Sub:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(a - b))
	case ircode.F32Mul:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(a * b))
	case ircode.F32Div:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(a / b))
	case ircode.F32Min:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(float32(moremath.WasmCompatMin(float64(a), float64(b)))))
	case ircode.F32Max:
		b, a := c.popF32(), c.popF32()
		c.pushF32(canonF32(float32(moremath.WasmCompatMax(float64(a), float64(b)))))
	case ircode.F32Copysign:
		b, a := c.popF32(), c.popF32()
		c.pushF32(float32(math.Copysign(float64(a), float64(b))))

	case ircode.F64Abs:
		c.pushF64(canonF64(math.Abs(c.popF64())))
	case ircode.F64Neg:
		c.pushF64(-c.popF64())
	case ircode.F64Ceil:
		c.pushF64(math.Ceil(c.popF64()))
	case ircode.F64Floor:
		c.pushF64(math.Floor(c.popF64()))
	case ircode.F64Trunc:
		c.pushF64(math.Trunc(c.popF64()))
	case ircode.F64Nearest:
		c.pushF64(canonF64(moremath.WasmCompatNearestF64(c.popF64())))
	case ircode.F64Sqrt:
		c.pushF64(canonF64(math.Sqrt(c.popF64())))
	case ircode.F64Add:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(a + b))
	case ircode.F64Sub:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(a - b))
	case ircode.F64Mul:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(a * b))
	case ircode.F64Div:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(a / b))
	case ircode.F64Min:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(moremath.WasmCompatMin(a, b)))
	case ircode.F64Max:
		b, a := c.popF64(), c.popF64()
		c.pushF64(canonF64(moremath.WasmCompatMax(a, b)))
	case ircode.F64Copysign:
		b, a := c.popF64(), c.popF64()
		c.pushF64(math.Copysign(a, b))

	case ircode.I32WrapI64:
		c.pushI32(int32(uint32(c.pop())))
	case ircode.I32TruncF32S:
		c.pushI32(truncToI32(float64(c.popF32()), false))
	case ircode.I32TruncF32U:
		c.push(uint64(truncToU32(float64(c.popF32()), false)))
	case ircode.I32TruncF64S:
		c.pushI32(truncToI32(c.popF64(), false))
	case ircode.I32TruncF64U:
		c.push(uint64(truncToU32(c.popF64(), false)))
	case ircode.I64ExtendI32S:
		c.push(uint64(int64(c.popI32())))
	case ircode.I64ExtendI32U:
		c.push(uint64(c.popU32()))
	case ircode.I64TruncF32S:
		c.push(uint64(truncToI64(float64(c.popF32()), false)))
	case ircode.I64TruncF32U:
		c.push(truncToU64(float64(c.popF32()), false))
	case ircode.I64TruncF64S:
		c.push(uint64(truncToI64(c.popF64(), false)))
	case ircode.I64TruncF64U:
		c.push(truncToU64(c.popF64(), false))
	case ircode.F32ConvertI32S:
		c.pushF32(float32(c.popI32()))
	case ircode.F32ConvertI32U:
		c.pushF32(float32(c.popU32()))
	case ircode.F32ConvertI64S:
		c.pushF32(float32(int64(c.pop())))
	case ircode.F32ConvertI64U:
		c.pushF32(float32(c.pop()))
	case ircode.F32DemoteF64:
		c.pushF32(canonF32(float32(c.popF64())))
	case ircode.F64ConvertI32S:
		c.pushF64(float64(c.popI32()))
	case ircode.F64ConvertI32U:
		c.pushF64(float64(c.popU32()))
	case ircode.F64ConvertI64S:
		c.pushF64(float64(int64(c.pop())))
	case ircode.F64ConvertI64U:
		c.pushF64(float64(c.pop()))
	case ircode.F64PromoteF32:
		c.pushF64(canonF64(float64(c.popF32())))
	case ircode.I32ReinterpretF32:
		c.push(c.pop() & 0xffffffff)
	case ircode.I64ReinterpretF64:
		// no-op: both occupy the full 64-bit lane already.
	case ircode.F32ReinterpretI32:
		c.push(c.pop() & 0xffffffff)
	case ircode.F64ReinterpretI64:
		// no-op.

	case ircode.I32Extend8S:
		c.pushI32(int32(int8(c.popU32())))
	case ircode.I32Extend16S:
		c.pushI32(int32(int16(c.popU32())))
	case ircode.I64Extend8S:
		c.push(uint64(int64(int8(c.pop()))))
	case ircode.I64Extend16S:
		c.push(uint64(int64(int16(c.pop()))))
	case ircode.I64Extend32S:
		c.push(uint64(int64(int32(c.pop()))))

	case ircode.I32TruncSatF32S:
		c.pushI32(truncToI32(float64(c.popF32()), true))
	case ircode.I32TruncSatF32U:
		c.push(uint64(truncToU32(float64(c.popF32()), true)))
	case ircode.I32TruncSatF64S:
		c.pushI32(truncToI32(c.popF64(), true))
	case ircode.I32TruncSatF64U:
		c.push(uint64(truncToU32(c.popF64(), true)))
	case ircode.I64TruncSatF32S:
		c.push(uint64(truncToI64(float64(c.popF32()), true)))
	case ircode.I64TruncSatF32U:
		c.push(truncToU64(float64(c.popF32()), true))
	case ircode.I64TruncSatF64S:
		c.push(uint64(truncToI64(c.popF64(), true)))
	case ircode.I64TruncSatF64U:
		c.push(truncToU64(c.popF64(), true))
	}
}

// truncToI32 implements spec.md §4.D's float-to-int truncation: the
// non-saturating form traps on NaN, infinity, or any magnitude beyond the
// target range; the saturating form instead maps NaN to 0 and out-of-range
// values to the nearest representable endpoint.
func truncToI32(f float64, sat bool) int32 {
	t := math.Trunc(f)
	if math.IsNaN(t) {
		if sat {
			return 0
		}
		trap("invalid conversion to integer")
	}
	if t < math.MinInt32 || t >= math.MaxInt32+1 {
		if sat {
			if t < 0 || math.IsInf(t, -1) {
				return math.MinInt32
			}
			return math.MaxInt32
		}
		trap("integer overflow")
	}
	return int32(t)
}

func truncToU32(f float64, sat bool) uint32 {
	t := math.Trunc(f)
	if math.IsNaN(t) {
		if sat {
			return 0
		}
		trap("invalid conversion to integer")
	}
	if t < 0 || t >= math.MaxUint32+1 {
		if sat {
			if t < 0 {
				return 0
			}
			return math.MaxUint32
		}
		trap("integer overflow")
	}
	return uint32(t)
}

func truncToI64(f float64, sat bool) int64 {
	t := math.Trunc(f)
	if math.IsNaN(t) {
		if sat {
			return 0
		}
		trap("invalid conversion to integer")
	}
	if t < math.MinInt64 || t >= math.MaxInt64 {
		// float64 cannot represent MaxInt64 exactly; the real boundary is
		// 2^63, checked directly to avoid a lossy float comparison.
		if t >= 9223372036854775808.0 {
			if sat {
				return math.MaxInt64
			}
			trap("integer overflow")
		}
		if t < math.MinInt64 {
			if sat {
				return math.MinInt64
			}
			trap("integer overflow")
		}
	}
	return int64(t)
}

func truncToU64(f float64, sat bool) uint64 {
	t := math.Trunc(f)
	if math.IsNaN(t) {
		if sat {
			return 0
		}
		trap("invalid conversion to integer")
	}
	if t < 0 {
		if sat {
			return 0
		}
		trap("integer overflow")
	}
	if t >= 18446744073709551616.0 {
		if sat {
			return math.MaxUint64
		}
		trap("integer overflow")
	}
	return uint64(t)
}
