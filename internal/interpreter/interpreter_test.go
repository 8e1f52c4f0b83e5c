package interpreter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manhvn135/gowasm/internal/compile"
	"github.com/manhvn135/gowasm/internal/interpreter"
	"github.com/manhvn135/gowasm/internal/wasm"
)

// encodeSLEB32 encodes v as a signed LEB128 value, as wasm's i32.const
// immediate is encoded on the wire.
func encodeSLEB32(v int32) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func buildModule(t *testing.T, m *wasm.Module, maxDepthHint int) *interpreter.Module {
	t.Helper()
	mod, err := compile.Module(m)
	require.NoError(t, err)
	return mod
}

func TestInvoke_Arithmetic(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b} // local.get 0; local.get 1; i32.add; end
	m := &wasm.Module{
		Types:               []wasm.FuncType{sig},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, []uint64{7, 35})
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestInvoke_MemoryStoreLoadRoundtrip(t *testing.T) {
	var body []byte
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(0)...) // i32.const 0 (addr)
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(12345)...) // i32.const 12345 (value)
	body = append(body, 0x36, 0x02, 0x00)       // i32.store align=2 offset=0
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(0)...) // i32.const 0 (addr)
	body = append(body, 0x28, 0x02, 0x00)   // i32.load align=2 offset=0
	body = append(body, 0x0b)               // end

	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
		Memories:            []wasm.Memory{{Limits: wasm.Limits{Min: 1}}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{12345}, results)
}

func TestInvoke_MemoryStoreOutOfBoundsTraps(t *testing.T) {
	var body []byte
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(65533)...) // i32.const 65533 (near the end of 1 page)
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(1)...)
	body = append(body, 0x36, 0x02, 0x00) // i32.store: 4 bytes starting at 65533, straddles past 65536
	body = append(body, 0x0b)

	m := &wasm.Module{
		Types:               []wasm.FuncType{{}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
		Memories:            []wasm.Memory{{Limits: wasm.Limits{Min: 1}}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	_, err = ctx.Invoke(0, nil)
	require.Error(t, err)
	ierr, ok := err.(*interpreter.Error)
	require.True(t, ok)
	require.Equal(t, interpreter.KindMemoryOutOfBounds, ierr.Kind)
}

func TestInvoke_DivideByZeroTraps(t *testing.T) {
	body := []byte{
		0x41, 0x01, // i32.const 1
		0x41, 0x00, // i32.const 0
		0x6d, // i32.div_s
		0x0b, // end
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	_, err = ctx.Invoke(0, nil)
	require.Error(t, err)
	ierr, ok := err.(*interpreter.Error)
	require.True(t, ok)
	require.Equal(t, interpreter.KindTrap, ierr.Kind)
}

func TestInvoke_IfElseSelectsBranch(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0
		0x04, 0x7f, // if (result i32)
		0x41, 0x01, //   i32.const 1
		0x05,       // else
		0x41, 0x00, //   i32.const 0
		0x0b, // end (if)
		0x0b, // end (func)
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{sig},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, []uint64{1})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, results)

	results, err = ctx.Invoke(0, []uint64{0})
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, results)
}

func TestInvoke_I32x4SplatExtractLaneRoundtrip(t *testing.T) {
	body := []byte{
		0x41, 0x07, // i32.const 7
		0xfd, 0x11, // i32x4.splat
		0xfd, 0x1b, 0x02, // i32x4.extract_lane 2
		0x0b, // end
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}

func TestInvoke_SaturatingTruncNaNClampsToZero(t *testing.T) {
	// f32.const NaN (0x7fc00000); i32_trunc_sat_f32_s; end
	body := []byte{
		0x43, 0x00, 0x00, 0xc0, 0x7f, // f32.const NaN
		0xfc, 0x00, // i32_trunc_sat_f32_s
		0x0b, // end
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, results)
}

func TestInvoke_NonSaturatingTruncNaNTraps(t *testing.T) {
	body := []byte{
		0x43, 0x00, 0x00, 0xc0, 0x7f, // f32.const NaN
		0xa8, // i32.trunc_f32_s
		0x0b, // end
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	_, err = ctx.Invoke(0, nil)
	require.Error(t, err)
	ierr, ok := err.(*interpreter.Error)
	require.True(t, ok)
	require.Equal(t, interpreter.KindTrap, ierr.Kind)
}

func TestInvoke_BrDiscardsBlockStack(t *testing.T) {
	// (func (result i32) i32.const 100 (block (result i32) i32.const 1 i32.const 2 br 0) i32.add)
	// br 0 must keep only the top value (2) and discard everything pushed
	// above the block's entry baseline, leaving [100, 2] for the final add.
	body := []byte{
		0x41, 0xe4, 0x00, // i32.const 100
		0x02, 0x7f, // block (result i32)
		0x41, 0x01, //   i32.const 1
		0x41, 0x02, //   i32.const 2
		0x0c, 0x00, //   br 0
		0x0b, // end (block)
		0x6a, // i32.add
		0x0b, // end (func)
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{102}, results)
}

func TestInvoke_LoopBackwardBrDoesNotAccumulateStack(t *testing.T) {
	// A loop that runs many times, each iteration pushing a junk value
	// before conditionally branching back to the header. br_if must discard
	// that junk on every backward jump: left undropped, it would pile up
	// across iterations and eventually overflow the value stack.
	const iterations = 100000
	sig := wasm.FuncType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	var body []byte
	body = append(body, 0x41, 0x00) // i32.const 0
	body = append(body, 0x21, 0x00) // local.set 0 (counter)
	body = append(body, 0x03, 0x40) // loop
	body = append(body, 0x20, 0x00) //   local.get 0
	body = append(body, 0x41, 0x01) //   i32.const 1
	body = append(body, 0x6a)       //   i32.add
	body = append(body, 0x21, 0x00) //   local.set 0
	body = append(body, 0x41, 0x2a) //   i32.const 42 (junk pushed before the branch)
	body = append(body, 0x20, 0x00) //   local.get 0
	body = append(body, 0x41)
	body = append(body, encodeSLEB32(iterations)...)
	body = append(body, 0x48)       //   i32.lt_s (counter < iterations)
	body = append(body, 0x0d, 0x00) //   br_if 0
	body = append(body, 0x1a)       //   drop (junk, fallthrough-only path)
	body = append(body, 0x0b)       // end (loop)
	body = append(body, 0x20, 0x00) // local.get 0
	body = append(body, 0x0b)       // end (func)

	cb := wasm.CodeBody{Body: body, Locals: []wasm.ValueType{wasm.ValueTypeI32}}
	m := &wasm.Module{
		Types:               []wasm.FuncType{sig},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{cb},
	}
	mod := buildModule(t, m, 8)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{iterations}, results)
}

func TestInvoke_F32AddCanonicalizesNaN(t *testing.T) {
	// f32.add(nan(payload=0x7fa0_0000), nan(payload=0x7fa0_0000)) must yield
	// the canonical quiet NaN 0x7fc0_0000, not whatever the hardware leaves.
	body := []byte{
		0x43, 0x00, 0x00, 0xa0, 0x7f, // f32.const nan:0x7fa00000
		0x43, 0x00, 0x00, 0xa0, 0x7f, // f32.const nan:0x7fa00000
		0x92, // f32.add
		0x0b, // end
	}
	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeF32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x7fc00000}, results)
}

func TestInvoke_F32x4AddCanonicalizesNaNLanes(t *testing.T) {
	// Each lane of f32x4.add(nan:0x7fa00000, nan:0x7fa00000) must canonicalize
	// to 0x7fc0_0000, same as the scalar case.
	nanLane := []byte{0x00, 0x00, 0xa0, 0x7f} // f32 nan, payload 0x7fa00000
	var v128Bytes []byte
	for i := 0; i < 4; i++ {
		v128Bytes = append(v128Bytes, nanLane...)
	}

	var body []byte
	body = append(body, 0xfd, 0x0c) // v128.const
	body = append(body, v128Bytes...)
	body = append(body, 0xfd, 0x0c) // v128.const
	body = append(body, v128Bytes...)
	body = append(body, 0xfd)
	body = append(body, encodeSLEB32(228)...) // f32x4.add (LEB128: 0xe4, 0x01)
	body = append(body, 0xfd, 0x1f, 0x00)     // f32x4.extract_lane 0
	body = append(body, 0x0b)                 // end

	m := &wasm.Module{
		Types:               []wasm.FuncType{{Results: []wasm.ValueType{wasm.ValueTypeF32}}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.DefaultConfig())
	require.NoError(t, err)

	results, err := ctx.Invoke(0, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x7fc00000}, results)
}

func TestInvoke_CallStackOverflowTraps(t *testing.T) {
	// A function that unconditionally calls itself, bounded by a tiny
	// MaxCallDepth so the test runs fast.
	body := []byte{0x10, 0x00, 0x0b} // call 0; end
	m := &wasm.Module{
		Types:               []wasm.FuncType{{}},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
	mod := buildModule(t, m, 4)
	ctx, err := interpreter.NewContext(mod, interpreter.Config{MaxCallDepth: 8, ValueStackCapacity: 1024})
	require.NoError(t, err)

	_, err = ctx.Invoke(0, nil)
	require.Error(t, err)
	ierr, ok := err.(*interpreter.Error)
	require.True(t, ok)
	require.Equal(t, interpreter.KindCallStackOverflow, ierr.Kind)
}
