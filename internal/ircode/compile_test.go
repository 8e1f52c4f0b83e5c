package ircode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manhvn135/gowasm/internal/validate"
	"github.com/manhvn135/gowasm/internal/wasm"
)

func moduleWithBody(sig wasm.FuncType, body []byte) *wasm.Module {
	return &wasm.Module{
		Types:               []wasm.FuncType{sig},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
}

// compileBody runs the validator over m (to obtain the branch keep/drop
// metadata Compile now requires) before lowering it, matching how
// internal/compile.Module pairs the two passes.
func compileBody(t *testing.T, m *wasm.Module) (*Function, error) {
	t.Helper()
	res, err := validate.Function(m, 0)
	require.NoError(t, err)
	return Compile(m, 0, res.MaxStackDepth, res.Branches)
}

// TestCompile_StraightLine checks a function with no control flow lowers to
// exactly the arithmetic ops it contains, in order.
func TestCompile_StraightLine(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0
		0x20, 0x01, // local.get 1
		0x6a,       // i32.add
		0x0b,       // end
	}
	fn, err := compileBody(t, moduleWithBody(sig, body))
	require.NoError(t, err)

	var kinds []Kind
	for _, op := range fn.Code {
		kinds = append(kinds, op.Kind)
	}
	require.Equal(t, []Kind{LocalGet, LocalGet, I32Add, End}, kinds)
	require.Equal(t, uint32(0), fn.Code[0].A)
	require.Equal(t, uint32(1), fn.Code[1].A)
}

// TestCompile_IfElse checks that both branches of an if/else resolve to
// valid, forward-pointing, in-bounds targets.
func TestCompile_IfElse(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0
		0x04, 0x7f, // if (result i32)
		0x41, 0x01, //   i32.const 1
		0x05, // else
		0x41, 0x00, //   i32.const 0
		0x0b, // end (if)
		0x0b, // end (function)
	}
	fn, err := compileBody(t, moduleWithBody(sig, body))
	require.NoError(t, err)

	var ifIdx, elseIdx = -1, -1
	for i, op := range fn.Code {
		switch op.Kind {
		case If:
			ifIdx = i
		case Else:
			elseIdx = i
		}
	}
	require.NotEqual(t, -1, ifIdx, "if op must be present")
	require.NotEqual(t, -1, elseIdx, "else op must be present")

	ifOp := fn.Code[ifIdx]
	require.Greater(t, int(ifOp.A), ifIdx, "if's false-branch target must point forward")
	require.LessOrEqual(t, int(ifOp.A), len(fn.Code), "if's false-branch target must stay in bounds")
	require.Equal(t, elseIdx+1, int(ifOp.A), "a false condition must land exactly at the else body's first instruction")

	elseOp := fn.Code[elseIdx]
	require.Greater(t, int(elseOp.A), elseIdx, "else's jump-to-end target must point forward")
	require.LessOrEqual(t, int(elseOp.A), len(fn.Code))
}

// TestCompile_LoopBranchesBackward checks that br 0 inside a loop resolves
// immediately to the loop header (the position preceding the loop's first
// real op), not forward like a block/if branch would. Block/loop headers
// carry no Op of their own, so the header address is simply the index of
// whatever is emitted first inside the loop body.
func TestCompile_LoopBranchesBackward(t *testing.T) {
	sig := wasm.FuncType{}
	body := []byte{
		0x03, 0x40, // loop (no result)
		0x01,       // nop
		0x0c, 0x00, // br 0
		0x0b, // end (loop)
		0x0b, // end (function)
	}
	fn, err := compileBody(t, moduleWithBody(sig, body))
	require.NoError(t, err)

	var nopIdx, brIdx = -1, -1
	for i, op := range fn.Code {
		switch op.Kind {
		case Nop:
			nopIdx = i
		case Br:
			brIdx = i
		}
	}
	require.NotEqual(t, -1, nopIdx)
	require.NotEqual(t, -1, brIdx)
	require.Equal(t, uint32(nopIdx), fn.Code[brIdx].A, "br 0 must target the loop's first op, before the br itself")
	require.Less(t, int(fn.Code[brIdx].A), brIdx, "the target must point backward relative to the br")
}

// TestCompile_BrTableTargetsAllResolved checks that every slot of a br_table
// immediate ends up with an in-bounds, forward-pointing target.
func TestCompile_BrTableTargetsAllResolved(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x02, 0x40, // block
		0x02, 0x40, //   block
		0x02, 0x40, //     block
		0x20, 0x00, //       local.get 0
		0x0e, 0x02, 0x00, 0x01, 0x02, // br_table 0 1 2
		0x0b, // end
		0x0b, // end
		0x0b, // end
		0x0b, // end (function)
	}
	fn, err := compileBody(t, moduleWithBody(sig, body))
	require.NoError(t, err)

	var brTableIdx = -1
	for i, op := range fn.Code {
		if op.Kind == BrTable {
			brTableIdx = i
		}
	}
	require.NotEqual(t, -1, brTableIdx)
	op := fn.Code[brTableIdx]
	require.Len(t, op.Targets, 3)
	for _, tgt := range op.Targets {
		require.Greater(t, int(tgt), brTableIdx)
		require.LessOrEqual(t, int(tgt), len(fn.Code))
	}
}
