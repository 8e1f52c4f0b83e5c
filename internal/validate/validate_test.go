package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manhvn135/gowasm/internal/wasm"
)

func moduleWithBody(sig wasm.FuncType, body []byte) *wasm.Module {
	return &wasm.Module{
		Types:               []wasm.FuncType{sig},
		FunctionTypeIndices: []uint32{0},
		CodeBodies:          []wasm.CodeBody{{Body: body}},
	}
}

func TestFunction_ValidArithmetic(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0
		0x20, 0x01, // local.get 1
		0x6a, // i32.add
		0x0b, // end
	}
	res, err := Function(moduleWithBody(sig, body), 0)
	require.NoError(t, err)
	require.Equal(t, 2, res.MaxStackDepth)
}

func TestFunction_LocalIndexOutOfRange(t *testing.T) {
	sig := wasm.FuncType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0 -- but there are no locals/params
		0x0b,
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
}

func TestFunction_TypeMismatchOnAdd(t *testing.T) {
	sig := wasm.FuncType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeF32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x20, 0x00, // local.get 0 (i32)
		0x20, 0x01, // local.get 1 (f32)
		0x6a, // i32.add -- expects two i32s, got an f32
		0x0b,
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "type mismatch")
}

func TestFunction_ResultTypeMismatch(t *testing.T) {
	sig := wasm.FuncType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x43, 0x00, 0x00, 0x00, 0x00, // f32.const 0.0
		0x0b, // end -- function wants an i32 on the stack, got f32
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
}

func TestFunction_BranchDepthOutOfRange(t *testing.T) {
	sig := wasm.FuncType{}
	body := []byte{
		0x0c, 0x05, // br 5 -- no enclosing block is 5 levels deep
		0x0b,
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "branch depth")
}

func TestFunction_BlockTypeResolvesFromTypeSection(t *testing.T) {
	// Two types: type 0 is ()->i32 used as the function signature, type 1
	// is ()->i32 used as the inner block's signature.
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Results: []wasm.ValueType{wasm.ValueTypeI32}},
			{Results: []wasm.ValueType{wasm.ValueTypeI32}},
		},
		FunctionTypeIndices: []uint32{0},
		CodeBodies: []wasm.CodeBody{{Body: []byte{
			0x02, 0x01, // block (type index 1 : ()->i32)
			0x41, 0x2a, //   i32.const 42
			0x0b, // end (block)
			0x0b, // end (function)
		}}},
	}
	res, err := Function(m, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.MaxStackDepth, 1)
}

func TestFunction_UnreachableCodeIsPolymorphic(t *testing.T) {
	// After unreachable, any operand types are accepted until the
	// enclosing block's end, so this otherwise-nonsensical add must pass.
	sig := wasm.FuncType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	body := []byte{
		0x00, // unreachable
		0x6a, // i32.add (with nothing on the stack -- fine, we're unreachable)
		0x0b,
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.NoError(t, err)
}

func TestFunction_MissingEndIsAnError(t *testing.T) {
	sig := wasm.FuncType{}
	body := []byte{0x01} // nop, no end
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing function-terminating end")
}

func TestFunction_IfWithoutConditionIsUnderflow(t *testing.T) {
	sig := wasm.FuncType{}
	body := []byte{
		0x04, 0x40, // if (empty) -- but nothing was pushed as the condition
		0x0b, // end (if)
		0x0b, // end (function)
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
}

func TestFunction_ElseWithoutIfIsAnError(t *testing.T) {
	sig := wasm.FuncType{}
	body := []byte{
		0x02, 0x40, // block
		0x05,       // else -- no matching if
		0x0b,
		0x0b,
	}
	_, err := Function(moduleWithBody(sig, body), 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "else without matching if")
}
