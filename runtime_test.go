package gowasm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	gowasm "github.com/manhvn135/gowasm"
	"github.com/manhvn135/gowasm/api"
)

// header prepends the magic number and version 1 to body.
func header(body ...byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	return append(out, body...)
}

// section wraps id/body with its ULEB128 length, assuming body is short
// enough (<128 bytes) that the length fits in one byte.
func section(id byte, body []byte) []byte {
	return append([]byte{id, byte(len(body))}, body...)
}

// addAndGlobalModule builds a module exporting:
//   - func "add": (i32, i32) -> i32, returns the sum of its params
//   - memory "mem": min 1 page
//   - global "g": mutable i32, initialized to 50
func addAndGlobalModule() []byte {
	typeSec := section(1, []byte{
		0x01,             // 1 type
		0x60,             // func tag
		0x02, 0x7f, 0x7f, // 2 params: i32, i32
		0x01, 0x7f, // 1 result: i32
	})
	funcSec := section(3, []byte{0x01, 0x00}) // 1 function, type index 0
	memSec := section(5, []byte{0x01, 0x00, 0x01})
	globalSec := section(6, []byte{
		0x01,       // 1 global
		0x7f, 0x01, // i32, mutable
		0x41, 0x32, 0x0b, // i32.const 50, end
	})
	exportSec := section(7, []byte{
		0x03,
		0x03, 'a', 'd', 'd', 0x00, 0x00, // func "add" -> index 0
		0x03, 'm', 'e', 'm', 0x02, 0x00, // memory "mem" -> index 0
		0x01, 'g', 0x03, 0x00, // global "g" -> index 0
	})
	body := []byte{
		0x00,       // 0 locals groups
		0x20, 0x00, // local.get 0
		0x20, 0x01, // local.get 1
		0x6a, // i32.add
		0x0b, // end
	}
	codeSec := section(10, append([]byte{0x01, byte(len(body))}, body...))

	var out []byte
	out = append(out, typeSec...)
	out = append(out, funcSec...)
	out = append(out, memSec...)
	out = append(out, globalSec...)
	out = append(out, exportSec...)
	out = append(out, codeSec...)
	return header(out...)
}

func TestRuntime_CompileInstantiateInvoke(t *testing.T) {
	ctx := context.Background()
	rt := gowasm.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addAndGlobalModule())
	require.NoError(t, err)

	mod, err := rt.InstantiateModule(ctx, compiled, gowasm.NewModuleConfig().WithName("arith"))
	require.NoError(t, err)
	require.Equal(t, "arith", mod.Name())

	fn := mod.ExportedFunction("add")
	require.NotNil(t, fn)
	results, err := fn.Call(ctx, 3, 4)
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}

func TestRuntime_ExportedMemoryReadWrite(t *testing.T) {
	ctx := context.Background()
	rt := gowasm.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addAndGlobalModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(ctx, compiled, nil)
	require.NoError(t, err)

	mem := mod.ExportedMemory("mem")
	require.NotNil(t, mem)
	require.Equal(t, uint32(65536), mem.Size(ctx)) // 1 page, in bytes

	ok := mem.WriteByte(ctx, 10, 0xab)
	require.True(t, ok)
	v, ok := mem.ReadByte(ctx, 10)
	require.True(t, ok)
	require.Equal(t, byte(0xab), v)

	_, ok = mem.ReadByte(ctx, 1<<20) // far beyond 1 page, must not panic
	require.False(t, ok)
}

func TestRuntime_ExportedGlobalGetSet(t *testing.T) {
	ctx := context.Background()
	rt := gowasm.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addAndGlobalModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(ctx, compiled, nil)
	require.NoError(t, err)

	g := mod.ExportedGlobal("g")
	require.NotNil(t, g)
	require.Equal(t, uint64(50), g.Get(ctx))

	g.(api.MutableGlobal).Set(ctx, 99)
	require.Equal(t, uint64(99), g.Get(ctx))
}

func TestRuntime_UnknownExportReturnsNil(t *testing.T) {
	ctx := context.Background()
	rt := gowasm.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, addAndGlobalModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(ctx, compiled, nil)
	require.NoError(t, err)

	require.Nil(t, mod.ExportedFunction("missing"))
	require.Nil(t, mod.ExportedMemory("missing"))
	require.Nil(t, mod.ExportedGlobal("missing"))
}

func TestRuntime_CompileModuleRejectsBadMagic(t *testing.T) {
	ctx := context.Background()
	rt := gowasm.NewRuntime(ctx)

	_, err := rt.CompileModule(ctx, []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestRuntime_MemoryMaxPagesOverrideCapsGrow(t *testing.T) {
	ctx := context.Background()
	cfg := gowasm.NewRuntimeConfig().WithMemoryMaxPages(1)
	rt := gowasm.NewRuntimeWithConfig(ctx, cfg)

	compiled, err := rt.CompileModule(ctx, addAndGlobalModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(ctx, compiled, nil)
	require.NoError(t, err)

	mem := mod.ExportedMemory("mem")
	_, ok := mem.Grow(ctx, 1) // module already has 1 page; override caps total at 1
	require.False(t, ok)
}
