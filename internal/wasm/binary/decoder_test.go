package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manhvn135/gowasm/internal/wasm"
)

// sleb7 encodes a value known to fit in the 7 data bits of one LEB128 byte
// (i.e. -64 <= v <= 63), which is all these tests need.
func sleb7(v int8) byte { return byte(v) & 0x7f }

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

// minimalModule builds: one type ()->i32, one function of that type,
// exported as "run", with a body returning an i32 constant.
func minimalModule(constByte byte) []byte {
	typeSec := section(1, []byte{
		0x01,       // 1 type
		0x60,       // func tag
		0x00,       // 0 params
		0x01, 0x7f, // 1 result: i32
	})
	funcSec := section(3, []byte{0x01, 0x00}) // 1 function, type index 0
	exportSec := section(7, []byte{
		0x01,                   // 1 export
		0x03, 'r', 'u', 'n',    // name "run"
		0x00, 0x00,             // kind func, index 0
	})
	body := []byte{0x00, 0x41, constByte, 0x0b} // 0 locals groups; i32.const N; end
	codeSec := section(10, append([]byte{0x01, byte(len(body))}, body...))

	var out []byte
	out = append(out, typeSec...)
	out = append(out, funcSec...)
	out = append(out, exportSec...)
	out = append(out, codeSec...)
	return header(out...)
}

func TestDecodeModule_Minimal(t *testing.T) {
	m, err := DecodeModule(bytes.NewReader(minimalModule(sleb7(42))))
	require.NoError(t, err)
	require.Len(t, m.Types, 1)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, m.Types[0].Results)
	require.Equal(t, 1, m.FunctionCount())
	require.Len(t, m.Exports, 1)
	require.Equal(t, "run", m.Exports[0].Name)
	require.Equal(t, wasm.ExternKindFunc, m.Exports[0].Kind)
}

func TestDecodeModule_InvalidMagic(t *testing.T) {
	bad := append([]byte{0x00, 0x61, 0x73, 0x00}, []byte{0x01, 0x00, 0x00, 0x00}...)
	_, err := DecodeModule(bytes.NewReader(bad))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid magic")
}

func TestDecodeModule_InvalidVersion(t *testing.T) {
	bad := []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}
	_, err := DecodeModule(bytes.NewReader(bad))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid version")
}

func TestDecodeModule_UnexpectedEOF(t *testing.T) {
	full := minimalModule(sleb7(42))
	_, err := DecodeModule(bytes.NewReader(full[:len(full)-3]))
	require.Error(t, err)
}

func TestDecodeModule_UnknownSection(t *testing.T) {
	bad := header(section(200, nil)...)
	_, err := DecodeModule(bytes.NewReader(bad))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown section")
}

func TestDecodeModule_SectionsOutOfOrder(t *testing.T) {
	typeSec := section(1, []byte{0x01, 0x60, 0x00, 0x00})
	funcSec := section(3, []byte{0x01, 0x00})
	// Function section before Type section is out of order.
	bad := header(append(funcSec, typeSec...)...)
	_, err := DecodeModule(bytes.NewReader(bad))
	require.Error(t, err)
}

func TestDecodeModule_MemoryAndData(t *testing.T) {
	typeSec := section(1, []byte{0x01, 0x60, 0x00, 0x00}) // ()->()
	funcSec := section(3, []byte{0x01, 0x00})
	memSec := section(5, []byte{0x01, 0x00, 0x01}) // 1 memory, min-only, min=1
	dataSec := section(11, []byte{
		0x01,             // 1 segment
		0x00,             // flag: active, mem 0
		0x41, 0x00, 0x0b, // i32.const 0, end
		0x03, 'a', 'b', 'c',
	})
	body := []byte{0x00, 0x0b} // empty body: 0 locals, end
	codeSec := section(10, append([]byte{0x01, byte(len(body))}, body...))

	var out []byte
	out = append(out, typeSec...)
	out = append(out, funcSec...)
	out = append(out, memSec...)
	out = append(out, codeSec...)
	out = append(out, dataSec...)

	m, err := DecodeModule(bytes.NewReader(header(out...)))
	require.NoError(t, err)
	require.Len(t, m.Memories, 1)
	require.Equal(t, uint32(1), m.Memories[0].Limits.Min)
	require.Nil(t, m.Memories[0].Limits.Max)
	require.Len(t, m.DataSegments, 1)
	require.Equal(t, []byte("abc"), m.DataSegments[0].Init)
	require.Equal(t, wasm.DataModeActiveMem0, m.DataSegments[0].Mode)
}
