// Package binary decodes the WebAssembly binary module format into the
// internal/wasm intermediate representation.
package binary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/manhvn135/gowasm/internal/leb128"
	"github.com/manhvn135/gowasm/internal/wasm"
)

var magic = [4]byte{0x00, 0x61, 0x73, 0x6d} // "\0asm"

const version = uint32(1)

// sectionID names the wire-format section ids (§4.B).
type sectionID byte

const (
	sectionCustom    sectionID = 0
	sectionType      sectionID = 1
	sectionImport    sectionID = 2
	sectionFunction  sectionID = 3
	sectionTable     sectionID = 4
	sectionMemory    sectionID = 5
	sectionGlobal    sectionID = 6
	sectionExport    sectionID = 7
	sectionStart     sectionID = 8
	sectionElement   sectionID = 9
	sectionCode      sectionID = 10
	sectionData      sectionID = 11
	sectionDataCount sectionID = 12
)

// sectionOrder is the fixed logical order non-custom sections must appear
// in (§3, §4.B). Note DataCount (12) logically precedes Code (10) despite
// its higher numeric id.
var sectionOrder = []sectionID{
	sectionType, sectionImport, sectionFunction, sectionTable, sectionMemory,
	sectionGlobal, sectionExport, sectionStart, sectionElement,
	sectionDataCount, sectionCode, sectionData,
}

func sectionRank(id sectionID) int {
	for i, s := range sectionOrder {
		if s == id {
			return i
		}
	}
	return -1
}

// DecodeModule parses a complete binary module, running the structural
// parser (§4.B) and per-section parsers (§4.C). It does not run the
// validator (§4.D) or the pre-decoder (§4.E); callers compose those
// separately (internal/validate, internal/compile) so this package has no
// dependency on either.
func DecodeModule(input io.Reader) (*wasm.Module, error) {
	r := bufio.NewReader(input)
	br := io.ByteReader(r)

	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("invalid magic: %w", err)
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return nil, fmt.Errorf("invalid magic number")
	}
	if binary.LittleEndian.Uint32(hdr[4:]) != version {
		return nil, fmt.Errorf("invalid version")
	}

	m := &wasm.Module{}
	lastRank := -1
	var functionTypeIdxFromFuncSection []uint32
	var sawCode bool

	for {
		id, err := br.ReadByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("unexpected EOF reading section id: %w", err)
		}

		size, _, err := leb128.DecodeUint32(br)
		if err != nil {
			return nil, fmt.Errorf("too large: section size: %w", err)
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("unexpected EOF reading section body: %w", err)
		}

		sid := sectionID(id)
		if sid == sectionCustom {
			continue // parsed-past, never materialized (§4.C).
		}
		if sid > sectionDataCount {
			return nil, fmt.Errorf("unknown section id %d", id)
		}

		rank := sectionRank(sid)
		if rank <= lastRank {
			return nil, fmt.Errorf("validation failed: section %d out of order", id)
		}
		lastRank = rank

		sr := bytes.NewReader(body)
		switch sid {
		case sectionType:
			if err := decodeTypeSection(sr, m); err != nil {
				return nil, err
			}
		case sectionImport:
			// Parsed-past: no import is materialized in this profile (§1 Non-goals).
		case sectionFunction:
			idxs, err := decodeFunctionSection(sr, m)
			if err != nil {
				return nil, err
			}
			functionTypeIdxFromFuncSection = idxs
			m.FunctionTypeIndices = idxs
		case sectionTable:
			if err := decodeTableSection(sr, m); err != nil {
				return nil, err
			}
		case sectionMemory:
			if err := decodeMemorySection(sr, m); err != nil {
				return nil, err
			}
		case sectionGlobal:
			if err := decodeGlobalSection(sr, m); err != nil {
				return nil, err
			}
		case sectionExport:
			if err := decodeExportSection(sr, m); err != nil {
				return nil, err
			}
		case sectionStart:
			idx, _, err := leb128.DecodeUint32(sr)
			if err != nil {
				return nil, fmt.Errorf("unexpected EOF decoding start section: %w", err)
			}
			m.StartFuncIndex = &idx
		case sectionElement:
			if err := decodeElementSection(sr, m); err != nil {
				return nil, err
			}
		case sectionDataCount:
			n, _, err := leb128.DecodeUint32(sr)
			if err != nil {
				return nil, fmt.Errorf("unexpected EOF decoding data count section: %w", err)
			}
			m.DataCountDeclared = &n
		case sectionCode:
			if err := decodeCodeSection(sr, m); err != nil {
				return nil, err
			}
			sawCode = true
		case sectionData:
			if err := decodeDataSection(sr, m); err != nil {
				return nil, err
			}
		}

		if sr.Len() != 0 {
			return nil, fmt.Errorf("validation failed: section %d did not consume its declared size", id)
		}
	}

	if !sawCode && len(functionTypeIdxFromFuncSection) > 0 {
		return nil, fmt.Errorf("validation failed: function section present without code section")
	}
	if len(m.FunctionTypeIndices) != len(m.CodeBodies) {
		return nil, fmt.Errorf("validation failed: function_count (%d) != code_count (%d)",
			len(m.FunctionTypeIndices), len(m.CodeBodies))
	}
	for _, ti := range m.FunctionTypeIndices {
		if int(ti) >= len(m.Types) {
			return nil, fmt.Errorf("validation failed: function type index %d out of range", ti)
		}
	}
	if m.DataCountDeclared != nil && int(*m.DataCountDeclared) != len(m.DataSegments) {
		return nil, fmt.Errorf("validation failed: data count section (%d) != data segment count (%d)",
			*m.DataCountDeclared, len(m.DataSegments))
	}
	for _, exp := range m.Exports {
		if err := checkExportRange(m, exp); err != nil {
			return nil, err
		}
	}
	for _, es := range m.ElementSegments {
		if int(es.TableIndex) >= len(m.Tables) {
			return nil, fmt.Errorf("validation failed: element segment table index %d out of range", es.TableIndex)
		}
		t := m.Tables[es.TableIndex]
		if uint64(es.OffsetExpr.Value)+uint64(len(es.FuncIndices)) > uint64(t.Limits.Min) {
			return nil, fmt.Errorf("validation failed: element segment exceeds table minimum size")
		}
	}

	return m, nil
}

func checkExportRange(m *wasm.Module, e wasm.Export) error {
	switch e.Kind {
	case wasm.ExternKindFunc:
		if int(e.Index) >= m.FunctionCount() {
			return fmt.Errorf("validation failed: export %q references out-of-range function %d", e.Name, e.Index)
		}
	case wasm.ExternKindTable:
		if int(e.Index) >= len(m.Tables) {
			return fmt.Errorf("validation failed: export %q references out-of-range table %d", e.Name, e.Index)
		}
	case wasm.ExternKindMemory:
		if int(e.Index) >= len(m.Memories) {
			return fmt.Errorf("validation failed: export %q references out-of-range memory %d", e.Name, e.Index)
		}
	case wasm.ExternKindGlobal:
		if int(e.Index) >= len(m.Globals) {
			return fmt.Errorf("validation failed: export %q references out-of-range global %d", e.Name, e.Index)
		}
	default:
		return fmt.Errorf("validation failed: export %q has unknown kind %d", e.Name, e.Kind)
	}
	return nil
}

func decodeTypeSection(r *bytes.Reader, m *wasm.Module) error {
	count, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: type section count: %w", err)
	}
	m.Types = make([]wasm.FuncType, count)
	for i := range m.Types {
		tag, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("unexpected EOF reading type tag: %w", err)
		}
		if tag != 0x60 {
			return fmt.Errorf("validation failed: expected func type tag 0x60, got %#x", tag)
		}
		params, err := decodeValTypeVec(r)
		if err != nil {
			return err
		}
		results, err := decodeValTypeVec(r)
		if err != nil {
			return err
		}
		if len(results) > 1 {
			return fmt.Errorf("validation failed: function type declares %d results, max 1 supported", len(results))
		}
		m.Types[i] = wasm.FuncType{Params: params, Results: results}
	}
	return nil
}

func decodeValTypeVec(r *bytes.Reader) ([]wasm.ValueType, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("too large: value type vector count: %w", err)
	}
	out := make([]wasm.ValueType, n)
	for i := range out {
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("unexpected EOF reading value type: %w", err)
		}
		vt := wasm.ValueType(b)
		if !vt.IsNumeric() && vt != wasm.ValueTypeV128 && vt != wasm.ValueTypeFuncref {
			return nil, fmt.Errorf("validation failed: invalid value type %#x", b)
		}
		out[i] = vt
	}
	return out, nil
}

func decodeFunctionSection(r *bytes.Reader, m *wasm.Module) ([]uint32, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("too large: function section count: %w", err)
	}
	out := make([]uint32, n)
	for i := range out {
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("unexpected EOF reading function type index: %w", err)
		}
		out[i] = idx
	}
	return out, nil
}

func decodeLimits(r *bytes.Reader) (wasm.Limits, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return wasm.Limits{}, fmt.Errorf("unexpected EOF reading limits flag: %w", err)
	}
	min, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return wasm.Limits{}, fmt.Errorf("unexpected EOF reading limits min: %w", err)
	}
	l := wasm.Limits{Min: min}
	if flag == 0x01 {
		max, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return wasm.Limits{}, fmt.Errorf("unexpected EOF reading limits max: %w", err)
		}
		l.Max = &max
	} else if flag != 0x00 {
		return wasm.Limits{}, fmt.Errorf("validation failed: invalid limits flag %#x", flag)
	}
	return l, nil
}

func decodeTableSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: table section count: %w", err)
	}
	m.Tables = make([]wasm.Table, n)
	for i := range m.Tables {
		elemType, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("unexpected EOF reading table element type: %w", err)
		}
		if wasm.ValueType(elemType) != wasm.ValueTypeFuncref {
			return fmt.Errorf("validation failed: table element type must be funcref, got %#x", elemType)
		}
		limits, err := decodeLimits(r)
		if err != nil {
			return err
		}
		m.Tables[i] = wasm.Table{Limits: limits}
	}
	return nil
}

func decodeMemorySection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: memory section count: %w", err)
	}
	if n > 1 {
		return fmt.Errorf("validation failed: at most one memory is supported, got %d", n)
	}
	m.Memories = make([]wasm.Memory, n)
	for i := range m.Memories {
		limits, err := decodeLimits(r)
		if err != nil {
			return err
		}
		m.Memories[i] = wasm.Memory{Limits: limits}
	}
	return nil
}

// decodeConstExpr parses a single-instruction constant expression followed
// by `end`, as required for globals, and active data/element offsets
// (§4.C).
func decodeConstExpr(r *bytes.Reader) (wasm.ConstExpr, error) {
	op, err := r.ReadByte()
	if err != nil {
		return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading const expr opcode: %w", err)
	}
	var ce wasm.ConstExpr
	switch wasm.Opcode(op) {
	case wasm.OpcodeI32Const:
		v, _, err := leb128.DecodeInt32(r)
		if err != nil {
			return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading i32.const: %w", err)
		}
		ce = wasm.ConstExpr{Type: wasm.ValueTypeI32, Value: uint64(uint32(v))}
	case wasm.OpcodeI64Const:
		v, _, err := leb128.DecodeInt64(r)
		if err != nil {
			return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading i64.const: %w", err)
		}
		ce = wasm.ConstExpr{Type: wasm.ValueTypeI64, Value: uint64(v)}
	case wasm.OpcodeF32Const:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading f32.const: %w", err)
		}
		ce = wasm.ConstExpr{Type: wasm.ValueTypeF32, Value: uint64(binary.LittleEndian.Uint32(buf[:]))}
	case wasm.OpcodeF64Const:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading f64.const: %w", err)
		}
		ce = wasm.ConstExpr{Type: wasm.ValueTypeF64, Value: binary.LittleEndian.Uint64(buf[:])}
	default:
		return wasm.ConstExpr{}, fmt.Errorf("validation failed: invalid constant expression opcode %#x", op)
	}
	end, err := r.ReadByte()
	if err != nil {
		return wasm.ConstExpr{}, fmt.Errorf("unexpected EOF reading const expr terminator: %w", err)
	}
	if wasm.Opcode(end) != wasm.OpcodeEnd {
		return wasm.ConstExpr{}, fmt.Errorf("validation failed: constant expression must contain exactly one instruction")
	}
	return ce, nil
}

func decodeGlobalSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: global section count: %w", err)
	}
	m.Globals = make([]wasm.Global, n)
	for i := range m.Globals {
		vt, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("unexpected EOF reading global type: %w", err)
		}
		mutByte, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("unexpected EOF reading global mutability: %w", err)
		}
		if mutByte > 1 {
			return fmt.Errorf("validation failed: invalid global mutability flag %#x", mutByte)
		}
		ce, err := decodeConstExpr(r)
		if err != nil {
			return err
		}
		if ce.Type != wasm.ValueType(vt) {
			return fmt.Errorf("validation failed: global initializer type %s does not match declared type %s",
				ce.Type, wasm.ValueType(vt))
		}
		m.Globals[i] = wasm.Global{Type: wasm.ValueType(vt), Mutable: mutByte == 1, Init: ce.Value}
	}
	return nil
}

func decodeName(r *bytes.Reader) (string, error) {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return "", fmt.Errorf("too large: name length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("unexpected EOF reading name: %w", err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("validation failed: name is not valid UTF-8")
	}
	return string(buf), nil
}

func decodeExportSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: export section count: %w", err)
	}
	m.Exports = make([]wasm.Export, n)
	seen := make(map[string]bool, n)
	for i := range m.Exports {
		name, err := decodeName(r)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("validation failed: duplicate export name %q", name)
		}
		seen[name] = true
		kind, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("unexpected EOF reading export kind: %w", err)
		}
		if kind > 3 {
			return fmt.Errorf("validation failed: invalid export kind %#x", kind)
		}
		idx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("unexpected EOF reading export index: %w", err)
		}
		m.Exports[i] = wasm.Export{Name: name, Kind: wasm.ExternKind(kind), Index: idx}
	}
	return nil
}

func decodeElementSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: element section count: %w", err)
	}
	m.ElementSegments = make([]wasm.ElementSegment, n)
	for i := range m.ElementSegments {
		tableIdx, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("unexpected EOF reading element table index: %w", err)
		}
		if tableIdx != 0 {
			return fmt.Errorf("validation failed: only table 0 is supported for element segments")
		}
		ce, err := decodeConstExpr(r)
		if err != nil {
			return err
		}
		if ce.Type != wasm.ValueTypeI32 {
			return fmt.Errorf("validation failed: element segment offset must be i32.const")
		}
		count, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("too large: element segment function count: %w", err)
		}
		funcs := make([]uint32, count)
		for j := range funcs {
			idx, _, err := leb128.DecodeUint32(r)
			if err != nil {
				return fmt.Errorf("unexpected EOF reading element function index: %w", err)
			}
			funcs[j] = idx
		}
		m.ElementSegments[i] = wasm.ElementSegment{TableIndex: tableIdx, OffsetExpr: ce, FuncIndices: funcs}
	}
	return nil
}

func decodeCodeSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: code section count: %w", err)
	}
	m.CodeBodies = make([]wasm.CodeBody, n)
	for i := range m.CodeBodies {
		size, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("too large: function body size: %w", err)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("unexpected EOF reading function body: %w", err)
		}
		cb, err := decodeCodeBody(body)
		if err != nil {
			return err
		}
		m.CodeBodies[i] = cb
	}
	return nil
}

func decodeCodeBody(body []byte) (wasm.CodeBody, error) {
	br := bytes.NewReader(body)
	groupCount, _, err := leb128.DecodeUint32(br)
	if err != nil {
		return wasm.CodeBody{}, fmt.Errorf("too large: locals group count: %w", err)
	}
	var locals []wasm.ValueType
	for i := uint32(0); i < groupCount; i++ {
		cnt, _, err := leb128.DecodeUint32(br)
		if err != nil {
			return wasm.CodeBody{}, fmt.Errorf("too large: locals group size: %w", err)
		}
		vt, err := br.ReadByte()
		if err != nil {
			return wasm.CodeBody{}, fmt.Errorf("unexpected EOF reading local type: %w", err)
		}
		for j := uint32(0); j < cnt; j++ {
			locals = append(locals, wasm.ValueType(vt))
		}
	}
	rest := body[len(body)-br.Len():]
	return wasm.CodeBody{Locals: locals, Body: rest}, nil
}

func decodeDataSection(r *bytes.Reader, m *wasm.Module) error {
	n, _, err := leb128.DecodeUint32(r)
	if err != nil {
		return fmt.Errorf("too large: data section count: %w", err)
	}
	m.DataSegments = make([]wasm.DataSegment, n)
	for i := range m.DataSegments {
		flag, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("unexpected EOF reading data segment flag: %w", err)
		}
		var ds wasm.DataSegment
		switch flag {
		case 0x00:
			ce, err := decodeConstExpr(r)
			if err != nil {
				return err
			}
			ds.Mode, ds.OffsetExpr = wasm.DataModeActiveMem0, ce
		case 0x01:
			ds.Mode = wasm.DataModePassive
		case 0x02:
			idx, _, err := leb128.DecodeUint32(r)
			if err != nil {
				return fmt.Errorf("unexpected EOF reading data segment memory index: %w", err)
			}
			ce, err := decodeConstExpr(r)
			if err != nil {
				return err
			}
			ds.Mode, ds.MemoryIndex, ds.OffsetExpr = wasm.DataModeActiveMemIdx, idx, ce
		default:
			return fmt.Errorf("validation failed: invalid data segment flag %d", flag)
		}
		size, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return fmt.Errorf("too large: data segment size: %w", err)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("unexpected EOF reading data segment bytes: %w", err)
		}
		ds.Init = buf
		m.DataSegments[i] = ds
	}
	return nil
}
