// Package wasm holds the module intermediate representation produced by the
// binary decoder (internal/wasm/binary) and consumed by the validator and
// the rest of the runtime: the typed, structurally-checked in-memory form of
// a WebAssembly 1.0 core module plus the SIMD and non-trap bulk-memory
// extensions.
package wasm

import "fmt"

// ValueType is a WebAssembly value type, encoded exactly as its wire-format
// byte so decoding never needs a translation table.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#binary-valtype
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
	ValueTypeV128 ValueType = 0x7b
	ValueTypeFuncref ValueType = 0x70

	// ValueTypeAny exists only inside the validator's abstract stack: it
	// unifies with any concrete type while a branch is unreachable. It is
	// never produced by the decoder and never observed by the interpreter.
	ValueTypeAny ValueType = 0x00
)

// String renders the type the way the WebAssembly text format spells it,
// which is what validation error messages quote.
func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeAny:
		return "any"
	default:
		return fmt.Sprintf("unknown(%#x)", byte(v))
	}
}

// IsNumeric reports whether v is one of the four scalar numeric types (i.e.
// excludes v128, funcref, and the validator-internal any).
func (v ValueType) IsNumeric() bool {
	switch v {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return true
	default:
		return false
	}
}

// FuncType is an ordered parameter list and an ordered result list. This
// profile caps result arity at one: the binary decoder rejects any type
// with more than one result, so neither functions nor block types that
// name a type index can have multiple results.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// EqualsSignature does a full structural comparison, used by call_indirect's
// runtime type check (§4.D, §9: "a full structural compare rather than an
// index compare").
func (t *FuncType) EqualsSignature(params, results []ValueType) bool {
	if len(t.Params) != len(params) || len(t.Results) != len(results) {
		return false
	}
	for i, p := range t.Params {
		if p != params[i] {
			return false
		}
	}
	for i, r := range t.Results {
		if r != results[i] {
			return false
		}
	}
	return true
}

func (t *FuncType) String() string {
	return fmt.Sprintf("%v->%v", t.Params, t.Results)
}

// ExternKind classifies an export (or, were imports supported, an import).
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#binary-importdesc
type ExternKind byte

const (
	ExternKindFunc ExternKind = iota
	ExternKindTable
	ExternKindMemory
	ExternKindGlobal
)

func (k ExternKind) String() string {
	switch k {
	case ExternKindFunc:
		return "func"
	case ExternKindTable:
		return "table"
	case ExternKindMemory:
		return "memory"
	case ExternKindGlobal:
		return "global"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// Limits is the shared min/max encoding used by both table and memory
// sections.
type Limits struct {
	Min uint32
	Max *uint32 // nil when the limits flag selected min-only.
}

// Global is a module-level global: its declared type, mutability, and the
// single-instruction constant expression that produced its initial value.
type Global struct {
	Type    ValueType
	Mutable bool
	Init    uint64 // raw bit pattern; i32/f32 use the low 32 bits.
}

// Table holds the limits of a funcref table. Element type is always funcref
// in this profile (§1 Non-goals: reference types beyond funcref).
type Table struct {
	Limits Limits
}

// Memory holds the limits of linear memory, expressed in 64KiB pages. At
// most one memory exists in a well-formed module (§3 invariant).
type Memory struct {
	Limits Limits
}

// PageSize is the size in bytes of one unit of linear memory growth.
const PageSize = 65536

// MaxPages is the hard ceiling the 32-bit memory.grow/memory.size addressing
// scheme allows.
const MaxPages = 65536

// DataMode classifies a data segment.
type DataMode byte

const (
	// DataModeActiveMem0 is written into memory 0 at instantiation time.
	DataModeActiveMem0 DataMode = iota
	// DataModePassive is only written via memory.init.
	DataModePassive
	// DataModeActiveMemIdx is like ActiveMem0 but names its memory index
	// explicitly; since this profile allows at most one memory, the index
	// is always 0, but the encoding is distinct on the wire.
	DataModeActiveMemIdx
)

// DataSegment is one entry of the Data section.
type DataSegment struct {
	Mode        DataMode
	MemoryIndex uint32
	OffsetExpr  ConstExpr // only meaningful for active modes.
	Init        []byte
}

// ElementSegment is one entry of the Element section. Only active,
// table-0-or-explicit, funcref segments are supported (§4.C: "only table 0;
// only an i32.const offset").
type ElementSegment struct {
	TableIndex uint32
	OffsetExpr ConstExpr
	// FuncIndices are the ordered function indices placed into the table
	// starting at the resolved offset.
	FuncIndices []uint32
}

// ConstExpr is a validated single-instruction constant initializer: exactly
// one of i32.const/i64.const/f32.const/f64.const, as required for globals,
// active data offsets, and active element offsets (§4.C).
type ConstExpr struct {
	Type ValueType
	// Value holds the raw bit pattern (i32/f32 in the low bits).
	Value uint64
}

// Export is one entry of the Export section. Names are validated unique and
// valid UTF-8 by the decoder; indices are validated in range by
// binary.DecodeModule (§3 invariants).
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// CodeBody is one function body: its declared locals (flattened to one
// ValueType per local, matching how the interpreter indexes them) and the
// raw instruction bytes as they appeared on the wire. The pre-decoded
// bytecode (internal/ircode.Function) is kept out of this struct to avoid a
// package cycle (internal/ircode depends on internal/wasm for FuncType
// lookups); internal/compile.Module pairs each CodeBody with its
// ircode.Function by index.
type CodeBody struct {
	Locals []ValueType
	Body   []byte
}

// Module is the immutable, decoded representation of a parsed binary;
// function bodies are validated and pre-decoded later by internal/compile.
// Once binary.DecodeModule returns a *Module successfully, no further
// mutation occurs in its lifetime (§3 Lifecycles).
type Module struct {
	Types []FuncType

	// FunctionTypeIndices[i] is the index into Types for function i (all
	// functions: imports are not materialized in this profile, so every
	// function here is locally defined).
	FunctionTypeIndices []uint32
	CodeBodies          []CodeBody

	Globals []Global
	Memories []Memory
	Tables   []Table

	ElementSegments []ElementSegment
	DataSegments    []DataSegment

	Exports []Export

	// StartFuncIndex is nil when the module declares no start function.
	StartFuncIndex *uint32

	// DataCountDeclared is non-nil when a DataCount section was present; its
	// value must equal len(DataSegments) (§3 invariant).
	DataCountDeclared *uint32
}

// FuncType returns the signature of function index idx.
func (m *Module) FuncType(idx uint32) *FuncType {
	return &m.Types[m.FunctionTypeIndices[idx]]
}

// FunctionCount is the number of (locally defined) functions, equal to both
// len(FunctionTypeIndices) and len(CodeBodies) once binary.DecodeModule has
// accepted the module (§3 invariant: function_count == code_count).
func (m *Module) FunctionCount() int {
	return len(m.FunctionTypeIndices)
}

// ExportByName looks up an export by its exact name, or reports !ok (§7:
// "Not found").
func (m *Module) ExportByName(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
