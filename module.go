package gowasm

import (
	"context"
	"fmt"

	"github.com/manhvn135/gowasm/api"
	"github.com/manhvn135/gowasm/internal/interpreter"
	"github.com/manhvn135/gowasm/internal/wasm"
)

// Module is one instantiation of a CompiledModule: it owns its own memory,
// globals, table, and stacks (§5 Shared-resource policy), and implements
// api.Module.
type Module struct {
	name string
	ctx  *interpreter.Context

	exportedFuncs   map[string]uint32
	exportedMems    map[string]bool
	exportedGlobals map[string]uint32
}

var _ api.Module = (*Module)(nil)

func newModule(name string, c *interpreter.Context) *Module {
	m := &Module{
		name:            name,
		ctx:             c,
		exportedFuncs:   map[string]uint32{},
		exportedMems:    map[string]bool{},
		exportedGlobals: map[string]uint32{},
	}
	for _, e := range c.Module().Wasm().Exports {
		switch e.Kind {
		case wasm.ExternKindFunc:
			m.exportedFuncs[e.Name] = e.Index
		case wasm.ExternKindMemory:
			m.exportedMems[e.Name] = true
		case wasm.ExternKindGlobal:
			m.exportedGlobals[e.Name] = e.Index
		}
	}
	return m
}

func (m *Module) String() string { return fmt.Sprintf("Module[%s]", m.name) }

func (m *Module) Name() string { return m.name }

func (m *Module) Memory() api.Memory {
	if !m.ctx.HasMemory() {
		return nil
	}
	return (*memory)(m)
}

func (m *Module) ExportedFunction(name string) api.Function {
	idx, ok := m.exportedFuncs[name]
	if !ok {
		return nil
	}
	return &function{m: m, index: idx, name: name}
}

func (m *Module) ExportedMemory(name string) api.Memory {
	if !m.exportedMems[name] {
		return nil
	}
	return m.Memory()
}

func (m *Module) ExportedGlobal(name string) api.Global {
	idx, ok := m.exportedGlobals[name]
	if !ok {
		return nil
	}
	return &global{m: m, index: idx}
}

// Close does nothing and returns nil: this module's memory, globals, table,
// and stacks are ordinary Go values reclaimed by the garbage collector once
// the Module is unreferenced, and this runtime performs no I/O.
func (m *Module) Close(ctx context.Context) error { return nil }

// function adapts one exported function index to api.Function.
type function struct {
	m     *Module
	index uint32
	name  string
}

var _ api.Function = (*function)(nil)

func (f *function) Definition() api.FunctionDefinition { return (*funcDefinition)(f) }

func (f *function) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.m.ctx.Invoke(f.index, params)
}

type funcDefinition function

func (f *funcDefinition) Index() uint32 { return f.index }

func (f *funcDefinition) DebugName() string {
	if f.name != "" {
		return f.name
	}
	return fmt.Sprintf("$%d", f.index)
}

func (f *funcDefinition) ExportNames() []string {
	var names []string
	for name, idx := range f.m.exportedFuncs {
		if idx == f.index {
			names = append(names, name)
		}
	}
	return names
}

func (f *funcDefinition) ParamTypes() []api.ValueType {
	return convertValueTypes(f.m.ctx.FuncType(f.index).Params)
}

func (f *funcDefinition) ResultTypes() []api.ValueType {
	return convertValueTypes(f.m.ctx.FuncType(f.index).Results)
}

// convertValueTypes adapts internal/wasm.ValueType (a distinct named byte
// type) to the public api.ValueType alias: the two share an underlying
// type but are not slice-convertible directly.
func convertValueTypes(in []wasm.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(in))
	for i, t := range in {
		out[i] = api.ValueType(t)
	}
	return out
}

// global adapts one global index to api.Global/api.MutableGlobal.
type global struct {
	m     *Module
	index uint32
}

var _ api.MutableGlobal = (*global)(nil)

func (g *global) String() string {
	return fmt.Sprintf("Global(%s)", api.ValueTypeName(g.Type()))
}

func (g *global) Type() api.ValueType { return api.ValueType(g.m.ctx.GlobalType(g.index).Type) }
func (g *global) Get(ctx context.Context) uint64 { return g.m.ctx.GlobalGet(g.index) }
func (g *global) Set(ctx context.Context, v uint64) { g.m.ctx.GlobalSet(g.index, v) }

// memory adapts a Module's sole memory to api.Memory. It is a *Module alias
// rather than a separate allocation since a module has at most one memory.
type memory Module

var _ api.Memory = (*memory)(nil)

func (mem *memory) Size(ctx context.Context) uint32 { return (*Module)(mem).ctx.MemorySize() }

func (mem *memory) Grow(ctx context.Context, deltaPages uint32) (uint32, bool) {
	return (*Module)(mem).ctx.MemoryGrow(deltaPages)
}

func (mem *memory) ReadByte(ctx context.Context, offset uint32) (byte, bool) {
	return (*Module)(mem).ctx.MemoryReadByte(offset)
}

func (mem *memory) ReadUint32Le(ctx context.Context, offset uint32) (uint32, bool) {
	return (*Module)(mem).ctx.MemoryReadUint32Le(offset)
}

func (mem *memory) ReadUint64Le(ctx context.Context, offset uint32) (uint64, bool) {
	return (*Module)(mem).ctx.MemoryReadUint64Le(offset)
}

func (mem *memory) Read(ctx context.Context, offset, byteCount uint32) ([]byte, bool) {
	return (*Module)(mem).ctx.MemoryRead(offset, byteCount)
}

func (mem *memory) WriteByte(ctx context.Context, offset uint32, v byte) bool {
	return (*Module)(mem).ctx.MemoryWriteByte(offset, v)
}

func (mem *memory) Write(ctx context.Context, offset uint32, v []byte) bool {
	return (*Module)(mem).ctx.MemoryWrite(offset, v)
}
