package interpreter

import (
	"encoding/binary"

	"github.com/manhvn135/gowasm/internal/wasm"
)

// These methods back the public api.Module/api.Memory/api.Global surface
// (runtime.go): unlike the dispatch loop's own memory.go helpers, none of
// them trap — out-of-range access reports ok=false, matching spec.md §6's
// embedder-facing contract of returning rather than panicking.

// Wasm exposes the underlying compiled module, for signature/export lookups.
func (m *Module) Wasm() *wasm.Module { return m.m }

// Module returns the shared, compiled Module this Context was instantiated
// from, for export/signature lookups.
func (c *Context) Module() *Module { return c.mod }

// FunctionCount is the number of functions in the module.
func (c *Context) FunctionCount() int { return len(c.mod.funcs) }

// FuncType returns function idx's signature.
func (c *Context) FuncType(idx uint32) *wasm.FuncType { return c.mod.m.FuncType(idx) }

// HasMemory reports whether the module declares a memory.
func (c *Context) HasMemory() bool { return c.hasMemory }

// MemorySize returns the current memory size in bytes.
func (c *Context) MemorySize() uint32 { return uint32(len(c.memory)) }

// MemoryGrow grows memory by delta pages, returning the previous size in
// pages and whether the growth was accepted.
func (c *Context) MemoryGrow(delta uint32) (previousPages uint32, ok bool) {
	oldPages := uint32(len(c.memory) / wasm.PageSize)
	newPages := oldPages + delta
	if delta != 0 && (newPages < oldPages || newPages > c.memoryMax) {
		return oldPages, false
	}
	grown := make([]byte, uint64(newPages)*wasm.PageSize)
	copy(grown, c.memory)
	c.memory = grown
	return oldPages, true
}

func (c *Context) inMemoryBounds(offset, n uint32) bool {
	return uint64(offset)+uint64(n) <= uint64(len(c.memory))
}

func (c *Context) MemoryReadByte(offset uint32) (byte, bool) {
	if !c.inMemoryBounds(offset, 1) {
		return 0, false
	}
	return c.memory[offset], true
}

func (c *Context) MemoryReadUint32Le(offset uint32) (uint32, bool) {
	if !c.inMemoryBounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(c.memory[offset:]), true
}

func (c *Context) MemoryReadUint64Le(offset uint32) (uint64, bool) {
	if !c.inMemoryBounds(offset, 8) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(c.memory[offset:]), true
}

func (c *Context) MemoryRead(offset, byteCount uint32) ([]byte, bool) {
	if !c.inMemoryBounds(offset, byteCount) {
		return nil, false
	}
	return c.memory[offset : offset+byteCount], true
}

func (c *Context) MemoryWriteByte(offset uint32, v byte) bool {
	if !c.inMemoryBounds(offset, 1) {
		return false
	}
	c.memory[offset] = v
	return true
}

func (c *Context) MemoryWrite(offset uint32, v []byte) bool {
	if !c.inMemoryBounds(offset, uint32(len(v))) {
		return false
	}
	copy(c.memory[offset:], v)
	return true
}

// NumGlobals is the number of globals in the module.
func (c *Context) NumGlobals() int { return len(c.globals) }

// GlobalType returns global idx's declared type and mutability.
func (c *Context) GlobalType(idx uint32) wasm.Global { return c.mod.m.Globals[idx] }

func (c *Context) GlobalGet(idx uint32) uint64 { return c.globals[idx] }

func (c *Context) GlobalSet(idx uint32, v uint64) { c.globals[idx] = v }
