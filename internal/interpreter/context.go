package interpreter

import (
	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/wasm"
)

const tableNull = ^uint32(0)

// Module is the immutable, shared-read-only compiled form of a parsed wasm
// module: its function signatures and every function's pre-decoded
// ircode.Function (§5 Shared-resource policy: "the Module is shared
// read-only"). Many Contexts may be constructed from one Module and run
// concurrently on different goroutines.
type Module struct {
	m     *wasm.Module
	funcs []*ircode.Function
}

// NewModule pairs a validated wasm.Module with its parallel pre-decoded
// functions (produced by internal/compile) into the shared, instantiable
// unit the rest of the runtime executes against.
func NewModule(m *wasm.Module, funcs []*ircode.Function) *Module {
	return &Module{m: m, funcs: funcs}
}

// Config bounds a Context's resource usage, overridable per spec.md's
// embedder configuration surface.
type Config struct {
	MaxCallDepth       int
	ValueStackCapacity int

	// MemoryMaxPagesOverride, when non-zero, caps every instantiated
	// module's memory at this many pages regardless of its own declared
	// maximum (or absence of one).
	MemoryMaxPagesOverride uint32
}

// DefaultConfig matches spec.md §6's stated process-wide defaults.
func DefaultConfig() Config {
	return Config{MaxCallDepth: 1024, ValueStackCapacity: 65536}
}

// Context is one independent instantiation: it exclusively owns its value
// stack, call-frame stack, globals, memory, and table over a shared,
// read-only Module (§5 Shared-resource policy). A Context must not be used
// from more than one goroutine at a time.
type Context struct {
	mod *Module
	cfg Config

	stack  []uint64
	frames []frame

	memory    []byte
	memoryMax uint32 // in pages; always set, capped by wasm.MaxPages.
	hasMemory bool

	globals []uint64

	table    []uint32 // tableNull marks an empty slot.
	hasTable bool

	// dataSegments[i] is nil once dropped (data.drop) or never passive.
	dataSegments [][]byte
}

type frame struct {
	fn        *ircode.Function
	funcIndex uint32
	pc        int
	// localsBase is the index into ctx.stack where this frame's locals
	// begin (params reused in place, per spec.md §4.F).
	localsBase int
}

// NewContext constructs and instantiates a fresh execution context from mod:
// it allocates memory/globals/table, applies active element and data
// segments, and runs the start function if one is declared, rolling back
// (returning an error, discarding the partially built context) if anything
// traps during start (§4.G).
func NewContext(mod *Module, cfg Config) (*Context, error) {
	if cfg.MaxCallDepth <= 0 || cfg.ValueStackCapacity <= 0 {
		cfg = DefaultConfig()
	}
	c := &Context{mod: mod, cfg: cfg, stack: make([]uint64, 0, cfg.ValueStackCapacity)}
	m := mod.m

	if len(m.Memories) > 0 {
		mem := m.Memories[0]
		c.hasMemory = true
		c.memory = make([]byte, uint64(mem.Limits.Min)*wasm.PageSize)
		if mem.Limits.Max != nil {
			c.memoryMax = *mem.Limits.Max
		} else {
			c.memoryMax = wasm.MaxPages
		}
		if cfg.MemoryMaxPagesOverride != 0 && cfg.MemoryMaxPagesOverride < c.memoryMax {
			c.memoryMax = cfg.MemoryMaxPagesOverride
		}
	}

	c.globals = make([]uint64, len(m.Globals))
	for i, g := range m.Globals {
		c.globals[i] = g.Init
	}

	if len(m.Tables) > 0 {
		c.hasTable = true
		c.table = make([]uint32, m.Tables[0].Limits.Min)
		for i := range c.table {
			c.table[i] = tableNull
		}
	}
	for _, seg := range m.ElementSegments {
		offset := uint32(seg.OffsetExpr.Value)
		for i, fn := range seg.FuncIndices {
			idx := offset + uint32(i)
			if int(idx) >= len(c.table) {
				return nil, &Error{Kind: KindValidationFailed, Message: "element segment out of table bounds"}
			}
			c.table[idx] = fn
		}
	}

	c.dataSegments = make([][]byte, len(m.DataSegments))
	for i, d := range m.DataSegments {
		if d.Mode == wasm.DataModePassive {
			c.dataSegments[i] = d.Init
		} else {
			offset := uint32(d.OffsetExpr.Value)
			if err := c.writeMemoryChecked(offset, d.Init); err != nil {
				return nil, err
			}
		}
	}

	if m.StartFuncIndex != nil {
		if _, err := c.Invoke(*m.StartFuncIndex, nil); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Context) writeMemoryChecked(offset uint32, data []byte) error {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(c.memory)) {
		return &Error{Kind: KindMemoryOutOfBounds, Message: "data segment out of memory bounds"}
	}
	copy(c.memory[offset:], data)
	return nil
}

// Invoke calls the function at funcIndex with params, given as raw 64-bit
// lanes (i32/f32 occupy the low bits), and returns its results the same
// way. Any trap raised during execution is recovered here and turned into
// a returned *Error carrying the unwound frame trace; the Context is left
// empty (stacks cleared) and safe to reuse for a subsequent Invoke.
func (c *Context) Invoke(funcIndex uint32, params []uint64) (results []uint64, err error) {
	if int(funcIndex) >= len(c.mod.funcs) {
		return nil, &Error{Kind: KindNotFound, Message: "function index out of range"}
	}
	sig := c.mod.m.FuncType(funcIndex)
	if len(params) != len(sig.Params) {
		return nil, &Error{Kind: KindAPIMisuse, Message: "parameter count mismatch"}
	}

	defer func() {
		if r := recover(); r != nil {
			ts, ok := r.(trapSignal)
			if !ok {
				panic(r)
			}
			for i := len(c.frames) - 1; i >= 0; i-- {
				ts.err.Frames = append(ts.err.Frames, FrameTrace{FuncIndex: c.frames[i].funcIndex})
			}
			c.frames = nil
			c.stack = c.stack[:0]
			err = ts.err
		}
	}()

	base := len(c.stack)
	c.stack = append(c.stack, params...)
	c.callFunction(funcIndex)

	out := append([]uint64(nil), c.stack[len(c.stack)-len(sig.Results):]...)
	c.stack = c.stack[:base]
	return out, nil
}
