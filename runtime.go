// Package gowasm is the embeddable WebAssembly 1.0 interpreter's public
// surface: compile a binary module, instantiate it, and invoke its exports.
package gowasm

import (
	"bytes"
	"context"

	"github.com/manhvn135/gowasm/internal/compile"
	"github.com/manhvn135/gowasm/internal/interpreter"
	"github.com/manhvn135/gowasm/internal/wasm/binary"
)

// RuntimeConfig controls the resource limits every Context instantiated
// from this Runtime is bound by (spec.md §6's embedder configuration
// surface). The zero value is not usable; construct one with
// NewRuntimeConfig.
type RuntimeConfig struct {
	maxCallDepth       int
	valueStackCapacity int
	memoryMaxPages     uint32 // 0 means "use each module's own declared max".
}

// NewRuntimeConfig returns a RuntimeConfig with this runtime's defaults:
// 1024 call frames deep and a 65536-slot value stack, matching
// interpreter.DefaultConfig.
func NewRuntimeConfig() *RuntimeConfig {
	def := interpreter.DefaultConfig()
	return &RuntimeConfig{maxCallDepth: def.MaxCallDepth, valueStackCapacity: def.ValueStackCapacity}
}

// clone ensures all fields are copied even as zero values, so a builder
// chain never mutates a config another caller is still holding.
func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	return &ret
}

// WithMaxCallDepth overrides the call-stack depth at which a Context traps
// with KindCallStackOverflow.
func (c *RuntimeConfig) WithMaxCallDepth(n int) *RuntimeConfig {
	ret := c.clone()
	ret.maxCallDepth = n
	return ret
}

// WithValueStackCapacity overrides the operand-stack capacity at which a
// Context traps with KindCallStackOverflow.
func (c *RuntimeConfig) WithValueStackCapacity(n int) *RuntimeConfig {
	ret := c.clone()
	ret.valueStackCapacity = n
	return ret
}

// WithMemoryMaxPages caps every instantiated module's memory at n pages,
// overriding a module's own declared maximum if it is larger (or absent).
func (c *RuntimeConfig) WithMemoryMaxPages(n uint32) *RuntimeConfig {
	ret := c.clone()
	ret.memoryMaxPages = n
	return ret
}

// ModuleConfig names an instantiation. Unlike the teacher this runtime is
// modeled on, there are no imports, WASI, or filesystem concerns to
// configure (spec.md's Non-goals): the only knob is the module's name.
type ModuleConfig struct {
	name string
}

// NewModuleConfig returns an unnamed ModuleConfig.
func NewModuleConfig() *ModuleConfig {
	return &ModuleConfig{}
}

// WithName sets the name reported by api.Module.Name.
func (c *ModuleConfig) WithName(name string) *ModuleConfig {
	ret := *c
	ret.name = name
	return &ret
}

// Runtime compiles and instantiates modules under one shared RuntimeConfig.
type Runtime struct {
	cfg *RuntimeConfig
}

// NewRuntime returns a Runtime configured with NewRuntimeConfig's defaults.
func NewRuntime(ctx context.Context) *Runtime {
	return NewRuntimeWithConfig(ctx, NewRuntimeConfig())
}

// NewRuntimeWithConfig returns a Runtime bound by cfg.
func NewRuntimeWithConfig(ctx context.Context, cfg *RuntimeConfig) *Runtime {
	return &Runtime{cfg: cfg}
}

// CompiledModule is a parsed, validated, pre-decoded module ready to be
// instantiated any number of times (spec.md §5: "the Module is shared
// read-only").
type CompiledModule struct {
	mod *interpreter.Module
}

// CompileModule runs the full front end over source: binary decode (§4.B/
// §4.C), validation (§4.D), and pre-decoding (§4.E). A malformed or invalid
// module never produces a partially usable CompiledModule.
func (r *Runtime) CompileModule(ctx context.Context, source []byte) (*CompiledModule, error) {
	m, err := binary.DecodeModule(bytes.NewReader(source))
	if err != nil {
		return nil, classifyDecodeError(err)
	}
	mod, err := compile.Module(m)
	if err != nil {
		return nil, err
	}
	return &CompiledModule{mod: mod}, nil
}

// classifyDecodeError maps internal/wasm/binary's plain errors onto this
// runtime's closed ErrorKind taxonomy (§7) by the message prefix the
// decoder consistently uses for each failure class.
func classifyDecodeError(err error) error {
	msg := err.Error()
	kind := interpreter.KindValidationFailed
	switch {
	case hasPrefix(msg, "invalid magic") || hasPrefix(msg, "invalid version"):
		kind = interpreter.KindInvalidMagicOrVersion
	case hasPrefix(msg, "unexpected EOF"):
		kind = interpreter.KindUnexpectedEOF
	case hasPrefix(msg, "too large"):
		kind = interpreter.KindTooLarge
	case hasPrefix(msg, "unknown section"):
		kind = interpreter.KindUnknownSection
	}
	return &interpreter.Error{Kind: kind, Message: msg}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// InstantiateModule instantiates compiled into a fresh, independent Module:
// a new memory, globals, table, and call/value stacks, bound by r's
// RuntimeConfig (§5 Shared-resource policy). If the module declares a start
// function, it runs before this call returns; a trap during start fails
// instantiation entirely.
func (r *Runtime) InstantiateModule(ctx context.Context, compiled *CompiledModule, mCfg *ModuleConfig) (*Module, error) {
	if mCfg == nil {
		mCfg = NewModuleConfig()
	}
	icfg := interpreter.Config{
		MaxCallDepth:           r.cfg.maxCallDepth,
		ValueStackCapacity:     r.cfg.valueStackCapacity,
		MemoryMaxPagesOverride: r.cfg.memoryMaxPages,
	}
	c, err := interpreter.NewContext(compiled.mod, icfg)
	if err != nil {
		return nil, err
	}
	return newModule(mCfg.name, c), nil
}

// Close releases this Runtime. There is nothing to close: every resource
// this runtime allocates belongs to a Module, which owns its own Close.
func (r *Runtime) Close(ctx context.Context) error { return nil }
