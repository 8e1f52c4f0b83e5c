// Package validate implements the per-function structural and type
// validator: a single left-to-right pass over a raw instruction stream that
// maintains an abstract operand-type stack and a control-frame stack with
// polymorphic-unreachable tracking.
package validate

import (
	"bytes"
	"fmt"

	"github.com/manhvn135/gowasm/internal/leb128"
	"github.com/manhvn135/gowasm/internal/wasm"
)

const (
	maxAbstractStack = 1024
	maxControlFrames = 256
)

// blockType is a resolved block signature: parameters and results.
type blockType struct {
	params, results []wasm.ValueType
}

type frameKind byte

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

type controlFrame struct {
	kind        frameKind
	blockType   blockType
	stackHeight int // abstract stack height at frame entry, after popping params.
	unreachable bool
	elseSeen    bool
}

// FuncResult is what the validator hands back for a single function body:
// the high-water mark of the abstract stack and the per-branch keep/drop
// accounting.
type FuncResult struct {
	MaxStackDepth int

	// Branches carries one BranchInfo per br/br_if/br_table instruction, in
	// the exact order ircode.Compile's second pass will walk them, so it can
	// consume this slice in lockstep rather than re-deriving stack heights.
	Branches []BranchInfo
}

// BranchInfo is the keep/drop accounting for one branch instruction: the
// number of physical stack slots making up the target's result values
// (KeepSlots) and, for each possible target (one entry for br/br_if, n+1 for
// br_table), the number of physical slots sitting above the target's entry
// baseline that must be discarded before the kept values. Counts are in
// physical stack-slot units (slotWidth), not logical operand counts, since
// v128 occupies two uint64 slots on the runtime stack.
type BranchInfo struct {
	KeepSlots int
	DropSlots []int
}

// slotWidth is how many physical uint64 slots a value of this type occupies
// on the runtime operand stack.
func slotWidth(vt wasm.ValueType) int {
	if vt == wasm.ValueTypeV128 {
		return 2
	}
	return 1
}

// branchInfo computes the keep/drop slot counts for a branch to target,
// taken when the abstract stack has height h (measured after popping any
// condition/selector operand but before popping the branch's own result
// values). The drop region is whatever sits between the target's entry
// baseline and the top-k kept values; in unreachable/polymorphic code the
// abstract stack may already have collapsed to the target's baseline, in
// which case there is nothing real to drop.
func (v *validator) branchInfo(target *controlFrame, h int) (keepSlots, dropSlots int) {
	keepTypes := branchValueTypes(target)
	for _, t := range keepTypes {
		keepSlots += slotWidth(t)
	}
	dropStart := target.stackHeight
	dropEnd := h - len(keepTypes)
	if dropEnd < dropStart {
		dropEnd = dropStart
	}
	for i := dropStart; i < dropEnd; i++ {
		dropSlots += slotWidth(v.stack[i])
	}
	return keepSlots, dropSlots
}

// sameTypes reports whether a and b name the same value types in the same
// order.
func sameTypes(a, b []wasm.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Function validates one function body against the module it belongs to.
// idx is the function's index in the module's function index space (used
// only for error messages).
func Function(m *wasm.Module, idx uint32) (FuncResult, error) {
	sig := m.FuncType(idx)
	cb := m.CodeBodies[idx]
	locals := append(append([]wasm.ValueType{}, sig.Params...), cb.Locals...)

	v := &validator{
		m:            m,
		r:            bytes.NewReader(cb.Body),
		locals:       locals,
		funcResults:  sig.Results,
		maxStack:     0,
		funcIdx:      idx,
	}
	v.pushFrame(frameBlock, blockType{results: sig.Results})

	for {
		if v.r.Len() == 0 {
			return FuncResult{}, v.errf("missing function-terminating end")
		}
		done, err := v.step()
		if err != nil {
			return FuncResult{}, err
		}
		if done {
			break
		}
	}
	if v.r.Len() != 0 {
		return FuncResult{}, v.errf("trailing bytes after function-terminating end")
	}
	return FuncResult{MaxStackDepth: v.maxStack, Branches: v.branches}, nil
}

type validator struct {
	m           *wasm.Module
	r           *bytes.Reader
	locals      []wasm.ValueType
	funcResults []wasm.ValueType
	funcIdx     uint32

	stack    []wasm.ValueType
	frames   []*controlFrame
	maxStack int
	branches []BranchInfo
}

func (v *validator) errf(format string, args ...interface{}) error {
	return fmt.Errorf("validation failed: function %d: "+format, append([]interface{}{v.funcIdx}, args...)...)
}

func (v *validator) top() *controlFrame { return v.frames[len(v.frames)-1] }

func (v *validator) push(vt wasm.ValueType) {
	v.stack = append(v.stack, vt)
	if len(v.stack) > v.maxStack {
		v.maxStack = len(v.stack)
	}
}

func (v *validator) pop() (wasm.ValueType, error) {
	f := v.top()
	if len(v.stack) == f.stackHeight {
		if f.unreachable {
			return wasm.ValueTypeAny, nil
		}
		return 0, v.errf("operand stack underflow")
	}
	if len(v.stack) > maxAbstractStack {
		return 0, v.errf("operand stack exceeds limit")
	}
	vt := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return vt, nil
}

// popExpect pops one value and requires it unify with want (Any unifies
// with anything).
func (v *validator) popExpect(want wasm.ValueType) error {
	got, err := v.pop()
	if err != nil {
		return err
	}
	if got == wasm.ValueTypeAny || want == wasm.ValueTypeAny {
		return nil
	}
	if got != want {
		return v.errf("type mismatch: expected %s, got %s", want, got)
	}
	return nil
}

// pushFrame opens a new control frame. Callers must have already popped the
// block's parameters off the abstract stack before calling this.
func (v *validator) pushFrame(kind frameKind, bt blockType) {
	v.frames = append(v.frames, &controlFrame{kind: kind, blockType: bt, stackHeight: len(v.stack)})
}

func (v *validator) setUnreachable() { v.top().unreachable = true }

func (v *validator) readByte() (byte, error) {
	b, err := v.r.ReadByte()
	if err != nil {
		return 0, v.errf("unexpected EOF: %w", err)
	}
	return b, nil
}

func (v *validator) readU32() (uint32, error) {
	n, _, err := leb128.DecodeUint32(v.r)
	if err != nil {
		return 0, v.errf("too large: %w", err)
	}
	return n, nil
}

func (v *validator) readI32() (int32, error) {
	n, _, err := leb128.DecodeInt32(v.r)
	if err != nil {
		return 0, v.errf("too large: %w", err)
	}
	return n, nil
}

func (v *validator) readI64() (int64, error) {
	n, _, err := leb128.DecodeInt64(v.r)
	if err != nil {
		return 0, v.errf("too large: %w", err)
	}
	return n, nil
}

func (v *validator) readFixed(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := v.r.Read(buf); err != nil {
		return nil, v.errf("unexpected EOF: %w", err)
	}
	return buf, nil
}

// readBlockType decodes the signed-LEB128-encoded block type immediate:
// -0x40 is empty, one of six negative single-byte encodings names a value
// type directly, and any non-negative value is a type-section index. The
// binary decoder rejects every type with more than one result, so a block
// type resolved this way also has at most one result.
func (v *validator) readBlockType() (blockType, error) {
	raw, err := v.readI64()
	if err != nil {
		return blockType{}, err
	}
	if raw == -0x40 {
		return blockType{}, nil
	}
	if raw < 0 {
		vt := wasm.ValueType(raw + 0x80)
		return blockType{results: []wasm.ValueType{vt}}, nil
	}
	if int(raw) >= len(v.m.Types) {
		return blockType{}, v.errf("block type index %d out of range", raw)
	}
	ft := v.m.Types[raw]
	return blockType{params: ft.Params, results: ft.Results}, nil
}

// labelFrame returns the control frame `depth` levels up from the
// innermost (0 = innermost).
func (v *validator) labelFrame(depth uint32) (*controlFrame, error) {
	if int(depth) >= len(v.frames) {
		return nil, v.errf("branch depth %d out of range", depth)
	}
	return v.frames[len(v.frames)-1-int(depth)], nil
}

// branchValueTypes is the result type a branch to this frame must supply:
// a loop's branch target is re-entry, so it expects the loop's params; any
// other frame's branch target is its exit, so it expects the frame's
// results.
func branchValueTypes(f *controlFrame) []wasm.ValueType {
	if f.kind == frameLoop {
		return f.blockType.params
	}
	return f.blockType.results
}

func (v *validator) checkBranchTypes(types []wasm.ValueType, pop bool) error {
	// Check/pop in reverse (last declared type is topmost on the stack).
	saved := v.stack
	for i := len(types) - 1; i >= 0; i-- {
		if err := v.popExpect(types[i]); err != nil {
			return err
		}
	}
	if !pop {
		v.stack = saved
	}
	return nil
}

const (
	i32, i64, f32, f64, v128 = wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64, wasm.ValueTypeV128
)
