package ircode

import (
	"bytes"
	"fmt"

	"github.com/manhvn135/gowasm/internal/leb128"
	"github.com/manhvn135/gowasm/internal/validate"
	"github.com/manhvn135/gowasm/internal/wasm"
)

// frameKind mirrors internal/validate's but only needs to distinguish loop
// (whose label targets the loop header, resolved immediately) from
// block/if/function (whose label targets their end, resolved on backpatch).
type frameKind byte

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

// patchSite names one spot in the emitted Code slice that still needs a
// frame's label address: either an Op's A field (slot < 0) or one entry of
// a br_table Op's Targets slice (slot >= 0).
type patchSite struct {
	opIdx int
	slot  int
}

// pendingFrame tracks one open block/loop/if during compilation. patches
// holds every site whose jump target depends on this frame's label address,
// resolved once that address becomes known. For a loop the address is known
// immediately (the position right after the loop header), so patches is
// never used for frameLoop.
type pendingFrame struct {
	kind      frameKind
	label     int // resolved address, valid immediately for frameLoop.
	patches   []patchSite
	elseOpIdx int // index of the `else` Op once seen, else -1 (frameIf only).
}

type compiler struct {
	m      *wasm.Module
	r      *bytes.Reader
	locals []wasm.ValueType
	code   []Op
	frames []*pendingFrame

	// branches is validate.FuncResult's per-branch keep/drop accounting,
	// threaded through from the prior validation pass over this same body
	// and consumed in lockstep, by occurrence order, as br/br_if/br_table
	// instructions are re-encountered here.
	branches  []validate.BranchInfo
	branchIdx int
}

// Compile lowers one function body into a flat instruction stream. Callers
// must have already run internal/validate.Function successfully on the same
// body: Compile trusts structural well-formedness and does not re-validate
// types, only re-walks the byte stream to resolve control flow. branches is
// that prior run's FuncResult.Branches, in the same left-to-right order this
// walk will encounter br/br_if/br_table instructions.
func Compile(m *wasm.Module, idx uint32, maxStackDepth int, branches []validate.BranchInfo) (*Function, error) {
	sig := m.FuncType(idx)
	cb := m.CodeBodies[idx]
	locals := append(append([]wasm.ValueType{}, sig.Params...), cb.Locals...)

	c := &compiler{m: m, r: bytes.NewReader(cb.Body), locals: locals, branches: branches}
	c.pushFrame(frameBlock)

	for {
		done, err := c.step()
		if err != nil {
			return nil, fmt.Errorf("ircode: function %d: %w", idx, err)
		}
		if done {
			break
		}
	}

	return &Function{
		Code:          c.code,
		NumLocals:     len(locals),
		MaxStackDepth: maxStackDepth,
	}, nil
}

func (c *compiler) pushFrame(kind frameKind) *pendingFrame {
	f := &pendingFrame{kind: kind, elseOpIdx: -1}
	if kind == frameLoop {
		f.label = len(c.code)
	}
	c.frames = append(c.frames, f)
	return f
}

func (c *compiler) top() *pendingFrame { return c.frames[len(c.frames)-1] }

// frame returns the pending frame `depth` levels up from the innermost.
func (c *compiler) frame(depth uint32) *pendingFrame {
	return c.frames[len(c.frames)-1-int(depth)]
}

// addPatch records that site's jump target onto f, unless f's address is
// already known (a loop header), in which case it writes the target
// immediately.
func (c *compiler) addPatch(f *pendingFrame, site patchSite) {
	if f.kind == frameLoop {
		c.writeTarget(site, uint32(f.label))
		return
	}
	f.patches = append(f.patches, site)
}

func (c *compiler) writeTarget(site patchSite, addr uint32) {
	if site.slot < 0 {
		c.code[site.opIdx].A = addr
	} else {
		c.code[site.opIdx].Targets[site.slot] = addr
	}
}

// nextBranch returns the next BranchInfo in order, consumed as each
// br/br_if/br_table instruction is re-encountered during this pass.
func (c *compiler) nextBranch() validate.BranchInfo {
	bi := c.branches[c.branchIdx]
	c.branchIdx++
	return bi
}

func (c *compiler) emit(op Op) int {
	c.code = append(c.code, op)
	return len(c.code) - 1
}

// resolve patches every pending site on f to addr and clears the list; used
// when f's label address becomes known (an `else` or `end` is reached).
func (c *compiler) resolve(f *pendingFrame, addr int) {
	for _, site := range f.patches {
		c.writeTarget(site, uint32(addr))
	}
	f.patches = nil
}

func (c *compiler) readByte() (byte, error) { return c.r.ReadByte() }

func (c *compiler) readU32() (uint32, error) {
	n, _, err := leb128.DecodeUint32(c.r)
	return n, err
}

func (c *compiler) readI32() (int32, error) {
	n, _, err := leb128.DecodeInt32(c.r)
	return n, err
}

func (c *compiler) readI64() (int64, error) {
	n, _, err := leb128.DecodeInt64(c.r)
	return n, err
}

func (c *compiler) readFixed(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := c.r.Read(buf)
	return buf, err
}

// skipBlockType consumes the block-type immediate; ircode does not need its
// decoded value (arity bookkeeping already happened during validation), only
// the byte count so the instruction stream stays aligned.
func (c *compiler) skipBlockType() error {
	_, err := c.readI64()
	return err
}

func (c *compiler) step() (done bool, err error) {
	opb, err := c.readByte()
	if err != nil {
		return false, err
	}
	op := wasm.Opcode(opb)

	switch op {
	case wasm.OpcodeUnreachable:
		c.emit(Op{Kind: Unreachable})
	case wasm.OpcodeNop:
		c.emit(Op{Kind: Nop})

	case wasm.OpcodeBlock:
		if err := c.skipBlockType(); err != nil {
			return false, err
		}
		c.pushFrame(frameBlock)
	case wasm.OpcodeLoop:
		if err := c.skipBlockType(); err != nil {
			return false, err
		}
		c.pushFrame(frameLoop)
	case wasm.OpcodeIf:
		if err := c.skipBlockType(); err != nil {
			return false, err
		}
		idx := c.emit(Op{Kind: If})
		f := c.pushFrame(frameIf)
		f.patches = append(f.patches, patchSite{opIdx: idx, slot: -1})

	case wasm.OpcodeElse:
		f := c.top()
		idx := c.emit(Op{Kind: Else})
		// The preceding `if`'s false-branch target, when there is an
		// else arm, is right here: resolve it now instead of deferring
		// to `end`. The else op itself becomes the new deferred site,
		// patched to the end position once `end` is reached. The if op's
		// site is always f.patches[0] (recorded right after pushFrame);
		// branch sites from the then arm stay pending until `end`.
		c.writeTarget(f.patches[0], uint32(len(c.code)))
		f.patches = f.patches[1:]
		f.elseOpIdx = idx
		f.patches = append(f.patches, patchSite{opIdx: idx, slot: -1})

	case wasm.OpcodeEnd:
		f := c.top()
		c.frames = c.frames[:len(c.frames)-1]
		c.resolve(f, len(c.code))
		if len(c.frames) == 0 {
			c.emit(Op{Kind: End})
			return true, nil
		}

	case wasm.OpcodeBr:
		depth, err := c.readU32()
		if err != nil {
			return false, err
		}
		bi := c.nextBranch()
		idx := c.emit(Op{Kind: Br, B: uint32(bi.KeepSlots), Imm1: uint64(bi.DropSlots[0])})
		c.addPatch(c.frame(depth), patchSite{opIdx: idx, slot: -1})

	case wasm.OpcodeBrIf:
		depth, err := c.readU32()
		if err != nil {
			return false, err
		}
		bi := c.nextBranch()
		idx := c.emit(Op{Kind: BrIf, B: uint32(bi.KeepSlots), Imm1: uint64(bi.DropSlots[0])})
		c.addPatch(c.frame(depth), patchSite{opIdx: idx, slot: -1})

	case wasm.OpcodeBrTable:
		n, err := c.readU32()
		if err != nil {
			return false, err
		}
		depths := make([]uint32, n+1)
		for i := uint32(0); i < n; i++ {
			d, err := c.readU32()
			if err != nil {
				return false, err
			}
			depths[i] = d
		}
		d, err := c.readU32()
		if err != nil {
			return false, err
		}
		depths[n] = d
		bi := c.nextBranch()
		drops := make([]uint32, n+1)
		for i, ds := range bi.DropSlots {
			drops[i] = uint32(ds)
		}
		idx := c.emit(Op{Kind: BrTable, B: uint32(bi.KeepSlots), Targets: make([]uint32, n+1), Drops: drops})
		for slot, d := range depths {
			c.addPatch(c.frame(d), patchSite{opIdx: idx, slot: slot})
		}

	case wasm.OpcodeReturn:
		c.emit(Op{Kind: Return})

	case wasm.OpcodeCall:
		fnIdx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: Call, A: fnIdx})

	case wasm.OpcodeCallIndirect:
		typeIdx, err := c.readU32()
		if err != nil {
			return false, err
		}
		tableIdx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: CallIndirect, A: typeIdx, B: tableIdx})

	case wasm.OpcodeDrop:
		c.emit(Op{Kind: Drop})
	case wasm.OpcodeSelect:
		c.emit(Op{Kind: Select})

	case wasm.OpcodeLocalGet:
		idx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: LocalGet, A: idx})
	case wasm.OpcodeLocalSet:
		idx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: LocalSet, A: idx})
	case wasm.OpcodeLocalTee:
		idx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: LocalTee, A: idx})
	case wasm.OpcodeGlobalGet:
		idx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: GlobalGet, A: idx})
	case wasm.OpcodeGlobalSet:
		idx, err := c.readU32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: GlobalSet, A: idx})

	case wasm.OpcodeMemorySize:
		if _, err := c.readByte(); err != nil {
			return false, err
		}
		c.emit(Op{Kind: MemorySize})
	case wasm.OpcodeMemoryGrow:
		if _, err := c.readByte(); err != nil {
			return false, err
		}
		c.emit(Op{Kind: MemoryGrow})

	case wasm.OpcodeI32Const:
		n, err := c.readI32()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: I32Const, Imm1: uint64(uint32(n))})
	case wasm.OpcodeI64Const:
		n, err := c.readI64()
		if err != nil {
			return false, err
		}
		c.emit(Op{Kind: I64Const, Imm1: uint64(n)})
	case wasm.OpcodeF32Const:
		b, err := c.readFixed(4)
		if err != nil {
			return false, err
		}
		bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		c.emit(Op{Kind: F32Const, Imm1: uint64(bits)})
	case wasm.OpcodeF64Const:
		b, err := c.readFixed(8)
		if err != nil {
			return false, err
		}
		var bits uint64
		for i := 7; i >= 0; i-- {
			bits = bits<<8 | uint64(b[i])
		}
		c.emit(Op{Kind: F64Const, Imm1: bits})

	case wasm.OpcodeMiscPrefix:
		if err := c.miscOp(); err != nil {
			return false, err
		}
	case wasm.OpcodeSIMDPrefix:
		if err := c.simdOp(); err != nil {
			return false, err
		}

	default:
		if err := c.simpleOp(op); err != nil {
			return false, err
		}
	}

	return false, nil
}
