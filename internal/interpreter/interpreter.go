// Package interpreter is the stack-machine dispatch loop: it walks one
// ircode.Function's flat, jump-resolved instruction stream against a single
// contiguous value stack and an explicit call-frame stack, per spec.md §4.F.
package interpreter

import (
	"math"

	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/wasm"
)

func (c *Context) push(v uint64) {
	if len(c.stack) >= c.cfg.ValueStackCapacity {
		trapCallStackOverflow()
	}
	c.stack = append(c.stack, v)
}

func (c *Context) pop() uint64 {
	n := len(c.stack) - 1
	v := c.stack[n]
	c.stack = c.stack[:n]
	return v
}

func (c *Context) peek() uint64 { return c.stack[len(c.stack)-1] }

// unwindTo discards dropCount stack slots sitting just below the topmost
// keepCount slots, leaving the kept values in place at the top: a branch's
// operand stack must end up at the target's entry baseline plus its result
// values, with anything else accumulated inside the branched-out block gone
// (spec.md §4.D).
func (c *Context) unwindTo(keepCount, dropCount int) {
	if dropCount == 0 {
		return
	}
	n := len(c.stack)
	src := n - keepCount
	dst := src - dropCount
	copy(c.stack[dst:], c.stack[src:n])
	c.stack = c.stack[:dst+keepCount]
}

// pushV128/popV128 store a 128-bit lane pair as two adjacent stack slots,
// low half pushed first so it ends up one below the high half.
func (c *Context) pushV128(lo, hi uint64) {
	c.push(lo)
	c.push(hi)
}

func (c *Context) popV128() (lo, hi uint64) {
	hi = c.pop()
	lo = c.pop()
	return
}

func (c *Context) pushI32(v int32)     { c.push(uint64(uint32(v))) }
func (c *Context) pushF32(v float32)   { c.push(uint64(math.Float32bits(v))) }
func (c *Context) pushF64(v float64)   { c.push(math.Float64bits(v)) }
func (c *Context) popI32() int32       { return int32(uint32(c.pop())) }
func (c *Context) popU32() uint32      { return uint32(c.pop()) }
func (c *Context) popF32() float32     { return math.Float32frombits(uint32(c.pop())) }
func (c *Context) popF64() float64     { return math.Float64frombits(c.pop()) }
func (c *Context) pushBool(b bool) {
	if b {
		c.pushI32(1)
	} else {
		c.pushI32(0)
	}
}

// callFunction pushes a new frame reusing the top len(params) stack slots as
// the callee's parameter locals, zero-initializes its declared locals, runs
// its body to completion, then compacts the operand stack back down to the
// frame's locals_offset before appending the results (spec.md §4.F).
func (c *Context) callFunction(funcIndex uint32) {
	if len(c.frames) >= c.cfg.MaxCallDepth {
		trapCallStackOverflow()
	}
	fn := c.mod.funcs[funcIndex]
	sig := c.mod.m.FuncType(funcIndex)
	localsBase := len(c.stack) - len(sig.Params)

	for i := len(sig.Params); i < fn.NumLocals; i++ {
		c.push(0)
	}

	c.frames = append(c.frames, frame{fn: fn, funcIndex: funcIndex, localsBase: localsBase})
	c.run()
	c.frames = c.frames[:len(c.frames)-1]

	nResults := len(sig.Results)
	results := append([]uint64(nil), c.stack[len(c.stack)-nResults:]...)
	c.stack = c.stack[:localsBase]
	c.stack = append(c.stack, results...)
}

func (c *Context) callIndirect(typeIdx, tableIdx uint32) {
	_ = tableIdx // single-table profile; immediate kept for symmetry with the wire encoding.
	idx := c.popU32()
	if !c.hasTable || int(idx) >= len(c.table) {
		fail(KindTrap, "table access out of bounds")
	}
	funcIdx := c.table[idx]
	if funcIdx == tableNull {
		fail(KindTrap, "call_indirect to uninitialized table slot")
	}
	want := &c.mod.m.Types[typeIdx]
	got := c.mod.m.FuncType(funcIdx)
	if !want.EqualsSignature(got.Params, got.Results) {
		fail(KindTrap, "indirect call signature mismatch")
	}
	c.callFunction(funcIdx)
}

// run executes the current (topmost) frame's instruction stream until it
// reaches the function-terminating End or a Return.
func (c *Context) run() {
	f := &c.frames[len(c.frames)-1]
	code := f.fn.Code

	for {
		op := &code[f.pc]

		switch op.Kind {
		case ircode.End, ircode.Return:
			return

		case ircode.Br:
			c.unwindTo(int(op.B), int(op.Imm1))
			f.pc = int(op.A)
			continue
		case ircode.BrIf:
			taken := c.pop() != 0
			if taken {
				c.unwindTo(int(op.B), int(op.Imm1))
				f.pc = int(op.A)
				continue
			}
		case ircode.BrTable:
			idx := c.popU32()
			if int(idx) >= len(op.Targets) {
				idx = uint32(len(op.Targets) - 1)
			}
			c.unwindTo(int(op.B), int(op.Drops[idx]))
			f.pc = int(op.Targets[idx])
			continue
		case ircode.If:
			if c.pop() == 0 {
				f.pc = int(op.A)
				continue
			}
		case ircode.Else:
			f.pc = int(op.A)
			continue

		case ircode.Unreachable:
			trap("unreachable executed")
		case ircode.Nop:

		case ircode.Call:
			c.callFunction(op.A)
		case ircode.CallIndirect:
			c.callIndirect(op.A, op.B)

		case ircode.Drop:
			c.pop()
		case ircode.Select:
			cond := c.pop()
			b := c.pop()
			a := c.pop()
			if cond != 0 {
				c.push(a)
			} else {
				c.push(b)
			}

		case ircode.LocalGet:
			c.push(c.stack[f.localsBase+int(op.A)])
		case ircode.LocalSet:
			c.stack[f.localsBase+int(op.A)] = c.pop()
		case ircode.LocalTee:
			c.stack[f.localsBase+int(op.A)] = c.peek()
		case ircode.GlobalGet:
			c.push(c.globals[op.A])
		case ircode.GlobalSet:
			c.globals[op.A] = c.pop()

		case ircode.MemorySize:
			c.pushI32(int32(len(c.memory) / wasm.PageSize))
		case ircode.MemoryGrow:
			c.execMemoryGrow()

		case ircode.I32Const:
			c.push(op.Imm1)
		case ircode.I64Const:
			c.push(op.Imm1)
		case ircode.F32Const:
			c.push(op.Imm1)
		case ircode.F64Const:
			c.push(op.Imm1)

		case ircode.MemoryInit, ircode.DataDrop, ircode.MemoryCopy, ircode.MemoryFill:
			c.execBulkMemory(op)

		default:
			if op.Kind >= ircode.I32Load && op.Kind <= ircode.I64Store32 {
				c.execMemOp(op)
			} else if op.Kind >= ircode.V128Load && op.Kind <= ircode.F32x4ConvertI32x4U {
				c.execSIMD(op)
			} else {
				c.execArith(op)
			}
		}

		f.pc++
	}
}
