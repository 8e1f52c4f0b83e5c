package interpreter

import (
	"encoding/binary"

	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/wasm"
)

// effectiveAddress computes addr+offset using 64-bit arithmetic so a large
// i32 address plus a large static offset cannot wrap back in bounds
// (spec.md §4.D: "effective address = addr + static offset using 64-bit
// arithmetic").
func effectiveAddress(addr uint32, offset uint32) uint64 {
	return uint64(addr) + uint64(offset)
}

func (c *Context) boundsCheck(effAddr uint64, width uint64) {
	if effAddr+width > uint64(len(c.memory)) {
		trapMemoryOOB("memory access out of bounds")
	}
}

func (c *Context) readMem(effAddr uint64, width int) []byte {
	c.boundsCheck(effAddr, uint64(width))
	return c.memory[effAddr : effAddr+uint64(width)]
}

func (c *Context) writeMem(effAddr uint64, data []byte) {
	c.boundsCheck(effAddr, uint64(len(data)))
	copy(c.memory[effAddr:], data)
}

func (c *Context) execMemOp(op *ircode.Op) {
	switch op.Kind {
	case ircode.I32Load:
		addr := c.popU32()
		c.pushI32(int32(binary.LittleEndian.Uint32(c.readMem(effectiveAddress(addr, op.A), 4))))
	case ircode.I64Load:
		addr := c.popU32()
		c.push(binary.LittleEndian.Uint64(c.readMem(effectiveAddress(addr, op.A), 8)))
	case ircode.F32Load:
		addr := c.popU32()
		c.push(uint64(binary.LittleEndian.Uint32(c.readMem(effectiveAddress(addr, op.A), 4))))
	case ircode.F64Load:
		addr := c.popU32()
		c.push(binary.LittleEndian.Uint64(c.readMem(effectiveAddress(addr, op.A), 8)))
	case ircode.I32Load8S:
		addr := c.popU32()
		c.pushI32(int32(int8(c.readMem(effectiveAddress(addr, op.A), 1)[0])))
	case ircode.I32Load8U:
		addr := c.popU32()
		c.pushI32(int32(c.readMem(effectiveAddress(addr, op.A), 1)[0]))
	case ircode.I32Load16S:
		addr := c.popU32()
		c.pushI32(int32(int16(binary.LittleEndian.Uint16(c.readMem(effectiveAddress(addr, op.A), 2)))))
	case ircode.I32Load16U:
		addr := c.popU32()
		c.pushI32(int32(binary.LittleEndian.Uint16(c.readMem(effectiveAddress(addr, op.A), 2))))
	case ircode.I64Load8S:
		addr := c.popU32()
		c.push(uint64(int64(int8(c.readMem(effectiveAddress(addr, op.A), 1)[0]))))
	case ircode.I64Load8U:
		addr := c.popU32()
		c.push(uint64(c.readMem(effectiveAddress(addr, op.A), 1)[0]))
	case ircode.I64Load16S:
		addr := c.popU32()
		c.push(uint64(int64(int16(binary.LittleEndian.Uint16(c.readMem(effectiveAddress(addr, op.A), 2))))))
	case ircode.I64Load16U:
		addr := c.popU32()
		c.push(uint64(binary.LittleEndian.Uint16(c.readMem(effectiveAddress(addr, op.A), 2))))
	case ircode.I64Load32S:
		addr := c.popU32()
		c.push(uint64(int64(int32(binary.LittleEndian.Uint32(c.readMem(effectiveAddress(addr, op.A), 4))))))
	case ircode.I64Load32U:
		addr := c.popU32()
		c.push(uint64(binary.LittleEndian.Uint32(c.readMem(effectiveAddress(addr, op.A), 4))))

	case ircode.I32Store:
		v := c.popU32()
		addr := c.popU32()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.I64Store:
		v := c.pop()
		addr := c.popU32()
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.F32Store:
		v := c.pop()
		addr := c.popU32()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.F64Store:
		v := c.pop()
		addr := c.popU32()
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.I32Store8:
		v := c.popU32()
		addr := c.popU32()
		c.writeMem(effectiveAddress(addr, op.A), []byte{byte(v)})
	case ircode.I32Store16:
		v := c.popU32()
		addr := c.popU32()
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.I64Store8:
		v := c.pop()
		addr := c.popU32()
		c.writeMem(effectiveAddress(addr, op.A), []byte{byte(v)})
	case ircode.I64Store16:
		v := c.pop()
		addr := c.popU32()
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	case ircode.I64Store32:
		v := c.pop()
		addr := c.popU32()
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		c.writeMem(effectiveAddress(addr, op.A), b[:])
	}
}

// execMemoryGrow implements the reallocate-and-zero-tail protocol of
// spec.md §5: any slice taken into memory before growth is invalidated,
// since growth always replaces the backing array.
func (c *Context) execMemoryGrow() {
	delta := c.popU32()
	oldPages := uint32(len(c.memory) / wasm.PageSize)
	newPages := oldPages + delta
	if delta != 0 && (newPages < oldPages || newPages > c.memoryMax) {
		c.pushI32(-1)
		return
	}
	grown := make([]byte, uint64(newPages)*wasm.PageSize)
	copy(grown, c.memory)
	c.memory = grown
	c.pushI32(int32(oldPages))
}

func (c *Context) execBulkMemory(op *ircode.Op) {
	switch op.Kind {
	case ircode.MemoryInit:
		n := c.popU32()
		src := c.popU32()
		dst := c.popU32()
		seg := c.dataSegment(op.A)
		if uint64(src)+uint64(n) > uint64(len(seg)) {
			trapMemoryOOB("data segment access out of bounds")
		}
		c.writeMem(effectiveAddress(dst, 0), seg[src:src+n])

	case ircode.DataDrop:
		c.dataSegments[op.A] = nil

	case ircode.MemoryCopy:
		n := c.popU32()
		src := c.popU32()
		dst := c.popU32()
		c.boundsCheck(uint64(src), uint64(n))
		c.boundsCheck(uint64(dst), uint64(n))
		// copy is defined as if through a temporary buffer, so an
		// overlapping source/destination range is safe either direction.
		tmp := append([]byte(nil), c.memory[src:src+n]...)
		copy(c.memory[dst:dst+n], tmp)

	case ircode.MemoryFill:
		n := c.popU32()
		val := byte(c.popU32())
		dst := c.popU32()
		c.boundsCheck(uint64(dst), uint64(n))
		region := c.memory[dst : dst+n]
		for i := range region {
			region[i] = val
		}
	}
}

// dataSegment returns a data segment's bytes, or nil if it was dropped: a
// dropped segment behaves as zero-length, so memory.init against it only
// traps once the requested range is non-empty.
func (c *Context) dataSegment(idx uint32) []byte {
	if int(idx) >= len(c.dataSegments) {
		trap("data segment index out of range")
	}
	return c.dataSegments[idx]
}
