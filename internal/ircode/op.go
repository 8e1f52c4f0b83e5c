package ircode

// Op is one pre-decoded instruction. Fields are deliberately untyped/opaque
// and reused across instruction kinds (mirroring how a stack-machine
// bytecode struct packs a handful of generic slots rather than growing a
// field per opcode): A and B carry indices, offsets, or jump targets; Imm1
// and Imm2 carry constant payloads (Imm1 alone for any scalar constant,
// both for the two lanes of v128); Targets carries br_table's target list;
// Lanes carries the i8x16.shuffle lane-index immediate.
//
// For Br/BrIf, B is the branch's KeepSlots (physical stack slots to
// preserve as the target's result) and Imm1 is its DropSlots (physical
// slots to discard below the kept values and above the target's entry
// baseline). For BrTable, B is the shared KeepSlots and Drops carries one
// DropSlots count per entry in Targets.
type Op struct {
	Kind Kind

	A, B uint32

	Imm1, Imm2 uint64

	Targets []uint32
	Drops   []uint32

	Lanes [16]byte
}

// Function is one function body after pre-decoding: a flat instruction
// stream with every block/loop/if/else resolved to absolute indices into
// Code, ready for the interpreter's dispatch loop to walk with a plain
// integer program counter and no runtime block stack.
type Function struct {
	Code []Op

	// NumLocals is params+declared-locals; the interpreter reserves this
	// many value-stack slots at call entry, indexed 0..NumLocals-1.
	NumLocals int

	// MaxStackDepth is the high-water mark of the operand stack, from
	// validate.FuncResult. The interpreter does not read it: its value
	// stack is sized from Config.ValueStackCapacity.
	MaxStackDepth int
}
