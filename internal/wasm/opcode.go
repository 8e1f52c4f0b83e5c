package wasm

// Opcode is a raw WebAssembly wire-format opcode byte. Three values are
// prefixes: a following ULEB128 names a sub-opcode within that prefix's
// family. Every other byte is a complete opcode by itself.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#instructions%E2%91%A0
type Opcode byte

const (
	OpcodeUnreachable Opcode = 0x00
	OpcodeNop         Opcode = 0x01
	OpcodeBlock       Opcode = 0x02
	OpcodeLoop        Opcode = 0x03
	OpcodeIf          Opcode = 0x04
	OpcodeElse        Opcode = 0x05
	OpcodeEnd         Opcode = 0x0b
	OpcodeBr          Opcode = 0x0c
	OpcodeBrIf        Opcode = 0x0d
	OpcodeBrTable     Opcode = 0x0e
	OpcodeReturn      Opcode = 0x0f
	OpcodeCall        Opcode = 0x10
	OpcodeCallIndirect Opcode = 0x11

	OpcodeDrop   Opcode = 0x1a
	OpcodeSelect Opcode = 0x1b

	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24

	OpcodeI32Load    Opcode = 0x28
	OpcodeI64Load    Opcode = 0x29
	OpcodeF32Load    Opcode = 0x2a
	OpcodeF64Load    Opcode = 0x2b
	OpcodeI32Load8S  Opcode = 0x2c
	OpcodeI32Load8U  Opcode = 0x2d
	OpcodeI32Load16S Opcode = 0x2e
	OpcodeI32Load16U Opcode = 0x2f
	OpcodeI64Load8S  Opcode = 0x30
	OpcodeI64Load8U  Opcode = 0x31
	OpcodeI64Load16S Opcode = 0x32
	OpcodeI64Load16U Opcode = 0x33
	OpcodeI64Load32S Opcode = 0x34
	OpcodeI64Load32U Opcode = 0x35
	OpcodeI32Store   Opcode = 0x36
	OpcodeI64Store   Opcode = 0x37
	OpcodeF32Store   Opcode = 0x38
	OpcodeF64Store   Opcode = 0x39
	OpcodeI32Store8  Opcode = 0x3a
	OpcodeI32Store16 Opcode = 0x3b
	OpcodeI64Store8  Opcode = 0x3c
	OpcodeI64Store16 Opcode = 0x3d
	OpcodeI64Store32 Opcode = 0x3e
	OpcodeMemorySize Opcode = 0x3f
	OpcodeMemoryGrow Opcode = 0x40

	OpcodeI32Const Opcode = 0x41
	OpcodeI64Const Opcode = 0x42
	OpcodeF32Const Opcode = 0x43
	OpcodeF64Const Opcode = 0x44

	OpcodeI32Eqz  Opcode = 0x45
	OpcodeI32Eq   Opcode = 0x46
	OpcodeI32Ne   Opcode = 0x47
	OpcodeI32LtS  Opcode = 0x48
	OpcodeI32LtU  Opcode = 0x49
	OpcodeI32GtS  Opcode = 0x4a
	OpcodeI32GtU  Opcode = 0x4b
	OpcodeI32LeS  Opcode = 0x4c
	OpcodeI32LeU  Opcode = 0x4d
	OpcodeI32GeS  Opcode = 0x4e
	OpcodeI32GeU  Opcode = 0x4f

	OpcodeI64Eqz Opcode = 0x50
	OpcodeI64Eq  Opcode = 0x51
	OpcodeI64Ne  Opcode = 0x52
	OpcodeI64LtS Opcode = 0x53
	OpcodeI64LtU Opcode = 0x54
	OpcodeI64GtS Opcode = 0x55
	OpcodeI64GtU Opcode = 0x56
	OpcodeI64LeS Opcode = 0x57
	OpcodeI64LeU Opcode = 0x58
	OpcodeI64GeS Opcode = 0x59
	OpcodeI64GeU Opcode = 0x5a

	OpcodeF32Eq Opcode = 0x5b
	OpcodeF32Ne Opcode = 0x5c
	OpcodeF32Lt Opcode = 0x5d
	OpcodeF32Gt Opcode = 0x5e
	OpcodeF32Le Opcode = 0x5f
	OpcodeF32Ge Opcode = 0x60

	OpcodeF64Eq Opcode = 0x61
	OpcodeF64Ne Opcode = 0x62
	OpcodeF64Lt Opcode = 0x63
	OpcodeF64Gt Opcode = 0x64
	OpcodeF64Le Opcode = 0x65
	OpcodeF64Ge Opcode = 0x66

	OpcodeI32Clz    Opcode = 0x67
	OpcodeI32Ctz    Opcode = 0x68
	OpcodeI32Popcnt Opcode = 0x69
	OpcodeI32Add    Opcode = 0x6a
	OpcodeI32Sub    Opcode = 0x6b
	OpcodeI32Mul    Opcode = 0x6c
	OpcodeI32DivS   Opcode = 0x6d
	OpcodeI32DivU   Opcode = 0x6e
	OpcodeI32RemS   Opcode = 0x6f
	OpcodeI32RemU   Opcode = 0x70
	OpcodeI32And    Opcode = 0x71
	OpcodeI32Or     Opcode = 0x72
	OpcodeI32Xor    Opcode = 0x73
	OpcodeI32Shl    Opcode = 0x74
	OpcodeI32ShrS   Opcode = 0x75
	OpcodeI32ShrU   Opcode = 0x76
	OpcodeI32Rotl   Opcode = 0x77
	OpcodeI32Rotr   Opcode = 0x78

	OpcodeI64Clz    Opcode = 0x79
	OpcodeI64Ctz    Opcode = 0x7a
	OpcodeI64Popcnt Opcode = 0x7b
	OpcodeI64Add    Opcode = 0x7c
	OpcodeI64Sub    Opcode = 0x7d
	OpcodeI64Mul    Opcode = 0x7e
	OpcodeI64DivS   Opcode = 0x7f
	OpcodeI64DivU   Opcode = 0x80
	OpcodeI64RemS   Opcode = 0x81
	OpcodeI64RemU   Opcode = 0x82
	OpcodeI64And    Opcode = 0x83
	OpcodeI64Or     Opcode = 0x84
	OpcodeI64Xor    Opcode = 0x85
	OpcodeI64Shl    Opcode = 0x86
	OpcodeI64ShrS   Opcode = 0x87
	OpcodeI64ShrU   Opcode = 0x88
	OpcodeI64Rotl   Opcode = 0x89
	OpcodeI64Rotr   Opcode = 0x8a

	OpcodeF32Abs      Opcode = 0x8b
	OpcodeF32Neg      Opcode = 0x8c
	OpcodeF32Ceil     Opcode = 0x8d
	OpcodeF32Floor    Opcode = 0x8e
	OpcodeF32Trunc    Opcode = 0x8f
	OpcodeF32Nearest  Opcode = 0x90
	OpcodeF32Sqrt     Opcode = 0x91
	OpcodeF32Add      Opcode = 0x92
	OpcodeF32Sub      Opcode = 0x93
	OpcodeF32Mul      Opcode = 0x94
	OpcodeF32Div      Opcode = 0x95
	OpcodeF32Min      Opcode = 0x96
	OpcodeF32Max      Opcode = 0x97
	OpcodeF32Copysign Opcode = 0x98

	OpcodeF64Abs      Opcode = 0x99
	OpcodeF64Neg      Opcode = 0x9a
	OpcodeF64Ceil     Opcode = 0x9b
	OpcodeF64Floor    Opcode = 0x9c
	OpcodeF64Trunc    Opcode = 0x9d
	OpcodeF64Nearest  Opcode = 0x9e
	OpcodeF64Sqrt     Opcode = 0x9f
	OpcodeF64Add      Opcode = 0xa0
	OpcodeF64Sub      Opcode = 0xa1
	OpcodeF64Mul      Opcode = 0xa2
	OpcodeF64Div      Opcode = 0xa3
	OpcodeF64Min      Opcode = 0xa4
	OpcodeF64Max      Opcode = 0xa5
	OpcodeF64Copysign Opcode = 0xa6

	OpcodeI32WrapI64      Opcode = 0xa7
	OpcodeI32TruncF32S    Opcode = 0xa8
	OpcodeI32TruncF32U    Opcode = 0xa9
	OpcodeI32TruncF64S    Opcode = 0xaa
	OpcodeI32TruncF64U    Opcode = 0xab
	OpcodeI64ExtendI32S   Opcode = 0xac
	OpcodeI64ExtendI32U   Opcode = 0xad
	OpcodeI64TruncF32S    Opcode = 0xae
	OpcodeI64TruncF32U    Opcode = 0xaf
	OpcodeI64TruncF64S    Opcode = 0xb0
	OpcodeI64TruncF64U    Opcode = 0xb1
	OpcodeF32ConvertI32S  Opcode = 0xb2
	OpcodeF32ConvertI32U  Opcode = 0xb3
	OpcodeF32ConvertI64S  Opcode = 0xb4
	OpcodeF32ConvertI64U  Opcode = 0xb5
	OpcodeF32DemoteF64    Opcode = 0xb6
	OpcodeF64ConvertI32S  Opcode = 0xb7
	OpcodeF64ConvertI32U  Opcode = 0xb8
	OpcodeF64ConvertI64S  Opcode = 0xb9
	OpcodeF64ConvertI64U  Opcode = 0xba
	OpcodeF64PromoteF32   Opcode = 0xbb
	OpcodeI32ReinterpretF32 Opcode = 0xbc
	OpcodeI64ReinterpretF64 Opcode = 0xbd
	OpcodeF32ReinterpretI32 Opcode = 0xbe
	OpcodeF64ReinterpretI64 Opcode = 0xbf

	OpcodeI32Extend8S  Opcode = 0xc0
	OpcodeI32Extend16S Opcode = 0xc1
	OpcodeI64Extend8S  Opcode = 0xc2
	OpcodeI64Extend16S Opcode = 0xc3
	OpcodeI64Extend32S Opcode = 0xc4

	// OpcodeMiscPrefix introduces the saturating-truncation and
	// non-trap bulk-memory sub-opcode family, named by a following
	// ULEB128 (§4.A).
	OpcodeMiscPrefix Opcode = 0xfc
	// OpcodeSIMDPrefix introduces the fixed-width SIMD sub-opcode
	// family, named by a following ULEB128 (§4.A).
	OpcodeSIMDPrefix Opcode = 0xfd
)

// Misc (0xFC-prefixed) sub-opcodes: saturating truncation then bulk memory.
const (
	MiscI32TruncSatF32S uint32 = 0
	MiscI32TruncSatF32U uint32 = 1
	MiscI32TruncSatF64S uint32 = 2
	MiscI32TruncSatF64U uint32 = 3
	MiscI64TruncSatF32S uint32 = 4
	MiscI64TruncSatF32U uint32 = 5
	MiscI64TruncSatF64S uint32 = 6
	MiscI64TruncSatF64U uint32 = 7

	MiscMemoryInit uint32 = 8
	MiscDataDrop   uint32 = 9
	MiscMemoryCopy uint32 = 10
	MiscMemoryFill uint32 = 11
)

// SIMD (0xFD-prefixed) sub-opcodes implemented by this runtime. This is a
// representative, wide subset of the ~230-opcode SIMD proposal rather than
// an exhaustive port; the constants below are the full supported set.
const (
	SIMDV128Load   uint32 = 0
	SIMDV128Load32Zero uint32 = 92
	SIMDV128Load64Zero uint32 = 93
	SIMDV128Store  uint32 = 11
	SIMDV128Const  uint32 = 12

	SIMDI8x16Shuffle uint32 = 13
	SIMDI8x16Swizzle uint32 = 14

	SIMDI8x16Splat uint32 = 15
	SIMDI16x8Splat uint32 = 16
	SIMDI32x4Splat uint32 = 17
	SIMDI64x2Splat uint32 = 18
	SIMDF32x4Splat uint32 = 19
	SIMDF64x2Splat uint32 = 20

	SIMDI8x16ExtractLaneS uint32 = 21
	SIMDI8x16ExtractLaneU uint32 = 22
	SIMDI8x16ReplaceLane  uint32 = 23
	SIMDI16x8ExtractLaneS uint32 = 24
	SIMDI16x8ExtractLaneU uint32 = 25
	SIMDI16x8ReplaceLane  uint32 = 26
	SIMDI32x4ExtractLane  uint32 = 27
	SIMDI32x4ReplaceLane  uint32 = 28
	SIMDI64x2ExtractLane  uint32 = 29
	SIMDI64x2ReplaceLane  uint32 = 30
	SIMDF32x4ExtractLane  uint32 = 31
	SIMDF32x4ReplaceLane  uint32 = 32
	SIMDF64x2ExtractLane  uint32 = 33
	SIMDF64x2ReplaceLane  uint32 = 34

	SIMDI8x16Eq  uint32 = 35
	SIMDI8x16Ne  uint32 = 36
	SIMDI8x16LtS uint32 = 37
	SIMDI8x16LtU uint32 = 38
	SIMDI8x16GtS uint32 = 39
	SIMDI8x16GtU uint32 = 40
	SIMDI8x16LeS uint32 = 41
	SIMDI8x16LeU uint32 = 42
	SIMDI8x16GeS uint32 = 43
	SIMDI8x16GeU uint32 = 44

	SIMDI16x8Eq  uint32 = 45
	SIMDI16x8Ne  uint32 = 46
	SIMDI16x8LtS uint32 = 47
	SIMDI16x8LtU uint32 = 48
	SIMDI16x8GtS uint32 = 49
	SIMDI16x8GtU uint32 = 50
	SIMDI16x8LeS uint32 = 51
	SIMDI16x8LeU uint32 = 52
	SIMDI16x8GeS uint32 = 53
	SIMDI16x8GeU uint32 = 54

	SIMDI32x4Eq  uint32 = 55
	SIMDI32x4Ne  uint32 = 56
	SIMDI32x4LtS uint32 = 57
	SIMDI32x4LtU uint32 = 58
	SIMDI32x4GtS uint32 = 59
	SIMDI32x4GtU uint32 = 60
	SIMDI32x4LeS uint32 = 61
	SIMDI32x4LeU uint32 = 62
	SIMDI32x4GeS uint32 = 63
	SIMDI32x4GeU uint32 = 64

	SIMDF32x4Eq uint32 = 65
	SIMDF32x4Ne uint32 = 66
	SIMDF32x4Lt uint32 = 67
	SIMDF32x4Gt uint32 = 68
	SIMDF32x4Le uint32 = 69
	SIMDF32x4Ge uint32 = 70

	SIMDF64x2Eq uint32 = 71
	SIMDF64x2Ne uint32 = 72
	SIMDF64x2Lt uint32 = 73
	SIMDF64x2Gt uint32 = 74
	SIMDF64x2Le uint32 = 75
	SIMDF64x2Ge uint32 = 76

	SIMDV128Not      uint32 = 77
	SIMDV128And      uint32 = 78
	SIMDV128AndNot   uint32 = 79
	SIMDV128Or       uint32 = 80
	SIMDV128Xor      uint32 = 81
	SIMDV128Bitselect uint32 = 82
	SIMDV128AnyTrue  uint32 = 83

	SIMDI8x16Abs     uint32 = 96
	SIMDI8x16Neg     uint32 = 97
	SIMDI8x16AllTrue uint32 = 99
	SIMDI8x16Bitmask uint32 = 100
	SIMDI8x16Shl     uint32 = 107
	SIMDI8x16ShrS    uint32 = 108
	SIMDI8x16ShrU    uint32 = 109
	SIMDI8x16Add     uint32 = 110
	SIMDI8x16AddSatS uint32 = 111
	SIMDI8x16AddSatU uint32 = 112
	SIMDI8x16Sub     uint32 = 113
	SIMDI8x16SubSatS uint32 = 114
	SIMDI8x16SubSatU uint32 = 115
	SIMDI8x16MinS    uint32 = 118
	SIMDI8x16MinU    uint32 = 119
	SIMDI8x16MaxS    uint32 = 120
	SIMDI8x16MaxU    uint32 = 121

	SIMDI16x8Abs     uint32 = 128
	SIMDI16x8Neg     uint32 = 129
	SIMDI16x8AllTrue uint32 = 131
	SIMDI16x8Bitmask uint32 = 132
	SIMDI16x8Shl     uint32 = 139
	SIMDI16x8ShrS    uint32 = 140
	SIMDI16x8ShrU    uint32 = 141
	SIMDI16x8Add     uint32 = 142
	SIMDI16x8AddSatS uint32 = 143
	SIMDI16x8AddSatU uint32 = 144
	SIMDI16x8Sub     uint32 = 145
	SIMDI16x8SubSatS uint32 = 146
	SIMDI16x8SubSatU uint32 = 147
	SIMDI16x8Mul     uint32 = 149
	SIMDI16x8MinS    uint32 = 150
	SIMDI16x8MinU    uint32 = 151
	SIMDI16x8MaxS    uint32 = 152
	SIMDI16x8MaxU    uint32 = 153

	SIMDI32x4Abs     uint32 = 160
	SIMDI32x4Neg     uint32 = 161
	SIMDI32x4AllTrue uint32 = 163
	SIMDI32x4Bitmask uint32 = 164
	SIMDI32x4Shl     uint32 = 171
	SIMDI32x4ShrS    uint32 = 172
	SIMDI32x4ShrU    uint32 = 173
	SIMDI32x4Add     uint32 = 174
	SIMDI32x4Sub     uint32 = 177
	SIMDI32x4Mul     uint32 = 181
	SIMDI32x4MinS    uint32 = 182
	SIMDI32x4MinU    uint32 = 183
	SIMDI32x4MaxS    uint32 = 184
	SIMDI32x4MaxU    uint32 = 185

	SIMDI64x2Abs uint32 = 192
	SIMDI64x2Neg uint32 = 193
	SIMDI64x2Shl uint32 = 203
	SIMDI64x2ShrS uint32 = 204
	SIMDI64x2ShrU uint32 = 205
	SIMDI64x2Add uint32 = 206
	SIMDI64x2Sub uint32 = 209
	SIMDI64x2Mul uint32 = 213

	SIMDF32x4Ceil    uint32 = 103
	SIMDF32x4Floor   uint32 = 104
	SIMDF32x4Trunc   uint32 = 105
	SIMDF32x4Nearest uint32 = 106
	SIMDF32x4Abs     uint32 = 224
	SIMDF32x4Neg     uint32 = 225
	SIMDF32x4Sqrt     uint32 = 227
	SIMDF32x4Add     uint32 = 228
	SIMDF32x4Sub     uint32 = 229
	SIMDF32x4Mul     uint32 = 230
	SIMDF32x4Div     uint32 = 231
	SIMDF32x4Min     uint32 = 232
	SIMDF32x4Max     uint32 = 233

	SIMDF64x2Ceil    uint32 = 116
	SIMDF64x2Floor   uint32 = 117
	SIMDF64x2Trunc   uint32 = 122
	SIMDF64x2Nearest uint32 = 148
	SIMDF64x2Abs     uint32 = 236
	SIMDF64x2Neg     uint32 = 237
	SIMDF64x2Sqrt     uint32 = 239
	SIMDF64x2Add     uint32 = 240
	SIMDF64x2Sub     uint32 = 241
	SIMDF64x2Mul     uint32 = 242
	SIMDF64x2Div     uint32 = 243
	SIMDF64x2Min     uint32 = 244
	SIMDF64x2Max     uint32 = 245

	SIMDI32x4TruncSatF32x4S uint32 = 248
	SIMDI32x4TruncSatF32x4U uint32 = 249
	SIMDF32x4ConvertI32x4S  uint32 = 250
	SIMDF32x4ConvertI32x4U  uint32 = 251
)
