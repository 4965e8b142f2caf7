// Package wasmgen lowers an ir.Module into a byte-exact binary
// WebAssembly module. The binary-format constants below are the byte
// vocabulary used by the writer; values are taken from the WebAssembly
// 1.0/2.0 core specification's opcode and section tables.
package wasmgen

// Magic and Version are the module preamble: "\0asm" followed by the
// binary format version word.
var (
	Magic   = [4]byte{0x00, 0x61, 0x73, 0x6d}
	Version = [4]byte{0x01, 0x00, 0x00, 0x00}
)

// Section IDs.
const (
	sectionType      byte = 1
	sectionImport    byte = 2
	sectionFunction  byte = 3
	sectionMemory    byte = 5
	sectionGlobal    byte = 6
	sectionExport    byte = 7
	sectionStart     byte = 8
	sectionCode      byte = 10
	sectionDataCount byte = 12
)

// Import/export descriptor kinds.
const (
	kindFunc   byte = 0
	kindMemory byte = 2
	kindGlobal byte = 3
)

// Value type encodings.
const (
	valI32 byte = 0x7F
	valI64 byte = 0x7E
	valF64 byte = 0x7C
)

const funcTypeTag byte = 0x60

// blockTypeVoid is the empty block type for block/loop constructs.
const blockTypeVoid byte = 0x40

// Control/parametric/variable opcodes.
const (
	opUnreachable byte = 0x00
	opNop         byte = 0x01
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrIf        byte = 0x0D
	opReturn      byte = 0x0F
	opCall        byte = 0x10
	opDrop        byte = 0x1A
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opGlobalGet   byte = 0x23
	opGlobalSet   byte = 0x24
)

// Memory opcodes.
const (
	opI64Load    byte = 0x29
	opI64Store   byte = 0x37
	opMemoryGrow byte = 0x40
)

// Constant opcodes.
const (
	opI64Const byte = 0x42
	opF64Const byte = 0x44
)

// i64 comparison opcodes.
const (
	opI64Eqz byte = 0x50
	opI64Eq  byte = 0x51
	opI64Ne  byte = 0x52
	opI64LtS byte = 0x53
	opI64GtS byte = 0x55
	opI64LeS byte = 0x57
	opI64GeS byte = 0x59
)

// i64 numeric opcodes.
const (
	opI64Add  byte = 0x7C
	opI64Sub  byte = 0x7D
	opI64Mul  byte = 0x7E
	opI64DivS byte = 0x7F
	opI64RemS byte = 0x81
)

// f64 numeric opcodes.
const (
	opF64Abs  byte = 0x99
	opF64Neg  byte = 0x9A
	opF64Sqrt byte = 0x9F
	opF64Min  byte = 0xA4
	opF64Max  byte = 0xA5
)

// Conversion opcodes.
const (
	opI32WrapI64     byte = 0xA7
	opI64ExtendI32S  byte = 0xAC
	opI64ExtendI32U  byte = 0xAD
	opF64ConvertI64S byte = 0xB9
	opI64TruncF64S   byte = 0xB0
)
