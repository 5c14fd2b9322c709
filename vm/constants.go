package vm

// Memory layout. The first ReservedSize bytes hold the loaded program,
// static data and the initial stack frames; the allocator owns
// [HeapStart, MemorySize) from boot.
const (
	DefaultMemorySize = 1 << 20 // 1 MiB
	ReservedSize      = 0x10000
	HeapStart         = ReservedSize

	NumRegisters = 16
	FrameReg     = 15 // R15, frame pointer used by ENTER/LEAVE
)

// Opcodes. Grouped by the instruction-size class they belong to (see
// SizeOf); the grouping is what matters for decode/encode, the numeric
// values are otherwise arbitrary.
const (
	// Nullary, size 2.
	OpNOP     = 0x00
	OpHALT    = 0x01
	OpSYSCALL = 0x02
	OpRET     = 0x03
	OpRETI    = 0x04
	OpLEAVE   = 0x05

	// Register-pair / single-register / mem-op, size 4.
	OpMOV    = 0x10
	OpCMP    = 0x11
	OpPUSH   = 0x12
	OpPOP    = 0x13
	OpINC    = 0x14
	OpDEC    = 0x15
	OpNEG    = 0x16
	OpNOT    = 0x17
	OpJMPR   = 0x18
	OpCALLI  = 0x19
	OpLOAD   = 0x1A
	OpSTORE  = 0x1B
	OpLOADB  = 0x1C
	OpSTOREB = 0x1D
	OpADDI   = 0x1E
	OpCMPI   = 0x1F
	OpTRAP   = 0x20

	// 3-register arithmetic / logical / shift, size 4.
	OpADD = 0x30
	OpSUB = 0x31
	OpMUL = 0x32
	OpDIV = 0x33
	OpMOD = 0x34
	OpAND = 0x35
	OpOR  = 0x36
	OpXOR = 0x37
	OpSHL = 0x38
	OpSHR = 0x39
	OpSAR = 0x3A
	OpROL = 0x3B
	OpROR = 0x3C

	// reg + 16-bit immediate / 24-bit address, size 6.
	OpMOVI  = 0x40
	OpMOVHI = 0x41
	OpENTER = 0x42

	OpJMP  = 0x50
	OpCALL = 0x51

	// reg + 32-bit immediate, size 8.
	OpLIMM = 0x52
)

// mnemonics gives the canonical, lowercase spelling used by the
// disassembler; the assembler accepts these case-insensitively on input.
var mnemonics = map[byte]string{
	OpNOP: "nop", OpHALT: "halt", OpSYSCALL: "syscall", OpRET: "ret",
	OpRETI: "reti", OpLEAVE: "leave",

	OpMOV: "mov", OpCMP: "cmp", OpPUSH: "push", OpPOP: "pop",
	OpINC: "inc", OpDEC: "dec", OpNEG: "neg", OpNOT: "not",
	OpJMPR: "jmpr", OpCALLI: "calli", OpLOAD: "load", OpSTORE: "store",
	OpLOADB: "loadb", OpSTOREB: "storeb", OpADDI: "addi", OpCMPI: "cmpi",
	OpTRAP: "trap",

	OpADD: "add", OpSUB: "sub", OpMUL: "mul", OpDIV: "div", OpMOD: "mod",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpSHL: "shl", OpSHR: "shr",
	OpSAR: "sar", OpROL: "rol", OpROR: "ror",

	OpMOVI: "movi", OpMOVHI: "movhi", OpENTER: "enter",

	OpJMP: "jmp", OpCALL: "call", OpLIMM: "limm",
}

// MnemonicOf returns the canonical mnemonic for an opcode, or "" if the
// opcode is unrecognised.
func MnemonicOf(opcode byte) string {
	return mnemonics[opcode]
}

var opcodesByName = func() map[string]byte {
	m := make(map[string]byte, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// OpcodeByName is the inverse of MnemonicOf: it resolves a base mnemonic
// (never a legacy alias - those are resolved one layer up) to its opcode
// byte.
func OpcodeByName(name string) (byte, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

// Condition codes. The 3-bit field decomposes as (Invert, Signed, ZTest):
// bit2 = Invert, bit1 = Signed, bit0 = ZTest. See EvalCondition.
const (
	CondALWAYS = 0b000
	CondNE     = 0b001
	CondGE     = 0b010
	CondGT     = 0b011
	CondNEVER  = 0b100
	CondEQ     = 0b101
	CondLT     = 0b110
	CondLE     = 0b111
)

var condNames = map[byte]string{
	CondALWAYS: "always", CondNE: "ne", CondGE: "ge", CondGT: "gt",
	CondNEVER: "never", CondEQ: "eq", CondLT: "lt", CondLE: "le",
}

// CondName returns the lowercase condition mnemonic suffix ("eq", "ne", ...).
func CondName(cond byte) string {
	return condNames[cond&0x7]
}

// condSuffixes maps every recognised "if<suffix>" spelling, including the
// "z"/"nz" shorthands for eq/ne, to its condition code.
var condSuffixes = map[string]byte{
	"eq": CondEQ, "z": CondEQ,
	"ne": CondNE, "nz": CondNE,
	"lt": CondLT, "le": CondLE,
	"gt": CondGT, "ge": CondGE,
	"never": CondNEVER, "always": CondALWAYS,
}

// CondBySuffix resolves an "if<suffix>" spelling (suffix already lower-cased,
// without the "if") to its condition code. A bare "if" is ALWAYS.
func CondBySuffix(suffix string) (byte, bool) {
	if suffix == "" {
		return CondALWAYS, true
	}
	cond, ok := condSuffixes[suffix]
	return cond, ok
}

// Header field layout within the little-endian 16-bit instruction header.
const (
	HeaderCondShift  = 13
	HeaderFlagsShift = 8
	HeaderFlagsMask  = 0x1F
	HeaderOpcodeMask = 0xFF
)

// SizeOf returns the instruction size in bytes for an opcode, or 0 if the
// opcode is not recognised. This table is the single source of truth for
// instruction sizing - the interpreter, assembler and disassembler all
// call it rather than keeping their own copies (see design notes).
func SizeOf(opcode byte) uint32 {
	switch opcode {
	case OpNOP, OpHALT, OpSYSCALL, OpRET, OpRETI, OpLEAVE:
		return 2
	case OpMOV, OpCMP, OpPUSH, OpPOP, OpINC, OpDEC, OpNEG, OpNOT,
		OpJMPR, OpCALLI, OpLOAD, OpSTORE, OpLOADB, OpSTOREB,
		OpADDI, OpCMPI, OpTRAP,
		OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpAND, OpOR, OpXOR,
		OpSHL, OpSHR, OpSAR, OpROL, OpROR:
		return 4
	case OpMOVI, OpMOVHI, OpENTER, OpJMP, OpCALL:
		return 6
	case OpLIMM:
		return 8
	default:
		return 0
	}
}

// IsThreeRegisterALU reports whether opcode uses the 3-register ALU operand
// layout: dest in operand byte 0, src1/src2 packed into operand byte 1.
func IsThreeRegisterALU(opcode byte) bool {
	switch opcode {
	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpAND, OpOR, OpXOR,
		OpSHL, OpSHR, OpSAR, OpROL, OpROR:
		return true
	default:
		return false
	}
}
