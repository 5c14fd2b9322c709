package parser

import (
	"strings"

	"github.com/phroun/burst-sub000/vm"
)

// OperandKind classifies what syntactic form an operand slot accepts.
type OperandKind int

const (
	KindReg  OperandKind = iota // rN
	KindImm                     // #N or #label
	KindMem                     // [rN] or [rN+off]
	KindAddr                    // bare N or label (JMP/CALL target)
)

// InstSpec is the table-driven description of one base mnemonic's operand
// shape, used both to validate operand count/type and to pick the right
// encode routine.
type InstSpec struct {
	Opcode   byte
	Operands []OperandKind
}

// instSpecs is keyed by canonical (non-aliased) mnemonic. It is the
// operand-shape half of the size table in vm.SizeOf - together they are
// everything the assembler needs to know about an opcode's syntax.
var instSpecs = map[string]InstSpec{
	"nop":     {vm.OpNOP, nil},
	"halt":    {vm.OpHALT, nil},
	"syscall": {vm.OpSYSCALL, nil},
	"ret":     {vm.OpRET, nil},
	"reti":    {vm.OpRETI, nil},
	"leave":   {vm.OpLEAVE, nil},

	"mov": {vm.OpMOV, []OperandKind{KindReg, KindReg}},
	"cmp": {vm.OpCMP, []OperandKind{KindReg, KindReg}},

	"push":  {vm.OpPUSH, []OperandKind{KindReg}},
	"pop":   {vm.OpPOP, []OperandKind{KindReg}},
	"inc":   {vm.OpINC, []OperandKind{KindReg}},
	"dec":   {vm.OpDEC, []OperandKind{KindReg}},
	"neg":   {vm.OpNEG, []OperandKind{KindReg}},
	"not":   {vm.OpNOT, []OperandKind{KindReg}},
	"jmpr":  {vm.OpJMPR, []OperandKind{KindReg}},
	"calli": {vm.OpCALLI, []OperandKind{KindReg}},

	"load":   {vm.OpLOAD, []OperandKind{KindReg, KindMem}},
	"store":  {vm.OpSTORE, []OperandKind{KindMem, KindReg}},
	"loadb":  {vm.OpLOADB, []OperandKind{KindReg, KindMem}},
	"storeb": {vm.OpSTOREB, []OperandKind{KindMem, KindReg}},

	"addi": {vm.OpADDI, []OperandKind{KindReg, KindReg, KindImm}},
	"cmpi": {vm.OpCMPI, []OperandKind{KindReg, KindImm}},
	"trap": {vm.OpTRAP, []OperandKind{KindImm}},

	"add": {vm.OpADD, []OperandKind{KindReg, KindReg, KindReg}},
	"sub": {vm.OpSUB, []OperandKind{KindReg, KindReg, KindReg}},
	"mul": {vm.OpMUL, []OperandKind{KindReg, KindReg, KindReg}},
	"div": {vm.OpDIV, []OperandKind{KindReg, KindReg, KindReg}},
	"mod": {vm.OpMOD, []OperandKind{KindReg, KindReg, KindReg}},
	"and": {vm.OpAND, []OperandKind{KindReg, KindReg, KindReg}},
	"or":  {vm.OpOR, []OperandKind{KindReg, KindReg, KindReg}},
	"xor": {vm.OpXOR, []OperandKind{KindReg, KindReg, KindReg}},
	"shl": {vm.OpSHL, []OperandKind{KindReg, KindReg, KindReg}},
	"shr": {vm.OpSHR, []OperandKind{KindReg, KindReg, KindReg}},
	"sar": {vm.OpSAR, []OperandKind{KindReg, KindReg, KindReg}},
	"rol": {vm.OpROL, []OperandKind{KindReg, KindReg, KindReg}},
	"ror": {vm.OpROR, []OperandKind{KindReg, KindReg, KindReg}},

	"movi":  {vm.OpMOVI, []OperandKind{KindReg, KindImm}},
	"movhi": {vm.OpMOVHI, []OperandKind{KindReg, KindImm}},
	"enter": {vm.OpENTER, []OperandKind{KindImm}},

	"jmp":  {vm.OpJMP, []OperandKind{KindAddr}},
	"call": {vm.OpCALL, []OperandKind{KindAddr}},
	"limm": {vm.OpLIMM, []OperandKind{KindReg, KindImm}},
}

// legacyAlias is one entry of the legacy-mnemonic table: a pre-condition-
// prefix mnemonic spelling that expands to "if<cond> <base>".
type legacyAlias struct {
	Cond byte
	Base string
}

// legacyAliases carries forward the mnemonics the ISA's conditional-jump
// and conditional-move opcodes were folded into once JZ/JNZ/... stopped
// being distinct opcodes (see spec.md's redesign notes). The assembler
// still accepts them so existing source keeps assembling.
var legacyAliases = map[string]legacyAlias{
	"jz":  {vm.CondEQ, "jmp"},
	"jnz": {vm.CondNE, "jmp"},
	"jlt": {vm.CondLT, "jmp"},
	"jle": {vm.CondLE, "jmp"},
	"jgt": {vm.CondGT, "jmp"},
	"jge": {vm.CondGE, "jmp"},

	"jeq":    {vm.CondEQ, "jmp"},
	"jne":    {vm.CondNE, "jmp"},
	"jalways": {vm.CondALWAYS, "jmp"},

	"moveq": {vm.CondEQ, "mov"},
	"movne": {vm.CondNE, "mov"},
	"movnz": {vm.CondNE, "mov"},
	"movlt": {vm.CondLT, "mov"},
	"movle": {vm.CondLE, "mov"},
	"movgt": {vm.CondGT, "mov"},
	"movge": {vm.CondGE, "mov"},

	"calleq": {vm.CondEQ, "call"},
	"callne": {vm.CondNE, "call"},
}

// Resolved is the outcome of resolving a line's mnemonic word(s) to a
// concrete condition and base instruction spec.
type Resolved struct {
	Cond byte
	Base string
	Spec InstSpec
}

// ResolveMnemonic implements the three-step resolution order from
// spec.md §4.6: strip a leading "if<cond>" prefix if present, else try
// the legacy-alias table, else require mnemonic to already name a base
// opcode. operandText is the raw text following the line's first word
// (Line.Mnemonic); when mnemonic is a condition prefix, operandText's own
// first word is the base mnemonic and is consumed here too.
func ResolveMnemonic(mnemonic, operandText string, pos Position, raw string) (Resolved, []string, error) {
	mnemonic = strings.ToLower(mnemonic)

	if mnemonic == "if" || strings.HasPrefix(mnemonic, "if") {
		suffix := strings.TrimPrefix(mnemonic, "if")
		if cond, ok := vm.CondBySuffix(suffix); ok {
			baseWord, rest := splitFirstWord(operandText)
			if baseWord == "" {
				return Resolved{}, nil, NewErrorWithLine(pos, ErrSyntax,
					"'"+mnemonic+"' prefix with no instruction following it", raw)
			}
			base := strings.ToLower(baseWord)
			spec, ok := instSpecs[base]
			if !ok {
				return Resolved{}, nil, NewErrorWithLine(pos, ErrUnknownMnemonic,
					"unknown base mnemonic after condition prefix: "+base, raw)
			}
			return Resolved{Cond: cond, Base: base, Spec: spec}, splitOperands(rest), nil
		}
	}

	if alias, ok := legacyAliases[mnemonic]; ok {
		spec := instSpecs[alias.Base]
		return Resolved{Cond: alias.Cond, Base: alias.Base, Spec: spec}, splitOperands(operandText), nil
	}

	if spec, ok := instSpecs[mnemonic]; ok {
		return Resolved{Cond: vm.CondALWAYS, Base: mnemonic, Spec: spec}, splitOperands(operandText), nil
	}

	return Resolved{}, nil, NewErrorWithLine(pos, ErrUnknownMnemonic, "unknown mnemonic: "+mnemonic, raw)
}
