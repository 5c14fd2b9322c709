// Package disasm reconstructs textual BURST assembly from a bytecode
// image. It is the mirror image of the interpreter's decode path: both
// are driven by the same vm.SizeOf table, so a divergence between them
// would be a bug rather than a design choice (see spec.md's design notes
// on a single shared size table).
package disasm

import (
	"fmt"

	"github.com/phroun/burst-sub000/vm"
)

// fallbackSize is how far disassemble_at advances over an opcode byte it
// does not recognise - just past the 16-bit header, so a scan over a
// data blob or future opcode never gets stuck.
const fallbackSize = 2

// Instruction is one decoded, rendered line of disassembly.
type Instruction struct {
	Address  uint32
	Bytes    []byte
	Text     string
	Size     uint32
	NextAddr uint32
}

// signExtend16 mirrors the unexported helper in vm's decoder - duplicated
// here rather than exported from vm, since it is a one-line arithmetic
// identity, not shared state. JMP/CALL carry an absolute addr24, not a
// signed offset, so there is no 24-bit counterpart to sign-extend.
func signExtend16(v uint16) int32 { return int32(int16(v)) }

// At disassembles the single instruction at addr. mem is read via plain
// byte indexing (not vm.Memory's bounds-checked accessors) so a caller
// can disassemble a standalone byte slice as well as a live VM's image.
func At(mem []byte, addr uint32) (Instruction, error) {
	if int(addr)+2 > len(mem) {
		return Instruction{}, fmt.Errorf("disasm: address 0x%08X out of range", addr)
	}
	raw16 := uint16(mem[addr]) | uint16(mem[addr+1])<<8
	hdr := vm.Header{
		Cond:   byte(raw16>>vm.HeaderCondShift) & 0x7,
		Flags5: byte(raw16>>vm.HeaderFlagsShift) & vm.HeaderFlagsMask,
		Opcode: byte(raw16) & vm.HeaderOpcodeMask,
	}

	sz := vm.SizeOf(hdr.Opcode)
	if sz == 0 {
		text := fmt.Sprintf("db 0x%02X 0x%02X", mem[addr], mem[addr+1])
		return Instruction{
			Address:  addr,
			Bytes:    append([]byte(nil), mem[addr:addr+2]...),
			Text:     text,
			Size:     fallbackSize,
			NextAddr: addr + fallbackSize,
		}, nil
	}

	if int(addr)+int(sz) > len(mem) {
		return Instruction{}, fmt.Errorf("disasm: instruction at 0x%08X extends past end of memory", addr)
	}
	body := mem[addr+2 : addr+sz]

	text, err := render(hdr, body)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Address:  addr,
		Bytes:    append([]byte(nil), mem[addr:addr+sz]...),
		Text:     text,
		Size:     sz,
		NextAddr: addr + sz,
	}, nil
}

// Range disassembles every instruction whose address falls in [start,
// end), guarding against a zero-size step (which only fires if
// vm.SizeOf and the fallback logic above ever disagree) so a malformed
// image can never wedge the caller into an infinite loop.
func Range(mem []byte, start, end uint32) ([]Instruction, error) {
	var out []Instruction
	addr := start
	for addr < end {
		inst, err := At(mem, addr)
		if err != nil {
			return out, err
		}
		out = append(out, inst)
		if inst.NextAddr <= addr {
			return out, fmt.Errorf("disasm: zero-progress step at 0x%08X", addr)
		}
		addr = inst.NextAddr
	}
	return out, nil
}

// Count disassembles up to n instructions starting at start.
func Count(mem []byte, start uint32, n int) ([]Instruction, error) {
	var out []Instruction
	addr := start
	for i := 0; i < n; i++ {
		inst, err := At(mem, addr)
		if err != nil {
			return out, err
		}
		out = append(out, inst)
		if inst.NextAddr <= addr {
			return out, fmt.Errorf("disasm: zero-progress step at 0x%08X", addr)
		}
		addr = inst.NextAddr
	}
	return out, nil
}

func condPrefix(cond byte) string {
	if cond == vm.CondALWAYS {
		return ""
	}
	return "if" + vm.CondName(cond) + " "
}

func reg(n int) string { return fmt.Sprintf("r%d", n) }

func memOperand(base int, offset int32) string {
	if offset == 0 {
		return fmt.Sprintf("[%s]", reg(base))
	}
	if offset < 0 {
		return fmt.Sprintf("[%s-%d]", reg(base), -offset)
	}
	return fmt.Sprintf("[%s+%d]", reg(base), offset)
}

// render reconstructs the "<mnemonic> <operands>" text for a known
// opcode; the caller prepends the condition prefix.
func render(hdr vm.Header, body []byte) (string, error) {
	mnemonic := vm.MnemonicOf(hdr.Opcode)
	prefix := condPrefix(hdr.Cond)

	switch hdr.Opcode {
	case vm.OpNOP, vm.OpHALT, vm.OpSYSCALL, vm.OpRET, vm.OpRETI, vm.OpLEAVE:
		return prefix + mnemonic, nil

	case vm.OpMOV, vm.OpCMP:
		dest, src := int(body[0]&0xF), int(body[0]>>4)&0xF
		return fmt.Sprintf("%s%s %s, %s", prefix, mnemonic, reg(dest), reg(src)), nil

	case vm.OpPUSH, vm.OpPOP, vm.OpINC, vm.OpDEC, vm.OpNEG, vm.OpNOT, vm.OpJMPR, vm.OpCALLI:
		r := int(body[0] & 0xF)
		return fmt.Sprintf("%s%s %s", prefix, mnemonic, reg(r)), nil

	case vm.OpLOAD, vm.OpLOADB:
		dest, base := int(body[0]&0xF), int(body[0]>>4)&0xF
		off := int32(int8(body[1]))
		return fmt.Sprintf("%s%s %s, %s", prefix, mnemonic, reg(dest), memOperand(base, off)), nil

	case vm.OpSTORE, vm.OpSTOREB:
		src, base := int(body[0]&0xF), int(body[0]>>4)&0xF
		off := int32(int8(body[1]))
		return fmt.Sprintf("%s%s %s, %s", prefix, mnemonic, memOperand(base, off), reg(src)), nil

	case vm.OpADDI:
		dest, src := int(body[0]&0xF), int(body[0]>>4)&0xF
		imm := int32(int8(body[1]))
		return fmt.Sprintf("%s%s %s, %s, #%d", prefix, mnemonic, reg(dest), reg(src), imm), nil

	case vm.OpCMPI:
		src := int(body[0]>>4) & 0xF
		imm := int32(int8(body[1]))
		return fmt.Sprintf("%s%s %s, #%d", prefix, mnemonic, reg(src), imm), nil

	case vm.OpTRAP:
		return fmt.Sprintf("%s%s #%d", prefix, mnemonic, int(body[0])), nil

	case vm.OpADD, vm.OpSUB, vm.OpMUL, vm.OpDIV, vm.OpMOD, vm.OpAND, vm.OpOR, vm.OpXOR,
		vm.OpSHL, vm.OpSHR, vm.OpSAR, vm.OpROL, vm.OpROR:
		dest := int(body[0] & 0xF)
		s1, s2 := int(body[1]&0xF), int(body[1]>>4)&0xF
		return fmt.Sprintf("%s%s %s, %s, %s", prefix, mnemonic, reg(dest), reg(s1), reg(s2)), nil

	case vm.OpMOVI, vm.OpMOVHI:
		r := int(body[0] & 0xF)
		raw := uint16(body[2]) | uint16(body[3])<<8
		imm := signExtend16(raw)
		return fmt.Sprintf("%s%s %s, #%d", prefix, mnemonic, reg(r), imm), nil

	case vm.OpENTER:
		raw := uint16(body[2]) | uint16(body[3])<<8
		return fmt.Sprintf("%s%s #%d", prefix, mnemonic, raw), nil

	case vm.OpJMP, vm.OpCALL:
		addr := uint32(body[0]) | uint32(body[1])<<8 | uint32(body[2])<<16
		return fmt.Sprintf("%s%s 0x%06X", prefix, mnemonic, addr), nil

	case vm.OpLIMM:
		r := int(body[0] & 0xF)
		imm := uint32(body[2]) | uint32(body[3])<<8 | uint32(body[4])<<16 | uint32(body[5])<<24
		return fmt.Sprintf("%s%s %s, #0x%08X", prefix, mnemonic, reg(r), imm), nil
	}

	return "", fmt.Errorf("disasm: unhandled opcode 0x%02X", hdr.Opcode)
}
