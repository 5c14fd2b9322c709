package parser

import (
	"fmt"

	"github.com/phroun/burst-sub000/vm"
)

// validateCount checks operand count against spec before any per-operand
// parsing runs, so a count mismatch reports the precise message called
// for in spec.md §4.6 ("`add` expects 3 operands, got 2") rather than an
// index-out-of-range a field-by-field decode would produce.
func validateCount(base string, want int, got int, pos Position, raw string) error {
	if got != want {
		return NewErrorWithLine(pos, ErrBadOperand,
			fmt.Sprintf("'%s' expects %d operand(s), got %d", base, want, got), raw)
	}
	return nil
}

// encodeInstruction turns a resolved mnemonic and its raw operand strings
// into the instruction's header + operand bytes. Pass 1 never calls it
// (sizes come from vm.SizeOf); pass 2 always supplies res, while
// AssembleLine without a lookup passes nil, so label operands encode as 0.
func encodeInstruction(r Resolved, operands []string, res resolver, pos Position, raw string) ([]byte, error) {
	spec := r.Spec
	if err := validateCount(r.Base, len(spec.Operands), len(operands), pos, raw); err != nil {
		return nil, err
	}

	sz := vm.SizeOf(spec.Opcode)
	body := make([]byte, sz-2)

	switch r.Base {
	case "nop", "halt", "syscall", "ret", "reti", "leave":
		// no operands

	case "mov", "cmp":
		dest, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		src, err := parseRegister(operands[1], pos, raw)
		if err != nil {
			return nil, err
		}
		body[0] = byte(dest&0xF) | byte(src&0xF)<<4

	case "push", "pop", "inc", "dec", "neg", "not", "jmpr", "calli":
		reg, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		body[0] = byte(reg & 0xF)

	case "load", "loadb":
		dest, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		mem, err := parseMemory(operands[1], pos, raw)
		if err != nil {
			return nil, err
		}
		body[0] = byte(dest&0xF) | byte(mem.Reg&0xF)<<4
		body[1] = byte(int8(mem.Offset))

	case "store", "storeb":
		mem, err := parseMemory(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		src, err := parseRegister(operands[1], pos, raw)
		if err != nil {
			return nil, err
		}
		body[0] = byte(src&0xF) | byte(mem.Reg&0xF)<<4
		body[1] = byte(int8(mem.Offset))

	case "addi":
		dest, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		src, err := parseRegister(operands[1], pos, raw)
		if err != nil {
			return nil, err
		}
		imm, err := parseImmediate(operands[2], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < -128 || imm > 255 {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "immediate out of range for imm8: "+operands[2], raw)
		}
		body[0] = byte(dest&0xF) | byte(src&0xF)<<4
		body[1] = byte(int8(imm))

	case "cmpi":
		src, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		imm, err := parseImmediate(operands[1], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < -128 || imm > 255 {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "immediate out of range for imm8: "+operands[1], raw)
		}
		body[0] = byte(src&0xF) << 4
		body[1] = byte(int8(imm))

	case "trap":
		imm, err := parseImmediate(operands[0], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < -128 || imm > 255 {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "trap number out of range for imm8: "+operands[0], raw)
		}
		body[0] = byte(int8(imm))

	case "add", "sub", "mul", "div", "mod", "and", "or", "xor", "shl", "shr", "sar", "rol", "ror":
		dest, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		s1, err := parseRegister(operands[1], pos, raw)
		if err != nil {
			return nil, err
		}
		s2, err := parseRegister(operands[2], pos, raw)
		if err != nil {
			return nil, err
		}
		body[0] = byte(dest & 0xF)
		body[1] = byte(s1&0xF) | byte(s2&0xF)<<4

	case "movi", "movhi":
		reg, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		imm, err := parseImmediate(operands[1], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < -32768 || imm > 65535 {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "immediate out of range for imm16: "+operands[1], raw)
		}
		body[0] = byte(reg & 0xF)
		u := uint16(imm)
		body[2], body[3] = byte(u), byte(u>>8)

	case "enter":
		imm, err := parseImmediate(operands[0], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < 0 || imm > 65535 {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "local count out of range for imm16: "+operands[0], raw)
		}
		u := uint16(imm)
		body[2], body[3] = byte(u), byte(u>>8)

	case "jmp", "call":
		addr, err := parseAddress(operands[0], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if addr < 0 || addr > 0xFFFFFF {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "address out of range for addr24: "+operands[0], raw)
		}
		u := uint32(addr)
		body[0], body[1], body[2] = byte(u), byte(u>>8), byte(u>>16)

	case "limm":
		reg, err := parseRegister(operands[0], pos, raw)
		if err != nil {
			return nil, err
		}
		imm, err := parseImmediate(operands[1], res, pos, raw)
		if err != nil {
			return nil, err
		}
		if imm < 0 || imm > 0xFFFFFFFF {
			return nil, NewErrorWithLine(pos, ErrOutOfRange, "immediate out of range for imm32: "+operands[1], raw)
		}
		body[0] = byte(reg & 0xF)
		u := uint32(imm)
		body[2], body[3], body[4], body[5] = byte(u), byte(u>>8), byte(u>>16), byte(u>>24)

	default:
		return nil, NewErrorWithLine(pos, ErrUnknownMnemonic, "unknown mnemonic: "+r.Base, raw)
	}

	hdr := vm.EncodeHeader(vm.Header{Cond: r.Cond, Opcode: spec.Opcode})
	out := make([]byte, sz)
	out[0], out[1] = byte(hdr), byte(hdr>>8)
	copy(out[2:], body)
	return out, nil
}
