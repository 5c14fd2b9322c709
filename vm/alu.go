package vm

// Flag computation is bundled with each arithmetic/logical operation kind
// rather than routed through one generic "update flags" helper that takes
// boolean parameters - carry and overflow differ per operation class, and
// a shared helper invites the class of bug where it gets called with the
// wrong booleans for the instruction at hand.

func threeRegOperands(ops []byte) (dest, src1, src2 int) {
	dest = int(ops[0] & 0xF)
	src1 = int(ops[1] & 0xF)
	src2 = int(ops[1]>>4) & 0xF
	return
}

func regPairOperands(ops []byte) (dest, src int) {
	dest = int(ops[0] & 0xF)
	src = int(ops[0]>>4) & 0xF
	return
}

func singleRegOperand(ops []byte) int {
	return int(ops[0] & 0xF)
}

func imm8RegOperands(ops []byte) (dest, src int, imm int32) {
	dest = int(ops[0] & 0xF)
	src = int(ops[0]>>4) & 0xF
	imm = int32(signExtend8(ops[1]))
	return
}

func memOpOperands(ops []byte) (reg, base int, offset int32) {
	reg = int(ops[0] & 0xF)
	base = int(ops[0]>>4) & 0xF
	offset = int32(signExtend8(ops[1]))
	return
}

// execALU3 executes the thirteen 3-register arithmetic/logical/shift
// opcodes: dest <- src1 OP src2.
func (v *VM) execALU3(pc uint32, opcode byte, ops []byte) error {
	dest, s1, s2 := threeRegOperands(ops)
	a := v.Regs.Get(s1)
	b := v.Regs.Get(s2)

	var result uint32
	switch opcode {
	case OpADD:
		sum := uint64(a) + uint64(b)
		result = uint32(sum)
		v.Flags.C = sum > 0xFFFFFFFF
		v.Flags.V = ((a^result)&(b^result))&0x80000000 != 0
	case OpSUB:
		result = a - b
		v.Flags.C = a < b
		v.Flags.V = ((a^b)&(a^result))&0x80000000 != 0
	case OpMUL:
		result = uint32(uint64(a) * uint64(b))
		v.Flags.C, v.Flags.V = false, false
	case OpDIV:
		if b == 0 {
			return divByZero(pc)
		}
		result = uint32(int32(a) / int32(b))
		v.Flags.C, v.Flags.V = false, false
	case OpMOD:
		if b == 0 {
			return divByZero(pc)
		}
		result = uint32(int32(a) % int32(b))
		v.Flags.C, v.Flags.V = false, false
	case OpAND:
		result = a & b
		v.Flags.C, v.Flags.V = false, false
	case OpOR:
		result = a | b
		v.Flags.C, v.Flags.V = false, false
	case OpXOR:
		result = a ^ b
		v.Flags.C, v.Flags.V = false, false
	case OpSHL:
		shift := b & 0x1F
		result = a << shift
		v.Flags.C, v.Flags.V = false, false
	case OpSHR:
		shift := b & 0x1F
		result = a >> shift
		v.Flags.C, v.Flags.V = false, false
	case OpSAR:
		shift := b & 0x1F
		result = uint32(int32(a) >> shift)
		v.Flags.C, v.Flags.V = false, false
	case OpROL:
		shift := b & 0x1F
		result = (a << shift) | (a >> (32 - shift))
		v.Flags.C, v.Flags.V = false, false
	case OpROR:
		shift := b & 0x1F
		result = (a >> shift) | (a << (32 - shift))
		v.Flags.C, v.Flags.V = false, false
	default:
		return unknownOpcode(pc, opcode)
	}

	v.Flags.setZN(result)
	v.Regs.Set(dest, result)
	return nil
}

// execImm8 executes ADDI/CMPI: dest <- src + imm8 (ADDI writes dest; CMPI
// only sets flags, mirroring CMP).
func (v *VM) execImm8(pc uint32, opcode byte, ops []byte) error {
	dest, src, imm := imm8RegOperands(ops)
	a := v.Regs.Get(src)
	b := uint32(imm)

	sum := uint64(a) + uint64(b)
	result := uint32(sum)
	v.Flags.C = sum > 0xFFFFFFFF
	v.Flags.V = ((a^result)&(b^result))&0x80000000 != 0
	v.Flags.setZN(result)

	if opcode == OpADDI {
		v.Regs.Set(dest, result)
	}
	return nil
}

// execRegPair executes MOV (dest <- src, no flags) and CMP (dest - src,
// flags only, no write).
func (v *VM) execRegPair(pc uint32, opcode byte, ops []byte) error {
	dest, src := regPairOperands(ops)
	switch opcode {
	case OpMOV:
		v.Regs.Set(dest, v.Regs.Get(src))
		return nil
	case OpCMP:
		a := v.Regs.Get(dest)
		b := v.Regs.Get(src)
		result := a - b
		v.Flags.C = a < b
		v.Flags.V = ((a^b)&(a^result))&0x80000000 != 0
		v.Flags.setZN(result)
		return nil
	}
	return unknownOpcode(pc, opcode)
}

// execSingleReg executes the single-register-operand class: stack ops,
// INC/DEC/NEG/NOT, and the register-indirect control transfers.
func (v *VM) execSingleReg(pc uint32, opcode byte, ops []byte) error {
	reg := singleRegOperand(ops)
	switch opcode {
	case OpPUSH:
		return v.pushWord(pc, v.Regs.Get(reg))
	case OpPOP:
		val, err := v.popWord(pc)
		if err != nil {
			return err
		}
		v.Regs.Set(reg, val)
		return nil
	case OpINC:
		result := v.Regs.Get(reg) + 1
		v.Flags.setZN(result)
		v.Regs.Set(reg, result)
		return nil
	case OpDEC:
		result := v.Regs.Get(reg) - 1
		v.Flags.setZN(result)
		v.Regs.Set(reg, result)
		return nil
	case OpNEG:
		result := -v.Regs.Get(reg)
		v.Flags.setZN(result)
		v.Regs.Set(reg, result)
		return nil
	case OpNOT:
		result := ^v.Regs.Get(reg)
		v.Flags.setZN(result)
		v.Regs.Set(reg, result)
		return nil
	case OpJMPR:
		v.Regs.PC = v.Regs.Get(reg)
		return nil
	case OpCALLI:
		target := v.Regs.Get(reg)
		if err := v.pushWord(pc, v.Regs.PC); err != nil {
			return err
		}
		v.Regs.PC = target
		return nil
	}
	return unknownOpcode(pc, opcode)
}
