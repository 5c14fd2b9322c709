package vm

// execMemOp executes LOAD/STORE/LOADB/STOREB: reg <-> [base+offset8].
func (v *VM) execMemOp(pc uint32, opcode byte, ops []byte) error {
	reg, base, offset := memOpOperands(ops)
	addr := v.Regs.Get(base) + uint32(offset)

	switch opcode {
	case OpLOAD:
		val, err := v.Mem.ReadWord(pc, addr)
		if err != nil {
			return err
		}
		v.Regs.Set(reg, val)
	case OpSTORE:
		if err := v.Mem.WriteWord(pc, addr, v.Regs.Get(reg)); err != nil {
			return err
		}
		if v.MemTrace != nil {
			v.MemTrace.recordWrite(v.Cycles, pc, addr, 4)
		}
	case OpLOADB:
		val, err := v.Mem.ReadByte(pc, addr)
		if err != nil {
			return err
		}
		v.Regs.Set(reg, uint32(val))
	case OpSTOREB:
		if err := v.Mem.WriteByte(pc, addr, byte(v.Regs.Get(reg))); err != nil {
			return err
		}
		if v.MemTrace != nil {
			v.MemTrace.recordWrite(v.Cycles, pc, addr, 1)
		}
	default:
		return unknownOpcode(pc, opcode)
	}
	return nil
}
