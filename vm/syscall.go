package vm

import (
	"math/rand"
	"time"
)

// execSyscall dispatches on R0. Unrecognised numbers set R0 = SysNOSYS
// and execution continues - per the syscall layer's design, an
// unimplemented number is a recoverable condition for the guest program,
// not a VM failure.
func (v *VM) execSyscall(pc uint32) error {
	num := v.Regs.Get(0)
	switch num {
	case SyscallAlloc:
		size := v.Regs.Get(1)
		v.Regs.Set(0, v.Heap.Alloc(size))
	case SyscallFree:
		addr := v.Regs.Get(1)
		if v.Heap.Free(addr) {
			v.Regs.Set(0, SysOK)
		} else {
			v.Regs.Set(0, SysINVALID)
		}
	case SyscallRealloc:
		addr := v.Regs.Get(1)
		newSize := v.Regs.Get(2)
		v.Regs.Set(0, v.Heap.Realloc(v.Mem, addr, newSize))

	case SyscallExit:
		code := v.Regs.Get(1)
		v.ExitCode = int32(code)
		v.Regs.Set(0, code)
		v.Halted = true

	case SyscallPrint:
		ptr := v.Regs.Get(1)
		length := v.Regs.Get(2)
		data, err := v.Mem.ReadBytes(pc, ptr, length)
		if err != nil {
			return err
		}
		n, _ := v.OutputWriter.Write(data)
		v.Regs.Set(0, uint32(n))
	case SyscallPutchar:
		ch := byte(v.Regs.Get(1))
		_, _ = v.OutputWriter.Write([]byte{ch})
		v.Regs.Set(0, 1)

	case SyscallGetTime:
		v.Regs.Set(0, uint32(time.Now().Unix()))
	case SyscallGetRandom:
		bound := v.Regs.Get(1)
		if bound == 0 {
			v.Regs.Set(0, 0)
		} else {
			v.Regs.Set(0, uint32(rand.Int63n(int64(bound))))
		}

	default:
		v.Regs.Set(0, SysNOSYS)
	}
	return nil
}
