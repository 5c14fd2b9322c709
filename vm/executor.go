package vm

import (
	"io"
	"os"
)

// TrapHandler is a host callback invoked by the TRAP instruction. Traps are
// registered out-of-band by the embedder; an unregistered trap number
// halts the VM with ErrUnhandledTrap.
type TrapHandler func(v *VM) error

// VM is the complete virtual machine: registers, flags, memory, the heap
// allocator, and everything needed to run one instruction at a time.
// Memory, Registers, Flags, Allocator and debugger-facing state are owned
// exclusively by this instance and must never be shared between VMs.
type VM struct {
	Regs   *Registers
	Flags  Flags
	Mem    *Memory
	Heap   *Allocator
	Halted bool

	Cycles   uint64
	ExitCode int32

	traps map[int]TrapHandler

	// OutputWriter receives PRINT/PUTCHAR syscall output; defaults to
	// os.Stdout so a bare VM behaves like a standalone interpreter.
	OutputWriter io.Writer

	// Trace and statistics hooks, nil unless explicitly enabled. They
	// observe execution; they never influence interpreter semantics.
	ExecTrace *ExecutionTrace
	MemTrace  *MemoryTrace
	RegTrace  *RegisterTrace
	StackTrc  *StackTrace
	Stats     *PerformanceStatistics
}

// NewVM creates a VM with DefaultMemorySize bytes of memory and SP
// initialised to the top of that memory.
func NewVM() *VM {
	return NewVMWithMemorySize(DefaultMemorySize)
}

// NewVMWithMemorySize creates a VM whose memory image is exactly size
// bytes; the heap allocator owns [HeapStart, size).
func NewVMWithMemorySize(size uint32) *VM {
	v := &VM{
		Mem:          NewMemory(size),
		Regs:         NewRegisters(size),
		Heap:         NewAllocator(HeapStart, size-HeapStart),
		Halted:       true,
		OutputWriter: os.Stdout,
		traps:        make(map[int]TrapHandler),
	}
	return v
}

// Reset restores Memory, Registers, Flags and the allocator to their
// initial state. Debugger-owned state (breakpoints etc., kept outside
// this package) is unaffected. Registered trap handlers survive reset.
func (v *VM) Reset() {
	v.Mem.Reset()
	v.Regs.Reset(v.Mem.Size())
	v.Flags = Flags{}
	v.Heap.Reset()
	v.Halted = true
	v.Cycles = 0
	v.ExitCode = 0
}

// RegisterTrap installs a host callback for TRAP n.
func (v *VM) RegisterTrap(n int, h TrapHandler) {
	v.traps[n] = h
}

// LoadProgram copies program into memory starting at addr (the caller
// retains ownership of program) and sets PC to addr. It clears Halted so
// the next Step/Run actually executes.
func (v *VM) LoadProgram(program []byte, addr uint32) error {
	if err := v.Mem.WriteBytes(addr, addr, program); err != nil {
		return err
	}
	v.Regs.PC = addr
	v.Halted = false
	return nil
}

// IsHalted reports whether the VM has stopped (via HALT, EXIT, or an
// unrecoverable error).
func (v *VM) IsHalted() bool { return v.Halted }

func (v *VM) halt(err error) error {
	v.Halted = true
	return err
}

// Step executes exactly one instruction cycle: decode, evaluate the
// condition, and (if true) dispatch. No write is committed for a skipped
// (condition-false) instruction beyond advancing PC by its size; no write
// is committed at all for a failing instruction beyond what already
// succeeded before the failure (apart from the PC advance and cycle count
// that precede dispatch, every BURST failure occurs before any
// register/memory mutation, so failures never leave partial state).
func (v *VM) Step() error {
	if v.Halted {
		return nil
	}

	pc := v.Regs.PC
	hdr, err := DecodeHeader(v.Mem, pc, pc)
	if err != nil {
		return v.halt(err)
	}

	sz := SizeOf(hdr.Opcode)
	if sz == 0 {
		return v.halt(unknownOpcode(pc, hdr.Opcode))
	}

	if !EvalCondition(hdr.Cond, v.Flags) {
		v.Regs.PC = pc + sz
		return nil
	}

	operandLen := sz - 2
	operands, err := v.Mem.ReadBytes(pc, pc+2, operandLen)
	if err != nil {
		return v.halt(err)
	}

	v.Regs.PC = pc + sz // advance before executing, so control flow can overwrite it
	v.Cycles++

	if v.ExecTrace != nil {
		v.ExecTrace.record(v.Cycles, pc, hdr.Opcode)
	}
	if v.Stats != nil {
		v.Stats.record(hdr.Opcode)
	}

	if execErr := v.dispatch(pc, hdr, operands); execErr != nil {
		return v.halt(execErr)
	}
	return nil
}

// Run steps until the VM halts. It performs no budgeting of its own;
// a caller that needs a cycle ceiling should loop calling Step itself.
func (v *VM) Run() error {
	for !v.Halted {
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (v *VM) dispatch(pc uint32, hdr Header, ops []byte) error {
	switch {
	case hdr.Opcode == OpNOP:
		return nil
	case hdr.Opcode == OpHALT:
		v.Halted = true
		return nil
	case hdr.Opcode == OpSYSCALL:
		return v.execSyscall(pc)
	case hdr.Opcode == OpRET, hdr.Opcode == OpRETI:
		return v.execRet(pc)
	case hdr.Opcode == OpLEAVE:
		return v.execLeave(pc)

	case hdr.Opcode == OpMOV, hdr.Opcode == OpCMP:
		return v.execRegPair(pc, hdr.Opcode, ops)
	case hdr.Opcode == OpPUSH, hdr.Opcode == OpPOP,
		hdr.Opcode == OpINC, hdr.Opcode == OpDEC,
		hdr.Opcode == OpNEG, hdr.Opcode == OpNOT,
		hdr.Opcode == OpJMPR, hdr.Opcode == OpCALLI:
		return v.execSingleReg(pc, hdr.Opcode, ops)
	case hdr.Opcode == OpLOAD, hdr.Opcode == OpSTORE,
		hdr.Opcode == OpLOADB, hdr.Opcode == OpSTOREB:
		return v.execMemOp(pc, hdr.Opcode, ops)
	case hdr.Opcode == OpADDI, hdr.Opcode == OpCMPI:
		return v.execImm8(pc, hdr.Opcode, ops)
	case hdr.Opcode == OpTRAP:
		return v.execTrap(pc, ops)

	case IsThreeRegisterALU(hdr.Opcode):
		return v.execALU3(pc, hdr.Opcode, ops)

	case hdr.Opcode == OpMOVI:
		return v.execMOVI(ops)
	case hdr.Opcode == OpMOVHI:
		return v.execMOVHI(ops)
	case hdr.Opcode == OpENTER:
		return v.execEnter(pc, ops)

	case hdr.Opcode == OpJMP:
		return v.execJMP(ops)
	case hdr.Opcode == OpCALL:
		return v.execCALL(pc, ops)
	case hdr.Opcode == OpLIMM:
		return v.execLIMM(ops)
	}
	return unknownOpcode(pc, hdr.Opcode)
}
