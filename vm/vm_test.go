package vm_test

import (
	"testing"

	"github.com/phroun/burst-sub000/vm"
)

// header builds an instruction's 16-bit header with vm.EncodeHeader
// rather than hand-rolling the bit layout. These tests write raw
// instruction bytes with it and drive the VM through LoadProgram plus
// Step or Run.

func mustLoad(t *testing.T, program []byte) *vm.VM {
	t.Helper()
	machine := vm.NewVM()
	if err := machine.LoadProgram(program, 0); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	return machine
}

func header(cond, opcode byte) []byte {
	raw := vm.EncodeHeader(vm.Header{Cond: cond, Opcode: opcode})
	return []byte{byte(raw), byte(raw >> 8)}
}

func TestStep_NOP_AdvancesPCBySizeOf(t *testing.T) {
	machine := mustLoad(t, append(header(vm.CondALWAYS, vm.OpNOP), header(vm.CondALWAYS, vm.OpHALT)...))
	machine.Halted = false
	if err := machine.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if machine.Regs.PC != vm.SizeOf(vm.OpNOP) {
		t.Errorf("PC = %d, want %d", machine.Regs.PC, vm.SizeOf(vm.OpNOP))
	}
}

func TestStep_Halt_SetsHalted(t *testing.T) {
	machine := mustLoad(t, header(vm.CondALWAYS, vm.OpHALT))
	machine.Halted = false
	if err := machine.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !machine.Halted {
		t.Error("expected Halted after OpHALT")
	}
}

func TestStep_ConditionFalse_SkipsButAdvancesPC(t *testing.T) {
	// MOVI r0, #imm with cond NEVER: the instruction must not execute,
	// but PC still advances by its full size.
	ops := []byte{0x00, 0x00, 0x05, 0x00} // reg 0, pad, imm16 LE = 5
	instr := append(header(vm.CondNEVER, vm.OpMOVI), ops...)
	program := append(instr, header(vm.CondALWAYS, vm.OpHALT)...)

	machine := mustLoad(t, program)
	machine.Halted = false
	pcBefore := machine.Regs.PC
	if err := machine.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if machine.Regs.Get(0) != 0 {
		t.Errorf("r0 = %d, want 0 (condition false must skip execution)", machine.Regs.Get(0))
	}
	if machine.Regs.PC != pcBefore+vm.SizeOf(vm.OpMOVI) {
		t.Errorf("PC = %d, want %d", machine.Regs.PC, pcBefore+vm.SizeOf(vm.OpMOVI))
	}
}

func TestReset_RestoresInitialState(t *testing.T) {
	machine := vm.NewVM()
	machine.Regs.Set(0, 42)
	machine.Cycles = 10
	machine.Halted = false

	machine.Reset()

	if machine.Regs.Get(0) != 0 {
		t.Errorf("r0 = %d after reset, want 0", machine.Regs.Get(0))
	}
	if machine.Cycles != 0 {
		t.Errorf("Cycles = %d after reset, want 0", machine.Cycles)
	}
	if !machine.Halted {
		t.Error("expected Halted=true after reset")
	}
	if machine.Regs.SP != machine.Mem.Size()-8 {
		t.Errorf("SP = 0x%X after reset, want 0x%X", machine.Regs.SP, machine.Mem.Size()-8)
	}
}

func TestUnknownOpcode_HaltsWithError(t *testing.T) {
	machine := mustLoad(t, []byte{0xFF, 0x00})
	machine.Halted = false
	if err := machine.Step(); err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
	if !machine.Halted {
		t.Error("expected Halted=true after an unrecoverable error")
	}
}

func TestFlags_ADD_CarryAndOverflow(t *testing.T) {
	cases := []struct {
		name    string
		a, b    uint32
		wantC   bool
		wantV   bool
	}{
		{"no overflow", 1, 1, false, false},
		{"unsigned carry only", 0xFFFFFFFF, 1, true, false},
		{"signed overflow", 0x7FFFFFFF, 1, false, true},
		{"two negatives wrap to carry and signed overflow", 0x80000000, 0x80000000, true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			machine := vm.NewVM()
			machine.Regs.Set(1, c.a)
			machine.Regs.Set(2, c.b)
			program := append(append(header(vm.CondALWAYS, vm.OpADD), 0x00, 0x21), header(vm.CondALWAYS, vm.OpHALT)...)
			if err := machine.LoadProgram(program, 0); err != nil {
				t.Fatalf("LoadProgram: %v", err)
			}
			if err := machine.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if machine.Flags.C != c.wantC {
				t.Errorf("C = %v, want %v", machine.Flags.C, c.wantC)
			}
			if machine.Flags.V != c.wantV {
				t.Errorf("V = %v, want %v", machine.Flags.V, c.wantV)
			}
		})
	}
}

func TestAllocator_NeverHandsOutAddressOutsideRegion(t *testing.T) {
	a := vm.NewAllocator(vm.HeapStart, 256)
	seen := map[uint32]bool{}
	for i := 0; i < 40; i++ {
		addr := a.Alloc(8)
		if addr == 0 {
			continue
		}
		if addr < vm.HeapStart || addr >= vm.HeapStart+256 {
			t.Fatalf("allocator returned out-of-region address 0x%X", addr)
		}
		seen[addr] = true
	}
}

func TestAllocator_FreeUnknownAddressIsNoop(t *testing.T) {
	a := vm.NewAllocator(vm.HeapStart, 256)
	if a.Free(vm.HeapStart + 123) {
		t.Error("expected Free of an address never allocated to report false")
	}
}

func TestAllocator_ReallocGrowInPlace(t *testing.T) {
	a := vm.NewAllocator(vm.HeapStart, 256)
	addr := a.Alloc(8)
	grown := a.Realloc(nil, addr, 16)
	if grown != addr {
		t.Errorf("expected in-place growth to keep address 0x%X, got 0x%X", addr, grown)
	}
}
