package main_test

import (
	"testing"

	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/vm"
)

// assembleAndRun assembles source, loads it at 0 and runs to completion.
func assembleAndRun(t *testing.T, source string) *vm.VM {
	t.Helper()
	program, _, err := parser.AssembleLines(source, "test.asm")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	machine := vm.NewVM()
	if err := machine.LoadProgram(program, 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return machine
}

func TestScenario_S1_HelloAdd(t *testing.T) {
	machine := assembleAndRun(t, `
movi r1, #3
movi r2, #4
add  r0, r1, r2
halt
`)
	if !machine.IsHalted() {
		t.Fatal("expected halted")
	}
	if got := machine.Regs.Get(0); got != 7 {
		t.Errorf("r0 = %d, want 7", got)
	}
	if machine.Flags.Z || machine.Flags.N {
		t.Errorf("flags = %+v, want Z=0 N=0", machine.Flags)
	}
}

func TestScenario_S2_SignedOverflow16Bit(t *testing.T) {
	machine := assembleAndRun(t, `
movi r1, #0x7FFF
movi r2, #1
add  r0, r1, r2
halt
`)
	if got := machine.Regs.Get(0); got != 0x8000 {
		t.Errorf("r0 = 0x%X, want 0x8000", got)
	}
	if !machine.Flags.N {
		t.Error("expected N=1")
	}
	if machine.Flags.V {
		t.Error("expected V=0 (16-bit sign-extended operands stay positive)")
	}
}

func TestScenario_S2_SignedOverflow32Bit(t *testing.T) {
	machine := assembleAndRun(t, `
limm r1, #0x7FFFFFFF
limm r2, #1
add  r0, r1, r2
halt
`)
	if got := machine.Regs.Get(0); got != 0x80000000 {
		t.Errorf("r0 = 0x%X, want 0x80000000", got)
	}
	if !machine.Flags.N || !machine.Flags.V {
		t.Errorf("flags = %+v, want N=1 V=1", machine.Flags)
	}
}

func TestScenario_S3_ConditionalExecution(t *testing.T) {
	cases := []struct {
		r1, r2 uint32
		wantR0 uint32
	}{
		{5, 5, 1},
		{5, 6, 2},
	}
	for _, c := range cases {
		source := `
movi r1, #` + hexLit(c.r1) + `
movi r2, #` + hexLit(c.r2) + `
cmp r1, r2
ifeq movi r0, #1
ifne movi r0, #2
halt
`
		machine := assembleAndRun(t, source)
		if got := machine.Regs.Get(0); got != c.wantR0 {
			t.Errorf("r1=%d r2=%d: r0 = %d, want %d", c.r1, c.r2, got, c.wantR0)
		}
	}
}

func hexLit(v uint32) string {
	const hexDigits = "0123456789ABCDEF"
	if v == 0 {
		return "0"
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{hexDigits[v%16]}, buf...)
		v /= 16
	}
	return "0x" + string(buf)
}

func TestScenario_S4_CallRetRoundTrip(t *testing.T) {
	machine := assembleAndRun(t, `
movi r1, #11
movi r2, #22
call routine
halt
routine:
	push r1
	push r2
	pop  r3
	pop  r4
	ret
`)
	if !machine.IsHalted() {
		t.Fatal("expected halted")
	}
	if got := machine.Regs.Get(3); got != 22 {
		t.Errorf("r3 = %d, want 22 (popped in reverse push order)", got)
	}
	if got := machine.Regs.Get(4); got != 11 {
		t.Errorf("r4 = %d, want 11", got)
	}
	if machine.Regs.SP != vm.DefaultMemorySize-8 {
		t.Errorf("SP = 0x%X, want restored to 0x%X", machine.Regs.SP, vm.DefaultMemorySize-8)
	}
}

func TestScenario_S5_AllocatorFirstFit(t *testing.T) {
	a := vm.NewAllocator(vm.HeapStart, vm.DefaultMemorySize-vm.HeapStart)

	first := a.Alloc(100)
	second := a.Alloc(100)
	if first == 0 || second == 0 {
		t.Fatalf("expected successful allocations, got first=%d second=%d", first, second)
	}
	if !a.Free(first) {
		t.Fatal("expected Free(first) to succeed")
	}
	third := a.Alloc(50)
	if third != first {
		t.Errorf("third alloc = 0x%X, want reuse of first slot 0x%X (first-fit)", third, first)
	}

	a.Free(second)
	a.Free(third)

	stats := a.Stats()
	if len(stats.Free) != 1 {
		t.Fatalf("expected free list to collapse to one block, got %d blocks", len(stats.Free))
	}
	want := vm.DefaultMemorySize - vm.HeapStart
	if stats.Free[0].Size != want {
		t.Errorf("collapsed free block size = %d, want %d", stats.Free[0].Size, want)
	}
}

func TestScenario_S6_LabelResolution(t *testing.T) {
	source := `
start: movi r0, #1
       jmp  end
       movi r0, #2
end:   halt
`
	program, table, err := parser.AssembleLines(source, "s6.asm")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	endAddr, ok := table.Lookup("end")
	if !ok {
		t.Fatal("expected label \"end\" to be defined")
	}
	// movi r0,#1 (6 bytes) + jmp end (6 bytes) + movi r0,#2 (6 bytes) = 18
	if endAddr != 18 {
		t.Errorf("end = %d, want 18", endAddr)
	}
	if len(program) < int(endAddr)+2 {
		t.Fatalf("assembled image too short: %d bytes", len(program))
	}

	machine := vm.NewVM()
	if err := machine.LoadProgram(program, 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := machine.Regs.Get(0); got != 1 {
		t.Errorf("r0 = %d, want 1 (unreachable movi r0,#2 must never execute)", got)
	}
	if !machine.IsHalted() {
		t.Error("expected halted")
	}
}
