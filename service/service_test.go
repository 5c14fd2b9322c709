package service_test

import (
	"testing"

	"github.com/phroun/burst-sub000/service"
)

func TestLoadSource_RunStep_ReportsRegisters(t *testing.T) {
	svc := service.New(0)
	if err := svc.LoadSource("movi r0, #3\nmovi r1, #4\nadd r2, r0, r1\nhalt\n", "t.asm", 0); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	svc.Run()
	if !svc.IsHalted() {
		t.Fatal("expected halted")
	}
	regs := svc.Registers()
	if regs.R[2] != 7 {
		t.Errorf("r2 = %d, want 7", regs.R[2])
	}
}

func TestLoadSource_ResetsPriorState(t *testing.T) {
	svc := service.New(0)
	if err := svc.LoadSource("movi r0, #1\nhalt\n", "a.asm", 0); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if err := svc.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if err := svc.LoadSource("movi r0, #9\nhalt\n", "b.asm", 0); err != nil {
		t.Fatalf("LoadSource (second): %v", err)
	}
	regs := svc.Registers()
	if regs.R[0] != 0 {
		t.Errorf("r0 = %d after reload, want 0 (reset)", regs.R[0])
	}
	if regs.PC != 0 {
		t.Errorf("PC = %d after reload, want 0", regs.PC)
	}
}

func TestToggleBreakpoint_AppearsInBreakpointsList(t *testing.T) {
	svc := service.New(0)
	if err := svc.LoadSource("nop\nhalt\n", "t.asm", 0); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	svc.ToggleBreakpoint(0)

	bps := svc.Breakpoints()
	if len(bps) != 1 || bps[0].Address != 0 {
		t.Fatalf("Breakpoints() = %+v, want one breakpoint at address 0", bps)
	}
}

func TestDisassemble_ReturnsRequestedWindow(t *testing.T) {
	svc := service.New(0)
	if err := svc.LoadSource("movi r0, #1\nmovi r0, #2\nhalt\n", "t.asm", 0); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	lines, err := svc.Disassemble(0, 3)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[2].Text != "halt" {
		t.Errorf("lines[2].Text = %q, want halt", lines[2].Text)
	}
}

func TestSetOutputListener_ReceivesSyscallPrintOutput(t *testing.T) {
	svc := service.New(0)
	var got []byte
	svc.SetOutputListener(func(chunk []byte) { got = append(got, chunk...) })

	source := `
jmp start
msg: .ascii "hi"
start:
movi r1, #msg
movi r2, #2
movi r0, #30
syscall
halt
`
	if err := svc.LoadSource(source, "t.asm", 0); err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if result := svc.Run(); result.Err != nil {
		t.Fatalf("Run: %v", result.Err)
	}
	if string(got) != "hi" {
		t.Errorf("listener received %q, want \"hi\"", got)
	}
	if string(svc.Output()) != "hi" {
		t.Errorf("Output() = %q, want \"hi\"", svc.Output())
	}
}
