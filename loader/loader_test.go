package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phroun/burst-sub000/loader"
	"github.com/phroun/burst-sub000/vm"
)

func TestFromSource_LoadsAssembledProgram(t *testing.T) {
	machine := vm.NewVM()
	res, err := loader.FromSource(machine, "movi r0, #9\nhalt\n", "t.asm", 0)
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}
	if res.EntryPoint != 0 {
		t.Errorf("EntryPoint = %d, want 0", res.EntryPoint)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := machine.Regs.Get(0); got != 9 {
		t.Errorf("r0 = %d, want 9", got)
	}
}

func TestFromSourceFile_ReadsAndAssembles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.asm")
	writeFile(t, path, "movi r0, #3\nhalt\n")

	machine := vm.NewVM()
	if _, err := loader.FromSourceFile(machine, path, 0); err != nil {
		t.Fatalf("FromSourceFile: %v", err)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := machine.Regs.Get(0); got != 3 {
		t.Errorf("r0 = %d, want 3", got)
	}
}

func TestWriteImageFile_ThenFromImageFileRoundTrips(t *testing.T) {
	machine := vm.NewVM()
	res, err := loader.FromSource(machine, "movi r0, #5\nhalt\n", "t.asm", 0)
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	program, err := dumpProgram(machine, res.Size)
	if err != nil {
		t.Fatalf("dumpProgram: %v", err)
	}

	path := filepath.Join(t.TempDir(), "prog.bin")
	if err := loader.WriteImageFile(path, program); err != nil {
		t.Fatalf("WriteImageFile: %v", err)
	}

	reloaded := vm.NewVM()
	if _, err := loader.FromImageFile(reloaded, path, 0); err != nil {
		t.Fatalf("FromImageFile: %v", err)
	}
	if err := reloaded.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := reloaded.Regs.Get(0); got != 5 {
		t.Errorf("r0 = %d, want 5", got)
	}
}

func TestFromImage_BareImageLoadsDirectly(t *testing.T) {
	machine := vm.NewVM()
	program := []byte{
		byte(vm.EncodeHeader(vm.Header{Cond: vm.CondALWAYS, Opcode: vm.OpHALT})),
		byte(vm.EncodeHeader(vm.Header{Cond: vm.CondALWAYS, Opcode: vm.OpHALT}) >> 8),
	}
	if _, err := loader.FromImage(machine, program, 0); err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if err := machine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !machine.IsHalted() {
		t.Error("expected halted")
	}
}

func dumpProgram(machine *vm.VM, size uint32) ([]byte, error) {
	return machine.Mem.ReadBytes(0, 0, size)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}
