package disasm_test

import (
	"strings"
	"testing"

	"github.com/phroun/burst-sub000/disasm"
	"github.com/phroun/burst-sub000/parser"
)

func assemble(t *testing.T, source string) []byte {
	t.Helper()
	program, _, err := parser.AssembleLines(source, "t.asm")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return program
}

func TestAt_RoundTripsThroughAssembler(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"movi r0, #5\n", "movi r0, #5"},
		{"add r0, r1, r2\n", "add r0, r1, r2"},
		{"push r3\n", "push r3"},
		{"limm r0, #0x12345678\n", "limm r0, #0x12345678"},
	}
	for _, c := range cases {
		program := assemble(t, c.source)
		inst, err := disasm.At(program, 0)
		if err != nil {
			t.Fatalf("At(%q): %v", c.source, err)
		}
		if inst.Text != c.want {
			t.Errorf("source %q: disasm = %q, want %q", c.source, inst.Text, c.want)
		}
	}
}

func TestAt_ConditionPrefixIsRendered(t *testing.T) {
	program := assemble(t, "ifeq movi r0, #1\n")
	inst, err := disasm.At(program, 0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if !strings.HasPrefix(inst.Text, "ifeq ") {
		t.Errorf("text = %q, want an ifeq prefix", inst.Text)
	}
}

func TestAt_UnknownOpcodeFallsBackToByteDump(t *testing.T) {
	inst, err := disasm.At([]byte{0xFF, 0x00, 0x00, 0x00}, 0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if !strings.HasPrefix(inst.Text, "db ") {
		t.Errorf("text = %q, want a db fallback", inst.Text)
	}
	if inst.Size != 2 {
		t.Errorf("fallback Size = %d, want 2", inst.Size)
	}
}

func TestAt_OutOfRangeAddressIsError(t *testing.T) {
	if _, err := disasm.At([]byte{0x00}, 0); err == nil {
		t.Fatal("expected an error for a truncated instruction")
	}
}

func TestRange_CoversEveryInstruction(t *testing.T) {
	program := assemble(t, "movi r0, #1\nmovi r1, #2\nhalt\n")
	insts, err := disasm.Range(program, 0, uint32(len(program)))
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("got %d instructions, want 3", len(insts))
	}
	if insts[2].Text != "halt" {
		t.Errorf("last instruction = %q, want halt", insts[2].Text)
	}
}

func TestCount_StopsAtRequestedCount(t *testing.T) {
	program := assemble(t, "nop\nnop\nnop\nhalt\n")
	insts, err := disasm.Count(program, 0, 2)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2", len(insts))
	}
}
