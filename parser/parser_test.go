package parser_test

import (
	"strings"
	"testing"

	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/vm"
)

func TestAssembleLines_BasicProgram(t *testing.T) {
	program, table, err := parser.AssembleLines(`
movi r1, #3
movi r2, #4
add  r0, r1, r2
halt
`, "t.asm")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(program) == 0 {
		t.Fatal("expected non-empty program")
	}
	if table.Len() != 0 {
		t.Errorf("expected no labels, got %d", table.Len())
	}
}

func TestAssembleLines_LegacyAliasesExpandToConditionPrefix(t *testing.T) {
	// jz/jnz are legacy aliases for jmp under condition EQ/NE; they must
	// encode identically to the equivalent ifcond-prefixed form.
	withAlias, _, err := parser.AssembleLines("jz target\ntarget: halt\n", "a.asm")
	if err != nil {
		t.Fatalf("assemble alias: %v", err)
	}
	withPrefix, _, err := parser.AssembleLines("ifeq jmp target\ntarget: halt\n", "b.asm")
	if err != nil {
		t.Fatalf("assemble prefix: %v", err)
	}
	if string(withAlias) != string(withPrefix) {
		t.Errorf("jz and 'ifeq jmp' encoded differently:\n%x\n%x", withAlias, withPrefix)
	}
}

func TestAssembleLines_DuplicateLabelIsError(t *testing.T) {
	_, _, err := parser.AssembleLines("a: nop\na: halt\n", "dup.asm")
	if err == nil {
		t.Fatal("expected duplicate label error")
	}
}

func TestAssembleLines_UndefinedLabelIsError(t *testing.T) {
	_, _, err := parser.AssembleLines("jmp nowhere\n", "undef.asm")
	if err == nil {
		t.Fatal("expected undefined label error")
	}
}

func TestAssembleLines_OperandCountMismatchMessage(t *testing.T) {
	_, _, err := parser.AssembleLines("add r0, r1\n", "badcount.asm")
	if err == nil {
		t.Fatal("expected an operand-count error")
	}
	if !strings.Contains(err.Error(), "expects 3 operand") {
		t.Errorf("error message = %q, want it to mention the expected operand count", err.Error())
	}
}

func TestAssembleLine_SingleInstructionNoLabelContext(t *testing.T) {
	res := parser.AssembleLine("movi r0, #5", 0)
	if res.Error != nil {
		t.Fatalf("AssembleLine: %v", res.Error)
	}
	if res.Size != vm.SizeOf(vm.OpMOVI) {
		t.Errorf("Size = %d, want %d", res.Size, vm.SizeOf(vm.OpMOVI))
	}
}

func TestAssembleLineWithSymbols_ResolvesSuppliedLookup(t *testing.T) {
	lookup := func(name string) (uint32, bool) {
		if name == "loop" {
			return 0x100, true
		}
		return 0, false
	}
	res := parser.AssembleLineWithSymbols("jmp loop", 0, lookup)
	if res.Error != nil {
		t.Fatalf("AssembleLineWithSymbols: %v", res.Error)
	}
	if res.Size != vm.SizeOf(vm.OpJMP) {
		t.Errorf("Size = %d, want %d", res.Size, vm.SizeOf(vm.OpJMP))
	}
}

func TestEstimateSize_MatchesAssembledSize(t *testing.T) {
	sz, err := parser.EstimateSize("limm r0, #0x12345678")
	if err != nil {
		t.Fatalf("EstimateSize: %v", err)
	}
	if sz != vm.SizeOf(vm.OpLIMM) {
		t.Errorf("EstimateSize = %d, want %d", sz, vm.SizeOf(vm.OpLIMM))
	}
}

func TestSymbolTable_DuplicateDefineFails(t *testing.T) {
	table := parser.NewSymbolTable()
	if err := table.Define("x", 0, parser.Position{}); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := table.Define("x", 4, parser.Position{}); err == nil {
		t.Fatal("expected redefinition to fail")
	}
}

func TestSymbolTable_LookupUndefined(t *testing.T) {
	table := parser.NewSymbolTable()
	if _, ok := table.Lookup("missing"); ok {
		t.Error("expected Lookup of an undefined label to report false")
	}
}
