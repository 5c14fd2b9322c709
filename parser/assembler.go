package parser

import (
	"os"

	"github.com/phroun/burst-sub000/vm"
)

// lineSize computes one line's byte size for pass 1: the size table in
// vm.SizeOf for instructions, directiveSize for directives. It never
// resolves a label, since size never depends on an operand's value.
func lineSize(line Line) (uint32, error) {
	switch {
	case line.Mnemonic != "":
		resolved, _, err := ResolveMnemonic(line.Mnemonic, line.OperandText, line.Pos, line.Raw)
		if err != nil {
			return 0, err
		}
		return vm.SizeOf(resolved.Spec.Opcode), nil
	case line.Directive != "":
		return directiveSize(line.Directive, line.DirArgs, line.Pos, line.Raw)
	default:
		return 0, nil
	}
}

// pass1 sizes every line and records each label at the address of the
// line immediately following it (spec.md §4.6).
func pass1(lines []Line) (*SymbolTable, []uint32, error) {
	table := NewSymbolTable()
	sizes := make([]uint32, len(lines))
	var addr uint32

	for i, line := range lines {
		if line.Label != "" {
			if err := table.Define(line.Label, addr, line.Pos); err != nil {
				return nil, nil, err
			}
		}
		sz, err := lineSize(line)
		if err != nil {
			return nil, nil, err
		}
		sizes[i] = sz
		addr += sz
	}
	return table, sizes, nil
}

// pass2 emits bytes for every line, now that every label's address is
// known.
func pass2(lines []Line, table *SymbolTable) ([]byte, error) {
	res := resolver(table.Lookup)
	var out []byte

	for _, line := range lines {
		switch {
		case line.Mnemonic != "":
			resolved, operands, err := ResolveMnemonic(line.Mnemonic, line.OperandText, line.Pos, line.Raw)
			if err != nil {
				return nil, err
			}
			b, err := encodeInstruction(resolved, operands, res, line.Pos, line.Raw)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case line.Directive != "":
			b, err := emitDirective(line.Directive, line.DirArgs, res, line.Pos, line.Raw)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// AssembleLines lexes source text, runs the full two-pass assembly over
// it and returns the emitted image plus the resolved symbol
// table (useful to callers wanting a cross-reference report).
func AssembleLines(source, filename string) ([]byte, *SymbolTable, error) {
	lines, err := Lex(source, filename)
	if err != nil {
		return nil, nil, err
	}
	table, _, err := pass1(lines)
	if err != nil {
		return nil, nil, err
	}
	program, err := pass2(lines, table)
	if err != nil {
		return nil, nil, err
	}
	return program, table, nil
}

// AssembleResult mirrors the assemble_file contract in spec.md §6.
type AssembleResult struct {
	OK         bool
	Program    []byte
	OutputFile string
	Symbols    *SymbolTable
	Error      error
}

// AssembleFile reads path, assembles it, and - if outputFile is non-empty
// - writes the resulting image there. A failed assembly leaves
// outputFile untouched (spec.md §7: assembly errors never commit a
// partial artifact).
func AssembleFile(path, outputFile string) AssembleResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return AssembleResult{Error: err}
	}
	program, table, err := AssembleLines(string(data), path)
	if err != nil {
		return AssembleResult{Error: err}
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, program, 0o644); err != nil {
			return AssembleResult{Error: err}
		}
	}
	return AssembleResult{OK: true, Program: program, OutputFile: outputFile, Symbols: table}
}

// LineResult is the outcome of assembling one REPL line.
type LineResult struct {
	Bytes []byte
	Size  uint32
	Error error
}

// AssembleLine assembles a single source line with no label context -
// the form used by a REPL that just wants the bytes for an instruction
// typed at the prompt. Use AssembleLineWithSymbols to resolve against a
// debugger's live symbol table instead.
func AssembleLine(line string, atPC uint32) LineResult {
	return AssembleLineWithSymbols(line, atPC, nil)
}

// AssembleLineWithSymbols is AssembleLine with a caller-supplied label
// resolver, so a debugger can assemble a line that references symbols
// from the program currently loaded (spec.md §4.8's user symbol table).
func AssembleLineWithSymbols(line string, atPC uint32, lookup func(string) (uint32, bool)) LineResult {
	lines, err := Lex(line, "")
	if err != nil {
		return LineResult{Error: err}
	}
	if len(lines) == 0 || lines[0].IsEmpty() {
		return LineResult{}
	}
	l := lines[0]

	var res resolver
	if lookup != nil {
		res = resolver(lookup)
	}

	switch {
	case l.Mnemonic != "":
		resolved, operands, err := ResolveMnemonic(l.Mnemonic, l.OperandText, l.Pos, l.Raw)
		if err != nil {
			return LineResult{Error: err}
		}
		b, err := encodeInstruction(resolved, operands, res, l.Pos, l.Raw)
		if err != nil {
			return LineResult{Error: err}
		}
		return LineResult{Bytes: b, Size: uint32(len(b))}
	case l.Directive != "":
		b, err := emitDirective(l.Directive, l.DirArgs, res, l.Pos, l.Raw)
		if err != nil {
			return LineResult{Error: err}
		}
		return LineResult{Bytes: b, Size: uint32(len(b))}
	default:
		return LineResult{}
	}
}

// EstimateSize returns the byte size a line would occupy, without
// emitting it or requiring any label to be resolved (spec.md §6's
// estimate_size contract).
func EstimateSize(line string) (uint32, error) {
	lines, err := Lex(line, "")
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, nil
	}
	return lineSize(lines[0])
}
