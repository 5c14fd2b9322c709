// Package loader gets an assembled program into a vm.VM: from source on
// disk, from a pre-assembled binary image, or from bytes already in
// memory. It is the collaborator spec.md §6's "Loader" component
// describes, sitting between the assembler and the VM's own
// LoadProgram.
package loader

import (
	"fmt"
	"os"

	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/vm"
)

// Result reports what got loaded and where, for a caller (the console
// debugger, the remote API) that wants to report it back to a user or
// seed a debugger's symbol table.
type Result struct {
	EntryPoint uint32
	Size       uint32
	Symbols    *parser.SymbolTable
}

// imageMagic tags a pre-assembled binary image written by WriteImageFile;
// FromImageFile strips it before loading.
var imageMagic = [4]byte{'B', 'R', 'S', 'T'}

// FromSource assembles source text and loads the resulting image into
// machine at addr, setting PC to addr.
func FromSource(machine *vm.VM, source, filename string, addr uint32) (*Result, error) {
	program, table, err := parser.AssembleLines(source, filename)
	if err != nil {
		return nil, err
	}
	return fromBytes(machine, program, addr, table)
}

// FromSourceFile reads and assembles path, then loads it into machine at
// addr.
func FromSourceFile(machine *vm.VM, path string, addr uint32) (*Result, error) {
	res := parser.AssembleFile(path, "")
	if !res.OK {
		return nil, res.Error
	}
	return fromBytes(machine, res.Program, addr, res.Symbols)
}

// FromImage loads a raw, already-assembled binary image into machine at
// addr. No symbol table is available for a bare image.
func FromImage(machine *vm.VM, program []byte, addr uint32) (*Result, error) {
	return fromBytes(machine, program, addr, nil)
}

// FromImageFile reads a binary image file from disk and loads it at
// addr. If the file carries the BRST magic header (written by
// WriteImageFile), the header is stripped before loading; a bare image
// written by another tool loads as-is.
func FromImageFile(machine *vm.VM, path string, addr uint32) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read %s: %w", path, err)
	}
	if len(data) >= 4 && [4]byte(data[:4]) == imageMagic {
		data = data[4:]
	}
	return FromImage(machine, data, addr)
}

// WriteImageFile writes program to path with a small magic header, so a
// later FromImageFile load can recognise it as a BURST image rather than
// arbitrary binary.
func WriteImageFile(path string, program []byte) error {
	out := make([]byte, 0, len(program)+4)
	out = append(out, imageMagic[:]...)
	out = append(out, program...)
	return os.WriteFile(path, out, 0o644)
}

func fromBytes(machine *vm.VM, program []byte, addr uint32, table *parser.SymbolTable) (*Result, error) {
	if err := machine.LoadProgram(program, addr); err != nil {
		return nil, fmt.Errorf("loader: failed to load program at 0x%08X: %w", addr, err)
	}
	return &Result{EntryPoint: addr, Size: uint32(len(program)), Symbols: table}, nil
}
