package parser

import "fmt"

// SymbolTable maps label names to byte offsets in the image being
// assembled. Forward references are never an issue here: pass 1 computes
// every label's address before pass 2 emits a single byte, so by the time
// an operand is resolved the table is complete.
type SymbolTable struct {
	addrs map[string]uint32
	pos   map[string]Position
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{addrs: make(map[string]uint32), pos: make(map[string]Position)}
}

// Define records label's address. Redefining an existing label is an
// error - labels are unique per spec.
func (t *SymbolTable) Define(label string, addr uint32, pos Position) error {
	if prev, exists := t.pos[label]; exists {
		return NewError(pos, ErrDuplicateLabel,
			fmt.Sprintf("label %q already defined at %s", label, prev))
	}
	t.addrs[label] = addr
	t.pos[label] = pos
	return nil
}

// Lookup returns label's address and whether it is defined.
func (t *SymbolTable) Lookup(label string) (uint32, bool) {
	addr, ok := t.addrs[label]
	return addr, ok
}

// Len returns the number of defined symbols, for cross-reference reports.
func (t *SymbolTable) Len() int { return len(t.addrs) }

// Names returns every defined label name, for cross-reference reports.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.addrs))
	for name := range t.addrs {
		names = append(names, name)
	}
	return names
}

// Map returns a copy of the full name -> address table, for callers (the
// debugger, the cross-reference tool) that want to import it wholesale.
func (t *SymbolTable) Map() map[string]uint32 {
	out := make(map[string]uint32, len(t.addrs))
	for k, v := range t.addrs {
		out[k] = v
	}
	return out
}
