package debugger

// SymbolTable is the debugger's user symbol table (spec.md §3, §4.8):
// names the expression evaluator can resolve, populated from whatever
// was assembled or set manually at the prompt. It is independent of
// parser.SymbolTable, which is scoped to a single assembly job and
// discarded after emission - this one outlives a VM reset.
type SymbolTable struct {
	addrs map[string]uint32
}

// NewSymbolTable creates an empty user symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{addrs: make(map[string]uint32)}
}

// Set defines or redefines name - unlike the assembler's table,
// redefinition here is not an error: the user may legitimately want to
// move a symbol while debugging.
func (t *SymbolTable) Set(name string, addr uint32) {
	t.addrs[name] = addr
}

// Lookup resolves name, reporting whether it is defined.
func (t *SymbolTable) Lookup(name string) (uint32, bool) {
	addr, ok := t.addrs[name]
	return addr, ok
}

// Delete removes name.
func (t *SymbolTable) Delete(name string) {
	delete(t.addrs, name)
}

// All returns every defined name.
func (t *SymbolTable) All() map[string]uint32 {
	out := make(map[string]uint32, len(t.addrs))
	for k, v := range t.addrs {
		out[k] = v
	}
	return out
}
