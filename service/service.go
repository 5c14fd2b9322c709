// Package service wraps a vm.VM and its debugger.Debugger behind a
// single mutex-protected facade, the shape spec.md §6 calls the
// "Service Facade" - the one type the console UI and the remote API
// transport both drive, so neither has to know about the other or
// touch debugger internals directly.
package service

import (
	"bytes"
	"io"
	"sync"

	"github.com/phroun/burst-sub000/debugger"
	"github.com/phroun/burst-sub000/disasm"
	"github.com/phroun/burst-sub000/loader"
	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/vm"
)

// OutputListener is notified as guest PRINT/PUTCHAR output arrives, so a
// transport (remote API, console UI) can stream it rather than poll a
// buffer.
type OutputListener func(chunk []byte)

// Service is the thread-safe facade around one VM/debugger pair. Every
// exported method except Stop, VM and Debugger takes s.mu itself; callers
// never need their own locking.
type Service struct {
	mu       sync.Mutex
	vm       *vm.VM
	dbg      *debugger.Debugger
	output   *bytes.Buffer
	listener OutputListener
}

// New creates a service around a fresh VM of the given memory size (0
// selects vm.DefaultMemorySize).
func New(memSize uint32) *Service {
	var machine *vm.VM
	if memSize == 0 {
		machine = vm.NewVM()
	} else {
		machine = vm.NewVMWithMemorySize(memSize)
	}
	s := &Service{
		vm:     machine,
		dbg:    debugger.New(machine),
		output: &bytes.Buffer{},
	}
	machine.OutputWriter = &broadcastWriter{s: s}
	return s
}

// broadcastWriter mirrors everything the VM writes into the service's
// output buffer and, if set, a live listener. The VM only writes during
// Step and Run, which already hold s.mu, so Write does not lock it again
// (sync.Mutex is not reentrant).
type broadcastWriter struct{ s *Service }

func (w *broadcastWriter) Write(p []byte) (int, error) {
	w.s.output.Write(p)
	if w.s.listener != nil {
		w.s.listener(p)
	}
	return len(p), nil
}

// SetOutputListener installs (or, with nil, removes) a callback invoked
// as guest output is produced.
func (s *Service) SetOutputListener(l OutputListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Output returns everything the guest program has written so far.
func (s *Service) Output() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.output.Bytes()...)
}

// LoadSource assembles source text and loads it at addr, resetting the
// VM first so a second load never mixes state with the first.
func (s *Service) LoadSource(source, filename string, addr uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.Reset()
	s.output.Reset()
	res, err := loader.FromSource(s.vm, source, filename, addr)
	if err != nil {
		return err
	}
	if res.Symbols != nil {
		s.dbg.LoadSymbols(res.Symbols.Map())
	}
	return nil
}

// LoadImage loads a raw bytecode image at addr, resetting the VM first.
func (s *Service) LoadImage(program []byte, addr uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vm.Reset()
	s.output.Reset()
	_, err := loader.FromImage(s.vm, program, addr)
	return err
}

// Step executes a single instruction.
func (s *Service) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.Step()
}

// Run executes until the VM halts, a breakpoint or watchpoint fires, or
// Stop is called from another goroutine.
func (s *Service) Run() debugger.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.Run()
}

// Stop cooperatively cancels an in-progress Run. It deliberately does not
// take s.mu: Run holds that lock for its entire duration, so a Stop that
// waited for it would never run concurrently with the Run it is meant to
// cancel. debugger.Debugger.Stop only touches its own atomic flag, so
// calling it unlocked is safe.
func (s *Service) Stop() {
	s.dbg.Stop()
}

// Registers returns a snapshot of the visible CPU state.
func (s *Service) Registers() RegisterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.vm.Regs
	return RegisterState{
		R:  r.R,
		PC: r.PC,
		SP: r.SP,
		Flags: FlagState{
			Z: s.vm.Flags.Z,
			N: s.vm.Flags.N,
			C: s.vm.Flags.C,
			V: s.vm.Flags.V,
		},
		Cycles: s.vm.Cycles,
	}
}

// IsHalted reports whether the VM has stopped.
func (s *Service) IsHalted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.IsHalted()
}

// ReadMemory returns n bytes starting at addr.
func (s *Service) ReadMemory(addr, n uint32) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Mem.ReadBytes(addr, addr, n)
}

// WriteMemory writes data starting at addr.
func (s *Service) WriteMemory(addr uint32, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Mem.WriteBytes(addr, addr, data)
}

// ToggleBreakpoint creates a breakpoint at addr, or removes the one
// already there (reported with Enabled false).
func (s *Service) ToggleBreakpoint(addr uint32) BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, _ := s.dbg.ToggleBreakpoint(addr)
	if bp == nil {
		return BreakpointInfo{Address: addr, Enabled: false}
	}
	return BreakpointInfo{Address: bp.Address, Enabled: bp.Enabled, Condition: bp.Condition, HitCount: bp.HitCount}
}

// Breakpoints lists every breakpoint.
func (s *Service) Breakpoints() []BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.dbg.Breakpoints.All()
	out := make([]BreakpointInfo, 0, len(all))
	for _, bp := range all {
		out = append(out, BreakpointInfo{Address: bp.Address, Enabled: bp.Enabled, Condition: bp.Condition, HitCount: bp.HitCount})
	}
	return out
}

// ToggleWatchpoint creates a watchpoint over expr, or removes the one
// with that exact expression (reported as a zero WatchpointInfo).
func (s *Service) ToggleWatchpoint(expr string) (WatchpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wp, _, err := s.dbg.ToggleWatchpoint(expr)
	if err != nil {
		return WatchpointInfo{}, err
	}
	if wp == nil {
		return WatchpointInfo{}, nil
	}
	return WatchpointInfo{ID: wp.ID, Expression: wp.Expression, LastValue: wp.LastValue}, nil
}

// Watchpoints lists every watchpoint.
func (s *Service) Watchpoints() []WatchpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.dbg.Watchpoints.All()
	out := make([]WatchpointInfo, 0, len(all))
	for _, wp := range all {
		out = append(out, WatchpointInfo{ID: wp.ID, Expression: wp.Expression, LastValue: wp.LastValue})
	}
	return out
}

// Disassemble renders count instructions starting at addr, decorating
// each with the user symbol defined there (if any).
func (s *Service) Disassemble(addr uint32, count int) ([]DisassemblyLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	insts, err := disasm.Count(s.vm.Mem.Data, addr, count)
	if err != nil {
		return nil, err
	}
	names := make(map[uint32]string)
	for name, a := range s.dbg.Symbols.All() {
		names[a] = name
	}
	out := make([]DisassemblyLine, 0, len(insts))
	for _, in := range insts {
		out = append(out, DisassemblyLine{
			Address: in.Address,
			Size:    in.Size,
			Text:    in.Text,
			Symbol:  names[in.Address],
		})
	}
	return out, nil
}

// AssembleLine assembles a single line of source against the current
// symbol table, for a REPL or remote "assemble and patch" workflow.
func (s *Service) AssembleLine(line string, atPC uint32) parser.LineResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return parser.AssembleLineWithSymbols(line, atPC, func(name string) (uint32, bool) {
		return s.dbg.Symbols.Lookup(name)
	})
}

// Evaluate resolves an expression (register, symbol, [addr], arithmetic)
// against the live VM state.
func (s *Service) Evaluate(expr string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbg.ResolveSymbol(expr)
}

// State summarizes the VM's current situation for display purposes.
func (s *Service) State() ExecutionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vm.IsHalted() {
		return StateHalted
	}
	return StateRunning
}

// VM exposes the underlying VM for callers (tests, the console UI) that
// need lower-level access than the facade provides.
func (s *Service) VM() *vm.VM { return s.vm }

// Debugger exposes the underlying debugger for the same reason.
func (s *Service) Debugger() *debugger.Debugger { return s.dbg }

var _ io.Writer = (*broadcastWriter)(nil)
