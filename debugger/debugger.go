// Package debugger wraps vm.VM's single-step execution with breakpoints,
// watchpoints, a user symbol table and an expression evaluator - the
// collaborator spec.md §4.8 describes, consumed by (and not itself) the
// line-editing REPL that spec.md §1 puts out of scope.
package debugger

import (
	"fmt"
	"sync/atomic"

	"github.com/phroun/burst-sub000/vm"
)

// StopReason explains why Run returned.
type StopReason int

const (
	StopHalted StopReason = iota
	StopBreakpoint
	StopWatchpoint
	StopCancelled
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopHalted:
		return "halted"
	case StopBreakpoint:
		return "breakpoint"
	case StopWatchpoint:
		return "watchpoint"
	case StopCancelled:
		return "cancelled"
	case StopError:
		return "error"
	default:
		return "unknown"
	}
}

// RunResult reports why a Run call stopped and, for a breakpoint or
// watchpoint stop, which one.
type RunResult struct {
	Reason     StopReason
	Breakpoint *Breakpoint
	Watchpoint *Watchpoint
	WatchFrom  uint32
	WatchTo    uint32
	Err        error
}

// Debugger is the single-threaded stepping loop on top of a VM instance:
// state here (breakpoints, watchpoints, symbols, history) persists
// across VM resets, per spec.md §3's lifecycle rule.
type Debugger struct {
	VM          *vm.VM
	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	Symbols     *SymbolTable
	History     *History

	running atomic.Bool
}

// New creates a debugger wrapping machine.
func New(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		Symbols:     NewSymbolTable(),
		History:     NewHistory(500),
	}
}

// Step executes exactly one instruction via the underlying VM.
func (d *Debugger) Step() error {
	return d.VM.Step()
}

// Stop cooperatively cancels an in-progress Run; the interpreter only
// notices between instructions, so a step already underway always
// completes. Stop only touches the atomic running flag, never the
// facade's own lock, so a caller on another goroutine can cancel a Run
// without waiting for it to return first.
func (d *Debugger) Stop() {
	d.running.Store(false)
}

// Run repeatedly steps the VM until it halts, hits an enabled breakpoint
// whose condition (if any) evaluates true, a watchpoint's value changes,
// or Stop is called. Order per call: breakpoint check, then watchpoint
// check, then one step.
func (d *Debugger) Run() RunResult {
	d.running.Store(true)
	for d.running.Load() {
		if d.VM.IsHalted() {
			return RunResult{Reason: StopHalted}
		}

		pc := d.VM.Regs.PC
		if bp := d.Breakpoints.At(pc); bp != nil && bp.Enabled {
			conditionMet := true
			if bp.Condition != "" {
				ok, err := d.evalCondition(bp.Condition)
				if err != nil {
					return RunResult{Reason: StopError, Err: err}
				}
				conditionMet = ok
			}
			if conditionMet {
				hit := d.Breakpoints.Hit(pc)
				d.running.Store(false)
				return RunResult{Reason: StopBreakpoint, Breakpoint: hit}
			}
		}

		if wp, from, to, changed := d.Watchpoints.CheckAll(d.VM, d.Symbols); changed {
			d.running.Store(false)
			return RunResult{Reason: StopWatchpoint, Watchpoint: wp, WatchFrom: from, WatchTo: to}
		}

		if err := d.VM.Step(); err != nil {
			d.running.Store(false)
			return RunResult{Reason: StopError, Err: err}
		}
	}
	return RunResult{Reason: StopCancelled}
}

func (d *Debugger) evalCondition(expr string) (bool, error) {
	val, err := Evaluate(expr, d.VM, d.Symbols)
	if err != nil {
		return false, err
	}
	return val != 0, nil
}

// ToggleBreakpoint implements spec.md's toggle_breakpoint contract.
func (d *Debugger) ToggleBreakpoint(addr uint32) (*Breakpoint, bool) {
	return d.Breakpoints.Toggle(addr)
}

// ToggleWatchpoint implements spec.md's toggle_watchpoint contract; expr
// is evaluated once to seed LastValue the way spec.md §4.8 describes
// ("watchpoints record the current word on creation").
func (d *Debugger) ToggleWatchpoint(expr string) (*Watchpoint, bool, error) {
	return d.Watchpoints.Toggle(expr, d.VM, d.Symbols)
}

// ResolveSymbol supports "name" and "name+offset" lookups against the
// user symbol table, per spec.md §4.8.
func (d *Debugger) ResolveSymbol(expr string) (uint32, error) {
	return Evaluate(expr, d.VM, d.Symbols)
}

// LoadSymbols imports every name -> address pair from an assembled
// image's symbol table into the debugger's persistent one.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	for name, addr := range symbols {
		d.Symbols.Set(name, addr)
	}
}

func (d *Debugger) String() string {
	return fmt.Sprintf("debugger(pc=0x%08X halted=%v breakpoints=%d watchpoints=%d)",
		d.VM.Regs.PC, d.VM.IsHalted(), len(d.Breakpoints.All()), len(d.Watchpoints.All()))
}
