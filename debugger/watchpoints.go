package debugger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/phroun/burst-sub000/vm"
)

// Watchpoint tracks an expression's value across steps; spec.md §4.8
// describes it as "map watched address -> last observed 32-bit word",
// generalised here to any expression the evaluator understands (a
// register name, a bare address, or name+offset) since the debugger's
// expression language makes that free.
type Watchpoint struct {
	ID         int
	Expression string
	LastValue  uint32
	Enabled    bool
	HitCount   int
}

// WatchpointManager owns every watchpoint.
type WatchpointManager struct {
	mu     sync.RWMutex
	byID   map[int]*Watchpoint
	nextID int
}

// NewWatchpointManager creates an empty watchpoint set.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{byID: make(map[int]*Watchpoint), nextID: 1}
}

// Toggle creates a watchpoint on expr (recording its current value) if
// none exists with that exact expression text, or removes the existing
// one otherwise - the watchpoint analogue of BreakpointManager.Toggle.
func (wm *WatchpointManager) Toggle(expr string, machine *vm.VM, symbols *SymbolTable) (*Watchpoint, bool, error) {
	wm.mu.Lock()
	for id, wp := range wm.byID {
		if wp.Expression == expr {
			delete(wm.byID, id)
			wm.mu.Unlock()
			return nil, false, nil
		}
	}
	wm.mu.Unlock()

	val, err := Evaluate(expr, machine, symbols)
	if err != nil {
		return nil, false, err
	}

	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp := &Watchpoint{ID: wm.nextID, Expression: expr, LastValue: val, Enabled: true}
	wm.byID[wp.ID] = wp
	wm.nextID++
	return wp, true, nil
}

// Remove deletes a watchpoint by ID.
func (wm *WatchpointManager) Remove(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if _, exists := wm.byID[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.byID, id)
	return nil
}

// All returns every watchpoint, sorted by ID.
func (wm *WatchpointManager) All() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	out := make([]*Watchpoint, 0, len(wm.byID))
	for _, wp := range wm.byID {
		out = append(out, wp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CheckAll re-evaluates every enabled watchpoint's expression and returns
// the first whose value has changed since it was last observed, along
// with the old and new values. A watchpoint whose expression fails to
// evaluate (e.g. a memory address gone out of bounds) is skipped rather
// than aborting the scan.
func (wm *WatchpointManager) CheckAll(machine *vm.VM, symbols *SymbolTable) (wp *Watchpoint, from, to uint32, changed bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, w := range wm.byID {
		if !w.Enabled {
			continue
		}
		val, err := Evaluate(w.Expression, machine, symbols)
		if err != nil {
			continue
		}
		if val != w.LastValue {
			from := w.LastValue
			w.LastValue = val
			w.HitCount++
			snapshot := *w
			return &snapshot, from, val, true
		}
	}
	return nil, 0, 0, false
}

// Clear removes every watchpoint.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.byID = make(map[int]*Watchpoint)
}
