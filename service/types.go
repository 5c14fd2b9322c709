package service

import "github.com/phroun/burst-sub000/vm"

// RegisterState is a point-in-time snapshot of the CPU's visible state,
// the shape a UI or remote client actually wants rather than a live
// pointer into the VM.
type RegisterState struct {
	R      [vm.NumRegisters]uint32 `json:"r"`
	PC     uint32                  `json:"pc"`
	SP     uint32                  `json:"sp"`
	Flags  FlagState               `json:"flags"`
	Cycles uint64                  `json:"cycles"`
}

// FlagState mirrors vm.Flags in a JSON-friendly shape.
type FlagState struct {
	Z bool `json:"z"`
	N bool `json:"n"`
	C bool `json:"c"`
	V bool `json:"v"`
}

// BreakpointInfo is a breakpoint as reported to a UI or API client.
type BreakpointInfo struct {
	Address   uint32 `json:"address"`
	Enabled   bool   `json:"enabled"`
	Condition string `json:"condition"`
	HitCount  int    `json:"hit_count"`
}

// WatchpointInfo is a watchpoint as reported to a UI or API client.
type WatchpointInfo struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	LastValue  uint32 `json:"last_value"`
}

// DisassemblyLine is one disassembled instruction plus the symbol (if
// any) defined at its address.
type DisassemblyLine struct {
	Address uint32 `json:"address"`
	Size    uint32 `json:"size"`
	Text    string `json:"text"`
	Symbol  string `json:"symbol,omitempty"`
}

// ExecutionState summarizes why the VM is in its current state, for
// display rather than control flow.
type ExecutionState string

const (
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateWatchpoint ExecutionState = "watchpoint"
	StateError      ExecutionState = "error"
)
