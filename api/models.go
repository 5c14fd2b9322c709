package api

import "github.com/phroun/burst-sub000/service"

// LoadRequest is the body of POST /api/load.
type LoadRequest struct {
	Source   string `json:"source,omitempty"`   // assembly source text
	Program  []byte `json:"program,omitempty"`  // raw bytecode image, used only when Source is empty
	Address  uint32 `json:"address"`
}

// BreakpointRequest is the body of POST /api/breakpoint.
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// MemoryWriteRequest is the body of POST /api/memory.
type MemoryWriteRequest struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// AssembleLineRequest is the body of POST /api/assemble-line.
type AssembleLineRequest struct {
	Line string `json:"line"`
	AtPC uint32 `json:"at_pc"`
}

// AssembleLineResponse is the response to POST /api/assemble-line.
type AssembleLineResponse struct {
	Bytes []byte `json:"bytes,omitempty"`
	Size  uint32 `json:"size"`
	Error string `json:"error,omitempty"`
}

// StepResponse is the response to POST /api/step and POST /api/run.
type StepResponse struct {
	Registers service.RegisterState  `json:"registers"`
	Halted    bool                   `json:"halted"`
	Reason    string                 `json:"reason,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// ErrorResponse is the body of any non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventType names the kind of message sent over /ws/events.
type EventType string

const (
	EventStep       EventType = "step"
	EventBreakpoint EventType = "breakpoint"
	EventWatchpoint EventType = "watchpoint"
	EventHalt       EventType = "halt"
	EventOutput     EventType = "output"
)

// Event is one message broadcast to every connected /ws/events client.
type Event struct {
	Type      EventType             `json:"type"`
	Registers service.RegisterState `json:"registers,omitempty"`
	Output    string                `json:"output,omitempty"`
}
