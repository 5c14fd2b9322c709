package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/phroun/burst-sub000/debugger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

// handleLoad implements POST /api/load.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req LoadRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	switch {
	case req.Source != "":
		err = s.svc.LoadSource(req.Source, "api", req.Address)
	case len(req.Program) > 0:
		err = s.svc.LoadImage(req.Program, req.Address)
	default:
		writeError(w, http.StatusBadRequest, "source or program required")
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StepResponse{Registers: s.svc.Registers(), Halted: s.svc.IsHalted()})
}

// handleStep implements POST /api/step.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	resp := StepResponse{}
	if err := s.svc.Step(); err != nil {
		resp.Error = err.Error()
	}
	resp.Registers = s.svc.Registers()
	resp.Halted = s.svc.IsHalted()
	s.broadcaster.Publish(Event{Type: EventStep, Registers: resp.Registers})
	writeJSON(w, http.StatusOK, resp)
}

// handleRun implements POST /api/run.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	result := s.svc.Run()
	resp := StepResponse{
		Registers: s.svc.Registers(),
		Halted:    s.svc.IsHalted(),
		Reason:    result.Reason.String(),
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	switch result.Reason {
	case debugger.StopHalted:
		s.broadcaster.Publish(Event{Type: EventHalt, Registers: resp.Registers})
	case debugger.StopBreakpoint:
		s.broadcaster.Publish(Event{Type: EventBreakpoint, Registers: resp.Registers})
	case debugger.StopWatchpoint:
		s.broadcaster.Publish(Event{Type: EventWatchpoint, Registers: resp.Registers})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBreakpoint implements POST /api/breakpoint.
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ToggleBreakpoint(req.Address))
}

// handleMemory implements GET/POST /api/memory.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		addr, err := parseUintParam(r, "addr")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		length, err := parseUintParam(r, "len")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data, err := s.svc.ReadMemory(addr, length)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"address": addr, "data": data})

	case http.MethodPost:
		var req MemoryWriteRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.svc.WriteMemory(req.Address, req.Data); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

// handleAssembleLine implements POST /api/assemble-line.
func (s *Server) handleAssembleLine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req AssembleLineRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := s.svc.AssembleLine(req.Line, req.AtPC)
	resp := AssembleLineResponse{Bytes: res.Bytes, Size: res.Size}
	if res.Error != nil {
		resp.Error = res.Error.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDisassemble implements GET /api/disassemble.
func (s *Server) handleDisassemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	addr, err := parseUintParam(r, "addr")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count := 10
	if c := r.URL.Query().Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}
	lines, err := s.svc.Disassemble(addr, count)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func parseUintParam(r *http.Request, name string) (uint32, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
