// Package api exposes a Service over HTTP and WebSocket, the remote
// debug transport spec.md §6 adds alongside the in-process console
// debugger: POST /api/load, /api/step, /api/run, /api/breakpoint,
// GET/POST /api/memory, POST /api/assemble-line, GET /api/disassemble,
// and GET /ws/events for a live step/breakpoint/halt stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/phroun/burst-sub000/service"
)

// Server is the HTTP/WebSocket front end for one Service instance.
type Server struct {
	svc         *service.Service
	broadcaster *Broadcaster
	mux         *http.ServeMux
	httpServer  *http.Server
	port        int
}

// NewServer creates a server serving svc on port.
func NewServer(svc *service.Service, port int) *Server {
	s := &Server{
		svc:         svc,
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}
	s.registerRoutes()
	s.svc.SetOutputListener(func(chunk []byte) {
		s.broadcaster.Publish(Event{Type: EventOutput, Output: string(chunk)})
	})
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/load", s.handleLoad)
	s.mux.HandleFunc("/api/step", s.handleStep)
	s.mux.HandleFunc("/api/run", s.handleRun)
	s.mux.HandleFunc("/api/breakpoint", s.handleBreakpoint)
	s.mux.HandleFunc("/api/memory", s.handleMemory)
	s.mux.HandleFunc("/api/assemble-line", s.handleAssembleLine)
	s.mux.HandleFunc("/api/disassemble", s.handleDisassemble)
	s.mux.HandleFunc("/ws/events", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server and disconnects every WebSocket
// client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
