// Package web provides the HTTP status page and control API for the
// victron-relay daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/victron-relay/internal/links"
	"github.com/sweeney/victron-relay/internal/schedule"
	"github.com/sweeney/victron-relay/internal/status"
)

// Server serves the status page and the control API.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	store      *links.Store
	sched      *schedule.Scheduler
}

// New creates a Server bound to the given tracker, store and scheduler.
func New(addr string, tracker *status.Tracker, store *links.Store, sched *schedule.Scheduler) *Server {
	s := &Server{tracker: tracker, store: store, sched: sched}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/command", s.handleCommand)
	mux.HandleFunc("/api/override", s.handleOverride)
	mux.HandleFunc("/api/reload", s.handleReload)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, pageView{
		Snap:      s.tracker.Snapshot(),
		Links:     s.store.Snapshot(),
		Schedule:  s.sched.Schedule(),
		Threshold: s.sched.Threshold(),
		Mode:      string(s.sched.Mode()),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scheduleResponse{
		Rows:      scheduleRows(s.sched.Schedule()),
		Threshold: s.sched.Threshold(),
	})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req commandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	enabled, err := req.boolValue()
	if err != nil {
		writeError(w, http.StatusBadRequest, "val must be 0|1")
		return
	}

	var setErr error
	switch req.Kind {
	case "ON":
		setErr = s.store.SetInverter(enabled)
	case "CH":
		setErr = s.store.SetCharger(enabled)
	case "ALL":
		setErr = s.store.SetAll(enabled)
	default:
		writeError(w, http.StatusBadRequest, "kind must be ON|CH|ALL")
		return
	}
	if setErr != nil {
		log.Printf("web: command %s failed: %v", req.Kind, setErr)
		writeError(w, http.StatusInternalServerError, setErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req overrideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.sched.SetMode(schedule.Mode(req.Mode)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true, Mode: req.Mode})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	hours, err := s.sched.Reload(r.Context())
	if err != nil {
		log.Printf("web: reload failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true, Hours: hours})
}
