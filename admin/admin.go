// Package admin serves an HTTP API for placing toys on a running portal and
// inspecting its state.
//
// Routes:
//
//	GET  /slots                  snapshot of every slot
//	GET  /slots/{index}          one slot
//	POST /slots/{index}/insert   place the slot's toy on the portal
//	POST /slots/{index}/remove   lift the slot's toy off the portal
//	GET  /stats                  engine counters
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ardnew/softportal/pkg"
	"github.com/ardnew/softportal/portal"
)

// Default server settings.
const (
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Controller is the portal surface the API drives. *portal.Portal
// implements it.
type Controller interface {
	Insert(ctx context.Context, index int) error
	Remove(ctx context.Context, index int) error
	Snapshot() portal.Snapshot
	Stats() portal.Stats
}

// Server routes admin requests to a Controller.
type Server struct {
	ctrl    Controller
	router  *mux.Router
	timeout time.Duration
}

// New creates an admin server for ctrl.
func New(ctrl Controller) *Server {
	s := &Server{
		ctrl:    ctrl,
		router:  mux.NewRouter(),
		timeout: DefaultRequestTimeout,
	}

	s.router.Use(logRequests)
	s.router.HandleFunc("/slots", s.listSlots).Methods(http.MethodGet)
	s.router.HandleFunc("/slots/{index}", s.getSlot).Methods(http.MethodGet)
	s.router.HandleFunc("/slots/{index}/insert", s.insert).Methods(http.MethodPost)
	s.router.HandleFunc("/slots/{index}/remove", s.remove).Methods(http.MethodPost)
	s.router.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("admin listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.timeout,
	}

	pkg.LogInfo(pkg.ComponentAdmin, "admin API listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin shutdown: %w", err)
	}
	<-errCh
	pkg.LogInfo(pkg.ComponentAdmin, "admin API stopped")
	return nil
}

func (s *Server) listSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) getSlot(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	index, ok := s.slotIndex(w, r)
	if !ok {
		return
	}
	if index >= len(snap.Slots) {
		writeError(w, fmt.Errorf("slot %d: %w", index, pkg.ErrInvalidSlot))
		return
	}
	writeJSON(w, http.StatusOK, snap.Slots[index])
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	s.presence(w, r, s.ctrl.Insert)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.presence(w, r, s.ctrl.Remove)
}

func (s *Server) presence(w http.ResponseWriter, r *http.Request, signal func(context.Context, int) error) {
	index, ok := s.slotIndex(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if err := signal(ctx, index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Stats())
}

// slotIndex parses the {index} path variable, answering 400 if it is not a
// non-negative integer.
func (s *Server) slotIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		writeError(w, fmt.Errorf("slot %q: %w", raw, pkg.ErrInvalidSlot))
		return 0, false
	}
	return index, true
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, pkg.ErrInvalidSlot):
		return http.StatusBadRequest
	case errors.Is(err, pkg.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, pkg.ErrToyNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkg.ErrToyCorrupt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		pkg.LogError(pkg.ComponentAdmin, "request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		pkg.LogWarn(pkg.ComponentAdmin, "response encode failed", "error", err)
	}
}

// logRequests logs each request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		pkg.LogDebug(pkg.ComponentAdmin, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start))
	})
}
