package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Status represents the daemon's operational status
type Status struct {
	Healthy    bool                       `json:"healthy"`
	Ready      bool                       `json:"ready"`
	Backend    string                     `json:"backend"`
	Uptime     string                     `json:"uptime"`
	StartTime  time.Time                  `json:"start_time"`
	Operations map[string]OperationStatus `json:"operations"`
}

// OperationStatus counts calls of one registry operation
type OperationStatus struct {
	Name      string    `json:"name"`
	Calls     int64     `json:"calls"`
	Errors    int64     `json:"errors"`
	LastCall  time.Time `json:"last_call,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Monitor provides health check and status endpoints
type Monitor struct {
	backend   string
	logger    logr.Logger
	startTime time.Time

	mu         sync.RWMutex
	operations map[string]*OperationStatus
	ready      bool
}

// Config holds the monitor configuration
type Config struct {
	// Backend names the registry variant in /status
	Backend string
	Logger  logr.Logger
}

// NewMonitor creates a new health monitor
func NewMonitor(config Config) *Monitor {
	return &Monitor{
		backend:    config.Backend,
		logger:     config.Logger,
		startTime:  time.Now(),
		operations: make(map[string]*OperationStatus),
	}
}

// Register mounts the health endpoints on mux
func (m *Monitor) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", m.handleHealth)
	mux.HandleFunc("GET /healthz", m.handleHealth)
	mux.HandleFunc("GET /ready", m.handleReady)
	mux.HandleFunc("GET /readyz", m.handleReady)
	mux.HandleFunc("GET /status", m.handleStatus)
}

// SetReady marks the daemon as ready
func (m *Monitor) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

// RecordOperation records one registry call and its outcome
func (m *Monitor) RecordOperation(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, exists := m.operations[op]
	if !exists {
		st = &OperationStatus{Name: op}
		m.operations[op] = st
	}
	st.Calls++
	st.LastCall = time.Now()
	if err != nil {
		st.Errors++
		st.LastError = err.Error()
	}
}

// Snapshot returns the current status
func (m *Monitor) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		Healthy:    true,
		Ready:      m.ready,
		Backend:    m.backend,
		Uptime:     time.Since(m.startTime).Round(time.Second).String(),
		StartTime:  m.startTime,
		Operations: make(map[string]OperationStatus, len(m.operations)),
	}
	for name, op := range m.operations {
		status.Operations[name] = *op
	}
	return status
}

// handleHealth answers liveness probes with an empty 200
func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleReady handles /ready and /readyz requests
func (m *Monitor) handleReady(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	ready := m.ready
	m.mu.RUnlock()

	if ready {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ready\n")
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "not ready\n")
	}
}

// handleStatus handles /status requests
func (m *Monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Snapshot()); err != nil {
		m.logger.Error(err, "Failed to write status")
	}
}
