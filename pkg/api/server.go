package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/ishanjain/crayond/pkg/health"
	"github.com/ishanjain/crayond/pkg/netif"
)

const (
	DefaultPort = 8000
)

// Config holds the API server configuration
type Config struct {
	Address string
	Port    int

	// Registry is shared by all request handlers. It must be safe for
	// concurrent use, normally a *netif.Shared.
	Registry netif.Registry
	Monitor  *health.Monitor
	Logger   logr.Logger

	// LogRequests logs one line per request
	LogRequests bool
}

// Server serves the links API
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
	registry netif.Registry
	monitor  *health.Monitor
	logger   logr.Logger

	logRequests atomic.Bool
}

// NewServer creates the API server and its route table
func NewServer(config Config) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Monitor == nil {
		config.Monitor = health.NewMonitor(health.Config{Logger: config.Logger})
	}

	s := &Server{
		addr:     net.JoinHostPort(config.Address, fmt.Sprint(config.Port)),
		registry: config.Registry,
		monitor:  config.Monitor,
		logger:   config.Logger,
	}
	s.logRequests.Store(config.LogRequests)

	mux := http.NewServeMux()
	s.monitor.Register(mux)
	mux.HandleFunc("GET /links", s.handleList)
	mux.HandleFunc("POST /links", s.handleCreate)
	mux.HandleFunc("GET /links/{name}", s.handleGet)
	mux.HandleFunc("DELETE /links/{name}", s.handleDelete)
	mux.HandleFunc("PATCH /links/{name}", s.handleModify)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.logRequestsMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the bound address once Start succeeded, else the configured one
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// SetLogRequests toggles per-request logging
func (s *Server) SetLogRequests(enabled bool) {
	s.logRequests.Store(enabled)
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.logger.Info("Starting API server", "address", listener.Addr().String())

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, "API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequestsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.logRequests.Load() {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr)
	})
}
