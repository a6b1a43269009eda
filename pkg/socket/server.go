package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/ishanjain/crayond/pkg/netif"
)

// DaemonController interface for daemon operations
type DaemonController interface {
	GetStatus() StatusResponse
}

// Command represents a command from crayonctl
type Command struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response represents a response to the client
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StatusResponse contains daemon status information
type StatusResponse struct {
	Backend    string `json:"backend"`
	APIAddress string `json:"api_address"`
	Ready      bool   `json:"ready"`
	Uptime     string `json:"uptime"`
}

// Server handles local control socket communication
type Server struct {
	socketPath string
	daemon     DaemonController
	registry   netif.Registry
	listener   net.Listener
	logger     logr.Logger
	wg         sync.WaitGroup
}

// NewServer creates a new control socket server. registry must be safe
// for concurrent use.
func NewServer(socketPath string, daemon DaemonController, registry netif.Registry, logger logr.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		daemon:     daemon,
		registry:   registry,
		logger:     logger,
	}
}

// Start starts the control socket server
func (s *Server) Start() error {
	listener, err := s.createListener()
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("Control socket server started", "path", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop stops the control socket server
func (s *Server) Stop() error {
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Server stopped
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Read command
	reader := bufio.NewReader(conn)
	var cmd Command
	if err := json.NewDecoder(reader).Decode(&cmd); err != nil {
		s.sendError(conn, fmt.Sprintf("failed to decode command: %v", err))
		return
	}

	s.logger.V(1).Info("Received command", "command", cmd.Command, "args", cmd.Args)

	// Execute command
	resp := s.executeCommand(cmd)

	// Send response
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.logger.Error(err, "Failed to send response")
	}
}

func (s *Server) executeCommand(cmd Command) Response {
	switch cmd.Command {
	case "status":
		return Response{Success: true, Data: s.daemon.GetStatus()}

	case "list":
		links, err := s.registry.All()
		if err != nil {
			return Response{Success: false, Error: err.Error()}
		}
		return Response{Success: true, Data: links}

	case "get":
		if len(cmd.Args) == 0 {
			return Response{Success: false, Error: "link name required"}
		}
		link, err := s.registry.Get(cmd.Args[0])
		if err != nil {
			return Response{Success: false, Error: err.Error()}
		}
		if link == nil {
			return Response{Success: false, Error: fmt.Sprintf("no such link: %s", cmd.Args[0])}
		}
		return Response{Success: true, Data: link}

	default:
		return Response{Success: false, Error: fmt.Sprintf("unknown command: %s", cmd.Command)}
	}
}

func (s *Server) sendError(conn net.Conn, msg string) {
	json.NewEncoder(conn).Encode(Response{Success: false, Error: msg})
}
