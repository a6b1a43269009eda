package api

import (
	"encoding/json"
	"net/http"

	"github.com/ishanjain/crayond/pkg/netif"
)

// CreateRequest is the body of POST /links
type CreateRequest struct {
	Name string `json:"name"`
}

// ModifyRequest is the body of PATCH /links/{name}
type ModifyRequest struct {
	Addr    string `json:"addr"`
	Netmask string `json:"netmask"`
}

// Error is the body of every 4xx/5xx response that carries an error
type Error struct {
	Error string `json:"error"`
}

// Each handler makes exactly one registry call. Registry errors become 500,
// absence becomes 404.

// GET /links => JSON list of links
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ifaces, err := s.registry.All()
	s.monitor.RecordOperation("all", err)
	if err != nil {
		s.internalError(w, "all", err)
		return
	}
	writeJSON(w, http.StatusOK, ifaces)
}

// GET /links/{name} => JSON object or 404
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	iface, err := s.registry.Get(name)
	s.monitor.RecordOperation("get", err)
	if err != nil {
		s.internalError(w, "get", err, "name", name)
		return
	}
	if iface == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(name))
		return
	}
	writeJSON(w, http.StatusOK, iface)
}

// POST /links {"name": ...} => JSON object of the created link
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, Error{Error: "name is required"})
		return
	}

	iface, err := s.registry.Create(req.Name)
	s.monitor.RecordOperation("create", err)
	if err != nil {
		s.internalError(w, "create", err, "name", req.Name)
		return
	}
	s.logger.Info("Created link", "name", iface.Name, "addr", iface.Addr)
	writeJSON(w, http.StatusOK, iface)
}

// DELETE /links/{name} => JSON bool, 200 or 404
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	removed, err := s.registry.Delete(name)
	s.monitor.RecordOperation("delete", err)
	if err != nil {
		s.internalError(w, "delete", err, "name", name)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, false)
		return
	}
	s.logger.Info("Deleted link", "name", name)
	writeJSON(w, http.StatusOK, true)
}

// PATCH /links/{name} {JSON body} => JSON bool, 200 or 404
func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Error: "invalid JSON: " + err.Error()})
		return
	}

	modified, err := s.registry.Modify(netif.Interface{
		Name:    name,
		Addr:    req.Addr,
		Netmask: req.Netmask,
	})
	s.monitor.RecordOperation("modify", err)
	if err != nil {
		s.internalError(w, "modify", err, "name", name)
		return
	}
	if !modified {
		writeJSON(w, http.StatusNotFound, false)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error, kv ...interface{}) {
	s.logger.Error(err, "Registry operation failed", append([]interface{}{"op", op}, kv...)...)
	writeJSON(w, http.StatusInternalServerError, Error{Error: err.Error()})
}

// writeJSON writes v without a trailing newline
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
