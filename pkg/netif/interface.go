package netif

import (
	"errors"
)

// Interface describes one host network interface
type Interface struct {
	Name    string `json:"name"`
	Addr    string `json:"addr"`
	Netmask string `json:"netmask"`
}

// Registry provides CRUD-style access to interface records
type Registry interface {
	// All returns every currently known interface. Order is not defined.
	All() ([]Interface, error)

	// Get returns the named interface, or nil if there is none
	Get(name string) (*Interface, error)

	// Create registers a new interface with registry-chosen address and mask
	Create(name string) (Interface, error)

	// Delete removes the named interface and reports whether it existed
	Delete(name string) (bool, error)

	// Modify updates the attributes of an existing interface
	Modify(iface Interface) (bool, error)
}

var (
	// ErrAlreadyExists is returned by Create for a name that is already registered
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnimplemented is returned by operations a registry does not support
	ErrUnimplemented = errors.New("not implemented")

	// ErrAddressResolution is returned by Get when a matching interface has no IPv4 address
	ErrAddressResolution = errors.New("unknown type of address/netmask")

	// ErrSystemQuery wraps failures of the OS interface enumeration
	ErrSystemQuery = errors.New("interface enumeration failed")
)
