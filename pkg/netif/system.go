package netif

import (
	"fmt"
	"net"

	"github.com/go-logr/logr"
)

// ifaddr is one entry of the OS interface/address list. An interface without
// addresses shows up once with a nil IP.
type ifaddr struct {
	name string
	ip   net.IP
	mask net.IPMask
}

// ipv4 returns the entry as an Interface if it carries an IPv4 address and mask
func (a ifaddr) ipv4() (Interface, bool) {
	ip4 := a.ip.To4()
	if ip4 == nil || a.mask == nil {
		return Interface{}, false
	}
	mask := a.mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return Interface{}, false
	}
	return Interface{
		Name:    a.name,
		Addr:    ip4.String(),
		Netmask: net.IP(mask).String(),
	}, true
}

// SystemRegistry reads the live interface list of the host. Nothing is
// cached; every call queries the OS again.
type SystemRegistry struct {
	list   func() ([]ifaddr, error)
	logger logr.Logger
}

// NewSystemRegistry creates a registry backed by the host's interfaces
func NewSystemRegistry(logger logr.Logger) *SystemRegistry {
	return &SystemRegistry{
		list:   listAddrs,
		logger: logger,
	}
}

func (s *SystemRegistry) query() ([]ifaddr, error) {
	addrs, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSystemQuery, err)
	}
	return addrs, nil
}

// All returns the first IPv4 address of every interface that has one.
// Interfaces without an IPv4 address are skipped.
func (s *SystemRegistry) All() ([]Interface, error) {
	addrs, err := s.query()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(addrs))
	ret := make([]Interface, 0, len(addrs))
	for _, a := range addrs {
		if seen[a.name] {
			continue
		}
		iface, ok := a.ipv4()
		if !ok {
			s.logger.V(1).Info("Skipping entry without IPv4 address", "name", a.name, "ip", a.ip)
			continue
		}
		seen[a.name] = true
		ret = append(ret, iface)
	}
	return ret, nil
}

// Get returns the first IPv4 address of the named interface. Unlike All, an
// interface that exists but has no IPv4 address is an error.
func (s *SystemRegistry) Get(name string) (*Interface, error) {
	addrs, err := s.query()
	if err != nil {
		return nil, err
	}

	found := false
	for _, a := range addrs {
		if a.name != name {
			continue
		}
		found = true
		if iface, ok := a.ipv4(); ok {
			return &iface, nil
		}
	}
	if found {
		return nil, fmt.Errorf("%w for interface %s", ErrAddressResolution, name)
	}
	return nil, nil
}

func (s *SystemRegistry) Create(name string) (Interface, error) {
	return Interface{}, fmt.Errorf("%w: ip link create %s", ErrUnimplemented, name)
}

func (s *SystemRegistry) Delete(name string) (bool, error) {
	return false, fmt.Errorf("%w: ip link delete %s", ErrUnimplemented, name)
}

func (s *SystemRegistry) Modify(iface Interface) (bool, error) {
	return false, fmt.Errorf("%w: ip link modify %+v", ErrUnimplemented, iface)
}
