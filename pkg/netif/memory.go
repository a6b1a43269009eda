package netif

import (
	"fmt"
	"net"

	"github.com/go-logr/logr"
	"github.com/ishanjain/crayond/pkg/ipalloc"
)

const (
	defaultAddr    = "127.0.0.1"
	defaultNetmask = "255.0.0.0"
)

// MemoryRegistry is a deterministic in-memory Registry. It is not safe for
// concurrent use on its own; share it through a Shared handle.
type MemoryRegistry struct {
	ifaces    map[string]Interface
	allocator *ipalloc.Allocator
	netmask   string
	logger    logr.Logger
}

// MemoryOption configures a MemoryRegistry
type MemoryOption func(*MemoryRegistry) error

// WithSubnet makes Create hand out addresses from subnet instead of the
// fixed loopback default.
func WithSubnet(subnet string) MemoryOption {
	return func(m *MemoryRegistry) error {
		_, ipnet, err := net.ParseCIDR(subnet)
		if err != nil {
			return fmt.Errorf("invalid subnet: %w", err)
		}
		if ipnet.IP.To4() == nil {
			return fmt.Errorf("invalid subnet: %s is not an IPv4 network", subnet)
		}
		alloc, err := ipalloc.NewAllocator(subnet, m.logger)
		if err != nil {
			return err
		}
		m.allocator = alloc
		m.netmask = net.IP(ipnet.Mask).String()
		return nil
	}
}

// WithLogger sets the logger used by the registry
func WithLogger(logger logr.Logger) MemoryOption {
	return func(m *MemoryRegistry) error {
		m.logger = logger
		return nil
	}
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry(opts ...MemoryOption) (*MemoryRegistry, error) {
	m := &MemoryRegistry{
		ifaces:  make(map[string]Interface, 10),
		netmask: defaultNetmask,
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MemoryRegistry) All() ([]Interface, error) {
	ret := make([]Interface, 0, len(m.ifaces))
	for _, iface := range m.ifaces {
		ret = append(ret, iface)
	}
	return ret, nil
}

func (m *MemoryRegistry) Get(name string) (*Interface, error) {
	iface, ok := m.ifaces[name]
	if !ok {
		return nil, nil
	}
	return &iface, nil
}

func (m *MemoryRegistry) Create(name string) (Interface, error) {
	if _, ok := m.ifaces[name]; ok {
		return Interface{}, fmt.Errorf("%s: %w", name, ErrAlreadyExists)
	}

	addr := defaultAddr
	if m.allocator != nil {
		ip, err := m.allocator.AllocateIP(name)
		if err != nil {
			return Interface{}, fmt.Errorf("failed to allocate address for %s: %w", name, err)
		}
		addr = ip
	}

	iface := Interface{Name: name, Addr: addr, Netmask: m.netmask}
	m.ifaces[name] = iface
	m.logger.V(1).Info("Created interface", "name", name, "addr", addr, "netmask", m.netmask)
	return iface, nil
}

func (m *MemoryRegistry) Delete(name string) (bool, error) {
	if _, ok := m.ifaces[name]; !ok {
		return false, nil
	}
	delete(m.ifaces, name)
	if m.allocator != nil {
		m.allocator.ReleaseIP(name)
	}
	m.logger.V(1).Info("Deleted interface", "name", name)
	return true, nil
}

// Modify is not supported, matching the system registry
func (m *MemoryRegistry) Modify(iface Interface) (bool, error) {
	return false, fmt.Errorf("%w: ip link modify %+v", ErrUnimplemented, iface)
}
