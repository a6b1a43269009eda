package ipalloc

import (
	"fmt"
	"net"
	"sync"

	"github.com/go-logr/logr"
)

// Allocator hands out IPv4 host addresses from a subnet, one per name
type Allocator struct {
	subnet    *net.IPNet
	first     net.IP
	nextIP    net.IP
	allocated map[string]string // name -> IP
	mu        sync.RWMutex
	logger    logr.Logger
}

// NewAllocator creates an allocator for an IPv4 subnet (e.g., 10.107.0.0/24).
// The network address is never handed out; allocation starts at .1.
func NewAllocator(subnet string, logger logr.Logger) (*Allocator, error) {
	_, ipnet, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("invalid subnet: %w", err)
	}
	base := ipnet.IP.To4()
	if base == nil {
		return nil, fmt.Errorf("invalid subnet: %s is not an IPv4 network", subnet)
	}
	if ones, bits := ipnet.Mask.Size(); bits-ones < 2 {
		return nil, fmt.Errorf("subnet %s is too small", subnet)
	}

	first := make(net.IP, net.IPv4len)
	copy(first, base)
	incrementIP(first)

	next := make(net.IP, net.IPv4len)
	copy(next, first)

	return &Allocator{
		subnet:    ipnet,
		first:     first,
		nextIP:    next,
		allocated: make(map[string]string),
		logger:    logger,
	}, nil
}

// AllocateIP allocates an IP for name.
// Reuses the existing IP if name already holds one.
func (a *Allocator) AllocateIP(name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ip, exists := a.allocated[name]; exists {
		return ip, nil
	}

	ip := make(net.IP, net.IPv4len)
	copy(ip, a.nextIP)

	// One full pass over the subnet, wrapping to the first host once
	wrapped := false
	for {
		if !a.isUsable(ip) {
			if wrapped {
				break
			}
			wrapped = true
			copy(ip, a.first)
			continue
		}

		ipStr := ip.String()
		if !a.isIPAllocated(ipStr) {
			a.allocated[name] = ipStr
			incrementIP(ip)
			copy(a.nextIP, ip)

			a.logger.V(1).Info("Allocated IP", "name", name, "ip", ipStr)
			return ipStr, nil
		}

		incrementIP(ip)
		if wrapped && ip.Equal(a.nextIP) {
			break
		}
	}

	return "", fmt.Errorf("exhausted IP range in subnet %s", a.subnet.String())
}

// isUsable reports whether ip is inside the subnet and not its broadcast address
func (a *Allocator) isUsable(ip net.IP) bool {
	if !a.subnet.Contains(ip) {
		return false
	}
	broadcast := make(net.IP, net.IPv4len)
	base := a.subnet.IP.To4()
	for i := range broadcast {
		broadcast[i] = base[i] | ^a.subnet.Mask[len(a.subnet.Mask)-net.IPv4len+i]
	}
	return !ip.Equal(broadcast)
}

// incrementIP increments an IP address by 1
func incrementIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] > 0 {
			break
		}
	}
}

// isIPAllocated checks if an IP is already allocated
func (a *Allocator) isIPAllocated(ip string) bool {
	for _, allocatedIP := range a.allocated {
		if allocatedIP == ip {
			return true
		}
	}
	return false
}

// Mappings returns all name -> IP mappings
func (a *Allocator) Mappings() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make(map[string]string, len(a.allocated))
	for k, v := range a.allocated {
		result[k] = v
	}
	return result
}

// ReleaseIP releases the IP held by name
func (a *Allocator) ReleaseIP(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ip, exists := a.allocated[name]; exists {
		delete(a.allocated, name)
		a.logger.V(1).Info("Released IP", "name", name, "ip", ip)
	}
}
