package daemon

import (
	"fmt"
	"net"

	"github.com/ishanjain/crayond/pkg/netif"
)

// resolveInterfaceToIP resolves a network interface name to its IPv4 address.
// "0.0.0.0" and literal IPs are returned unchanged.
func (d *Daemon) resolveInterfaceToIP(target string) (string, error) {
	if target == "" || target == "0.0.0.0" {
		return target, nil
	}

	// Check if it's already an IP address
	if net.ParseIP(target) != nil {
		return target, nil
	}

	// Always ask the OS, even when the links API serves the memory backend
	iface, err := netif.NewSystemRegistry(d.logger).Get(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve interface %s: %w", target, err)
	}
	if iface == nil {
		return "", fmt.Errorf("not a valid interface name or IP address: %s", target)
	}

	d.logger.Info("Resolved interface to IP",
		"interface", target,
		"ip", iface.Addr)

	return iface.Addr, nil
}

// listAvailableInterfaces returns the host's interfaces with their IPv4 addresses
func (d *Daemon) listAvailableInterfaces() []string {
	ifaces, err := netif.NewSystemRegistry(d.logger).All()
	if err != nil {
		return []string{}
	}

	result := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		result = append(result, fmt.Sprintf("%s: %s", iface.Name, iface.Addr))
	}
	return result
}
