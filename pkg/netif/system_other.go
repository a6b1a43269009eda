//go:build !linux

package netif

import (
	"fmt"
	"net"
)

// listAddrs uses the portable net package where netlink is not available
func listAddrs() ([]ifaddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	var ret []ifaddr
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("failed to get addresses for interface %s: %w", iface.Name, err)
		}

		if len(addrs) == 0 {
			ret = append(ret, ifaddr{name: iface.Name})
			continue
		}
		for _, addr := range addrs {
			switch v := addr.(type) {
			case *net.IPNet:
				ret = append(ret, ifaddr{name: iface.Name, ip: v.IP, mask: v.Mask})
			case *net.IPAddr:
				ret = append(ret, ifaddr{name: iface.Name, ip: v.IP})
			default:
				ret = append(ret, ifaddr{name: iface.Name})
			}
		}
	}
	return ret, nil
}
