//go:build linux

package netif

import (
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// listAddrs walks every link over netlink and returns its addresses of all
// families. Links without addresses yield a single entry with a nil IP.
func listAddrs() ([]ifaddr, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	var ret []ifaddr
	for _, link := range links {
		name := link.Attrs().Name

		addrs, err := netlink.AddrList(link, unix.AF_UNSPEC)
		if err != nil {
			return nil, fmt.Errorf("failed to list addresses of %s: %w", name, err)
		}

		if len(addrs) == 0 {
			ret = append(ret, ifaddr{name: name})
			continue
		}
		for _, addr := range addrs {
			if addr.IPNet == nil {
				ret = append(ret, ifaddr{name: name})
				continue
			}
			ret = append(ret, ifaddr{
				name: name,
				ip:   addr.IPNet.IP,
				mask: addr.IPNet.Mask,
			})
		}
	}
	return ret, nil
}
