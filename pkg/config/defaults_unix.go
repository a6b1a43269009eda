//go:build !windows

package config

// DefaultConfigPath is where crayond looks for its config file
const DefaultConfigPath = "/etc/crayond/config.yml"

// getDefaultSocketPath returns the platform-specific default socket path
func getDefaultSocketPath() string {
	return "/var/run/crayond.sock"
}
