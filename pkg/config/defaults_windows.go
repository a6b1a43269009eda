//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath is where crayond looks for its config file
var DefaultConfigPath = filepath.Join(programData(), "crayond", "config.yml")

func programData() string {
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return programData
}

// getDefaultSocketPath returns the platform-specific default socket path
func getDefaultSocketPath() string {
	// Windows named pipe path
	return `\\.\pipe\crayond`
}
