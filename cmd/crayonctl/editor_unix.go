//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/exec"
)

func openEditor(configPath string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	args := []string{editor, configPath}
	// The config file is root-owned
	if os.Geteuid() != 0 {
		args = append([]string{"sudo"}, args...)
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
