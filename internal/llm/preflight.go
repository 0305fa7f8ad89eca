package llm

import (
	"fmt"
	"os/exec"
)

// Preflight checks that the model command is available on PATH.
func Preflight(command string) error {
	if command == "" {
		command = "claude"
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("required binary not found in PATH: %s", command)
	}
	return nil
}
