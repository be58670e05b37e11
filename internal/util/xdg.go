package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "aglab"

// GetXDGStateDir returns the XDG state directory for aglab, used for logs.
// It respects XDG_STATE_HOME if set, otherwise falls back to ~/.local/state/aglab
func GetXDGStateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "state", AppName), nil
}
