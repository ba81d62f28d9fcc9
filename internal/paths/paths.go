// Package paths resolves the directories pomo reads and writes.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override the default locations.
const (
	EnvDataDir  = "POMO_DATA_DIR"
	EnvStateDir = "POMO_STATE_DIR"
	EnvConfig   = "POMO_CONFIG"
)

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// DefaultStateDir returns the directory holding the timer state file.
func DefaultStateDir() (string, error) {
	return fromEnvOrHome(EnvStateDir, ".local", "state", "pomo")
}

// DefaultDataDir returns the directory holding tasks, projects and events.
func DefaultDataDir() (string, error) {
	return fromEnvOrHome(EnvDataDir, ".local", "share", "pomo")
}

// GlobalConfigPath returns the path of the user's config file.
func GlobalConfigPath() (string, error) {
	return fromEnvOrHome("", ".config", "pomo", "config.toml")
}

// OverrideConfigPath returns the config file named by POMO_CONFIG, if any.
func OverrideConfigPath() string {
	return strings.TrimSpace(os.Getenv(EnvConfig))
}

func fromEnvOrHome(envVar string, elems ...string) (string, error) {
	if envVar != "" {
		if dir := strings.TrimSpace(os.Getenv(envVar)); dir != "" {
			return filepath.Clean(dir), nil
		}
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, elems...)...), nil
}
