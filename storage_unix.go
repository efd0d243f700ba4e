//go:build !darwin && !windows

package vision

import (
	"os"
	"path/filepath"
)

// getDefaultDataDir returns the default data directory for Linux and other Unix systems.
// Uses $XDG_DATA_HOME/<appName>/vision/ if set,
// otherwise ~/.local/share/<appName>/vision/
func getDefaultDataDir(appName string) (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appName, "vision"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "vision"), nil
}
