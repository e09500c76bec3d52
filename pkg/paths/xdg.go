// Package paths provides XDG-compliant path resolution for Vivid.
//
// Resolution order:
// 1. VIVID_HOME (portable root) → $VIVID_HOME/{config,data,state,cache}
// 2. XDG env vars → $XDG_*_HOME/vivid
// 3. Platform defaults → ~/.config/vivid, ~/.local/state/vivid, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if vividHome := os.Getenv("VIVID_HOME"); vividHome != "" {
		return filepath.Join(vividHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getDataHome returns the base data home directory.
func getDataHome() string {
	if vividHome := os.Getenv("VIVID_HOME"); vividHome != "" {
		return filepath.Join(vividHome, "data")
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if vividHome := os.Getenv("VIVID_HOME"); vividHome != "" {
		return filepath.Join(vividHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the vivid config directory (e.g. ~/.config/vivid).
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	if os.Getenv("VIVID_HOME") != "" {
		return base
	}
	return filepath.Join(base, "vivid")
}

// DataDir returns the vivid data directory (e.g. ~/.local/share/vivid).
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	if os.Getenv("VIVID_HOME") != "" {
		return base
	}
	return filepath.Join(base, "vivid")
}

// StateDir returns the vivid state directory (e.g. ~/.local/state/vivid).
// Durable IDE-side state (panel layout, window size) lives here.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	if os.Getenv("VIVID_HOME") != "" {
		return base
	}
	return filepath.Join(base, "vivid")
}

// RuntimeSocket returns the default path of the vivid runtime control socket.
func RuntimeSocket() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "vivid", "runtime.sock")
	}
	return filepath.Join(StateDir(), "runtime.sock")
}
