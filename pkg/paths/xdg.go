// Package paths provides XDG-compliant path resolution for agentwatch.
//
// Resolution order:
// 1. AGENTWATCH_HOME (portable root) → $AGENTWATCH_HOME/{config,data,state,cache}
// 2. XDG env vars → $XDG_*_HOME/agentwatch
// 3. Platform defaults → ~/.config/agentwatch, ~/.local/share/agentwatch, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("AGENTWATCH_HOME"); home != "" {
		return filepath.Join(home, "config")
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
	if home := os.Getenv("AGENTWATCH_HOME"); home != "" {
		return filepath.Join(home, "data")
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
	if home := os.Getenv("AGENTWATCH_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if home := os.Getenv("AGENTWATCH_HOME"); home != "" {
		return filepath.Join(home, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the agentwatch configuration directory.
// Used for config files like agentwatch.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "agentwatch")
}

// DataDir returns the agentwatch data directory.
// Used for the session-id bridge map and other durable artifacts.
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "agentwatch")
}

// StateDir returns the agentwatch state directory.
// Used for runtime state: status snapshots, the daemon socket and pidfile, logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "agentwatch")
}

// CacheDir returns the agentwatch cache directory.
// Used for discardable derived data.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "agentwatch")
}

// RuntimeDir returns the per-user runtime directory when the platform
// provides one, falling back to the state directory.
func RuntimeDir() string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "agentwatch")
	}
	return StateDir()
}

// StatusDir returns the directory where agents drop status snapshot files.
// Each file is named {externalSessionID}.json and rewritten in place.
func StatusDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "status")
}

// SessionMapDir returns the directory holding the external-to-stable
// session-id bridge files, one file per external id.
func SessionMapDir() string {
	data := DataDir()
	if data == "" {
		return ""
	}
	return filepath.Join(data, "session-map")
}

// SocketPath returns the daemon's unix domain socket path.
func SocketPath() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "agentwatch.sock")
}

// PidFilePath returns the daemon's pidfile path.
func PidFilePath() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "agentwatch.pid")
}

// LogDir returns the directory for daemon log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// EnsureDirs creates the standard agentwatch directory tree.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), DataDir(), StateDir(), CacheDir(), StatusDir(), SessionMapDir(), LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
