package errors

import "fmt"

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *WatchError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *WatchError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// WatchFailed creates an error for a path that could not be watched
func WatchFailed(path string, err error) *WatchError {
	return Wrap(err, ErrCodeWatchFailed, fmt.Sprintf("failed to watch %s", path)).
		WithDetail("path", path)
}

// StatusDirUnavailable creates an error for an unreadable status directory
func StatusDirUnavailable(dir string, err error) *WatchError {
	return Wrap(err, ErrCodeStatusDir, fmt.Sprintf("status directory unavailable: %s", dir)).
		WithDetail("dir", dir)
}

// SessionExists creates an error for a duplicate stable session id
func SessionExists(id string) *WatchError {
	return New(ErrCodeSessionExists, fmt.Sprintf("session '%s' already exists", id)).
		WithDetail("session_id", id)
}

// SessionNotFound creates an error for an unknown stable session id
func SessionNotFound(id string) *WatchError {
	return New(ErrCodeSessionNotFound, fmt.Sprintf("session '%s' not found", id)).
		WithDetail("session_id", id)
}

// SnapshotInvalid creates an error for an unparseable status file
func SnapshotInvalid(path string, err error) *WatchError {
	return Wrap(err, ErrCodeSnapshotInvalid, fmt.Sprintf("invalid status snapshot: %s", path)).
		WithDetail("path", path)
}

// DaemonAlreadyRunning creates an error for a second daemon instance
func DaemonAlreadyRunning(pid int) *WatchError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}
