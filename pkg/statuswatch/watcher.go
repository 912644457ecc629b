// Package statuswatch observes the directory where agents rewrite their
// per-session status snapshot files and delivers parsed snapshots.
package statuswatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/sirupsen/logrus"
)

// Callback receives a parsed snapshot keyed by the external session id the
// file name encodes. Delivery happens on the watcher's single dispatch
// goroutine; there is no concurrent delivery.
type Callback func(externalID string, snapshot *models.StatusSnapshot)

// Options tunes watcher timing.
type Options struct {
	// PollInterval is the fallback re-enumeration cadence for missed
	// notifications. Zero selects the default of 2s.
	PollInterval time.Duration
}

// Watcher watches a status directory at the directory level so newly
// appearing {externalSessionId}.json files are picked up without separate
// setup. A per-file-name modification-time ledger suppresses re-parsing of
// files that have not advanced; a timestamp tie is treated as no change.
type Watcher struct {
	mu sync.Mutex

	dir      string
	fsw      *fsnotify.Watcher
	callback Callback
	log      *logrus.Entry

	// lastSeen records the last observed modification time per file name.
	lastSeen map[string]time.Time

	done   chan struct{}
	closed bool
}

// NewWatcher creates the status directory if needed, starts watching it,
// and performs an initial enumeration so pre-existing files are delivered.
func NewWatcher(dir string, callback Callback, opts Options) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeStatusDir, "status directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStatusDir, "failed to create status directory").
			WithDetail("dir", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to create filesystem watcher")
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStatusDir, "failed to watch status directory").
			WithDetail("dir", dir)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}

	w := &Watcher{
		dir:      dir,
		fsw:      fsw,
		callback: callback,
		log:      logging.NewLogger("status-watcher"),
		lastSeen: make(map[string]time.Time),
		done:     make(chan struct{}),
	}

	w.mu.Lock()
	w.scanLocked()
	w.mu.Unlock()

	go w.run(opts.PollInterval)
	return w, nil
}

// Dir returns the watched status directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Cleanup deletes the status file for an external session id and clears its
// ledger entry. Used when the caller deletes a session. A missing file is
// not an error.
func (w *Watcher) Cleanup(externalID string) error {
	if externalID == "" || strings.ContainsAny(externalID, "/\\") {
		return errors.New(errors.ErrCodeInvalidInput, "external session id must be a bare file name").
			WithDetail("externalId", externalID)
	}

	name := externalID + ".json"

	w.mu.Lock()
	delete(w.lastSeen, name)
	w.mu.Unlock()

	path := filepath.Join(w.dir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to remove status file").
			WithDetail("path", path)
	}
	return nil
}

// Close stops watching and shuts down the dispatch goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	return w.fsw.Close()
}

// run consumes directory notifications and drives the polling fallback.
func (w *Watcher) run(pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if !w.closed {
				w.scanLocked()
			}
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("Filesystem watcher error")
		case <-ticker.C:
			w.mu.Lock()
			if !w.closed {
				w.scanLocked()
			}
			w.mu.Unlock()
		case <-w.done:
			return
		}
	}
}

// scanLocked re-enumerates the status directory and delivers a snapshot for
// every file whose modification time advanced past the recorded one.
func (w *Watcher) scanLocked() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.WithError(err).WithField("dir", w.dir).Warn("Failed to enumerate status directory")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		if last, ok := w.lastSeen[name]; ok && !info.ModTime().After(last) {
			continue
		}
		w.lastSeen[name] = info.ModTime()

		externalID := strings.TrimSuffix(name, ".json")
		path := filepath.Join(w.dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			w.log.WithError(err).WithField("path", path).Debug("Failed to read status file")
			continue
		}

		snapshot, err := models.ParseStatusSnapshot(data)
		if err != nil {
			// A partially-written file fails this tick silently and is
			// retried on the next write notification.
			w.log.WithError(err).WithField("path", path).Debug("Skipping unparseable status file")
			continue
		}

		w.callback(externalID, snapshot)
	}
}
