package transcript

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/sirupsen/logrus"
)

// Callback receives state changes inferred from a session's transcript.
// Callbacks are delivered synchronously on the watcher's dispatch goroutine
// and must not call back into the Watcher.
type Callback func(sessionID string, state models.SessionState, path string)

// Options tunes watcher timing.
type Options struct {
	// PollInterval is the fallback polling cadence for pending paths and
	// missed write notifications. Zero selects the default of 2s.
	PollInterval time.Duration

	// Debounce is the quiet period applied to bursts of write events on a
	// single file before it is re-read. Zero disables debouncing.
	Debounce time.Duration
}

// Watcher maintains at most one live transcript watch per session id, over
// paths that may not exist yet, may change, and are owned by an external
// process.
//
// A requested path that does not exist is held in a pending set while the
// containing directory is watched; the path is promoted to a live file watch
// once it appears. Directories are watched at most once regardless of how
// many pending paths share them, and torn down when the last pending member
// leaves. On every write notification the entire file is re-read and
// re-classified; the external process may truncate or rewrite the file, and
// a content-complete reread cannot desynchronize.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	callback Callback
	opts     Options
	log      *logrus.Entry

	// active maps session id to its watched transcript path.
	active map[string]string
	// pending maps session id to a requested path that does not exist yet.
	pending map[string]string
	// fileSessions maps a watched file path to the sessions attached to it.
	fileSessions map[string]map[string]bool
	// dirSessions maps a watched directory to the sessions pending inside it.
	dirSessions map[string]map[string]bool
	// lastMtime records the last observed modification time per active path,
	// consulted only by the polling fallback.
	lastMtime map[string]time.Time
	// debounce holds the pending re-read timer per path.
	debounce map[string]*time.Timer

	done   chan struct{}
	closed bool
}

// NewWatcher creates a transcript watcher and starts its dispatch goroutine.
func NewWatcher(callback Callback, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to create filesystem watcher")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}

	w := &Watcher{
		fsw:          fsw,
		callback:     callback,
		opts:         opts,
		log:          logging.NewLogger("transcript-watcher"),
		active:       make(map[string]string),
		pending:      make(map[string]string),
		fileSessions: make(map[string]map[string]bool),
		dirSessions:  make(map[string]map[string]bool),
		lastMtime:    make(map[string]time.Time),
		debounce:     make(map[string]*time.Timer),
		done:         make(chan struct{}),
	}

	go w.run()
	return w, nil
}

// Watch begins or redirects the transcript watch for a session. It is an
// idempotent no-op when the session already watches (or is pending on)
// exactly that path. When the session watches a different path, the old
// watch is torn down first: the newest instruction wins. A path that does
// not exist yet is tracked as pending and promoted once it appears.
func (w *Watcher) Watch(sessionID, path string) error {
	if sessionID == "" || path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session id and path must not be empty")
	}
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New(errors.ErrCodeWatcherClosed, "transcript watcher is closed")
	}

	if w.active[sessionID] == path || w.pending[sessionID] == path {
		return nil
	}

	w.detachLocked(sessionID)

	if _, err := os.Stat(path); err == nil {
		return w.attachFileLocked(sessionID, path, true)
	}

	return w.attachPendingLocked(sessionID, path)
}

// Stop releases the watch for a session, clearing any pending bookkeeping
// and tearing down directory watches with no remaining members. No callback
// for the session is delivered after Stop returns.
func (w *Watcher) Stop(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detachLocked(sessionID)
}

// StopAll tears down every active and pending watch. The watcher remains
// usable for new Watch calls.
func (w *Watcher) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for sessionID := range w.active {
		w.detachLocked(sessionID)
	}
	for sessionID := range w.pending {
		w.detachLocked(sessionID)
	}
}

// Watching reports the path currently watched or pending for a session, and
// whether the watch is still pending on file creation.
func (w *Watcher) Watching(sessionID string) (path string, pending bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.active[sessionID]; ok {
		return p, false
	}
	if p, ok := w.pending[sessionID]; ok {
		return p, true
	}
	return "", false
}

// Close stops all watches and shuts down the dispatch goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for sessionID := range w.active {
		w.detachLocked(sessionID)
	}
	for sessionID := range w.pending {
		w.detachLocked(sessionID)
	}
	close(w.done)
	w.mu.Unlock()

	return w.fsw.Close()
}

// attachFileLocked adds a live file watch for a session and, when requested,
// performs an immediate read-and-classify pass so the caller does not wait
// for the next write.
func (w *Watcher) attachFileLocked(sessionID, path string, initialPass bool) error {
	if w.fileSessions[path] == nil {
		if err := w.fsw.Add(path); err != nil {
			w.log.WithError(err).WithField("path", path).Warn("Failed to watch transcript file")
			return errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to watch transcript file").
				WithDetail("path", path)
		}
		w.fileSessions[path] = make(map[string]bool)
	}
	w.fileSessions[path][sessionID] = true
	w.active[sessionID] = path

	w.log.WithFields(logrus.Fields{"session": sessionID, "path": path}).Debug("Watching transcript")

	if initialPass {
		w.readAndDispatchLocked(path)
	}
	return nil
}

// attachPendingLocked registers a not-yet-existing path for a session and
// ensures its containing directory is watched.
func (w *Watcher) attachPendingLocked(sessionID, path string) error {
	dir := filepath.Dir(path)

	if w.dirSessions[dir] == nil {
		if err := w.fsw.Add(dir); err != nil {
			w.log.WithError(err).WithField("dir", dir).Warn("Failed to watch transcript directory")
			return errors.Wrap(err, errors.ErrCodeWatchFailed, "failed to watch transcript directory").
				WithDetail("dir", dir)
		}
		w.dirSessions[dir] = make(map[string]bool)
	}
	w.dirSessions[dir][sessionID] = true
	w.pending[sessionID] = path

	w.log.WithFields(logrus.Fields{"session": sessionID, "path": path}).Debug("Transcript missing, pending on directory")
	return nil
}

// detachLocked removes all watch bookkeeping for a session, releasing the
// file or directory handle when the last referencing session leaves.
func (w *Watcher) detachLocked(sessionID string) {
	if path, ok := w.active[sessionID]; ok {
		delete(w.active, sessionID)
		if sessions := w.fileSessions[path]; sessions != nil {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(w.fileSessions, path)
				delete(w.lastMtime, path)
				if timer := w.debounce[path]; timer != nil {
					timer.Stop()
					delete(w.debounce, path)
				}
				if err := w.fsw.Remove(path); err != nil {
					w.log.WithError(err).WithField("path", path).Debug("Failed to remove file watch")
				}
			}
		}
	}

	if path, ok := w.pending[sessionID]; ok {
		delete(w.pending, sessionID)
		dir := filepath.Dir(path)
		if sessions := w.dirSessions[dir]; sessions != nil {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(w.dirSessions, dir)
				if err := w.fsw.Remove(dir); err != nil {
					w.log.WithError(err).WithField("dir", dir).Debug("Failed to remove directory watch")
				}
			}
		}
	}
}

// run consumes filesystem notifications and drives the polling fallback.
func (w *Watcher) run() {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("Filesystem watcher error")
		case <-ticker.C:
			w.poll()
		case <-w.done:
			return
		}
	}
}

// handleEvent routes a filesystem notification to file or directory logic.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	path := filepath.Clean(event.Name)

	if w.fileSessions[path] != nil {
		switch {
		case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
			w.scheduleReadLocked(path)
		case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
			// The file is gone; fall back to pending so a recreated file
			// re-promotes without a fresh Watch call.
			w.demoteToPendingLocked(path)
		}
		return
	}

	// A directory event: re-attempt every pending path in that directory.
	// The event may name the directory itself or an entry inside it.
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if w.dirSessions[path] != nil {
		w.promotePendingLocked(path)
	}
	if dir := filepath.Dir(path); w.dirSessions[dir] != nil {
		w.promotePendingLocked(dir)
	}
}

// scheduleReadLocked re-reads a file immediately, or after the debounce
// window when one is configured.
func (w *Watcher) scheduleReadLocked(path string) {
	if w.opts.Debounce <= 0 {
		w.readAndDispatchLocked(path)
		return
	}

	if timer, ok := w.debounce[path]; ok {
		timer.Reset(w.opts.Debounce)
		return
	}
	w.debounce[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		delete(w.debounce, path)
		if w.fileSessions[path] != nil {
			w.readAndDispatchLocked(path)
		}
	})
}

// demoteToPendingLocked moves every session attached to a removed file back
// to the pending set.
func (w *Watcher) demoteToPendingLocked(path string) {
	sessions := w.fileSessions[path]
	if sessions == nil {
		return
	}

	ids := make([]string, 0, len(sessions))
	for sessionID := range sessions {
		ids = append(ids, sessionID)
	}
	for _, sessionID := range ids {
		w.detachLocked(sessionID)
		if err := w.attachPendingLocked(sessionID, path); err != nil {
			w.log.WithError(err).WithField("session", sessionID).Warn("Failed to re-pend removed transcript")
		}
	}
}

// promotePendingLocked re-attempts every pending path inside a directory,
// promoting newly openable paths to live file watches.
func (w *Watcher) promotePendingLocked(dir string) {
	var promote []string
	for sessionID := range w.dirSessions[dir] {
		path := w.pending[sessionID]
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			promote = append(promote, sessionID)
		}
	}

	for _, sessionID := range promote {
		path := w.pending[sessionID]
		w.detachLocked(sessionID)
		if err := w.attachFileLocked(sessionID, path, true); err != nil {
			w.log.WithError(err).WithField("session", sessionID).Warn("Failed to promote pending transcript")
		}
	}
}

// poll is the bounded fallback for missed notifications: it promotes pending
// paths that have appeared and re-reads active files whose modification time
// advanced since the last observation.
func (w *Watcher) poll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	dirs := make([]string, 0, len(w.dirSessions))
	for dir := range w.dirSessions {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		w.promotePendingLocked(dir)
	}

	for path := range w.fileSessions {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if last, ok := w.lastMtime[path]; !ok || info.ModTime().After(last) {
			w.readAndDispatchLocked(path)
		}
	}
}

// readAndDispatchLocked re-reads the entire file, classifies its newest
// entry, and delivers the state to every session attached to the path.
func (w *Watcher) readAndDispatchLocked(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may have vanished between notification and read; the
		// previous state is retained and the next event retries.
		w.log.WithError(err).WithField("path", path).Debug("Failed to read transcript")
		return
	}

	if info, err := os.Stat(path); err == nil {
		w.lastMtime[path] = info.ModTime()
	}

	state := ClassifyTranscript(data)
	for sessionID := range w.fileSessions[path] {
		w.callback(sessionID, state, path)
	}
}
