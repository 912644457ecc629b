// Package monitor owns the session registry and wires status and transcript
// watchers into session state.
package monitor

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/grovetools/agentwatch/config"
	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/bridge"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/paths"
	"github.com/grovetools/agentwatch/pkg/statuswatch"
	"github.com/grovetools/agentwatch/pkg/transcript"
	"github.com/grovetools/agentwatch/util/pathutil"
	"github.com/sirupsen/logrus"
)

// UpdateCallback receives a copy of a session record after any change to its
// snapshot or state. It must not call back into the Coordinator.
type UpdateCallback func(session *models.Session)

// Coordinator owns the list of sessions and applies watcher events to them.
// All session mutation happens under one mutex; watchers deliver events onto
// serialized dispatch goroutines, so updates for a session never interleave.
type Coordinator struct {
	mu sync.Mutex

	bridge      *bridge.Bridge
	status      *statuswatch.Watcher
	transcripts *transcript.Watcher
	log         *logrus.Entry

	sessions    map[string]*models.Session
	externalIDs map[string]string
	onUpdate    UpdateCallback
}

// New builds a coordinator from configuration, starting both watchers.
// onUpdate may be nil when the caller only polls via Sessions.
func New(cfg *config.Config, onUpdate UpdateCallback) (*Coordinator, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}

	c := &Coordinator{
		bridge:      bridge.New(expandDir(cfg.Watch.SessionMapDir)),
		log:         logging.NewLogger("session-coordinator"),
		sessions:    make(map[string]*models.Session),
		externalIDs: make(map[string]string),
		onUpdate:    onUpdate,
	}

	transcripts, err := transcript.NewWatcher(c.handleState, transcript.Options{
		PollInterval: cfg.Watch.PollIntervalDuration(),
		Debounce:     cfg.Watch.DebounceDuration(),
	})
	if err != nil {
		return nil, err
	}
	c.transcripts = transcripts

	statusDir := expandDir(cfg.Watch.StatusDir)
	if statusDir == "" {
		statusDir = paths.StatusDir()
	}
	status, err := statuswatch.NewWatcher(statusDir, c.handleSnapshot, statuswatch.Options{
		PollInterval: cfg.Watch.PollIntervalDuration(),
	})
	if err != nil {
		transcripts.Close()
		return nil, err
	}
	c.status = status

	return c, nil
}

// CreateSession registers a new session in the idle state.
func (c *Coordinator) CreateSession(stableID, name, workingDirectory string) (*models.Session, error) {
	if stableID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "stable session id must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[stableID]; exists {
		return nil, errors.SessionExists(stableID)
	}

	now := time.Now()
	session := &models.Session{
		ID:               stableID,
		Name:             name,
		WorkingDirectory: workingDirectory,
		State:            models.StateIdle,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c.sessions[stableID] = session

	c.log.WithField("session", stableID).Info("Session created")
	return cloneSession(session), nil
}

// DeleteSession stops the session's watches, removes its status file
// (best-effort), and drops the record. Watcher cleanup is synchronous, so no
// late callback can touch the removed record.
func (c *Coordinator) DeleteSession(stableID string) error {
	c.mu.Lock()
	if _, exists := c.sessions[stableID]; !exists {
		c.mu.Unlock()
		return errors.SessionNotFound(stableID)
	}
	externalID := c.externalIDs[stableID]
	c.mu.Unlock()

	c.transcripts.Stop(stableID)

	if externalID != "" {
		if err := c.status.Cleanup(externalID); err != nil {
			c.log.WithError(err).WithField("session", stableID).Warn("Failed to remove status file")
		}
	}

	c.mu.Lock()
	delete(c.sessions, stableID)
	delete(c.externalIDs, stableID)
	c.mu.Unlock()

	c.log.WithField("session", stableID).Info("Session deleted")
	return nil
}

// GetSession returns a copy of one session record.
func (c *Coordinator) GetSession(stableID string) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[stableID]
	if !ok {
		return nil, errors.SessionNotFound(stableID)
	}
	return cloneSession(session), nil
}

// Sessions returns copies of all session records, ordered by id.
func (c *Coordinator) Sessions() []*models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.Session, 0, len(c.sessions))
	for _, session := range c.sessions {
		out = append(out, cloneSession(session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SignalError records an externally detected failure as the session state.
func (c *Coordinator) SignalError(stableID string) error {
	c.mu.Lock()
	session, ok := c.sessions[stableID]
	if !ok {
		c.mu.Unlock()
		return errors.SessionNotFound(stableID)
	}
	session.State = models.StateError
	session.UpdatedAt = time.Now()
	updated := cloneSession(session)
	c.mu.Unlock()

	c.notify(updated)
	return nil
}

// Bridge exposes the session-id bridge, used by hook commands to write
// mappings.
func (c *Coordinator) Bridge() *bridge.Bridge {
	return c.bridge
}

// StatusDir returns the watched status directory.
func (c *Coordinator) StatusDir() string {
	return c.status.Dir()
}

// Close shuts down both watchers. Session records are left in place for
// inspection but receive no further updates.
func (c *Coordinator) Close() error {
	c.transcripts.StopAll()
	err := c.transcripts.Close()
	if serr := c.status.Close(); err == nil {
		err = serr
	}
	return err
}

// handleSnapshot applies a parsed status file to the session it resolves to.
// Updates with no stable-id mapping, or for ids with no registered session,
// are dropped: an unmanaged agent run is not an error.
func (c *Coordinator) handleSnapshot(externalID string, snapshot *models.StatusSnapshot) {
	stableID, err := c.bridge.Resolve(externalID)
	if err != nil {
		c.log.WithField("externalId", externalID).Debug("Dropping status update with no stable id mapping")
		return
	}

	c.mu.Lock()
	session, ok := c.sessions[stableID]
	if !ok {
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"externalId": externalID, "session": stableID}).
			Debug("Dropping status update for unregistered session")
		return
	}

	session.Snapshot = snapshot
	session.UpdatedAt = time.Now()
	c.externalIDs[stableID] = externalID
	updated := cloneSession(session)
	c.mu.Unlock()

	if snapshot.TranscriptPath != "" {
		current, _ := c.transcripts.Watching(stableID)
		if ShouldReassign(current, snapshot.TranscriptPath, fileExists) {
			if err := c.transcripts.Watch(stableID, snapshot.TranscriptPath); err != nil {
				c.log.WithError(err).WithFields(logrus.Fields{
					"session": stableID,
					"path":    snapshot.TranscriptPath,
				}).Warn("Failed to watch transcript")
			}
		}
	}

	c.notify(updated)
}

// handleState applies a classified transcript state to its session. The most
// recent value always wins; there is no merging or smoothing.
func (c *Coordinator) handleState(stableID string, state models.SessionState, path string) {
	c.mu.Lock()
	session, ok := c.sessions[stableID]
	if !ok {
		c.mu.Unlock()
		return
	}

	session.State = state
	session.TranscriptPath = path
	session.UpdatedAt = time.Now()
	updated := cloneSession(session)
	c.mu.Unlock()

	c.notify(updated)
}

func (c *Coordinator) notify(session *models.Session) {
	if c.onUpdate != nil {
		c.onUpdate(session)
	}
}

// ShouldReassign decides whether a session's transcript watch may move from
// its current path to a newly reported one. A session with no watch accepts
// any path, including one that does not exist yet (it becomes pending). A
// session already watching a path only switches when the new target is
// confirmed to exist, so a stale status file from a dead run cannot steal an
// established watch.
func ShouldReassign(currentPath, newPath string, exists func(string) bool) bool {
	if newPath == "" || newPath == currentPath {
		return false
	}
	if currentPath == "" {
		return true
	}
	return exists(newPath)
}

// expandDir resolves ~ and env vars in a configured directory. Expansion
// failures fall back to the raw value so a bad HOME does not mask the
// configured intent.
func expandDir(dir string) string {
	if dir == "" {
		return ""
	}
	expanded, err := pathutil.Expand(dir)
	if err != nil {
		return dir
	}
	return expanded
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func cloneSession(s *models.Session) *models.Session {
	cp := *s
	return &cp
}
