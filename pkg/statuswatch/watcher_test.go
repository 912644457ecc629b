package statuswatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotEvent struct {
	externalID string
	snapshot   *models.StatusSnapshot
}

type recorder struct {
	mu     sync.Mutex
	events []snapshotEvent
}

func (r *recorder) callback(externalID string, snapshot *models.StatusSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, snapshotEvent{externalID, snapshot})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) last() (snapshotEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return snapshotEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

func writeStatus(t *testing.T, dir, externalID, transcriptPath string) string {
	t.Helper()
	path := filepath.Join(dir, externalID+".json")
	body := fmt.Sprintf(`{"session_id":%q,"transcript_path":%q}`, externalID, transcriptPath)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestInitialEnumeration(t *testing.T) {
	dir := t.TempDir()
	writeStatus(t, dir, "ext-1", "/tmp/t1.jsonl")

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	// Pre-existing files are delivered by the initial scan.
	ev, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, "ext-1", ev.externalID)
	assert.Equal(t, "/tmp/t1.jsonl", ev.snapshot.TranscriptPath)
}

func TestNewFileDetected(t *testing.T) {
	dir := t.TempDir()

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	writeStatus(t, dir, "ext-2", "/tmp/t2.jsonl")

	require.Eventually(t, func() bool {
		ev, ok := rec.last()
		return ok && ev.externalID == "ext-2"
	}, 3*time.Second, 10*time.Millisecond)
}

// ledgerWatcher builds a watcher without the dispatch goroutine so scans can
// be driven deterministically.
func ledgerWatcher(dir string, rec *recorder) *Watcher {
	return &Watcher{
		dir:      dir,
		callback: rec.callback,
		log:      logging.NewLogger("status-watcher-test"),
		lastSeen: make(map[string]time.Time),
	}
}

func TestMtimeTieIsNoChange(t *testing.T) {
	dir := t.TempDir()
	path := writeStatus(t, dir, "ext-1", "/tmp/t1.jsonl")

	rec := &recorder{}
	w := ledgerWatcher(dir, rec)

	w.scanLocked()
	require.Equal(t, 1, rec.count())

	// Rewrite the content but pin the mtime: a timestamp tie is no change.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"session_id":"ext-1","transcript_path":"/tmp/other.jsonl"}`), 0644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	w.scanLocked()
	assert.Equal(t, 1, rec.count())
}

func TestAdvancedMtimeRedelivered(t *testing.T) {
	dir := t.TempDir()
	path := writeStatus(t, dir, "ext-1", "/tmp/t1.jsonl")

	rec := &recorder{}
	w := ledgerWatcher(dir, rec)

	w.scanLocked()
	require.Equal(t, 1, rec.count())

	require.NoError(t, os.WriteFile(path, []byte(`{"session_id":"ext-1","transcript_path":"/tmp/next.jsonl"}`), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	w.scanLocked()
	require.Equal(t, 2, rec.count())

	ev, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, "/tmp/next.jsonl", ev.snapshot.TranscriptPath)
}

func TestMalformedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"session_id":`), 0644))

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 0, rec.count())
}

func TestNonJSONFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 0, rec.count())
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	path := writeStatus(t, dir, "ext-1", "/tmp/t1.jsonl")

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Cleanup("ext-1"))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	w.mu.Lock()
	_, tracked := w.lastSeen["ext-1.json"]
	w.mu.Unlock()
	assert.False(t, tracked)

	// Cleaning up an id with no file is a no-op.
	require.NoError(t, w.Cleanup("ext-unknown"))
}

func TestCleanupRejectsPathEscapes(t *testing.T) {
	dir := t.TempDir()

	rec := &recorder{}
	w, err := NewWatcher(dir, rec.callback, Options{PollInterval: time.Hour})
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Cleanup("../oops"))
	assert.Error(t, w.Cleanup(""))
}
