// Package testutil provides fixture helpers for tests that exercise the
// status and transcript watchers against real files.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// StatusFixture is the subset of the status snapshot format tests care about.
type StatusFixture struct {
	SessionID      string  `json:"session_id"`
	TranscriptPath string  `json:"transcript_path,omitempty"`
	ModelID        string  `json:"-"`
	CostUSD        float64 `json:"-"`
}

// WriteStatusFile writes a status snapshot JSON file named after the external
// session id and bumps its mtime into the future so mtime-based change
// detection always sees it as new.
func WriteStatusFile(t *testing.T, dir string, fixture StatusFixture) string {
	t.Helper()

	payload := map[string]interface{}{
		"session_id": fixture.SessionID,
	}
	if fixture.TranscriptPath != "" {
		payload["transcript_path"] = fixture.TranscriptPath
	}
	if fixture.ModelID != "" {
		payload["model"] = map[string]string{"id": fixture.ModelID}
	}
	if fixture.CostUSD > 0 {
		payload["cost"] = map[string]float64{"total_cost_usd": fixture.CostUSD}
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(dir, fixture.SessionID+".json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	BumpMtime(t, path)
	return path
}

// WriteTranscript writes a transcript file from raw JSONL lines.
func WriteTranscript(t *testing.T, path string, lines ...string) {
	t.Helper()

	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	BumpMtime(t, path)
}

// AppendTranscriptLine appends one JSONL line to an existing transcript.
func AppendTranscriptLine(t *testing.T, path, line string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(line + "\n")
	require.NoError(t, f.Close())
	require.NoError(t, err)
	BumpMtime(t, path)
}

// BumpMtime sets the file's mtime ahead of any previously recorded value so
// polling-based rereads trigger deterministically.
func BumpMtime(t *testing.T, path string) {
	t.Helper()

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
}

// UserLine is a transcript line recording user input.
func UserLine(text string) string {
	return `{"type":"user","message":{"content":"` + text + `"}}`
}

// AssistantTextLine is an assistant line whose first content block is text.
func AssistantTextLine(text string) string {
	return `{"type":"assistant","message":{"content":[{"type":"text","text":"` + text + `"}]}}`
}

// AssistantToolUseLine is an assistant line invoking a tool.
func AssistantToolUseLine(tool string) string {
	return `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"` + tool + `"}]}}`
}

// AssistantEndTurnLine is an assistant line that ends the turn.
func AssistantEndTurnLine(text string) string {
	return `{"type":"assistant","stop_reason":"end_turn","message":{"content":[{"type":"text","text":"` + text + `"}]}}`
}
