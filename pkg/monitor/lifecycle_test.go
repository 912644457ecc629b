package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionLifecycle walks one session through registration, attribution,
// state transitions driven by transcript appends, and removal.
func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	transcriptPath := filepath.Join(t.TempDir(), "run.jsonl")
	testutil.WriteTranscript(t, transcriptPath, testutil.UserLine("add a cache layer"))

	_, err := env.coordinator.CreateSession("proj", "Cache work", "/repo")
	require.NoError(t, err)
	require.NoError(t, env.coordinator.Bridge().WriteMapping("ext-9", "proj"))

	testutil.WriteStatusFile(t, env.statusDir, testutil.StatusFixture{
		SessionID:      "ext-9",
		TranscriptPath: transcriptPath,
		ModelID:        "m-large",
		CostUSD:        0.42,
	})

	require.Eventually(t, func() bool {
		session, err := env.coordinator.GetSession("proj")
		return err == nil && session.State == models.StateThinking
	}, 3*time.Second, 10*time.Millisecond)

	session, err := env.coordinator.GetSession("proj")
	require.NoError(t, err)
	require.NotNil(t, session.Snapshot)
	assert.Equal(t, "m-large", session.Snapshot.Model.ID)
	assert.InDelta(t, 0.42, session.Snapshot.Cost.TotalCostUSD, 0.001)

	// The agent runs a tool.
	testutil.AppendTranscriptLine(t, transcriptPath, testutil.AssistantToolUseLine("Bash"))
	require.Eventually(t, func() bool {
		session, err := env.coordinator.GetSession("proj")
		return err == nil && session.State == models.StateToolUse
	}, 3*time.Second, 10*time.Millisecond)

	// The turn ends.
	testutil.AppendTranscriptLine(t, transcriptPath, testutil.AssistantEndTurnLine("done"))
	require.Eventually(t, func() bool {
		session, err := env.coordinator.GetSession("proj")
		return err == nil && session.State == models.StateWaitingForInput
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, env.coordinator.DeleteSession("proj"))
	_, err = env.coordinator.GetSession("proj")
	assert.Error(t, err)
}
