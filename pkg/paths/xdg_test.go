package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentwatchHomeOverridesEverything(t *testing.T) {
	t.Setenv("AGENTWATCH_HOME", "/custom")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	assert.Equal(t, "/custom/config/agentwatch", ConfigDir())
	assert.Equal(t, "/custom/data/agentwatch", DataDir())
	assert.Equal(t, "/custom/state/agentwatch", StateDir())
	assert.Equal(t, "/custom/cache/agentwatch", CacheDir())
}

func TestXDGEnvResolution(t *testing.T) {
	t.Setenv("AGENTWATCH_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	assert.Equal(t, "/xdg/config/agentwatch", ConfigDir())
	assert.Equal(t, "/xdg/data/agentwatch", DataDir())
	assert.Equal(t, filepath.Join("/xdg/state/agentwatch", "status"), StatusDir())
	assert.Equal(t, filepath.Join("/xdg/data/agentwatch", "session-map"), SessionMapDir())
	assert.Equal(t, filepath.Join("/xdg/state/agentwatch", "agentwatch.sock"), SocketPath())
	assert.Equal(t, filepath.Join("/xdg/state/agentwatch", "agentwatch.pid"), PidFilePath())
}

func TestRuntimeDirFallsBackToState(t *testing.T) {
	t.Setenv("AGENTWATCH_HOME", "/custom")
	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, StateDir(), RuntimeDir())

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/agentwatch", RuntimeDir())
}
