package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := Expand("~/status")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "status"), got)

	got, err = Expand("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("AGENTWATCH_TEST_DIR", "/tmp/agentwatch-test")

	got, err := Expand("$AGENTWATCH_TEST_DIR/status")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/agentwatch-test/status", got)
}

func TestExpandRelativeBecomesAbsolute(t *testing.T) {
	got, err := Expand("status")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
