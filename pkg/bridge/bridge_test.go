package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/agentwatch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoundTrip(t *testing.T) {
	b := New(t.TempDir())

	require.NoError(t, b.WriteMapping("ext-123", "stable-abc"))

	stableID, err := b.Resolve("ext-123")
	require.NoError(t, err)
	assert.Equal(t, "stable-abc", stableID)
}

func TestResolveUnmapped(t *testing.T) {
	b := New(t.TempDir())

	_, err := b.Resolve("never-seen")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBridgeUnmapped))
}

func TestResolveTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ext-1"), []byte("  stable-1\n"), 0644))

	b := New(dir)
	stableID, err := b.Resolve("ext-1")
	require.NoError(t, err)
	assert.Equal(t, "stable-1", stableID)
}

func TestResolveEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ext-1"), []byte("\n"), 0644))

	b := New(dir)
	_, err := b.Resolve("ext-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeBridgeUnmapped))
}

func TestWriteMappingOverwrites(t *testing.T) {
	b := New(t.TempDir())

	require.NoError(t, b.WriteMapping("ext-1", "first"))
	require.NoError(t, b.WriteMapping("ext-1", "second"))

	stableID, err := b.Resolve("ext-1")
	require.NoError(t, err)
	assert.Equal(t, "second", stableID)
}

func TestRemoveMapping(t *testing.T) {
	b := New(t.TempDir())

	require.NoError(t, b.WriteMapping("ext-1", "stable-1"))
	require.NoError(t, b.RemoveMapping("ext-1"))

	_, err := b.Resolve("ext-1")
	assert.True(t, errors.Is(err, errors.ErrCodeBridgeUnmapped))

	// Removing again is a no-op
	require.NoError(t, b.RemoveMapping("ext-1"))
}

func TestRejectsPathEscapes(t *testing.T) {
	b := New(t.TempDir())

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := b.Resolve(id)
		assert.Error(t, err, "id %q should be rejected", id)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	}
}
