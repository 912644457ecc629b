package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	return New(filepath.Join(t.TempDir(), "sessions.yml"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	r := newTestRegistry(t)

	entries, err := r.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddAndLoad(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Add(Entry{ID: "beta", WorkingDirectory: "/work/b"}))
	require.NoError(t, r.Add(Entry{ID: "alpha", Name: "Alpha", WorkingDirectory: "/work/a"}))

	entries, err := r.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].ID)
	assert.Equal(t, "Alpha", entries[0].Name)
	assert.Equal(t, "beta", entries[1].ID)
}

func TestAddReplacesSameID(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Add(Entry{ID: "s1", Name: "first"}))
	require.NoError(t, r.Add(Entry{ID: "s1", Name: "second"}))

	entries, err := r.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Name)
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Add(Entry{ID: "s1"}))
	require.NoError(t, r.Add(Entry{ID: "s2"}))
	require.NoError(t, r.Remove("s1"))

	entries, err := r.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s2", entries[0].ID)

	require.NoError(t, r.Remove("unknown"))
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(r.Path()), 0o755))
	require.NoError(t, os.WriteFile(r.Path(), []byte("not: [valid"), 0o644))

	_, err := r.Load()
	assert.Error(t, err)
}
