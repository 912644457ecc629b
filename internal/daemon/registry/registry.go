// Package registry persists the set of registered sessions so a daemon
// restart does not lose track of them. Only the caller-supplied identity is
// stored; inferred state is rebuilt from the watchers after startup.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/grovetools/agentwatch/pkg/paths"
	"gopkg.in/yaml.v3"
)

// Entry is one registered session.
type Entry struct {
	ID               string    `yaml:"id"`
	Name             string    `yaml:"name,omitempty"`
	WorkingDirectory string    `yaml:"working_directory,omitempty"`
	CreatedAt        time.Time `yaml:"created_at,omitempty"`
}

// Registry reads and writes the session registry file.
type Registry struct {
	path string
}

// New creates a registry backed by the given file. An empty path uses the
// default location under the data directory.
func New(path string) *Registry {
	if path == "" {
		path = filepath.Join(paths.DataDir(), "sessions.yml")
	}
	return &Registry{path: path}
}

// Path returns the backing file path.
func (r *Registry) Path() string {
	return r.path
}

// Load reads all registered sessions. A missing file is an empty registry.
func (r *Registry) Load() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}
	return entries, nil
}

// Save writes the full set of registered sessions, sorted by id.
func (r *Registry) Save(entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	data, err := yaml.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}
	return nil
}

// Add records a session, replacing any entry with the same id.
func (r *Registry) Add(entry Entry) error {
	entries, err := r.Load()
	if err != nil {
		return err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != entry.ID {
			filtered = append(filtered, e)
		}
	}
	return r.Save(append(filtered, entry))
}

// Remove deletes a session by id. Removing an unknown id is not an error.
func (r *Registry) Remove(id string) error {
	entries, err := r.Load()
	if err != nil {
		return err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return r.Save(filtered)
}
