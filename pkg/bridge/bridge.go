// Package bridge maps the external session ids that agents report to the
// stable session ids agentwatch tracks internally.
//
// The mapping is a directory of plain-text files, one per external id. The
// file name is the external id and the file body is the stable id. Agents
// (or their session-start hooks) write these files; agentwatch only reads
// and deletes them.
package bridge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/pkg/paths"
)

// Bridge resolves external session ids to stable session ids via the
// session-map directory.
type Bridge struct {
	dir string
}

// New creates a Bridge over the given mapping directory. An empty dir falls
// back to the default XDG session-map location.
func New(dir string) *Bridge {
	if dir == "" {
		dir = paths.SessionMapDir()
	}
	return &Bridge{dir: dir}
}

// Dir returns the mapping directory.
func (b *Bridge) Dir() string {
	return b.dir
}

// Resolve looks up the stable id for an external session id. It returns a
// BridgeUnmapped error when no mapping file exists or the file is empty.
func (b *Bridge) Resolve(externalID string) (string, error) {
	path, err := b.mappingPath(externalID)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeBridgeUnmapped, "no stable id mapping for external session").
				WithDetail("externalId", externalID)
		}
		return "", errors.Wrap(err, errors.ErrCodeBridgeUnmapped, "failed to read session id mapping").
			WithDetail("externalId", externalID).
			WithDetail("path", path)
	}

	stableID := strings.TrimSpace(string(data))
	if stableID == "" {
		return "", errors.New(errors.ErrCodeBridgeUnmapped, "session id mapping file is empty").
			WithDetail("externalId", externalID).
			WithDetail("path", path)
	}

	return stableID, nil
}

// WriteMapping records the stable id for an external session id. It creates
// the mapping directory if needed and overwrites any existing mapping.
func (b *Bridge) WriteMapping(externalID, stableID string) error {
	if strings.TrimSpace(stableID) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "stable id must not be empty").
			WithDetail("externalId", externalID)
	}

	path, err := b.mappingPath(externalID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create session map directory").
			WithDetail("dir", b.dir)
	}

	if err := os.WriteFile(path, []byte(stableID+"\n"), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write session id mapping").
			WithDetail("path", path)
	}

	return nil
}

// RemoveMapping deletes the mapping file for an external session id.
// Removing a mapping that does not exist is not an error.
func (b *Bridge) RemoveMapping(externalID string) error {
	path, err := b.mappingPath(externalID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to remove session id mapping").
			WithDetail("path", path)
	}

	return nil
}

// mappingPath validates the external id and returns its mapping file path.
// External ids come from file names written by other processes, so ids that
// would escape the mapping directory are rejected.
func (b *Bridge) mappingPath(externalID string) (string, error) {
	if externalID == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "external session id must not be empty")
	}
	if strings.ContainsAny(externalID, "/\\") || externalID == "." || externalID == ".." {
		return "", errors.New(errors.ErrCodeInvalidInput, "external session id must be a bare file name").
			WithDetail("externalId", externalID)
	}
	return filepath.Join(b.dir, externalID), nil
}
