package store

import "github.com/grovetools/agentwatch/pkg/models"

// UpdateType identifies what changed in an Update.
type UpdateType string

const (
	// UpdateSession carries a created or changed session record.
	UpdateSession UpdateType = "session"
	// UpdateSessionRemoved carries the id of a deleted session.
	UpdateSessionRemoved UpdateType = "session_removed"
)

// Update is the unit broadcast to subscribers.
type Update struct {
	Type      UpdateType      `json:"update_type"`
	Session   *models.Session `json:"session,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}
