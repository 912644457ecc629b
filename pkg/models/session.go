package models

import "time"

// SessionState is the coarse activity state inferred for an agent session.
type SessionState string

const (
	// StateIdle indicates no classifiable activity has been observed.
	StateIdle SessionState = "idle"
	// StateThinking indicates the agent is processing (user input received,
	// extended thinking, or continuing after a tool result).
	StateThinking SessionState = "thinking"
	// StateToolUse indicates the agent is executing a tool.
	StateToolUse SessionState = "tool_use"
	// StateResponding indicates the agent is producing a response.
	StateResponding SessionState = "responding"
	// StateWaitingForInput indicates the turn has ended and the agent is
	// waiting for the user.
	StateWaitingForInput SessionState = "waiting_for_input"
	// StateAskingQuestion indicates the agent posed an explicit question.
	StateAskingQuestion SessionState = "asking_question"
	// StateError indicates a watcher or external failure was signalled.
	StateError SessionState = "error"
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	return string(s)
}

// Session represents one logical agent session tracked by the coordinator.
// The ID is caller-assigned and stable across restarts of the external agent
// process; the agent's own session id is ephemeral and only appears inside
// the Snapshot.
type Session struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	WorkingDirectory string          `json:"working_directory"`
	State            SessionState    `json:"state"`
	Snapshot         *StatusSnapshot `json:"snapshot,omitempty"`
	TranscriptPath   string          `json:"transcript_path,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
