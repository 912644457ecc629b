package models

import "encoding/json"

// StatusSnapshot is one parsed read of a status file. It is immutable after
// construction; each detected write produces a fresh snapshot that supersedes
// the previous one wholesale. All fields except SessionID are optional in the
// source JSON and unknown fields are ignored.
type StatusSnapshot struct {
	SessionID      string           `json:"session_id"`
	TranscriptPath string           `json:"transcript_path,omitempty"`
	Model          *ModelInfo       `json:"model,omitempty"`
	ContextWindow  *ContextWindow   `json:"context_window,omitempty"`
	Cost           *CostTotals      `json:"cost,omitempty"`
	Workspace      *WorkspacePaths  `json:"workspace,omitempty"`

	// Raw is the source text the snapshot was parsed from, retained for
	// diagnostics. Not part of the wire format.
	Raw string `json:"-"`
}

// ModelInfo identifies the model the agent session is running.
type ModelInfo struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ContextWindow reports context usage at snapshot time.
type ContextWindow struct {
	UsedPercentage      float64 `json:"used_percentage,omitempty"`
	RemainingPercentage float64 `json:"remaining_percentage,omitempty"`
	InputTokens         int     `json:"input_tokens,omitempty"`
	OutputTokens        int     `json:"output_tokens,omitempty"`
}

// CostTotals carries the running totals reported by the agent process.
type CostTotals struct {
	TotalCostUSD      float64 `json:"total_cost_usd,omitempty"`
	TotalDurationMS   int64   `json:"total_duration_ms,omitempty"`
	TotalLinesAdded   int     `json:"total_lines_added,omitempty"`
	TotalLinesRemoved int     `json:"total_lines_removed,omitempty"`
	TotalTurns        int     `json:"total_turns,omitempty"`
}

// WorkspacePaths reports the directories the agent session operates in.
type WorkspacePaths struct {
	CurrentDir string `json:"current_dir,omitempty"`
	ProjectDir string `json:"project_dir,omitempty"`
}

// ParseStatusSnapshot decodes a status file payload. The raw text is retained
// on the returned snapshot. A payload without a session id is rejected so a
// partially written file never produces an unattributable snapshot.
func ParseStatusSnapshot(data []byte) (*StatusSnapshot, error) {
	var snap StatusSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.SessionID == "" {
		return nil, errMissingSessionID
	}
	snap.Raw = string(data)
	return &snap, nil
}
