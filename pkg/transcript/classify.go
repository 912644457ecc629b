// Package transcript watches agent transcript files and infers a coarse
// session state from their newest entries.
package transcript

import (
	"bytes"
	"strings"

	"github.com/grovetools/agentwatch/pkg/models"
)

// ClassifyEntry maps a single transcript entry to a session state. It is a
// total function: every input maps to exactly one state, with idle as the
// default for anything unclassifiable. It never returns an error.
//
// Order of evaluation, first match wins:
//  1. A user entry means a new submission is being processed.
//  2. Any stop reason other than "tool_use" means the turn has ended.
//  3. No message payload carries no signal.
//  4. The first content block decides: thinking and tool_result mean the
//     agent keeps reasoning, tool_use means a tool is running, and text only
//     appears once a response is complete.
func ClassifyEntry(entry *models.TranscriptEntry) models.SessionState {
	if entry == nil {
		return models.StateIdle
	}

	if entry.Type == models.EntryTypeUser {
		return models.StateThinking
	}

	if reason := entry.EffectiveStopReason(); reason != "" && reason != models.StopReasonToolUse {
		return models.StateWaitingForInput
	}

	if entry.Message == nil {
		return models.StateIdle
	}

	blocks := entry.Message.Content.Blocks
	if len(blocks) == 0 {
		return models.StateIdle
	}

	switch blocks[0].Type {
	case models.BlockTypeThinking:
		return models.StateThinking
	case models.BlockTypeToolUse:
		return models.StateToolUse
	case models.BlockTypeToolResult:
		return models.StateThinking
	case models.BlockTypeText:
		return models.StateWaitingForInput
	default:
		return models.StateIdle
	}
}

// ClassifyTranscript infers the session state from full transcript contents.
//
// Lines are scanned in reverse, latest first. Unparseable lines are skipped.
// A summary entry is a definitive end-of-turn marker: scanning stops there
// and reports waitingForInput regardless of anything older. File-history
// snapshots carry no state signal and are skipped. The first remaining
// parseable line decides the state via ClassifyEntry; older lines are never
// consulted. An empty or fully unparseable transcript is idle.
func ClassifyTranscript(data []byte) models.SessionState {
	lines := bytes.Split(data, []byte("\n"))

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(string(lines[i]))
		if line == "" {
			continue
		}

		entry, err := models.ParseTranscriptEntry([]byte(line))
		if err != nil {
			continue
		}

		switch entry.Type {
		case models.EntryTypeSummary:
			return models.StateWaitingForInput
		case models.EntryTypeFileHistorySnapshot:
			continue
		default:
			return ClassifyEntry(entry)
		}
	}

	return models.StateIdle
}
