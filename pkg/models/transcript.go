package models

import (
	"encoding/json"
	"errors"
)

var errMissingSessionID = errors.New("status snapshot has no session_id")

// Transcript entry type discriminators used by the agent's line-delimited log.
const (
	EntryTypeUser                = "user"
	EntryTypeAssistant           = "assistant"
	EntryTypeSummary             = "summary"
	EntryTypeFileHistorySnapshot = "file-history-snapshot"
)

// Content block type discriminators inside a message payload.
const (
	BlockTypeThinking   = "thinking"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
	BlockTypeText       = "text"
)

// StopReasonToolUse is the one stop reason that does not mean end-of-turn:
// the model paused to run a tool and will continue.
const StopReasonToolUse = "tool_use"

// TranscriptEntry is a single parsed line of the transcript log. Only the
// fields needed for state classification are decoded; everything else in the
// line is ignored.
type TranscriptEntry struct {
	Type       string          `json:"type"`
	StopReason string          `json:"stop_reason,omitempty"`
	Message    *MessagePayload `json:"message,omitempty"`
}

// MessagePayload is the message object carried by message-bearing entries.
type MessagePayload struct {
	StopReason string         `json:"stop_reason,omitempty"`
	Content    MessageContent `json:"content,omitempty"`
}

// MessageContent is a tagged union: the external format writes the same field
// as either a plain string or a list of typed blocks depending on the entry.
type MessageContent struct {
	Text   string
	Blocks []ContentBlock
}

// ContentBlock is one element of structured message content. Only the type
// tag matters for classification; Name and Text are kept for diagnostics.
type ContentBlock struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// UnmarshalJSON accepts either a JSON string or an array of content blocks.
// Any other shape is ignored rather than rejected, keeping entry parsing
// total over malformed input.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Blocks = nil
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err == nil {
		c.Blocks = blocks
		c.Text = ""
		return nil
	}
	return nil
}

// MarshalJSON writes back whichever representation the content holds.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// EffectiveStopReason returns the stop reason for an entry, preferring the
// entry-level field over the one nested in the message.
func (e *TranscriptEntry) EffectiveStopReason() string {
	if e.StopReason != "" {
		return e.StopReason
	}
	if e.Message != nil {
		return e.Message.StopReason
	}
	return ""
}

// ParseTranscriptEntry decodes one transcript line. Callers treat a non-nil
// error as "skip this line"; it is never surfaced further.
func ParseTranscriptEntry(line []byte) (*TranscriptEntry, error) {
	var entry TranscriptEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil, err
	}
	if entry.Type == "" {
		return nil, errors.New("transcript entry has no type")
	}
	return &entry, nil
}
