package starship

import (
	"testing"

	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSessionForDir(t *testing.T) {
	sessions := []*models.Session{
		{ID: "outer", WorkingDirectory: "/work"},
		{ID: "inner", WorkingDirectory: "/work/project"},
		{ID: "other", WorkingDirectory: "/elsewhere"},
	}

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"exact match", "/work/project", "inner"},
		{"nested prefers longest", "/work/project/src", "inner"},
		{"outer only", "/work/docs", "outer"},
		{"no match", "/tmp", ""},
		{"prefix is not containment", "/workspace", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionForDir(sessions, tt.dir)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want, got.ID)
			}
		})
	}
}

func TestStateGlyph(t *testing.T) {
	assert.Contains(t, stateGlyph(models.StateThinking), "thinking")
	assert.Contains(t, stateGlyph(models.StateToolUse), "tool")
	assert.Contains(t, stateGlyph(models.StateWaitingForInput), "waiting")
	assert.Contains(t, stateGlyph(models.StateIdle), "idle")
}
