package store

import (
	"testing"

	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAndGet(t *testing.T) {
	s := New()

	s.ApplySession(&models.Session{ID: "b", State: models.StateIdle})
	s.ApplySession(&models.Session{ID: "a", State: models.StateThinking})

	sessions := s.GetSessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)

	got := s.GetSession("a")
	require.NotNil(t, got)
	assert.Equal(t, models.StateThinking, got.State)

	assert.Nil(t, s.GetSession("missing"))
}

func TestApplyOverwrites(t *testing.T) {
	s := New()

	s.ApplySession(&models.Session{ID: "a", State: models.StateIdle})
	s.ApplySession(&models.Session{ID: "a", State: models.StateToolUse})

	require.Len(t, s.GetSessions(), 1)
	assert.Equal(t, models.StateToolUse, s.GetSession("a").State)
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.ApplySession(&models.Session{ID: "a", State: models.StateThinking})

	update := <-ch
	assert.Equal(t, UpdateSession, update.Type)
	assert.Equal(t, "a", update.SessionID)
	require.NotNil(t, update.Session)
	assert.Equal(t, models.StateThinking, update.Session.State)

	s.RemoveSession("a")
	update = <-ch
	assert.Equal(t, UpdateSessionRemoved, update.Type)
	assert.Equal(t, "a", update.SessionID)
	assert.Nil(t, update.Session)
}

func TestRemoveUnknownIsSilent(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.RemoveSession("ghost")
	assert.Empty(t, ch)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	// Overflow the buffer; sends must not stall the store.
	for i := 0; i < 250; i++ {
		s.ApplySession(&models.Session{ID: "a", State: models.StateIdle})
	}

	assert.Len(t, s.GetSessions(), 1)
}
