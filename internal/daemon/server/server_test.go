package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/internal/daemon/store"
	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *store.Store, *httptest.Server) {
	t.Helper()
	st := store.New()
	srv := New(logging.NewLogger("daemon-test"), st)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, st, ts
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSessions(t *testing.T) {
	_, st, ts := newTestServer(t)

	st.ApplySession(&models.Session{ID: "s1", State: models.StateToolUse})
	st.ApplySession(&models.Session{ID: "s2", State: models.StateIdle})

	resp, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessions []*models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, models.StateToolUse, sessions[0].State)
}

func TestGetSessionByID(t *testing.T) {
	_, st, ts := newTestServer(t)

	st.ApplySession(&models.Session{ID: "s1", State: models.StateWaitingForInput})

	resp, err := http.Get(ts.URL + "/api/sessions/s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, models.StateWaitingForInput, session.State)

	resp, err = http.Get(ts.URL + "/api/sessions/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type fakeController struct {
	created map[string]bool
}

func (f *fakeController) CreateSession(id, name, dir string) (*models.Session, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "stable session id must not be empty")
	}
	if f.created[id] {
		return nil, errors.SessionExists(id)
	}
	f.created[id] = true
	return &models.Session{ID: id, Name: name, WorkingDirectory: dir, State: models.StateIdle}, nil
}

func (f *fakeController) DeleteSession(id string) error {
	if !f.created[id] {
		return errors.SessionNotFound(id)
	}
	delete(f.created, id)
	return nil
}

func TestCreateAndDeleteSession(t *testing.T) {
	srv, st, ts := newTestServer(t)
	ctrl := &fakeController{created: make(map[string]bool)}
	srv.SetController(ctrl)

	resp, err := http.Post(ts.URL+"/api/sessions", "application/json",
		strings.NewReader(`{"id":"s1","name":"api work","working_directory":"/repo"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "s1", created.ID)
	assert.Equal(t, models.StateIdle, created.State)

	// Duplicate id conflicts
	resp, err = http.Post(ts.URL+"/api/sessions", "application/json",
		strings.NewReader(`{"id":"s1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Delete also drops the store record
	st.ApplySession(&created)
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/s1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Nil(t, st.GetSession("s1"))

	req, err = http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/s1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetConfig(t *testing.T) {
	srv, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.SetRunningConfig(&RunningConfig{
		StatusDir:    "/tmp/status",
		PollInterval: 2 * time.Second,
		StartedAt:    time.Now(),
	})

	resp, err = http.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg RunningConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, "/tmp/status", cfg.StatusDir)
}
