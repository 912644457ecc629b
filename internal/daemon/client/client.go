package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/pkg/models"
)

// Client talks to a running agentwatch daemon over its unix socket.
type Client struct {
	http *http.Client
}

// New creates a client for the daemon listening at socketPath.
func New(socketPath string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() error {
	resp, err := c.http.Get("http://agentwatch/health")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "daemon is not reachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeDaemonNotRunning, fmt.Sprintf("daemon health check failed: %s", resp.Status))
	}
	return nil
}

// Sessions returns all sessions known to the daemon.
func (c *Client) Sessions() ([]*models.Session, error) {
	resp, err := c.http.Get("http://agentwatch/api/sessions")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "daemon is not reachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var sessions []*models.Session
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode session list")
	}
	return sessions, nil
}

// GetSession returns one session by its stable id.
func (c *Client) GetSession(id string) (*models.Session, error) {
	resp, err := c.http.Get("http://agentwatch/api/sessions/" + id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "daemon is not reachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.SessionNotFound(id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var session models.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode session")
	}
	return &session, nil
}

// CreateSession registers a new session with the daemon.
func (c *Client) CreateSession(id, name, workingDirectory string) (*models.Session, error) {
	body, err := json.Marshal(map[string]string{
		"id":                id,
		"name":              name,
		"working_directory": workingDirectory,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post("http://agentwatch/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "daemon is not reachable")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return nil, errors.SessionExists(id)
	case http.StatusBadRequest:
		return nil, errors.New(errors.ErrCodeInvalidInput, readError(resp))
	default:
		return nil, unexpectedStatus(resp)
	}

	var session models.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode session")
	}
	return &session, nil
}

// DeleteSession removes a session from the daemon.
func (c *Client) DeleteSession(id string) error {
	req, err := http.NewRequest(http.MethodDelete, "http://agentwatch/api/sessions/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonNotRunning, "daemon is not reachable")
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return errors.SessionNotFound(id)
	default:
		return unexpectedStatus(resp)
	}
}

func readError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return string(bytes.TrimSpace(data))
}

func unexpectedStatus(resp *http.Response) error {
	return errors.New(errors.ErrCodeInternal, fmt.Sprintf("unexpected daemon response: %s", resp.Status)).
		WithDetail("body", readError(resp))
}
