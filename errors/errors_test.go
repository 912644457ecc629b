package errors

import (
	"fmt"
	"testing"
)

func TestWatchError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeSessionNotFound, "session not found")
	if err.Code != ErrCodeSessionNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeSessionNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeWatchFailed, "watch failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeWatchFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeSessionNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("session_id", "web").WithDetail("attempt", 2)
	if detailed.Details["session_id"] != "web" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := SessionNotFound("abc")
	if err.Code != ErrCodeSessionNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeSessionNotFound, err.Code)
	}
	if err.Details["session_id"] != "abc" {
		t.Error("SessionNotFound should include session_id detail")
	}

	werr := WatchFailed("/tmp/x", fmt.Errorf("no permission"))
	if werr.Code != ErrCodeWatchFailed {
		t.Errorf("expected code %s, got %s", ErrCodeWatchFailed, werr.Code)
	}
	if werr.Details["path"] != "/tmp/x" {
		t.Error("WatchFailed should include path detail")
	}
	if GetCode(fmt.Errorf("wrapped: %w", werr)) != ErrCodeWatchFailed {
		t.Error("GetCode should unwrap to the inner code")
	}
}
