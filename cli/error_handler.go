package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/agentwatch/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create an agentwatch.yml or pass --config.\n")
		return err

	case errors.ErrCodeSessionNotFound:
		if watchErr, ok := err.(*errors.WatchError); ok {
			fmt.Fprintf(os.Stderr, "❌ Session '%v' not found\n", watchErr.Details["session_id"])
			fmt.Fprintf(os.Stderr, "Run 'agentwatch sessions' to see tracked sessions.\n")
		}
		return err

	case errors.ErrCodeSessionExists:
		if watchErr, ok := err.(*errors.WatchError); ok {
			fmt.Fprintf(os.Stderr, "❌ Session '%v' already exists\n", watchErr.Details["session_id"])
		}
		return err

	case errors.ErrCodeDaemonRunning:
		if watchErr, ok := err.(*errors.WatchError); ok {
			fmt.Fprintf(os.Stderr, "❌ Daemon already running with PID %v\n", watchErr.Details["pid"])
			fmt.Fprintf(os.Stderr, "Stop it with 'agentwatch serve stop' first.\n")
		}
		return err

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintf(os.Stderr, "❌ Daemon is not running. Start it with 'agentwatch serve start'.\n")
		return err

	case errors.ErrCodeStatusDir:
		if watchErr, ok := err.(*errors.WatchError); ok {
			fmt.Fprintf(os.Stderr, "❌ Status directory unavailable: %v\n", watchErr.Details["dir"])
			fmt.Fprintf(os.Stderr, "Check permissions, or set watch.status_dir in agentwatch.yml\n")
		}
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if watchErr, ok := err.(*errors.WatchError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", watchErr.ToJSON())
			}
		}
		return err
	}
}
