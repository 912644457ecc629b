package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/pkg/bridge"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/paths"
	"github.com/grovetools/agentwatch/util/pathutil"
	"github.com/grovetools/agentwatch/util/sanitize"
	"github.com/spf13/cobra"
)

// NewHookCmd returns the agent hook entry points. These are wired into the
// observed agent's hook configuration and run inside its process lifecycle,
// so they must be fast and must never fail the agent on bad input.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "hook",
		Short:  "Agent integration hooks",
		Hidden: true,
	}

	cmd.AddCommand(newHookSessionStartCmd())
	cmd.AddCommand(newHookStatuslineCmd())

	return cmd
}

func newHookSessionStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session-start",
		Short: "Record the external-to-stable session id mapping",
		Long: `Writes the mapping file that ties the agent's ephemeral session id to
the stable id a session is tracked under. The external id comes from
--external-id, or from the session_id field of the hook payload on stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			externalID, _ := cmd.Flags().GetString("external-id")
			stableID, _ := cmd.Flags().GetString("stable-id")
			if externalID == "" {
				externalID = sessionIDFromStdin()
			}
			externalID = sanitize.ForFileName(externalID)
			if externalID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no external session id given via --external-id or stdin")
			}
			if stableID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--stable-id is required")
			}

			cfg := loadConfigOrDefaults(cmd)
			b := bridge.New(cfg.Watch.SessionMapDir)
			return b.WriteMapping(externalID, stableID)
		},
	}

	cmd.Flags().String("external-id", "", "Session id assigned by the agent")
	cmd.Flags().String("stable-id", "", "Stable id the session is tracked under")

	return cmd
}

// sessionIDFromStdin extracts session_id from a hook payload on stdin.
// Returns empty on any failure; the caller reports the missing id.
func sessionIDFromStdin() string {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
	if err != nil {
		return ""
	}
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.SessionID
}

func newHookStatuslineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statusline",
		Short: "Publish a status snapshot read from stdin",
		Long: `Reads the agent's status JSON from stdin, writes it into the watched
status directory keyed by the agent session id, and prints a one-line summary
suitable for a status bar.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}

			snap, err := models.ParseStatusSnapshot(data)
			if err != nil {
				// Never break the agent's status bar over a bad payload.
				fmt.Println("agentwatch")
				return nil
			}

			cfg := loadConfigOrDefaults(cmd)
			dir := cfg.Watch.StatusDir
			if dir == "" {
				dir = paths.StatusDir()
			} else if expanded, err := pathutil.Expand(dir); err == nil {
				dir = expanded
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			// The session id comes from the agent over stdin; it names a
			// file inside the watched directory, so it must not escape it.
			name := sanitize.ForFileName(snap.SessionID)
			if name == "" {
				fmt.Println(statuslineSummary(snap))
				return nil
			}
			target := filepath.Join(dir, name+".json")
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return err
			}

			fmt.Println(statuslineSummary(snap))
			return nil
		},
	}
}

func statuslineSummary(snap *models.StatusSnapshot) string {
	out := "agentwatch"
	if snap.Model != nil {
		if snap.Model.DisplayName != "" {
			out = snap.Model.DisplayName
		} else if snap.Model.ID != "" {
			out = snap.Model.ID
		}
	}
	if snap.ContextWindow != nil && snap.ContextWindow.UsedPercentage > 0 {
		out += fmt.Sprintf(" | ctx %.0f%%", snap.ContextWindow.UsedPercentage)
	}
	if snap.Cost != nil && snap.Cost.TotalCostUSD > 0 {
		out += fmt.Sprintf(" | $%.2f", snap.Cost.TotalCostUSD)
	}
	return out
}
