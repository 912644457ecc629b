package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/internal/daemon/client"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/spf13/cobra"
)

// NewSessionsCmd returns the session management command.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage tracked sessions",
		Long:  "List, register and remove sessions tracked by the agentwatch daemon.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracked sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(cmd)
		},
	})

	addCmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = cwd
			}

			c := daemonClient(cmd)
			session, err := c.CreateSession(args[0], name, dir)
			if err != nil {
				return err
			}
			fmt.Printf("Registered session '%s' (%s)\n", session.ID, session.WorkingDirectory)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Display name for the session")
	addCmd.Flags().String("dir", "", "Working directory (defaults to cwd)")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := daemonClient(cmd)
			if err := c.DeleteSession(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed session '%s'\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one session in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := daemonClient(cmd)
			session, err := c.GetSession(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(session)
		},
	})

	return cmd
}

func runSessionsList(cmd *cobra.Command) error {
	opts := cli.GetOptions(cmd)

	c := daemonClient(cmd)
	sessions, err := c.Sessions()
	if err != nil {
		return err
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions tracked")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tMODEL\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.State, sessionModel(s), humanAge(s.UpdatedAt))
	}
	return w.Flush()
}

func sessionModel(s *models.Session) string {
	if s.Snapshot == nil || s.Snapshot.Model == nil {
		return "-"
	}
	if s.Snapshot.Model.DisplayName != "" {
		return s.Snapshot.Model.DisplayName
	}
	return s.Snapshot.Model.ID
}

func humanAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t).Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

func daemonClient(cmd *cobra.Command) *client.Client {
	cfg := loadConfigOrDefaults(cmd)
	return client.New(daemonSocketPath(cfg))
}
