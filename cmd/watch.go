package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/monitor"
	"github.com/spf13/cobra"
)

// NewWatchCmd returns the foreground watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch sessions in the foreground",
		Long: `Run the watchers in the foreground without the daemon, printing a line
for every session state change. Sessions named with --session are registered
before watching starts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg := loadConfigOrDefaults(cmd)

			sessionIDs, _ := cmd.Flags().GetStringSlice("session")

			printUpdate := func(session *models.Session) {
				if opts.JSONOutput {
					data, err := json.Marshal(session)
					if err != nil {
						return
					}
					fmt.Println(string(data))
					return
				}
				fmt.Printf("%s  %-20s %-18s %s\n",
					time.Now().Format("15:04:05"),
					session.ID, session.State, session.TranscriptPath)
			}

			coordinator, err := monitor.New(cfg, printUpdate)
			if err != nil {
				return err
			}
			defer coordinator.Close()

			for _, id := range sessionIDs {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				if _, err := coordinator.CreateSession(id, id, cwd); err != nil {
					return err
				}
			}

			if !opts.JSONOutput {
				fmt.Printf("Watching %s (Ctrl-C to stop)\n", coordinator.StatusDir())
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}

	cmd.Flags().StringSlice("session", nil, "Stable session id to register (repeatable)")

	return cmd
}
