package main

import (
	"os"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/cmd"
	"github.com/grovetools/agentwatch/starship"
)

func main() {
	rootCmd := cli.NewStandardCommand("agentwatch", "Observe terminal agent sessions")
	rootCmd.Long = `Agentwatch infers the activity state of terminal coding agent sessions by
watching their status snapshot files and transcript logs. It tracks sessions
either in the foreground (watch) or through a daemon (serve) queried over a
unix socket.`
	cli.SetVersionTemplate(rootCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(cmd.NewServeCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewSessionsCmd())
	rootCmd.AddCommand(cmd.NewFollowCmd())
	rootCmd.AddCommand(cmd.NewHookCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(starship.NewStarshipCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
