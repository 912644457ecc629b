package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the directories and files agentwatch uses on this host.
type PathsOutput struct {
	ConfigDir     string `json:"config_dir"`
	DataDir       string `json:"data_dir"`
	StateDir      string `json:"state_dir"`
	CacheDir      string `json:"cache_dir"`
	StatusDir     string `json:"status_dir"`
	SessionMapDir string `json:"session_map_dir"`
	SocketPath    string `json:"socket_path"`
	PidFile       string `json:"pid_file"`
	LogDir        string `json:"log_dir"`
}

// NewPathsCmd returns the paths inspection command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print agentwatch filesystem paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := PathsOutput{
				ConfigDir:     paths.ConfigDir(),
				DataDir:       paths.DataDir(),
				StateDir:      paths.StateDir(),
				CacheDir:      paths.CacheDir(),
				StatusDir:     paths.StatusDir(),
				SessionMapDir: paths.SessionMapDir(),
				SocketPath:    paths.SocketPath(),
				PidFile:       paths.PidFilePath(),
				LogDir:        paths.LogDir(),
			}

			opts := cli.GetOptions(cmd)
			if opts.JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Printf("Config dir:       %s\n", out.ConfigDir)
			fmt.Printf("Data dir:         %s\n", out.DataDir)
			fmt.Printf("State dir:        %s\n", out.StateDir)
			fmt.Printf("Cache dir:        %s\n", out.CacheDir)
			fmt.Printf("Status dir:       %s\n", out.StatusDir)
			fmt.Printf("Session map dir:  %s\n", out.SessionMapDir)
			fmt.Printf("Socket:           %s\n", out.SocketPath)
			fmt.Printf("Pid file:         %s\n", out.PidFile)
			fmt.Printf("Log dir:          %s\n", out.LogDir)
			return nil
		},
	}
}
