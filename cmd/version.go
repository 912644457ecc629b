package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			opts := cli.GetOptions(cmd)
			if opts.JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Println(info.String())
			return nil
		},
	}
}
