package cli

import (
	"fmt"

	"github.com/grovetools/agentwatch/version"
	"github.com/spf13/cobra"
)

// SetVersionTemplate configures the --version output of a root command from
// the build's version info.
func SetVersionTemplate(cmd *cobra.Command) {
	info := version.GetInfo()
	cmd.Version = info.Version
	cmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
  Commit:    %s
  Built:     %s
  Platform:  %s
`, info.Commit, info.BuildDate, info.Platform))
}
