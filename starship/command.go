// Package starship integrates session state into the Starship shell prompt.
package starship

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/agentwatch/internal/daemon/client"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/paths"
	"github.com/spf13/cobra"
)

// NewStarshipCmd creates the starship command and its subcommands.
func NewStarshipCmd() *cobra.Command {
	starshipCmd := &cobra.Command{
		Use:   "starship",
		Short: "Manage Starship prompt integration",
		Long:  `Provides commands to show agent session state in the Starship prompt.`,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the agentwatch module to your starship.toml",
		Long: `Appends a custom module to your starship.toml configuration file so the
state of the agent session in the current directory shows in your prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStarshipInstall()
		},
	}

	statusCmd := &cobra.Command{
		Use:    "status",
		Short:  "Print status for Starship prompt (for internal use)",
		Hidden: true,
		RunE:   runStarshipStatus,
	}

	starshipCmd.AddCommand(installCmd)
	starshipCmd.AddCommand(statusCmd)

	return starshipCmd
}

func runStarshipInstall() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not get home directory: %w", err)
	}

	configPath := filepath.Join(home, ".config", "starship.toml")

	contentBytes, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("starship config not found at %s. Please ensure starship is installed and configured", configPath)
		}
		return fmt.Errorf("could not read starship config: %w", err)
	}
	content := string(contentBytes)

	moduleConfig := fmt.Sprintf(`
# Added by 'agentwatch starship install'
[custom.agentwatch]
description = "Shows agent session state"
command = "agentwatch starship status"
when = "test -S %s"
format = " $output "
`, paths.SocketPath())

	if strings.Contains(content, "[custom.agentwatch]") {
		fmt.Println("✓ [custom.agentwatch] module already present, leaving it unchanged.")
	} else {
		content += moduleConfig
		fmt.Println("✓ Added [custom.agentwatch] module to starship config.")
	}

	if strings.Contains(content, "${custom.agentwatch}") || strings.Contains(content, "$custom.agentwatch") {
		fmt.Println("✓ agentwatch module already in starship format.")
	} else {
		target := "$git_metrics\\"
		if strings.Contains(content, target) {
			replacement := target + "\n${custom.agentwatch}\\"
			content = strings.Replace(content, target, replacement, 1)
			fmt.Println("✓ Added agentwatch module to starship format.")
		} else {
			fmt.Printf("⚠️  Could not automatically add '${custom.agentwatch}' to your starship format.\n")
			fmt.Printf("   Please add it manually to the 'format' string in %s\n", configPath)
		}
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write updated starship config: %w", err)
	}

	fmt.Printf("\nSuccessfully updated %s. Please restart your shell to see the changes.\n", configPath)
	return nil
}

func runStarshipStatus(cmd *cobra.Command, args []string) error {
	// This command runs on every prompt render. It must be fast and must
	// never print errors.
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}

	c := client.New(paths.SocketPath())
	sessions, err := c.Sessions()
	if err != nil {
		return nil
	}

	session := sessionForDir(sessions, cwd)
	if session == nil {
		return nil
	}

	fmt.Print(stateGlyph(session.State))
	return nil
}

// sessionForDir picks the session whose working directory contains dir,
// preferring the longest match when sessions nest.
func sessionForDir(sessions []*models.Session, dir string) *models.Session {
	var best *models.Session
	for _, s := range sessions {
		if s.WorkingDirectory == "" {
			continue
		}
		root := filepath.Clean(s.WorkingDirectory)
		if dir != root && !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(root) > len(filepath.Clean(best.WorkingDirectory)) {
			best = s
		}
	}
	return best
}

func stateGlyph(state models.SessionState) string {
	switch state {
	case models.StateThinking:
		return "🤔 thinking"
	case models.StateToolUse:
		return "🔧 tool"
	case models.StateResponding:
		return "💬 responding"
	case models.StateWaitingForInput, models.StateAskingQuestion:
		return "⏳ waiting"
	case models.StateError:
		return "❌ error"
	default:
		return "💤 idle"
	}
}
