package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/transcript"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewFollowCmd returns the transcript tail command.
func NewFollowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follow <session-id|transcript.jsonl>",
		Short: "Tail a transcript and print per-line classification",
		Long: `Follow an append-only transcript file, printing the inferred state for
each new line as it is written. The argument is either a transcript path or
the stable id of a session tracked by the daemon. Useful for diagnosing why a
session reports a given state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poll, _ := cmd.Flags().GetBool("poll")
			fromStart, _ := cmd.Flags().GetBool("from-start")

			path, err := resolveTranscriptArg(cmd, args[0])
			if err != nil {
				return err
			}

			cfg := tail.Config{
				Follow: true,
				ReOpen: true,
				Poll:   poll,
				Logger: tail.DiscardingLogger,
			}
			if !fromStart {
				cfg.Location = &tail.SeekInfo{Offset: 0, Whence: 2}
			}

			t, err := tail.TailFile(path, cfg)
			if err != nil {
				return fmt.Errorf("failed to tail %s: %w", path, err)
			}
			defer t.Cleanup()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case line, ok := <-t.Lines:
					if !ok {
						return t.Wait()
					}
					if line.Err != nil {
						fmt.Fprintf(os.Stderr, "read error: %v\n", line.Err)
						continue
					}
					printLine(line.Text)
				case <-stop:
					return t.Stop()
				}
			}
		},
	}

	cmd.Flags().Bool("poll", false, "Poll the file instead of using inotify")
	cmd.Flags().Bool("from-start", false, "Classify existing lines before following")

	return cmd
}

// resolveTranscriptArg treats the argument as a file path when one exists,
// otherwise asks the daemon for the transcript of the session so named.
func resolveTranscriptArg(cmd *cobra.Command, arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}

	session, err := daemonClient(cmd).GetSession(arg)
	if err != nil {
		return "", fmt.Errorf("%q is neither a file nor a known session id: %w", arg, err)
	}
	if session.TranscriptPath == "" {
		return "", fmt.Errorf("session %q has no transcript yet", arg)
	}
	return session.TranscriptPath, nil
}

func printLine(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	entry, err := models.ParseTranscriptEntry([]byte(trimmed))
	if err != nil {
		fmt.Printf("%-18s unparseable line\n", "(skipped)")
		return
	}

	switch entry.Type {
	case models.EntryTypeSummary:
		fmt.Printf("%-18s summary\n", models.StateWaitingForInput)
	case models.EntryTypeFileHistorySnapshot:
		fmt.Printf("%-18s file-history-snapshot\n", "(skipped)")
	default:
		fmt.Printf("%-18s %s\n", transcript.ClassifyEntry(entry), describeEntry(entry))
	}
}

func describeEntry(entry *models.TranscriptEntry) string {
	parts := []string{entry.Type}
	if reason := entry.EffectiveStopReason(); reason != "" {
		parts = append(parts, "stop_reason="+reason)
	}
	if entry.Message != nil && len(entry.Message.Content.Blocks) > 0 {
		parts = append(parts, "first_block="+entry.Message.Content.Blocks[0].Type)
	}
	return strings.Join(parts, " ")
}
