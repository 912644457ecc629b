package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/agentwatch/cli"
	"github.com/grovetools/agentwatch/config"
	"github.com/grovetools/agentwatch/errors"
	"github.com/grovetools/agentwatch/internal/daemon/pidfile"
	"github.com/grovetools/agentwatch/internal/daemon/registry"
	"github.com/grovetools/agentwatch/internal/daemon/server"
	"github.com/grovetools/agentwatch/internal/daemon/store"
	"github.com/grovetools/agentwatch/logging"
	"github.com/grovetools/agentwatch/pkg/models"
	"github.com/grovetools/agentwatch/pkg/monitor"
	"github.com/grovetools/agentwatch/pkg/paths"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCmd returns the daemon command with subcommands.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Agentwatch daemon",
		Long:  "Run agentwatch as a daemon serving session state over a unix socket.",
	}

	cmd.AddCommand(newServeStartCmd())
	cmd.AddCommand(newServeStopCmd())
	cmd.AddCommand(newServeStatusCmd())

	return cmd
}

func newServeStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the agentwatch daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("agentwatchd")

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				// A missing config file is fine; defaults apply.
				if !errors.Is(err, errors.ErrCodeConfigNotFound) {
					return err
				}
				cfg = &config.Config{}
				cfg.SetDefaults()
			}

			pidPath := daemonPidPath(cfg)
			sockPath := daemonSocketPath(cfg)

			// 1. Acquire Lock
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 2. Setup store and coordinator
			st := store.New()
			coordinator, err := monitor.New(cfg, func(session *models.Session) {
				st.ApplySession(session)
			})
			if err != nil {
				return fmt.Errorf("failed to start watchers: %w", err)
			}
			defer coordinator.Close()

			// 3. Re-register persisted sessions
			reg := registry.New("")
			entries, err := reg.Load()
			if err != nil {
				logger.Warnf("Could not load session registry: %v", err)
			}
			for _, entry := range entries {
				if _, err := coordinator.CreateSession(entry.ID, entry.Name, entry.WorkingDirectory); err != nil {
					logger.WithField("session", entry.ID).Warnf("Could not restore session: %v", err)
				}
			}

			// 4. Setup server
			srv := server.New(logger, st)
			srv.SetController(&persistentController{coordinator: coordinator, registry: reg, logger: logger})
			srv.SetRunningConfig(&server.RunningConfig{
				StatusDir:    coordinator.StatusDir(),
				PollInterval: cfg.Watch.PollIntervalDuration(),
				StartedAt:    time.Now(),
			})

			// 5. Handle signals
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-stop
				logger.Info("Received stop signal")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}

				_ = coordinator.Close()
				// Explicitly release pidfile before exit in signal handler
				_ = pidfile.Release(pidPath)
				os.Exit(0)
			}()

			// 6. Start server (blocking)
			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			if err := srv.ListenAndServe(sockPath); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newServeStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefaults(cmd)
			pidPath := daemonPidPath(cfg)

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}

			fmt.Printf("Stopped daemon (PID %d)\n", pid)
			return nil
		},
	}
}

func newServeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefaults(cmd)

			running, pid, err := pidfile.IsRunning(daemonPidPath(cfg))
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if running {
				fmt.Printf("Daemon is running (PID %d)\n", pid)
				fmt.Printf("Socket: %s\n", daemonSocketPath(cfg))
			} else {
				fmt.Println("Daemon is not running")
			}
			return nil
		},
	}
}

// persistentController records session lifecycle changes in the registry so
// they survive daemon restarts.
type persistentController struct {
	coordinator *monitor.Coordinator
	registry    *registry.Registry
	logger      *logrus.Entry
}

func (p *persistentController) CreateSession(stableID, name, workingDirectory string) (*models.Session, error) {
	session, err := p.coordinator.CreateSession(stableID, name, workingDirectory)
	if err != nil {
		return nil, err
	}
	if err := p.registry.Add(registry.Entry{
		ID:               session.ID,
		Name:             session.Name,
		WorkingDirectory: session.WorkingDirectory,
		CreatedAt:        session.CreatedAt,
	}); err != nil {
		p.logger.WithField("session", stableID).Warnf("Could not persist session: %v", err)
	}
	return session, nil
}

func (p *persistentController) DeleteSession(stableID string) error {
	if err := p.coordinator.DeleteSession(stableID); err != nil {
		return err
	}
	if err := p.registry.Remove(stableID); err != nil {
		p.logger.WithField("session", stableID).Warnf("Could not remove persisted session: %v", err)
	}
	return nil
}

// loadConfigOrDefaults loads configuration, treating a missing file as the
// default configuration.
func loadConfigOrDefaults(cmd *cobra.Command) *config.Config {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	return cfg
}

func daemonSocketPath(cfg *config.Config) string {
	if cfg.Daemon != nil && cfg.Daemon.SocketPath != "" {
		return cfg.Daemon.SocketPath
	}
	return paths.SocketPath()
}

func daemonPidPath(cfg *config.Config) string {
	if cfg.Daemon != nil && cfg.Daemon.PidFile != "" {
		return cfg.Daemon.PidFile
	}
	return paths.PidFilePath()
}
