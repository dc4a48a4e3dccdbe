package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/embercove/ideavault/internal/cache"
	"github.com/embercove/ideavault/internal/config"
	"github.com/embercove/ideavault/internal/ideas"
	"github.com/embercove/ideavault/internal/logger"
	"github.com/embercove/ideavault/internal/sync"
	"github.com/embercove/ideavault/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "ideavault",
	Short: "IdeaVault - Capture and develop your ideas",
	Long: `IdeaVault is a personal idea notebook with AI-assisted brainstorming
and cross-device sync. Ideas are cached locally, so capture keeps working
offline; changes replay to the server on the next sync.

Run 'ideavault' without arguments to launch the interactive TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("IdeaVault started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch TUI
		store, err := cache.OpenDefault()
		if err != nil {
			logger.Error("Failed to open cache", logger.F("error", err))
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() {
			_ = store.Close()
			logger.Info("Cache closed")
		}()

		client, err := sync.NewClient()
		if err != nil {
			return err
		}

		svc := ideas.NewService(client, store)
		auto := sync.NewAutoSync(client, store)
		defer auto.Stop()

		logger.Info("Launching TUI")
		m := tui.NewModel(svc, auto)
		p := tea.NewProgram(m, tea.WithAltScreen())

		// Background sync results land in the running program as messages
		auto.SetOnSynced(func(r *sync.Result) {
			p.Send(tui.SyncedMsg{Result: r})
		})

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("IdeaVault exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(brainstormCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(authCmd)
}

// newService opens the local cache and sync client shared by the leaf
// commands. The caller owns the returned cache.
func newService() (*ideas.Service, *cache.Cache, error) {
	store, err := cache.OpenDefault()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	client, err := sync.NewClient()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return ideas.NewService(client, store), store, nil
}
