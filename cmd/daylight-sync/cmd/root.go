package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
	"github.com/oshokin/daylight-sync/internal/service/syncer"
	"github.com/oshokin/daylight-sync/internal/version"
)

var (
	// configPath stores the path to the settings YAML file.
	configPath string
	// themeConfigPath overrides the theme config file to rewrite.
	themeConfigPath string
	// stateFilePath overrides the persisted state file.
	stateFilePath string
	// initFilePath overrides the editor init file path.
	initFilePath string
	// forceState forces light or dark mode, skipping solar resolution.
	forceState string
	// logLevel sets the minimum log level for this run.
	logLevel string

	// rootCmd represents the base command performing one synchronization pass.
	rootCmd = &cobra.Command{
		Use:   "daylight-sync",
		Short: "Synchronize light/dark mode with the sun.",
		Long: `Determine whether it is day or night at your location and synchronize
light/dark visual mode across your terminal config, a persisted state file,
and any running editor sessions reachable through their control sockets.

The tool resolves your position from network context, fetches today's sunrise
and sunset, and compares the resulting state with the one recorded in the
state file. Nothing is touched when the state has not changed, so it is safe
to invoke from a timer as often as you like. Use --force to skip resolution
and apply a state directly.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Validate the forced override against the closed two-value set
			// at the boundary; the core logic only ever sees a valid state.
			var force *domain.State

			if forceState != "" {
				state, err := domain.ParseState(forceState)
				if err != nil {
					return err
				}

				force = &state
			}

			syncOptions := &syncer.Options{
				ConfigPath:      configPath,
				ThemeConfigPath: themeConfigPath,
				StateFilePath:   stateFilePath,
				InitFilePath:    initFilePath,
				Force:           force,
			}

			return syncer.Run(ctx, syncOptions)
		},
	}
)

// Execute runs the daylight-sync CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to settings file")
	rootCmd.Flags().StringVarP(&themeConfigPath, "theme-config", "a",
		"", "theme config file to rewrite (default from settings)")
	rootCmd.Flags().StringVarP(&stateFilePath, "state-file", "s",
		"", "persisted state file (default from settings)")
	rootCmd.Flags().StringVarP(&initFilePath, "init-file", "n",
		"", "editor init file, accepted for compatibility")
	rootCmd.Flags().StringVarP(&forceState, "force", "f",
		"", "force a state: light|dark (also up|down)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l",
		"info", "log level: debug|info|warn|error")
}
