package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"spesetracker/internal/config"
	"spesetracker/internal/log"
)

var (
	envFile  string
	logLevel string

	appConfig *config.Config
	logger    *log.Logger
)

// closeTimeout bounds how long a command waits for its last write.
const closeTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "spese",
	Short: "Track personal expenses",
	Long: `spese keeps a list of personal expenses, each with a title, amount,
category and date, and shows totals and a per-category breakdown.

Data is stored under one key in the configured backend (file, sqlite,
postgres, mongo or memory). See DATA_BACKEND and friends.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadEnvFile(envFile); err != nil {
			return err
		}
		cfg, err := LoadAndValidateConfig()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		appConfig = cfg
		logger = SetupLogger(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withApp opens and loads the app, runs fn, then flushes and closes.
func withApp(cmd *cobra.Command, fn func(a *App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := OpenApp(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	a.Load(ctx)
	return fn(a)
}
