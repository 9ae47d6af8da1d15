package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-promptkit/internal/config"
	"github.com/goliatone/go-promptkit/pkg/interactive"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	driver interactive.PromptDriver
	// injected skips building a logger in PersistentPreRunE.
	injected bool
}

type rootOption func(*app)

func withLogger(logger *zap.Logger) rootOption {
	return func(a *app) {
		a.logger = logger
		a.injected = logger != nil
	}
}

func withPromptDriver(driver interactive.PromptDriver) rootOption {
	return func(a *app) {
		a.driver = driver
	}
}

func newRootCmd(options ...rootOption) *cobra.Command {
	a := &app{}
	for _, opt := range options {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:   "promptkit",
		Short: "Render prompt templates with {dotted.path} placeholders",
		Long: `promptkit renders prompt templates: plain text containing {dotted.path}
placeholders resolved against a context assembled from JSON, YAML, TOML or HCL
documents and command-line assignments.

Templates can be read from files, URLs, the built-in prompt set or a SQLite
template store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.injected {
				zcfg := zap.NewProductionConfig()
				if a.verbose {
					zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
				}
				logger, err := zcfg.Build()
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				a.logger = logger
			}

			cfg, err := config.Load(config.Resolve(a.configPath))
			if err != nil {
				return err
			}
			a.cfg = cfg
			if cfg.Path != "" {
				a.logger.Debug("loaded config", zap.String("path", cfg.Path))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil && !a.injected {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default .promptkit.yaml, or $"+config.EnvFile+")")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRenderCmd(a), newInspectCmd(a), newStoreCmd(a))
	return cmd
}
