package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/config"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
	"github.com/pa-inspections/inspections-engine/pkg/pipeline"
)

// Version is set at build time via ldflags
var Version = "dev"

// app carries state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command with args and returns the process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "inspections",
		Short:         "Food-safety inspection data pipeline",
		Long:          `Normalizes raw inspection exports, resolves violation codes, reconciles the category store and labels new establishments with an LLM.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ./config.yaml when present)")

	rootCmd.AddCommand(a.runCmd())
	rootCmd.AddCommand(a.cleanCmd())
	rootCmd.AddCommand(a.violationsCmd())
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.labelCmd())
	rootCmd.AddCommand(a.configCmd())

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", logging.SanitizeError(err))
		return 1
	}
	return 0
}

func (a *app) init() error {
	cfg, err := config.Load(Version, a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger

	logger.Debug("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("object_storage", cfg.Storage.IsAvailable()),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("llm_available", cfg.LLM.IsAvailable()))
	return nil
}

func (a *app) open(ctx context.Context) (*pipeline.Pipeline, error) {
	return pipeline.Open(ctx, a.cfg, a.logger)
}
