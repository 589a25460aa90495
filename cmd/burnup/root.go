package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/burnup/internal/config"
	"github.com/rpggio/burnup/internal/domain/metrics"
	"github.com/rpggio/burnup/internal/eranos"
	"github.com/rpggio/burnup/internal/stack"
)

var rootCmd = &cobra.Command{
	Use:   "burnup",
	Short: "ERANOS burnup report ingestion",
	Long: `burnup reads the text output of an ERANOS burnup calculation, expands
lumped fission products through a yield table and derives radiological and
criticality metrics for each material.

Settings come from the configuration file (BURNUP_CONFIG_PATH), BURNUP_*
environment variables and the flags below, in increasing precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// cfg is resolved once per invocation by loadConfig.
var cfg config.Config

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("yield-table", "", "fission yield CSV used to expand lumped fission products")
	rootCmd.PersistentFlags().String("coefficients", "", "TOML file overriding the metric coefficient tables")
	rootCmd.PersistentFlags().Bool("ignore-dose", false, "drop the dose term from the figures of merit")
	rootCmd.PersistentFlags().String("db", "", "run database path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log ingestion details to stderr")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("yield-table") {
		loaded.Ingest.YieldTable, _ = flags.GetString("yield-table")
	}
	if flags.Changed("coefficients") {
		loaded.Metrics.Coefficients, _ = flags.GetString("coefficients")
	}
	if flags.Changed("ignore-dose") {
		loaded.Metrics.IgnoreDose, _ = flags.GetBool("ignore-dose")
	}
	if flags.Changed("db") {
		loaded.DB.Path, _ = flags.GetString("db")
	}
	cfg = loaded
	return nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// loadReport ingests path without persisting it.
func loadReport(cmd *cobra.Command, path string) (*eranos.Report, *metrics.Engine, error) {
	logger := newLogger(cmd)
	loader, err := stack.NewLoader(cfg.Ingest, logger)
	if err != nil {
		return nil, nil, err
	}
	engine, err := stack.NewEngine(cfg.Metrics)
	if err != nil {
		return nil, nil, err
	}
	report, err := loader.LoadFile(cmd.Context(), path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingesting %s: %w", path, err)
	}
	return report, engine, nil
}
