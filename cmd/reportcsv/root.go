package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/reportcsv/internal/config"
	"github.com/dgallion1/reportcsv/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	dedupe      bool
	concurrency int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reportcsv",
	Short: "Flatten JSON report files into a single CSV",
	Long: `reportcsv finds report entries in JSON documents, flattens each one into
a fixed set of columns, and writes them out as CSV.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&dedupe, "dedupe", false, "Emit each source object once even if several passes find it")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", 0, "Files read at once (default from MAX_CONCURRENT_READS)")
}

// loadConfig reads the shared configuration and applies command-line
// overrides.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if concurrency > 0 {
		cfg.MaxConcurrentReads = concurrency
	}
	if dedupe {
		cfg.DedupeRecords = true
	}
	return cfg
}

func newProcessor(cfg config.Config) *pipeline.Processor {
	return pipeline.NewProcessor(pipeline.Options{
		MaxConcurrentReads: cfg.MaxConcurrentReads,
		MaxFileBytes:       cfg.MaxUploadBytes,
		Logger:             slog.Default(),
		Dedupe:             cfg.DedupeRecords,
	})
}
