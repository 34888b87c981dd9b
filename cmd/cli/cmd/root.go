// Package cmd implements the vstats command line interface.
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vstats-analysis/internal/service"
	"github.com/vstats-analysis/pkg/config"
	"github.com/vstats-analysis/pkg/telemetry"
	"github.com/vstats-analysis/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger utils.Logger

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vstats",
	Short: "An analyzer for video codec statistics files",
	Long: `vstats inspects semicolon-delimited video codec statistics files.

It indexes large files in a single streaming pass, loads per-frame block
statistics on demand, and aggregates values and motion vectors by block
size for charting. Gzip and zstd compressed files are read transparently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		if cfg.Log.OutputPath != "" {
			logger, err = utils.NewFileLogger(logLevel, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
		} else {
			logger = utils.NewDefaultLogger(logLevel, os.Stderr)
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Telemetry disabled: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetryShutdown(ctx); err != nil {
				logger.Warn("Failed to flush telemetry: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Show sequence metadata and declared statistics types
  ` + binName + ` info -i ./stats.csv

  # Dump the decoded records of one frame and type as JSON
  ` + binName + ` dump -i ./stats.csv --frame 5 --type 9

  # Aggregate a type over a frame range, grouped by block size
  ` + binName + ` aggregate -i ./stats.csv.gz --type 9 --from 0 --to 100`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}

// sessionOptions builds service options from the loaded configuration.
func sessionOptions() *service.Options {
	opts := service.DefaultOptions()
	opts.Logger = logger
	opts.ChunkSize = cfg.Parser.BufferSize
	opts.Delimiter = cfg.DelimiterByte()
	opts.ProgressInterval = time.Duration(cfg.Parser.ProgressInterval) * time.Second
	return opts
}
