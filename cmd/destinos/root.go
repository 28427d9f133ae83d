package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crisrod14/destinosAI/internal/api"
	"github.com/crisrod14/destinosAI/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

// logLevel is raised or lowered once the config is loaded.
var logLevel = new(slog.LevelVar)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

var rootCmd = &cobra.Command{
	Use:   "destinos",
	Short: "Generate and manage airline destination copy",
	Long: `destinos writes the marketing copy for airline destination pages.

Each destination is one record of fixed fields. Records are generated
by a language model, edited by hand, kept in a local SQLite store and
mirrored to a Google Sheets tab after every change.

  destinos generate ARICA IQUIQUE     # generate two destinations
  destinos show ARICA                 # view a record by section
  destinos edit ARICA --editor        # edit it in $EDITOR
  destinos sync                       # push the full set to the sheet`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.destinos/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "destinos home directory (default: ~/.destinos)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging",
	)

	// Set output format and logging before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := api.SetOutputFormat(outputFormat); err != nil {
			return err
		}
		if verbose {
			logLevel.Set(slog.LevelDebug)
		}
		slog.SetDefault(logger)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}
