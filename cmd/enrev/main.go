package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/enrev/cmd/enrev/commands"
	"github.com/systmms/enrev/internal/config"
	"github.com/systmms/enrev/internal/logging"
	"github.com/systmms/enrev/internal/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Environment-backed defaults (ENREV_FORMAT, ENREV_MAX_DEPTH, ...)
	cfg := config.New()
	report.Version = version

	var (
		noColor        bool
		debug          bool
		nonInteractive bool
		format         string
		output         string
	)

	rootCmd := &cobra.Command{
		Use:   "enrev",
		Short: "ENAAS review - Verify deployment configuration consistency",
		Long: `enrev cross-checks ENAAS key registries, secret manifests and
deployment descriptors, reporting every structural, formatting and
reference defect it finds.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			cfg.Logger = logger
			cfg.NoColor = noColor
			cfg.Debug = debug
			cfg.NonInteractive = nonInteractive
			cfg.Format = format
			cfg.Output = output
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", cfg.NoColor, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", cfg.Debug, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")
	rootCmd.PersistentFlags().StringVar(&format, "format", cfg.Format, "Report format (table, json, sarif)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "", "Write report to file instead of stdout")

	rootCmd.AddCommand(
		commands.NewReviewCommand(cfg),
		commands.NewScanCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
