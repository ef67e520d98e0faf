package commands

import (
	"fmt"
	"os"

	"github.com/systmms/enrev/internal/config"
	"github.com/systmms/enrev/internal/defect"
	"github.com/systmms/enrev/internal/report"
)

// writeReport renders the results in the configured format, to the
// configured output file or stdout.
func writeReport(cfg *config.Config, results []*defect.Result) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		return report.Write(os.Stdout, results, format)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := report.Write(f, results, format); err != nil {
		return err
	}
	cfg.Logger.Info("Report written to %s", cfg.Output)
	return nil
}
