package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/enrev/internal/config"
	"github.com/systmms/enrev/internal/discover"
	enreverrors "github.com/systmms/enrev/internal/errors"
	"github.com/systmms/enrev/internal/report"
	"github.com/systmms/enrev/internal/review"
)

// NewScanCommand creates the scan command for batch review of a tree.
func NewScanCommand(cfg *config.Config) *cobra.Command {
	var (
		rootDir  string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "scan [directory-name]",
		Short: "Discover and review every artifact set under a directory tree",
		Long: `Walk the directory tree looking for ENAAS registries and their
sibling secret manifests and deployment descriptors, then review every
discovered set.

With a directory-name argument, only the first directory with that name
found beneath the root is scanned. Hidden directories are skipped and
traversal is depth-bounded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}

			units, warnings, err := discover.Discover(rootDir, discover.Options{
				TargetName: target,
				MaxDepth:   maxDepth,
			})
			if err != nil {
				return enreverrors.SimplifyError(err)
			}
			for _, w := range warnings {
				cfg.Logger.Warn("%s", w)
			}
			if len(units) == 0 {
				cfg.Logger.Warn("no review units found under %s", rootDir)
				return nil
			}

			results := review.RunBatch(units, cfg.Logger)
			if err := writeReport(cfg, results); err != nil {
				return err
			}

			summary := report.Summarize(results)
			if summary.Defects > 0 {
				return enreverrors.ReviewFailed{Defects: summary.Defects}
			}
			cfg.Logger.Info("✓ All %d unit(s) passed", summary.Units)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "dir", ".", "Root directory to scan")
	cmd.Flags().IntVar(&maxDepth, "max-depth", cfg.MaxDepth, "Directory traversal depth bound")

	return cmd
}
