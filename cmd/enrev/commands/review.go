package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/enrev/internal/config"
	"github.com/systmms/enrev/internal/defect"
	enreverrors "github.com/systmms/enrev/internal/errors"
	"github.com/systmms/enrev/internal/review"
)

// NewReviewCommand creates the review command for verifying one artifact set.
func NewReviewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <registry> <manifest> [descriptor]",
		Short: "Review one set of deployment artifacts",
		Long: `Cross-check an ENAAS key registry against a secret manifest and,
when given, a deployment descriptor.

The registry is a JSON file declaring keys, autoKeys and encodedKeys per
application. The manifest is a YAML file whose placeholders must resolve
against the registry. The descriptor is a YAML file whose secretRef names
must match the manifest's metadata.name.

The command exits non-zero when any defect is found.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptorPath := ""
			if len(args) == 3 {
				descriptorPath = args[2]
			}

			result := review.New(args[0], args[1], descriptorPath, cfg.Logger).Run()

			if err := writeReport(cfg, []*defect.Result{result}); err != nil {
				return err
			}

			if result.HasDefects() {
				return enreverrors.ReviewFailed{Defects: result.TotalDefects()}
			}
			cfg.Logger.Info("✓ Review passed (%d placeholder(s) checked)", result.PlaceholderCount)
			return nil
		},
	}

	return cmd
}
