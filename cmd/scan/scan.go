package scan

import (
	"github.com/spf13/cobra"

	"github.com/DreamingVaishu/AgriShield-AI/internal/analysis"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// Command creates the scan command for classifying a single leaf photo.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [photo.jpg]",
		Short: "Classify a leaf photo",
		Long:  `Classify a single leaf photo against the disease catalogue, store the result locally and upload it when the server is reachable.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.ScanFile(cmd.Context(), settings, args[0])
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().BoolVar(&settings.Classifier.UseTTA, "tta", settings.Classifier.UseTTA, "Average predictions over flipped and cropped variants")
	cmd.Flags().BoolVar(&settings.Calibration.Enabled, "calibrated", settings.Calibration.Enabled, "Subtract the stored calibration baseline before inference")
}
