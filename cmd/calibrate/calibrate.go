package calibrate

import (
	"github.com/spf13/cobra"

	"github.com/DreamingVaishu/AgriShield-AI/internal/analysis"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// Command creates the calibrate command for capturing a healthy-leaf
// baseline.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate [healthy-leaf.jpg]",
		Short: "Capture a healthy-leaf calibration baseline",
		Long:  `Measure the color baseline of a known healthy leaf and store it. Later scans subtract this baseline to compensate for lighting and camera tint.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Calibrate(settings, args[0])
		},
	}
}
