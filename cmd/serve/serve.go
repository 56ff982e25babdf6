package serve

import (
	"github.com/spf13/cobra"

	"github.com/DreamingVaishu/AgriShield-AI/internal/analysis"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// Command creates the serve command for running the ingest server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan ingest server",
		Long:  `Serve the sync and dashboard API: POST /api/sync, GET /api/scans, GET /api/scans/stats, plus /health and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Serve(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVar(&settings.Server.Host, "host", settings.Server.Host, "Listen address")
	cmd.Flags().StringVar(&settings.Server.Port, "port", settings.Server.Port, "Listen port")

	return cmd
}
