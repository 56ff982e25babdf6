package sync

import (
	"github.com/spf13/cobra"

	"github.com/DreamingVaishu/AgriShield-AI/internal/analysis"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// Command creates the sync command for uploading queued scans.
func Command(settings *conf.Settings) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload unsynced scans to the server",
		Long:  `Push all locally stored scans that the server has not yet acknowledged. With --watch the agent keeps running, syncing on an interval and whenever connectivity returns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Sync(cmd.Context(), settings, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and sync periodically")

	return cmd
}
