package history

import (
	"github.com/spf13/cobra"

	"github.com/DreamingVaishu/AgriShield-AI/internal/analysis"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
)

// Command creates the history command for browsing the local scan store.
func Command(settings *conf.Settings) *cobra.Command {
	var opts analysis.HistoryOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.History(settings, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Maximum number of scans to list")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, csv")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Delete the entire local scan history")
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "Delete synced scans older than the retention age")
	cmd.MarkFlagsMutuallyExclusive("clear", "purge")

	return cmd
}
