package analysis

import (
	"fmt"
	"os"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/observation"
)

// HistoryOptions controls the history command.
type HistoryOptions struct {
	Limit  int
	Format string // table or csv
	Clear  bool
	Purge  bool
}

// History lists, clears or purges the local scan history.
func History(settings *conf.Settings, opts HistoryOptions) error {
	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer closeStore(store)

	switch {
	case opts.Clear:
		if err := store.ClearHistory(); err != nil {
			return err
		}
		fmt.Println("Scan history cleared.")
		return nil
	case opts.Purge:
		return purgeSynced(settings, store)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	scans, err := store.GetRecentScans(limit)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "", "table":
		return observation.WriteTable(os.Stdout, scans)
	case "csv":
		return observation.WriteCSV(os.Stdout, scans)
	default:
		return errors.Newf("unsupported output format %q, expected table or csv", opts.Format).
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}
}

// purgeSynced applies the retention policy once, on demand.
func purgeSynced(settings *conf.Settings, store datastore.Interface) error {
	maxAge := settings.Retention.RetentionMaxAge()
	if maxAge <= 0 {
		return errors.Newf("retention.maxage is not configured").
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	removed, err := store.PurgeSyncedOlderThan(cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Purged %d synced scan(s) older than %s.\n", removed, maxAge)
	return nil
}

// applyRetention prunes old synced scans when retention is enabled.
func applyRetention(settings *conf.Settings, store datastore.Interface) error {
	if !settings.Retention.Enabled {
		return nil
	}
	maxAge := settings.Retention.RetentionMaxAge()
	if maxAge <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	removed, err := store.PurgeSyncedOlderThan(cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		getLogger().Info("Old synced scans pruned", "removed", removed)
	}
	return nil
}
