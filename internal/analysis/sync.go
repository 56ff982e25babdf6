package analysis

import (
	"context"
	"fmt"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
	"github.com/DreamingVaishu/AgriShield-AI/internal/syncagent"
)

// Sync pushes unsynced scans once, or keeps the agent running when watch
// is set.
func Sync(ctx context.Context, settings *conf.Settings, watch bool) error {
	if !settings.Sync.Enabled {
		return errors.Newf("sync is disabled, set sync.enabled to true in the config file").
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer closeStore(store)

	agent, err := syncagent.NewAgent(settings, store)
	if err != nil {
		return err
	}

	if watch {
		// Interactive runs get the readable stderr logger.
		if hr := logging.HumanReadable(); hr != nil {
			hr.Info("Sync agent running, press Ctrl+C to stop", "interval", settings.Sync.Interval)
		} else {
			getLogger().Info("Sync agent running", "interval", settings.Sync.Interval)
		}
		agent.Run(ctx)
		return nil
	}

	n, err := agent.SyncNow(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d scan(s).\n", n)
	return nil
}
