// Package analysis orchestrates the command-line workflows: scanning a
// photo, calibrating, browsing history, syncing and serving.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/leafnet"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
	"github.com/DreamingVaishu/AgriShield-AI/internal/observation"
	"github.com/DreamingVaishu/AgriShield-AI/internal/preprocess"
	"github.com/DreamingVaishu/AgriShield-AI/internal/syncagent"
)

var logger *slog.Logger

func getLogger() *slog.Logger {
	if logger == nil {
		logger = logging.ForService("analysis")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// loadCatalogue returns the embedded disease catalogue, or a custom one
// when the classifier settings name a catalogue file.
func loadCatalogue(settings *conf.Settings) (*catalogue.Catalogue, error) {
	if path := settings.Classifier.CataloguePath; path != "" {
		return catalogue.LoadFile(path)
	}
	return catalogue.Load()
}

// ScanFile classifies one leaf photo, prints the result, stores it in the
// local history and opportunistically pushes unsynced scans.
func ScanFile(ctx context.Context, settings *conf.Settings, imagePath string) error {
	cat, err := loadCatalogue(settings)
	if err != nil {
		return err
	}

	classifier, err := leafnet.New(settings, cat)
	if err != nil {
		return err
	}
	defer classifier.Delete()

	img, err := preprocess.DecodeFile(imagePath)
	if err != nil {
		return err
	}

	result, err := classifier.Predict(img)
	if err != nil {
		return err
	}

	observation.WriteResult(os.Stdout, result, cat, settings.Main.Locale)

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return nil
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer closeStore(store)

	record := observation.New(settings, result, imagePath)
	if err := store.SaveScan(record); err != nil {
		return err
	}
	getLogger().Info("Scan stored", "id", record.ID, "disease", record.DiseaseName)

	if err := applyRetention(settings, store); err != nil {
		getLogger().Warn("Retention cleanup failed", "error", err)
	}

	// Best effort: a failed push leaves the scan queued for later.
	if settings.Sync.Enabled {
		agent, err := syncagent.NewAgent(settings, store)
		if err != nil {
			return err
		}
		if n, err := agent.SyncNow(ctx); err == nil && n > 0 {
			fmt.Printf("Synced %d scan(s).\n", n)
		}
	}

	return nil
}

func closeStore(store datastore.Interface) {
	if err := store.Close(); err != nil {
		getLogger().Warn("Datastore close failed", "error", err)
	}
}
