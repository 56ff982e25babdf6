// Package observation turns classifier predictions into scan records and
// renders them for the command line.
package observation

import (
	"time"

	"github.com/google/uuid"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/datastore"
	"github.com/DreamingVaishu/AgriShield-AI/internal/leafnet"
)

// New builds a scan record from a prediction. The record carries a fresh
// UUID so the remote store can deduplicate it across sync retries, and the
// device location when one is configured.
func New(settings *conf.Settings, result *leafnet.PredictionResult, imagePath string) *datastore.ScanRecord {
	record := &datastore.ScanRecord{
		ID:          uuid.New().String(),
		DiseaseName: result.Top.Label.Name,
		Severity:    string(result.Top.Label.Severity),
		Confidence:  result.Top.Confidence,
		ImagePath:   imagePath,
		Timestamp:   time.Now().UnixMilli(),
		DeviceID:    settings.Main.DeviceID,
	}

	if settings.Location.Latitude != 0 || settings.Location.Longitude != 0 {
		lat := settings.Location.Latitude
		lon := settings.Location.Longitude
		record.Latitude = &lat
		record.Longitude = &lon
	}

	return record
}
