// Package datastore provides the scan history store, backed by SQLite on
// the device and SQLite or MySQL on the ingest server.
package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
)

var logger *slog.Logger

func getLogger() *slog.Logger {
	if logger == nil {
		logger = logging.ForService("datastore")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// Interface is the scan store contract shared by the SQLite and MySQL
// backends.
type Interface interface {
	Open() error
	Close() error

	// Device-side history.
	SaveScan(scan *ScanRecord) error
	GetScan(id string) (*ScanRecord, error)
	GetRecentScans(limit int) ([]ScanRecord, error)
	GetUnsyncedScans(limit int) ([]ScanRecord, error)
	MarkScansSynced(ids []string) error
	ClearHistory() error
	PurgeSyncedOlderThan(cutoff int64) (int64, error)

	// Server-side ingest.
	InsertRemoteScans(scans []RemoteScan) (int64, error)
	GetLatestRemoteScans(limit int) ([]RemoteScan, error)
	GetDiseaseStats() ([]DiseaseStat, error)
}

// DataStore implements Interface on top of a gorm DB handle. The concrete
// stores embed it and contribute Open.
type DataStore struct {
	DB *gorm.DB
}

// New selects the configured backend. MySQL wins if both are enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return &SQLiteStore{Settings: settings}
	}
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if err := sqlDB.Close(); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	ds.DB = nil
	return nil
}

// SaveScan stores one scan in the device history.
func (ds *DataStore) SaveScan(scan *ScanRecord) error {
	if scan == nil {
		return errors.Newf("nil scan record").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := ds.DB.Create(scan).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("scan_id", scan.ID).
			Build()
	}
	return nil
}

// GetScan fetches a single scan by its UUID.
func (ds *DataStore) GetScan(id string) (*ScanRecord, error) {
	var scan ScanRecord
	if err := ds.DB.Where("id = ?", id).First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("scan %s not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &scan, nil
}

// GetRecentScans returns the newest scans first.
func (ds *DataStore) GetRecentScans(limit int) ([]ScanRecord, error) {
	var scans []ScanRecord
	err := ds.DB.Order("timestamp DESC").Limit(limit).Find(&scans).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return scans, nil
}

// GetUnsyncedScans returns scans not yet acknowledged by the server,
// oldest first so batches upload in capture order.
func (ds *DataStore) GetUnsyncedScans(limit int) ([]ScanRecord, error) {
	var scans []ScanRecord
	query := ds.DB.Where("synced = 0").Order("timestamp ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&scans).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return scans, nil
}

// MarkScansSynced flips the synced flag for the given IDs. Only called
// after the server acknowledged the batch.
func (ds *DataStore) MarkScansSynced(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := ds.DB.Model(&ScanRecord{}).
		Where("id IN ?", ids).
		Update("synced", 1).Error
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("count", len(ids)).
			Build()
	}
	return nil
}

// ClearHistory removes every scan from the device history.
func (ds *DataStore) ClearHistory() error {
	if err := ds.DB.Where("1 = 1").Delete(&ScanRecord{}).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

// PurgeSyncedOlderThan removes synced scans with a timestamp before the
// cutoff (unix milliseconds) and reports how many rows went away. Unsynced
// scans are never purged.
func (ds *DataStore) PurgeSyncedOlderThan(cutoff int64) (int64, error) {
	result := ds.DB.Where("synced = 1 AND timestamp < ?", cutoff).Delete(&ScanRecord{})
	if result.Error != nil {
		return 0, errors.New(result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return result.RowsAffected, nil
}

// InsertRemoteScans ingests a batch, skipping rows whose UUID is already
// present, in a single transaction. Returns the number of newly inserted
// rows.
func (ds *DataStore) InsertRemoteScans(scans []RemoteScan) (int64, error) {
	if len(scans) == 0 {
		return 0, nil
	}

	now := time.Now().UnixMilli()
	for i := range scans {
		scans[i].SyncedAt = now
	}

	var inserted int64
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&scans)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("batch_size", len(scans)).
			Build()
	}
	return inserted, nil
}

// GetLatestRemoteScans returns the newest ingested scans first.
func (ds *DataStore) GetLatestRemoteScans(limit int) ([]RemoteScan, error) {
	var scans []RemoteScan
	err := ds.DB.Order("timestamp DESC").Limit(limit).Find(&scans).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return scans, nil
}
