package datastore

import (
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// performAutoMigration runs gorm auto-migration for the scan tables.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&ScanRecord{}, &RemoteScan{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Build()
	}
	if debug {
		getLogger().Debug("Database schema migrated", "db_type", dbType, "connection", connectionInfo)
	}
	return nil
}

// createGormLogger returns a gorm logger that stays quiet unless queries
// are slow or failing.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// gormConfig is shared by both backends.
func gormConfig(debug bool) *gorm.Config {
	return &gorm.Config{
		Logger:  createGormLogger(debug),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}
