package datastore

import (
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// SQLiteStore is the default store, one database file on disk.
type SQLiteStore struct {
	Settings *conf.Settings
	DataStore
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return errors.Newf("SQLite database path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Open initializes the SQLite database, creating the parent directory and
// the schema as needed.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	dbPath := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(dbPath); dir != "." {
		dbPath = filepath.Join(conf.GetBasePath(dir), filepath.Base(dbPath))
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig(store.Settings.Debug))
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("path", dbPath).
			Build()
	}

	// One writer at a time keeps SQLite happy under the sync agent.
	sqlDB, err := db.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	sqlDB.SetMaxOpenConns(1)

	if err := performAutoMigration(db, store.Settings.Debug, "SQLite", dbPath); err != nil {
		return err
	}

	store.DB = db
	getLogger().Info("SQLite database opened", "path", dbPath)
	return nil
}
