package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
)

// MySQLStore backs the ingest server when a shared database is wanted.
type MySQLStore struct {
	Settings *conf.Settings
	DataStore
}

func validateMySQLConfig(settings *conf.Settings) error {
	mysqlCfg := settings.Output.MySQL
	if mysqlCfg.Host == "" || mysqlCfg.Port == "" || mysqlCfg.Database == "" || mysqlCfg.Username == "" {
		return errors.Newf("incomplete MySQL configuration: host, port, database and username are required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Open connects to MySQL and migrates the schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	mysqlCfg := store.Settings.Output.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		mysqlCfg.Username, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig(store.Settings.Debug))
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("host", mysqlCfg.Host).
			Context("database", mysqlCfg.Database).
			Build()
	}

	connectionInfo := fmt.Sprintf("%s:%s/%s", mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.Database)
	if err := performAutoMigration(db, store.Settings.Debug, "MySQL", connectionInfo); err != nil {
		return err
	}

	store.DB = db
	getLogger().Info("MySQL database opened", "host", mysqlCfg.Host, "database", mysqlCfg.Database)
	return nil
}
