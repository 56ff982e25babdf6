// config.go: settings struct and functions to load and access the application configuration.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for rotating file logs.
type LogConfig struct {
	Enabled    bool   // true to enable per-service log files
	Path       string // directory for log files
	MaxSize    int    // maximum size of a log file in megabytes before rotation
	MaxBackups int    // maximum number of rotated files to keep
	MaxAge     int    // maximum age of rotated files in days
}

// MainSettings contains node identity and localization settings.
type MainSettings struct {
	Name     string    // friendly name of this scanner node
	Locale   string    // locale for disease names and treatment text
	DeviceID string    `yaml:"deviceid"` // stable device identifier sent with sync batches
	Log      LogConfig // file logging settings
}

// ClassifierSettings contains settings for the leaf disease classifier.
type ClassifierSettings struct {
	ModelPath     string `yaml:"modelpath"`     // path to TFLite model file, empty enables demo mode
	CataloguePath string `yaml:"cataloguepath"` // path to a custom disease catalogue, empty uses the embedded one
	InputSize     int    `yaml:"inputsize"`     // model input geometry, pixels per side
	UseTTA        bool   `yaml:"usetta"`        // run test-time augmentation and average results
	Threads       int    // interpreter threads, 0 for number of CPUs
	Debug         bool   // true to enable classifier debug logging
}

// DemoSettings contains thresholds for the heuristic fallback classifier.
// The bands are empirically tuned and treated as configuration.
type DemoSettings struct {
	HealthyBand   float64 `yaml:"healthyband"`   // disease load below this means healthy
	ModerateBand  float64 `yaml:"moderateband"`  // disease load below this means early-stage
	MinConfidence float64 `yaml:"minconfidence"` // lower bound of reported confidence
	MaxConfidence float64 `yaml:"maxconfidence"` // upper bound of reported confidence
}

// CalibrationSettings controls background subtraction against a stored
// healthy-leaf color baseline.
type CalibrationSettings struct {
	Enabled bool   // subtract the stored calibration vector during preprocessing
	Path    string // path to the calibration YAML file
}

// LocationSettings holds the fixed scanner coordinates, if configured.
type LocationSettings struct {
	Latitude  float64 // decimal degrees, 0 means unset
	Longitude float64 // decimal degrees, 0 means unset
}

// SQLiteSettings contains the embedded database settings.
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the SQLite database file
}

// MySQLSettings contains the MySQL backend settings.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// OutputSettings selects the datastore backend.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// RetentionSettings controls the age-based sweep of already-synced scans.
type RetentionSettings struct {
	Enabled bool
	MaxAge  string `yaml:"maxage"` // Go duration string, default 90 days
}

// SyncSettings contains settings for the remote sync agent.
type SyncSettings struct {
	Enabled  bool
	URL      string        // remote sync endpoint, e.g. http://host:8080/api/sync
	Interval time.Duration // time between periodic sync attempts
	Timeout  time.Duration // time before a sync request is abandoned
	Debug    bool
}

// ServerSettings contains settings for the remote ingest API server.
type ServerSettings struct {
	Host string
	Port string
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug       bool // true to enable debug output globally
	Main        MainSettings
	Classifier  ClassifierSettings
	Demo        DemoSettings
	Calibration CalibrationSettings
	Location    LocationSettings
	Output      OutputSettings
	Retention   RetentionSettings
	Sync        SyncSettings
	Server      ServerSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings struct
// and stores it as the package singleton.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Generate a device id on first run and write it back to the config
	// file so every later run reports the same identifier.
	if settings.Main.DeviceID == "" {
		settings.Main.DeviceID = uuid.NewString()
		viper.Set("main.deviceid", settings.Main.DeviceID)
		if err := viper.WriteConfig(); err != nil {
			log.Printf("warning: could not persist device id to config file: %v", err)
		}
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Defaults for every configuration parameter, defined in defaults.go.
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create one with defaults.
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting is a convenience accessor used by packages that need settings
// without holding a reference, e.g. the logging package.
func Setting() *Settings {
	return GetSettings()
}

// SetSettings replaces the settings singleton. Intended for tests.
func SetSettings(s *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = s
}
