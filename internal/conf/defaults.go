// defaults.go: viper default values for every configuration parameter.
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets viper defaults for all configuration parameters.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main settings
	viper.SetDefault("main.name", "AgriShield")
	viper.SetDefault("main.locale", "en")
	viper.SetDefault("main.deviceid", "")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs")
	viper.SetDefault("main.log.maxsize", 10)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxage", 28)

	// Classifier settings
	viper.SetDefault("classifier.modelpath", "")
	viper.SetDefault("classifier.cataloguepath", "")
	viper.SetDefault("classifier.inputsize", 224)
	viper.SetDefault("classifier.usetta", true)
	viper.SetDefault("classifier.threads", 0)
	viper.SetDefault("classifier.debug", false)

	// Heuristic fallback thresholds, empirically tuned
	viper.SetDefault("demo.healthyband", 0.06)
	viper.SetDefault("demo.moderateband", 0.12)
	viper.SetDefault("demo.minconfidence", 50.0)
	viper.SetDefault("demo.maxconfidence", 100.0)

	// Calibration settings
	viper.SetDefault("calibration.enabled", false)
	viper.SetDefault("calibration.path", "calibration.yaml")

	// Location settings
	viper.SetDefault("location.latitude", 0.0)
	viper.SetDefault("location.longitude", 0.0)

	// Datastore settings
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "scans.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "agrishield")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "agrishield")

	// Retention settings, 90 days expressed as hours
	viper.SetDefault("retention.enabled", true)
	viper.SetDefault("retention.maxage", "2160h")

	// Sync settings
	viper.SetDefault("sync.enabled", false)
	viper.SetDefault("sync.url", "http://localhost:8080/api/sync")
	viper.SetDefault("sync.interval", "15m")
	viper.SetDefault("sync.timeout", "15s")
	viper.SetDefault("sync.debug", false)

	// Server settings
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
}
