// validate.go: sanity checks applied to settings after loading.
package conf

import (
	"fmt"
	"net/url"
	"time"
)

// ValidateSettings checks loaded settings for values that would break the
// pipeline at runtime. It returns the first problem found.
func ValidateSettings(settings *Settings) error {
	if err := validateClassifierSettings(&settings.Classifier); err != nil {
		return err
	}
	if err := validateDemoSettings(&settings.Demo); err != nil {
		return err
	}
	if err := validateOutputSettings(&settings.Output); err != nil {
		return err
	}
	if err := validateRetentionSettings(&settings.Retention); err != nil {
		return err
	}
	if err := validateSyncSettings(&settings.Sync); err != nil {
		return err
	}

	normalized, err := NormalizeLocale(settings.Main.Locale)
	if err != nil {
		return err
	}
	settings.Main.Locale = normalized

	return nil
}

func validateClassifierSettings(s *ClassifierSettings) error {
	if s.InputSize <= 0 {
		return fmt.Errorf("classifier input size must be positive, got %d", s.InputSize)
	}
	if s.Threads < 0 {
		return fmt.Errorf("classifier threads must not be negative, got %d", s.Threads)
	}
	return nil
}

func validateDemoSettings(s *DemoSettings) error {
	if s.HealthyBand <= 0 || s.ModerateBand <= 0 {
		return fmt.Errorf("demo threshold bands must be positive, got %.3f and %.3f", s.HealthyBand, s.ModerateBand)
	}
	if s.HealthyBand >= s.ModerateBand {
		return fmt.Errorf("demo healthy band %.3f must be below moderate band %.3f", s.HealthyBand, s.ModerateBand)
	}
	if s.MinConfidence >= s.MaxConfidence {
		return fmt.Errorf("demo confidence range is inverted: %.1f..%.1f", s.MinConfidence, s.MaxConfidence)
	}
	if s.MinConfidence < 0 || s.MaxConfidence > 100 {
		return fmt.Errorf("demo confidence range must stay within 0..100, got %.1f..%.1f", s.MinConfidence, s.MaxConfidence)
	}
	return nil
}

func validateOutputSettings(s *OutputSettings) error {
	if !s.SQLite.Enabled && !s.MySQL.Enabled {
		return fmt.Errorf("no datastore enabled, enable output.sqlite or output.mysql")
	}
	if s.SQLite.Enabled && s.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must not be empty")
	}
	return nil
}

func validateRetentionSettings(s *RetentionSettings) error {
	if !s.Enabled {
		return nil
	}
	d, err := time.ParseDuration(s.MaxAge)
	if err != nil {
		return fmt.Errorf("retention.maxage is not a valid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("retention.maxage must be positive, got %s", s.MaxAge)
	}
	return nil
}

func validateSyncSettings(s *SyncSettings) error {
	if !s.Enabled {
		return nil
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("sync.url is not a valid URL: %q", s.URL)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("sync.interval must be a positive duration, got %s", s.Interval)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be a positive duration, got %s", s.Timeout)
	}
	return nil
}

// RetentionMaxAge returns the parsed retention duration. Callers should only
// use this after settings validation.
func (s *RetentionSettings) RetentionMaxAge() time.Duration {
	d, err := time.ParseDuration(s.MaxAge)
	if err != nil {
		return 0
	}
	return d
}
