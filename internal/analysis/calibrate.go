package analysis

import (
	"fmt"

	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/preprocess"
)

// Calibrate captures a healthy-leaf baseline from a reference photo and
// stores it for background subtraction on later scans.
func Calibrate(settings *conf.Settings, imagePath string) error {
	img, err := preprocess.DecodeFile(imagePath)
	if err != nil {
		return err
	}

	cal := preprocess.ComputeCalibration(img)
	if err := preprocess.SaveCalibration(settings.Calibration.Path, &cal); err != nil {
		return err
	}

	getLogger().Info("Calibration baseline saved",
		"path", settings.Calibration.Path,
		"mean_r", cal.Mean[0], "mean_g", cal.Mean[1], "mean_b", cal.Mean[2])
	fmt.Printf("Calibration saved to %s\n", settings.Calibration.Path)
	return nil
}
