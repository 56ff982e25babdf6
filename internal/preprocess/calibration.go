// calibration.go: stored healthy-leaf color baseline used for background
// subtraction to reduce lighting bias between scans.
package preprocess

import (
	"image"
	"os"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"gopkg.in/yaml.v3"
)

// Calibration is the mean color profile of a known-healthy leaf frame.
// Channel means are stored in the 0..255 range.
type Calibration struct {
	Mean       [3]float64 `yaml:"mean"`
	CapturedAt time.Time  `yaml:"captured_at"`
}

// ComputeCalibration measures the mean RGB profile of a healthy-leaf frame.
func ComputeCalibration(img image.Image) Calibration {
	bounds := img.Bounds()
	total := float64(bounds.Dx() * bounds.Dy())
	cal := Calibration{CapturedAt: time.Now()}
	if total == 0 {
		return cal
	}

	var sum [3]float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum[0] += float64(r >> 8)
			sum[1] += float64(g >> 8)
			sum[2] += float64(b >> 8)
		}
	}
	for c := range sum {
		cal.Mean[c] = sum[c] / total
	}
	return cal
}

// SaveCalibration writes the calibration vector to a YAML file.
func SaveCalibration(path string, cal *Calibration) error {
	data, err := yaml.Marshal(cal)
	if err != nil {
		return errors.New(err).
			Component("preprocess").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: calibration data is not sensitive
		return errors.New(err).
			Component("preprocess").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}

// LoadCalibration reads a calibration vector from a YAML file.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from application settings
	if err != nil {
		return nil, errors.New(err).
			Component("preprocess").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	var cal Calibration
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, errors.New(err).
			Component("preprocess").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return &cal, nil
}

// ApplyCalibration subtracts the calibration baseline from a normalized
// tensor in place. The baseline is expressed as each channel's deviation from
// neutral gray, so a correctly lit frame is left nearly unchanged. Values are
// clamped back to the valid [-1, 1] range.
func ApplyCalibration(tensor []float32, cal *Calibration) {
	var delta [3]float32
	for c := range cal.Mean {
		delta[c] = float32(cal.Mean[c])/127.5 - 1.0
	}

	for i := 0; i < len(tensor); i += 3 {
		for c := 0; c < 3 && i+c < len(tensor); c++ {
			v := tensor[i+c] - delta[c]
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			tensor[i+c] = v
		}
	}
}
