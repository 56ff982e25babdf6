// Package leafnet runs the leaf disease classifier: a TFLite image model
// when one is configured, or a deterministic color-heuristic fallback when
// no model could be loaded (demo mode).
package leafnet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/DreamingVaishu/AgriShield-AI/internal/conf"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/logging"
	"github.com/DreamingVaishu/AgriShield-AI/internal/preprocess"
	"github.com/tphakala/go-tflite"
)

var serviceLogger *slog.Logger

func getLogger() *slog.Logger {
	if serviceLogger == nil {
		serviceLogger = logging.ForService("leafnet")
	}
	if serviceLogger == nil {
		serviceLogger = slog.Default()
	}
	return serviceLogger
}

// Classifier wraps the model interpreter, the label catalogue and the
// optional calibration vector. One prediction runs at a time.
type Classifier struct {
	Settings    *conf.Settings
	Catalogue   *catalogue.Catalogue
	interpreter *tflite.Interpreter
	calibration *preprocess.Calibration
	demoMode    bool
	mu          sync.Mutex
}

// New initializes a classifier. A missing or unloadable model is not fatal:
// the classifier degrades to the deterministic heuristic (demo mode).
func New(settings *conf.Settings, cat *catalogue.Catalogue) (*Classifier, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.Newf("classifier requires a non-empty catalogue").
			Component("leafnet").
			Category(errors.CategoryModelInit).
			Build()
	}

	c := &Classifier{
		Settings:  settings,
		Catalogue: cat,
	}

	if err := c.initializeModel(); err != nil {
		getLogger().Warn("Model unavailable, falling back to heuristic classifier",
			"model_path", settings.Classifier.ModelPath, "error", err)
		c.demoMode = true
	}

	c.loadCalibration()

	return c, nil
}

// initializeModel loads and initializes the TFLite model.
func (c *Classifier) initializeModel() error {
	start := time.Now()
	modelPath := c.Settings.Classifier.ModelPath
	if modelPath == "" {
		return errors.Newf("no model path configured").
			Component("leafnet").
			Category(errors.CategoryModelLoad).
			Build()
	}

	modelPath = expandPath(modelPath)
	modelData, err := os.ReadFile(modelPath) //nolint:gosec // G304: modelPath is from application settings
	if err != nil {
		return errors.New(err).
			Component("leafnet").
			Category(errors.CategoryModelLoad).
			Context("path", modelPath).
			Timing("model-read", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return errors.Newf("cannot load TensorFlow Lite model").
			Component("leafnet").
			Category(errors.CategoryModelInit).
			Context("model_size_mb", len(modelData)/1024/1024).
			Build()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(c.determineThreadCount())

	c.interpreter = tflite.NewInterpreter(model, options)
	if c.interpreter == nil {
		return errors.Newf("cannot create interpreter").
			Component("leafnet").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := c.interpreter.AllocateTensors(); status != tflite.OK {
		return errors.Newf("tensor allocation failed: %v", status).
			Component("leafnet").
			Category(errors.CategoryModelInit).
			Build()
	}

	if err := c.validateModelAndLabels(); err != nil {
		c.interpreter.Delete()
		c.interpreter = nil
		return err
	}

	// The interpreter keeps its own copy of the model data.
	runtime.GC()

	getLogger().Info("Leaf disease model initialized",
		"model", filepath.Base(modelPath),
		"labels", c.Catalogue.Len(),
		"load_ms", time.Since(start).Milliseconds())
	return nil
}

// validateModelAndLabels checks the model output size against the catalogue.
func (c *Classifier) validateModelAndLabels() error {
	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return errors.Newf("cannot get output tensor from model").
			Component("leafnet").
			Category(errors.CategoryValidation).
			Build()
	}

	modelOutputSize := outputTensor.Dim(outputTensor.NumDims() - 1)
	if modelOutputSize != c.Catalogue.Len() {
		return errors.Newf("label count mismatch: model outputs %d classes but catalogue has %d labels",
			modelOutputSize, c.Catalogue.Len()).
			Component("leafnet").
			Category(errors.CategoryValidation).
			Context("expected_labels", modelOutputSize).
			Context("actual_labels", c.Catalogue.Len()).
			Build()
	}
	return nil
}

// loadCalibration loads the stored healthy-leaf baseline if enabled. A
// missing calibration file only disables background subtraction.
func (c *Classifier) loadCalibration() {
	if !c.Settings.Calibration.Enabled {
		return
	}
	cal, err := preprocess.LoadCalibration(c.Settings.Calibration.Path)
	if err != nil {
		getLogger().Warn("Calibration enabled but baseline could not be loaded",
			"path", c.Settings.Calibration.Path, "error", err)
		return
	}
	c.calibration = cal
	getLogger().Info("Calibration baseline loaded",
		"path", c.Settings.Calibration.Path,
		"captured_at", cal.CapturedAt)
}

// determineThreadCount bounds the configured thread count by the CPU count.
func (c *Classifier) determineThreadCount() int {
	systemCPUCount := runtime.NumCPU()
	configured := c.Settings.Classifier.Threads
	if configured <= 0 || configured > systemCPUCount {
		return systemCPUCount
	}
	return configured
}

// DemoMode reports whether the classifier runs the heuristic fallback.
func (c *Classifier) DemoMode() bool {
	return c.demoMode
}

// Delete releases interpreter resources.
func (c *Classifier) Delete() {
	if c.interpreter != nil {
		c.interpreter.Delete()
		c.interpreter = nil
	}
}

// Debug prints debug messages if classifier debug mode is enabled.
func (c *Classifier) Debug(format string, v ...any) {
	if c.Settings.Classifier.Debug {
		getLogger().Debug(fmt.Sprintf(format, v...))
	}
}

// expandPath expands environment variables and a leading ~ in a path.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
