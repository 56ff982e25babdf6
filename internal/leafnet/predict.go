package leafnet

import (
	"image"
	"sort"
	"time"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/DreamingVaishu/AgriShield-AI/internal/errors"
	"github.com/DreamingVaishu/AgriShield-AI/internal/preprocess"
	"github.com/tphakala/go-tflite"
)

// MaxRankedResults is how many ranked predictions a result carries.
const MaxRankedResults = 5

// Prediction pairs a catalogue label with a confidence score on a
// 0-100 scale.
type Prediction struct {
	Label      catalogue.DiseaseLabel
	Confidence float64
}

// PredictionResult is the outcome of classifying a single leaf photo.
type PredictionResult struct {
	Top            Prediction
	Ranked         []Prediction
	DemoMode       bool
	ProcessingTime time.Duration
}

// Predict classifies a decoded leaf image. In demo mode the color
// heuristic runs instead of the model; model inference failures do not
// propagate, they degrade the single call to the heuristic as well.
func (c *Classifier) Predict(img image.Image) (*PredictionResult, error) {
	if img == nil {
		return nil, errors.Newf("nil image").
			Component("leafnet").
			Category(errors.CategoryValidation).
			Build()
	}

	start := time.Now()

	if c.demoMode {
		result := c.heuristicPredict(img)
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	probabilities, err := c.inferProbabilities(img)
	if err != nil {
		getLogger().Warn("Model inference failed, using heuristic for this image", "error", err)
		result := c.heuristicPredict(img)
		result.ProcessingTime = time.Since(start)
		return result, nil
	}

	ranked, err := pairLabelsAndConfidence(c.Catalogue, probabilities)
	if err != nil {
		return nil, err
	}
	sortResults(ranked)
	ranked = trimResultsToMax(ranked, MaxRankedResults)

	result := &PredictionResult{
		Top:            ranked[0],
		Ranked:         ranked,
		DemoMode:       false,
		ProcessingTime: time.Since(start),
	}
	c.Debug("prediction: %s (%.1f%%) in %v", result.Top.Label.Name, result.Top.Confidence, result.ProcessingTime)
	return result, nil
}

// inferProbabilities runs the model on the image, averaging over the
// test-time augmentation variants when TTA is enabled.
func (c *Classifier) inferProbabilities(img image.Image) ([]float32, error) {
	variants := []image.Image{img}
	if c.Settings.Classifier.UseTTA {
		variants = preprocess.TTAVariants(img)
	}

	vectors := make([][]float32, 0, len(variants))
	for _, variant := range variants {
		tensor := preprocess.ToTensor(variant, c.Settings.Classifier.InputSize)
		if c.calibration != nil {
			preprocess.ApplyCalibration(tensor, c.calibration)
		}
		probs, err := c.invoke(tensor)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, probs)
	}

	return averageProbabilities(vectors)
}

// invoke feeds one tensor through the interpreter. Serialized because the
// interpreter is not safe for concurrent use.
func (c *Classifier) invoke(tensor []float32) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	input := c.interpreter.GetInputTensor(0)
	if input == nil {
		return nil, errors.Newf("cannot get input tensor").
			Component("leafnet").
			Category(errors.CategoryModelInit).
			Build()
	}
	copy(input.Float32s(), tensor)

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.Newf("inference failed: %v", status).
			Component("leafnet").
			Category(errors.CategoryGeneric).
			Build()
	}

	output := c.interpreter.GetOutputTensor(0)
	if output == nil {
		return nil, errors.Newf("cannot get output tensor").
			Component("leafnet").
			Category(errors.CategoryGeneric).
			Build()
	}

	probs := make([]float32, output.Dim(output.NumDims()-1))
	copy(probs, output.Float32s())
	return probs, nil
}

// pairLabelsAndConfidence pairs each catalogue label with the model
// probability at the same index, scaled to 0-100.
func pairLabelsAndConfidence(cat *catalogue.Catalogue, probabilities []float32) ([]Prediction, error) {
	if len(probabilities) != cat.Len() {
		return nil, errors.Newf("mismatched probability vector: %d values for %d labels",
			len(probabilities), cat.Len()).
			Component("leafnet").
			Category(errors.CategoryValidation).
			Build()
	}

	predictions := make([]Prediction, len(probabilities))
	for i, p := range probabilities {
		label, _ := cat.ByIndex(i)
		predictions[i] = Prediction{
			Label:      label,
			Confidence: clampConfidence(float64(p) * 100),
		}
	}
	return predictions, nil
}

// sortResults orders predictions by descending confidence. Ties keep the
// catalogue order.
func sortResults(predictions []Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
}

// trimResultsToMax caps the ranked list at maxResults entries.
func trimResultsToMax(predictions []Prediction, maxResults int) []Prediction {
	if len(predictions) > maxResults {
		return predictions[:maxResults]
	}
	return predictions
}

// averageProbabilities averages probability vectors elementwise.
func averageProbabilities(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errors.Newf("no probability vectors to average").
			Component("leafnet").
			Category(errors.CategoryValidation).
			Build()
	}

	size := len(vectors[0])
	sum := make([]float64, size)
	for _, vec := range vectors {
		if len(vec) != size {
			return nil, errors.Newf("probability vector size mismatch: %d != %d", len(vec), size).
				Component("leafnet").
				Category(errors.CategoryValidation).
				Build()
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}

	avg := make([]float32, size)
	for i := range sum {
		avg[i] = float32(sum[i] / float64(len(vectors)))
	}
	return avg, nil
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
