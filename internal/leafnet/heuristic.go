package leafnet

import (
	"image"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/DreamingVaishu/AgriShield-AI/internal/preprocess"
)

// heuristicPredict classifies a leaf from its color composition alone.
// The disease load (yellow plus brown pixel share) selects a band, the
// dominant discoloration selects a catalogue label inside the band, and
// the confidence is a clamped linear function of the load. Deterministic
// for a given image and never fails.
func (c *Classifier) heuristicPredict(img image.Image) *PredictionResult {
	stats := preprocess.MeasureColors(img)
	load := stats.DiseaseLoad()
	demo := c.Settings.Demo

	var keyword string
	var confidence float64
	switch {
	case load < demo.HealthyBand:
		keyword = "healthy"
		// Confidence grows as discoloration approaches zero.
		confidence = demo.MinConfidence +
			(demo.MaxConfidence-demo.MinConfidence)*(1-load/demo.HealthyBand)
	case load < demo.ModerateBand:
		if stats.YellowRatio >= stats.BrownRatio {
			keyword = "yellow"
		} else {
			keyword = "early blight"
		}
		confidence = demo.MinConfidence +
			(demo.MaxConfidence-demo.MinConfidence)*(load/(2*demo.ModerateBand))
	default:
		if stats.BrownRatio >= stats.YellowRatio {
			keyword = "late blight"
		} else {
			keyword = "rust"
		}
		confidence = demo.MinConfidence +
			(demo.MaxConfidence-demo.MinConfidence)*(load/(2*demo.ModerateBand))
	}
	confidence = clampBand(confidence, demo.MinConfidence, demo.MaxConfidence)

	top := c.labelForKeyword(keyword)
	ranked := c.rankedAlternates(top, confidence)

	c.Debug("heuristic: load=%.3f green=%.3f yellow=%.3f brown=%.3f -> %s (%.1f%%)",
		load, stats.GreenRatio, stats.YellowRatio, stats.BrownRatio, top.Name, confidence)

	return &PredictionResult{
		Top:      Prediction{Label: top, Confidence: confidence},
		Ranked:   ranked,
		DemoMode: true,
	}
}

// labelForKeyword resolves a heuristic keyword against the catalogue,
// degrading to the first catalogue entry so a label is always returned.
func (c *Classifier) labelForKeyword(keyword string) catalogue.DiseaseLabel {
	if label, ok := c.Catalogue.FindByKeyword(keyword); ok {
		return label
	}
	if label, ok := c.Catalogue.FindByKeyword("healthy"); ok {
		return label
	}
	label, _ := c.Catalogue.ByIndex(0)
	return label
}

// rankedAlternates builds a short descending ranked list around the top
// prediction, drawing alternates from the other heuristic keywords.
func (c *Classifier) rankedAlternates(top catalogue.DiseaseLabel, topConfidence float64) []Prediction {
	ranked := []Prediction{{Label: top, Confidence: topConfidence}}
	decay := 0.5
	for _, keyword := range []string{"healthy", "yellow", "early blight", "late blight", "rust"} {
		if len(ranked) >= MaxRankedResults {
			break
		}
		label, ok := c.Catalogue.FindByKeyword(keyword)
		if !ok || containsLabel(ranked, label) {
			continue
		}
		ranked = append(ranked, Prediction{Label: label, Confidence: topConfidence * decay})
		decay /= 2
	}
	sortResults(ranked)
	return trimResultsToMax(ranked, MaxRankedResults)
}

func containsLabel(predictions []Prediction, label catalogue.DiseaseLabel) bool {
	for _, p := range predictions {
		if p.Label.Name == label.Name {
			return true
		}
	}
	return false
}

func clampBand(v, low, high float64) float64 {
	switch {
	case v < low:
		return low
	case v > high:
		return high
	}
	return v
}
