package leafnet

import (
	"testing"

	"github.com/DreamingVaishu/AgriShield-AI/internal/catalogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageProbabilities(t *testing.T) {
	avg, err := averageProbabilities([][]float32{
		{0.2, 0.8, 0.0},
		{0.4, 0.6, 1.0},
	})
	require.NoError(t, err)
	require.Len(t, avg, 3)
	assert.InDelta(t, 0.3, avg[0], 1e-6)
	assert.InDelta(t, 0.7, avg[1], 1e-6)
	assert.InDelta(t, 0.5, avg[2], 1e-6)
}

func TestAverageProbabilitiesSingleVector(t *testing.T) {
	avg, err := averageProbabilities([][]float32{{0.1, 0.9}})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.9}, avg)
}

func TestAverageProbabilitiesEmpty(t *testing.T) {
	_, err := averageProbabilities(nil)
	assert.Error(t, err)
}

func TestAverageProbabilitiesSizeMismatch(t *testing.T) {
	_, err := averageProbabilities([][]float32{
		{0.5, 0.5},
		{0.5, 0.25, 0.25},
	})
	assert.Error(t, err)
}

func TestPairLabelsAndConfidence(t *testing.T) {
	cat, err := catalogue.Load()
	require.NoError(t, err)

	probabilities := make([]float32, cat.Len())
	probabilities[0] = 0.05
	probabilities[2] = 0.91

	predictions, err := pairLabelsAndConfidence(cat, probabilities)
	require.NoError(t, err)
	require.Len(t, predictions, cat.Len())

	label, err := cat.ByIndex(2)
	require.NoError(t, err)
	assert.Equal(t, label.Name, predictions[2].Label.Name)
	assert.InDelta(t, 91.0, predictions[2].Confidence, 1e-4)
	assert.InDelta(t, 5.0, predictions[0].Confidence, 1e-4)
}

func TestPairLabelsAndConfidenceSizeMismatch(t *testing.T) {
	cat, err := catalogue.Load()
	require.NoError(t, err)

	_, err = pairLabelsAndConfidence(cat, make([]float32, cat.Len()-1))
	assert.Error(t, err)
}

func TestSortAndTrimResults(t *testing.T) {
	predictions := []Prediction{
		{Confidence: 10},
		{Confidence: 90},
		{Confidence: 50},
		{Confidence: 90},
		{Confidence: 30},
		{Confidence: 70},
	}

	sortResults(predictions)
	for i := 1; i < len(predictions); i++ {
		assert.LessOrEqual(t, predictions[i].Confidence, predictions[i-1].Confidence)
	}

	trimmed := trimResultsToMax(predictions, MaxRankedResults)
	assert.Len(t, trimmed, MaxRankedResults)
	assert.Equal(t, 90.0, trimmed[0].Confidence)
}
