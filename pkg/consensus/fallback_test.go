package consensus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackEstimate_WeightedAverage(t *testing.T) {
	observations := map[string][]float64{
		"a": {0.3, 0.7},
		"b": {0.5, 0.5},
	}
	weights := map[string]float64{"a": 1, "b": 3}

	result := FallbackEstimate(observations, weights)
	require.Len(t, result.Samples, 1)
	assert.InDelta(t, 0.45, result.Samples[0][0], 1e-12)
	assert.InDelta(t, 0.55, result.Samples[0][1], 1e-12)
	assert.Empty(t, result.KappaMeans)
}

func TestFallbackEstimate_PlainMeanWithoutWeights(t *testing.T) {
	observations := map[string][]float64{
		"a": {0.3, 0.7},
		"b": {0.5, 0.5},
	}

	result := FallbackEstimate(observations, nil)
	require.Len(t, result.Samples, 1)
	assert.InDelta(t, 0.4, result.Samples[0][0], 1e-12)
	assert.InDelta(t, 0.6, result.Samples[0][1], 1e-12)
}

func TestFallbackEstimate_MalformedWeightsDegradeToMean(t *testing.T) {
	observations := map[string][]float64{
		"a": {0.3, 0.7},
		"b": {0.5, 0.5},
	}
	weights := map[string]float64{"a": math.NaN(), "b": 3}

	result := FallbackEstimate(observations, weights)
	require.Len(t, result.Samples, 1)
	assert.InDelta(t, 0.4, result.Samples[0][0], 1e-12)
	assert.InDelta(t, 0.6, result.Samples[0][1], 1e-12)
}

func TestFallbackEstimate_MissingWeightDefaultsToOne(t *testing.T) {
	observations := map[string][]float64{
		"a": {0.2, 0.8},
		"b": {0.6, 0.4},
	}
	weights := map[string]float64{"b": 1}

	result := FallbackEstimate(observations, weights)
	require.Len(t, result.Samples, 1)
	assert.InDelta(t, 0.4, result.Samples[0][0], 1e-12)
}

func TestFallbackEstimate_SingleSource(t *testing.T) {
	observations := map[string][]float64{
		"only": {0.1, 0.2, 0.7},
	}

	result := FallbackEstimate(observations, nil)
	require.Len(t, result.Samples, 1)
	assert.Equal(t, []float64{0.1, 0.2, 0.7}, result.Samples[0])
}

func TestFallbackEstimate_NoObservations(t *testing.T) {
	result := FallbackEstimate(map[string][]float64{}, nil)
	assert.Empty(t, result.Samples)
	assert.NotNil(t, result.KappaMeans)
}
