package consensus

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// FallbackEstimate computes the deterministic posterior substitute used when
// sampling is skipped or fails: the reliability-weighted average of the
// source vectors, or the plain mean when weights are absent or malformed.
// The result is a single-row sample matrix so downstream summarization is
// uniform with the sampled path; its credible intervals collapse to the
// point estimate.
func FallbackEstimate(observations map[string][]float64, weights map[string]float64) *FitResult {
	sources := sortedKeys(observations)
	if len(sources) == 0 {
		return &FitResult{Samples: nil, KappaMeans: map[string]float64{}}
	}
	k := len(observations[sources[0]])
	mean := make([]float64, k)

	if len(weights) > 0 {
		weightVals := make([]float64, len(sources))
		for i, source := range sources {
			weightVals[i] = 1.0
			if w, ok := weights[source]; ok {
				weightVals[i] = w
			}
		}
		if weightsUsable(weightVals) {
			total := floats.Sum(weightVals)
			for i, source := range sources {
				floats.AddScaled(mean, weightVals[i]/total, observations[source])
			}
			return &FitResult{Samples: [][]float64{mean}, KappaMeans: map[string]float64{}}
		}
	}

	for _, source := range sources {
		floats.Add(mean, observations[source])
	}
	floats.Scale(1/float64(len(sources)), mean)
	return &FitResult{Samples: [][]float64{mean}, KappaMeans: map[string]float64{}}
}

func weightsUsable(weights []float64) bool {
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return floats.Sum(weights) > 0
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
