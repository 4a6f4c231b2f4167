package consensus

import "math"

// Weight clamp bounds: no source dominates by more than 3x, none is trusted
// at less than half the average.
const (
	minWeight = 0.5
	maxWeight = 3.0
)

// VolumeWeights derives per-source reliability weights from trading-volume
// metadata. Each reporting source gets log1p(volume) normalized by the mean
// across reporting sources and clamped to [0.5, 3.0]; sources without volume
// get 1.0. Weighting needs at least two sources with positive volume to be
// meaningful; below that a nil map is returned and every source carries
// uniform influence.
func VolumeWeights(meta map[string]SourceMeta, sources []string) map[string]float64 {
	if len(meta) == 0 {
		return nil
	}
	raw := make(map[string]float64)
	for _, source := range sources {
		entry, ok := meta[source]
		if !ok || entry.Volume == nil {
			continue
		}
		if vol := *entry.Volume; vol > 0 && !math.IsInf(vol, 0) && !math.IsNaN(vol) {
			raw[source] = math.Log1p(vol)
		}
	}
	if len(raw) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range raw {
		mean += v
	}
	mean /= float64(len(raw))
	if mean <= 0 {
		return nil
	}
	weights := make(map[string]float64, len(sources))
	for _, source := range sources {
		weight := 1.0
		if v, ok := raw[source]; ok {
			weight = math.Min(math.Max(v/mean, minWeight), maxWeight)
		}
		weights[source] = weight
	}
	return weights
}
