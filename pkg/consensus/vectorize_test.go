package consensus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"
)

func TestVectorizeSource_MassConservedForAlignedRange(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(100), Upper: fptr(200), Prob: fptr(1.0)},
	}
	bins, width := BuildBins(ranges)
	require.Len(t, bins, 3)

	vec := VectorizeSource(bins, ranges, width)
	require.Len(t, vec, 3)

	// All mass lands in the aligned bin, up to the positivity floor
	assert.InDelta(t, 1.0, vec[1], 1e-5)
	assert.InDelta(t, 1.0, floats.Sum(vec), 1e-9)
	for i, v := range vec {
		assert.Greater(t, v, 0.0, "bin %d must be strictly positive", i)
	}
}

func TestVectorizeSource_SplitAcrossBins(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(-50), Upper: fptr(50), Prob: fptr(1.0)},
	}
	bins, width := BuildBins(ranges)
	require.Len(t, bins, 4)

	vec := VectorizeSource(bins, ranges, width)
	require.Len(t, vec, 4)

	// The range straddles the two middle bins equally
	assert.InDelta(t, 0.5, vec[1], 1e-5)
	assert.InDelta(t, 0.5, vec[2], 1e-5)
	assert.InDelta(t, 1.0, floats.Sum(vec), 1e-9)
}

func TestVectorizeSource_OpenRangeExtendedOneWidth(t *testing.T) {
	ranges := []Range{
		{Lower: nil, Upper: fptr(0), Prob: fptr(0.3)},
		{Lower: fptr(0), Upper: nil, Prob: fptr(0.7)},
	}
	bins, width := BuildBins(ranges)
	require.Len(t, bins, 4)

	vec := VectorizeSource(bins, ranges, width)
	require.Len(t, vec, 4)
	assert.InDelta(t, 1.0, floats.Sum(vec), 1e-9)

	// Mass below/above the split must match the reported ranges
	below := vec[0] + vec[1]
	above := vec[2] + vec[3]
	assert.InDelta(t, 0.3, below, 1e-4)
	assert.InDelta(t, 0.7, above, 1e-4)
}

func TestVectorizeSource_DropsNegativeAndMissingProb(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(0), Upper: fptr(10), Prob: fptr(-1)},
		{Lower: fptr(0), Upper: fptr(10), Prob: nil},
		{Lower: fptr(10), Upper: fptr(20), Prob: fptr(0.5)},
	}
	bins, width := BuildBins(ranges)

	vec := VectorizeSource(bins, ranges, width)
	require.NotNil(t, vec)
	assert.InDelta(t, 1.0, floats.Sum(vec), 1e-9)

	// Only the surviving range carries mass: it renormalizes to 1 and sits
	// fully inside the 10..20 bin
	var best int
	for i := range vec {
		if vec[i] > vec[best] {
			best = i
		}
	}
	require.NotNil(t, bins[best].Lower)
	assert.Equal(t, 10.0, *bins[best].Lower)
	assert.InDelta(t, 1.0, vec[best], 1e-5)
}

func TestVectorizeSource_ZeroSumIsUnusable(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(0), Upper: fptr(10), Prob: fptr(0)},
	}
	bins, width := BuildBins(ranges)
	require.NotEmpty(t, bins)

	vec := VectorizeSource(bins, ranges, width)
	assert.Nil(t, vec)
}

func TestVectorizeSource_ZeroWidthRangeIsSkipped(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(5), Upper: fptr(5), Prob: fptr(1.0)},
	}
	bins, width := BuildBins(ranges)
	require.NotEmpty(t, bins)

	// The only range resolves to zero width, so the source is unusable
	vec := VectorizeSource(bins, ranges, width)
	assert.Nil(t, vec)
}

func TestVectorizeSource_NonFiniteProbDropped(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(0), Upper: fptr(10), Prob: fptr(math.NaN())},
		{Lower: fptr(0), Upper: fptr(10), Prob: fptr(math.Inf(1))},
	}
	bins, width := BuildBins(ranges)

	vec := VectorizeSource(bins, ranges, width)
	assert.Nil(t, vec)
}
