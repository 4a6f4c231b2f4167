package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 {
	return &v
}

func TestBuildBins_MedianWidth(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(0), Upper: fptr(10), Prob: fptr(0.2)},
		{Lower: fptr(10), Upper: fptr(20), Prob: fptr(0.5)},
		{Lower: fptr(20), Upper: fptr(40), Prob: fptr(0.3)},
	}

	bins, width := BuildBins(ranges)
	assert.Equal(t, 10.0, width)
	require.Len(t, bins, 6)

	// Exactly one open-below and one open-above bin at the extremes
	assert.Nil(t, bins[0].Lower)
	require.NotNil(t, bins[0].Upper)
	assert.Equal(t, 0.0, *bins[0].Upper)
	assert.Nil(t, bins[len(bins)-1].Upper)
	require.NotNil(t, bins[len(bins)-1].Lower)
	assert.Equal(t, 40.0, *bins[len(bins)-1].Lower)

	// Contiguous and sorted ascending
	for i := 1; i < len(bins); i++ {
		require.NotNil(t, bins[i-1].Upper)
		require.NotNil(t, bins[i].Lower)
		assert.Equal(t, *bins[i-1].Upper, *bins[i].Lower, "bin %d not contiguous", i)
	}
}

func TestBuildBins_OpenRangesSmallMagnitude(t *testing.T) {
	// No finite widths at all: width falls back to the boundary magnitude
	ranges := []Range{
		{Lower: nil, Upper: fptr(3), Prob: fptr(0.4)},
		{Lower: fptr(3), Upper: nil, Prob: fptr(0.6)},
	}

	bins, width := BuildBins(ranges)
	assert.Equal(t, 0.25, width)
	require.Len(t, bins, 3)
	assert.Equal(t, 2.75, *bins[0].Upper)
	assert.Equal(t, 2.75, *bins[1].Lower)
	assert.Equal(t, 3.0, *bins[1].Upper)
	assert.Equal(t, 3.0, *bins[2].Lower)
}

func TestBuildBins_LargeMagnitudeFallback(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(100000), Upper: nil, Prob: fptr(1)},
	}

	bins, width := BuildBins(ranges)
	assert.Equal(t, 50000.0, width)
	require.Len(t, bins, 3)
	assert.Equal(t, 100000.0, *bins[0].Upper)
	assert.Equal(t, 150000.0, *bins[2].Lower)
}

func TestBuildBins_ExactGridAlignment(t *testing.T) {
	// Boundaries already on the grid must be reproduced exactly
	ranges := []Range{
		{Lower: fptr(100), Upper: fptr(200), Prob: fptr(1)},
	}

	bins, width := BuildBins(ranges)
	assert.Equal(t, 100.0, width)
	require.Len(t, bins, 3)
	assert.Equal(t, 100.0, *bins[1].Lower)
	assert.Equal(t, 200.0, *bins[1].Upper)
}

func TestBuildBins_NoFiniteBoundaries(t *testing.T) {
	ranges := []Range{
		{Lower: nil, Upper: nil, Prob: fptr(1)},
	}

	bins, _ := BuildBins(ranges)
	assert.Empty(t, bins)
}

func TestBuildBins_NoRanges(t *testing.T) {
	bins, width := BuildBins(nil)
	assert.Empty(t, bins)
	assert.Equal(t, 1.0, width)
}

func TestMidpoints(t *testing.T) {
	ranges := []Range{
		{Lower: fptr(100), Upper: fptr(200), Prob: fptr(1)},
	}
	bins, width := BuildBins(ranges)
	require.Len(t, bins, 3)

	mids := Midpoints(bins, width)
	assert.Equal(t, []float64{50, 150, 250}, mids)
}
