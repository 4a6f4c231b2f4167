package consensus

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// finiteVal dereferences a boundary pointer, treating NaN and infinities the
// same as a missing boundary.
func finiteVal(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// inferDefaultWidth picks a representative bin width for a set of ranges.
// The median of the finite range widths is preferred; when every range is
// open-ended the width is chosen from the magnitude of the observed boundary
// values so the resulting partition stays at a tractable size.
func inferDefaultWidth(ranges []Range) float64 {
	var widths []float64
	var values []float64
	for _, r := range ranges {
		lo, loOK := finiteVal(r.Lower)
		hi, hiOK := finiteVal(r.Upper)
		if loOK {
			values = append(values, lo)
		}
		if hiOK {
			values = append(values, hi)
		}
		if !loOK || !hiOK {
			continue
		}
		if w := hi - lo; w > 0 {
			widths = append(widths, w)
		}
	}
	if len(widths) > 0 {
		sort.Float64s(widths)
		mid := len(widths) / 2
		if len(widths)%2 == 1 {
			return widths[mid]
		}
		return (widths[mid-1] + widths[mid]) / 2
	}
	if len(values) == 0 {
		return 1.0
	}
	maxAbs := 0.0
	for _, v := range values {
		if a := abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	switch {
	case maxAbs <= 5:
		return 0.25
	case maxAbs <= 20:
		return 1.0
	default:
		return 50000.0
	}
}

// BuildBins derives the canonical partition covering every range observed in
// one snapshot, along with the bin width used. The partition consists of one
// open-below bin, consecutive fixed-width bins, and one open-above bin. An
// open-ended range contributes a synthetic boundary one width inside its
// finite edge. When no finite boundary exists at all the returned slice is
// empty, signaling that no posterior can be computed.
//
// Grid edges are computed in decimal so that floor/ceil snapping and the bin
// walk produce exact multiples of the width instead of drifting under
// repeated float addition.
func BuildBins(ranges []Range) ([]Bin, float64) {
	width := inferDefaultWidth(ranges)
	var values []float64
	for _, r := range ranges {
		lo, loOK := finiteVal(r.Lower)
		hi, hiOK := finiteVal(r.Upper)
		if loOK {
			values = append(values, lo)
		}
		if hiOK {
			values = append(values, hi)
		}
		if !loOK && hiOK {
			values = append(values, hi-width)
		}
		if !hiOK && loOK {
			values = append(values, lo+width)
		}
	}
	if len(values) == 0 {
		return nil, width
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	w := decimal.NewFromFloat(width)
	start := decimal.NewFromFloat(minVal).Div(w).Floor().Mul(w)
	end := decimal.NewFromFloat(maxVal).Div(w).Ceil().Mul(w)

	startF := start.InexactFloat64()
	bins := []Bin{{Lower: nil, Upper: &startF}}
	for v := start; v.LessThan(end); v = v.Add(w) {
		lo := v.InexactFloat64()
		hi := v.Add(w).InexactFloat64()
		bins = append(bins, Bin{Lower: &lo, Upper: &hi})
	}
	endF := end.InexactFloat64()
	bins = append(bins, Bin{Lower: &endF, Upper: nil})
	return bins, width
}

// Midpoints returns a representative value per bin: the center for a closed
// bin, half a width inside the finite edge for the open extremes.
func Midpoints(bins []Bin, width float64) []float64 {
	mids := make([]float64, len(bins))
	for i, b := range bins {
		switch {
		case b.Lower != nil && b.Upper != nil:
			mids[i] = (*b.Lower + *b.Upper) / 2
		case b.Lower == nil && b.Upper != nil:
			mids[i] = *b.Upper - width/2
		case b.Upper == nil && b.Lower != nil:
			mids[i] = *b.Lower + width/2
		default:
			mids[i] = 0
		}
	}
	return mids
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
