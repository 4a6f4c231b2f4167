package consensus

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// massFloor is added to every bin before the final renormalization so that no
// source ever reports an exactly-zero probability; the Dirichlet likelihood
// is undefined at zero.
const massFloor = 1e-6

type normRange struct {
	lower *float64
	upper *float64
	prob  float64
}

// normalizeRanges drops ranges with missing or negative mass and rescales the
// remainder to sum to 1. A nil result means the source has no usable mass.
func normalizeRanges(ranges []Range) []normRange {
	var cleaned []normRange
	total := 0.0
	for _, r := range ranges {
		if r.Prob == nil || *r.Prob < 0 || math.IsNaN(*r.Prob) || math.IsInf(*r.Prob, 0) {
			continue
		}
		cleaned = append(cleaned, normRange{lower: r.Lower, upper: r.Upper, prob: *r.Prob})
		total += *r.Prob
	}
	if total <= 0 {
		return nil
	}
	for i := range cleaned {
		cleaned[i].prob /= total
	}
	return cleaned
}

// expandBounds resolves open interval edges to finite values one bin width
// outside the observed extremes. This truncation is a heuristic rather than a
// principled treatment of the tails, kept for compatibility with the upstream
// reporting convention: it stops unbounded ranges from leaking mass outside
// the canonical partition.
func expandBounds(lower, upper *float64, minBound, maxBound, width float64) (float64, float64) {
	lo, ok := finiteVal(lower)
	if !ok {
		lo = minBound - width
	}
	hi, ok := finiteVal(upper)
	if !ok {
		hi = maxBound + width
	}
	return lo, hi
}

// VectorizeSource re-expresses one source's ranges on the canonical bins,
// assigning each bin mass proportional to its geometric overlap with every
// range. The result sums to 1 and every entry is strictly positive. A nil
// result means the source contributes no usable mass for this snapshot.
func VectorizeSource(bins []Bin, ranges []Range, width float64) []float64 {
	normalized := normalizeRanges(ranges)
	if len(normalized) == 0 || len(bins) == 0 {
		return nil
	}

	minBound := 0.0
	for _, b := range bins {
		if b.Lower != nil {
			minBound = *b.Lower
			break
		}
	}
	maxBound := minBound + width
	for i := len(bins) - 1; i >= 0; i-- {
		if bins[i].Upper != nil {
			maxBound = *bins[i].Upper
			break
		}
	}

	totals := make([]float64, len(bins))
	for _, r := range normalized {
		srcLo, srcHi := expandBounds(r.lower, r.upper, minBound, maxBound, width)
		srcWidth := srcHi - srcLo
		if srcWidth <= 0 {
			continue
		}
		for i, b := range bins {
			dstLo, dstHi := expandBounds(b.Lower, b.Upper, minBound, maxBound, width)
			overlap := math.Min(srcHi, dstHi) - math.Max(srcLo, dstLo)
			if overlap > 0 {
				totals[i] += r.prob * (overlap / srcWidth)
			}
		}
	}

	total := floats.Sum(totals)
	if total <= 0 {
		return nil
	}
	floats.Scale(1/total, totals)
	floats.AddConst(massFloor, totals)
	floats.Scale(1/floats.Sum(totals), totals)
	return totals
}
