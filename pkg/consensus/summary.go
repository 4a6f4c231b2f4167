package consensus

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize reduces a sample matrix to per-bin mean and credible band plus
// the distribution of the expected outcome value (each sample row dotted
// with the bin midpoints). A single-row matrix, as produced by the fallback
// estimator, yields bands that collapse onto the mean.
func Summarize(samples [][]float64, bins []Bin, width float64) (Summary, []BinSummary) {
	mids := Midpoints(bins, width)

	expected := make([]float64, len(samples))
	for i, row := range samples {
		expected[i] = floats.Dot(row, mids)
	}

	binSummaries := make([]BinSummary, len(bins))
	column := make([]float64, len(samples))
	for j, b := range bins {
		for i, row := range samples {
			column[i] = row[j]
		}
		mean, lo, hi := summarizeSeries(column)
		binSummaries[j] = BinSummary{
			Lower:    b.Lower,
			Upper:    b.Upper,
			Midpoint: mids[j],
			Mean:     mean,
			P10:      lo,
			P90:      hi,
		}
	}

	mean, lo, hi := summarizeSeries(expected)
	return Summary{Mean: mean, P10: lo, P90: hi}, binSummaries
}

// summarizeSeries reduces one sample series to its mean and credible band.
// Quantiles follow gonum's LinInterp convention, which can differ from other
// linear-interpolation definitions by a fraction of a sample at small n.
func summarizeSeries(values []float64) (mean, lo, hi float64) {
	mean = stat.Mean(values, nil)
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	lo = stat.Quantile(quantileLo, stat.LinInterp, sorted, nil)
	hi = stat.Quantile(quantileHi, stat.LinInterp, sorted, nil)
	return mean, lo, hi
}
