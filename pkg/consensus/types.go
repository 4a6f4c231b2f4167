// Package consensus reconciles probability distributions reported by multiple
// prediction-market venues into a single posterior over a shared outcome space.
package consensus

// Range is a probability mass reported by one source over an interval of the
// outcome space. A nil Lower means unbounded below, a nil Upper unbounded
// above. Prob is nil when the source omitted or mangled the value.
type Range struct {
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
	Prob  *float64 `json:"prob"`
}

// Bin is one cell of the canonical partition of the outcome space. The first
// bin of a partition has a nil Lower, the last a nil Upper; together the bins
// cover the whole real line.
type Bin struct {
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
}

// SourceMeta carries optional per-source metadata used for reliability
// weighting.
type SourceMeta struct {
	Volume *float64 `json:"volume"`
}

// Snapshot is one point-in-time cross-source observation. It is consumed
// read-only; the computed posterior is attached by the document layer, never
// written back into the snapshot itself.
type Snapshot struct {
	Sources map[string][]Range
	Meta    map[string]SourceMeta
}

// Summary is a point estimate with its 10th/90th percentile credible band.
type Summary struct {
	Mean float64 `json:"mean"`
	P10  float64 `json:"p10"`
	P90  float64 `json:"p90"`
}

// BinSummary is the posterior summary for a single canonical bin.
type BinSummary struct {
	Lower    *float64 `json:"lower"`
	Upper    *float64 `json:"upper"`
	Midpoint float64  `json:"midpoint"`
	Mean     float64  `json:"mean"`
	P10      float64  `json:"p10"`
	P90      float64  `json:"p90"`
}

// ModelInfo describes how a posterior was obtained.
type ModelInfo struct {
	Kind          string             `json:"kind"`
	Sources       []string           `json:"sources"`
	Sampled       bool               `json:"sampled"`
	Quantiles     [2]float64         `json:"quantiles"`
	VolumeWeights map[string]float64 `json:"volume_weights,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Posterior is the consensus estimate for one snapshot.
type Posterior struct {
	Model    ModelInfo          `json:"model"`
	Kappa    map[string]float64 `json:"kappa"`
	Expected Summary            `json:"expected"`
	Bins     []BinSummary       `json:"bins"`
}

// ModelKindDirichlet identifies the Dirichlet-likelihood consensus model in
// posterior output.
const ModelKindDirichlet = "dirichlet"

// quantileLo and quantileHi are the credible-band percentiles echoed in every
// posterior's model block so downstream consumers do not hard-code them.
const (
	quantileLo = 0.1
	quantileHi = 0.9
)
