package consensus

import "context"

// FitConfig holds the sampler settings for the hierarchical consensus model.
// It is passed explicitly into the fitter rather than living in package
// state.
type FitConfig struct {
	// Draws is the number of post-warmup samples per chain.
	Draws int
	// Tune is the number of warmup iterations used for step-size adaptation.
	Tune int
	// Chains is the number of independent chains.
	Chains int
	// TargetAccept is the acceptance rate targeted by step-size adaptation.
	TargetAccept float64
	// Seed fixes the sampler's random state; chain i derives its own seed
	// from Seed+i so reruns are reproducible.
	Seed uint64
	// MaxLeapfrog bounds the leapfrog trajectory length per proposal.
	MaxLeapfrog int
}

// DefaultFitConfig returns the sampler settings used when none are
// configured.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		Draws:        800,
		Tune:         800,
		Chains:       2,
		TargetAccept: 0.9,
		Seed:         1,
		MaxLeapfrog:  24,
	}
}

// FitResult is the output of a fit: posterior samples of the shared latent
// probability vector (one row per sample, one column per bin) and the
// posterior mean concentration per source. A fallback fit has a single row
// and no concentrations.
type FitResult struct {
	Samples    [][]float64
	KappaMeans map[string]float64
}

// Fitter produces posterior samples of the shared latent distribution from
// per-source observation vectors. The hierarchical sampler and the
// closed-form fallback estimator are interchangeable behind this interface;
// callers observe the same output shape from either.
type Fitter interface {
	Fit(ctx context.Context, observations map[string][]float64, weights map[string]float64) (*FitResult, error)
}
