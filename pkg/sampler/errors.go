// Package sampler fits the hierarchical Dirichlet consensus model by
// Hamiltonian Monte Carlo.
package sampler

import "errors"

var (
	// ErrNonFiniteInit indicates that the model density was not finite at the
	// chain's starting point.
	ErrNonFiniteInit = errors.New("non-finite log density at initial point")
	// ErrTooManyDivergences indicates that too many post-warmup trajectories
	// diverged for the samples to be trusted.
	ErrTooManyDivergences = errors.New("too many divergent trajectories")
)
