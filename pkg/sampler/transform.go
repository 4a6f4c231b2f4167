package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// The latent simplex is sampled in additive-log-ratio space: theta has one
// fewer dimension than the simplex and the last simplex coordinate is pinned
// so the map is a bijection with Jacobian determinant prod_k p_k.

// simplexFromALR maps unconstrained theta (length k-1) to a probability
// vector p of length k, returning log p alongside for numerical work.
func simplexFromALR(theta []float64) (p, logp []float64) {
	k := len(theta) + 1
	t := make([]float64, k)
	copy(t, theta) // t[k-1] stays 0
	lse := floats.LogSumExp(t)
	p = make([]float64, k)
	logp = make([]float64, k)
	for i := range t {
		logp[i] = t[i] - lse
		p[i] = math.Exp(logp[i])
	}
	return p, logp
}

// alrFromSimplex inverts simplexFromALR. Every entry of p must be strictly
// positive.
func alrFromSimplex(p []float64) []float64 {
	k := len(p)
	theta := make([]float64, k-1)
	ref := math.Log(p[k-1])
	for i := 0; i < k-1; i++ {
		theta[i] = math.Log(p[i]) - ref
	}
	return theta
}
