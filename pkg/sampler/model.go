package sampler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"

	"github.com/marketpriors/consensus-go/pkg/consensus"
)

// kappaScaleBase is the prior mean concentration for a source of weight 1;
// the scale grows linearly with the reliability weight, floored at 0.1.
const (
	kappaScaleBase = 25.0
	minKappaWeight = 0.1
)

// model is the joint density of the hierarchical consensus model in
// unconstrained space.
//
// Generative form: p ~ Dirichlet(1,...,1) over k bins; per source s,
// kappa_s ~ Exponential(rate 1/(25*max(w_s, 0.1))) and the source's observed
// probability vector y_s ~ Dirichlet(kappa_s * p). The observation is a full
// simplex-valued vector, not counts, so the likelihood is the Dirichlet
// density evaluated at y_s.
//
// Parameters are theta (ALR coordinates of p, length k-1) followed by
// phi_s = log kappa_s per source. Log-Jacobians of both transforms are
// included so chains target the correct posterior.
type model struct {
	logObs [][]float64 // s x k, log of each source's observed vector
	rates  []float64   // exponential prior rate per source
	k, s   int
}

// newModel validates the observation set and precomputes what the density
// needs. Sources are taken in the given order; every vector must have the
// same length and strictly positive entries.
func newModel(sources []string, observations map[string][]float64, weights map[string]float64) (*model, error) {
	if len(sources) == 0 {
		return nil, consensus.ErrNoObservations
	}
	k := len(observations[sources[0]])
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bins, got %d", consensus.ErrNoObservations, k)
	}
	m := &model{
		logObs: make([][]float64, len(sources)),
		rates:  make([]float64, len(sources)),
		k:      k,
		s:      len(sources),
	}
	for i, source := range sources {
		obs := observations[source]
		if len(obs) != k {
			return nil, fmt.Errorf("%w: source %s has %d bins, want %d", consensus.ErrDimensionMismatch, source, len(obs), k)
		}
		logObs := make([]float64, k)
		for j, v := range obs {
			if v <= 0 {
				return nil, fmt.Errorf("%w: source %s has non-positive mass in bin %d", consensus.ErrNoObservations, source, j)
			}
			logObs[j] = math.Log(v)
		}
		m.logObs[i] = logObs

		weight := 1.0
		if w, ok := weights[source]; ok {
			weight = w
		}
		scale := kappaScaleBase * math.Max(weight, minKappaWeight)
		m.rates[i] = 1 / scale
	}
	return m, nil
}

// dim is the dimension of the unconstrained parameter vector.
func (m *model) dim() int {
	return m.k - 1 + m.s
}

// logDensityGrad evaluates the unnormalized log posterior density and its
// gradient at the unconstrained point x.
func (m *model) logDensityGrad(x []float64) (float64, []float64) {
	theta := x[:m.k-1]
	p, logp := simplexFromALR(theta)
	grad := make([]float64, len(x))

	// Dirichlet(1,...,1) prior on p is flat; the ALR Jacobian contributes
	// sum_k log p_k.
	lp := floats.Sum(logp)

	// Gradient with respect to p treated as free, projected through the
	// transform at the end. The Jacobian term gives 1/p_k.
	gp := make([]float64, m.k)
	for j := range gp {
		gp[j] = 1 / p[j]
	}

	for s := 0; s < m.s; s++ {
		phi := x[m.k-1+s]
		kappa := math.Exp(phi)
		rate := m.rates[s]

		// Exponential prior on kappa plus the log transform's Jacobian.
		lp += math.Log(rate) - rate*kappa + phi
		dphi := 1 - rate*kappa

		// Dirichlet(kappa*p) log density at the observed vector.
		lp += lgamma(kappa)
		dkappa := mathext.Digamma(kappa)
		for j := 0; j < m.k; j++ {
			a := kappa * p[j]
			lp += -lgamma(a) + (a-1)*m.logObs[s][j]
			dig := mathext.Digamma(a)
			dkappa += p[j] * (m.logObs[s][j] - dig)
			gp[j] += kappa * (m.logObs[s][j] - dig)
		}
		grad[m.k-1+s] = dphi + kappa*dkappa
	}

	// Project dL/dp through the softmax: dL/dtheta_i = p_i*(gp_i - <p,gp>).
	gbar := 0.0
	for j := range gp {
		gbar += p[j] * gp[j]
	}
	for i := 0; i < m.k-1; i++ {
		grad[i] = p[i] * (gp[i] - gbar)
	}
	return lp, grad
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
