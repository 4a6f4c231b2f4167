package sampler

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/marketpriors/consensus-go/pkg/consensus"
	"github.com/marketpriors/consensus-go/pkg/logging"
)

// Dual-averaging constants from the Hoffman-Gelman adaptation scheme.
const (
	daGamma = 0.05
	daT0    = 10.0
	daKappa = 0.75
)

// maxEnergyError is the Hamiltonian error beyond which a trajectory is
// treated as divergent.
const maxEnergyError = 1000.0

// HMC fits the hierarchical consensus model by Hamiltonian Monte Carlo with
// step size adapted by dual averaging toward the configured acceptance rate.
// It implements consensus.Fitter.
type HMC struct {
	logger *logging.Logger
	cfg    consensus.FitConfig
}

// Ensure HMC implements the Fitter interface.
var _ consensus.Fitter = (*HMC)(nil)

// New creates an HMC fitter with the given sampling configuration.
func New(logger *logging.Logger, cfg consensus.FitConfig) *HMC {
	return &HMC{logger: logger, cfg: DefaultsFor(cfg)}
}

// DefaultsFor fills unset fields of a FitConfig with the package defaults.
func DefaultsFor(cfg consensus.FitConfig) consensus.FitConfig {
	def := consensus.DefaultFitConfig()
	if cfg.Draws <= 0 {
		cfg.Draws = def.Draws
	}
	if cfg.Tune < 0 {
		cfg.Tune = def.Tune
	}
	if cfg.Chains <= 0 {
		cfg.Chains = def.Chains
	}
	if cfg.TargetAccept <= 0 || cfg.TargetAccept >= 1 {
		cfg.TargetAccept = def.TargetAccept
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.MaxLeapfrog <= 0 {
		cfg.MaxLeapfrog = def.MaxLeapfrog
	}
	return cfg
}

// Fit draws posterior samples of the shared latent probability vector and
// the per-source concentrations. Chains run sequentially with seeds derived
// from the configured seed, so a rerun with the same inputs reproduces the
// same samples.
func (h *HMC) Fit(ctx context.Context, observations map[string][]float64, weights map[string]float64) (*consensus.FitResult, error) {
	sources := make([]string, 0, len(observations))
	for name := range observations {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	m, err := newModel(sources, observations, weights)
	if err != nil {
		return nil, err
	}

	samples := make([][]float64, 0, h.cfg.Draws*h.cfg.Chains)
	kappaSums := make([]float64, m.s)
	for chain := 0; chain < h.cfg.Chains; chain++ {
		draws, err := h.runChain(ctx, m, h.cfg.Seed+uint64(chain))
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", chain, err)
		}
		for _, x := range draws {
			p, _ := simplexFromALR(x[:m.k-1])
			samples = append(samples, p)
			for s := 0; s < m.s; s++ {
				kappaSums[s] += math.Exp(x[m.k-1+s])
			}
		}
	}

	kappaMeans := make(map[string]float64, m.s)
	for i, source := range sources {
		kappaMeans[source] = kappaSums[i] / float64(len(samples))
	}
	h.logger.Debug("HMC fit complete",
		"sources", len(sources),
		"bins", m.k,
		"samples", len(samples))
	return &consensus.FitResult{Samples: samples, KappaMeans: kappaMeans}, nil
}

// runChain runs warmup plus sampling for one chain and returns the
// post-warmup draws in unconstrained space.
func (h *HMC) runChain(ctx context.Context, m *model, seed uint64) ([][]float64, error) {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	x := m.initialPoint(rng, src)
	lp, grad := m.logDensityGrad(x)
	if !isFinite(lp) {
		return nil, ErrNonFiniteInit
	}

	eps := h.reasonableStepSize(m, x, lp, grad, rng)
	mu := math.Log(10 * eps)
	logEpsBar := 0.0
	hBar := 0.0

	total := h.cfg.Tune + h.cfg.Draws
	draws := make([][]float64, 0, h.cfg.Draws)
	divergences := 0
	for iter := 1; iter <= total; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iter == h.cfg.Tune+1 && h.cfg.Tune > 0 {
			// Freeze the step size at its averaged value for sampling.
			eps = math.Exp(logEpsBar)
		}

		r := make([]float64, len(x))
		for i := range r {
			r[i] = rng.NormFloat64()
		}
		h0 := -lp + 0.5*floats.Dot(r, r)

		steps := 1 + rng.IntN(h.cfg.MaxLeapfrog)
		xProp, rProp, lpProp, gradProp := leapfrog(m, x, r, grad, eps, steps)
		hProp := -lpProp + 0.5*floats.Dot(rProp, rProp)

		dH := h0 - hProp
		diverged := math.IsNaN(dH) || dH < -maxEnergyError
		alpha := 0.0
		if !diverged {
			alpha = math.Min(1, math.Exp(dH))
		}
		if alpha > 0 && rng.Float64() < alpha {
			x, lp, grad = xProp, lpProp, gradProp
		}

		if iter <= h.cfg.Tune {
			frac := 1 / (float64(iter) + daT0)
			hBar = (1-frac)*hBar + frac*(h.cfg.TargetAccept-alpha)
			logEps := mu - math.Sqrt(float64(iter))/daGamma*hBar
			scale := math.Pow(float64(iter), -daKappa)
			logEpsBar = scale*logEps + (1-scale)*logEpsBar
			eps = math.Exp(logEps)
			continue
		}

		if diverged {
			divergences++
		}
		draw := make([]float64, len(x))
		copy(draw, x)
		draws = append(draws, draw)
	}

	if divergences*10 > len(draws) {
		return nil, fmt.Errorf("%w: %d of %d draws", ErrTooManyDivergences, divergences, len(draws))
	}
	return draws, nil
}

// initialPoint starts the simplex at the mean observation with jitter and
// each concentration at a draw from its prior.
func (m *model) initialPoint(rng *rand.Rand, src rand.Source) []float64 {
	x := make([]float64, m.dim())
	pbar := make([]float64, m.k)
	for _, logObs := range m.logObs {
		for j, lv := range logObs {
			pbar[j] += math.Exp(lv)
		}
	}
	floats.Scale(1/float64(m.s), pbar)
	theta := alrFromSimplex(pbar)
	for i, t := range theta {
		x[i] = t + 0.1*rng.NormFloat64()
	}
	for s := 0; s < m.s; s++ {
		prior := distuv.Exponential{Rate: m.rates[s], Src: src}
		x[m.k-1+s] = math.Log(prior.Rand())
	}
	return x
}

// leapfrog integrates Hamilton's equations for the given number of steps,
// returning the new position and momentum along with the density and
// gradient at the endpoint.
func leapfrog(m *model, x, r, grad []float64, eps float64, steps int) ([]float64, []float64, float64, []float64) {
	xn := make([]float64, len(x))
	copy(xn, x)
	rn := make([]float64, len(r))
	copy(rn, r)
	gn := make([]float64, len(grad))
	copy(gn, grad)

	var lp float64
	for i := 0; i < steps; i++ {
		floats.AddScaled(rn, eps/2, gn)
		floats.AddScaled(xn, eps, rn)
		lp, gn = m.logDensityGrad(xn)
		floats.AddScaled(rn, eps/2, gn)
	}
	return xn, rn, lp, gn
}

// reasonableStepSize doubles or halves an initial step size until a single
// leapfrog step crosses 50% acceptance, which puts dual averaging in a sane
// starting region.
func (h *HMC) reasonableStepSize(m *model, x []float64, lp float64, grad []float64, rng *rand.Rand) float64 {
	eps := 0.1
	r := make([]float64, len(x))
	for i := range r {
		r[i] = rng.NormFloat64()
	}
	h0 := -lp + 0.5*floats.Dot(r, r)

	logRatio := func(eps float64) float64 {
		_, rn, lpn, _ := leapfrog(m, x, r, grad, eps, 1)
		ratio := h0 - (-lpn + 0.5*floats.Dot(rn, rn))
		if math.IsNaN(ratio) {
			return math.Inf(-1)
		}
		return ratio
	}

	lr := logRatio(eps)
	dir := 1.0
	if lr <= math.Log(0.5) {
		dir = -1
	}
	for i := 0; i < 64; i++ {
		if dir*(lr-math.Log(0.5)) <= 0 {
			break
		}
		eps *= math.Pow(2, dir)
		if eps < 1e-10 || eps > 1e3 {
			break
		}
		lr = logRatio(eps)
	}
	return eps
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
