package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"

	"github.com/marketpriors/consensus-go/pkg/consensus"
)

func testObservations() (sources []string, obs map[string][]float64) {
	sources = []string{"kalshi", "polymarket"}
	obs = map[string][]float64{
		"kalshi":     {0.2, 0.5, 0.3},
		"polymarket": {0.25, 0.45, 0.3},
	}
	return sources, obs
}

func TestSimplexFromALR(t *testing.T) {
	p, logp := simplexFromALR([]float64{0.5, -1.2})
	require.Len(t, p, 3)
	assert.InDelta(t, 1.0, floats.Sum(p), 1e-12)
	for i := range p {
		assert.Greater(t, p[i], 0.0)
		assert.InDelta(t, math.Log(p[i]), logp[i], 1e-12)
	}

	// Round trip
	theta := alrFromSimplex(p)
	assert.InDelta(t, 0.5, theta[0], 1e-12)
	assert.InDelta(t, -1.2, theta[1], 1e-12)
}

func TestModel_GradientMatchesFiniteDifference(t *testing.T) {
	sources, obs := testObservations()
	weights := map[string]float64{"kalshi": 1.3, "polymarket": 0.8}
	m, err := newModel(sources, obs, weights)
	require.NoError(t, err)
	require.Equal(t, 4, m.dim())

	x := []float64{0.3, -0.2, 3.0, 2.5}
	_, grad := m.logDensityGrad(x)

	const h = 1e-5
	for i := range x {
		hi := make([]float64, len(x))
		copy(hi, x)
		lo := make([]float64, len(x))
		copy(lo, x)
		hi[i] += h
		lo[i] -= h
		lpHi, _ := m.logDensityGrad(hi)
		lpLo, _ := m.logDensityGrad(lo)
		fd := (lpHi - lpLo) / (2 * h)
		assert.InDelta(t, fd, grad[i], 1e-3*(1+math.Abs(grad[i])), "component %d", i)
	}
}

func TestModel_DensityFiniteOnInterior(t *testing.T) {
	sources, obs := testObservations()
	m, err := newModel(sources, obs, nil)
	require.NoError(t, err)

	lp, grad := m.logDensityGrad([]float64{0, 0, math.Log(25), math.Log(25)})
	assert.True(t, isFinite(lp))
	for i, g := range grad {
		assert.True(t, isFinite(g), "gradient component %d", i)
	}
}

func TestModel_WeightRaisesPriorScale(t *testing.T) {
	sources, obs := testObservations()

	heavy, err := newModel(sources, obs, map[string]float64{"kalshi": 3.0, "polymarket": 1.0})
	require.NoError(t, err)
	uniform, err := newModel(sources, obs, nil)
	require.NoError(t, err)

	// A weight of 3 triples the expected concentration, i.e. a third of the
	// exponential rate
	assert.InDelta(t, uniform.rates[0]/3, heavy.rates[0], 1e-15)
	assert.Equal(t, uniform.rates[1], heavy.rates[1])
}

func TestNewModel_Validation(t *testing.T) {
	_, err := newModel(nil, nil, nil)
	assert.ErrorIs(t, err, consensus.ErrNoObservations)

	_, err = newModel([]string{"a", "b"}, map[string][]float64{
		"a": {0.5, 0.5},
		"b": {0.2, 0.3, 0.5},
	}, nil)
	assert.ErrorIs(t, err, consensus.ErrDimensionMismatch)

	_, err = newModel([]string{"a"}, map[string][]float64{
		"a": {1.0, 0.0},
	}, nil)
	assert.ErrorIs(t, err, consensus.ErrNoObservations)
}
