package consensus

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/marketpriors/consensus-go/pkg/logging"
	"github.com/marketpriors/consensus-go/pkg/metrics"
)

// Pipeline runs the per-snapshot reconciliation: canonical binning, source
// vectorization, reliability weighting, posterior fit (or fallback) and
// summarization. A nil fitter forces the fallback path for every snapshot.
type Pipeline struct {
	logger *logging.Logger
	fitter Fitter
}

// NewPipeline creates a pipeline using the given fitter for multi-source
// snapshots. Pass a nil fitter to always use the fallback estimator.
func NewPipeline(logger *logging.Logger, fitter Fitter) *Pipeline {
	return &Pipeline{logger: logger, fitter: fitter}
}

// BuildPosterior computes the consensus posterior for one snapshot. It
// returns nil when no canonical bins can be derived or no source contributes
// usable mass. All failures are local to the snapshot: a sampler error is
// recorded in the model block and the fallback estimate is substituted, never
// propagated to the caller.
func (p *Pipeline) BuildPosterior(ctx context.Context, snap Snapshot) *Posterior {
	var allRanges []Range
	for _, ranges := range snap.Sources {
		allRanges = append(allRanges, ranges...)
	}
	bins, width := BuildBins(allRanges)
	if len(bins) == 0 {
		p.logger.Debug("No finite boundaries in snapshot, skipping")
		metrics.RecordSnapshot(metrics.OutcomeNull)
		return nil
	}

	sourceNames := make([]string, 0, len(snap.Sources))
	for name := range snap.Sources {
		sourceNames = append(sourceNames, name)
	}
	sort.Strings(sourceNames)

	observations := make(map[string][]float64)
	usable := make([]string, 0, len(sourceNames))
	for _, name := range sourceNames {
		vec := VectorizeSource(bins, snap.Sources[name], width)
		if vec == nil {
			p.logger.Debug("Dropping source with no usable mass", "source", name)
			metrics.RecordDroppedSource()
			continue
		}
		observations[name] = vec
		usable = append(usable, name)
	}
	if len(usable) == 0 {
		metrics.RecordSnapshot(metrics.OutcomeNull)
		return nil
	}

	weights := VolumeWeights(snap.Meta, usable)

	var (
		result     *FitResult
		sampled    bool
		modelError string
	)
	switch {
	case p.fitter == nil:
		result = FallbackEstimate(observations, weights)
		metrics.RecordFallback(metrics.FallbackDisabled)
	case len(usable) == 1:
		result = FallbackEstimate(observations, weights)
		metrics.RecordFallback(metrics.FallbackSingleSource)
	default:
		start := time.Now()
		fitted, err := p.fitter.Fit(ctx, observations, weights)
		metrics.RecordFit(time.Since(start))
		if err != nil {
			modelError = fmt.Sprintf("%v", err)
			p.logger.Warn("Sampler failed, using fallback estimate", "error", err)
			metrics.RecordFallback(metrics.FallbackSamplerError)
			result = FallbackEstimate(observations, weights)
		} else {
			result = fitted
			sampled = true
		}
	}

	expected, binSummaries := Summarize(result.Samples, bins, width)

	model := ModelInfo{
		Kind:          ModelKindDirichlet,
		Sources:       usable,
		Sampled:       sampled,
		Quantiles:     [2]float64{quantileLo, quantileHi},
		VolumeWeights: weights,
		Error:         modelError,
	}
	if sampled {
		metrics.RecordSnapshot(metrics.OutcomeSampled)
	} else {
		metrics.RecordSnapshot(metrics.OutcomeFallback)
	}

	kappa := result.KappaMeans
	if kappa == nil {
		kappa = map[string]float64{}
	}
	return &Posterior{
		Model:    model,
		Kappa:    kappa,
		Expected: expected,
		Bins:     binSummaries,
	}
}
