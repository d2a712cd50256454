// Package engine computes verification scores from pair collections.
//
// A collection with a baseline is scored twice, once per component. A
// baseline that was supplied but holds no pairs yields only a zero
// sample size, so reporting can tell it from a missing baseline.
//
// Thresholds condition the sample for error scores (only pairs whose
// observation satisfies the threshold are scored) and define the event for
// contingency, dichotomous and Brier scores. Probability thresholds are
// resolved to quantile thresholds against the collection's climatology.
package engine

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

// Engine computes a fixed set of metrics. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	metrics []Metric
}

// New returns an engine for metrics, or for every metric when none are
// given.
func New(metrics ...Metric) *Engine {
	if len(metrics) == 0 {
		metrics = AllMetrics
	}
	return &Engine{metrics: slices.Clone(metrics)}
}

// Metrics returns the configured metrics.
func (e *Engine) Metrics() []Metric { return slices.Clone(e.metrics) }

// EvaluateSingleValued scores scalar pairs at each threshold. No
// thresholds means AllData.
func (e *Engine) EvaluateSingleValued(c pairs.Collection[pairs.SingleValuedPair], w output.TimeWindow, thresholds []domain.Threshold) ([]output.Output, error) {
	resolved, err := ResolveThresholds(thresholds, c.Climatology())
	if err != nil {
		return nil, err
	}
	return evaluate(e.metrics, c, w, resolved, always[pairs.SingleValuedPair](scoreSingleValued))
}

// EvaluateEnsemble scores ensemble pairs at each threshold. Error scores
// use the ensemble mean as the prediction.
func (e *Engine) EvaluateEnsemble(c pairs.Collection[pairs.EnsemblePair], w output.TimeWindow, thresholds []domain.Threshold) ([]output.Output, error) {
	resolved, err := ResolveThresholds(thresholds, c.Climatology())
	if err != nil {
		return nil, err
	}
	return evaluate(e.metrics, c, w, resolved, always[pairs.EnsemblePair](scoreEnsemble))
}

// EvaluateCategorical scores category pairs. Categories are already
// events, so every output is keyed by AllData. Main and baseline are each
// tabulated with their own category count.
func (e *Engine) EvaluateCategorical(c pairs.Collection[pairs.CategoryPair], w output.TimeWindow) ([]output.Output, error) {
	return evaluate(e.metrics, c, w, []domain.Threshold{domain.AllData},
		func(comp pairs.Collection[pairs.CategoryPair]) scoreFunc[pairs.CategoryPair] {
			categories := comp.Categories()
			return func(m Metric, ps []pairs.CategoryPair, _ domain.Threshold, meta output.Metadata) (output.Output, error) {
				return scoreCategorical(m, ps, categories, meta)
			}
		})
}

type scoreFunc[P pairs.Pair] func(m Metric, ps []P, th domain.Threshold, meta output.Metadata) (output.Output, error)

// scorerFor picks the score function for one component collection.
type scorerFor[P pairs.Pair] func(pairs.Collection[P]) scoreFunc[P]

func always[P pairs.Pair](f scoreFunc[P]) scorerFor[P] {
	return func(pairs.Collection[P]) scoreFunc[P] { return f }
}

// evaluate scores main and, when a baseline was supplied, the baseline. A
// supplied but empty baseline still reports a sample size of zero.
func evaluate[P pairs.Pair](metrics []Metric, c pairs.Collection[P], w output.TimeWindow, thresholds []domain.Threshold, scorer scorerFor[P]) ([]output.Output, error) {
	type component struct {
		name output.Component
		data pairs.Collection[P]
	}
	components := []component{{output.ComponentMain, c}}
	if b, ok := c.BaselineCollection(); ok {
		components = append(components, component{output.ComponentBaseline, b})
	}

	var outs []output.Output
	for _, comp := range components {
		ps := comp.data.Main()
		score := scorer(comp.data)
		for _, th := range thresholds {
			for _, m := range metrics {
				if !m.Supports(c.Kind()) {
					continue
				}
				meta := output.Metadata{
					Input:     comp.data.Metadata(),
					Metric:    string(m),
					Component: comp.name,
					Window:    w,
					Threshold: th,
				}
				o, err := score(m, ps, th, meta)
				if err != nil {
					return nil, fmt.Errorf("%s %s at %s: %w", comp.name, m, th, err)
				}
				if o != nil {
					outs = append(outs, o)
				}
			}
		}
	}
	return outs, nil
}

// ResolveThresholds fills in the value of probability thresholds from the
// empirical quantiles of the climatology and drops duplicates. An empty
// list resolves to AllData.
func ResolveThresholds(thresholds []domain.Threshold, clim pairs.Climatology) ([]domain.Threshold, error) {
	if len(thresholds) == 0 {
		return []domain.Threshold{domain.AllData}, nil
	}
	var sorted []float64
	out := make([]domain.Threshold, 0, len(thresholds))
	seen := make(map[domain.Threshold]bool)
	for _, th := range thresholds {
		if !th.IsValid() {
			return nil, domain.Invalidf("threshold %s", th)
		}
		if _, ok := th.Value(); !ok {
			if sorted == nil {
				sorted = clim.All()
				if len(sorted) == 0 {
					return nil, domain.Insufficientf("threshold %s needs climatology to resolve", th)
				}
				slices.Sort(sorted)
			}
			p, _ := th.Probability()
			resolved, err := th.WithValue(stat.Quantile(p.Float64(), stat.Empirical, sorted, nil))
			if err != nil {
				return nil, err
			}
			th = resolved
		}
		if !seen[th] {
			seen[th] = true
			out = append(out, th)
		}
	}
	return out, nil
}

func sampleSize(n int, meta output.Metadata) output.Output {
	meta.SampleSize = n
	return output.NewScalarOutput(float64(n), meta)
}

// continuous computes the error scores over an already conditioned sample.
// It returns nil when the sample is empty.
func continuous(m Metric, obs, pred []float64, meta output.Metadata) output.Output {
	if m == SampleSize {
		return sampleSize(len(obs), meta)
	}
	if len(obs) == 0 {
		return nil
	}
	meta.SampleSize = len(obs)
	switch m {
	case MeanError:
		return output.NewScalarOutput(meanError(obs, pred), meta)
	case MeanAbsoluteError:
		return output.NewScalarOutput(meanAbsoluteError(obs, pred), meta)
	case RootMeanSquareError:
		return output.NewScalarOutput(rootMeanSquareError(obs, pred), meta)
	}
	return nil
}

func events(m Metric, obs, pred []bool, meta output.Metadata) (output.Output, error) {
	if len(obs) == 0 {
		return nil, nil
	}
	meta.SampleSize = len(obs)
	t := table2x2(obs, pred)
	if m == DichotomousScores {
		return output.NewMultiScoreOutput(dichotomousScores(t), meta), nil
	}
	return output.NewMatrixOutput(2, 2, t, meta)
}

func scoreSingleValued(m Metric, ps []pairs.SingleValuedPair, th domain.Threshold, meta output.Metadata) (output.Output, error) {
	switch m {
	case ContingencyTable, DichotomousScores:
		obs := make([]bool, len(ps))
		pred := make([]bool, len(ps))
		for i, p := range ps {
			obs[i], pred[i] = th.Test(p.Observed), th.Test(p.Predicted)
		}
		return events(m, obs, pred, meta)
	}
	var obs, pred []float64
	for _, p := range ps {
		if th.Test(p.Observed) {
			obs = append(obs, p.Observed)
			pred = append(pred, p.Predicted)
		}
	}
	return continuous(m, obs, pred, meta), nil
}

func scoreEnsemble(m Metric, ps []pairs.EnsemblePair, th domain.Threshold, meta output.Metadata) (output.Output, error) {
	switch m {
	case ContingencyTable, DichotomousScores:
		obs := make([]bool, len(ps))
		pred := make([]bool, len(ps))
		for i, p := range ps {
			obs[i], pred[i] = th.Test(p.Observed()), th.Test(p.Mean())
		}
		return events(m, obs, pred, meta)
	case BrierScore:
		if len(ps) == 0 {
			return nil, nil
		}
		probs := make([]float64, len(ps))
		outcomes := make([]bool, len(ps))
		for i, p := range ps {
			probs[i], outcomes[i] = exceedance(p.Members(), th), th.Test(p.Observed())
		}
		meta.SampleSize = len(ps)
		return output.NewScalarOutput(brierScore(probs, outcomes), meta), nil
	}

	var obs, means []float64
	var members []domain.VectorOfDoubles
	for _, p := range ps {
		if th.Test(p.Observed()) {
			obs = append(obs, p.Observed())
			means = append(means, p.Mean())
			members = append(members, p.Members())
		}
	}
	if m == RankHistogram {
		if len(obs) == 0 {
			return nil, nil
		}
		hist, err := rankHistogram(obs, members)
		if err != nil {
			return nil, err
		}
		meta.SampleSize = len(obs)
		return output.NewVectorOutput(hist, meta), nil
	}
	return continuous(m, obs, means, meta), nil
}

func scoreCategorical(m Metric, ps []pairs.CategoryPair, categories int, meta output.Metadata) (output.Output, error) {
	if m == SampleSize {
		return sampleSize(len(ps), meta), nil
	}
	if len(ps) == 0 {
		return nil, nil
	}
	obs := make([]int, len(ps))
	pred := make([]int, len(ps))
	for i, p := range ps {
		obs[i], pred[i] = p.ObservedCategory(), p.PredictedCategory()
		if obs[i] < 0 || obs[i] >= categories || pred[i] < 0 || pred[i] >= categories {
			return nil, domain.Invalidf("pair %d has categories (%d, %d) outside a %d-category table",
				i, obs[i], pred[i], categories)
		}
	}
	meta.SampleSize = len(ps)
	t := tableNxN(obs, pred, categories)
	switch m {
	case ContingencyTable:
		return output.NewMatrixOutput(categories, categories, t, meta)
	case DichotomousScores:
		if categories != 2 {
			return nil, nil
		}
		return output.NewMultiScoreOutput(dichotomousScores(t), meta), nil
	}
	return nil, nil
}
