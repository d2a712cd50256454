package ingest

import (
	"github.com/couchcryptid/storm-data-verify/internal/engine"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

// Evaluate builds the batch into a pair collection and scores it with e.
// Build failures are returned unwrapped so callers can tell validation
// failures from insufficient data.
func (b PairBatch) Evaluate(e *engine.Engine) ([]output.Output, error) {
	switch b.Kind {
	case pairs.KindSingleValued:
		c, err := build(pairs.NewSingleValuedBuilder(), b, b.singleValued, b.baselineSingleValued)
		if err != nil {
			return nil, err
		}
		return e.EvaluateSingleValued(c, b.Window, b.Thresholds)
	case pairs.KindEnsemble:
		c, err := build(pairs.NewEnsembleBuilder(), b, b.ensemble, b.baselineEnsemble)
		if err != nil {
			return nil, err
		}
		return e.EvaluateEnsemble(c, b.Window, b.Thresholds)
	case pairs.KindDichotomous, pairs.KindMulticategory:
		builder := pairs.NewMulticategoryBuilder()
		if b.Kind == pairs.KindDichotomous {
			builder = pairs.NewDichotomousBuilder()
		}
		c, err := build(builder, b, b.category, b.baselineCategory)
		if err != nil {
			return nil, err
		}
		return e.EvaluateCategorical(c, b.Window)
	}
	return nil, nil
}

func build[P pairs.Pair](builder *pairs.Builder[P], b PairBatch, main, baseline []P) (pairs.Collection[P], error) {
	builder.AddMain(main).
		SetClimatology(b.Climatology).
		SetMetadata(b.Metadata)
	if baseline != nil {
		builder.AddBaseline(baseline)
	}
	if b.BaselineMetadata != nil {
		builder.SetBaselineMetadata(*b.BaselineMetadata)
	}
	return builder.Build()
}
