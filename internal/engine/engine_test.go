package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/output"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

var lead6 = output.LeadWindow(6 * time.Hour)

func scalarOf(t *testing.T, outs []output.Output, metric Metric, comp output.Component, th domain.Threshold) output.ScalarOutput {
	t.Helper()
	for _, o := range outs {
		m := o.Metadata()
		if m.Metric == string(metric) && m.Component == comp && m.Threshold == th {
			s, ok := o.(output.ScalarOutput)
			require.True(t, ok, "%s is %T", metric, o)
			return s
		}
	}
	t.Fatalf("no %s/%s output at %s", metric, comp, th)
	return output.ScalarOutput{}
}

func find(outs []output.Output, metric Metric) output.Output {
	for _, o := range outs {
		if o.Metadata().Metric == string(metric) {
			return o
		}
	}
	return nil
}

func singleValued(t *testing.T, ps []pairs.SingleValuedPair) pairs.Collection[pairs.SingleValuedPair] {
	t.Helper()
	c, err := pairs.NewSingleValuedBuilder().AddMain(ps).
		SetMetadata(domain.Metadata{Feature: "DRRC2", Variable: "streamflow"}).
		Build()
	require.NoError(t, err)
	return c
}

func TestEvaluateSingleValued_ErrorScores(t *testing.T) {
	c := singleValued(t, []pairs.SingleValuedPair{
		{Observed: 1, Predicted: 2},
		{Observed: 2, Predicted: 1},
		{Observed: 3, Predicted: 6},
	})

	outs, err := New(SampleSize, MeanError, MeanAbsoluteError, RootMeanSquareError).EvaluateSingleValued(c, lead6, nil)
	require.NoError(t, err)
	require.Len(t, outs, 4)

	all := domain.AllData
	assert.InDelta(t, 3.0, scalarOf(t, outs, SampleSize, output.ComponentMain, all).Value(), 0)
	assert.InDelta(t, 1.0, scalarOf(t, outs, MeanError, output.ComponentMain, all).Value(), 1e-12)
	assert.InDelta(t, 5.0/3, scalarOf(t, outs, MeanAbsoluteError, output.ComponentMain, all).Value(), 1e-12)
	assert.InDelta(t, math.Sqrt(11.0/3), scalarOf(t, outs, RootMeanSquareError, output.ComponentMain, all).Value(), 1e-12)

	me := scalarOf(t, outs, MeanError, output.ComponentMain, all)
	assert.Equal(t, 3, me.Metadata().SampleSize)
	assert.Equal(t, lead6, me.Metadata().Window)
	assert.Equal(t, domain.FeatureKey("DRRC2"), me.Metadata().Input.Feature)
}

func TestEvaluateSingleValued_ConditionsOnObservation(t *testing.T) {
	c := singleValued(t, []pairs.SingleValuedPair{
		{Observed: 1, Predicted: 2},
		{Observed: 10, Predicted: 13},
	})
	gt5, err := domain.NewThreshold(5, domain.GreaterThan)
	require.NoError(t, err)
	gt50, err := domain.NewThreshold(50, domain.GreaterThan)
	require.NoError(t, err)

	outs, err := New(SampleSize, MeanError).EvaluateSingleValued(c, lead6, []domain.Threshold{gt5, gt50})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, scalarOf(t, outs, MeanError, output.ComponentMain, gt5).Value(), 1e-12)
	assert.InDelta(t, 0.0, scalarOf(t, outs, SampleSize, output.ComponentMain, gt50).Value(), 0)
	assert.Len(t, outs, 3, "mean error is skipped for an empty sample")
}

func TestEvaluateSingleValued_ContingencyTable(t *testing.T) {
	c := singleValued(t, []pairs.SingleValuedPair{
		{Observed: 10, Predicted: 10}, // hit
		{Observed: 10, Predicted: 10}, // hit
		{Observed: 1, Predicted: 10},  // false alarm
		{Observed: 10, Predicted: 1},  // miss
		{Observed: 1, Predicted: 1},   // correct negative
	})
	gt5, err := domain.NewThreshold(5, domain.GreaterThan)
	require.NoError(t, err)

	outs, err := New(ContingencyTable, DichotomousScores).EvaluateSingleValued(c, lead6, []domain.Threshold{gt5})
	require.NoError(t, err)

	table, ok := find(outs, ContingencyTable).(output.MatrixOutput)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 1, 1, 1}, table.Data())

	scores, ok := find(outs, DichotomousScores).(output.MultiScoreOutput)
	require.True(t, ok)
	pod, _ := scores.Score(ProbabilityOfDetection)
	far, _ := scores.Score(FalseAlarmRatio)
	csi, _ := scores.Score(CriticalSuccessIndex)
	bias, _ := scores.Score(FrequencyBias)
	assert.InDelta(t, 2.0/3, pod, 1e-12)
	assert.InDelta(t, 1.0/3, far, 1e-12)
	assert.InDelta(t, 0.5, csi, 1e-12)
	assert.InDelta(t, 1.0, bias, 1e-12)
}

func TestEvaluateSingleValued_Baseline(t *testing.T) {
	c, err := pairs.NewSingleValuedBuilder().
		AddMain([]pairs.SingleValuedPair{{Observed: 1, Predicted: 2}}).
		AddBaseline([]pairs.SingleValuedPair{{Observed: 1, Predicted: 4}}).
		SetBaselineMetadata(domain.Metadata{Scenario: "persistence"}).
		Build()
	require.NoError(t, err)

	outs, err := New(MeanError).EvaluateSingleValued(c, lead6, nil)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	baseline := scalarOf(t, outs, MeanError, output.ComponentBaseline, domain.AllData)
	assert.InDelta(t, 3.0, baseline.Value(), 1e-12)
	assert.Equal(t, "persistence", baseline.Metadata().Input.Scenario)
}

func TestEvaluateEnsemble(t *testing.T) {
	c, err := pairs.NewEnsembleBuilder().AddMain([]pairs.EnsemblePair{
		pairs.NewEnsemblePair(2, 1, 3, 5),
		pairs.NewEnsemblePair(6, 1, 3, 5),
	}).Build()
	require.NoError(t, err)
	gt4, err := domain.NewThreshold(4, domain.GreaterThan)
	require.NoError(t, err)

	outs, err := New(MeanError, BrierScore, RankHistogram).EvaluateEnsemble(c, lead6, []domain.Threshold{domain.AllData, gt4})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, scalarOf(t, outs, MeanError, output.ComponentMain, domain.AllData).Value(), 1e-12)

	// members above 4: 1 of 3 for both pairs; outcomes no, yes.
	want := ((1.0/3)*(1.0/3) + (2.0/3)*(2.0/3)) / 2
	assert.InDelta(t, want, scalarOf(t, outs, BrierScore, output.ComponentMain, gt4).Value(), 1e-12)

	var hist output.VectorOutput
	for _, o := range outs {
		if o.Metadata().Metric == string(RankHistogram) && o.Metadata().Threshold == domain.AllData {
			hist = o.(output.VectorOutput)
		}
	}
	assert.Equal(t, []float64{0, 0.5, 0, 0.5}, hist.Values().Values())
}

func TestEvaluateEnsemble_RankHistogramNeedsConstantWidth(t *testing.T) {
	c, err := pairs.NewEnsembleBuilder().AddMain([]pairs.EnsemblePair{
		pairs.NewEnsemblePair(2, 1, 3),
		pairs.NewEnsemblePair(2, 1, 3, 5),
	}).Build()
	require.NoError(t, err)

	_, err = New(RankHistogram).EvaluateEnsemble(c, lead6, nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestEvaluateCategorical(t *testing.T) {
	c, err := pairs.NewMulticategoryBuilder().AddMain([]pairs.CategoryPair{
		pairs.NewCategoryPairFromVector(true, false, false, true, false, false),
		pairs.NewCategoryPairFromVector(false, true, false, false, false, true),
		pairs.NewCategoryPairFromVector(false, false, true, false, false, true),
	}).Build()
	require.NoError(t, err)

	outs, err := New().EvaluateCategorical(c, lead6)
	require.NoError(t, err)
	require.Len(t, outs, 2, "sample size and contingency table")

	table, ok := find(outs, ContingencyTable).(output.MatrixOutput)
	require.True(t, ok)
	r, cols := table.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 1, 1}, table.Data())
}

func TestEvaluateCategorical_Dichotomous(t *testing.T) {
	c, err := pairs.NewDichotomousBuilder().AddMain([]pairs.CategoryPair{
		pairs.NewDichotomousPair(true, true),
		pairs.NewDichotomousPair(true, false),
	}).Build()
	require.NoError(t, err)

	outs, err := New(DichotomousScores).EvaluateCategorical(c, lead6)
	require.NoError(t, err)
	require.Len(t, outs, 1)

	pod, ok := outs[0].(output.MultiScoreOutput).Score(ProbabilityOfDetection)
	require.True(t, ok)
	assert.InDelta(t, 0.5, pod, 1e-12)
}

func TestResolveThresholds(t *testing.T) {
	clim := pairs.NewClimatologyBuilder().Add("f", 4, 1, 3, 2).Build()
	p, err := domain.NewProbability(0.5)
	require.NoError(t, err)
	prob, err := domain.NewProbabilityThreshold(p, domain.GreaterThan)
	require.NoError(t, err)
	gt1, err := domain.NewThreshold(1, domain.GreaterThan)
	require.NoError(t, err)

	got, err := ResolveThresholds([]domain.Threshold{gt1, prob, gt1}, clim)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, gt1, got[0])

	v, ok := got[1].Value()
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 0)
	assert.True(t, got[1].IsQuantile())
}

func TestResolveThresholds_Defaults(t *testing.T) {
	got, err := ResolveThresholds(nil, pairs.Climatology{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Threshold{domain.AllData}, got)
}

func TestResolveThresholds_NoClimatology(t *testing.T) {
	p, err := domain.NewProbability(0.9)
	require.NoError(t, err)
	prob, err := domain.NewProbabilityThreshold(p, domain.GreaterThan)
	require.NoError(t, err)

	_, err = ResolveThresholds([]domain.Threshold{prob}, pairs.Climatology{})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestEvaluate_OutputsFitStore(t *testing.T) {
	c := singleValued(t, []pairs.SingleValuedPair{{Observed: 1, Predicted: 2}, {Observed: 3, Predicted: 3}})
	gt2, err := domain.NewThreshold(2, domain.GreaterThan)
	require.NoError(t, err)

	outs, err := New().EvaluateSingleValued(c, lead6, []domain.Threshold{domain.AllData, gt2})
	require.NoError(t, err)

	b := output.NewMultiMapBuilder()
	require.NoError(t, b.AddAll(outs))
	store := b.Build()
	assert.Equal(t, len(outs), store.Len())

	me, ok := store.Get(output.MetricKey{Metric: string(MeanError), Component: output.ComponentMain})
	require.True(t, ok)
	assert.Equal(t, 2, me.SliceByLead(6*time.Hour).Len())
}

func componentOutput(outs []output.Output, metric Metric, comp output.Component) output.Output {
	for _, o := range outs {
		if o.Metadata().Metric == string(metric) && o.Metadata().Component == comp {
			return o
		}
	}
	return nil
}

func TestEvaluateCategorical_BaselineUsesOwnCategories(t *testing.T) {
	c, err := pairs.NewMulticategoryBuilder().
		AddMain([]pairs.CategoryPair{pairs.NewCategoryPairFromVector(true, false, false, true, false, false)}).
		AddBaseline([]pairs.CategoryPair{
			pairs.NewDichotomousPair(true, false),
			pairs.NewDichotomousPair(false, false),
		}).
		Build()
	require.NoError(t, err)

	outs, err := New(ContingencyTable).EvaluateCategorical(c, lead6)
	require.NoError(t, err)

	main, ok := componentOutput(outs, ContingencyTable, output.ComponentMain).(output.MatrixOutput)
	require.True(t, ok)
	r, _ := main.Dims()
	assert.Equal(t, 3, r)

	base, ok := componentOutput(outs, ContingencyTable, output.ComponentBaseline).(output.MatrixOutput)
	require.True(t, ok)
	r, cols := base.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{0, 0, 1, 1}, base.Data())
}

func TestEvaluateCategorical_EmptyMainWithBaseline(t *testing.T) {
	c, err := pairs.NewMulticategoryBuilder().
		AddMain([]pairs.CategoryPair{}).
		AddBaseline([]pairs.CategoryPair{pairs.NewDichotomousPair(true, true)}).
		Build()
	require.NoError(t, err)

	outs, err := New().EvaluateCategorical(c, lead6)
	require.NoError(t, err)

	assert.Zero(t, scalarOf(t, outs, SampleSize, output.ComponentMain, domain.AllData).Value())
	assert.Nil(t, componentOutput(outs, ContingencyTable, output.ComponentMain))

	base, ok := componentOutput(outs, ContingencyTable, output.ComponentBaseline).(output.MatrixOutput)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 0, 0}, base.Data())
}

func TestEvaluate_EmptyBaselineReportsZeroSampleSize(t *testing.T) {
	c, err := pairs.NewSingleValuedBuilder().
		AddMain([]pairs.SingleValuedPair{{Observed: 1, Predicted: 2}}).
		SetBaselineMetadata(domain.Metadata{Scenario: "persistence"}).
		Build()
	require.NoError(t, err)

	outs, err := New(SampleSize, MeanError).EvaluateSingleValued(c, lead6, nil)
	require.NoError(t, err)

	size := scalarOf(t, outs, SampleSize, output.ComponentBaseline, domain.AllData)
	assert.Zero(t, size.Value())
	assert.Equal(t, "persistence", size.Metadata().Input.Scenario)
	assert.Nil(t, componentOutput(outs, MeanError, output.ComponentBaseline))
}
