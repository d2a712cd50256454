package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

func TestParseMetrics(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Metric
		wantErr bool
	}{
		{name: "empty selects all", input: "", want: AllMetrics},
		{name: "single", input: "mean_error", want: []Metric{MeanError}},
		{name: "spaces and case", input: " Mean_Error , sample_size", want: []Metric{MeanError, SampleSize}},
		{name: "duplicates dropped", input: "brier_score,brier_score", want: []Metric{BrierScore}},
		{name: "unknown", input: "mean_error,crps", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetrics(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetric_Supports(t *testing.T) {
	assert.True(t, SampleSize.Supports(pairs.KindMulticategory))
	assert.True(t, MeanError.Supports(pairs.KindEnsemble))
	assert.False(t, MeanError.Supports(pairs.KindDichotomous))
	assert.True(t, DichotomousScores.Supports(pairs.KindDichotomous))
	assert.False(t, DichotomousScores.Supports(pairs.KindMulticategory))
	assert.True(t, BrierScore.Supports(pairs.KindEnsemble))
	assert.False(t, BrierScore.Supports(pairs.KindSingleValued))
	assert.False(t, Metric("crps").Supports(pairs.KindEnsemble))
}
