package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProbability(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		wantErr string
	}{
		{name: "zero", in: 0},
		{name: "one", in: 1},
		{name: "interior", in: 0.35},
		{name: "above one", in: 1.01, wantErr: "unit interval"},
		{name: "negative", in: -0.1, wantErr: "unit interval"},
		{name: "NaN", in: math.NaN(), wantErr: "not finite"},
		{name: "infinite", in: math.Inf(1), wantErr: "not finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProbability(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, p.Float64())
		})
	}
}

func TestProbability_NegativeZeroIsZero(t *testing.T) {
	neg, err := NewProbability(math.Copysign(0, -1))
	require.NoError(t, err)
	zero, err := NewProbability(0)
	require.NoError(t, err)

	assert.True(t, neg == zero)
	assert.True(t, neg.Equal(zero))
	assert.Equal(t, zero.Hash(), neg.Hash())
}

func TestProbability_Compare(t *testing.T) {
	lo, _ := NewProbability(0.1)
	hi, _ := NewProbability(0.9)

	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, lo.Compare(lo))
	assert.Equal(t, "0.1", lo.String())
}
