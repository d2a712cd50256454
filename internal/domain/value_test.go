package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleValues returns one or more instances of every Value variant,
// including pairs that are equal by content but built separately.
func sampleValues(t *testing.T) []Value {
	t.Helper()

	p0, err := NewProbability(0)
	require.NoError(t, err)
	p9, err := NewProbability(0.9)
	require.NoError(t, err)

	gt0, err := NewThreshold(0, GreaterThan)
	require.NoError(t, err)
	gt0q, err := NewQuantileThreshold(0, p0, GreaterThan)
	require.NoError(t, err)
	pr9, err := NewProbabilityThreshold(p9, LessEqual)
	require.NoError(t, err)

	ens, err := NewLabeledEnsemble([]float64{1, 2}, "A", "B")
	require.NoError(t, err)
	ensAgain, err := NewLabeledEnsemble([]float64{1, 2}, "A", "B")
	require.NoError(t, err)
	unlabeled, err := NewEnsemble([]float64{1, 2}, nil)
	require.NoError(t, err)

	return []Value{
		p0, p9, gt0, gt0q, pr9, AllData,
		NewVectorOfDoubles(1, 2, 3),
		NewVectorOfDoubles(1, 2, 3),
		NewVectorOfDoubles(1, math.NaN()),
		NewVectorOfDoubles(),
		NewVectorOfBooleans(true, false),
		NewVectorOfBooleans(),
		LabelsOf("A", "B"),
		NoLabels,
		ens, ensAgain, unlabeled,
	}
}

func TestValueLaws(t *testing.T) {
	values := sampleValues(t)

	for i, a := range values {
		assert.True(t, a.Equal(a), "reflexive: %v", a)
		assert.False(t, a.Equal(nil), "nil is never equal: %v", a)
		assert.Equal(t, a.Hash(), a.Hash(), "hash is stable: %v", a)

		for j, b := range values {
			assert.Equal(t, a.Equal(b), b.Equal(a), "symmetric: %v / %v", a, b)
			if a.Equal(b) {
				assert.Equal(t, a.Hash(), b.Hash(), "hash consistent with equal: %v / %v", a, b)
			}
			for _, c := range values {
				if a.Equal(b) && b.Equal(c) {
					assert.True(t, a.Equal(c), "transitive: %d %d", i, j)
				}
			}
		}
	}
}

func TestValueLaws_ForeignVariantsNeverEqual(t *testing.T) {
	p, err := NewProbability(0)
	require.NoError(t, err)

	assert.False(t, p.Equal(NewVectorOfDoubles(0)))
	assert.False(t, NewVectorOfDoubles().Equal(NewVectorOfBooleans()))
	assert.False(t, NoLabels.Equal(NewVectorOfDoubles()))
	assert.NotEqual(t, NewVectorOfDoubles().Hash(), NewVectorOfBooleans().Hash())
}

func TestCompareFloat(t *testing.T) {
	assert.Equal(t, 0, CompareFloat(0, math.Copysign(0, -1)))
	assert.Equal(t, 0, CompareFloat(math.NaN(), math.NaN()))
	assert.Equal(t, -1, CompareFloat(math.NaN(), math.Inf(-1)))
	assert.Equal(t, 1, CompareFloat(2, 1))
}

func TestCompareFloats_PrefixSortsFirst(t *testing.T) {
	assert.Equal(t, -1, CompareFloats([]float64{1, 2}, []float64{1, 2, 0}))
	assert.Equal(t, 1, CompareFloats([]float64{1, 3}, []float64{1, 2, 9}))
	assert.Equal(t, 0, CompareFloats(nil, []float64{}))
}
