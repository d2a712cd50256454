package pairs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

func TestClimatologyBuilder_AppendsPerFeature(t *testing.T) {
	const f domain.FeatureKey = "DRRC2"

	split := NewClimatologyBuilder().Add(f, 1).Add(f, 2).Build()
	direct := NewClimatologyBuilder().Add(f, 1, 2).Build()

	assert.True(t, split.Equal(direct))
	v, ok := split.Get(f)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, v.Values())
}

func TestClimatologyBuilder_Associative(t *testing.T) {
	const f domain.FeatureKey = "f"

	left := NewClimatologyBuilder().Add(f, 1, 2).Add(f, 3).Build()
	right := NewClimatologyBuilder().Add(f, 1).Add(f, 2, 3).Build()
	assert.True(t, left.Equal(right))

	reordered := NewClimatologyBuilder().Add(f, 2).Add(f, 1).Build()
	assert.False(t, reordered.Equal(NewClimatologyBuilder().Add(f, 1, 2).Build()))
}

func TestClimatology_FeatureOrder(t *testing.T) {
	c := NewClimatologyBuilder().Add("b", 1).Add("a", 2).Add("b", 3).Build()

	assert.Equal(t, []domain.FeatureKey{"b", "a"}, c.Features())
	assert.Equal(t, []float64{1, 3, 2}, c.All())
	assert.Equal(t, 2, c.Len())

	swapped := NewClimatologyBuilder().Add("a", 2).Add("b", 1, 3).Build()
	assert.True(t, c.Equal(swapped))
}

func TestClimatologyBuilder_SnapshotIndependent(t *testing.T) {
	b := NewClimatologyBuilder().Add("f", 1)
	first := b.Build()
	b.Add("f", 2)

	v, _ := first.Get("f")
	assert.Equal(t, 1, v.Len())
	v, _ = b.Build().Get("f")
	assert.Equal(t, 2, v.Len())
}

func TestClimatology_FiniteOnly(t *testing.T) {
	c := NewClimatologyBuilder().Add("f", 1, math.NaN()).Add("g").Build()
	filtered, err := c.finiteOnly()
	require.NoError(t, err)
	v, _ := filtered.Get("f")
	assert.Equal(t, []float64{1}, v.Values())

	_, err = NewClimatologyBuilder().Add("f", math.NaN(), math.Inf(-1)).Build().finiteOnly()
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.NotErrorIs(t, err, domain.ErrInvalid)
}
