package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsemble_MemberByLabel(t *testing.T) {
	e, err := NewLabeledEnsemble([]float64{1, 2, 3, 4}, "A", "B", "C", "D")
	require.NoError(t, err)

	v, err := e.Member("B")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = e.Member("E")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingLabel))
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), `"E"`)
}

func TestEnsemble_LabelCountMustMatch(t *testing.T) {
	_, err := NewLabeledEnsemble([]float64{1, 2, 3}, "A", "B")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "3 members but 2 labels")
}

func TestEnsemble_DuplicateLabelRejected(t *testing.T) {
	_, err := NewLabeledEnsemble([]float64{1, 2}, "A", "A")
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestEnsemble_UnlabeledMemberLookupFails(t *testing.T) {
	e, err := NewEnsemble([]float64{1}, nil)
	require.NoError(t, err)
	assert.Same(t, NoLabels, e.Labels())

	_, err = e.Member("A")
	assert.True(t, errors.Is(err, ErrMissingLabel))
}

func TestEnsemble_String(t *testing.T) {
	labeled, err := NewLabeledEnsemble([]float64{1, 2.5}, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, "[{A,1},{B,2.5}]", labeled.String())

	plain, err := NewEnsemble([]float64{1, 2.5}, NoLabels)
	require.NoError(t, err)
	assert.Equal(t, "[1,2.5]", plain.String())
}

func TestEnsemble_DefensiveCopy(t *testing.T) {
	members := []float64{1, 2}
	e, err := NewEnsemble(members, nil)
	require.NoError(t, err)

	members[0] = 99
	assert.Equal(t, []float64{1, 2}, e.Members())

	out := e.Members()
	out[1] = 99
	assert.Equal(t, []float64{1, 2}, e.Members())
}

func TestEnsemble_EqualityAndOrder(t *testing.T) {
	a, _ := NewLabeledEnsemble([]float64{1, 2}, "A", "B")
	b, _ := NewLabeledEnsemble([]float64{1, 2}, "A", "B")
	c, _ := NewEnsemble([]float64{1, 2}, nil)
	d, _ := NewEnsemble([]float64{1, 3}, nil)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c), "labels are part of identity")
	assert.Equal(t, 1, a.Compare(c))
	assert.Equal(t, -1, c.Compare(d))
	assert.Equal(t, 0, a.Compare(b))
}
