package pairs

import (
	"fmt"
	"math"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Pair is implemented by the pair variants a Collection can hold.
type Pair interface {
	// Equal reports whether other is the same variant with equal content.
	Equal(other Pair) bool
	String() string

	// empty reports a pair with no content, the analog of a missing element.
	empty() bool
}

// SingleValuedPair is a scalar observation and a scalar prediction.
type SingleValuedPair struct {
	Observed  float64 `json:"observed"`
	Predicted float64 `json:"predicted"`
}

func (p SingleValuedPair) Equal(other Pair) bool {
	o, ok := other.(SingleValuedPair)
	return ok && domain.CompareFloat(p.Observed, o.Observed) == 0 &&
		domain.CompareFloat(p.Predicted, o.Predicted) == 0
}

func (p SingleValuedPair) String() string {
	return fmt.Sprintf("%s,%s", domain.FormatFloat(p.Observed), domain.FormatFloat(p.Predicted))
}

func (SingleValuedPair) empty() bool { return false }

func (p SingleValuedPair) finite() bool {
	return isFinite(p.Observed) && isFinite(p.Predicted)
}

// EnsemblePair is a scalar observation and a vector of member predictions.
type EnsemblePair struct {
	observed float64
	members  domain.VectorOfDoubles
}

// NewEnsemblePair copies members into a new pair.
func NewEnsemblePair(observed float64, members ...float64) EnsemblePair {
	return EnsemblePair{observed: observed, members: domain.NewVectorOfDoubles(members...)}
}

func (p EnsemblePair) Observed() float64 { return p.observed }

// Members returns the member predictions.
func (p EnsemblePair) Members() domain.VectorOfDoubles { return p.members }

// Mean returns the ensemble mean of the members.
func (p EnsemblePair) Mean() float64 {
	if p.members.Len() == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < p.members.Len(); i++ {
		sum += p.members.At(i)
	}
	return sum / float64(p.members.Len())
}

func (p EnsemblePair) Equal(other Pair) bool {
	o, ok := other.(EnsemblePair)
	return ok && domain.CompareFloat(p.observed, o.observed) == 0 && p.members.Equal(o.members)
}

func (p EnsemblePair) String() string {
	return domain.FormatFloat(p.observed) + "," + p.members.String()
}

func (p EnsemblePair) empty() bool { return p.members.Len() == 0 }

// finiteOnly drops non-finite members. The pair is kept only when the
// observation is finite and at least one member survives.
func (p EnsemblePair) finiteOnly() (EnsemblePair, bool) {
	if !isFinite(p.observed) {
		return EnsemblePair{}, false
	}
	kept := make([]float64, 0, p.members.Len())
	for i := 0; i < p.members.Len(); i++ {
		if m := p.members.At(i); isFinite(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return EnsemblePair{}, false
	}
	if len(kept) == p.members.Len() {
		return p, true
	}
	return NewEnsemblePair(p.observed, kept...), true
}

// CategoryPair encodes an observed and a predicted category as one boolean
// vector: the first half is the observed one-hot vector, the second half the
// predicted one. A dichotomous pair has two categories and four elements.
type CategoryPair struct {
	outcomes domain.VectorOfBooleans
}

// NewCategoryPair joins observed and predicted one-hot vectors. They must
// have the same length.
func NewCategoryPair(observed, predicted []bool) (CategoryPair, error) {
	if len(observed) != len(predicted) {
		return CategoryPair{}, fmt.Errorf("%w: observed has %d categories, predicted has %d",
			domain.ErrCategoryMismatch, len(observed), len(predicted))
	}
	joined := make([]bool, 0, len(observed)+len(predicted))
	joined = append(joined, observed...)
	joined = append(joined, predicted...)
	return CategoryPair{outcomes: domain.NewVectorOfBooleans(joined...)}, nil
}

// NewCategoryPairFromVector wraps an already joined outcome vector. Its
// shape is checked when the pair is built into a collection.
func NewCategoryPairFromVector(outcomes ...bool) CategoryPair {
	return CategoryPair{outcomes: domain.NewVectorOfBooleans(outcomes...)}
}

// NewDichotomousPair encodes a yes/no observation and prediction.
func NewDichotomousPair(observed, predicted bool) CategoryPair {
	return NewCategoryPairFromVector(observed, !observed, predicted, !predicted)
}

// Outcomes returns the joined vector.
func (p CategoryPair) Outcomes() domain.VectorOfBooleans { return p.outcomes }

// Categories returns the number of categories encoded by each half.
func (p CategoryPair) Categories() int { return p.outcomes.Len() / 2 }

// Observed returns the observed one-hot vector.
func (p CategoryPair) Observed() domain.VectorOfBooleans {
	return p.outcomes.Slice(0, p.Categories())
}

// Predicted returns the predicted one-hot vector.
func (p CategoryPair) Predicted() domain.VectorOfBooleans {
	return p.outcomes.Slice(p.Categories(), 2*p.Categories())
}

// ObservedCategory returns the index of the observed category, or -1.
func (p CategoryPair) ObservedCategory() int { return p.Observed().Index() }

// PredictedCategory returns the index of the predicted category, or -1.
func (p CategoryPair) PredictedCategory() int { return p.Predicted().Index() }

func (p CategoryPair) Equal(other Pair) bool {
	o, ok := other.(CategoryPair)
	return ok && p.outcomes.Equal(o.outcomes)
}

func (p CategoryPair) String() string { return p.outcomes.String() }

func (p CategoryPair) empty() bool { return p.outcomes.Len() == 0 }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
