package domain

import "math"

// Probability is a finite number in the closed unit interval.
// The zero value is a valid probability of 0.
type Probability struct {
	p float64
}

// NewProbability validates p and returns it as a Probability.
func NewProbability(p float64) (Probability, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return Probability{}, Invalidf("probability %v is not finite", p)
	}
	if p < 0 || p > 1 {
		return Probability{}, Invalidf("probability %v outside the unit interval [0, 1]", p)
	}
	// Drop the sign of -0 so == agrees with Equal.
	return Probability{p: p + 0}, nil
}

// Float64 returns the probability as a plain number.
func (p Probability) Float64() float64 { return p.p }

// Compare orders probabilities numerically.
func (p Probability) Compare(o Probability) int {
	return CompareFloat(p.p, o.p)
}

func (p Probability) Equal(other Value) bool {
	o, ok := other.(Probability)
	return ok && p.Compare(o) == 0
}

func (p Probability) Hash() uint64 {
	return newHasher(tagProbability).float(p.p).sum()
}

func (p Probability) String() string {
	return FormatFloat(p.p)
}

func (Probability) isValue() {}
