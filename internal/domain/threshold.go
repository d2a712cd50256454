package domain

import (
	"math"
	"strconv"
	"strings"
)

// Threshold is a condition on a value: an operator applied to an absolute
// value, a probability, or both. The zero value is not a valid threshold.
type Threshold struct {
	op       Operator
	value    float64
	hasValue bool
	prob     Probability
	hasProb  bool
}

// AllData is the threshold every finite value satisfies.
var AllData = Threshold{op: GreaterThan, value: math.Inf(-1), hasValue: true}

// NewThreshold returns a threshold on an absolute value.
func NewThreshold(value float64, op Operator) (Threshold, error) {
	if err := checkThreshold(value, op); err != nil {
		return Threshold{}, err
	}
	return Threshold{op: op, value: value + 0, hasValue: true}, nil
}

// NewQuantileThreshold returns a threshold on an absolute value that was
// derived as the p-quantile of some distribution.
func NewQuantileThreshold(value float64, p Probability, op Operator) (Threshold, error) {
	t, err := NewThreshold(value, op)
	if err != nil {
		return Threshold{}, err
	}
	t.prob, t.hasProb = p, true
	return t, nil
}

// NewProbabilityThreshold returns a threshold that carries only a
// probability. Its absolute value is resolved later against a
// distribution, usually climatology.
func NewProbabilityThreshold(p Probability, op Operator) (Threshold, error) {
	if !op.Valid() {
		return Threshold{}, Invalidf("threshold operator %d is not defined", op)
	}
	return Threshold{op: op, prob: p, hasProb: true}, nil
}

func checkThreshold(value float64, op Operator) error {
	if math.IsNaN(value) {
		return Invalidf("threshold value is NaN")
	}
	if !op.Valid() {
		return Invalidf("threshold operator %d is not defined", op)
	}
	return nil
}

// Operator returns the comparison applied by the threshold.
func (t Threshold) Operator() Operator { return t.op }

// Value returns the absolute value and whether one is present.
func (t Threshold) Value() (float64, bool) { return t.value, t.hasValue }

// Probability returns the probability and whether one is present.
func (t Threshold) Probability() (Probability, bool) { return t.prob, t.hasProb }

// HasProbability reports whether the threshold carries a probability.
func (t Threshold) HasProbability() bool { return t.hasProb }

// IsQuantile reports whether the threshold carries both a value and a
// probability.
func (t Threshold) IsQuantile() bool { return t.hasValue && t.hasProb }

// IsValid reports whether t was produced by a constructor.
func (t Threshold) IsValid() bool { return t.op.Valid() && (t.hasValue || t.hasProb) }

// Test reports whether x satisfies the threshold. The absolute value is used
// when present, otherwise x is tested against the probability.
func (t Threshold) Test(x float64) bool {
	if t.hasValue {
		return t.op.Apply(x, t.value)
	}
	if t.hasProb {
		return t.op.Apply(x, t.prob.Float64())
	}
	return false
}

// WithValue resolves a probability threshold into a quantile threshold with
// the given absolute value.
func (t Threshold) WithValue(value float64) (Threshold, error) {
	if !t.hasProb {
		return NewThreshold(value, t.op)
	}
	return NewQuantileThreshold(value, t.prob, t.op)
}

// Compare orders thresholds by value, then probability, then operator.
// Absent fields sort before present ones.
func (t Threshold) Compare(o Threshold) int {
	if c := compareBool(t.hasValue, o.hasValue); c != 0 {
		return c
	}
	if t.hasValue {
		if c := CompareFloat(t.value, o.value); c != 0 {
			return c
		}
	}
	if c := compareBool(t.hasProb, o.hasProb); c != 0 {
		return c
	}
	if t.hasProb {
		if c := t.prob.Compare(o.prob); c != 0 {
			return c
		}
	}
	return t.op.compare(o.op)
}

func (t Threshold) Equal(other Value) bool {
	o, ok := other.(Threshold)
	return ok && t.Compare(o) == 0
}

func (t Threshold) Hash() uint64 {
	h := newHasher(tagThreshold).uint(uint64(t.op)).bool(t.hasValue)
	if t.hasValue {
		h.float(t.value)
	}
	h.bool(t.hasProb)
	if t.hasProb {
		h.float(t.prob.Float64())
	}
	return h.sum()
}

// String renders "> 5", "> 5 [Pr = 0.9]" or "Pr > 0.9". ParseThreshold
// accepts the same forms.
func (t Threshold) String() string {
	switch {
	case t.hasValue && t.hasProb:
		return t.op.String() + " " + FormatFloat(t.value) + " [Pr = " + t.prob.String() + "]"
	case t.hasValue:
		return t.op.String() + " " + FormatFloat(t.value)
	case t.hasProb:
		return "Pr " + t.op.String() + " " + t.prob.String()
	default:
		return "invalid threshold"
	}
}

func (Threshold) isValue() {}

// ParseThreshold parses the forms produced by Threshold.String.
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "Pr "); ok {
		op, v, err := splitCondition(rest)
		if err != nil {
			return Threshold{}, err
		}
		p, err := NewProbability(v)
		if err != nil {
			return Threshold{}, err
		}
		return NewProbabilityThreshold(p, op)
	}

	cond, quantile, hasQuantile := strings.Cut(s, "[")
	op, v, err := splitCondition(cond)
	if err != nil {
		return Threshold{}, err
	}
	if !hasQuantile {
		return NewThreshold(v, op)
	}

	quantile = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(quantile), "]"))
	pv, ok := strings.CutPrefix(quantile, "Pr =")
	if !ok {
		return Threshold{}, Invalidf("malformed quantile in threshold %q", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(pv), 64)
	if err != nil {
		return Threshold{}, Invalidf("malformed probability in threshold %q", s)
	}
	p, err := NewProbability(f)
	if err != nil {
		return Threshold{}, err
	}
	return NewQuantileThreshold(v, p, op)
}

func splitCondition(s string) (Operator, float64, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, Invalidf("threshold %q must be \"<operator> <value>\"", s)
	}
	op, err := ParseOperator(fields[0])
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, Invalidf("malformed threshold value %q", fields[1])
	}
	return op, v, nil
}
