package domain

import "strings"

// Ensemble is an ordered set of member values with optional member labels.
type Ensemble struct {
	members []float64
	labels  *Labels
}

// NewEnsemble returns an ensemble over a copy of members. labels may be nil
// or NoLabels; otherwise it must name every member exactly once.
func NewEnsemble(members []float64, labels *Labels) (Ensemble, error) {
	if labels == nil {
		labels = NoLabels
	}
	if labels.Len() > 0 {
		if labels.Len() != len(members) {
			return Ensemble{}, Invalidf("ensemble has %d members but %d labels", len(members), labels.Len())
		}
		seen := make(map[string]struct{}, labels.Len())
		for _, n := range labels.names {
			if _, dup := seen[n]; dup {
				return Ensemble{}, Invalidf("ensemble label %q appears more than once", n)
			}
			seen[n] = struct{}{}
		}
	}
	return Ensemble{members: cloneFloats(members), labels: labels}, nil
}

// NewLabeledEnsemble is NewEnsemble with labels interned from names.
func NewLabeledEnsemble(members []float64, names ...string) (Ensemble, error) {
	return NewEnsemble(members, LabelsOf(names...))
}

// Len returns the number of members.
func (e Ensemble) Len() int { return len(e.members) }

// Members returns a copy of the member values.
func (e Ensemble) Members() []float64 { return cloneFloats(e.members) }

// Labels returns the member labels, NoLabels when unlabeled.
func (e Ensemble) Labels() *Labels {
	if e.labels == nil {
		return NoLabels
	}
	return e.labels
}

// Member returns the value of the member with the given label.
func (e Ensemble) Member(name string) (float64, error) {
	i, ok := e.Labels().Index(name)
	if !ok {
		return 0, wrapf(ErrMissingLabel, "ensemble has no member labeled %q", name)
	}
	return e.members[i], nil
}

// Compare orders by members, then by labels.
func (e Ensemble) Compare(o Ensemble) int {
	if c := CompareFloats(e.members, o.members); c != 0 {
		return c
	}
	return e.Labels().Compare(o.Labels())
}

func (e Ensemble) Equal(other Value) bool {
	o, ok := other.(Ensemble)
	return ok && FloatsEqual(e.members, o.members) && e.Labels().Equal(o.Labels())
}

func (e Ensemble) Hash() uint64 {
	h := newHasher(tagEnsemble).uint(uint64(len(e.members)))
	for _, m := range e.members {
		h.float(m)
	}
	return h.uint(e.Labels().Hash()).sum()
}

// String renders [{label,value},...] when labeled and [v1,v2,...] otherwise.
func (e Ensemble) String() string {
	parts := make([]string, len(e.members))
	labels := e.Labels()
	for i, m := range e.members {
		if labels.Len() > 0 {
			parts[i] = "{" + labels.At(i) + "," + FormatFloat(m) + "}"
		} else {
			parts[i] = FormatFloat(m)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (Ensemble) isValue() {}
