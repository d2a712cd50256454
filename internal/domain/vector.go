package domain

import (
	"cmp"
	"strconv"
	"strings"
)

// VectorOfDoubles is an immutable sequence of float64. The input slice is
// copied, so later changes by the caller are not observed.
//
// Equal requires equal length and equal elements. Compare is lexicographic
// by element; when one vector is a prefix of the other the shorter sorts
// first.
type VectorOfDoubles struct {
	values []float64
}

// NewVectorOfDoubles copies values into a new vector.
func NewVectorOfDoubles(values ...float64) VectorOfDoubles {
	return VectorOfDoubles{values: cloneFloats(values)}
}

// Len returns the number of elements.
func (v VectorOfDoubles) Len() int { return len(v.values) }

// At returns element i. It panics if i is out of range, like a slice index.
func (v VectorOfDoubles) At(i int) float64 { return v.values[i] }

// Values returns a copy of the elements.
func (v VectorOfDoubles) Values() []float64 { return cloneFloats(v.values) }

func (v VectorOfDoubles) Compare(o VectorOfDoubles) int {
	return CompareFloats(v.values, o.values)
}

func (v VectorOfDoubles) Equal(other Value) bool {
	o, ok := other.(VectorOfDoubles)
	return ok && FloatsEqual(v.values, o.values)
}

func (v VectorOfDoubles) Hash() uint64 {
	h := newHasher(tagDoubles).uint(uint64(len(v.values)))
	for _, x := range v.values {
		h.float(x)
	}
	return h.sum()
}

func (v VectorOfDoubles) String() string {
	parts := make([]string, len(v.values))
	for i, x := range v.values {
		parts[i] = FormatFloat(x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (VectorOfDoubles) isValue() {}

// VectorOfBooleans is an immutable sequence of bool with the same copy,
// equality and ordering rules as VectorOfDoubles. false sorts before true.
type VectorOfBooleans struct {
	values []bool
}

// NewVectorOfBooleans copies values into a new vector.
func NewVectorOfBooleans(values ...bool) VectorOfBooleans {
	if values == nil {
		return VectorOfBooleans{}
	}
	return VectorOfBooleans{values: append([]bool(nil), values...)}
}

func (v VectorOfBooleans) Len() int { return len(v.values) }

func (v VectorOfBooleans) At(i int) bool { return v.values[i] }

// Values returns a copy of the elements.
func (v VectorOfBooleans) Values() []bool {
	if v.values == nil {
		return nil
	}
	return append([]bool(nil), v.values...)
}

// Slice returns the elements in [from, to) as a new vector.
func (v VectorOfBooleans) Slice(from, to int) VectorOfBooleans {
	return NewVectorOfBooleans(v.values[from:to]...)
}

// Count returns the number of true elements.
func (v VectorOfBooleans) Count() int {
	n := 0
	for _, b := range v.values {
		if b {
			n++
		}
	}
	return n
}

// Index returns the position of the first true element, or -1.
func (v VectorOfBooleans) Index() int {
	for i, b := range v.values {
		if b {
			return i
		}
	}
	return -1
}

func (v VectorOfBooleans) Compare(o VectorOfBooleans) int {
	for i := 0; i < len(v.values) && i < len(o.values); i++ {
		if c := compareBool(v.values[i], o.values[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(v.values), len(o.values))
}

func (v VectorOfBooleans) Equal(other Value) bool {
	o, ok := other.(VectorOfBooleans)
	return ok && len(v.values) == len(o.values) && v.Compare(o) == 0
}

func (v VectorOfBooleans) Hash() uint64 {
	h := newHasher(tagBooleans).uint(uint64(len(v.values)))
	for _, b := range v.values {
		h.bool(b)
	}
	return h.sum()
}

func (v VectorOfBooleans) String() string {
	parts := make([]string, len(v.values))
	for i, b := range v.values {
		parts[i] = strconv.FormatBool(b)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (VectorOfBooleans) isValue() {}

func cloneFloats(values []float64) []float64 {
	if values == nil {
		return nil
	}
	return append([]float64(nil), values...)
}
