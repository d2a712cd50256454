package domain

import (
	"cmp"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Value is the contract shared by every immutable statistical value type.
type Value interface {
	// Equal reports content equality. It is false for nil and for a value
	// of a different type.
	Equal(other Value) bool
	// Hash is consistent with Equal.
	Hash() uint64
	String() string

	isValue()
}

// CompareFloat orders two floats with -0 == +0 and NaN equal to itself and
// below every other number.
func CompareFloat(a, b float64) int {
	return cmp.Compare(a, b)
}

// CompareFloats orders two slices lexicographically; a proper prefix sorts
// first.
func CompareFloats(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareFloat(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// FloatsEqual reports whether two slices have the same length and equal
// elements under CompareFloat.
func FloatsEqual(a, b []float64) bool {
	return len(a) == len(b) && CompareFloats(a, b) == 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// canonicalBits maps every NaN to one bit pattern and -0 to +0 so that
// values equal under CompareFloat hash identically.
func canonicalBits(v float64) uint64 {
	switch {
	case math.IsNaN(v):
		return 0x7FF8000000000001
	case v == 0:
		return 0
	default:
		return math.Float64bits(v)
	}
}

type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newHasher(tag byte) *hasher {
	h := &hasher{d: xxhash.New()}
	_, _ = h.d.Write([]byte{tag})
	return h
}

func (h *hasher) float(v float64) *hasher {
	binary.LittleEndian.PutUint64(h.buf[:], canonicalBits(v))
	_, _ = h.d.Write(h.buf[:])
	return h
}

func (h *hasher) uint(v uint64) *hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
	return h
}

func (h *hasher) bool(v bool) *hasher {
	if v {
		return h.uint(1)
	}
	return h.uint(0)
}

func (h *hasher) string(s string) *hasher {
	h.uint(uint64(len(s)))
	_, _ = h.d.WriteString(s)
	return h
}

func (h *hasher) sum() uint64 {
	return h.d.Sum64()
}

// Hash tags keep different variants with equal payloads apart.
const (
	tagProbability byte = iota + 1
	tagThreshold
	tagDoubles
	tagBooleans
	tagLabels
	tagEnsemble
)

// FormatFloat renders v in the shortest form that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
