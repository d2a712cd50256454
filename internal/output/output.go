package output

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Component distinguishes outputs computed from main pairs and from
// baseline pairs.
type Component string

const (
	ComponentMain     Component = "main"
	ComponentBaseline Component = "baseline"
)

// Metadata identifies the computation behind an output.
type Metadata struct {
	Input      domain.Metadata  `json:"input"`
	Metric     string           `json:"metric"`
	Component  Component        `json:"component"`
	SampleSize int              `json:"sample_size"`
	Window     TimeWindow       `json:"-"`
	Threshold  domain.Threshold `json:"-"`
}

// Key returns the Map key the output belongs under.
func (m Metadata) Key() Key {
	return Key{Window: m.Window, Threshold: m.Threshold}
}

// Output is one computed metric value with its metadata. Two outputs are
// equal only when both value and metadata are equal.
type Output interface {
	Metadata() Metadata
	Equal(other Output) bool
	String() string

	isOutput()
}

// ScalarOutput holds a single score.
type ScalarOutput struct {
	value float64
	meta  Metadata
}

func NewScalarOutput(value float64, meta Metadata) ScalarOutput {
	return ScalarOutput{value: value, meta: meta}
}

func (o ScalarOutput) Value() float64 { return o.value }

func (o ScalarOutput) Metadata() Metadata { return o.meta }

func (o ScalarOutput) Equal(other Output) bool {
	s, ok := other.(ScalarOutput)
	return ok && s.meta == o.meta && domain.CompareFloat(s.value, o.value) == 0
}

func (o ScalarOutput) String() string { return domain.FormatFloat(o.value) }

func (ScalarOutput) isOutput() {}

// VectorOutput holds an ordered series of scores.
type VectorOutput struct {
	values domain.VectorOfDoubles
	meta   Metadata
}

// NewVectorOutput copies values.
func NewVectorOutput(values []float64, meta Metadata) VectorOutput {
	return VectorOutput{values: domain.NewVectorOfDoubles(values...), meta: meta}
}

func (o VectorOutput) Values() domain.VectorOfDoubles { return o.values }

func (o VectorOutput) Metadata() Metadata { return o.meta }

func (o VectorOutput) Equal(other Output) bool {
	v, ok := other.(VectorOutput)
	return ok && v.meta == o.meta && v.values.Equal(o.values)
}

func (o VectorOutput) String() string { return o.values.String() }

func (VectorOutput) isOutput() {}

// MatrixOutput holds a dense matrix of scores, such as a contingency table.
type MatrixOutput struct {
	m    *mat.Dense
	meta Metadata
}

// NewMatrixOutput builds a rows x cols matrix from row-major data, which
// is copied.
func NewMatrixOutput(rows, cols int, data []float64, meta Metadata) (MatrixOutput, error) {
	if rows <= 0 || cols <= 0 {
		return MatrixOutput{}, domain.Invalidf("matrix dimensions %dx%d must be positive", rows, cols)
	}
	if len(data) != rows*cols {
		return MatrixOutput{}, domain.Invalidf("matrix %dx%d needs %d values, got %d", rows, cols, rows*cols, len(data))
	}
	return MatrixOutput{m: mat.NewDense(rows, cols, slices.Clone(data)), meta: meta}, nil
}

// Dims returns the number of rows and columns.
func (o MatrixOutput) Dims() (int, int) {
	if o.m == nil {
		return 0, 0
	}
	return o.m.Dims()
}

func (o MatrixOutput) At(i, j int) float64 { return o.m.At(i, j) }

// Matrix returns a copy of the underlying matrix.
func (o MatrixOutput) Matrix() *mat.Dense { return mat.DenseCopyOf(o.m) }

// Data returns the elements in row-major order.
func (o MatrixOutput) Data() []float64 {
	r, c := o.Dims()
	out := make([]float64, 0, r*c)
	for i := range r {
		out = append(out, mat.Row(nil, i, o.m)...)
	}
	return out
}

func (o MatrixOutput) Metadata() Metadata { return o.meta }

// Equal compares element-wise with the total float order, so NaN cells
// compare equal.
func (o MatrixOutput) Equal(other Output) bool {
	m, ok := other.(MatrixOutput)
	if !ok || m.meta != o.meta {
		return false
	}
	r, c := o.Dims()
	if mr, mc := m.Dims(); mr != r || mc != c {
		return false
	}
	return domain.FloatsEqual(o.Data(), m.Data())
}

func (o MatrixOutput) String() string {
	if o.m == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", mat.Formatted(o.m, mat.Squeeze()))
}

func (MatrixOutput) isOutput() {}

// MultiScoreOutput holds several named scores computed together.
type MultiScoreOutput struct {
	scores map[string]float64
	meta   Metadata
}

// NewMultiScoreOutput copies scores.
func NewMultiScoreOutput(scores map[string]float64, meta Metadata) MultiScoreOutput {
	return MultiScoreOutput{scores: maps.Clone(scores), meta: meta}
}

// Score returns the named score.
func (o MultiScoreOutput) Score(name string) (float64, bool) {
	v, ok := o.scores[name]
	return v, ok
}

// Names returns the score names in sorted order.
func (o MultiScoreOutput) Names() []string {
	return slices.Sorted(maps.Keys(o.scores))
}

// Scores returns a copy of all scores.
func (o MultiScoreOutput) Scores() map[string]float64 { return maps.Clone(o.scores) }

func (o MultiScoreOutput) Metadata() Metadata { return o.meta }

func (o MultiScoreOutput) Equal(other Output) bool {
	m, ok := other.(MultiScoreOutput)
	if !ok || m.meta != o.meta || len(m.scores) != len(o.scores) {
		return false
	}
	for name, v := range o.scores {
		w, ok := m.scores[name]
		if !ok || domain.CompareFloat(v, w) != 0 {
			return false
		}
	}
	return true
}

func (o MultiScoreOutput) String() string {
	parts := make([]string, 0, len(o.scores))
	for _, name := range o.Names() {
		parts = append(parts, name+"="+domain.FormatFloat(o.scores[name]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (MultiScoreOutput) isOutput() {}
