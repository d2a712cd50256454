package pairs

import (
	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Climatology maps features to historical reference values.
type Climatology struct {
	features []domain.FeatureKey
	values   map[domain.FeatureKey]domain.VectorOfDoubles
}

// Get returns the values recorded for feature f.
func (c Climatology) Get(f domain.FeatureKey) (domain.VectorOfDoubles, bool) {
	v, ok := c.values[f]
	return v, ok
}

// Features returns the features in the order they were first added.
func (c Climatology) Features() []domain.FeatureKey {
	return append([]domain.FeatureKey(nil), c.features...)
}

// Len returns the number of features.
func (c Climatology) Len() int { return len(c.features) }

// IsEmpty reports whether no feature was added.
func (c Climatology) IsEmpty() bool { return len(c.features) == 0 }

// All returns the values of every feature concatenated in feature order.
func (c Climatology) All() []float64 {
	var out []float64
	for _, f := range c.features {
		out = append(out, c.values[f].Values()...)
	}
	return out
}

// Equal reports whether both hold the same features with equal values.
// Feature order does not matter.
func (c Climatology) Equal(o Climatology) bool {
	if len(c.features) != len(o.features) {
		return false
	}
	for f, v := range c.values {
		ov, ok := o.values[f]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ClimatologyBuilder accumulates climatology per feature. Repeated additions
// for a feature are concatenated in call order.
type ClimatologyBuilder struct {
	features []domain.FeatureKey
	values   map[domain.FeatureKey][]float64
}

// NewClimatologyBuilder returns an empty builder.
func NewClimatologyBuilder() *ClimatologyBuilder {
	return &ClimatologyBuilder{values: make(map[domain.FeatureKey][]float64)}
}

// Add appends values to feature f.
func (b *ClimatologyBuilder) Add(f domain.FeatureKey, values ...float64) *ClimatologyBuilder {
	if _, ok := b.values[f]; !ok {
		b.features = append(b.features, f)
		b.values[f] = []float64{}
	}
	b.values[f] = append(b.values[f], values...)
	return b
}

// AddAll appends every feature of c.
func (b *ClimatologyBuilder) AddAll(c Climatology) *ClimatologyBuilder {
	for _, f := range c.features {
		b.Add(f, c.values[f].Values()...)
	}
	return b
}

// Build returns an immutable snapshot. The builder stays usable.
func (b *ClimatologyBuilder) Build() Climatology {
	c := Climatology{
		features: append([]domain.FeatureKey(nil), b.features...),
		values:   make(map[domain.FeatureKey]domain.VectorOfDoubles, len(b.values)),
	}
	for f, v := range b.values {
		c.values[f] = domain.NewVectorOfDoubles(v...)
	}
	return c
}

// finiteOnly drops non-finite values. A feature that had values and has
// none left fails with ErrInsufficientData.
func (c Climatology) finiteOnly() (Climatology, error) {
	b := NewClimatologyBuilder()
	for _, f := range c.features {
		v := c.values[f]
		kept := make([]float64, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			if isFinite(v.At(i)) {
				kept = append(kept, v.At(i))
			}
		}
		if v.Len() > 0 && len(kept) == 0 {
			return Climatology{}, domain.Insufficientf("climatology for feature %q has no finite values", f)
		}
		b.Add(f, kept...)
	}
	return b.Build(), nil
}
