package pairs

import (
	"slices"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Collection is a validated, immutable set of pairs. Values are safe for
// concurrent reads.
type Collection[P Pair] struct {
	kind             Kind
	main             []P
	baseline         []P
	hasBaseline      bool
	climatology      Climatology
	metadata         domain.Metadata
	baselineMetadata domain.Metadata
	categories       int

	baselineCategories int
}

// Kind returns the pair variant held.
func (c Collection[P]) Kind() Kind { return c.kind }

// Main returns a copy of the main pairs in insertion order.
func (c Collection[P]) Main() []P { return slices.Clone(c.main) }

// Len returns the number of main pairs.
func (c Collection[P]) Len() int { return len(c.main) }

// Baseline returns a copy of the baseline pairs.
func (c Collection[P]) Baseline() []P { return slices.Clone(c.baseline) }

// HasBaseline reports whether baseline pairs or baseline metadata were
// ever supplied to the builder.
func (c Collection[P]) HasBaseline() bool { return c.hasBaseline }

func (c Collection[P]) Climatology() Climatology { return c.climatology }

func (c Collection[P]) HasClimatology() bool { return !c.climatology.IsEmpty() }

func (c Collection[P]) Metadata() domain.Metadata { return c.metadata }

func (c Collection[P]) BaselineMetadata() domain.Metadata { return c.baselineMetadata }

// Categories returns the number of categories of the main pairs for
// category collections and zero otherwise. It is also zero for a
// multicategory collection with no main pairs.
func (c Collection[P]) Categories() int { return c.categories }

// BaselineCategories is Categories for the baseline pairs, which are
// validated on their own and may differ from main.
func (c Collection[P]) BaselineCategories() int { return c.baselineCategories }

// Dichotomous reports whether the collection holds two-category pairs.
func (c Collection[P]) Dichotomous() bool { return c.kind == KindDichotomous }

// BaselineCollection returns the baseline as a collection of its own, with
// the baseline metadata and the shared climatology.
func (c Collection[P]) BaselineCollection() (Collection[P], bool) {
	if !c.hasBaseline {
		return Collection[P]{}, false
	}
	return Collection[P]{
		kind:        c.kind,
		main:        c.baseline,
		climatology: c.climatology,
		metadata:    c.baselineMetadata,
		categories:  c.baselineCategories,
	}, true
}

// Equal reports whether both collections hold equal pairs, climatology and
// metadata.
func (c Collection[P]) Equal(o Collection[P]) bool {
	return c.kind == o.kind &&
		c.hasBaseline == o.hasBaseline &&
		c.metadata == o.metadata &&
		c.baselineMetadata == o.baselineMetadata &&
		c.categories == o.categories &&
		c.baselineCategories == o.baselineCategories &&
		pairsEqual(c.main, o.main) &&
		pairsEqual(c.baseline, o.baseline) &&
		c.climatology.Equal(o.climatology)
}

func pairsEqual[P Pair](a, b []P) bool {
	return slices.EqualFunc(a, b, func(x, y P) bool { return x.Equal(y) })
}
