package pairs

import (
	"fmt"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// Builder accumulates pairs for one Collection. It is not safe for
// concurrent use.
type Builder[P Pair] struct {
	kind             Kind
	main             []P
	mainSupplied     bool
	baseline         []P
	baselineSupplied bool
	nilLists         []string
	climatology      *ClimatologyBuilder
	metadata         domain.Metadata
	baselineMetadata domain.Metadata

	// validate checks the shape of one dataset and returns its category count.
	validate func(dataset string, pairs []P) (int, error)
	// keep drops non-finite content from a pair. false removes the pair.
	keep func(P) (P, bool)
}

// NewSingleValuedBuilder returns a builder of scalar pairs.
func NewSingleValuedBuilder() *Builder[SingleValuedPair] {
	return newBuilder(KindSingleValued, noShape[SingleValuedPair],
		func(p SingleValuedPair) (SingleValuedPair, bool) { return p, p.finite() })
}

// NewEnsembleBuilder returns a builder of ensemble pairs.
func NewEnsembleBuilder() *Builder[EnsemblePair] {
	return newBuilder(KindEnsemble, noShape[EnsemblePair], EnsemblePair.finiteOnly)
}

// NewDichotomousBuilder returns a builder of two-category pairs.
func NewDichotomousBuilder() *Builder[CategoryPair] {
	return newBuilder(KindDichotomous, categoryShape(2), keepAll[CategoryPair])
}

// NewMulticategoryBuilder returns a builder of N-category pairs, with N
// taken from the first pair of each dataset.
func NewMulticategoryBuilder() *Builder[CategoryPair] {
	return newBuilder(KindMulticategory, categoryShape(0), keepAll[CategoryPair])
}

func newBuilder[P Pair](kind Kind, validate func(string, []P) (int, error), keep func(P) (P, bool)) *Builder[P] {
	return &Builder[P]{
		kind:        kind,
		climatology: NewClimatologyBuilder(),
		validate:    validate,
		keep:        keep,
	}
}

// AddMain appends main pairs. A nil slice adds nothing and fails the next
// Build with ErrInvalid.
func (b *Builder[P]) AddMain(pairs []P) *Builder[P] {
	if pairs == nil {
		b.nilLists = append(b.nilLists, "main")
		return b
	}
	b.mainSupplied = true
	b.main = append(b.main, pairs...)
	return b
}

// AddBaseline appends baseline pairs. A nil slice adds nothing and fails
// the next Build with ErrInvalid.
func (b *Builder[P]) AddBaseline(pairs []P) *Builder[P] {
	if pairs == nil {
		b.nilLists = append(b.nilLists, "baseline")
		return b
	}
	b.baselineSupplied = true
	b.baseline = append(b.baseline, pairs...)
	return b
}

// AddClimatology appends values to the climatology of feature f.
func (b *Builder[P]) AddClimatology(f domain.FeatureKey, values ...float64) *Builder[P] {
	b.climatology.Add(f, values...)
	return b
}

// SetClimatology appends every feature of c.
func (b *Builder[P]) SetClimatology(c Climatology) *Builder[P] {
	b.climatology.AddAll(c)
	return b
}

func (b *Builder[P]) SetMetadata(m domain.Metadata) *Builder[P] {
	b.metadata = m
	return b
}

// SetBaselineMetadata sets the baseline metadata and marks the collection
// as having a baseline.
func (b *Builder[P]) SetBaselineMetadata(m domain.Metadata) *Builder[P] {
	b.baselineSupplied = true
	b.baselineMetadata = m
	return b
}

// Build validates everything added so far and returns a Collection. The
// builder keeps its pairs whether or not Build succeeds; a reported nil
// list is not reported again.
func (b *Builder[P]) Build() (Collection[P], error) {
	if len(b.nilLists) > 0 {
		err := fmt.Errorf("%w: nil %s pair list", domain.ErrInvalid, b.nilLists[0])
		b.nilLists = nil
		return Collection[P]{}, err
	}
	if !b.mainSupplied {
		return Collection[P]{}, fmt.Errorf("%w: no main pairs supplied", domain.ErrInvalid)
	}

	categories, err := b.check("main", b.main)
	if err != nil {
		return Collection[P]{}, err
	}
	baselineCategories, err := b.check("baseline", b.baseline)
	if err != nil {
		return Collection[P]{}, err
	}

	main, err := b.filter("main", b.main)
	if err != nil {
		return Collection[P]{}, err
	}
	baseline, err := b.filter("baseline", b.baseline)
	if err != nil {
		return Collection[P]{}, err
	}
	climatology, err := b.climatology.Build().finiteOnly()
	if err != nil {
		return Collection[P]{}, err
	}

	return Collection[P]{
		kind:               b.kind,
		main:               main,
		baseline:           baseline,
		hasBaseline:        b.baselineSupplied,
		climatology:        climatology,
		metadata:           b.metadata,
		baselineMetadata:   b.baselineMetadata,
		categories:         categories,
		baselineCategories: baselineCategories,
	}, nil
}

func (b *Builder[P]) check(dataset string, pairs []P) (int, error) {
	for i, p := range pairs {
		if any(p) == nil || p.empty() {
			return 0, fmt.Errorf("%w: %s pair %d is empty", domain.ErrInvalid, dataset, i)
		}
	}
	return b.validate(dataset, pairs)
}

func (b *Builder[P]) filter(dataset string, pairs []P) ([]P, error) {
	out := make([]P, 0, len(pairs))
	for _, p := range pairs {
		if kept, ok := b.keep(p); ok {
			out = append(out, kept)
		}
	}
	if len(pairs) > 0 && len(out) == 0 {
		return nil, domain.Insufficientf("all %d %s pairs are non-finite", len(pairs), dataset)
	}
	return out, nil
}

func noShape[P Pair](string, []P) (int, error) { return 0, nil }

func keepAll[P Pair](p P) (P, bool) { return p, true }

// categoryShape validates category pairs. want is the required category
// count, or zero to take it from the first pair.
func categoryShape(want int) func(string, []CategoryPair) (int, error) {
	return func(dataset string, pairs []CategoryPair) (int, error) {
		categories := want
		for i, p := range pairs {
			n := p.outcomes.Len()
			if n%2 != 0 {
				return 0, fmt.Errorf("%w: %s pair %d has %d outcomes, observed and predicted halves differ",
					domain.ErrCategoryMismatch, dataset, i, n)
			}
			if categories == 0 {
				categories = n / 2
			}
			if n/2 != categories {
				return 0, fmt.Errorf("%w: %s pair %d has %d categories, expected %d",
					domain.ErrCategoryMismatch, dataset, i, n/2, categories)
			}
			if err := oneHot(dataset, i, "observed", p.Observed()); err != nil {
				return 0, err
			}
			if err := oneHot(dataset, i, "predicted", p.Predicted()); err != nil {
				return 0, err
			}
		}
		if len(pairs) == 0 {
			return want, nil
		}
		return categories, nil
	}
}

func oneHot(dataset string, i int, half string, v domain.VectorOfBooleans) error {
	switch n := v.Count(); {
	case n == 0:
		return fmt.Errorf("%w: %s pair %d %s %s", domain.ErrMissingOutcome, dataset, i, half, v)
	case n > 1:
		return fmt.Errorf("%w: %s pair %d %s %s", domain.ErrDuplicateOutcome, dataset, i, half, v)
	}
	return nil
}
