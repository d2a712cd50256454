package pipeline

import (
	"sync"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/output"
)

// Dataset is a snapshot of the outputs verified for one input dataset.
type Dataset struct {
	Metadata domain.Metadata
	Outputs  output.MultiMap
}

// Results accumulates outputs per input dataset. It is safe for concurrent
// use; readers get snapshots that later inserts do not affect.
type Results struct {
	mu     sync.RWMutex
	stores map[domain.Metadata]*output.MultiMapBuilder
	order  []domain.Metadata
}

func NewResults() *Results {
	return &Results{stores: make(map[domain.Metadata]*output.MultiMapBuilder)}
}

// Add records outputs for the dataset described by meta. Either every
// output is stored or, on error, none is.
func (r *Results) Add(meta domain.Metadata, outputs []output.Output) error {
	r.mu.Lock()
	b, ok := r.stores[meta]
	if !ok {
		b = output.NewMultiMapBuilder()
		r.stores[meta] = b
		r.order = append(r.order, meta)
	}
	r.mu.Unlock()
	return b.AddAll(outputs)
}

// Check reports the error Add would return for outputs without storing
// anything.
func (r *Results) Check(meta domain.Metadata, outputs []output.Output) error {
	r.mu.RLock()
	b, ok := r.stores[meta]
	r.mu.RUnlock()
	if !ok {
		b = output.NewMultiMapBuilder()
	}
	return b.Check(outputs)
}

// Len returns the number of outputs stored across all datasets.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, b := range r.stores {
		n += b.Len()
	}
	return n
}

// Snapshot returns every dataset in order of first appearance.
func (r *Results) Snapshot() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dataset, 0, len(r.order))
	for _, meta := range r.order {
		out = append(out, Dataset{Metadata: meta, Outputs: r.stores[meta].Build()})
	}
	return out
}

// Get returns a snapshot of one dataset.
func (r *Results) Get(meta domain.Metadata) (output.MultiMap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.stores[meta]
	if !ok {
		return output.MultiMap{}, false
	}
	return b.Build(), true
}
