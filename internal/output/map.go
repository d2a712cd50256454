package output

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// ErrDuplicateKey is returned when an output is inserted under a key that
// already holds one.
var ErrDuplicateKey = fmt.Errorf("%w: duplicate output key", domain.ErrInvalid)

// Map is an immutable set of outputs keyed by window and threshold.
// Iteration follows insertion order. The zero value is an empty Map.
type Map struct {
	entries map[Key]Output
	order   []Key
}

// Get returns the output stored under k.
func (m Map) Get(k Key) (Output, bool) {
	o, ok := m.entries[k]
	return o, ok
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.order) }

// SliceByLead returns the entries whose window has the given lead.
func (m Map) SliceByLead(lead time.Duration) Map {
	return m.filter(func(k Key) bool { return k.Window.Lead() == lead })
}

// SliceByTime returns the entries whose window equals w.
func (m Map) SliceByTime(w TimeWindow) Map {
	return m.filter(func(k Key) bool { return k.Window == w })
}

// SliceByThreshold returns the entries whose threshold equals t. A quantile
// threshold does not match a value-only threshold with the same value.
func (m Map) SliceByThreshold(t domain.Threshold) Map {
	return m.filter(func(k Key) bool { return k.Threshold == t })
}

func (m Map) filter(keep func(Key) bool) Map {
	out := Map{entries: make(map[Key]Output)}
	for _, k := range m.order {
		if keep(k) {
			out.entries[k] = m.entries[k]
			out.order = append(out.order, k)
		}
	}
	return out
}

// HasQuantileThresholds reports whether any key carries a probability.
func (m Map) HasQuantileThresholds() bool {
	for _, k := range m.order {
		if k.Threshold.HasProbability() {
			return true
		}
	}
	return false
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []Key { return slices.Clone(m.order) }

// SortedKeys returns the keys ordered by window, then threshold.
func (m Map) SortedKeys() []Key {
	return slices.SortedFunc(slices.Values(m.order), Key.Compare)
}

// Windows returns the distinct windows in order of first appearance.
func (m Map) Windows() []TimeWindow {
	return distinct(m.order, func(k Key) TimeWindow { return k.Window })
}

// Thresholds returns the distinct thresholds in order of first appearance.
func (m Map) Thresholds() []domain.Threshold {
	return distinct(m.order, func(k Key) domain.Threshold { return k.Threshold })
}

func distinct[T comparable](keys []Key, field func(Key) T) []T {
	seen := make(map[T]struct{})
	var out []T
	for _, k := range keys {
		v := field(k)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// All iterates the entries in insertion order.
func (m Map) All() iter.Seq2[Key, Output] {
	return func(yield func(Key, Output) bool) {
		for _, k := range m.order {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Equal reports whether both maps hold equal outputs under the same keys,
// regardless of insertion order.
func (m Map) Equal(o Map) bool {
	if len(m.order) != len(o.order) {
		return false
	}
	for k, v := range m.entries {
		w, ok := o.entries[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// Merge returns a Map holding the entries of m followed by those of o. The
// maps must not share a key.
func (m Map) Merge(o Map) (Map, error) {
	b := NewMapBuilder()
	for _, src := range []Map{m, o} {
		for k, v := range src.All() {
			if err := b.Put(k, v); err != nil {
				return Map{}, err
			}
		}
	}
	return b.Build(), nil
}

// MapBuilder accumulates outputs for a Map. Put is safe for concurrent use;
// Build takes a snapshot and the builder stays usable.
type MapBuilder struct {
	mu      sync.Mutex
	entries map[Key]Output
	order   []Key
}

func NewMapBuilder() *MapBuilder {
	return &MapBuilder{entries: make(map[Key]Output)}
}

// Add inserts o under the key named by its metadata.
func (b *MapBuilder) Add(o Output) error {
	return b.Put(o.Metadata().Key(), o)
}

// Put inserts o under k. The output's metadata must name the same window
// and threshold as k.
func (b *MapBuilder) Put(k Key, o Output) error {
	if o == nil {
		return domain.Invalidf("nil output for key %s", k)
	}
	if mk := o.Metadata().Key(); mk != k {
		return domain.Invalidf("output metadata names %s, inserted under %s", mk, k)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[k]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, k)
	}
	b.entries[k] = o
	b.order = append(b.order, k)
	return nil
}

func (b *MapBuilder) has(k Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[k]
	return ok
}

// Len returns the number of entries added so far.
func (b *MapBuilder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Build returns a snapshot of the entries added so far.
func (b *MapBuilder) Build() Map {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := Map{entries: make(map[Key]Output, len(b.entries)), order: slices.Clone(b.order)}
	for k, v := range b.entries {
		out.entries[k] = v
	}
	return out
}
