package output

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

// MetricKey names one Map within a MultiMap.
type MetricKey struct {
	Metric    string    `json:"metric"`
	Component Component `json:"component"`
}

func (k MetricKey) Compare(o MetricKey) int {
	return cmp.Or(cmp.Compare(k.Metric, o.Metric), cmp.Compare(k.Component, o.Component))
}

func (k MetricKey) String() string {
	if k.Component == "" || k.Component == ComponentMain {
		return k.Metric
	}
	return k.Metric + "/" + string(k.Component)
}

func metricKeyOf(o Output) MetricKey {
	m := o.Metadata()
	return MetricKey{Metric: m.Metric, Component: m.Component}
}

// MultiMap holds one Map per metric and component. It is immutable.
type MultiMap struct {
	maps map[MetricKey]Map
}

// Get returns the Map for k.
func (mm MultiMap) Get(k MetricKey) (Map, bool) {
	m, ok := mm.maps[k]
	return m, ok
}

// Metrics returns the metric keys in sorted order.
func (mm MultiMap) Metrics() []MetricKey {
	keys := make([]MetricKey, 0, len(mm.maps))
	for k := range mm.maps {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, MetricKey.Compare)
	return keys
}

// Len returns the number of outputs across all metrics.
func (mm MultiMap) Len() int {
	n := 0
	for _, m := range mm.maps {
		n += m.Len()
	}
	return n
}

// SliceByLead applies Map.SliceByLead to every metric, dropping metrics
// left empty.
func (mm MultiMap) SliceByLead(lead time.Duration) MultiMap {
	return mm.each(func(m Map) Map { return m.SliceByLead(lead) })
}

func (mm MultiMap) SliceByTime(w TimeWindow) MultiMap {
	return mm.each(func(m Map) Map { return m.SliceByTime(w) })
}

func (mm MultiMap) SliceByThreshold(t domain.Threshold) MultiMap {
	return mm.each(func(m Map) Map { return m.SliceByThreshold(t) })
}

// SliceByMetric keeps the components of one metric.
func (mm MultiMap) SliceByMetric(metric string) MultiMap {
	out := MultiMap{maps: make(map[MetricKey]Map)}
	for k, m := range mm.maps {
		if k.Metric == metric {
			out.maps[k] = m
		}
	}
	return out
}

func (mm MultiMap) each(slice func(Map) Map) MultiMap {
	out := MultiMap{maps: make(map[MetricKey]Map)}
	for k, m := range mm.maps {
		if s := slice(m); s.Len() > 0 {
			out.maps[k] = s
		}
	}
	return out
}

// HasQuantileThresholds reports whether any metric has a quantile key.
func (mm MultiMap) HasQuantileThresholds() bool {
	for _, m := range mm.maps {
		if m.HasQuantileThresholds() {
			return true
		}
	}
	return false
}

// MultiMapBuilder routes outputs to a MapBuilder per metric and component.
// It is safe for concurrent use.
type MultiMapBuilder struct {
	mu       sync.Mutex
	builders map[MetricKey]*MapBuilder
}

func NewMultiMapBuilder() *MultiMapBuilder {
	return &MultiMapBuilder{builders: make(map[MetricKey]*MapBuilder)}
}

// Add inserts o into the Map of its metric.
func (b *MultiMapBuilder) Add(o Output) error {
	return b.AddAll([]Output{o})
}

// AddAll inserts every output or none of them. It fails when an output is
// nil or its key is already taken, by an earlier insert or within outputs.
func (b *MultiMapBuilder) AddAll(outputs []Output) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.conflicts(outputs); err != nil {
		return err
	}
	for _, o := range outputs {
		k := metricKeyOf(o)
		mb, ok := b.builders[k]
		if !ok {
			mb = NewMapBuilder()
			b.builders[k] = mb
		}
		if err := mb.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// Check reports the error AddAll would return for outputs without
// inserting anything.
func (b *MultiMapBuilder) Check(outputs []Output) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conflicts(outputs)
}

func (b *MultiMapBuilder) conflicts(outputs []Output) error {
	type slot struct {
		metric MetricKey
		key    Key
	}
	pending := make(map[slot]bool, len(outputs))
	for _, o := range outputs {
		if o == nil {
			return domain.Invalidf("nil output")
		}
		s := slot{metric: metricKeyOf(o), key: o.Metadata().Key()}
		if mb, ok := b.builders[s.metric]; pending[s] || ok && mb.has(s.key) {
			return fmt.Errorf("%w: %s %s", ErrDuplicateKey, s.metric, s.key)
		}
		pending[s] = true
	}
	return nil
}

// Len returns the number of outputs added so far.
func (b *MultiMapBuilder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, mb := range b.builders {
		n += mb.Len()
	}
	return n
}

// Build returns a snapshot of everything added so far.
func (b *MultiMapBuilder) Build() MultiMap {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := MultiMap{maps: make(map[MetricKey]Map, len(b.builders))}
	for k, mb := range b.builders {
		out.maps[k] = mb.Build()
	}
	return out
}
